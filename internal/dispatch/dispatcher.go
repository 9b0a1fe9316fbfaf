package dispatch

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/crucial707/oci-dispatch/internal/cadence"
	"github.com/crucial707/oci-dispatch/internal/dates"
	"github.com/crucial707/oci-dispatch/internal/metrics"
	"github.com/crucial707/oci-dispatch/internal/runner"
	"github.com/crucial707/oci-dispatch/internal/task"
)

// TaskFactory builds a task for the tick at now.
type TaskFactory func(now time.Time) task.Task

// Static wraps a task that does not depend on the tick time.
func Static(t task.Task) TaskFactory {
	return func(time.Time) task.Task { return t }
}

// FromTemplate binds tpl per tick. Placeholders: {yesterday} and {today} (YYYY-MM-DD, local time).
func FromTemplate(tpl task.Template) TaskFactory {
	return func(now time.Time) task.Task {
		return tpl.Bind(TickVars(now))
	}
}

// TickVars returns the placeholder values for the tick at now.
func TickVars(now time.Time) map[string]string {
	return map[string]string{
		"yesterday": dates.Yesterday(now).String(),
		"today":     dates.Of(now).String(),
	}
}

// Group is an ordered list of tasks sharing a cadence.
type Group struct {
	Name    string
	Cadence cadence.Cadence
	Tasks   []TaskFactory
}

// Summary describes one tick.
type Summary struct {
	At     time.Time
	Due    []string
	Report runner.Report
}

// Dispatcher runs every due group on each tick, in configured order.
type Dispatcher struct {
	Groups []Group
	Runner *runner.Runner
	Log    zerolog.Logger
}

// New returns a Dispatcher for groups.
func New(groups []Group, r *runner.Runner, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{Groups: groups, Runner: r, Log: log}
}

// DueGroups returns the groups whose cadence is due at now, in order.
func (d *Dispatcher) DueGroups(now time.Time) []Group {
	var due []Group
	for _, g := range d.Groups {
		if g.Cadence.Due(now) {
			due = append(due, g)
		}
	}
	return due
}

// Tick runs the due groups for now. Task failures are reported in the
// summary only; Tick itself never fails.
func (d *Dispatcher) Tick(ctx context.Context, now time.Time) Summary {
	metrics.IncTicks()
	sum := Summary{At: now}

	for _, g := range d.DueGroups(now) {
		sum.Due = append(sum.Due, g.Name)
		tasks := make([]task.Task, 0, len(g.Tasks))
		for _, f := range g.Tasks {
			tasks = append(tasks, f(now))
		}

		d.Log.Debug().Str("group", g.Name).Stringer("cadence", g.Cadence).Int("tasks", len(tasks)).Msg("group due")
		sum.Report.Merge(d.Runner.Run(ctx, tasks))
	}

	d.Log.Info().
		Str("at", now.Format("15:04")).
		Strs("groups", sum.Due).
		Int("tasks", len(sum.Report.Results)).
		Int("failed", len(sum.Report.Failed())).
		Msg("tick finished")
	return sum
}
