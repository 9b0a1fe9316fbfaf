package backfill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/crucial707/oci-dispatch/internal/dates"
	"github.com/crucial707/oci-dispatch/internal/metrics"
	"github.com/crucial707/oci-dispatch/internal/runner"
	"github.com/crucial707/oci-dispatch/internal/task"
)

var (
	// ErrInvalidRange wraps a start or end date that failed to parse.
	ErrInvalidRange = errors.New("invalid backfill range")
	// ErrInvalidArgumentCount is returned when a date-taking entry point gets too many arguments.
	ErrInvalidArgumentCount = errors.New("invalid argument count")
)

// DayTask builds the usage-insertion task for one date.
type DayTask func(d dates.Date) task.Task

// Driver re-runs the per-day usage task across a date range.
type Driver struct {
	Runner *runner.Runner
	Task   DayTask
	Log    zerolog.Logger
	// FailFast stops the range at the first failed day. Off by default: a bad
	// day is logged and the remaining days still run.
	FailFast bool
}

// Run invokes the day task once for every date from start to end inclusive, ascending.
// An end before start runs nothing and is not an error.
func (d *Driver) Run(ctx context.Context, start, end string) (runner.Report, error) {
	from, err := dates.Parse(start)
	if err != nil {
		return runner.Report{}, fmt.Errorf("%w: start: %w", ErrInvalidRange, err)
	}
	to, err := dates.Parse(end)
	if err != nil {
		return runner.Report{}, fmt.Errorf("%w: end: %w", ErrInvalidRange, err)
	}
	return d.RunRange(ctx, from, to), nil
}

// RunRange is Run over already-parsed dates.
func (d *Driver) RunRange(ctx context.Context, from, to dates.Date) runner.Report {
	var rep runner.Report
	if to.Before(from) {
		d.Log.Warn().Stringer("start", from).Stringer("end", to).Msg("backfill end is before start, nothing to do")
		return rep
	}

	d.Log.Info().Stringer("start", from).Stringer("end", to).
		Int("days", dates.DaysBetween(from, to)+1).Msg("backfill started")

	stop := dates.AddDays(to, 1)
	for cur := from; cur != stop; cur = dates.AddDays(cur, 1) {
		res := d.Runner.RunOne(ctx, d.Task(cur))
		rep.Results = append(rep.Results, res)
		if res.Failed() {
			metrics.IncBackfillDays(metrics.StatusFailed)
			if d.FailFast {
				d.Log.Error().Stringer("date", cur).Msg("backfill stopped at failed day")
				break
			}
			continue
		}
		metrics.IncBackfillDays(metrics.StatusSucceeded)
	}

	d.Log.Info().Int("days", len(rep.Results)).Strs("failed", rep.Failed()).Msg("backfill finished")
	return rep
}

// RunSingle runs the day task for one date.
func (d *Driver) RunSingle(ctx context.Context, day dates.Date) runner.Result {
	return d.Runner.RunOne(ctx, d.Task(day))
}

// TargetDate resolves the optional date argument of the single-date entry point:
// no argument means yesterday relative to now, one argument must be YYYY-MM-DD.
func TargetDate(args []string, now time.Time) (dates.Date, error) {
	switch len(args) {
	case 0:
		return dates.Yesterday(now), nil
	case 1:
		return dates.Parse(args[0])
	}
	return dates.Date{}, fmt.Errorf("%w: expected at most 1 date, got %d", ErrInvalidArgumentCount, len(args))
}
