package runner

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"github.com/crucial707/oci-dispatch/internal/metrics"
	"github.com/crucial707/oci-dispatch/internal/task"
)

// Recorder persists task attempts. The repo.TaskRunRepo satisfies it.
type Recorder interface {
	Start(ctx context.Context, name, trigger string, startedAt time.Time) (int64, error)
	Finish(ctx context.Context, id int64, status string, finishedAt time.Time, errMsg string) error
}

// Result is the outcome of one task.
type Result struct {
	Name     string
	Err      error
	Started  time.Time
	Duration time.Duration
}

func (r Result) Failed() bool { return r.Err != nil }

// Report lists results in the order tasks ran.
type Report struct {
	Results []Result
}

// Failed returns the names of tasks that failed.
func (r Report) Failed() []string {
	var out []string
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res.Name)
		}
	}
	return out
}

// Succeeded returns the names of tasks that succeeded.
func (r Report) Succeeded() []string {
	var out []string
	for _, res := range r.Results {
		if !res.Failed() {
			out = append(out, res.Name)
		}
	}
	return out
}

// Merge appends o's results to r.
func (r *Report) Merge(o Report) { r.Results = append(r.Results, o.Results...) }

// Runner executes tasks one after another. A failing task is logged and
// recorded; it never stops the tasks after it and is never returned to the caller.
// Tasks are not cancellable: cancelling ctx neither kills a running task nor
// skips the ones after it.
type Runner struct {
	Log      zerolog.Logger
	Recorder Recorder
	// Trigger is stored with each recorded run (tick, backfill, manual).
	Trigger string
	Now     func() time.Time
}

// New returns a Runner logging to log. rec may be nil.
func New(log zerolog.Logger, rec Recorder) *Runner {
	return &Runner{Log: log, Recorder: rec, Trigger: "tick", Now: time.Now}
}

// WithTrigger returns a copy of r recording runs under trigger.
func (r *Runner) WithTrigger(trigger string) *Runner {
	cp := *r
	cp.Trigger = trigger
	return &cp
}

// Run executes tasks in order and returns what happened to each.
func (r *Runner) Run(ctx context.Context, tasks []task.Task) Report {
	var rep Report
	for _, t := range tasks {
		rep.Results = append(rep.Results, r.RunOne(ctx, t))
	}
	if failed := rep.Failed(); len(failed) > 0 {
		r.Log.Warn().Strs("failed", failed).Int("total", len(rep.Results)).Msg("some tasks failed")
	}
	return rep
}

// RunOne executes a single task with the same isolation Run gives each task.
func (r *Runner) RunOne(ctx context.Context, t task.Task) Result {
	ctx = context.WithoutCancel(ctx)
	now := r.Now
	if now == nil {
		now = time.Now
	}
	name := t.Name()
	log := r.Log.With().Str("task", name).Logger()

	started := now()
	runID, recErr := r.start(ctx, name, started)
	if recErr != nil {
		log.Warn().Err(recErr).Msg("record task start")
	}

	log.Info().Msg("task started")
	err := runIsolated(ctx, t)
	finished := now()
	res := Result{Name: name, Err: err, Started: started, Duration: finished.Sub(started)}

	if err != nil {
		log.Error().Err(err).Dur("duration", res.Duration).Msg("task failed")
	} else {
		log.Info().Dur("duration", res.Duration).Msg("task finished")
	}
	metrics.RecordTask(name, err != nil, res.Duration, finished)

	if recErr == nil {
		if ferr := r.finish(ctx, runID, err, finished); ferr != nil {
			log.Warn().Err(ferr).Msg("record task finish")
		}
	}
	return res
}

func (r *Runner) start(ctx context.Context, name string, at time.Time) (int64, error) {
	if r.Recorder == nil {
		return 0, nil
	}
	return r.Recorder.Start(ctx, name, r.Trigger, at)
}

func (r *Runner) finish(ctx context.Context, id int64, taskErr error, at time.Time) error {
	if r.Recorder == nil {
		return nil
	}
	status, msg := metrics.StatusSucceeded, ""
	if taskErr != nil {
		status, msg = metrics.StatusFailed, taskErr.Error()
	}
	return r.Recorder.Finish(ctx, id, status, at, msg)
}

// runIsolated runs t and converts both returned errors and panics into *task.Failure.
func runIsolated(ctx context.Context, t task.Task) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &task.Failure{Task: t.Name(), Err: fmt.Errorf("panic: %v\n%s", rec, debug.Stack())}
		}
	}()
	if runErr := t.Run(ctx); runErr != nil {
		return &task.Failure{Task: t.Name(), Err: runErr}
	}
	return nil
}
