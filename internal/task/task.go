package task

import (
	"context"
	"fmt"
)

// Task is one independently runnable unit of work.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// Failure is the error recorded when a task returns an error or panics.
type Failure struct {
	Task string
	Err  error
}

func (f *Failure) Error() string { return fmt.Sprintf("task %s failed: %v", f.Task, f.Err) }

func (f *Failure) Unwrap() error { return f.Err }

// Func adapts a plain function to Task.
type Func struct {
	TaskName string
	Fn       func(ctx context.Context) error
}

func (f Func) Name() string { return f.TaskName }

func (f Func) Run(ctx context.Context) error { return f.Fn(ctx) }

// Of is shorthand for building a Func task.
func Of(name string, fn func(ctx context.Context) error) Task {
	return Func{TaskName: name, Fn: fn}
}
