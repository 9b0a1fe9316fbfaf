package models

import "time"

// TaskRun is one recorded task attempt.
type TaskRun struct {
	ID         int64      `json:"id"`
	Task       string     `json:"task"`
	Source     string     `json:"source"` // tick, backfill, manual
	Status     string     `json:"status"` // running, succeeded, failed
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Duration is zero while the run is unfinished.
func (r TaskRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
