package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/crucial707/oci-dispatch/internal/models"
)

// TaskRunRepo persists task attempts.
type TaskRunRepo struct {
	DB *sql.DB
}

// NewTaskRunRepo returns a new TaskRunRepo.
func NewTaskRunRepo(db *sql.DB) *TaskRunRepo {
	return &TaskRunRepo{DB: db}
}

// Start inserts a run with status=running and returns its id.
func (r *TaskRunRepo) Start(ctx context.Context, name, source string, startedAt time.Time) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO task_runs (task, source, status, started_at) VALUES ($1, $2, 'running', $3) RETURNING id`,
		name, source, startedAt,
	).Scan(&id)
	return id, err
}

// Finish sets the final status, finish time and error message of a run.
func (r *TaskRunRepo) Finish(ctx context.Context, id int64, status string, finishedAt time.Time, errMsg string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE task_runs SET status = $1, finished_at = $2, error = NULLIF($3, '') WHERE id = $4`,
		status, finishedAt, errMsg, id,
	)
	return err
}

// ListRecent returns the most recent runs, newest first. An empty task lists every task.
func (r *TaskRunRepo) ListRecent(ctx context.Context, task string, limit int) ([]models.TaskRun, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, task, source, status, started_at, finished_at, COALESCE(error, '')
		FROM task_runs
		WHERE $1 = '' OR task = $1
		ORDER BY started_at DESC, id DESC
		LIMIT $2
	`, task, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.TaskRun
	for rows.Next() {
		var tr models.TaskRun
		var finished sql.NullTime
		if err := rows.Scan(&tr.ID, &tr.Task, &tr.Source, &tr.Status, &tr.StartedAt, &finished, &tr.Error); err != nil {
			return nil, err
		}
		if finished.Valid {
			t := finished.Time
			tr.FinishedAt = &t
		}
		list = append(list, tr)
	}
	return list, rows.Err()
}
