package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/crucial707/oci-dispatch/internal/backfill"
	"github.com/crucial707/oci-dispatch/internal/cadence"
	"github.com/crucial707/oci-dispatch/internal/config"
	"github.com/crucial707/oci-dispatch/internal/dates"
	"github.com/crucial707/oci-dispatch/internal/db"
	"github.com/crucial707/oci-dispatch/internal/dispatch"
	"github.com/crucial707/oci-dispatch/internal/metrics"
	"github.com/crucial707/oci-dispatch/internal/repo"
	"github.com/crucial707/oci-dispatch/internal/runner"
	"github.com/crucial707/oci-dispatch/internal/task"
)

// ErrNoDatabase is returned by commands that need postgres when it cannot be reached.
var ErrNoDatabase = errors.New("database not available")

// App holds everything one invocation needs. It is built once from the config
// and passed to the command being run.
type App struct {
	Config config.Config
	Tasks  config.TaskFile
	Log    zerolog.Logger

	DB        *sql.DB
	Runs      *repo.TaskRunRepo
	Contracts *repo.ContractRepo

	Runner     *runner.Runner
	Dispatcher *dispatch.Dispatcher
	Backfill   *backfill.Driver
}

// New loads the task file and builds the dispatcher and backfill driver.
// When RecordRuns is set the database is opened too; if that fails the App
// still works, without run recording.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	tf, err := config.LoadTaskFile(cfg.TasksFile)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Tasks: tf, Log: log}

	if cfg.RecordRuns {
		if err := a.OpenDB(ctx); err != nil {
			log.Warn().Err(err).Msg("task runs will not be recorded")
		}
	}

	a.Runner = runner.New(log, nil)
	if a.Runs != nil {
		a.Runner.Recorder = a.Runs
	}

	groups, err := Groups(cfg, tf)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Dispatcher = dispatch.New(groups, a.Runner, log)

	usage := Template(cfg, tf.Usage)
	a.Backfill = &backfill.Driver{
		Runner: a.Runner.WithTrigger("backfill"),
		Log:    log,
		Task: func(d dates.Date) task.Task {
			return usage.Bind(map[string]string{"date": d.String()})
		},
	}
	return a, nil
}

// OpenDB connects to postgres if not already connected.
func (a *App) OpenDB(ctx context.Context) error {
	if a.DB != nil {
		return nil
	}
	c := a.Config
	conn, err := db.Connect(ctx, c.DatabaseURL(), db.Pool{MaxOpen: c.DBMaxOpenConns, MaxIdle: c.DBMaxIdleConns})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoDatabase, err)
	}
	a.DB = conn
	a.Runs = repo.NewTaskRunRepo(conn)
	a.Contracts = repo.NewContractRepo(conn)
	if a.Runner != nil {
		a.Runner.Recorder = a.Runs
	}
	return nil
}

// Close flushes the metrics textfile (if configured) and closes the database.
func (a *App) Close() error {
	var errs []error
	if path := a.Config.MetricsTextfile; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			errs = append(errs, fmt.Errorf("write metrics textfile: %w", err))
		}
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

// Template turns a task spec into a command template run from the script directory.
func Template(cfg config.Config, ts config.TaskSpec) task.Template {
	tpl := task.Template{
		Name: ts.DisplayName(),
		Dir:  cfg.ScriptDir,
		Env:  ts.Env,
	}
	if ts.Script != "" {
		tpl.Program = cfg.Python
		tpl.Args = append([]string{filepath.Join(cfg.ScriptDir, ts.Script)}, ts.Args...)
	} else {
		tpl.Program = ts.Program
		tpl.Args = append([]string(nil), ts.Args...)
	}
	return tpl
}

// Groups converts the task file into dispatcher groups.
func Groups(cfg config.Config, tf config.TaskFile) ([]dispatch.Group, error) {
	groups := make([]dispatch.Group, 0, len(tf.Groups))
	for _, gs := range tf.Groups {
		c, err := cadence.Parse(gs.Cadence)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", gs.Name, err)
		}
		g := dispatch.Group{Name: gs.Name, Cadence: c}
		for _, ts := range gs.Tasks {
			g.Tasks = append(g.Tasks, dispatch.FromTemplate(Template(cfg, ts)))
		}
		groups = append(groups, g)
	}
	return groups, nil
}
