package root

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/crucial707/oci-dispatch/internal/app"
	"github.com/crucial707/oci-dispatch/internal/config"
	"github.com/crucial707/oci-dispatch/internal/logging"
)

// RootCmd is the oci-dispatch command; subcommands are added in main.
var RootCmd = &cobra.Command{
	Use:   "oci-dispatch",
	Short: "Run the OCI collector scripts on schedule",
	Long: `oci-dispatch runs the OCI inventory and usage collector scripts.

Invoke "oci-dispatch tick" once a minute from cron, or run "oci-dispatch serve"
to keep the schedule in-process. Use "backfill" to re-run usage for past dates.`,
	SilenceErrors: true,
}

// Now is the clock used by commands. Tests replace it.
var Now = time.Now

// GetRoot returns the RootCmd.
func GetRoot() *cobra.Command {
	return RootCmd
}

// LoadConfig loads the config and a logger writing to the command's stderr.
// Once it succeeds, usage is no longer printed on error.
func LoadConfig(cmd *cobra.Command) (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	cmd.SilenceUsage = true
	return cfg, logging.New(cfg.LogFormat, cfg.LogLevel, cmd.ErrOrStderr()), nil
}

// Setup builds the App for one invocation.
func Setup(cmd *cobra.Command) (*app.App, error) {
	cfg, log, err := LoadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg, log)
}

// SetupDB is Setup for commands that cannot work without postgres.
func SetupDB(cmd *cobra.Command) (*app.App, error) {
	a, err := Setup(cmd)
	if err != nil {
		return nil, err
	}
	if err := a.OpenDB(cmd.Context()); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}
