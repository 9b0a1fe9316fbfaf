package tick

import (
	"github.com/spf13/cobra"

	"github.com/crucial707/oci-dispatch/cmd/oci-dispatch/root"
)

// NewCommand returns the single-tick command an external cron runs once a minute.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Run the task groups due this minute",
		Long: `Run every task group whose cadence is due at the current minute.

Failed tasks are logged and the rest still run. The exit status is 0 whenever
the configuration could be loaded, whatever the tasks did.`,
		Args: cobra.NoArgs,
		RunE: runTick,
	}
}

func runTick(cmd *cobra.Command, args []string) error {
	a, err := root.Setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	a.Dispatcher.Tick(cmd.Context(), root.Now())
	return nil
}
