package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crucial707/oci-dispatch/cmd/oci-dispatch/root"
	"github.com/crucial707/oci-dispatch/internal/db"
)

// NewCommand returns the migrate command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations (contracts, task_runs)",
		Args:  cobra.NoArgs,
		RunE:  runMigrate,
	}
	cmd.Flags().Bool("status", false, "Only print the current schema version")
	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, log, err := root.LoadConfig(cmd)
	if err != nil {
		return err
	}
	url := cfg.DatabaseURL()

	if status, _ := cmd.Flags().GetBool("status"); !status {
		if err := db.Migrate(url); err != nil {
			return err
		}
		log.Info().Str("database", cfg.DBName).Msg("migrations applied")
	}

	version, dirty, err := db.Version(url)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d", version)
	if dirty {
		fmt.Fprint(cmd.OutOrStdout(), " (dirty)")
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
