package usage

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/crucial707/oci-dispatch/cmd/oci-dispatch/root"
	"github.com/crucial707/oci-dispatch/internal/backfill"
)

// NewCommand returns the insert-usage command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "insert-usage [DATE]",
		Short: "Insert usage for one date (default yesterday)",
		Long: `Run the usage insertion task for a single date.

DATE is YYYY-MM-DD; without it yesterday (local time) is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runUsage,
	}
}

func runUsage(cmd *cobra.Command, args []string) error {
	day, err := backfill.TargetDate(args, root.Now())
	if err != nil {
		return err
	}

	a, err := root.Setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	drv := *a.Backfill
	drv.Runner = a.Runner.WithTrigger("manual")
	res := drv.RunSingle(cmd.Context(), day)

	status := "succeeded"
	if res.Failed() {
		status = "failed"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "usage %s: %s (%s)\n", day, status, res.Duration.Round(time.Millisecond))
	return nil
}
