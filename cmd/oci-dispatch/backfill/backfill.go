package backfill

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/crucial707/oci-dispatch/cmd/oci-dispatch/output"
	"github.com/crucial707/oci-dispatch/cmd/oci-dispatch/root"
	"github.com/crucial707/oci-dispatch/internal/dates"
)

// NewCommand returns the backfill command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill START END",
		Short: "Insert usage for every date from START to END",
		Long: `Run the usage insertion task once per date from START to END inclusive,
oldest first. Both dates are YYYY-MM-DD. An END before START does nothing.

A failed day is logged and the remaining days still run unless --fail-fast is set.`,
		Example: "  oci-dispatch backfill 2025-07-17 2025-09-23",
		Args:    cobra.ExactArgs(2),
		RunE:    runBackfill,
	}
	cmd.Flags().Bool("fail-fast", false, "Stop at the first failed day")
	cmd.Flags().Bool("json", false, "Output the per-day results as JSON")
	return cmd
}

type dayResult struct {
	Date     string `json:"date"`
	Status   string `json:"status"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

func runBackfill(cmd *cobra.Command, args []string) error {
	from, err := dates.Parse(args[0])
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}

	a, err := root.Setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	drv := *a.Backfill
	drv.FailFast, _ = cmd.Flags().GetBool("fail-fast")
	rep, err := drv.Run(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}

	results := make([]dayResult, 0, len(rep.Results))
	for i, res := range rep.Results {
		r := dayResult{
			Date:     dates.AddDays(from, i).String(),
			Status:   "succeeded",
			Duration: res.Duration.Round(time.Millisecond).String(),
		}
		if res.Failed() {
			r.Status = "failed"
			r.Error = res.Err.Error()
		}
		results = append(results, r)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return output.RenderJSON(cmd.OutOrStdout(), results)
	}

	rows := make([][]interface{}, 0, len(results))
	for _, r := range results {
		rows = append(rows, []interface{}{r.Date, r.Status, r.Duration, r.Error})
	}
	output.RenderTable(cmd.OutOrStdout(), []string{"Date", "Status", "Duration", "Error"}, rows)
	return nil
}
