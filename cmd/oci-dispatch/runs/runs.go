package runs

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/crucial707/oci-dispatch/cmd/oci-dispatch/output"
	"github.com/crucial707/oci-dispatch/cmd/oci-dispatch/root"
	"github.com/crucial707/oci-dispatch/internal/models"
)

// NewCommand returns the runs command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recently recorded task runs",
		Long: `Show the most recent task runs from the task_runs table, newest first.
Runs are recorded when RECORD_RUNS=true.`,
		Args: cobra.NoArgs,
		RunE: runRuns,
	}
	cmd.Flags().String("task", "", "Only runs of this task (e.g. insert_usage.py)")
	cmd.Flags().Int("limit", 20, "Maximum number of runs")
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func runRuns(cmd *cobra.Command, args []string) error {
	taskName, _ := cmd.Flags().GetString("task")
	limit, _ := cmd.Flags().GetInt("limit")

	a, err := root.SetupDB(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.Runs.ListRecent(cmd.Context(), taskName, limit)
	if err != nil {
		return err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return output.RenderJSON(cmd.OutOrStdout(), list)
	}
	renderTable(cmd.OutOrStdout(), list)
	return nil
}

func renderTable(w io.Writer, list []models.TaskRun) {
	rows := make([][]interface{}, 0, len(list))
	for _, r := range list {
		dur := "-"
		if r.FinishedAt != nil {
			dur = r.Duration().Round(time.Millisecond).String()
		}
		rows = append(rows, []interface{}{
			r.ID,
			r.Task,
			r.Source,
			r.Status,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			dur,
			r.Error,
		})
	}
	output.RenderTable(w, []string{"ID", "Task", "Source", "Status", "Started", "Duration", "Error"}, rows)
}
