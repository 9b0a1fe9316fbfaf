package contracts

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/crucial707/oci-dispatch/cmd/oci-dispatch/output"
	"github.com/crucial707/oci-dispatch/cmd/oci-dispatch/root"
	"github.com/crucial707/oci-dispatch/internal/backfill"
	"github.com/crucial707/oci-dispatch/internal/dates"
	"github.com/crucial707/oci-dispatch/internal/models"
	"github.com/crucial707/oci-dispatch/internal/repo"
)

// NewCommand returns the contracts command and its list/active subcommands.
func NewCommand() *cobra.Command {
	contractsCmd := &cobra.Command{
		Use:   "contracts",
		Short: "Show contracts from the database",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List contracts, newest start first",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	listCmd.Flags().Int("limit", 50, "Maximum number of contracts")
	listCmd.Flags().Int("offset", 0, "Number of contracts to skip")

	activeCmd := &cobra.Command{
		Use:   "active [DATE]",
		Short: "List contracts active on DATE (default yesterday)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runActive,
	}

	for _, c := range []*cobra.Command{listCmd, activeCmd} {
		c.Flags().Bool("json", false, "Output as JSON")
		contractsCmd.AddCommand(c)
	}
	return contractsCmd
}

func runList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	a, err := root.SetupDB(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.Contracts.List(cmd.Context(), limit, offset)
	if err != nil {
		return err
	}
	return render(cmd, list)
}

func runActive(cmd *cobra.Command, args []string) error {
	day, err := backfill.TargetDate(args, root.Now())
	if err != nil {
		return err
	}

	a, err := root.SetupDB(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := activeOn(cmd.Context(), a.Contracts, day)
	if err != nil {
		return err
	}
	return render(cmd, list)
}

func activeOn(ctx context.Context, r *repo.ContractRepo, day dates.Date) ([]models.Contract, error) {
	return r.ActiveOn(ctx, day.String())
}

func render(cmd *cobra.Command, list []models.Contract) error {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return output.RenderJSON(cmd.OutOrStdout(), list)
	}
	renderTable(cmd.OutOrStdout(), list)
	return nil
}

func renderTable(w io.Writer, list []models.Contract) {
	rows := make([][]interface{}, 0, len(list))
	for _, c := range list {
		rows = append(rows, []interface{}{
			c.ID,
			c.ContractStart.Format(dates.Layout),
			c.ContractEnd.Format(dates.Layout),
			c.Amount.StringFixed(2),
		})
	}
	output.RenderTable(w, []string{"ID", "Start", "End", "Amount"}, rows)
}
