package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/crucial707/oci-dispatch/cmd/oci-dispatch/backfill"
	"github.com/crucial707/oci-dispatch/cmd/oci-dispatch/contracts"
	"github.com/crucial707/oci-dispatch/cmd/oci-dispatch/migrate"
	"github.com/crucial707/oci-dispatch/cmd/oci-dispatch/root"
	"github.com/crucial707/oci-dispatch/cmd/oci-dispatch/runs"
	"github.com/crucial707/oci-dispatch/cmd/oci-dispatch/serve"
	"github.com/crucial707/oci-dispatch/cmd/oci-dispatch/tick"
	"github.com/crucial707/oci-dispatch/cmd/oci-dispatch/usage"
)

func newRootCmd() *cobra.Command {
	rootCmd := root.GetRoot()
	rootCmd.AddCommand(
		tick.NewCommand(),
		usage.NewCommand(),
		backfill.NewCommand(),
		serve.NewCommand(),
		migrate.NewCommand(),
		contracts.NewCommand(),
		runs.NewCommand(),
	)
	return rootCmd
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}
