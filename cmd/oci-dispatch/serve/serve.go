package serve

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/crucial707/oci-dispatch/cmd/oci-dispatch/root"
	"github.com/crucial707/oci-dispatch/internal/scheduler"
	"github.com/crucial707/oci-dispatch/internal/server"
)

// NewCommand returns the serve command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Tick every minute in-process and serve the operator API",
		Long: `Run the dispatcher in-process, one tick at the start of every minute,
for hosts without an external cron. A read-only HTTP API is served alongside:

  GET /health           liveness
  GET /metrics          prometheus metrics
  GET /schedule         task groups and whether they are due now
  GET /runs             recorded task runs (needs the database)
  GET /contracts        contracts, ?active=YYYY-MM-DD (needs the database)
  GET /contracts/{id}

Stops on SIGINT or SIGTERM after the running tick finishes.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().String("addr", "", "Listen address (default $SERVE_ADDR)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := root.Setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.DB == nil {
		if err := a.OpenDB(cmd.Context()); err != nil {
			a.Log.Warn().Err(err).Msg("serving without database, /runs and /contracts disabled")
		}
	}

	addr := a.Config.ServeAddr
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		addr = v
	}

	h := server.NewRouter(server.Deps{
		DB:            a.DB,
		Groups:        a.Dispatcher.Groups,
		Log:           a.Log,
		RatePerMinute: a.Config.APIRatePerMinute,
	})

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return scheduler.Run(ctx, time.Local, a.Log, func(ctx context.Context, now time.Time) {
			a.Dispatcher.Tick(ctx, now)
		})
	})
	g.Go(func() error {
		return server.ListenAndServe(ctx, addr, h, a.Log)
	})
	return g.Wait()
}
