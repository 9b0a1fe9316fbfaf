package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// TickSpec fires once at the start of every minute.
const TickSpec = "* * * * *"

// Run fires tick at the start of every minute until ctx is cancelled.
// A tick that is still running when the next minute starts causes that minute
// to be skipped, so ticks never overlap. Run waits for a running tick to finish before returning.
func Run(ctx context.Context, loc *time.Location, log zerolog.Logger, tick func(ctx context.Context, now time.Time)) error {
	logger := cronLogger{log: log}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	_, err := c.AddFunc(TickSpec, func() {
		tick(ctx, time.Now().In(loc))
	})
	if err != nil {
		return err
	}

	c.Start()
	log.Info().Str("spec", TickSpec).Str("location", loc.String()).Msg("scheduler started")

	<-ctx.Done()
	<-c.Stop().Done()
	log.Info().Msg("scheduler stopped")
	return nil
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
