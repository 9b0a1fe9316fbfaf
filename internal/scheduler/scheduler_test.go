package scheduler

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

func TestTickSpec_EveryMinute(t *testing.T) {
	sched, err := cron.ParseStandard(TickSpec)
	if err != nil {
		t.Fatalf("ParseStandard: %v", err)
	}
	from := time.Date(2025, 7, 17, 0, 59, 30, 0, time.UTC)
	if next := sched.Next(from); !next.Equal(time.Date(2025, 7, 17, 1, 0, 0, 0, time.UTC)) {
		t.Errorf("Next: got %s", next)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, time.UTC, zerolog.Nop(), func(context.Context, time.Time) {})
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestCronLogger(t *testing.T) {
	var buf bytes.Buffer
	l := cronLogger{log: zerolog.New(&buf)}
	l.Error(errors.New("job panicked"), "panic", "entry", 3)

	out := buf.String()
	if !strings.Contains(out, "cron: panic") || !strings.Contains(out, "job panicked") || !strings.Contains(out, `"entry":3`) {
		t.Errorf("unexpected log: %s", out)
	}
}
