package backfill

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/crucial707/oci-dispatch/internal/dates"
	"github.com/crucial707/oci-dispatch/internal/runner"
	"github.com/crucial707/oci-dispatch/internal/task"
)

// recordingDriver returns a driver whose day task appends each date, failing on the given days.
func recordingDriver(seen *[]string, failOn map[string]bool) *Driver {
	return &Driver{
		Runner: runner.New(zerolog.Nop(), nil),
		Log:    zerolog.Nop(),
		Task: func(d dates.Date) task.Task {
			day := d.String()
			return task.Of("insert_usage.py "+day, func(ctx context.Context) error {
				*seen = append(*seen, day)
				if failOn[day] {
					return errors.New("usage api timeout")
				}
				return nil
			})
		},
	}
}

func TestRun_InclusiveAscending(t *testing.T) {
	var seen []string
	d := recordingDriver(&seen, nil)

	rep, err := d.Run(context.Background(), "2025-07-17", "2025-09-23")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seen) != 69 || len(rep.Results) != 69 {
		t.Fatalf("expected 69 invocations, got %d (report %d)", len(seen), len(rep.Results))
	}
	if seen[0] != "2025-07-17" || seen[len(seen)-1] != "2025-09-23" {
		t.Errorf("unexpected endpoints: %s .. %s", seen[0], seen[len(seen)-1])
	}
	for i := 1; i < len(seen); i++ {
		prev, _ := dates.Parse(seen[i-1])
		cur, _ := dates.Parse(seen[i])
		if dates.DaysBetween(prev, cur) != 1 {
			t.Fatalf("dates not consecutive at %d: %s then %s", i, seen[i-1], seen[i])
		}
	}
}

func TestRun_SingleDay(t *testing.T) {
	var seen []string
	d := recordingDriver(&seen, nil)

	if _, err := d.Run(context.Background(), "2025-12-31", "2025-12-31"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seen) != 1 || seen[0] != "2025-12-31" {
		t.Errorf("expected one invocation for 2025-12-31, got %v", seen)
	}
}

func TestRun_CrossesYear(t *testing.T) {
	var seen []string
	d := recordingDriver(&seen, nil)

	if _, err := d.Run(context.Background(), "2025-12-30", "2026-01-02"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"2025-12-30", "2025-12-31", "2026-01-01", "2026-01-02"}
	if len(seen) != len(want) {
		t.Fatalf("got %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("day %d: got %s, want %s", i, seen[i], want[i])
		}
	}
}

func TestRun_EndBeforeStart(t *testing.T) {
	var seen []string
	d := recordingDriver(&seen, nil)

	rep, err := d.Run(context.Background(), "2025-09-23", "2025-07-17")
	if err != nil {
		t.Fatalf("end before start must not be an error: %v", err)
	}
	if len(seen) != 0 || len(rep.Results) != 0 {
		t.Errorf("expected zero invocations, got %v", seen)
	}
}

func TestRun_InvalidDates(t *testing.T) {
	var seen []string
	d := recordingDriver(&seen, nil)

	for _, c := range [][2]string{
		{"2025-7-17", "2025-09-23"},
		{"2025-07-17", "2025-09-31"},
		{"", ""},
	} {
		_, err := d.Run(context.Background(), c[0], c[1])
		if !errors.Is(err, ErrInvalidRange) {
			t.Errorf("Run(%q, %q): expected ErrInvalidRange, got %v", c[0], c[1], err)
		}
		if !errors.Is(err, dates.ErrInvalidDateFormat) {
			t.Errorf("Run(%q, %q): expected wrapped ErrInvalidDateFormat, got %v", c[0], c[1], err)
		}
	}
	if len(seen) != 0 {
		t.Errorf("no day should run on invalid input, got %v", seen)
	}
}

func TestRun_ContinuesPastFailedDay(t *testing.T) {
	var seen []string
	d := recordingDriver(&seen, map[string]bool{"2025-01-02": true})

	rep, err := d.Run(context.Background(), "2025-01-01", "2025-01-04")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seen) != 4 {
		t.Fatalf("expected all 4 days attempted, got %v", seen)
	}
	if failed := rep.Failed(); len(failed) != 1 || failed[0] != "insert_usage.py 2025-01-02" {
		t.Errorf("unexpected failed list: %v", failed)
	}
}

func TestRun_FailFast(t *testing.T) {
	var seen []string
	d := recordingDriver(&seen, map[string]bool{"2025-01-02": true})
	d.FailFast = true

	if _, err := d.Run(context.Background(), "2025-01-01", "2025-01-04"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seen) != 2 || seen[1] != "2025-01-02" {
		t.Errorf("expected stop after failed day, got %v", seen)
	}
}

func TestRunSingle(t *testing.T) {
	var seen []string
	d := recordingDriver(&seen, nil)

	day, _ := dates.Parse("2025-03-01")
	res := d.RunSingle(context.Background(), day)
	if res.Failed() || len(seen) != 1 || seen[0] != "2025-03-01" {
		t.Errorf("unexpected single run: %+v, %v", res, seen)
	}
}

func TestTargetDate(t *testing.T) {
	now := time.Date(2025, time.January, 2, 1, 0, 0, 0, time.Local)

	d, err := TargetDate(nil, now)
	if err != nil || d.String() != "2025-01-01" {
		t.Errorf("no args: got %s, %v; want 2025-01-01", d, err)
	}

	d, err = TargetDate([]string{"2024-02-29"}, now)
	if err != nil || d.String() != "2024-02-29" {
		t.Errorf("explicit date: got %s, %v", d, err)
	}

	if _, err := TargetDate([]string{"02/29/2024"}, now); !errors.Is(err, dates.ErrInvalidDateFormat) {
		t.Errorf("malformed date: expected ErrInvalidDateFormat, got %v", err)
	}

	if _, err := TargetDate([]string{"2025-01-01", "2025-01-02"}, now); !errors.Is(err, ErrInvalidArgumentCount) {
		t.Errorf("two args: expected ErrInvalidArgumentCount, got %v", err)
	}
}
