package backfill

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/crucial707/oci-dispatch/cmd/oci-dispatch/clitest"
	"github.com/crucial707/oci-dispatch/internal/dates"
)

const tasks = `
usage:
  name: insert_usage
  program: sh
  args: ["-c", "echo {date} >> usage.txt; test {date} != 2025-07-18"]
`

func TestBackfill_InclusiveRange(t *testing.T) {
	dir := clitest.Env(t, tasks)

	out, err := clitest.Run(t, NewCommand(), "2025-07-16", "2025-07-19")
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	want := "2025-07-16,2025-07-17,2025-07-18,2025-07-19"
	if got := strings.Join(clitest.Lines(t, dir, "usage.txt"), ","); got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
	if !strings.Contains(out, "2025-07-19") || !strings.Contains(out, "failed") {
		t.Errorf("expected every day and the failed one in the table:\n%s", out)
	}
}

func TestBackfill_FailFast(t *testing.T) {
	dir := clitest.Env(t, tasks)

	if _, err := clitest.Run(t, NewCommand(), "--fail-fast", "2025-07-16", "2025-07-19"); err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if got := strings.Join(clitest.Lines(t, dir, "usage.txt"), ","); got != "2025-07-16,2025-07-17,2025-07-18" {
		t.Errorf("fail-fast should stop after 2025-07-18, got %s", got)
	}
}

func TestBackfill_JSON(t *testing.T) {
	clitest.Env(t, tasks)

	out, err := clitest.Run(t, NewCommand(), "--json", "2025-07-17", "2025-07-18")
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	var got []dayResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid json %q: %v", out, err)
	}
	if len(got) != 2 || got[0].Status != "succeeded" || got[1].Date != "2025-07-18" || got[1].Status != "failed" {
		t.Errorf("unexpected results: %+v", got)
	}
}

func TestBackfill_EndBeforeStart(t *testing.T) {
	dir := clitest.Env(t, tasks)

	if _, err := clitest.Run(t, NewCommand(), "2025-09-23", "2025-07-17"); err != nil {
		t.Fatalf("reversed range is not an error: %v", err)
	}
	if got := clitest.Lines(t, dir, "usage.txt"); len(got) != 0 {
		t.Errorf("expected no invocations, got %v", got)
	}
}

func TestBackfill_ArgumentCount(t *testing.T) {
	clitest.Env(t, tasks)
	for _, args := range [][]string{{"2025-07-17"}, {"2025-07-17", "2025-07-18", "2025-07-19"}, {}} {
		out, err := clitest.Run(t, NewCommand(), args...)
		if err == nil {
			t.Errorf("expected error for %d args", len(args))
		}
		if !strings.Contains(out, "Usage:") || !strings.Contains(out, "backfill START END") {
			t.Errorf("expected usage message for %d args, got %q", len(args), out)
		}
	}
}

func TestBackfill_InvalidDates(t *testing.T) {
	dir := clitest.Env(t, tasks)
	for _, args := range [][]string{{"2025-13-01", "2025-07-18"}, {"2025-07-17", "tomorrow"}} {
		_, err := clitest.Run(t, NewCommand(), args...)
		if !errors.Is(err, dates.ErrInvalidDateFormat) {
			t.Errorf("%v: expected ErrInvalidDateFormat, got %v", args, err)
		}
	}
	if got := clitest.Lines(t, dir, "usage.txt"); len(got) != 0 {
		t.Errorf("nothing should run for invalid dates, got %v", got)
	}
}
