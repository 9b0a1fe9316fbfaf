package cadence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Cadence decides whether a task group is due on the tick at t.
// Only t's hour and minute (and, for Cron, the rest of the calendar) matter.
type Cadence interface {
	Due(t time.Time) bool
	String() string
}

type everyTick struct{}

// EveryTick is due on every tick.
func EveryTick() Cadence { return everyTick{} }

func (everyTick) Due(time.Time) bool { return true }
func (everyTick) String() string     { return "tick" }

type everyN struct{ n int }

// EveryNTicks is due when the minute is a multiple of n. n must be positive.
func EveryNTicks(n int) (Cadence, error) {
	if n <= 0 {
		return nil, fmt.Errorf("cadence: every:%d must be positive", n)
	}
	return everyN{n: n}, nil
}

func (c everyN) Due(t time.Time) bool { return t.Minute()%c.n == 0 }
func (c everyN) String() string       { return "every:" + strconv.Itoa(c.n) }

type dailyAt struct{ hour, minute int }

// DailyAt is due once a day, on the tick whose hour and minute match exactly.
func DailyAt(hour, minute int) (Cadence, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("cadence: daily:%02d:%02d out of range", hour, minute)
	}
	return dailyAt{hour: hour, minute: minute}, nil
}

func (c dailyAt) Due(t time.Time) bool { return t.Hour() == c.hour && t.Minute() == c.minute }
func (c dailyAt) String() string       { return fmt.Sprintf("daily:%02d:%02d", c.hour, c.minute) }

type cronExpr struct {
	expr  string
	sched cron.Schedule
}

// Cron is due when the standard 5-field expression fires within t's minute.
func Cron(expr string) (Cadence, error) {
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("cadence: invalid cron %q: %w", expr, err)
	}
	return cronExpr{expr: expr, sched: sched}, nil
}

func (c cronExpr) Due(t time.Time) bool {
	start := t.Truncate(time.Minute)
	return c.sched.Next(start.Add(-time.Second)).Equal(start)
}

func (c cronExpr) String() string { return "cron:" + c.expr }

// Parse reads the config form of a cadence: "tick", "every:N", "daily:HH:MM" or "cron:<expr>".
// Numbers are always base 10, so "every:05" and "daily:01:08" are 5 and 1:08.
func Parse(s string) (Cadence, error) {
	s = strings.TrimSpace(s)
	kind, rest, _ := strings.Cut(s, ":")
	switch strings.ToLower(kind) {
	case "tick":
		if rest != "" {
			return nil, fmt.Errorf("cadence: %q takes no argument", s)
		}
		return EveryTick(), nil
	case "every":
		n, err := strconv.Atoi(rest)
		if err != nil {
			return nil, fmt.Errorf("cadence: invalid interval in %q", s)
		}
		return EveryNTicks(n)
	case "daily":
		hh, mm, ok := strings.Cut(rest, ":")
		if !ok {
			return nil, fmt.Errorf("cadence: %q must be daily:HH:MM", s)
		}
		h, herr := strconv.Atoi(hh)
		m, merr := strconv.Atoi(mm)
		if herr != nil || merr != nil {
			return nil, fmt.Errorf("cadence: invalid time in %q", s)
		}
		return DailyAt(h, m)
	case "cron":
		return Cron(rest)
	}
	return nil, fmt.Errorf("cadence: unknown form %q", s)
}
