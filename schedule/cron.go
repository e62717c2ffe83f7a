package schedule

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser accepts the standard 5-field form (minute, hour, day-of-month,
// month, day-of-week) plus descriptors such as "@daily" and "@every 1h".
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// CronClock fires at the times matched by a cron expression, evaluated in
// the timezone of its start bound when set, otherwise UTC. Day-of-month and
// day-of-week combine with OR semantics when both are restricted, per POSIX.
type CronClock struct {
	expr   string
	sched  cron.Schedule
	loc    *time.Location
	bounds clockBounds
}

// NewCronClock parses the expression eagerly; a malformed expression fails
// here, never inside Next.
func NewCronClock(expr string, opts ...ClockOption) (*CronClock, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("cron expression %q: %v: %w", expr, err, ErrValidation)
	}
	var b clockBounds
	for _, opt := range opts {
		opt(&b)
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	loc := time.UTC
	if b.start != nil {
		loc = b.start.Location()
	}
	return &CronClock{expr: expr, sched: sched, loc: loc, bounds: b}, nil
}

func (c *CronClock) Expression() string { return c.expr }

func (c *CronClock) Start() (time.Time, bool) {
	if c.bounds.start == nil {
		return time.Time{}, false
	}
	return *c.bounds.start, true
}

func (c *CronClock) End() (time.Time, bool) {
	if c.bounds.end == nil {
		return time.Time{}, false
	}
	return *c.bounds.end, true
}

func (c *CronClock) Next(after time.Time) (time.Time, bool) {
	base := after.In(c.loc)
	if c.bounds.start != nil {
		// A start that is itself a firing instant must be produced, so step
		// back one second before asking for the strictly-next firing.
		if s := c.bounds.start.Add(-time.Second); s.After(base) {
			base = s
		}
	}

	t := c.sched.Next(base)
	for !t.IsZero() && c.bounds.start != nil && t.Before(*c.bounds.start) {
		// Guards sub-second start bounds, where the one-second step back can
		// land on a firing just before start.
		t = c.sched.Next(t)
	}
	if t.IsZero() {
		// robfig gives up after a bounded search (e.g. "0 0 30 2 *").
		return time.Time{}, false
	}
	if c.bounds.end != nil && t.After(*c.bounds.end) {
		return time.Time{}, false
	}
	return t, true
}
