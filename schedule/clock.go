package schedule

import (
	"fmt"
	"time"
)

// Clock generates the raw recurrence sequence of a schedule.
//
// Next returns the earliest candidate instant strictly after the given
// instant, or ok=false once the clock is exhausted. Implementations are
// stateless: feeding each result back in walks the full ascending sequence,
// and a fresh walk can be started from any instant at any time.
type Clock interface {
	Next(after time.Time) (time.Time, bool)
}

// unixEpoch anchors interval clocks that have no explicit start, so that
// repeated Next calls stay reproducible and never depend on "now".
// Day- or hour-multiple periods therefore align to midnight / on-the-hour UTC.
var unixEpoch = time.Unix(0, 0).UTC()

type clockBounds struct {
	start *time.Time
	end   *time.Time
}

// ClockOption configures the optional start/end bounds of a clock.
type ClockOption func(*clockBounds)

// WithStart sets the inclusive lower bound (and anchor, for interval clocks).
func WithStart(t time.Time) ClockOption {
	return func(b *clockBounds) { b.start = &t }
}

// WithEnd sets the inclusive upper bound.
func WithEnd(t time.Time) ClockOption {
	return func(b *clockBounds) { b.end = &t }
}

func (b clockBounds) validate() error {
	if b.start != nil && b.end != nil && b.end.Before(*b.start) {
		return fmt.Errorf("end_date %s before start_date %s: %w", b.end.Format(time.RFC3339), b.start.Format(time.RFC3339), ErrValidation)
	}
	return nil
}

// ---- IntervalClock ----

// IntervalClock fires every fixed period. Candidates are anchor + k*period;
// the anchor is the start bound when set, otherwise the Unix epoch (UTC).
type IntervalClock struct {
	period time.Duration
	bounds clockBounds
}

// NewIntervalClock builds an interval clock. The period must be positive;
// sub-second periods are supported.
func NewIntervalClock(period time.Duration, opts ...ClockOption) (*IntervalClock, error) {
	if period <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s: %w", period, ErrValidation)
	}
	var b clockBounds
	for _, opt := range opts {
		opt(&b)
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return &IntervalClock{period: period, bounds: b}, nil
}

func (c *IntervalClock) Period() time.Duration { return c.period }

func (c *IntervalClock) Start() (time.Time, bool) {
	if c.bounds.start == nil {
		return time.Time{}, false
	}
	return *c.bounds.start, true
}

func (c *IntervalClock) End() (time.Time, bool) {
	if c.bounds.end == nil {
		return time.Time{}, false
	}
	return *c.bounds.end, true
}

// Next computes the smallest candidate > after analytically, so it stays
// correct (and O(1)) for an after arbitrarily far from the anchor.
func (c *IntervalClock) Next(after time.Time) (time.Time, bool) {
	anchor := unixEpoch
	if c.bounds.start != nil {
		anchor = *c.bounds.start
	}

	k := floorDiv(int64(after.Sub(anchor)), int64(c.period)) + 1
	candidate := anchor.Add(time.Duration(k) * c.period)
	if c.bounds.start != nil && candidate.Before(*c.bounds.start) {
		candidate = *c.bounds.start
	}
	if c.bounds.end != nil && candidate.After(*c.bounds.end) {
		return time.Time{}, false
	}
	return candidate, true
}

// floorDiv divides rounding toward negative infinity; b must be positive.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

// ---- OneTimeClock ----

// OneTimeClock fires exactly once.
type OneTimeClock struct {
	at time.Time
}

func NewOneTimeClock(at time.Time) *OneTimeClock {
	return &OneTimeClock{at: at}
}

func (c *OneTimeClock) At() time.Time { return c.at }

func (c *OneTimeClock) Next(after time.Time) (time.Time, bool) {
	if c.at.After(after) {
		return c.at, true
	}
	return time.Time{}, false
}
