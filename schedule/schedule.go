package schedule

import (
	"fmt"
	"time"
)

// DefaultCount is the lookahead used when Next is called with n <= 0.
const DefaultCount = 10

// Schedule composes clocks (merged, logical OR), a filter set, and an
// ordered adjustment list. Values are immutable once built.
type Schedule struct {
	clocks      []Clock
	filters     []Filter
	orFilters   []Filter
	notFilters  []Filter
	adjustments []Adjustment

	// Outer bounds over the merged raw candidates, checked before gating.
	// Used by union definitions that carry an overall date range.
	start *time.Time
	end   *time.Time
}

// Option configures an optional part of a Schedule.
type Option func(*Schedule)

// WithFilters adds required filters; every one must match.
func WithFilters(fs ...Filter) Option {
	return func(s *Schedule) { s.filters = append(s.filters, fs...) }
}

// WithOrFilters adds alternative filters; at least one must match.
// An empty set is vacuously satisfied.
func WithOrFilters(fs ...Filter) Option {
	return func(s *Schedule) { s.orFilters = append(s.orFilters, fs...) }
}

// WithNotFilters adds forbidden filters; none may match.
func WithNotFilters(fs ...Filter) Option {
	return func(s *Schedule) { s.notFilters = append(s.notFilters, fs...) }
}

// WithAdjustments appends adjustments, applied in declared order.
func WithAdjustments(as ...Adjustment) Option {
	return func(s *Schedule) { s.adjustments = append(s.adjustments, as...) }
}

// WithStartDate rejects merged candidates before t (inclusive bound).
func WithStartDate(t time.Time) Option {
	return func(s *Schedule) { s.start = &t }
}

// WithEndDate rejects merged candidates after t (inclusive bound) and lets
// Next prove exhaustion once every clock is past it.
func WithEndDate(t time.Time) Option {
	return func(s *Schedule) { s.end = &t }
}

// New builds a schedule over one or more clocks.
func New(clocks []Clock, opts ...Option) (*Schedule, error) {
	if len(clocks) == 0 {
		return nil, fmt.Errorf("schedule needs at least one clock: %w", ErrValidation)
	}
	for i, c := range clocks {
		if c == nil {
			return nil, fmt.Errorf("clock %d is nil: %w", i, ErrValidation)
		}
	}
	s := &Schedule{clocks: append([]Clock(nil), clocks...)}
	for _, opt := range opts {
		opt(s)
	}
	if s.start != nil && s.end != nil && s.end.Before(*s.start) {
		return nil, fmt.Errorf("end_date %s before start_date %s: %w", s.end.Format(time.RFC3339), s.start.Format(time.RFC3339), ErrValidation)
	}
	return s, nil
}

// Accessors used by the serialization layer.

func (s *Schedule) Clocks() []Clock           { return append([]Clock(nil), s.clocks...) }
func (s *Schedule) Filters() []Filter         { return append([]Filter(nil), s.filters...) }
func (s *Schedule) OrFilters() []Filter       { return append([]Filter(nil), s.orFilters...) }
func (s *Schedule) NotFilters() []Filter      { return append([]Filter(nil), s.notFilters...) }
func (s *Schedule) Adjustments() []Adjustment { return append([]Adjustment(nil), s.adjustments...) }

func (s *Schedule) StartDate() (time.Time, bool) {
	if s.start == nil {
		return time.Time{}, false
	}
	return *s.start, true
}

func (s *Schedule) EndDate() (time.Time, bool) {
	if s.end == nil {
		return time.Time{}, false
	}
	return *s.end, true
}

// Next returns up to n instants, ascending, each strictly after the given
// instant. A bounded schedule that runs out of candidates returns fewer
// than n results (possibly none); that is not an error.
//
// n <= 0 selects DefaultCount.
func (s *Schedule) Next(n int, after time.Time) []time.Time {
	if n <= 0 {
		n = DefaultCount
	}

	type cursor struct {
		at   time.Time
		live bool
	}
	cur := make([]cursor, len(s.clocks))
	for i, c := range s.clocks {
		t, ok := c.Next(after)
		cur[i] = cursor{at: t, live: ok}
	}

	out := make([]time.Time, 0, n)
	for len(out) < n {
		// Earliest live candidate across clocks.
		min := -1
		for i := range cur {
			if !cur[i].live {
				continue
			}
			if min < 0 || cur[i].at.Before(cur[min].at) {
				min = i
			}
		}
		if min < 0 {
			break // every clock exhausted
		}
		candidate := cur[min].at

		// Advance every clock sitting on this instant: duplicates across
		// clocks are evaluated (and returned) once.
		for i, c := range s.clocks {
			if cur[i].live && cur[i].at.Equal(candidate) {
				t, ok := c.Next(cur[i].at)
				cur[i] = cursor{at: t, live: ok}
			}
		}

		if s.end != nil && candidate.After(*s.end) {
			// candidate is the minimum, so every remaining candidate from
			// every clock is past the end bound as well.
			break
		}
		if s.start != nil && candidate.Before(*s.start) {
			continue
		}
		if !s.accepts(candidate) {
			continue
		}

		final := candidate
		for _, adj := range s.adjustments {
			final = adj.Apply(final)
		}
		out = append(out, final)
	}
	return out
}

// accepts gates a raw candidate. Adjustments never run for rejected ones.
func (s *Schedule) accepts(t time.Time) bool {
	for _, f := range s.filters {
		if !f.Matches(t) {
			return false
		}
	}
	if len(s.orFilters) > 0 {
		matched := false
		for _, f := range s.orFilters {
			if f.Matches(t) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, f := range s.notFilters {
		if f.Matches(t) {
			return false
		}
	}
	return true
}
