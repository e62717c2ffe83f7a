package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"schedkit/pkg/logx"
	"schedkit/schedule"
)

// Version tags every payload this codec writes. Anything at or above the
// legacy cutover (see legacy.go) decodes through the current model.
const Version = "1.0.0"

// Type discriminators of the current model.
const (
	typeSchedule      = "Schedule"
	typeIntervalClock = "IntervalClock"
	typeCronClock     = "CronClock"
	typeOneTimeClock  = "OneTimeClock"

	filterIsWeekday    = "is_weekday"
	filterBetweenTimes = "between_times"
	filterBetweenDates = "between_dates"

	adjustmentAdd = "add"
)

// Codec converts schedules to and from their JSON-safe form. The zero-value
// behavior (no logging) is available through the package-level functions.
type Codec struct {
	log logx.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger enables decode logging (legacy conversions log at debug level).
func WithLogger(l logx.Logger) Option {
	return func(c *Codec) { c.log = l }
}

func New(opts ...Option) *Codec {
	c := &Codec{log: logx.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var std = New()

// Marshal serializes a schedule to JSON bytes.
func Marshal(s *schedule.Schedule) ([]byte, error) { return std.Marshal(s) }

// Unmarshal deserializes JSON bytes, routing legacy payloads through the
// compatibility decoder.
func Unmarshal(data []byte) (*schedule.Schedule, error) { return std.Unmarshal(data) }

// Dump returns the JSON-safe structured value of a schedule.
func Dump(s *schedule.Schedule) (map[string]any, error) { return std.Dump(s) }

// Load builds a schedule from a structured value (or raw JSON bytes).
func Load(v any) (*schedule.Schedule, error) { return std.Load(v) }

// ---- wire documents ----

type scheduleDoc struct {
	Type        string          `json:"type"`
	Version     string          `json:"__version__,omitempty"`
	Clocks      []clockDoc      `json:"clocks"`
	Filters     []filterDoc     `json:"filters"`
	OrFilters   []filterDoc     `json:"or_filters"`
	NotFilters  []filterDoc     `json:"not_filters"`
	Adjustments []adjustmentDoc `json:"adjustments"`
	StartDate   *instantDoc     `json:"start_date"`
	EndDate     *instantDoc     `json:"end_date"`
}

type clockDoc struct {
	Type      string      `json:"type"`
	Interval  *int64      `json:"interval,omitempty"` // microseconds
	Cron      *string     `json:"cron,omitempty"`
	At        *instantDoc `json:"at,omitempty"`
	StartDate *instantDoc `json:"start_date,omitempty"`
	EndDate   *instantDoc `json:"end_date,omitempty"`
}

type filterDoc struct {
	Type       string `json:"type"`
	Lower      string `json:"lower,omitempty"`
	Upper      string `json:"upper,omitempty"`
	StartMonth int    `json:"start_month,omitempty"`
	StartDay   int    `json:"start_day,omitempty"`
	EndMonth   int    `json:"end_month,omitempty"`
	EndDay     int    `json:"end_day,omitempty"`
}

type adjustmentDoc struct {
	Type     string `json:"type"`
	Duration *int64 `json:"duration,omitempty"` // microseconds
}

// ---- encoding ----

func (c *Codec) Marshal(s *schedule.Schedule) ([]byte, error) {
	doc, err := c.encodeSchedule(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

func (c *Codec) Dump(s *schedule.Schedule) (map[string]any, error) {
	raw, err := c.Marshal(s)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *Codec) encodeSchedule(s *schedule.Schedule) (*scheduleDoc, error) {
	if s == nil {
		return nil, fmt.Errorf("nil schedule: %w", ErrSchema)
	}
	doc := &scheduleDoc{
		Type:        typeSchedule,
		Version:     Version,
		Clocks:      []clockDoc{},
		Filters:     []filterDoc{},
		OrFilters:   []filterDoc{},
		NotFilters:  []filterDoc{},
		Adjustments: []adjustmentDoc{},
	}
	for i, clk := range s.Clocks() {
		cd, err := encodeClock(clk)
		if err != nil {
			return nil, fmt.Errorf("clocks[%d]: %w", i, err)
		}
		doc.Clocks = append(doc.Clocks, cd)
	}
	groups := []struct {
		dst     *[]filterDoc
		name    string
		filters []schedule.Filter
	}{
		{&doc.Filters, "filters", s.Filters()},
		{&doc.OrFilters, "or_filters", s.OrFilters()},
		{&doc.NotFilters, "not_filters", s.NotFilters()},
	}
	for _, g := range groups {
		for i, f := range g.filters {
			fd, err := encodeFilter(f)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", g.name, i, err)
			}
			*g.dst = append(*g.dst, fd)
		}
	}
	for i, a := range s.Adjustments() {
		ad, err := encodeAdjustment(a)
		if err != nil {
			return nil, fmt.Errorf("adjustments[%d]: %w", i, err)
		}
		doc.Adjustments = append(doc.Adjustments, ad)
	}
	if t, ok := s.StartDate(); ok {
		doc.StartDate = newInstantDoc(t)
	}
	if t, ok := s.EndDate(); ok {
		doc.EndDate = newInstantDoc(t)
	}
	return doc, nil
}

func encodeClock(clk schedule.Clock) (clockDoc, error) {
	switch c := clk.(type) {
	case *schedule.IntervalClock:
		us := durationMicros(c.Period())
		doc := clockDoc{Type: typeIntervalClock, Interval: &us}
		if t, ok := c.Start(); ok {
			doc.StartDate = newInstantDoc(t)
		}
		if t, ok := c.End(); ok {
			doc.EndDate = newInstantDoc(t)
		}
		return doc, nil
	case *schedule.CronClock:
		expr := c.Expression()
		doc := clockDoc{Type: typeCronClock, Cron: &expr}
		if t, ok := c.Start(); ok {
			doc.StartDate = newInstantDoc(t)
		}
		if t, ok := c.End(); ok {
			doc.EndDate = newInstantDoc(t)
		}
		return doc, nil
	case *schedule.OneTimeClock:
		return clockDoc{Type: typeOneTimeClock, At: newInstantDoc(c.At())}, nil
	default:
		return clockDoc{}, fmt.Errorf("unsupported clock type %T: %w", clk, ErrSchema)
	}
}

func encodeFilter(f schedule.Filter) (filterDoc, error) {
	switch f := f.(type) {
	case *schedule.WeekdayFilter:
		return filterDoc{Type: filterIsWeekday}, nil
	case *schedule.TimeRangeFilter:
		return filterDoc{
			Type:  filterBetweenTimes,
			Lower: f.Lower().String(),
			Upper: f.Upper().String(),
		}, nil
	case *schedule.DateRangeFilter:
		return filterDoc{
			Type:       filterBetweenDates,
			StartMonth: f.StartMonth(),
			StartDay:   f.StartDay(),
			EndMonth:   f.EndMonth(),
			EndDay:     f.EndDay(),
		}, nil
	default:
		return filterDoc{}, fmt.Errorf("unsupported filter type %T: %w", f, ErrSchema)
	}
}

func encodeAdjustment(a schedule.Adjustment) (adjustmentDoc, error) {
	switch a := a.(type) {
	case *schedule.AddAdjustment:
		us := durationMicros(a.Duration())
		return adjustmentDoc{Type: adjustmentAdd, Duration: &us}, nil
	default:
		return adjustmentDoc{}, fmt.Errorf("unsupported adjustment type %T: %w", a, ErrSchema)
	}
}

// ---- decoding ----

func (c *Codec) Load(v any) (*schedule.Schedule, error) {
	switch data := v.(type) {
	case []byte:
		return c.Unmarshal(data)
	case json.RawMessage:
		return c.Unmarshal(data)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("schedule payload not JSON-safe: %v: %w", err, ErrSchema)
		}
		return c.Unmarshal(raw)
	}
}

func (c *Codec) Unmarshal(data []byte) (*schedule.Schedule, error) {
	var head struct {
		Type    string `json:"type"`
		Version string `json:"__version__"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("schedule payload: %v: %w", err, ErrSchema)
	}
	if head.Type == "" {
		return nil, fmt.Errorf("missing type discriminator: %w", ErrSchema)
	}
	if head.Version != "" {
		legacy, err := versionBeforeCutover(head.Version)
		if err != nil {
			return nil, err
		}
		if legacy {
			return c.decodeLegacy(head.Type, head.Version, data)
		}
	}
	if head.Type != typeSchedule {
		return nil, fmt.Errorf("unknown schedule type %q: %w", head.Type, ErrSchema)
	}
	var doc scheduleDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schedule payload: %v: %w", err, ErrSchema)
	}
	return c.decodeSchedule(&doc)
}

func (c *Codec) decodeSchedule(doc *scheduleDoc) (*schedule.Schedule, error) {
	if len(doc.Clocks) == 0 {
		return nil, fmt.Errorf("clocks: at least one required: %w", ErrSchema)
	}
	clocks := make([]schedule.Clock, 0, len(doc.Clocks))
	for i, cd := range doc.Clocks {
		clk, err := decodeClock(cd, fmt.Sprintf("clocks[%d]", i))
		if err != nil {
			return nil, err
		}
		clocks = append(clocks, clk)
	}

	var opts []schedule.Option
	groups := []struct {
		docs []filterDoc
		name string
		with func(...schedule.Filter) schedule.Option
	}{
		{doc.Filters, "filters", schedule.WithFilters},
		{doc.OrFilters, "or_filters", schedule.WithOrFilters},
		{doc.NotFilters, "not_filters", schedule.WithNotFilters},
	}
	for _, g := range groups {
		if len(g.docs) == 0 {
			continue
		}
		fs := make([]schedule.Filter, 0, len(g.docs))
		for i, fd := range g.docs {
			f, err := decodeFilter(fd, fmt.Sprintf("%s[%d]", g.name, i))
			if err != nil {
				return nil, err
			}
			fs = append(fs, f)
		}
		opts = append(opts, g.with(fs...))
	}
	if len(doc.Adjustments) > 0 {
		as := make([]schedule.Adjustment, 0, len(doc.Adjustments))
		for i, ad := range doc.Adjustments {
			a, err := decodeAdjustment(ad, fmt.Sprintf("adjustments[%d]", i))
			if err != nil {
				return nil, err
			}
			as = append(as, a)
		}
		opts = append(opts, schedule.WithAdjustments(as...))
	}
	if doc.StartDate != nil {
		t, err := doc.StartDate.instant("start_date")
		if err != nil {
			return nil, err
		}
		opts = append(opts, schedule.WithStartDate(t))
	}
	if doc.EndDate != nil {
		t, err := doc.EndDate.instant("end_date")
		if err != nil {
			return nil, err
		}
		opts = append(opts, schedule.WithEndDate(t))
	}
	return schedule.New(clocks, opts...)
}

func decodeClock(doc clockDoc, field string) (schedule.Clock, error) {
	switch doc.Type {
	case typeIntervalClock:
		if doc.Interval == nil {
			return nil, fmt.Errorf("%s: missing interval: %w", field, ErrSchema)
		}
		opts, err := clockBoundOptions(doc, field)
		if err != nil {
			return nil, err
		}
		return schedule.NewIntervalClock(microsDuration(*doc.Interval), opts...)
	case typeCronClock:
		if doc.Cron == nil {
			return nil, fmt.Errorf("%s: missing cron: %w", field, ErrSchema)
		}
		opts, err := clockBoundOptions(doc, field)
		if err != nil {
			return nil, err
		}
		return schedule.NewCronClock(*doc.Cron, opts...)
	case typeOneTimeClock:
		if doc.At == nil {
			return nil, fmt.Errorf("%s: missing at: %w", field, ErrSchema)
		}
		at, err := doc.At.instant(field + ".at")
		if err != nil {
			return nil, err
		}
		return schedule.NewOneTimeClock(at), nil
	default:
		return nil, fmt.Errorf("%s: unknown clock type %q: %w", field, doc.Type, ErrSchema)
	}
}

func clockBoundOptions(doc clockDoc, field string) ([]schedule.ClockOption, error) {
	var opts []schedule.ClockOption
	if doc.StartDate != nil {
		t, err := doc.StartDate.instant(field + ".start_date")
		if err != nil {
			return nil, err
		}
		opts = append(opts, schedule.WithStart(t))
	}
	if doc.EndDate != nil {
		t, err := doc.EndDate.instant(field + ".end_date")
		if err != nil {
			return nil, err
		}
		opts = append(opts, schedule.WithEnd(t))
	}
	return opts, nil
}

func decodeFilter(doc filterDoc, field string) (schedule.Filter, error) {
	switch doc.Type {
	case filterIsWeekday:
		return schedule.IsWeekday(), nil
	case filterBetweenTimes:
		lower, err := schedule.ParseTimeOfDay(doc.Lower)
		if err != nil {
			return nil, fmt.Errorf("%s.lower: %v: %w", field, err, ErrSchema)
		}
		upper, err := schedule.ParseTimeOfDay(doc.Upper)
		if err != nil {
			return nil, fmt.Errorf("%s.upper: %v: %w", field, err, ErrSchema)
		}
		return schedule.BetweenTimes(lower, upper), nil
	case filterBetweenDates:
		for _, p := range []struct {
			name     string
			val, max int
		}{
			{"start_month", doc.StartMonth, 12},
			{"start_day", doc.StartDay, 31},
			{"end_month", doc.EndMonth, 12},
			{"end_day", doc.EndDay, 31},
		} {
			if p.val < 1 || p.val > p.max {
				return nil, fmt.Errorf("%s.%s: %d out of range: %w", field, p.name, p.val, ErrSchema)
			}
		}
		return schedule.BetweenDates(doc.StartMonth, doc.StartDay, doc.EndMonth, doc.EndDay), nil
	default:
		return nil, fmt.Errorf("%s: unknown filter type %q: %w", field, doc.Type, ErrSchema)
	}
}

func decodeAdjustment(doc adjustmentDoc, field string) (schedule.Adjustment, error) {
	switch doc.Type {
	case adjustmentAdd:
		if doc.Duration == nil {
			return nil, fmt.Errorf("%s: missing duration: %w", field, ErrSchema)
		}
		return schedule.Add(microsDuration(*doc.Duration)), nil
	default:
		return nil, fmt.Errorf("%s: unknown adjustment type %q: %w", field, doc.Type, ErrSchema)
	}
}

// ---- durations ----

func durationMicros(d time.Duration) int64  { return int64(d / time.Microsecond) }
func microsDuration(us int64) time.Duration { return time.Duration(us) * time.Microsecond }
