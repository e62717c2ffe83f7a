package codec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"schedkit/pkg/logx"
	"schedkit/schedule"
)

// Legacy discriminators used by the flat, single-clock schema.
const (
	legacyTypeInterval = "IntervalSchedule"
	legacyTypeCron     = "CronSchedule"
	legacyTypeOneTime  = "OneTimeSchedule"
	legacyTypeUnion    = "UnionSchedule"
)

// cutover is the first version that wrote the clock/filter model. Payloads
// tagged before it decode through this file.
var cutover = [3]int{0, 6, 1}

// versionBeforeCutover parses a "__version__" tag such as
// "0.6.0+105.gce4aef06" and reports whether it predates the cutover.
func versionBeforeCutover(v string) (bool, error) {
	core := v
	if i := strings.IndexAny(core, "+-"); i >= 0 {
		core = core[:i]
	}
	parts := strings.Split(core, ".")
	if len(parts) < 3 {
		return false, fmt.Errorf("__version__ %q: %w", v, ErrSchema)
	}
	var nums [3]int
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return false, fmt.Errorf("__version__ %q: %w", v, ErrSchema)
		}
		nums[i] = n
	}
	for i := 0; i < 3; i++ {
		if nums[i] != cutover[i] {
			return nums[i] < cutover[i], nil
		}
	}
	return false, nil
}

// legacyDoc is the flat wire form shared by all pre-cutover schedule types.
type legacyDoc struct {
	Interval  *int64            `json:"interval"` // microseconds
	Cron      *string           `json:"cron"`
	StartDate *instantDoc       `json:"start_date"`
	EndDate   *instantDoc       `json:"end_date"`
	Schedules []json.RawMessage `json:"schedules"`
}

// decodeLegacy maps an old flat payload onto the clock/filter model. The
// mapping is exact: legacy bytes produce identical Next output before and
// after migration.
func (c *Codec) decodeLegacy(typ, version string, data []byte) (*schedule.Schedule, error) {
	c.log.Debug("decoding legacy schedule payload",
		logx.String("type", typ), logx.String("version", version))

	var doc legacyDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("legacy %s payload: %v: %w", typ, err, ErrSchema)
	}

	switch typ {
	case legacyTypeInterval:
		return c.decodeLegacyInterval(&doc)
	case legacyTypeCron:
		return c.decodeLegacyCron(&doc)
	case legacyTypeOneTime:
		return c.decodeLegacyOneTime(&doc)
	case legacyTypeUnion:
		return c.decodeLegacyUnion(&doc)
	default:
		return nil, fmt.Errorf("unknown legacy schedule type %q: %w", typ, ErrSchema)
	}
}

func (c *Codec) decodeLegacyInterval(doc *legacyDoc) (*schedule.Schedule, error) {
	if doc.Interval == nil {
		return nil, fmt.Errorf("interval: required for IntervalSchedule: %w", ErrSchema)
	}
	if doc.StartDate == nil {
		return nil, fmt.Errorf("start_date: required for IntervalSchedule: %w", ErrSchema)
	}
	start, err := doc.StartDate.instant("start_date")
	if err != nil {
		return nil, err
	}
	opts := []schedule.ClockOption{schedule.WithStart(start)}
	if doc.EndDate != nil {
		// The bound lives on the clock, not the schedule, so Next proves
		// exhaustion (and returns nothing) once the range is passed.
		end, err := doc.EndDate.instant("end_date")
		if err != nil {
			return nil, err
		}
		opts = append(opts, schedule.WithEnd(end))
	}
	clk, err := schedule.NewIntervalClock(microsDuration(*doc.Interval), opts...)
	if err != nil {
		return nil, err
	}
	return schedule.New([]schedule.Clock{clk})
}

func (c *Codec) decodeLegacyCron(doc *legacyDoc) (*schedule.Schedule, error) {
	if doc.Cron == nil {
		return nil, fmt.Errorf("cron: required for CronSchedule: %w", ErrSchema)
	}
	var opts []schedule.ClockOption
	if doc.StartDate != nil {
		start, err := doc.StartDate.instant("start_date")
		if err != nil {
			return nil, err
		}
		opts = append(opts, schedule.WithStart(start))
	}
	if doc.EndDate != nil {
		end, err := doc.EndDate.instant("end_date")
		if err != nil {
			return nil, err
		}
		opts = append(opts, schedule.WithEnd(end))
	}
	clk, err := schedule.NewCronClock(*doc.Cron, opts...)
	if err != nil {
		return nil, err
	}
	return schedule.New([]schedule.Clock{clk})
}

func (c *Codec) decodeLegacyOneTime(doc *legacyDoc) (*schedule.Schedule, error) {
	if doc.StartDate == nil {
		return nil, fmt.Errorf("start_date: required for OneTimeSchedule: %w", ErrSchema)
	}
	at, err := doc.StartDate.instant("start_date")
	if err != nil {
		return nil, err
	}
	return schedule.New([]schedule.Clock{schedule.NewOneTimeClock(at)})
}

func (c *Codec) decodeLegacyUnion(doc *legacyDoc) (*schedule.Schedule, error) {
	if len(doc.Schedules) == 0 {
		return nil, fmt.Errorf("schedules: required for UnionSchedule: %w", ErrSchema)
	}
	var clocks []schedule.Clock
	for i, raw := range doc.Schedules {
		member, err := c.Unmarshal(raw)
		if err != nil {
			return nil, fmt.Errorf("schedules[%d]: %w", i, err)
		}
		clocks = append(clocks, member.Clocks()...)
	}

	// The union's own range becomes an outer bound over the merged
	// candidates; member ranges already sit on their clocks.
	var opts []schedule.Option
	if doc.StartDate != nil {
		start, err := doc.StartDate.instant("start_date")
		if err != nil {
			return nil, err
		}
		opts = append(opts, schedule.WithStartDate(start))
	}
	if doc.EndDate != nil {
		end, err := doc.EndDate.instant("end_date")
		if err != nil {
			return nil, err
		}
		opts = append(opts, schedule.WithEndDate(end))
	}
	return schedule.New(clocks, opts...)
}
