package schedule

import "time"

// Filter gates whether a raw clock instant becomes a result. Filters are
// stateless predicates: safe to invoke repeatedly and in any order.
// Evaluation uses the instant's own location.
type Filter interface {
	Matches(t time.Time) bool
}

// ---- is_weekday ----

// WeekdayFilter matches Monday through Friday.
type WeekdayFilter struct{}

func IsWeekday() *WeekdayFilter { return &WeekdayFilter{} }

func (*WeekdayFilter) Matches(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// ---- between_times ----

// TimeRangeFilter matches instants whose time of day falls within
// [lower, upper], both ends inclusive. When upper precedes lower the
// window wraps past midnight.
type TimeRangeFilter struct {
	lower TimeOfDay
	upper TimeOfDay
}

func BetweenTimes(lower, upper TimeOfDay) *TimeRangeFilter {
	return &TimeRangeFilter{lower: lower, upper: upper}
}

func (f *TimeRangeFilter) Lower() TimeOfDay { return f.lower }
func (f *TimeRangeFilter) Upper() TimeOfDay { return f.upper }

func (f *TimeRangeFilter) Matches(t time.Time) bool {
	tod := instantNanosOfDay(t)
	lo, hi := f.lower.nanosOfDay(), f.upper.nanosOfDay()
	if lo <= hi {
		return tod >= lo && tod <= hi
	}
	return tod >= lo || tod <= hi
}

// ---- between_dates ----

// DateRangeFilter matches instants whose (month, day) falls within an
// inclusive, year-agnostic calendar window. When the end precedes the start
// the window wraps across year-end (e.g. Dec 20 .. Jan 5).
type DateRangeFilter struct {
	startMonth, startDay int
	endMonth, endDay     int
}

func BetweenDates(startMonth, startDay, endMonth, endDay int) *DateRangeFilter {
	return &DateRangeFilter{
		startMonth: startMonth, startDay: startDay,
		endMonth: endMonth, endDay: endDay,
	}
}

func (f *DateRangeFilter) StartMonth() int { return f.startMonth }
func (f *DateRangeFilter) StartDay() int   { return f.startDay }
func (f *DateRangeFilter) EndMonth() int   { return f.endMonth }
func (f *DateRangeFilter) EndDay() int     { return f.endDay }

func (f *DateRangeFilter) Matches(t time.Time) bool {
	day := int(t.Month())*100 + t.Day()
	lo := f.startMonth*100 + f.startDay
	hi := f.endMonth*100 + f.endDay
	if lo <= hi {
		return day >= lo && day <= hi
	}
	return day >= lo || day <= hi
}
