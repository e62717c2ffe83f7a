// Package codec serializes schedule definitions to a JSON-safe structured
// form and back.
//
// # Dispatch
//
// Every payload carries a "type" discriminator. Current-model payloads use
// "Schedule" with nested clock docs ("IntervalClock", "CronClock",
// "OneTimeClock"); payloads written by the pre-0.6.1 engine use the flat
// legacy discriminators ("IntervalSchedule", "CronSchedule",
// "OneTimeSchedule", "UnionSchedule") together with a "__version__" tag and
// are converted onto the current clock/filter model during load. The
// conversion is exact: the same stored bytes produce identical Next output
// before and after migration.
//
// # Contract
//
// Load(Dump(s)) is Next-equivalent to s for every valid schedule, including
// after a round trip through plain encoding/json. Unknown discriminators
// and missing required fields fail with an error wrapping ErrSchema; nothing
// is silently defaulted.
//
// Instants serialize as {"dt": "<ISO-8601 local wall time>", "tz": "<IANA
// zone>"}; durations serialize as integer microseconds (the unit the legacy
// engine used, carried forward for both schemas).
package codec
