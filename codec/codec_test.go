package codec

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedkit/schedule"
)

func utc(year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, time.UTC)
}

func complexSchedule(t *testing.T) *schedule.Schedule {
	t.Helper()
	hourly, err := schedule.NewIntervalClock(time.Hour)
	require.NoError(t, err)
	s, err := schedule.New(
		[]schedule.Clock{hourly},
		schedule.WithFilters(schedule.IsWeekday()),
		schedule.WithOrFilters(
			schedule.BetweenTimes(schedule.At(9, 0, 0), schedule.At(9, 0, 0)),
			schedule.BetweenTimes(schedule.At(15, 0, 0), schedule.At(15, 0, 0)),
		),
		schedule.WithNotFilters(schedule.BetweenDates(1, 8, 1, 8)),
		schedule.WithAdjustments(schedule.Add(3*time.Hour)),
	)
	require.NoError(t, err)
	return s
}

func assertSameNext(t *testing.T, want, got *schedule.Schedule, n int, after time.Time) {
	t.Helper()
	wantTimes := want.Next(n, after)
	gotTimes := got.Next(n, after)
	require.Len(t, gotTimes, len(wantTimes))
	for i := range wantTimes {
		assert.True(t, gotTimes[i].Equal(wantTimes[i]),
			"instant %d = %s, want %s", i, gotTimes[i], wantTimes[i])
	}
}

func TestRoundTripComplexSchedule(t *testing.T) {
	t.Parallel()
	s := complexSchedule(t)

	data, err := Marshal(s)
	require.NoError(t, err)

	s2, err := Unmarshal(data)
	require.NoError(t, err)

	assertSameNext(t, s, s2, 8, utc(2019, 1, 3, 0, 0, 0))
}

func TestRoundTripThroughGenericValue(t *testing.T) {
	t.Parallel()
	s := complexSchedule(t)

	// Dump -> plain JSON -> generic value -> Load must be lossless.
	dumped, err := Dump(s)
	require.NoError(t, err)

	raw, err := json.Marshal(dumped)
	require.NoError(t, err)
	var generic map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))

	s2, err := Load(generic)
	require.NoError(t, err)

	assertSameNext(t, s, s2, 8, utc(2019, 1, 3, 0, 0, 0))
}

func TestDumpIsStable(t *testing.T) {
	t.Parallel()
	s := complexSchedule(t)

	first, err := Dump(s)
	require.NoError(t, err)

	s2, err := Load(first)
	require.NoError(t, err)

	second, err := Dump(s2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDumpShape(t *testing.T) {
	t.Parallel()
	start := utc(2019, 1, 2, 3, 0, 0)
	clk, err := schedule.NewIntervalClock(62*time.Minute, schedule.WithStart(start))
	require.NoError(t, err)
	s, err := schedule.New([]schedule.Clock{clk})
	require.NoError(t, err)

	m, err := Dump(s)
	require.NoError(t, err)

	assert.Equal(t, "Schedule", m["type"])
	assert.Equal(t, Version, m["__version__"])

	clocks, ok := m["clocks"].([]any)
	require.True(t, ok)
	require.Len(t, clocks, 1)
	clock, ok := clocks[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "IntervalClock", clock["type"])
	assert.Equal(t, float64(62*60*1000000), clock["interval"], "interval is integer microseconds")

	startDoc, ok := clock["start_date"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2019-01-02T03:00:00", startDoc["dt"])
	assert.Equal(t, "UTC", startDoc["tz"])
}

func TestRoundTripAllClockKinds(t *testing.T) {
	t.Parallel()
	interval, err := schedule.NewIntervalClock(30*time.Minute,
		schedule.WithStart(utc(2019, 1, 1, 0, 0, 0)), schedule.WithEnd(utc(2019, 6, 1, 0, 0, 0)))
	require.NoError(t, err)
	cron, err := schedule.NewCronClock("3 0 * * *", schedule.WithStart(utc(2019, 1, 2, 3, 0, 0)))
	require.NoError(t, err)
	once := schedule.NewOneTimeClock(utc(2019, 2, 1, 12, 0, 0))

	s, err := schedule.New([]schedule.Clock{interval, cron, once})
	require.NoError(t, err)

	data, err := Marshal(s)
	require.NoError(t, err)
	s2, err := Unmarshal(data)
	require.NoError(t, err)

	assertSameNext(t, s, s2, 20, utc(2019, 1, 1, 0, 0, 0))
}

func TestUnknownDiscriminators(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		payload string
	}{
		{"unknown schedule type", `{"type": "MysterySchedule"}`},
		{"missing type", `{"clocks": []}`},
		{"unknown clock type", `{"type": "Schedule", "clocks": [{"type": "SolarClock"}]}`},
		{"unknown filter type", `{"type": "Schedule", "clocks": [{"type": "OneTimeClock", "at": {"dt": "2019-01-02T03:00:00", "tz": "UTC"}}], "filters": [{"type": "is_holiday"}]}`},
		{"unknown adjustment type", `{"type": "Schedule", "clocks": [{"type": "OneTimeClock", "at": {"dt": "2019-01-02T03:00:00", "tz": "UTC"}}], "adjustments": [{"type": "subtract"}]}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.payload))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSchema)
		})
	}
}

func TestMissingRequiredFields(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		payload string
	}{
		{"no clocks", `{"type": "Schedule", "clocks": []}`},
		{"interval clock without interval", `{"type": "Schedule", "clocks": [{"type": "IntervalClock"}]}`},
		{"cron clock without expression", `{"type": "Schedule", "clocks": [{"type": "CronClock"}]}`},
		{"one-time clock without instant", `{"type": "Schedule", "clocks": [{"type": "OneTimeClock"}]}`},
		{"instant without tz", `{"type": "Schedule", "clocks": [{"type": "OneTimeClock", "at": {"dt": "2019-01-02T03:00:00"}}]}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.payload))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSchema)
		})
	}
}

func TestBadTimezone(t *testing.T) {
	t.Parallel()
	payload := `{"type": "Schedule", "clocks": [{"type": "OneTimeClock", "at": {"dt": "2019-01-02T03:00:00", "tz": "Not/AZone"}}]}`
	_, err := Unmarshal([]byte(payload))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchema)
}

func TestValidationSurfacesFromLoad(t *testing.T) {
	t.Parallel()
	// A structurally valid payload with a semantically bad value fails with
	// the construction error, not a schema error.
	payload := `{"type": "Schedule", "clocks": [{"type": "IntervalClock", "interval": -5}]}`
	_, err := Unmarshal([]byte(payload))
	require.Error(t, err)
	assert.ErrorIs(t, err, schedule.ErrValidation)
}

func TestCronTimezoneRoundTrip(t *testing.T) {
	t.Parallel()
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	clk, err := schedule.NewCronClock("0 9 * * *",
		schedule.WithStart(time.Date(2019, 1, 2, 9, 0, 0, 0, ny)))
	require.NoError(t, err)
	s, err := schedule.New([]schedule.Clock{clk})
	require.NoError(t, err)

	data, err := Marshal(s)
	require.NoError(t, err)
	s2, err := Unmarshal(data)
	require.NoError(t, err)

	assertSameNext(t, s, s2, 5, utc(2019, 1, 1, 0, 0, 0))
}
