package codec

import (
	"fmt"
	"time"
)

// instantDoc is the wire form of an instant: a local wall-clock timestamp
// plus the IANA zone it is local to. Shared by the legacy and current
// schemas.
type instantDoc struct {
	DT string `json:"dt"`
	TZ string `json:"tz"`
}

const instantLayout = "2006-01-02T15:04:05.999999999"

func newInstantDoc(t time.Time) *instantDoc {
	return &instantDoc{DT: t.Format(instantLayout), TZ: t.Location().String()}
}

func (d *instantDoc) instant(field string) (time.Time, error) {
	if d == nil || d.DT == "" {
		return time.Time{}, fmt.Errorf("%s: missing dt: %w", field, ErrSchema)
	}
	if d.TZ == "" {
		return time.Time{}, fmt.Errorf("%s: missing tz: %w", field, ErrSchema)
	}
	loc, err := time.LoadLocation(d.TZ)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: unknown timezone %q: %w", field, d.TZ, ErrSchema)
	}
	if t, err := time.ParseInLocation(instantLayout, d.DT, loc); err == nil {
		return t, nil
	}
	// Tolerate writers that embed a UTC offset in dt.
	if t, err := time.Parse(time.RFC3339Nano, d.DT); err == nil {
		return t.In(loc), nil
	}
	return time.Time{}, fmt.Errorf("%s: unparseable timestamp %q: %w", field, d.DT, ErrSchema)
}
