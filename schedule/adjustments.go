package schedule

import "time"

// Adjustment transforms an accepted candidate into the instant actually
// returned by Next. Adjustments run after all gating, in declared order.
type Adjustment interface {
	Apply(t time.Time) time.Time
}

// AddAdjustment shifts the instant by a fixed duration.
type AddAdjustment struct {
	d time.Duration
}

func Add(d time.Duration) *AddAdjustment { return &AddAdjustment{d: d} }

func (a *AddAdjustment) Duration() time.Duration { return a.d }

func (a *AddAdjustment) Apply(t time.Time) time.Time { return t.Add(a.d) }
