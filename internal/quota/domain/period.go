package domain

import "time"

// monthLength fixes a billing month at 30 days of wall-clock time. Billing
// windows are anchored to the subscription's anchor timestamp, not to
// calendar months, so every period of a given tariff has the same length.
const monthLength = 30 * 24 * time.Hour

// BillingPeriod is a half-open window [Start, End).
type BillingPeriod struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (p BillingPeriod) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// ResolvePeriod computes the recurring billing window containing now,
// anchored at anchor with a period of months billing months.
//
// The computation is closed-form: k = floor((now-anchor)/P) whole periods
// have elapsed, so the window is [anchor+k*P, anchor+(k+1)*P). A clock
// before the anchor resolves to the first period. Equivalent to advancing
// the anchor one period at a time, without the unbounded iteration that
// implies for old anchors.
func ResolvePeriod(anchor, now time.Time, months int) BillingPeriod {
	if months < 1 {
		months = 1
	}
	period := time.Duration(months) * monthLength

	var elapsed time.Duration
	if now.After(anchor) {
		elapsed = now.Sub(anchor)
	}
	k := elapsed / period

	start := anchor.Add(k * period)
	return BillingPeriod{Start: start, End: start.Add(period)}
}
