package extraction

import "time"

// FutureFilter decides whether an event date is today or later.
type FutureFilter struct {
	now func() time.Time
}

// NewFutureFilter creates a filter; now may be nil for time.Now.
func NewFutureFilter(now func() time.Time) *FutureFilter {
	if now == nil {
		now = time.Now
	}
	return &FutureFilter{now: now}
}

// IsFuture reports whether dateText names today or a later day. Text that
// cannot be normalized is never considered future.
func (f *FutureFilter) IsFuture(dateText string) bool {
	d, ok := NormalizeDate(dateText)
	if !ok {
		return false
	}
	return !d.Before(DateOf(f.now()))
}
