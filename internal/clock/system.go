package clock

import (
	"context"
	"time"
)

// SystemClock reports wall time in UTC.
type SystemClock struct{}

func (SystemClock) Now(context.Context) time.Time {
	return time.Now().UTC()
}

// Fixed is a clock pinned to one instant; used by tests and charge previews.
type Fixed time.Time

func (f Fixed) Now(context.Context) time.Time {
	return time.Time(f)
}
