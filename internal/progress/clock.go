package progress

import (
	"fmt"
	"time"
)

// DateLayout is the storage format of calendar dates.
const DateLayout = "2006-01-02"

// DayClock resolves "today" in a fixed location. It only lives at the API
// boundary; services receive the date as a parameter.
type DayClock struct {
	loc *time.Location
	now func() time.Time
}

// NewDayClock builds a clock for the named IANA zone. An empty name means UTC.
func NewDayClock(zone string) (*DayClock, error) {
	loc := time.UTC
	if zone != "" {
		l, err := time.LoadLocation(zone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", zone, err)
		}
		loc = l
	}
	return &DayClock{loc: loc, now: time.Now}, nil
}

// FixedDayClock always reports the given instant. Used by tests and the seed command.
func FixedDayClock(t time.Time) *DayClock {
	return &DayClock{loc: time.UTC, now: func() time.Time { return t }}
}

// Now returns the current instant in the clock's location.
func (c *DayClock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the current date as YYYY-MM-DD.
func (c *DayClock) Today() string {
	return c.Now().Format(DateLayout)
}

// DaysAgo returns the date n days before today.
func (c *DayClock) DaysAgo(n int) string {
	return c.Now().AddDate(0, 0, -n).Format(DateLayout)
}
