package timezone

import (
	"fmt"
	"time"
)

const DefaultTimezone = "UTC"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	return time.UTC
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}

// ParseDay reads a YYYY-MM-DD filter bound in tz. The returned range covers
// the whole day: [start of day, start of next day - 1ns].
func ParseDay(raw, tz string) (start, end time.Time, err error) {
	d, err := time.ParseInLocation("2006-01-02", raw, Location(tz))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return d, d.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}
