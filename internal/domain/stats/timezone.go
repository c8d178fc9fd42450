package stats

import "time"

// DayStart returns the start of the day containing now in tz, converted to UTC.
func DayStart(now time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = time.UTC
	}
	local := now.In(tz)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, tz).UTC()
}

// NextDayStart returns the start of the day after now in tz, converted to UTC.
func NextDayStart(now time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = time.UTC
	}
	// AddDate handles DST correctly, Add(24h) does not
	next := DayStart(now, tz).In(tz).AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, tz).UTC()
}

// ParseTimezone parses a timezone name, returning UTC as fallback.
func ParseTimezone(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
