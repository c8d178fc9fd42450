package stats

import (
	"sort"
	"time"
)

// Streak returns the number of consecutive days, ending today or yesterday,
// on which at least one review happened. Days are calendar days in tz.
// A streak is still alive if today has no reviews yet but yesterday does.
func Streak(reviewTimes []time.Time, now time.Time, tz *time.Location) int {
	if len(reviewTimes) == 0 {
		return 0
	}
	if tz == nil {
		tz = time.UTC
	}

	today := DayStart(now, tz)

	// reviews stamped after today are ignored
	days := distinctDaysDesc(reviewTimes, tz)
	for len(days) > 0 && days[0].After(today) {
		days = days[1:]
	}
	if len(days) == 0 {
		return 0
	}

	expected := today
	if !days[0].Equal(today) {
		expected = previousDay(today, tz)
	}

	streak := 0
	for _, d := range days {
		if !d.Equal(expected) {
			break
		}
		streak++
		expected = previousDay(expected, tz)
	}
	return streak
}

// distinctDaysDesc maps timestamps to day starts in tz and returns them
// deduplicated, newest first.
func distinctDaysDesc(times []time.Time, tz *time.Location) []time.Time {
	seen := make(map[int64]struct{}, len(times))
	days := make([]time.Time, 0, len(times))
	for _, t := range times {
		d := DayStart(t, tz)
		if _, ok := seen[d.Unix()]; ok {
			continue
		}
		seen[d.Unix()] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days
}

func previousDay(dayStart time.Time, tz *time.Location) time.Time {
	prev := dayStart.In(tz).AddDate(0, 0, -1)
	return time.Date(prev.Year(), prev.Month(), prev.Day(), 0, 0, 0, 0, tz).UTC()
}
