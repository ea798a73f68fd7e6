package allocator

import (
	"regexp"
	"slices"
	"strconv"
	"time"
)

// dayMonthPattern finds the first D/M, DD/MM, D/MM or DD/M group in a date label
var dayMonthPattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})\b`)

// referenceYear is the fixed year used to compare labels that carry no year.
// Leap year, so 29/02 parses.
const referenceYear = 2000

// ParseDayMonth extracts the day and month from a free-text date label such
// as "QUARTA 14/05" or "Domingo 1/6". Returns false when the label has no
// day/month group or the group is not a real calendar date.
func ParseDayMonth(label string) (time.Time, bool) {
	match := dayMonthPattern.FindStringSubmatch(label)
	if match == nil {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(match[1])
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(match[2])
	if err != nil {
		return time.Time{}, false
	}

	parsed := time.Date(referenceYear, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes 31/02 to 02/03; reject anything that moved
	if parsed.Day() != day || int(parsed.Month()) != month {
		return time.Time{}, false
	}
	return parsed, true
}

// ParseLabels parses every label it can and drops the rest
func ParseLabels(labels []string) []time.Time {
	dates := make([]time.Time, 0, len(labels))
	for _, label := range labels {
		if date, ok := ParseDayMonth(label); ok {
			dates = append(dates, date)
		}
	}
	return dates
}

// LongestConsecutiveRun returns the length of the longest run of calendar
// consecutive days. Duplicate days count once.
func LongestConsecutiveRun(dates []time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	sorted := slices.Clone(dates)
	slices.SortFunc(sorted, func(a, b time.Time) int { return a.Compare(b) })
	sorted = slices.CompactFunc(sorted, func(a, b time.Time) bool { return a.Equal(b) })

	longest, current := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Sub(sorted[i-1]) == 24*time.Hour {
			current++
		} else {
			current = 1
		}
		longest = max(longest, current)
	}
	return longest
}
