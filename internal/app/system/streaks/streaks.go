// Package streaks turns check-in timestamps into streaks and compliance rates.
//
// Dates are civil calendar days. They are represented as time.Time values at
// midnight UTC so they compare with Equal and step with AddDate regardless of
// the zone the original timestamps were recorded in.
package streaks

import (
	"sort"
	"time"
)

// Streak is a maximal run of consecutive calendar days.
type Streak struct {
	Length int       `json:"length"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// Day returns the calendar day of t as seen in loc.
// A nil loc means UTC.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DatesFrom buckets timestamps into distinct calendar days in loc,
// sorted ascending.
func DatesFrom(timestamps []time.Time, loc *time.Location) []time.Time {
	seen := make(map[time.Time]struct{}, len(timestamps))
	out := make([]time.Time, 0, len(timestamps))
	for _, ts := range timestamps {
		if ts.IsZero() {
			continue
		}
		d := Day(ts, loc)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Runs returns every maximal run of consecutive days in dates, oldest first.
// The input does not need to be sorted and may contain duplicates.
func Runs(dates []time.Time) []Streak {
	if len(dates) == 0 {
		return nil
	}

	days := normalize(dates)

	var runs []Streak
	cur := Streak{Length: 1, Start: days[0], End: days[0]}
	for _, d := range days[1:] {
		if d.Equal(cur.End.AddDate(0, 0, 1)) {
			cur.End = d
			cur.Length++
			continue
		}
		runs = append(runs, cur)
		cur = Streak{Length: 1, Start: d, End: d}
	}
	return append(runs, cur)
}

// Longest returns the length of the longest run, or 0 when there are none.
func Longest(runs []Streak) int {
	best := 0
	for _, r := range runs {
		if r.Length > best {
			best = r.Length
		}
	}
	return best
}

// Current returns the length of the most recent run if it ends today or
// yesterday. A run that ended earlier has lapsed and counts as 0.
func Current(runs []Streak, today time.Time) int {
	if len(runs) == 0 {
		return 0
	}
	last := runs[0]
	for _, r := range runs[1:] {
		if r.End.After(last.End) {
			last = r
		}
	}
	today = Day(today, today.Location())
	yesterday := today.AddDate(0, 0, -1)
	if last.End.Equal(today) || last.End.Equal(yesterday) {
		return last.Length
	}
	return 0
}

// ComplianceRate is completed/expected as a percentage, capped at 100.
// It is 0 when nothing was expected.
func ComplianceRate(completed, expected int) float64 {
	if expected <= 0 || completed <= 0 {
		return 0
	}
	rate := float64(completed) / float64(expected) * 100
	if rate > 100 {
		return 100
	}
	return rate
}

// ExpectedDays is the inclusive number of calendar days from start to end.
// It returns 0 when end is before start.
func ExpectedDays(start, end time.Time) int {
	s := Day(start, start.Location())
	e := Day(end, end.Location())
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// CountInWindow counts the dates that fall within [start, end], inclusive.
func CountInWindow(dates []time.Time, start, end time.Time) int {
	s := Day(start, start.Location())
	e := Day(end, end.Location())
	n := 0
	for _, d := range dates {
		if !d.Before(s) && !d.After(e) {
			n++
		}
	}
	return n
}

func normalize(dates []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		d = Day(d, d.Location())
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
