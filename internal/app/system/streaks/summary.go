package streaks

import "time"

// Summary is the streak picture for one person at a point in time.
type Summary struct {
	Current    int        `json:"current_streak"`
	Longest    int        `json:"longest_streak"`
	TotalDays  int        `json:"total_days"`
	LastDay    *time.Time `json:"last_day,omitempty"`
	WindowDays int        `json:"window_days"`
	WindowHits int        `json:"window_hits"`
	WindowRate float64    `json:"window_rate"`
	Runs       []Streak   `json:"runs,omitempty"`
}

// Summarize computes a Summary from raw check-in timestamps. Days are
// bucketed in loc and "today" is now as seen in loc.
func Summarize(timestamps []time.Time, loc *time.Location, now time.Time, window int) Summary {
	if loc == nil {
		loc = time.UTC
	}
	return SummarizeDays(DatesFrom(timestamps, loc), Day(now, loc), window)
}

// SummarizeDays computes a Summary from calendar days that were already
// bucketed. window is the number of trailing days, today included, used for
// the compliance rate; values below one are treated as one.
func SummarizeDays(days []time.Time, today time.Time, window int) Summary {
	if window < 1 {
		window = 1
	}

	dates := normalize(days)
	runs := Runs(dates)
	today = Day(today, today.Location())
	start := today.AddDate(0, 0, -(window - 1))

	s := Summary{
		Current:    Current(runs, today),
		Longest:    Longest(runs),
		TotalDays:  len(dates),
		WindowDays: window,
		Runs:       runs,
	}
	if n := len(dates); n > 0 {
		last := dates[n-1]
		s.LastDay = &last
	}
	s.WindowHits = CountInWindow(dates, start, today)
	s.WindowRate = ComplianceRate(s.WindowHits, window)
	return s
}

// DayLayout is the wire and storage format of a calendar day.
const DayLayout = "2006-01-02"

// ParseDays parses YYYY-MM-DD strings, skipping any that do not parse.
func ParseDays(values []string) []time.Time {
	out := make([]time.Time, 0, len(values))
	for _, v := range values {
		d, err := time.ParseInLocation(DayLayout, v, time.UTC)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	return out
}

// FormatDay renders t's calendar day in loc as YYYY-MM-DD.
func FormatDay(t time.Time, loc *time.Location) string {
	return Day(t, loc).Format(DayLayout)
}
