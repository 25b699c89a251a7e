package streaks_test

import (
	"testing"
	"time"

	"github.com/glrs/lighthouse/internal/app/system/streaks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func consecutive(end time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, end.AddDate(0, 0, -i))
	}
	return out
}

func TestRuns_Empty(t *testing.T) {
	assert.Nil(t, streaks.Runs(nil))
	assert.Equal(t, 0, streaks.Longest(nil))
	assert.Equal(t, 0, streaks.Current(nil, day(2025, 3, 10)))
}

func TestRuns_SplitsOnGaps(t *testing.T) {
	dates := []time.Time{
		day(2025, 3, 1), day(2025, 3, 2), day(2025, 3, 3),
		day(2025, 3, 5),
		day(2025, 3, 7), day(2025, 3, 8),
	}

	runs := streaks.Runs(dates)
	require.Len(t, runs, 3)

	assert.Equal(t, 3, runs[0].Length)
	assert.True(t, runs[0].Start.Equal(day(2025, 3, 1)))
	assert.True(t, runs[0].End.Equal(day(2025, 3, 3)))

	assert.Equal(t, 1, runs[1].Length)
	assert.True(t, runs[1].Start.Equal(runs[1].End))

	assert.Equal(t, 2, runs[2].Length)
	assert.Equal(t, 3, streaks.Longest(runs))
}

func TestRuns_UnsortedWithDuplicates(t *testing.T) {
	dates := []time.Time{
		day(2025, 3, 3), day(2025, 3, 1), day(2025, 3, 2), day(2025, 3, 2),
	}
	runs := streaks.Runs(dates)
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].Length)
}

func TestRuns_CrossesMonthAndYear(t *testing.T) {
	runs := streaks.Runs([]time.Time{day(2024, 12, 31), day(2025, 1, 1), day(2025, 2, 28), day(2025, 3, 1)})
	require.Len(t, runs, 2)
	assert.Equal(t, 2, runs[0].Length)
	assert.Equal(t, 2, runs[1].Length)
}

func TestCurrent_EndingToday(t *testing.T) {
	today := day(2025, 6, 15)
	for _, n := range []int{1, 2, 7, 30} {
		runs := streaks.Runs(consecutive(today, n))
		assert.Equal(t, n, streaks.Current(runs, today), "n=%d", n)
	}
}

func TestCurrent_EndingYesterday(t *testing.T) {
	today := day(2025, 6, 15)
	runs := streaks.Runs(consecutive(today.AddDate(0, 0, -1), 5))
	assert.Equal(t, 5, streaks.Current(runs, today))
}

func TestCurrent_LapsedAfterTwoDayGap(t *testing.T) {
	today := day(2025, 6, 15)
	runs := streaks.Runs(consecutive(today.AddDate(0, 0, -2), 10))
	assert.Equal(t, 0, streaks.Current(runs, today))
	assert.Equal(t, 10, streaks.Longest(runs))
}

func TestCurrent_UsesMostRecentRun(t *testing.T) {
	today := day(2025, 6, 15)
	dates := append(consecutive(day(2025, 5, 1), 20), consecutive(today, 2)...)
	runs := streaks.Runs(dates)
	assert.Equal(t, 2, streaks.Current(runs, today))
	assert.Equal(t, 20, streaks.Longest(runs))
}

func TestCurrent_TodayInOtherZone(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	// 23:30 local on June 15 is already June 16 in UTC.
	now := time.Date(2025, 6, 15, 23, 30, 0, 0, loc)
	runs := streaks.Runs([]time.Time{day(2025, 6, 14), day(2025, 6, 15)})
	assert.Equal(t, 2, streaks.Current(runs, now))
}

func TestDatesFrom_BucketsByZone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	ts := []time.Time{
		time.Date(2025, 6, 15, 2, 0, 0, 0, time.UTC),  // June 14 in New York
		time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC), // June 15
		time.Date(2025, 6, 15, 20, 0, 0, 0, time.UTC), // June 15 again
		{},
	}

	dates := streaks.DatesFrom(ts, loc)
	require.Len(t, dates, 2)
	assert.True(t, dates[0].Equal(day(2025, 6, 14)))
	assert.True(t, dates[1].Equal(day(2025, 6, 15)))

	utc := streaks.DatesFrom(ts, nil)
	require.Len(t, utc, 1)
}

func TestComplianceRate(t *testing.T) {
	cases := []struct {
		name      string
		completed int
		expected  int
		want      float64
	}{
		{"none expected", 3, 0, 0},
		{"negative expected", 3, -1, 0},
		{"nothing done", 0, 7, 0},
		{"half", 5, 10, 50},
		{"all", 7, 7, 100},
		{"over capped", 9, 7, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, streaks.ComplianceRate(tc.completed, tc.expected), 0.0001)
		})
	}
}

func TestExpectedDays(t *testing.T) {
	assert.Equal(t, 1, streaks.ExpectedDays(day(2025, 1, 1), day(2025, 1, 1)))
	assert.Equal(t, 7, streaks.ExpectedDays(day(2025, 1, 1), day(2025, 1, 7)))
	assert.Equal(t, 0, streaks.ExpectedDays(day(2025, 1, 7), day(2025, 1, 1)))
}

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	var ts []time.Time
	for _, d := range consecutive(day(2025, 6, 15), 4) {
		ts = append(ts, d.Add(8*time.Hour), d.Add(20*time.Hour))
	}
	ts = append(ts, day(2025, 6, 1).Add(time.Hour))

	s := streaks.Summarize(ts, time.UTC, now, 7)
	assert.Equal(t, 4, s.Current)
	assert.Equal(t, 4, s.Longest)
	assert.Equal(t, 5, s.TotalDays)
	assert.Equal(t, 7, s.WindowDays)
	assert.Equal(t, 4, s.WindowHits)
	assert.InDelta(t, 4.0/7.0*100, s.WindowRate, 0.0001)
	require.NotNil(t, s.LastDay)
	assert.True(t, s.LastDay.Equal(day(2025, 6, 15)))
}

func TestSummarize_Empty(t *testing.T) {
	s := streaks.Summarize(nil, nil, time.Now(), 0)
	assert.Equal(t, 0, s.Current)
	assert.Equal(t, 0, s.Longest)
	assert.Equal(t, 1, s.WindowDays)
	assert.Zero(t, s.WindowRate)
	assert.Nil(t, s.LastDay)
}

func TestSummarizeDays_FromStoredStrings(t *testing.T) {
	days := streaks.ParseDays([]string{"2025-06-13", "2025-06-14", "bogus", "2025-06-14", "2025-06-10"})
	require.Len(t, days, 4)

	s := streaks.SummarizeDays(days, day(2025, 6, 15), 30)
	assert.Equal(t, 2, s.Current)
	assert.Equal(t, 2, s.Longest)
	assert.Equal(t, 3, s.TotalDays)
	assert.Equal(t, 3, s.WindowHits)
	assert.Len(t, s.Runs, 2)
}

func TestFormatDay(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	ts := time.Date(2025, 6, 15, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-06-16", streaks.FormatDay(ts, loc))
	assert.Equal(t, "2025-06-15", streaks.FormatDay(ts, nil))
}
