package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveISOWeek(t *testing.T) {
	tests := []struct {
		name       string
		year, week int
		start, end string
	}{
		{"week one starts in previous december", 2025, 1, "2024-12-30", "2025-01-05"},
		{"mid october", 2025, 42, "2025-10-13", "2025-10-19"},
		{"week one starts on january 4th sunday year", 2021, 1, "2021-01-04", "2021-01-10"},
		{"week 53 spills into january", 2020, 53, "2020-12-28", "2021-01-03"},
		{"last week of 2024", 2024, 52, "2024-12-23", "2024-12-29"},
		{"leap day week", 2024, 9, "2024-02-26", "2024-03-03"},
		{"week one of 2026", 2026, 1, "2025-12-29", "2026-01-04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := ResolveISOWeek(tt.year, tt.week)
			assert.Equal(t, tt.start, start.String())
			assert.Equal(t, tt.end, end.String())
		})
	}
}

func TestResolveISOWeekRoundTrip(t *testing.T) {
	for year := 1990; year <= 2060; year++ {
		weeks := WeeksInYear(year)
		for week := 1; week <= weeks; week++ {
			start, end := ResolveISOWeek(year, week)

			require.Equal(t, time.Monday, start.Weekday(), "year %d week %d", year, week)
			require.Equal(t, time.Sunday, end.Weekday(), "year %d week %d", year, week)
			require.True(t, start.AddDays(6).Equal(end))

			isoYear, isoWeek := start.ISOWeek()
			require.Equal(t, year, isoYear, "year %d week %d", year, week)
			require.Equal(t, week, isoWeek, "year %d week %d", year, week)

			require.Zero(t, start.Hour())
			require.Zero(t, start.Minute())
		}
	}
}

func TestWeeksInYear(t *testing.T) {
	assert.Equal(t, 53, WeeksInYear(2020))
	assert.Equal(t, 52, WeeksInYear(2021))
	assert.Equal(t, 52, WeeksInYear(2025))
	assert.Equal(t, 53, WeeksInYear(2026))
}

func TestRangeContainsIsInclusive(t *testing.T) {
	r := WeekRange(2025, 42)

	assert.True(t, r.Contains(NewDate(2025, time.October, 13)))
	assert.True(t, r.Contains(NewDate(2025, time.October, 19)))
	assert.False(t, r.Contains(NewDate(2025, time.October, 12)))
	assert.False(t, r.Contains(NewDate(2025, time.October, 20)))
}

func TestMonthRange(t *testing.T) {
	r := MonthRange(2024, time.February)
	assert.Equal(t, "2024-02-01", r.Start.String())
	assert.Equal(t, "2024-02-29", r.End.String())

	r = MonthRange(2025, time.December)
	assert.Equal(t, "2025-12-31", r.End.String())
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2025, time.October, 13)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-10-13"`, string(data))

	var parsed Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-01-05"`), &parsed))
	assert.Equal(t, 7, parsed.ISOWeekday())

	assert.Error(t, json.Unmarshal([]byte(`"13/10/2025"`), &parsed))
}

func TestDateOfDropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	d := DateOf(time.Date(2025, time.October, 13, 23, 30, 0, 0, loc))

	assert.Equal(t, "2025-10-13", d.String())
	assert.Equal(t, time.UTC, d.Location())
	assert.Equal(t, 1, d.ISOWeekday())
}
