package scheduler

import (
	"testing"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func everyDayBlocks(start, end string) []domain.BlockDefinition {
	var blocks []domain.BlockDefinition
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		blocks = append(blocks, domain.BlockDefinition{DayOfWeek: wd, StartTime: domain.MustClock(start), EndTime: domain.MustClock(end)})
	}
	return blocks
}

func date(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCalendar_SixPlusOneCycle(t *testing.T) {
	cal := NewCalendar(date("2025-03-03"), date("2025-03-16"), 6, 1, everyDayBlocks("09:00", "10:00"), nil)
	days := cal.Days()

	require.Len(t, days, 14)
	for i, d := range days {
		want := domain.DayStudy
		if i == 6 || i == 13 {
			want = domain.DayReview
		}
		assert.Equal(t, want, d.DayType, "day %d", i)
	}
	assert.Equal(t, 2, days[7].Cycle)
	assert.Equal(t, 1, days[7].Position)
}

func TestCalendar_ExclusionsDoNotAdvanceCycle(t *testing.T) {
	exclusions := []domain.Exclusion{{Date: date("2025-03-05"), Type: domain.ExclusionHoliday}}
	cal := NewCalendar(date("2025-03-03"), date("2025-03-10"), 6, 1, everyDayBlocks("09:00", "10:00"), exclusions)
	days := cal.Days()

	require.Len(t, days, 7)
	assert.Equal(t, "2025-03-06", domain.DateKey(days[2].Date))
	assert.Equal(t, 3, days[2].Position)
	assert.Equal(t, "2025-03-10", domain.DateKey(days[6].Date))
	assert.Equal(t, domain.DayReview, days[6].DayType)
}

func TestCalendar_SkipsWeekdaysWithoutBlocks(t *testing.T) {
	weekdays := []domain.BlockDefinition{
		{DayOfWeek: time.Monday, StartTime: domain.MustClock("18:00"), EndTime: domain.MustClock("20:00")},
		{DayOfWeek: time.Wednesday, StartTime: domain.MustClock("18:00"), EndTime: domain.MustClock("20:00")},
	}
	cal := NewCalendar(date("2025-03-03"), date("2025-03-09"), 6, 1, weekdays, nil)
	days := cal.Days()

	require.Len(t, days, 2)
	assert.Equal(t, time.Monday, days[0].Date.Weekday())
	assert.Equal(t, time.Wednesday, days[1].Date.Weekday())
}

func TestCalendar_NoReviewDays(t *testing.T) {
	cal := NewCalendar(date("2025-03-03"), date("2025-03-12"), 5, 0, everyDayBlocks("09:00", "10:00"), nil)
	for _, d := range cal.Days() {
		assert.Equal(t, domain.DayStudy, d.DayType)
	}
}
