package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock_Valid(t *testing.T) {
	c, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, Clock(570), c)
	assert.Equal(t, "09:30", c.String())

	end, err := ParseClock("24:00")
	require.NoError(t, err)
	assert.Equal(t, Clock(1440), end)

	short, err := ParseClock("7:05")
	require.NoError(t, err)
	assert.Equal(t, "07:05", short.String())
}

func TestParseClock_Invalid(t *testing.T) {
	for _, s := range []string{"", "9", "09:5", "25:00", "24:01", "ab:cd", "09:60", "-1:00"} {
		_, err := ParseClock(s)
		assert.Error(t, err, s)
	}
}

func TestClock_AddClampsToDay(t *testing.T) {
	assert.Equal(t, "10:15", MustClock("09:45").Add(30).String())
	assert.Equal(t, Clock(1440), MustClock("23:50").Add(30))
	assert.Equal(t, Clock(0), MustClock("00:10").Add(-30))
}

func TestClock_JSONRoundTripsAsText(t *testing.T) {
	slot := StudyTimeSlot{Start: MustClock("13:00"), End: MustClock("14:30")}
	b, err := json.Marshal(slot)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"13:00","end":"14:30"}`, string(b))

	var back StudyTimeSlot
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, slot, back)
	assert.Equal(t, 90, back.Minutes())
}

func TestStudyTimeSlot_InvertedHasNoCapacity(t *testing.T) {
	assert.Equal(t, 0, StudyTimeSlot{Start: MustClock("10:00"), End: MustClock("09:00")}.Minutes())
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC)
	b := time.Date(2025, 3, 4, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 3, DaysBetween(a, b))
	assert.Equal(t, -3, DaysBetween(b, a))
}
