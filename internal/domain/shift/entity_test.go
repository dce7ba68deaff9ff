package shift

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_ThresholdMinutes(t *testing.T) {
	p := Policy{FullDayHours: 7.5, HalfDayHours: 4}
	assert.Equal(t, 450, p.FullDayMinutes())
	assert.Equal(t, 240, p.HalfDayMinutes())
}

func TestPolicy_IsWeeklyOff(t *testing.T) {
	p := Policy{WeeklyOffDays: []time.Weekday{time.Saturday, time.Sunday}}
	assert.True(t, p.IsWeeklyOff(time.Saturday))
	assert.True(t, p.IsWeeklyOff(time.Sunday))
	assert.False(t, p.IsWeeklyOff(time.Monday))

	assert.False(t, Policy{}.IsWeeklyOff(time.Saturday))
}

func TestPolicy_AnchorsOnDate(t *testing.T) {
	p := Policy{ShiftStart: "09:00", ShiftEnd: "18:00"}
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	start, err := p.StartOn(date)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), start)

	end, err := p.EndOn(date)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC), end)
}

func TestPolicy_InvalidShiftTime(t *testing.T) {
	p := Policy{ShiftStart: "9am"}
	_, err := p.StartOn(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)
}
