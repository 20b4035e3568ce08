package schedule

import (
	"testing"
	"time"

	"presencia/backend/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-06-07 is a Friday.
func at(day int, clock string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2024-06-0"+string(rune('0'+day))+" "+clock)
	if err != nil {
		panic(err)
	}
	return t
}

func friday(clock string) time.Time   { return at(7, clock) }
func saturday(clock string) time.Time { return at(8, clock) }

func TestIsWithinEmptyScheduleAlwaysMatches(t *testing.T) {
	assert.True(t, IsWithin(nil, friday("03:00")))
	assert.True(t, IsWithin([]entity.WorkSchedule{}, saturday("23:59")))
}

func TestIsWithinRegularShift(t *testing.T) {
	shifts := []entity.WorkSchedule{
		{Day: "Friday", Start: "09:00", End: "17:00"},
	}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before start", friday("08:59"), false},
		{"at start", friday("09:00"), true},
		{"mid shift", friday("12:30"), true},
		{"at end", friday("17:00"), true},
		{"after end", friday("17:01"), false},
		{"other weekday", saturday("12:30"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWithin(shifts, tt.now))
		})
	}
}

func TestIsWithinOvernightShift(t *testing.T) {
	shifts := []entity.WorkSchedule{
		{Day: "Friday", Start: "20:00", End: "04:00"},
	}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"friday before start", friday("19:59"), false},
		{"friday night", friday("23:00"), true},
		{"saturday small hours", saturday("02:00"), true},
		{"saturday at end", saturday("04:00"), true},
		{"saturday after end", saturday("06:00"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWithin(shifts, tt.now))
		})
	}
}

func TestIsWithinMatchesAnyEntry(t *testing.T) {
	shifts := []entity.WorkSchedule{
		{Day: "Monday", Start: "09:00", End: "17:00"},
		{Day: "Friday", Start: "18:00", End: "23:00"},
	}

	assert.True(t, IsWithin(shifts, friday("19:00")))
	assert.False(t, IsWithin(shifts, friday("10:00")))
}

func TestIsWithinDayNameIsCaseInsensitive(t *testing.T) {
	shifts := []entity.WorkSchedule{
		{Day: "friday", Start: "09:00", End: "17:00"},
	}
	assert.True(t, IsWithin(shifts, friday("10:00")))
}

func TestDelayInfoOnTime(t *testing.T) {
	shifts := []entity.WorkSchedule{
		{Day: "Friday", Start: "09:00", End: "17:00"},
	}

	assert.Nil(t, DelayInfo(shifts, friday("08:30")))
	assert.Nil(t, DelayInfo(shifts, friday("09:00")), "exactly at start is not late")
}

func TestDelayInfoOneMinuteLate(t *testing.T) {
	shifts := []entity.WorkSchedule{
		{Day: "Friday", Start: "09:00", End: "17:00"},
	}

	msg := DelayInfo(shifts, friday("09:01"))
	require.NotNil(t, msg)
	assert.Contains(t, *msg, "09:00")
	assert.Contains(t, *msg, "0h 01m")
}

func TestDelayInfoHoursAndMinutes(t *testing.T) {
	shifts := []entity.WorkSchedule{
		{Day: "Friday", Start: "09:00", End: "17:00"},
	}

	msg := DelayInfo(shifts, friday("11:35"))
	require.NotNil(t, msg)
	assert.Contains(t, *msg, "2h 35m")
}

func TestDelayInfoNoShiftToday(t *testing.T) {
	shifts := []entity.WorkSchedule{
		{Day: "Monday", Start: "09:00", End: "17:00"},
	}

	assert.Nil(t, DelayInfo(shifts, friday("12:00")))
}

func TestDelayInfoIgnoresYesterdayOvernightSpillover(t *testing.T) {
	// The worker is mid-way through Friday's overnight shift on Saturday
	// morning: on schedule, but no delay framing.
	shifts := []entity.WorkSchedule{
		{Day: "Friday", Start: "20:00", End: "04:00"},
	}

	require.True(t, IsWithin(shifts, saturday("02:00")))
	assert.Nil(t, DelayInfo(shifts, saturday("02:00")))
}
