package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsWeekend(t *testing.T) {
	assert.True(t, IsWeekend(date(2026, time.January, 3)))  // Saturday
	assert.True(t, IsWeekend(date(2026, time.January, 4)))  // Sunday
	assert.False(t, IsWeekend(date(2026, time.January, 5))) // Monday
}

func TestEasterSunday(t *testing.T) {
	cases := map[int]time.Time{
		2024: date(2024, time.March, 31),
		2025: date(2025, time.April, 20),
		2026: date(2026, time.April, 5),
		2027: date(2027, time.March, 28),
	}
	for year, expected := range cases {
		assert.Equal(t, expected, easterSunday(year), "easter %d", year)
	}
}

func TestIsHoliday_FixedDates(t *testing.T) {
	for _, holiday := range []time.Time{
		date(2026, time.January, 1),
		date(2026, time.May, 1),
		date(2026, time.May, 8),
		date(2026, time.July, 14),
		date(2026, time.August, 15),
		date(2026, time.November, 1),
		date(2026, time.November, 11),
		date(2026, time.December, 25),
	} {
		assert.True(t, IsHoliday(holiday), "expected %s to be a holiday", holiday.Format("2006-01-02"))
	}

	assert.False(t, IsHoliday(date(2026, time.January, 2)))
	assert.False(t, IsHoliday(date(2026, time.December, 24)))
}

func TestIsHoliday_MovableFeasts(t *testing.T) {
	// 2026: Easter April 5 -> Easter Monday April 6, Ascension May 14,
	// Whit Monday May 25
	assert.True(t, IsHoliday(date(2026, time.April, 6)))
	assert.True(t, IsHoliday(date(2026, time.May, 14)))
	assert.True(t, IsHoliday(date(2026, time.May, 25)))

	assert.False(t, IsHoliday(date(2026, time.April, 5)), "Easter Sunday itself is already a Sunday")
	assert.False(t, IsHoliday(date(2026, time.May, 15)))
}

func TestIsBridgeDay_SandwichRule(t *testing.T) {
	cal, err := New(nil)
	require.NoError(t, err)

	// 2026-07-14 falls on a Tuesday: Monday the 13th is a bridge day
	assert.True(t, cal.IsBridgeDay(date(2026, time.July, 13)))

	// 2026-05-14 (Ascension) is a Thursday: Friday the 15th is a bridge day
	assert.True(t, cal.IsBridgeDay(date(2026, time.May, 15)))

	// plain weekdays, weekends, and the holidays themselves are not bridges
	assert.False(t, cal.IsBridgeDay(date(2026, time.July, 10)))
	assert.False(t, cal.IsBridgeDay(date(2026, time.July, 14)))
	assert.False(t, cal.IsBridgeDay(date(2026, time.July, 11)))
}

func TestIsBridgeDay_ConfiguredRules(t *testing.T) {
	// an extra yearly bridge on December 26
	cal, err := New([]string{"DTSTART:20200101T000000Z\nRRULE:FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=26"})
	require.NoError(t, err)

	// 2025-12-26 is a Friday after Christmas (Thursday), so the sandwich
	// rule would match too; 2028-12-26 is a Tuesday and only the extra
	// rule can flag it
	assert.True(t, cal.IsBridgeDay(date(2025, time.December, 26)))
	assert.True(t, cal.IsBridgeDay(date(2028, time.December, 26)))
	assert.False(t, cal.IsBridgeDay(date(2028, time.December, 27)))
}

func TestNew_RejectsInvalidRule(t *testing.T) {
	_, err := New([]string{"not an rrule"})
	assert.Error(t, err)
}

func TestIsWeekendOrHoliday(t *testing.T) {
	cal, err := New(nil)
	require.NoError(t, err)

	// Saturday, Ascension Thursday, the bridge Friday after it, and a
	// plain Wednesday
	assert.True(t, cal.IsWeekendOrHoliday(date(2026, time.January, 3)))
	assert.True(t, cal.IsWeekendOrHoliday(date(2026, time.May, 14)))
	assert.True(t, cal.IsWeekendOrHoliday(date(2026, time.May, 15)))
	assert.False(t, cal.IsWeekendOrHoliday(date(2026, time.May, 13)))
}
