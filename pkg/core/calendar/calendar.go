// Package calendar classifies dates for scheduling purposes: weekends,
// French public holidays, and bridge days that borrow the weekend/holiday
// day configuration.
package calendar

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// Calendar answers date-classification questions. Extra bridge days beyond
// the built-in sandwich rule can be supplied as rrule strings (typically
// from configuration).
type Calendar struct {
	extraBridge []*rrule.RRule
}

// New creates a Calendar. Each bridge rule must be a valid RFC 5545
// recurrence rule string.
func New(bridgeRules []string) (*Calendar, error) {
	cal := &Calendar{}
	for i, raw := range bridgeRules {
		rule, err := rrule.StrToRRule(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid bridge rule [%d] %q: %w", i, raw, err)
		}
		cal.extraBridge = append(cal.extraBridge, rule)
	}
	return cal, nil
}

// IsWeekend returns true for Saturdays and Sundays
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsHoliday returns true if the date is a French public holiday
func IsHoliday(date time.Time) bool {
	y, m, d := date.Date()
	for _, h := range holidaysForYear(y) {
		hy, hm, hd := h.Date()
		if hy == y && hm == m && hd == d {
			return true
		}
	}
	return false
}

// IsBridgeDay returns true if the date is a weekday treated as part of a
// long weekend: sandwiched between a holiday and the weekend, or matched
// by a configured extra bridge rule
func (c *Calendar) IsBridgeDay(date time.Time) bool {
	if IsWeekend(date) || IsHoliday(date) {
		return false
	}

	// Monday before a Tuesday holiday, Friday after a Thursday holiday
	switch date.Weekday() {
	case time.Monday:
		if IsHoliday(date.AddDate(0, 0, 1)) {
			return true
		}
	case time.Friday:
		if IsHoliday(date.AddDate(0, 0, -1)) {
			return true
		}
	}

	for _, rule := range c.extraBridge {
		occurrences := rule.Between(date.AddDate(0, 0, -1), date.AddDate(0, 0, 1), true)
		for _, occ := range occurrences {
			oy, om, od := occ.Date()
			dy, dm, dd := date.Date()
			if oy == dy && om == dm && od == dd {
				return true
			}
		}
	}

	return false
}

// IsWeekendOrHoliday returns true if the date uses the weekend/holiday
// scheduling configuration
func (c *Calendar) IsWeekendOrHoliday(date time.Time) bool {
	return IsWeekend(date) || IsHoliday(date) || c.IsBridgeDay(date)
}

// holidaysForYear returns the French public holidays of the given year
func holidaysForYear(year int) []time.Time {
	easter := easterSunday(year)
	return []time.Time{
		time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		easter.AddDate(0, 0, 1),  // Easter Monday
		time.Date(year, time.May, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.May, 8, 0, 0, 0, 0, time.UTC),
		easter.AddDate(0, 0, 39), // Ascension Thursday
		easter.AddDate(0, 0, 50), // Whit Monday
		time.Date(year, time.July, 14, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.August, 15, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.November, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.November, 11, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC),
	}
}

// easterSunday computes the Gregorian Easter date (anonymous Gauss algorithm)
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
