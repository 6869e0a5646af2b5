package model

import (
	"time"
)

// DateFormat is the canonical date key format used across the planning
const DateFormat = "2006-01-02"

// Desiderata priority levels
const (
	PriorityPrimary   = "primary"
	PrioritySecondary = "secondary"
)

// Day periods for desiderata and slots
const (
	PeriodMorning   = 1
	PeriodAfternoon = 2
	PeriodEvening   = 3
)

// Person kinds
const (
	KindDoctor = "doctor"
	KindCAT    = "cat"
)

// Desideratum represents a declared unavailability interval for a person.
// Primary desiderata are hard preferences; secondary desiderata are soft
// and may be relaxed under pressure.
type Desideratum struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Period    int       `json:"period"`
	Priority  string    `json:"priority"`
}

// Covers returns true if the desideratum interval includes the given date,
// at day granularity (the period is not considered)
func (d Desideratum) Covers(date time.Time) bool {
	day := dateOrdinal(date)
	return day >= dateOrdinal(d.StartDate) && day <= dateOrdinal(d.EndDate)
}

// dateOrdinal collapses a time to a comparable calendar-date key
func dateOrdinal(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// CoversPeriod returns true if the desideratum blocks the given period of
// the given date
func (d Desideratum) CoversPeriod(date time.Time, period int) bool {
	return d.Covers(date) && d.Period == period
}

// Person represents a roster member, either a doctor or a part-time
// clinical assistant (CAT). Both share the assignment-eligible capability
// set; only doctors carry a meaningful half-parts workload share.
type Person struct {
	Name       string        `json:"name"`
	Kind       string        `json:"kind"`
	HalfParts  int           `json:"halfParts"`
	Desiderata []Desideratum `json:"desiderata,omitempty"`
}

// IsAvailableOn returns true if no desiderata interval of the person covers
// the given date. This is a coarse day-level check; period-level checks are
// the constraint checker's job.
func (p *Person) IsAvailableOn(date time.Time) bool {
	for _, d := range p.Desiderata {
		if d.Covers(date) {
			return false
		}
	}
	return true
}

// Slot is one bookable shift instance on one day. An empty Assignee means
// the slot is unfilled.
type Slot struct {
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	Site         string    `json:"site"`
	SlotType     string    `json:"slotType"`
	Abbreviation string    `json:"abbreviation"`
	Assignee     string    `json:"assignee,omitempty"`
}

// Period derives the day period of the slot from its start time
func (s *Slot) Period() int {
	switch h := s.StartTime.Hour(); {
	case h < 12:
		return PeriodMorning
	case h < 18:
		return PeriodAfternoon
	default:
		return PeriodEvening
	}
}

// Day is a calendar day holding an ordered set of slots
type Day struct {
	Date              time.Time `json:"date"`
	Slots             []*Slot   `json:"slots"`
	IsWeekend         bool      `json:"isWeekend"`
	IsHolidayOrBridge bool      `json:"isHolidayOrBridge"`
}

// FindSlot returns the first slot with the given post abbreviation.
// If unassignedOnly is true, slots that already carry an assignee are
// skipped. Returns nil if no matching slot exists.
func (d *Day) FindSlot(abbreviation string, unassignedOnly bool) *Slot {
	for _, slot := range d.Slots {
		if slot.Abbreviation != abbreviation {
			continue
		}
		if unassignedOnly && slot.Assignee != "" {
			continue
		}
		return slot
	}
	return nil
}

// IsWeekendOrHoliday returns true if the day is scheduled under the
// weekend/holiday configuration
func (d *Day) IsWeekendOrHoliday() bool {
	return d.IsWeekend || d.IsHolidayOrBridge
}

// Planning is the full schedule: an ordered sequence of days across
// StartDate..EndDate. The planning exclusively owns its slots; an optimizer
// borrows them for the duration of one run.
type Planning struct {
	ID        string    `json:"id"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Days      []*Day    `json:"days"`
}

// GetDay returns the day for the given date, or nil if the date is outside
// the planning
func (p *Planning) GetDay(date time.Time) *Day {
	for _, day := range p.Days {
		if SameDate(day.Date, date) {
			return day
		}
	}
	return nil
}

// SameDate compares two times by calendar date, ignoring clock and location
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
