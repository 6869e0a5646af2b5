// Package constraints decides whether a single slot may legally be given to
// a person. The optimizer consumes the Checker interface only, so tests and
// future rule sets can swap the implementation.
package constraints

import (
	"strings"
	"time"

	"github.com/sosbx/garde-planner/pkg/core/model"
)

// Checker is the constraint oracle consulted before committing any slot
// assignment. A false return is authoritative: the slot must not be given
// to the person. When respectSecondary is false, secondary desiderata are
// ignored; primary desiderata and structural rules always apply.
type Checker interface {
	CanAssignToAssignee(person *model.Person, date time.Time, slot *model.Slot, planning *model.Planning, respectSecondary bool) bool
}

// DesiderataChecker is the default rule set: desiderata overlap, same-day
// double booking, and the post-night rest period.
type DesiderataChecker struct{}

// NewDesiderataChecker creates the default constraint checker
func NewDesiderataChecker() *DesiderataChecker {
	return &DesiderataChecker{}
}

// CanAssignToAssignee applies the default rules for one person/slot pair
func (c *DesiderataChecker) CanAssignToAssignee(person *model.Person, date time.Time, slot *model.Slot, planning *model.Planning, respectSecondary bool) bool {
	period := slot.Period()

	for _, d := range person.Desiderata {
		if !d.CoversPeriod(date, period) {
			continue
		}
		if d.Priority == model.PriorityPrimary {
			return false
		}
		if respectSecondary {
			return false
		}
	}

	day := planning.GetDay(date)
	if day != nil && c.hasOverlappingAssignment(person.Name, day, slot) {
		return false
	}

	// Rest period: no morning post the day after a night post
	if period == model.PeriodMorning && c.workedNightBefore(person.Name, date, planning) {
		return false
	}

	return true
}

// hasOverlappingAssignment reports whether the person already holds a slot
// on the day whose time range overlaps the candidate slot
func (c *DesiderataChecker) hasOverlappingAssignment(name string, day *model.Day, candidate *model.Slot) bool {
	for _, slot := range day.Slots {
		if slot == candidate || slot.Assignee != name {
			continue
		}
		if slot.StartTime.Before(candidate.EndTime) && candidate.StartTime.Before(slot.EndTime) {
			return true
		}
	}
	return false
}

// workedNightBefore reports whether the person held a night post on the
// previous day
func (c *DesiderataChecker) workedNightBefore(name string, date time.Time, planning *model.Planning) bool {
	previous := planning.GetDay(date.AddDate(0, 0, -1))
	if previous == nil {
		return false
	}
	for _, slot := range previous.Slots {
		if slot.Assignee == name && strings.HasPrefix(slot.Abbreviation, "N") {
			return true
		}
	}
	return false
}
