package optimizer

import (
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sosbx/garde-planner/pkg/core/model"
)

// TotalItem is the pseudo-item used when ranking candidates by overall
// urgency rather than by a specific group or post
const TotalItem = "total"

// criticalAvailabilityThreshold is the roster-availability percentage below
// which a weekend/holiday day is flagged critical
const criticalAvailabilityThreshold = 65.0

// CriticalPeriod is a weekend/holiday day with scarce staff availability
type CriticalPeriod struct {
	Date         time.Time
	Availability float64
}

// Strategy is a concrete distribution algorithm. Strategies share the
// Toolkit by composition rather than inheritance, so a future weekday
// strategy does not couple to this one.
type Strategy interface {
	Optimize() (Result, error)
}

// Result maps date key -> combination or post code -> assignee name
type Result map[string]map[string]string

// Toolkit owns the state initialization, priority-scoring primitives, and
// assign/update bookkeeping shared by any concrete distribution strategy.
type Toolkit struct {
	ctx    *Context
	log    *zap.Logger
	rng    *rand.Rand
	roster []*model.Person

	state   DistributionState
	persons []*PersonState
	index   map[string]int

	critical      []CriticalPeriod
	criticalValid bool
}

// NewToolkit creates a toolkit bound to the given context and initializes
// the per-person states
func NewToolkit(ctx *Context) *Toolkit {
	t := &Toolkit{
		ctx:    ctx,
		log:    ctx.logger(),
		rng:    ctx.rng(),
		roster: ctx.Roster(),
	}
	t.InitializeStates()
	return t
}

// InitializeStates derives every person's interval requirements from the
// context and seeds empty tallies. Calling it again fully re-derives the
// states rather than accumulating.
func (t *Toolkit) InitializeStates() {
	t.state = DistributionState{Assignments: make(map[string][]AssignmentRecord)}
	t.persons = make([]*PersonState, 0, len(t.roster))
	t.index = make(map[string]int, len(t.roster))

	for _, person := range t.roster {
		ps := &PersonState{
			Name:      person.Name,
			HalfParts: person.HalfParts,
			Mins: map[string]map[string]int{
				AxisGroups: {},
				AxisPosts:  {},
			},
			Maxs: map[string]map[string]int{
				AxisGroups: {},
				AxisPosts:  {},
			},
			Counts: map[string]map[string]int{
				AxisGroups: {},
				AxisPosts:  {},
			},
		}

		if intervals, ok := t.ctx.Intervals[person.Name]; ok {
			for item, mm := range intervals.WeekendGroups {
				if mm.Min > 0 {
					ps.Mins[AxisGroups][item] = mm.Min
				}
				if mm.Max != nil {
					ps.Maxs[AxisGroups][item] = *mm.Max
				}
			}
			for item, mm := range intervals.WeekendPosts {
				if mm.Min > 0 {
					ps.Mins[AxisPosts][item] = mm.Min
				}
				if mm.Max != nil {
					ps.Maxs[AxisPosts][item] = *mm.Max
				}
			}
		}

		t.index[person.Name] = len(t.persons)
		t.persons = append(t.persons, ps)
	}
}

// PersonState returns the state of the named roster member, or nil
func (t *Toolkit) PersonState(name string) *PersonState {
	id, ok := t.index[name]
	if !ok {
		return nil
	}
	return t.persons[id]
}

// PriorityScore computes the composite urgency of giving the person one
// more assignment of the given item. Higher means more urgent. A non-nil
// date adds the date-criticality factor; a bounded random jitter breaks
// ties across repeated runs.
func (t *Toolkit) PriorityScore(ps *PersonState, axis, item string, date *time.Time) float64 {
	minimum, current := t.requirementFor(ps, axis, item)

	score := 0.0
	if minimum > 0 && current < minimum {
		score = float64(minimum-current) * 2.0
	}

	// Literal factor pairing: 1.2 for half_parts == 2, 0.8 otherwise.
	// Flagged for product-owner review; do not invert.
	if ps.HalfParts == 2 {
		score *= 1.2
	} else {
		score *= 0.8
	}

	if len(ps.Assignments) < ps.sumOfMinimums() {
		score *= 1.5
	}

	if date != nil {
		score *= t.dateScore(*date)
	}

	return score * (0.9 + t.rng.Float64()*0.2)
}

// requirementFor resolves the minimum/current pair for a scoring item. The
// "total" pseudo-item aggregates the whole group quota against the number
// of assignments received so far.
func (t *Toolkit) requirementFor(ps *PersonState, axis, item string) (minimum, current int) {
	if item == TotalItem {
		for _, v := range ps.Mins[AxisGroups] {
			minimum += v
		}
		return minimum, len(ps.Assignments)
	}
	return ps.min(axis, item), ps.count(axis, item)
}

// dateScore returns the criticality factor of a date: 1.0 normally, and
// 100/availability for dates where staff availability falls below the
// critical threshold
func (t *Toolkit) dateScore(date time.Time) float64 {
	for _, period := range t.criticalPeriods() {
		if !model.SameDate(period.Date, date) {
			continue
		}
		if period.Availability <= 0 {
			return 100.0
		}
		return 100.0 / period.Availability
	}
	return 1.0
}

// criticalPeriods scans every weekend/holiday day of the planning and
// returns those where roster availability falls below the threshold,
// sorted ascending by availability (most critical first). Availability is
// fixed for a run, so the scan is cached.
func (t *Toolkit) criticalPeriods() []CriticalPeriod {
	if t.criticalValid {
		return t.critical
	}
	t.critical = t.scanCriticalPeriods()
	t.criticalValid = true
	return t.critical
}

func (t *Toolkit) scanCriticalPeriods() []CriticalPeriod {
	if len(t.roster) == 0 {
		return nil
	}

	var periods []CriticalPeriod
	for _, day := range t.ctx.Planning.Days {
		if !day.IsWeekendOrHoliday() {
			continue
		}

		available := 0
		for _, person := range t.roster {
			if person.IsAvailableOn(day.Date) {
				available++
			}
		}

		availability := float64(available) / float64(len(t.roster)) * 100.0
		if availability < criticalAvailabilityThreshold {
			periods = append(periods, CriticalPeriod{Date: day.Date, Availability: availability})
		}
	}

	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].Availability < periods[j].Availability
	})
	return periods
}

// canAssign returns false if the person is already at their maximum for the
// item, and otherwise defers to the constraint checker when a slot is
// supplied
func (t *Toolkit) canAssign(person *model.Person, ps *PersonState, axis, item string, date time.Time, slot *model.Slot, respectSecondary bool) bool {
	if maximum, bounded := ps.max(axis, item); bounded && ps.count(axis, item) >= maximum {
		return false
	}
	if slot != nil {
		return t.ctx.Constraints.CanAssignToAssignee(person, date, slot, t.ctx.Planning, respectSecondary)
	}
	return true
}

// incrementCount bumps the running tally of one item on one axis
func (t *Toolkit) incrementCount(ps *PersonState, axis, item string) {
	ps.Counts[axis][item]++
}

// recordAssignment appends one (date, item) entry to the person's log and
// mirrors it into the run-level state
func (t *Toolkit) recordAssignment(ps *PersonState, date time.Time, item string) {
	record := AssignmentRecord{Date: date, Item: item}
	ps.Assignments = append(ps.Assignments, record)
	t.state.Assignments[ps.Name] = append(t.state.Assignments[ps.Name], record)
	t.state.TotalAssigned++
}

// PersonItemStats summarizes shortfall or excess per item
type PersonItemStats map[string]int

// DistributionStats is the read-only diagnostic snapshot callers use to
// surface quota shortfalls to an operator
type DistributionStats struct {
	TotalAssigned int
	PerPerson     map[string]int
	UnmetMinimums map[string]PersonItemStats
	OverMaximums  map[string]PersonItemStats
}

// Stats computes the diagnostic snapshot. Shortfall and excess are judged
// on the group counting axis only.
func (t *Toolkit) Stats() DistributionStats {
	stats := DistributionStats{
		TotalAssigned: t.state.TotalAssigned,
		PerPerson:     make(map[string]int),
		UnmetMinimums: make(map[string]PersonItemStats),
		OverMaximums:  make(map[string]PersonItemStats),
	}

	for _, ps := range t.persons {
		stats.PerPerson[ps.Name] = len(ps.Assignments)

		for item, minimum := range ps.Mins[AxisGroups] {
			if current := ps.count(AxisGroups, item); current < minimum {
				if stats.UnmetMinimums[ps.Name] == nil {
					stats.UnmetMinimums[ps.Name] = PersonItemStats{}
				}
				stats.UnmetMinimums[ps.Name][item] = minimum - current
			}
		}
		for item, maximum := range ps.Maxs[AxisGroups] {
			if current := ps.count(AxisGroups, item); current > maximum {
				if stats.OverMaximums[ps.Name] == nil {
					stats.OverMaximums[ps.Name] = PersonItemStats{}
				}
				stats.OverMaximums[ps.Name][item] = current - maximum
			}
		}
	}

	return stats
}
