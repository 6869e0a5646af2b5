package optimizer

import "time"

// Counting axes for per-person tallies
const (
	AxisGroups = "groups"
	AxisPosts  = "posts"
)

// AssignmentRecord is one entry of a person's assignment log: the date and
// the item (post or combination code) they received.
type AssignmentRecord struct {
	Date time.Time
	Item string
}

// DistributionState is the run-level audit trail of an optimization pass
type DistributionState struct {
	// TotalAssigned counts successful assignments across the whole run.
	// Invariant: equals the summed lengths of the per-person logs.
	TotalAssigned int

	// Assignments maps person name to their ordered assignment log
	Assignments map[string][]AssignmentRecord
}

// PersonState tracks one roster member's requirements and running tallies
// for the duration of a run. States live in an arena indexed by a per-run
// person id; the name is carried for display and result building only.
type PersonState struct {
	Name      string
	HalfParts int

	// Mins and Maxs map axis -> item -> bound. Items absent from Maxs
	// are unbounded.
	Mins map[string]map[string]int
	Maxs map[string]map[string]int

	// Counts maps axis -> item -> running tally
	Counts map[string]map[string]int

	// Assignments is the ordered (date, item) log for this person
	Assignments []AssignmentRecord
}

// count returns the current tally for an item on an axis
func (ps *PersonState) count(axis, item string) int {
	return ps.Counts[axis][item]
}

// min returns the required minimum for an item on an axis (0 if none)
func (ps *PersonState) min(axis, item string) int {
	return ps.Mins[axis][item]
}

// max returns the allowed maximum for an item on an axis; ok is false when
// the item is unbounded
func (ps *PersonState) max(axis, item string) (int, bool) {
	v, ok := ps.Maxs[axis][item]
	return v, ok
}

// sumOfMinimums returns the total of all defined minimums across both axes
func (ps *PersonState) sumOfMinimums() int {
	total := 0
	for _, items := range ps.Mins {
		for _, v := range items {
			total += v
		}
	}
	return total
}
