package optimizer

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/sosbx/garde-planner/pkg/core/constraints"
	"github.com/sosbx/garde-planner/pkg/core/model"
)

// MinMax holds an interval requirement for one item. A nil Max means
// unbounded.
type MinMax struct {
	Min int  `json:"min"`
	Max *int `json:"max,omitempty"`
}

// IntervalSet holds the pre-computed weekend requirements of one person:
// minimum/maximum counts per post group and per individual post.
type IntervalSet struct {
	WeekendGroups map[string]MinMax `json:"weekendGroups"`
	WeekendPosts  map[string]MinMax `json:"weekendPosts"`
}

// Context is the immutable-for-the-run bundle an optimization strategy
// works from. The planning is borrowed for the duration of one run: the
// optimizer sets slot assignees in place and performs no other mutation.
type Context struct {
	Planning       *model.Planning
	Intervals      map[string]IntervalSet
	AvailableSlots []string
	Constraints    constraints.Checker
	Doctors        []*model.Person
	Cats           []*model.Person
	StartDate      time.Time
	EndDate        time.Time

	// Rand breaks scoring ties. Leave nil for a time-seeded source;
	// tests inject a fixed one for deterministic runs.
	Rand *rand.Rand

	Logger *zap.Logger
}

// Roster returns doctors followed by CATs, the candidate order used
// wherever scores tie
func (c *Context) Roster() []*model.Person {
	roster := make([]*model.Person, 0, len(c.Doctors)+len(c.Cats))
	roster = append(roster, c.Doctors...)
	roster = append(roster, c.Cats...)
	return roster
}

// rng returns the injected random source, or a time-seeded one
func (c *Context) rng() *rand.Rand {
	if c.Rand != nil {
		return c.Rand
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// logger returns the injected logger, or a no-op one
func (c *Context) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}
