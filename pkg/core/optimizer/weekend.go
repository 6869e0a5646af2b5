package optimizer

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sosbx/garde-planner/pkg/core/model"
)

// Date types returned by dateType
const (
	DateTypeSaturday      = "saturday"
	DateTypeSundayHoliday = "sunday_holiday"
)

// WeekendCombinationOptimizer fills weekend/holiday two-post combinations
// so that every person's group and post minimums are approached as closely
// as possible without violating maximums or hard availability constraints.
//
// The distribution runs in three escalating passes:
//  1. critical dates only (scarce availability), hardest to staff first
//  2. the remaining weekend/holiday dates, with history-balanced scoring
//  3. a relaxed pass that bypasses secondary desiderata for people still
//     under their group minimums
type WeekendCombinationOptimizer struct {
	tk *Toolkit

	// available maps date key -> combinations whose two component posts
	// exist on that day, regardless of fill state. Fill state is
	// re-checked per attempt.
	available map[string][]string

	result Result
}

// NewWeekendCombinationOptimizer builds the per-date combination catalog
// and the initial person states
func NewWeekendCombinationOptimizer(ctx *Context) *WeekendCombinationOptimizer {
	o := &WeekendCombinationOptimizer{
		tk:     NewToolkit(ctx),
		result: make(Result),
	}
	o.available = o.initializeAvailableCombinations()
	return o
}

// Optimize runs the three-phase distribution and returns the merged map of
// date -> combination -> assignee. The planning's slots are mutated in
// place. Quota shortfalls never surface as errors; callers read Stats.
func (o *WeekendCombinationOptimizer) Optimize() (Result, error) {
	log := o.tk.log

	o.distributeCriticalMinimums()
	log.Info("critical distribution pass complete",
		zap.Int("assigned", o.tk.state.TotalAssigned))

	if o.hasUnmetMinimums() {
		o.distributeBalanced()
		log.Info("balanced distribution pass complete",
			zap.Int("assigned", o.tk.state.TotalAssigned))
	}

	if o.hasUnmetMinimums() {
		o.distributeWithRelaxedConstraints()
		log.Info("relaxed distribution pass complete",
			zap.Int("assigned", o.tk.state.TotalAssigned))
	}

	return o.result, nil
}

// Stats returns the diagnostic snapshot of the run
func (o *WeekendCombinationOptimizer) Stats() DistributionStats {
	return o.tk.Stats()
}

// initializeAvailableCombinations walks every weekend/holiday date of the
// run and keeps each catalog combination whose two component posts exist as
// slots that day. Rebuilding on an unchanged planning yields identical
// results.
func (o *WeekendCombinationOptimizer) initializeAvailableCombinations() map[string][]string {
	available := make(map[string][]string)

	for date := o.tk.ctx.StartDate; !date.After(o.tk.ctx.EndDate); date = date.AddDate(0, 0, 1) {
		day := o.tk.ctx.Planning.GetDay(date)
		if day == nil || !day.IsWeekendOrHoliday() {
			continue
		}

		var combos []string
		for _, combo := range o.tk.ctx.AvailableSlots {
			first, second, ok := comboPosts(combo)
			if !ok {
				continue
			}
			if day.FindSlot(first, false) != nil && day.FindSlot(second, false) != nil {
				combos = append(combos, combo)
			}
		}
		if len(combos) > 0 {
			available[day.Date.Format(model.DateFormat)] = combos
		}
	}

	return available
}

// distributeCriticalMinimums is phase 1: only the dates flagged critical,
// most scarce availability first
func (o *WeekendCombinationOptimizer) distributeCriticalMinimums() {
	for _, period := range o.tk.criticalPeriods() {
		date := period.Date
		pool := o.availableCombinationsForDate(date)
		if len(pool) == 0 {
			continue
		}

		candidates := o.rankCandidates(date, false, false)
		for _, candidate := range candidates {
			if len(pool) == 0 {
				break
			}
			combo, found := o.findBestCombination(candidate.person, candidate.state, date, pool, false)
			if !found {
				continue
			}
			if o.tryAssignCombination(candidate.person, candidate.state, date, combo, false) {
				pool = removeCombination(pool, combo)
			}
		}
	}
}

// distributeBalanced is phase 2: every weekend/holiday day not already
// handled by the critical pass
func (o *WeekendCombinationOptimizer) distributeBalanced() {
	criticalDates := make(map[string]bool)
	for _, period := range o.tk.criticalPeriods() {
		criticalDates[period.Date.Format(model.DateFormat)] = true
	}

	for _, day := range o.tk.ctx.Planning.Days {
		if !day.IsWeekendOrHoliday() {
			continue
		}
		if criticalDates[day.Date.Format(model.DateFormat)] {
			continue
		}
		o.balancedDistributionForDate(day.Date)
	}
}

// balancedDistributionForDate greedily assigns the best combination to each
// history-adjusted candidate for one date
func (o *WeekendCombinationOptimizer) balancedDistributionForDate(date time.Time) {
	pool := o.availableCombinationsForDate(date)
	if len(pool) == 0 {
		return
	}

	for _, candidate := range o.rankCandidates(date, true, false) {
		if len(pool) == 0 {
			break
		}
		combo, found := o.findBestCombination(candidate.person, candidate.state, date, pool, false)
		if !found {
			continue
		}
		if o.tryAssignCombination(candidate.person, candidate.state, date, combo, false) {
			pool = removeCombination(pool, combo)
		}
	}
}

// distributeWithRelaxedConstraints is phase 3: every weekend/holiday date
// again, candidates restricted to people still under a group minimum, with
// secondary desiderata bypassed. Maximums remain hard.
func (o *WeekendCombinationOptimizer) distributeWithRelaxedConstraints() {
	for _, day := range o.tk.ctx.Planning.Days {
		if !day.IsWeekendOrHoliday() {
			continue
		}

		pool := o.availableCombinationsForDate(day.Date)
		if len(pool) == 0 {
			continue
		}

		for _, candidate := range o.rankCandidates(day.Date, true, true) {
			if len(pool) == 0 {
				break
			}
			if !o.needsMoreAssignments(candidate.state) {
				continue
			}
			combo, found := o.findBestCombination(candidate.person, candidate.state, day.Date, pool, true)
			if !found {
				continue
			}
			if o.tryAssignCombination(candidate.person, candidate.state, day.Date, combo, true) {
				pool = removeCombination(pool, combo)
			}
		}
	}
}

type candidate struct {
	person *model.Person
	state  *PersonState
	score  float64
}

// rankCandidates scores the eligible roster for a date and returns it
// sorted by descending score. The relaxed pass skips the coarse day-level
// availability filter so that secondary desiderata can be overridden; the
// constraint checker still vets every slot.
func (o *WeekendCombinationOptimizer) rankCandidates(date time.Time, historyAdjusted, relaxed bool) []candidate {
	var candidates []candidate

	for _, person := range o.tk.roster {
		if !relaxed && !person.IsAvailableOn(date) {
			continue
		}
		ps := o.tk.PersonState(person.Name)
		score := o.tk.PriorityScore(ps, AxisGroups, TotalItem, &date)
		if historyAdjusted {
			score = o.adjustScoreBasedOnHistory(ps, date, score)
		}
		candidates = append(candidates, candidate{person: person, state: ps, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	return candidates
}

// adjustScoreBasedOnHistory applies a recency penalty of 10% per assignment
// received within the trailing 7 days, a 20% bonus when the most recent
// assignment lies more than 14 days back, and the group-balance multiplier
func (o *WeekendCombinationOptimizer) adjustScoreBasedOnHistory(ps *PersonState, date time.Time, baseScore float64) float64 {
	recent := 0
	var lastAssignment *time.Time
	for i := range ps.Assignments {
		record := ps.Assignments[i]
		gap := date.Sub(record.Date)
		if gap >= 0 && gap <= 7*24*time.Hour {
			recent++
		}
		if lastAssignment == nil || record.Date.After(*lastAssignment) {
			lastAssignment = &ps.Assignments[i].Date
		}
	}

	score := baseScore * (1.0 - float64(recent)*0.1)

	if lastAssignment != nil && date.Sub(*lastAssignment) > 14*24*time.Hour {
		score *= 1.2
	}

	return score * o.calculateGroupBalanceScore(ps)
}

// calculateGroupBalanceScore returns 2 minus the mean of per-group
// completion ratios (each capped at 1.0), so people far under quota become
// more attractive
func (o *WeekendCombinationOptimizer) calculateGroupBalanceScore(ps *PersonState) float64 {
	total := 0.0
	groups := 0
	for item, minimum := range ps.Mins[AxisGroups] {
		if minimum <= 0 {
			continue
		}
		ratio := float64(ps.count(AxisGroups, item)) / float64(minimum)
		if ratio > 1.0 {
			ratio = 1.0
		}
		total += ratio
		groups++
	}
	if groups == 0 {
		return 1.0
	}
	return 2.0 - total/float64(groups)
}

// findBestCombination returns the feasible combination with the highest
// score. Ties resolve to the first maximal value in pool order.
func (o *WeekendCombinationOptimizer) findBestCombination(person *model.Person, ps *PersonState, date time.Time, pool []string, ignoreSecondary bool) (string, bool) {
	best := ""
	bestScore := 0.0
	found := false

	for _, combo := range pool {
		if !o.canAssignCombination(person, ps, date, combo, ignoreSecondary) {
			continue
		}
		score := o.calculateCombinationScore(ps, date, combo)
		if !found || score > bestScore {
			best = combo
			bestScore = score
			found = true
		}
	}

	return best, found
}

// calculateCombinationScore weighs how much a combination advances the
// person toward their group and post minimums, penalizing near-saturated
// groups and unbalanced post usage
func (o *WeekendCombinationOptimizer) calculateCombinationScore(ps *PersonState, date time.Time, combo string) float64 {
	score := 0.0

	for _, group := range o.groupsForCombo(combo, date) {
		if minimum := ps.min(AxisGroups, group); minimum > 0 && ps.count(AxisGroups, group) < minimum {
			score += 2.0
		}
		if maximum, bounded := ps.max(AxisGroups, group); bounded && ps.count(AxisGroups, group) >= maximum-1 {
			score *= 0.5
		}
	}

	first, second, ok := comboPosts(combo)
	if !ok {
		return 0.0
	}
	for _, post := range []string{first, second} {
		if minimum := ps.min(AxisPosts, post); minimum > 0 && ps.count(AxisPosts, post) < minimum {
			score += 1.0
		}
	}

	return score * o.calculatePostBalanceScore(ps, first, second)
}

// calculatePostBalanceScore peaks at 1.0 when the combo's component posts
// sit exactly at their minimum ratio and decays as usage drifts away from
// 1.0x quota in either direction
func (o *WeekendCombinationOptimizer) calculatePostBalanceScore(ps *PersonState, first, second string) float64 {
	total := 0.0
	counted := 0
	for _, post := range []string{first, second} {
		minimum := ps.min(AxisPosts, post)
		if minimum <= 0 {
			continue
		}
		total += float64(ps.count(AxisPosts, post)) / float64(minimum)
		counted++
	}
	if counted == 0 {
		return 1.0
	}

	meanRatio := total / float64(counted)
	deviation := meanRatio - 1.0
	if deviation < 0 {
		deviation = -deviation
	}
	return 1.0 / (1.0 + deviation)
}

// canAssignCombination checks group maximums, component slot availability,
// and the constraint checker for both component slots
func (o *WeekendCombinationOptimizer) canAssignCombination(person *model.Person, ps *PersonState, date time.Time, combo string, ignoreSecondary bool) bool {
	for _, group := range o.groupsForCombo(combo, date) {
		if maximum, bounded := ps.max(AxisGroups, group); bounded && ps.count(AxisGroups, group) >= maximum {
			return false
		}
	}

	day := o.tk.ctx.Planning.GetDay(date)
	if day == nil {
		return false
	}

	first, second, ok := comboPosts(combo)
	if !ok {
		return false
	}

	respectSecondary := !ignoreSecondary
	for _, post := range []string{first, second} {
		slot := day.FindSlot(post, true)
		if slot == nil {
			return false
		}
		if !o.tk.ctx.Constraints.CanAssignToAssignee(person, date, slot, o.tk.ctx.Planning, respectSecondary) {
			return false
		}
	}

	return true
}

// tryAssignCombination re-validates feasibility, commits both component
// slots to the person, and updates the group/post tallies and assignment
// logs. Every check runs before the first mutation, so a false return
// means slots and tallies are untouched.
func (o *WeekendCombinationOptimizer) tryAssignCombination(person *model.Person, ps *PersonState, date time.Time, combo string, ignoreSecondary bool) bool {
	if !o.canAssignCombination(person, ps, date, combo, ignoreSecondary) {
		o.tk.log.Debug("combination not assignable",
			zap.String("person", person.Name),
			zap.String("combination", combo),
			zap.Time("date", date))
		return false
	}

	day := o.tk.ctx.Planning.GetDay(date)
	first, second, _ := comboPosts(combo)

	firstSlot := day.FindSlot(first, true)
	secondSlot := day.FindSlot(second, true)
	if firstSlot == nil || secondSlot == nil || firstSlot == secondSlot {
		o.tk.log.Error("component slots unavailable at commit",
			zap.String("person", person.Name),
			zap.String("combination", combo),
			zap.Time("date", date))
		return false
	}

	firstSlot.Assignee = person.Name
	secondSlot.Assignee = person.Name

	for _, group := range o.groupsForCombo(combo, date) {
		o.tk.incrementCount(ps, AxisGroups, group)
	}
	o.tk.incrementCount(ps, AxisPosts, first)
	o.tk.incrementCount(ps, AxisPosts, second)
	o.tk.recordAssignment(ps, date, combo)

	key := date.Format(model.DateFormat)
	if o.result[key] == nil {
		o.result[key] = make(map[string]string)
	}
	o.result[key][combo] = person.Name

	o.tk.log.Debug("combination assigned",
		zap.String("person", person.Name),
		zap.String("combination", combo),
		zap.Time("date", date))
	return true
}

// groupsForCombo returns the deduplicated, sorted group codes the
// combination counts toward. Friday "NL" posts additionally count toward
// the weekend long-night group.
func (o *WeekendCombinationOptimizer) groupsForCombo(combo string, date time.Time) []string {
	first, second, ok := comboPosts(combo)
	if !ok {
		return nil
	}

	seen := make(map[string]bool)
	for _, post := range []string{first, second} {
		for _, group := range postGroups[post] {
			seen[group] = true
		}
		if post == "NL" && date.Weekday() == time.Friday {
			seen["NLw"] = true
		}
	}

	groups := make([]string, 0, len(seen))
	for group := range seen {
		groups = append(groups, group)
	}
	sort.Strings(groups)
	return groups
}

// hasUnmetMinimums reports whether any person is still under a group
// minimum
func (o *WeekendCombinationOptimizer) hasUnmetMinimums() bool {
	for _, ps := range o.tk.persons {
		if o.needsMoreAssignments(ps) {
			return true
		}
	}
	return false
}

// needsMoreAssignments checks the group counting axis only
func (o *WeekendCombinationOptimizer) needsMoreAssignments(ps *PersonState) bool {
	for item, minimum := range ps.Mins[AxisGroups] {
		if ps.count(AxisGroups, item) < minimum {
			return true
		}
	}
	return false
}

// availableCombinationsForDate re-checks the catalog against the live fill
// state: only combinations whose two component posts are both currently
// unassigned remain
func (o *WeekendCombinationOptimizer) availableCombinationsForDate(date time.Time) []string {
	day := o.tk.ctx.Planning.GetDay(date)
	if day == nil {
		return nil
	}

	var combos []string
	for _, combo := range o.available[date.Format(model.DateFormat)] {
		first, second, ok := comboPosts(combo)
		if !ok {
			continue
		}
		if day.FindSlot(first, true) != nil && day.FindSlot(second, true) != nil {
			combos = append(combos, combo)
		}
	}
	return combos
}

// DateType classifies a date for configuration purposes. Holidays and
// bridge days share the Sunday configuration.
func (o *WeekendCombinationOptimizer) DateType(date time.Time) string {
	day := o.tk.ctx.Planning.GetDay(date)
	if day != nil && day.IsHolidayOrBridge {
		return DateTypeSundayHoliday
	}
	switch date.Weekday() {
	case time.Saturday:
		return DateTypeSaturday
	case time.Sunday:
		return DateTypeSundayHoliday
	}
	return ""
}

// removeCombination drops one combination from a pool, preserving order
func removeCombination(pool []string, combo string) []string {
	for i, c := range pool {
		if c == combo {
			return append(pool[:i:i], pool[i+1:]...)
		}
	}
	return pool
}
