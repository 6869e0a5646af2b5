package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/sosbx/garde-planner/pkg/core/model"
)

// PlanningStats summarizes the fill state of the latest planning's
// weekend/holiday days
type PlanningStats struct {
	PlanningID    string
	WeekendDays   int
	TotalSlots    int
	FilledSlots   int
	UnfilledPosts map[string][]string // date key -> unfilled post codes
	PerPerson     map[string]int      // assignee -> slot count
}

// ViewStats reports the weekend/holiday fill state of the latest planning,
// the data an operator reviews after an optimization run
func ViewStats(
	ctx context.Context,
	store PublishPlanningStore,
	logger *zap.Logger,
) (*PlanningStats, error) {
	planning, err := store.GetLatestPlanning(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load planning: %w", err)
	}

	stats := &PlanningStats{
		PlanningID:    planning.ID,
		UnfilledPosts: make(map[string][]string),
		PerPerson:     make(map[string]int),
	}

	for _, day := range planning.Days {
		if !day.IsWeekendOrHoliday() {
			continue
		}
		stats.WeekendDays++

		key := day.Date.Format(model.DateFormat)
		for _, slot := range day.Slots {
			stats.TotalSlots++
			if slot.Assignee == "" {
				stats.UnfilledPosts[key] = append(stats.UnfilledPosts[key], slot.Abbreviation)
				continue
			}
			stats.FilledSlots++
			stats.PerPerson[slot.Assignee]++
		}
	}

	for key := range stats.UnfilledPosts {
		sort.Strings(stats.UnfilledPosts[key])
	}

	logger.Debug("Planning stats computed",
		zap.String("planning_id", stats.PlanningID),
		zap.Int("weekend_days", stats.WeekendDays),
		zap.Int("filled", stats.FilledSlots),
		zap.Int("total", stats.TotalSlots))
	return stats, nil
}
