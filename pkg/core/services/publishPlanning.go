package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sosbx/garde-planner/internal/config"
	"github.com/sosbx/garde-planner/pkg/core/model"
)

// SheetsPublisher is the subset of the sheets client the publish path uses
type SheetsPublisher interface {
	ClearValues(spreadsheetID, sheetRange string) error
	UpdateValues(spreadsheetID, sheetRange string, values [][]interface{}) error
}

// PublishPlanningStore defines the database operations needed to publish a
// planning
type PublishPlanningStore interface {
	GetLatestPlanning(ctx context.Context) (*model.Planning, error)
}

// PublishPlanning exports the weekend/holiday assignments of the latest
// planning to the configured Google Sheet tab, one row per date and post
func PublishPlanning(
	ctx context.Context,
	store PublishPlanningStore,
	sheets SheetsPublisher,
	cfg *config.Config,
	logger *zap.Logger,
) error {
	if cfg.PlanningSheetID == "" || cfg.PublishTab == "" {
		return fmt.Errorf("planningSheetID and publishTab must be configured to publish")
	}

	planning, err := store.GetLatestPlanning(ctx)
	if err != nil {
		return fmt.Errorf("failed to load planning: %w", err)
	}

	rows := [][]interface{}{
		{"Date", "Jour", "Poste", "Site", "Assigné"},
	}
	for _, day := range planning.Days {
		if !day.IsWeekendOrHoliday() {
			continue
		}

		slots := make([]*model.Slot, len(day.Slots))
		copy(slots, day.Slots)
		sort.SliceStable(slots, func(i, j int) bool {
			if !slots[i].StartTime.Equal(slots[j].StartTime) {
				return slots[i].StartTime.Before(slots[j].StartTime)
			}
			return slots[i].Abbreviation < slots[j].Abbreviation
		})

		for _, slot := range slots {
			assignee := slot.Assignee
			if assignee == "" {
				assignee = "—"
			}
			rows = append(rows, []interface{}{
				day.Date.Format(model.DateFormat),
				dayLabel(day.Date),
				slot.Abbreviation,
				slot.Site,
				assignee,
			})
		}
	}

	sheetRange := fmt.Sprintf("%s!A1:E%d", cfg.PublishTab, len(rows))
	if err := sheets.ClearValues(cfg.PlanningSheetID, cfg.PublishTab); err != nil {
		return fmt.Errorf("failed to clear publish tab: %w", err)
	}
	if err := sheets.UpdateValues(cfg.PlanningSheetID, sheetRange, rows); err != nil {
		return fmt.Errorf("failed to publish planning: %w", err)
	}

	logger.Info("Planning published",
		zap.String("planning_id", planning.ID),
		zap.Int("rows", len(rows)-1))
	return nil
}

func dayLabel(date time.Time) string {
	switch date.Weekday() {
	case time.Saturday:
		return "Samedi"
	case time.Sunday:
		return "Dimanche"
	default:
		return "Férié/Pont"
	}
}
