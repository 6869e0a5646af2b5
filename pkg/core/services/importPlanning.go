package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/sosbx/garde-planner/pkg/core/calendar"
	"github.com/sosbx/garde-planner/pkg/core/model"
)

// ImportPlanningStore defines the database operations needed to import a
// planning
type ImportPlanningStore interface {
	InsertPlanning(ctx context.Context, planning *model.Planning) error
}

// ImportPlanning reads a planning JSON file produced by the generation
// phase, normalizes its day flags against the calendar, and stores it
func ImportPlanning(
	ctx context.Context,
	store ImportPlanningStore,
	cal *calendar.Calendar,
	path string,
	logger *zap.Logger,
) (*model.Planning, error) {
	logger.Debug("Importing planning", zap.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read planning file: %w", err)
	}

	var planning model.Planning
	if err := json.Unmarshal(data, &planning); err != nil {
		return nil, fmt.Errorf("failed to parse planning file: %w", err)
	}

	if err := validatePlanning(&planning); err != nil {
		return nil, err
	}

	// Day flags from the generation phase may predate calendar changes;
	// re-derive them so the optimizer sees consistent classifications
	for _, day := range planning.Days {
		day.IsWeekend = calendar.IsWeekend(day.Date)
		day.IsHolidayOrBridge = calendar.IsHoliday(day.Date) || cal.IsBridgeDay(day.Date)
	}

	if err := store.InsertPlanning(ctx, &planning); err != nil {
		return nil, fmt.Errorf("failed to store planning: %w", err)
	}

	logger.Info("Planning imported",
		zap.String("id", planning.ID),
		zap.Int("days", len(planning.Days)))
	return &planning, nil
}

// validatePlanning checks the structural invariants an imported planning
// must satisfy
func validatePlanning(planning *model.Planning) error {
	if planning.StartDate.IsZero() || planning.EndDate.IsZero() {
		return fmt.Errorf("planning is missing start or end date")
	}
	if planning.EndDate.Before(planning.StartDate) {
		return fmt.Errorf("planning end date precedes start date")
	}
	if len(planning.Days) == 0 {
		return fmt.Errorf("planning has no days")
	}
	for i, day := range planning.Days {
		if day.Date.IsZero() {
			return fmt.Errorf("day %d has no date", i)
		}
		for j, slot := range day.Slots {
			if len(slot.Abbreviation) != 2 {
				return fmt.Errorf("day %d slot %d has invalid abbreviation %q", i, j, slot.Abbreviation)
			}
			if !slot.StartTime.Before(slot.EndTime) {
				return fmt.Errorf("day %d slot %d has invalid time range", i, j)
			}
		}
	}
	return nil
}
