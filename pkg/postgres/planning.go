package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sosbx/garde-planner/pkg/core/model"
)

// GetLatestPlanning loads the planning with the most recent start date,
// including its days and slots in date order. Returns an error if no
// planning exists.
func (db *DB) GetLatestPlanning(ctx context.Context) (*model.Planning, error) {
	var planning model.Planning
	err := db.pool.QueryRow(ctx, `
		SELECT id, start_date, end_date
		FROM planning
		ORDER BY start_date DESC
		LIMIT 1
	`).Scan(&planning.ID, &planning.StartDate, &planning.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest planning: %w", err)
	}

	if err := db.loadDays(ctx, &planning); err != nil {
		return nil, err
	}

	return &planning, nil
}

// loadDays fills a planning's days and their slots
func (db *DB) loadDays(ctx context.Context, planning *model.Planning) error {
	rows, err := db.pool.Query(ctx, `
		SELECT id, day_date, is_weekend, is_holiday_or_bridge
		FROM planning_day
		WHERE planning_id = $1
		ORDER BY day_date
	`, planning.ID)
	if err != nil {
		return fmt.Errorf("failed to query planning days: %w", err)
	}
	defer rows.Close()

	dayIDs := make(map[string]*model.Day)
	var order []string
	for rows.Next() {
		var id string
		day := &model.Day{}
		if err := rows.Scan(&id, &day.Date, &day.IsWeekend, &day.IsHolidayOrBridge); err != nil {
			return fmt.Errorf("failed to scan planning day: %w", err)
		}
		dayIDs[id] = day
		order = append(order, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating planning days: %w", err)
	}

	for _, id := range order {
		day := dayIDs[id]
		if err := db.loadSlots(ctx, id, day); err != nil {
			return err
		}
		planning.Days = append(planning.Days, day)
	}

	return nil
}

// loadSlots fills one day's slots
func (db *DB) loadSlots(ctx context.Context, dayID string, day *model.Day) error {
	rows, err := db.pool.Query(ctx, `
		SELECT start_time, end_time, site, slot_type, abbreviation, assignee
		FROM planning_slot
		WHERE day_id = $1
		ORDER BY start_time, abbreviation
	`, dayID)
	if err != nil {
		return fmt.Errorf("failed to query slots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		slot := &model.Slot{}
		var assignee *string
		if err := rows.Scan(&slot.StartTime, &slot.EndTime, &slot.Site, &slot.SlotType, &slot.Abbreviation, &assignee); err != nil {
			return fmt.Errorf("failed to scan slot: %w", err)
		}
		if assignee != nil {
			slot.Assignee = *assignee
		}
		day.Slots = append(day.Slots, slot)
	}
	return rows.Err()
}

// InsertPlanning stores a planning with all its days and slots in one
// transaction
func (db *DB) InsertPlanning(ctx context.Context, planning *model.Planning) error {
	if planning.ID == "" {
		planning.ID = uuid.NewString()
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO planning (id, start_date, end_date)
		VALUES ($1, $2, $3)
	`, planning.ID, planning.StartDate, planning.EndDate)
	if err != nil {
		return fmt.Errorf("failed to insert planning: %w", err)
	}

	for _, day := range planning.Days {
		dayID := uuid.NewString()
		_, err = tx.Exec(ctx, `
			INSERT INTO planning_day (id, planning_id, day_date, is_weekend, is_holiday_or_bridge)
			VALUES ($1, $2, $3, $4, $5)
		`, dayID, planning.ID, day.Date, day.IsWeekend, day.IsHolidayOrBridge)
		if err != nil {
			return fmt.Errorf("failed to insert planning day: %w", err)
		}

		for _, slot := range day.Slots {
			var assignee *string
			if slot.Assignee != "" {
				assignee = &slot.Assignee
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO planning_slot (id, day_id, start_time, end_time, site, slot_type, abbreviation, assignee)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, uuid.NewString(), dayID, slot.StartTime, slot.EndTime, slot.Site, slot.SlotType, slot.Abbreviation, assignee)
			if err != nil {
				return fmt.Errorf("failed to insert slot: %w", err)
			}
		}
	}

	return tx.Commit(ctx)
}

// SaveAssignments persists the slot assignees set during an optimization
// run and records the audit rows, in one transaction
func (db *DB) SaveAssignments(ctx context.Context, planning *model.Planning, runID string, byDate map[string]map[string]string) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, day := range planning.Days {
		for _, slot := range day.Slots {
			if slot.Assignee == "" {
				continue
			}
			_, err = tx.Exec(ctx, `
				UPDATE planning_slot ps
				SET assignee = $1
				FROM planning_day pd
				WHERE ps.day_id = pd.id
				  AND pd.planning_id = $2
				  AND pd.day_date = $3
				  AND ps.abbreviation = $4
				  AND ps.assignee IS NULL
			`, slot.Assignee, planning.ID, day.Date, slot.Abbreviation)
			if err != nil {
				return fmt.Errorf("failed to update slot assignee: %w", err)
			}
		}
	}

	for dateKey, combos := range byDate {
		date, err := time.Parse(model.DateFormat, dateKey)
		if err != nil {
			return fmt.Errorf("invalid assignment date %q: %w", dateKey, err)
		}
		for combo, assignee := range combos {
			_, err = tx.Exec(ctx, `
				INSERT INTO assignment_audit (id, run_id, planning_id, assignment_date, combination, assignee)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, uuid.NewString(), runID, planning.ID, date, combo, assignee)
			if err != nil {
				return fmt.Errorf("failed to insert assignment audit: %w", err)
			}
		}
	}

	return tx.Commit(ctx)
}
