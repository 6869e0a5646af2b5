package postgres

import (
	"context"
	"fmt"

	"github.com/sosbx/garde-planner/pkg/core/model"
	"github.com/sosbx/garde-planner/pkg/core/optimizer"
)

// GetRoster loads all persons with their desiderata, split into doctors
// and CATs
func (db *DB) GetRoster(ctx context.Context) (doctors, cats []*model.Person, err error) {
	rows, err := db.pool.Query(ctx, `
		SELECT name, kind, half_parts
		FROM person
		ORDER BY name
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query persons: %w", err)
	}
	defer rows.Close()

	var persons []*model.Person
	for rows.Next() {
		p := &model.Person{}
		if err := rows.Scan(&p.Name, &p.Kind, &p.HalfParts); err != nil {
			return nil, nil, fmt.Errorf("failed to scan person: %w", err)
		}
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating persons: %w", err)
	}

	for _, p := range persons {
		if err := db.loadDesiderata(ctx, p); err != nil {
			return nil, nil, err
		}
		switch p.Kind {
		case model.KindDoctor:
			doctors = append(doctors, p)
		case model.KindCAT:
			cats = append(cats, p)
		}
	}

	return doctors, cats, nil
}

// loadDesiderata fills one person's unavailability intervals
func (db *DB) loadDesiderata(ctx context.Context, person *model.Person) error {
	rows, err := db.pool.Query(ctx, `
		SELECT start_date, end_date, period, priority
		FROM desideratum
		WHERE person_name = $1
		ORDER BY start_date
	`, person.Name)
	if err != nil {
		return fmt.Errorf("failed to query desiderata: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d model.Desideratum
		if err := rows.Scan(&d.StartDate, &d.EndDate, &d.Period, &d.Priority); err != nil {
			return fmt.Errorf("failed to scan desideratum: %w", err)
		}
		person.Desiderata = append(person.Desiderata, d)
	}
	return rows.Err()
}

// GetIntervals loads the per-person weekend requirement tables
func (db *DB) GetIntervals(ctx context.Context) (map[string]optimizer.IntervalSet, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT person_name, axis, item, min_count, max_count
		FROM interval_requirement
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query interval requirements: %w", err)
	}
	defer rows.Close()

	intervals := make(map[string]optimizer.IntervalSet)
	for rows.Next() {
		var name, axis, item string
		var minCount int
		var maxCount *int
		if err := rows.Scan(&name, &axis, &item, &minCount, &maxCount); err != nil {
			return nil, fmt.Errorf("failed to scan interval requirement: %w", err)
		}

		set, ok := intervals[name]
		if !ok {
			set = optimizer.IntervalSet{
				WeekendGroups: make(map[string]optimizer.MinMax),
				WeekendPosts:  make(map[string]optimizer.MinMax),
			}
		}

		mm := optimizer.MinMax{Min: minCount, Max: maxCount}
		switch axis {
		case "weekend_groups":
			set.WeekendGroups[item] = mm
		case "weekend_posts":
			set.WeekendPosts[item] = mm
		}
		intervals[name] = set
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interval requirements: %w", err)
	}

	return intervals, nil
}
