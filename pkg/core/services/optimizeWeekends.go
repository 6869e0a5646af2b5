package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sosbx/garde-planner/internal/config"
	"github.com/sosbx/garde-planner/pkg/core/constraints"
	"github.com/sosbx/garde-planner/pkg/core/model"
	"github.com/sosbx/garde-planner/pkg/core/optimizer"
)

// OptimizeWeekendsStore defines the database operations needed to run the
// weekend combination distribution
type OptimizeWeekendsStore interface {
	GetLatestPlanning(ctx context.Context) (*model.Planning, error)
	GetRoster(ctx context.Context) (doctors, cats []*model.Person, err error)
	GetIntervals(ctx context.Context) (map[string]optimizer.IntervalSet, error)
	SaveAssignments(ctx context.Context, planning *model.Planning, runID string, byDate map[string]map[string]string) error
}

// OptimizeWeekendsOptions tunes one optimization run
type OptimizeWeekendsOptions struct {
	// DryRun skips persistence; the planning is still optimized in memory
	// and the stats reported
	DryRun bool

	// Seed fixes the optimizer's random source; 0 means time-seeded
	Seed int64
}

// OptimizeWeekendsResult contains the run outcome
type OptimizeWeekendsResult struct {
	PlanningID string
	RunID      string
	Assigned   int
	ByDate     optimizer.Result
	Stats      optimizer.DistributionStats
}

// OptimizeWeekends loads the latest planning, runs the weekend combination
// distribution, and persists the assignments unless dry-run. Quota
// shortfalls are reported in the result stats, never as errors.
func OptimizeWeekends(
	ctx context.Context,
	store OptimizeWeekendsStore,
	cfg *config.Config,
	logger *zap.Logger,
	opts OptimizeWeekendsOptions,
) (*OptimizeWeekendsResult, error) {
	logger.Debug("Starting optimizeWeekends",
		zap.Bool("dry_run", opts.DryRun),
		zap.Int64("seed", opts.Seed))

	planning, err := store.GetLatestPlanning(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load planning: %w", err)
	}
	logger.Debug("Loaded planning",
		zap.String("id", planning.ID),
		zap.Int("days", len(planning.Days)))

	doctors, cats, err := store.GetRoster(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	if len(doctors)+len(cats) == 0 {
		return nil, fmt.Errorf("roster is empty")
	}
	logger.Debug("Loaded roster",
		zap.Int("doctors", len(doctors)),
		zap.Int("cats", len(cats)))

	intervals, err := store.GetIntervals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load interval requirements: %w", err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	optCtx := &optimizer.Context{
		Planning:       planning,
		Intervals:      intervals,
		AvailableSlots: optimizer.WeekendCombinations,
		Constraints:    constraints.NewDesiderataChecker(),
		Doctors:        doctors,
		Cats:           cats,
		StartDate:      planning.StartDate,
		EndDate:        planning.EndDate,
		Rand:           rand.New(rand.NewSource(seed)),
		Logger:         logger,
	}

	weekend := optimizer.NewWeekendCombinationOptimizer(optCtx)
	byDate, err := weekend.Optimize()
	if err != nil {
		return nil, fmt.Errorf("weekend distribution failed: %w", err)
	}

	stats := weekend.Stats()
	logger.Info("Weekend distribution complete",
		zap.Int("assigned", stats.TotalAssigned),
		zap.Int("people_under_minimum", len(stats.UnmetMinimums)),
		zap.Int("people_over_maximum", len(stats.OverMaximums)))

	result := &OptimizeWeekendsResult{
		PlanningID: planning.ID,
		RunID:      uuid.NewString(),
		Assigned:   stats.TotalAssigned,
		ByDate:     byDate,
		Stats:      stats,
	}

	if opts.DryRun {
		logger.Info("Dry run - assignments not saved")
		return result, nil
	}

	if err := store.SaveAssignments(ctx, planning, result.RunID, byDate); err != nil {
		return nil, fmt.Errorf("failed to save assignments: %w", err)
	}
	logger.Info("Assignments saved",
		zap.String("run_id", result.RunID),
		zap.String("planning_id", planning.ID))

	return result, nil
}
