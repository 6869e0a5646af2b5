package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sosbx/garde-planner/pkg/core/services"
)

// OptimizeWeekendsCmd creates the optimizeWeekends command
func OptimizeWeekendsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimizeWeekends",
		Short: "Distribute weekend/holiday combinations",
		Long:  "Run the three-phase weekend combination distribution over the latest planning and save the assignments",
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			seed, _ := cmd.Flags().GetInt64("seed")
			if seed == 0 {
				seed = app.Cfg.Seed
			}

			app.Logger.Debug("optimizeWeekends command",
				zap.Bool("dry_run", dryRun),
				zap.Int64("seed", seed))

			result, err := services.OptimizeWeekends(
				app.Ctx,
				app.Database,
				app.Cfg,
				app.Logger,
				services.OptimizeWeekendsOptions{DryRun: dryRun, Seed: seed},
			)
			if err != nil {
				return fmt.Errorf("optimization failed: %w", err)
			}

			fmt.Printf("\nWeekend Distribution Results\n\n")
			fmt.Printf("Planning ID: %s\n", result.PlanningID)
			fmt.Printf("Run ID:      %s\n", result.RunID)
			fmt.Printf("Assigned:    %d combinations\n", result.Assigned)
			if dryRun {
				fmt.Printf("Mode:        DRY RUN (not saved)\n")
			}
			fmt.Println()

			dates := make([]string, 0, len(result.ByDate))
			for date := range result.ByDate {
				dates = append(dates, date)
			}
			sort.Strings(dates)

			for _, date := range dates {
				fmt.Printf("%s\n", date)
				combos := make([]string, 0, len(result.ByDate[date]))
				for combo := range result.ByDate[date] {
					combos = append(combos, combo)
				}
				sort.Strings(combos)
				for _, combo := range combos {
					fmt.Printf("  %s -> %s\n", combo, result.ByDate[date][combo])
				}
			}

			if len(result.Stats.UnmetMinimums) > 0 {
				fmt.Printf("\nUnmet minimums (%d people):\n", len(result.Stats.UnmetMinimums))
				for name, items := range result.Stats.UnmetMinimums {
					for item, shortfall := range items {
						fmt.Printf("  %s: %s short by %d\n", name, item, shortfall)
					}
				}
			}
			if len(result.Stats.OverMaximums) > 0 {
				fmt.Printf("\nOver maximums (%d people):\n", len(result.Stats.OverMaximums))
				for name, items := range result.Stats.OverMaximums {
					for item, excess := range items {
						fmt.Printf("  %s: %s over by %d\n", name, item, excess)
					}
				}
			}

			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Run the distribution without saving assignments")
	cmd.Flags().Int64("seed", 0, "Fix the random source (0 = time-seeded, or config value)")

	return cmd
}
