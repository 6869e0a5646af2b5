package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sosbx/garde-planner/pkg/core/services"
)

// StatsCmd creates the stats command
func StatsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the fill state of the latest planning",
		Long:  "Report weekend/holiday slot coverage and per-person assignment counts for the latest planning",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := services.ViewStats(app.Ctx, app.Database, app.Logger)
			if err != nil {
				return fmt.Errorf("stats failed: %w", err)
			}

			fmt.Printf("\nPlanning %s\n\n", stats.PlanningID)
			fmt.Printf("Weekend/holiday days: %d\n", stats.WeekendDays)
			fmt.Printf("Slots filled:         %d / %d\n", stats.FilledSlots, stats.TotalSlots)

			if len(stats.UnfilledPosts) > 0 {
				fmt.Printf("\nUnfilled posts:\n")
				dates := make([]string, 0, len(stats.UnfilledPosts))
				for date := range stats.UnfilledPosts {
					dates = append(dates, date)
				}
				sort.Strings(dates)
				for _, date := range dates {
					fmt.Printf("  %s: %v\n", date, stats.UnfilledPosts[date])
				}
			}

			if len(stats.PerPerson) > 0 {
				fmt.Printf("\nAssignments per person:\n")
				names := make([]string, 0, len(stats.PerPerson))
				for name := range stats.PerPerson {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Printf("  %-20s %d\n", name, stats.PerPerson[name])
				}
			}

			return nil
		},
	}

	return cmd
}
