package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sosbx/garde-planner/pkg/core/services"
)

// ImportPlanningCmd creates the importPlanning command
func ImportPlanningCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "importPlanning <file>",
		Short: "Import a generated planning JSON file",
		Long:  "Load a planning JSON file produced by the generation phase, normalize its day flags, and store it in the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			app.Logger.Debug("importPlanning command", zap.String("path", path))

			planning, err := services.ImportPlanning(app.Ctx, app.Database, app.Calendar, path, app.Logger)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			fmt.Printf("\nPlanning imported\n\n")
			fmt.Printf("ID:    %s\n", planning.ID)
			fmt.Printf("Range: %s to %s\n",
				planning.StartDate.Format("2006-01-02"),
				planning.EndDate.Format("2006-01-02"))
			fmt.Printf("Days:  %d\n", len(planning.Days))

			return nil
		},
	}

	return cmd
}
