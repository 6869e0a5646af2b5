package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sosbx/garde-planner/internal/config"
	"github.com/sosbx/garde-planner/pkg/clients/sheetsclient"
	"github.com/sosbx/garde-planner/pkg/core/services"
)

// PublishPlanningCmd creates the publishPlanning command
func PublishPlanningCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publishPlanning",
		Short: "Publish the latest planning to Google Sheets",
		Long:  "Export the weekend/holiday assignments of the latest planning to the configured spreadsheet tab",
		RunE: func(cmd *cobra.Command, args []string) error {
			oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
			if err != nil {
				return fmt.Errorf("failed to load oauth client config: %w", err)
			}

			sheets, err := sheetsclient.NewClient(app.Ctx, oauthCfg, app.Env)
			if err != nil {
				return fmt.Errorf("failed to create sheets client: %w", err)
			}

			if err := services.PublishPlanning(app.Ctx, app.Database, sheets, app.Cfg, app.Logger); err != nil {
				return fmt.Errorf("publish failed: %w", err)
			}

			fmt.Println("Planning published to Google Sheets")
			return nil
		},
	}

	return cmd
}
