package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sosbx/garde-planner/cmd/cli/commands"
	"github.com/sosbx/garde-planner/internal/config"
	"github.com/sosbx/garde-planner/pkg/core/calendar"
	"github.com/sosbx/garde-planner/pkg/postgres"
	"github.com/sosbx/garde-planner/pkg/utils/logging"
)

var (
	env string

	// app is filled in by initApp before any command runs; command
	// builders close over the pointer
	app = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "garde-planner",
		Short: "Garde Planner CLI - Distribute medical on-call shifts",
		Long:  `A CLI tool for distributing weekend and holiday on-call combinations across a roster of doctors and clinical assistants.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Logger != nil {
				app.Logger.Sync()
			}
			if app.Database != nil {
				app.Database.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.ImportPlanningCmd(app))
	rootCmd.AddCommand(commands.OptimizeWeekendsCmd(app))
	rootCmd.AddCommand(commands.StatsCmd(app))
	rootCmd.AddCommand(commands.PublishPlanningCmd(app))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initApp initializes the application dependencies
func initApp() error {
	ctx := context.Background()

	logger, err := logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cal, err := calendar.New(cfg.BridgeRules)
	if err != nil {
		return fmt.Errorf("failed to build calendar: %w", err)
	}

	database, err := postgres.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	app.Env = env
	app.Cfg = cfg
	app.Calendar = cal
	app.Database = database
	app.Logger = logger
	app.Ctx = ctx

	return nil
}
