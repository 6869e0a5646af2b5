package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/sosbx/garde-planner/internal/config"
	"github.com/sosbx/garde-planner/pkg/core/calendar"
	"github.com/sosbx/garde-planner/pkg/postgres"
)

// AppContext holds the application dependencies shared by all commands
type AppContext struct {
	Env      string
	Cfg      *config.Config
	Calendar *calendar.Calendar
	Database *postgres.DB
	Logger   *zap.Logger
	Ctx      context.Context
}
