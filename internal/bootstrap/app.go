package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"candidatevet/internal/bootstrap/config"
	"candidatevet/internal/bootstrap/logging"
	"candidatevet/internal/errs"
	"candidatevet/internal/infrastructure/persistence/sqlite/model"
)

// App is the resolved configuration and database handle shared by commands.
type App struct {
	Config config.Config
	DB     *gorm.DB
}

// InitSchema migrates every vetting and audit table and returns the table names in
// migration order. Running it again only adds missing columns and indexes.
func (a *App) InitSchema(ctx context.Context) ([]string, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	logCtx := logging.WithComponent(ctx, "bootstrap.app")

	models := model.All()
	tables := make([]string, 0, len(models))
	for _, m := range models {
		stmt := &gorm.Statement{DB: a.DB}
		if err := stmt.Parse(m); err != nil {
			return nil, errs.Wrapf(err, "parse model %T", m)
		}
		tables = append(tables, stmt.Schema.Table)
	}

	if err := a.DB.WithContext(ctx).AutoMigrate(models...); err != nil {
		return nil, errs.Wrap(err, "auto migrate schema")
	}

	logging.Info(logCtx, "schema migrated", slog.Int("tables", len(tables)))
	return tables, nil
}
