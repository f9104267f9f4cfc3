package bootstrap

import (
	"context"
	"log/slog"
	"strings"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"candidatevet/internal/bootstrap/config"
	"candidatevet/internal/bootstrap/database"
	"candidatevet/internal/bootstrap/logging"
	cacheinfra "candidatevet/internal/infrastructure/cache"
	"candidatevet/internal/infrastructure/draft"
	"candidatevet/internal/infrastructure/messaging"
	sqliterepo "candidatevet/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "candidatevet/internal/infrastructure/persistence/sqlite/uow"
	"candidatevet/internal/infrastructure/search"
	"candidatevet/internal/ports"
	"candidatevet/internal/transport/httpapi"
	usecaseaudit "candidatevet/internal/usecase/audit"
	usecasevetting "candidatevet/internal/usecase/vetting"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewVettingRepository,
			fx.As(new(ports.VettingRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewAuditRepository,
			fx.As(new(ports.AuditRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(provideSearch),
	fx.Provide(provideDraftGenerator),
	fx.Provide(provideEventPublisher),
	fx.Provide(usecasevetting.NewService),
	fx.Provide(provideAuditService),
	fx.Provide(httpapi.NewHandler),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

// provideSearch puts the shared cache in front of the HTTP search client.
func provideSearch(cfg config.Config, cache ports.Cache) ports.SearchProvider {
	return search.NewCachedProvider(search.NewClient(cfg.Search, nil), cache, cfg.Audit.SearchCacheTTL)
}

func provideDraftGenerator(cfg config.Config) (ports.DraftGenerator, error) {
	return draft.New(cfg.Draft)
}

func provideEventPublisher(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (ports.EventPublisher, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))
	if strings.TrimSpace(cfg.NATS.URL) == "" {
		logging.Info(logCtx, "nats url not set, events are dropped")
		return messaging.Noop{}, nil
	}

	publisher, err := messaging.Connect(logCtx, cfg.NATS, cfg.App.Name)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return publisher.Close()
		},
	})
	return publisher, nil
}

type auditParams struct {
	fx.In

	Config   config.Config
	Audits   ports.AuditRepository
	Vettings ports.VettingRepository
	UoW      ports.UnitOfWork
	Search   ports.SearchProvider
	Cache    ports.Cache
	Events   ports.EventPublisher
}

func provideAuditService(p auditParams) *usecaseaudit.Service {
	return usecaseaudit.NewService(p.Audits, p.Vettings, p.UoW, p.Search, p.Cache, p.Events, usecaseaudit.Config{
		Discovery: usecaseaudit.DiscoveryConfig{
			MaxHops:          p.Config.Audit.MaxHops,
			QueryTimeout:     p.Config.Audit.QueryTimeout,
			QueryConcurrency: p.Config.Audit.QueryConcurrency,
			ResultsPerQuery:  p.Config.Search.MaxResults,
		},
		OpponentConcurrency: p.Config.Audit.OpponentConcurrency,
	})
}
