package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/studybuddy-backend/internal/data/db"
	"github.com/yungbote/studybuddy-backend/internal/data/repos"
	"github.com/yungbote/studybuddy-backend/internal/http"
	"github.com/yungbote/studybuddy-backend/internal/observability"
	"github.com/yungbote/studybuddy-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *http.Server
	Cfg      Config
	Repos    repos.Set
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New builds the production app: env config, Postgres, external clients.
func New() (*App, error) {
	LoadEnv()
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if cfg.UsesDefaultJWTSecret() {
		log.Warn("JWT_SECRET_KEY not set, using the development default", "env", cfg.Environment)
	}

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "studybuddy-backend",
		Environment: cfg.Environment,
	})
	metrics := observability.Init(log)

	pg, err := db.NewPostgresService(log, cfg.DatabaseURL)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := db.AutoMigrateAll(pg.DB()); err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}

	clients, err := wireClients(log, cfg, metrics)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	a, err := NewWithDeps(Deps{Log: log, DB: pg.DB(), Cfg: cfg, Clients: clients, Metrics: metrics})
	if err != nil {
		clients.Close()
		_ = pg.Close()
		log.Sync()
		return nil, err
	}
	a.pg = pg
	a.otelShutdown = otelShutdown
	return a, nil
}

// Deps are the externally owned pieces NewWithDeps wires together.
type Deps struct {
	Log     *logger.Logger
	DB      *gorm.DB
	Cfg     Config
	Clients Clients
	Metrics *observability.Metrics
}

func NewWithDeps(d Deps) (*App, error) {
	reposet := wireRepos(d.DB, d.Log)
	serviceset, err := wireServices(d.DB, d.Log, d.Cfg, reposet, d.Clients)
	if err != nil {
		return nil, err
	}
	handlerset := wireHandlers(d.Log, d.DB, serviceset)
	middleware := wireMiddleware(d.Log, d.Cfg, serviceset, d.Metrics)
	server := wireServer(d.Log, d.Cfg, handlerset, middleware, d.Metrics)

	return &App{
		Log:      d.Log,
		DB:       d.DB,
		Server:   server,
		Cfg:      d.Cfg,
		Repos:    reposet,
		Clients:  d.Clients,
		Services: serviceset,
		Metrics:  d.Metrics,
	}, nil
}

// Start launches background work. Safe to call once.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.Services.ChatCleanup != nil {
		if err := a.Services.ChatCleanup.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Run blocks serving HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("Server listening", "addr", addr)
	return a.Server.Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.otelShutdown(ctx)
		cancel()
	}
	if a.pg != nil {
		_ = a.pg.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
