package app

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/theshibabasement/neuroflow/internal/data/db"
	"github.com/theshibabasement/neuroflow/internal/data/repos"
	apphttp "github.com/theshibabasement/neuroflow/internal/http"
	"github.com/theshibabasement/neuroflow/internal/http/handlers"
	"github.com/theshibabasement/neuroflow/internal/http/middleware"
	"github.com/theshibabasement/neuroflow/internal/observability"
	"github.com/theshibabasement/neuroflow/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *gorm.DB
	Clients  Clients
	Repos    *repos.Repos
	Services Services
	Server   *apphttp.Server

	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg := LoadConfig()

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := db.AutoMigrateAll(pg.DB()); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}

	clients, err := wireClients(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init clients: %w", err)
	}
	clients.Neo4j.EnsureSchema(ctx)

	reposet := repos.New(pg.DB(), log)

	serviceset, err := wireServices(log, cfg, clients, reposet)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init services: %w", err)
	}

	authMW := middleware.NewAuthMiddleware(log, serviceset.Auth)
	server := apphttp.NewServer(apphttp.RouterConfig{
		ServiceName:    cfg.ServiceName,
		AuthMiddleware: authMW,
		ChatHandler:    handlers.NewChatHandler(serviceset.Chat, reposet.ChatHistory),
		MemoryHandler:  handlers.NewMemoryHandler(serviceset.Memory),
		AdminHandler:   handlers.NewAdminHandler(reposet.Companies, serviceset.Memory),
		HealthHandler:  handlers.NewHealthHandler(pg.DB(), clients.Neo4j, clients.Redis, clients.Flowise, serviceset.Queue),
	})

	return &App{
		Log:          log,
		Cfg:          cfg,
		DB:           pg.DB(),
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("http server starting", "addr", a.Cfg.HTTPAddr)
	return a.Server.Run(a.Cfg.HTTPAddr)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.Clients.Neo4j != nil {
		_ = a.Clients.Neo4j.Close(ctx)
	}
	if a.Clients.Redis != nil {
		_ = a.Clients.Redis.Close()
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(ctx)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
