package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/vorhaben-backend/internal/data/db"
	apphttp "github.com/yungbote/vorhaben-backend/internal/http"
	"github.com/yungbote/vorhaben-backend/internal/observability"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *apphttp.Server
	Metrics  *observability.Metrics
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services

	database     *db.DatabaseService
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// NewLogger builds the process logger from LOG_MODE.
func NewLogger() (*logger.Logger, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// OpenDatabase connects using DB_DRIVER and migrates the schema.
func OpenDatabase(log *logger.Logger) (*db.DatabaseService, error) {
	database, err := db.NewDatabaseService(log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := database.AutoMigrateAll(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return database, nil
}

func New() (*App, error) {
	log, err := NewLogger()
	if err != nil {
		return nil, err
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	metrics := observability.Init(log)
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	database, err := OpenDatabase(log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	theDB := database.DB()
	metrics.RegisterDB(log, theDB)

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = database.Close()
		log.Sync()
		return nil, err
	}

	repoSet := wireRepos(theDB, log)

	serviceSet, err := wireServices(theDB, log, cfg, repoSet, clients)
	if err != nil {
		clients.Close()
		_ = database.Close()
		log.Sync()
		return nil, err
	}

	handlerSet := wireHandlers(log, serviceSet)
	server := wireServer(log, cfg, handlerSet, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Metrics:      metrics,
		Cfg:          cfg,
		Clients:      clients,
		Repos:        repoSet,
		Services:     serviceSet,
		database:     database,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background loops: template hot reload and the redis collector.
func (a *App) Start(ctx context.Context) {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.Services.Registry != nil {
		go func() {
			if err := a.Services.Registry.Watch(ctx); err != nil {
				a.Log.Warn("template watcher stopped", "error", err)
			}
		}()
	}
	a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Start(ctx)
	addr := ":" + a.Cfg.Port
	a.Log.Info("Server listening", "address", addr)
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
	if a.database != nil {
		if err := a.database.Close(); err != nil && a.Log != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.otelShutdown(ctx)
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
