// Package app assembles the bot from its parts: configuration, logging,
// session storage, the catalog client, the conversation engine and the
// messenger surface.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	coreconfig "github.com/soundfetch/tunebot/core/config"
	"github.com/soundfetch/tunebot/core/database"
	"github.com/soundfetch/tunebot/core/logger"
	coretelegram "github.com/soundfetch/tunebot/core/telegram"
	"github.com/soundfetch/tunebot/music/bot"
	"github.com/soundfetch/tunebot/music/catalog"
	"github.com/soundfetch/tunebot/music/flow"
	"github.com/soundfetch/tunebot/music/history"
	"github.com/soundfetch/tunebot/music/session"
)

// App carries the assembled application state.
type App struct {
	cfg *coreconfig.Config

	db      *sqlx.DB
	redis   *redis.Client
	store   session.Store
	catalog *catalog.Client
	engine  *flow.Engine
	surface *bot.Surface
}

// Load reads configuration and returns an App ready for Bootstrap.
func Load(path string) (*App, error) {
	cfg, err := coreconfig.Load(path)
	if err != nil {
		return nil, err
	}
	return &App{cfg: cfg}, nil
}

// CoreConfig exposes the embedded configuration.
func (a *App) CoreConfig() *coreconfig.Config { return a.cfg }

// Bootstrap initializes logging, storage and the conversation engine.
func (a *App) Bootstrap() error {
	if err := logger.InitLogger(a.cfg); err != nil {
		return fmt.Errorf("app: logger init failed: %w", err)
	}
	ctx := logger.Background()

	a.catalog = catalog.New(catalog.Config{
		BaseURL:      a.cfg.Catalog.BaseURL,
		DefaultLimit: a.cfg.Catalog.SearchLimit,
	})

	store, err := a.buildSessionStore(ctx)
	if err != nil {
		return err
	}
	a.store = store

	var recorder flow.Recorder
	var hist *history.Service
	if a.cfg.Database.Enabled() {
		db, err := database.Connect(a.cfg.Database)
		if err != nil {
			return fmt.Errorf("app: database connect failed: %w", err)
		}
		if err := database.RunMigrations(a.cfg.Database); err != nil {
			db.Close()
			return fmt.Errorf("app: migrations failed: %w", err)
		}
		a.db = db
		hist = history.NewService(db)
		recorder = hist
	}

	a.engine = flow.New(a.store, a.catalog, recorder, flow.Config{
		SearchLimit:    a.cfg.Catalog.SearchLimit,
		DefaultQuality: a.cfg.Catalog.DefaultQuality,
		LinkBase:       a.cfg.Catalog.LinkBase,
	})

	a.surface = bot.New(bot.Options{
		Engine:  a.engine,
		History: hist,
		Health:  a.catalog,
		AdminID: a.cfg.Telegram.AdminID,
	})

	logger.Info(ctx, "app", "bootstrap.done",
		slog.String("status", "ok"),
		slog.String("session_backend", a.cfg.Session.Backend),
		slog.Bool("history", a.cfg.Database.Enabled()),
		slog.String("catalog_url", a.cfg.Catalog.BaseURL),
	)
	return nil
}

func (a *App) buildSessionStore(ctx context.Context) (session.Store, error) {
	ttl := time.Duration(a.cfg.Session.TTLSeconds) * time.Second
	if a.cfg.Session.Backend != coreconfig.SessionBackendRedis {
		return session.NewMemoryStore(ttl), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Session.RedisAddr,
		Password: a.cfg.Session.RedisPassword,
		DB:       a.cfg.Session.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("app: redis ping failed: %w", err)
	}
	a.redis = client
	return session.NewRedisStore(client, ttl), nil
}

// TelegramRunOptions builds the bot runtime options.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	if a.surface == nil {
		return coretelegram.RunOptions{}, fmt.Errorf("app: bootstrap must run before the bot starts")
	}
	return coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    a.surface.Registry(),
		Middlewares: coretelegram.DefaultMiddlewares(),
		Routes:      a.surface.Routes(),
		OnStop: func(ctx context.Context, _ coretelegram.Runtime) error {
			return a.Close(ctx)
		},
	}, nil
}

// HealthCheck probes the catalog service. Used by the healthcheck command.
func (a *App) HealthCheck(ctx context.Context) error {
	cat := a.catalog
	if cat == nil {
		cat = catalog.New(catalog.Config{BaseURL: a.cfg.Catalog.BaseURL})
	}
	return cat.Health(ctx)
}

// Close releases storage resources and drops all live sessions.
func (a *App) Close(ctx context.Context) error {
	if a.store != nil {
		if err := a.store.Clear(ctx); err != nil {
			logger.Warn(ctx, "app", "sessions.clear.failed",
				slog.String("err", err.Error()),
			)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Warn(ctx, "app", "redis.close.failed",
				slog.String("err", err.Error()),
			)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			logger.Warn(ctx, "app", "db.close.failed",
				slog.String("err", err.Error()),
			)
		}
	}
	return nil
}
