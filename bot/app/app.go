package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hyenabot/HyenaBot-Go/bot/config"
	"github.com/hyenabot/HyenaBot-Go/bot/db"
	logpkg "github.com/hyenabot/HyenaBot-Go/bot/logger"
	"github.com/hyenabot/HyenaBot-Go/bot/reminder"
	"github.com/hyenabot/HyenaBot-Go/bot/telegram"
	"github.com/hyenabot/HyenaBot-Go/bot/telegram/handler"
	"github.com/hyenabot/HyenaBot-Go/bot/worker"
	"github.com/mymmrac/telego"
	"golang.org/x/sync/errgroup"
)

// App wires all application dependencies.
type App struct {
	Config   *config.Config
	Logger   *logpkg.Logger
	DB       *db.Repository
	Pool     *worker.Pool
	Telegram *telegram.Bot
	Build    BuildInfo

	group  *errgroup.Group
	cancel context.CancelFunc
}

// BuildInfo provides build-time metadata.
type BuildInfo struct {
	RuntimeVer string
	BinVersion string
	CommitSHA  string
	BuildTime  string
	BuildArch  string
}

// New builds the application container.
func New(configPath string, build BuildInfo) (*App, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logpkg.New(conf.GetString("LogLevel"), conf.GetString("LogFormat"), conf.GetBool("LogSource"))
	if err != nil {
		return nil, err
	}

	gormLogger := logpkg.NewGormLogger(log.Slog(), logpkg.ParseGormLevel(conf.GetString("GormLogLevel")))
	databasePath := strings.TrimSpace(conf.GetString("Database"))
	if databasePath == "" {
		databasePath = "hyenabot.db"
	}

	repo, err := db.NewSQLiteRepository(databasePath, gormLogger)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	maxOpen := conf.GetInt("DBMaxOpenConns")
	maxIdle := conf.GetInt("DBMaxIdleConns")
	maxLifetimeSec := conf.GetInt("DBConnMaxLifetimeSec")
	if err := repo.ConfigurePool(maxOpen, maxIdle, time.Duration(maxLifetimeSec)*time.Second); err != nil {
		return nil, fmt.Errorf("configure db pool: %w", err)
	}

	pool := worker.New(conf.GetInt("WorkerPoolSize"))

	tele, err := telegram.New(conf, log)
	if err != nil {
		return nil, fmt.Errorf("init telegram: %w", err)
	}

	return &App{
		Config:   conf,
		Logger:   log,
		DB:       repo,
		Pool:     pool,
		Telegram: tele,
		Build:    build,
	}, nil
}

// Start connects to Telegram and launches the update router and the
// reminder scheduler.
func (a *App) Start(ctx context.Context) error {
	meCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	me, err := a.Telegram.GetMe(meCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("getMe: %w", err)
	}
	botName := me.Username
	a.Logger.Info("bot authorized", "username", botName, "id", me.ID)

	rateLimitPerSecond := a.Config.GetFloat64("RateLimitPerSecond")
	if rateLimitPerSecond <= 0 {
		rateLimitPerSecond = 1.0
	}
	rateLimitBurst := a.Config.GetInt("RateLimitBurst")
	if rateLimitBurst <= 0 {
		rateLimitBurst = 3
	}
	rateLimiter := telegram.NewRateLimiter(rateLimitPerSecond, rateLimitBurst)
	rateLimiter.SetLogger(a.Logger)

	yeenClient := handler.NewYeenClient(
		a.Config.GetString("YeenAPI"),
		time.Duration(a.Config.GetInt("YeenTimeoutSec"))*time.Second,
		a.Logger,
	)

	router := &handler.Router{
		Handlers: map[string]handler.MessageHandler{
			"ping": &handler.PingHandler{RateLimiter: rateLimiter},
			"alias": &handler.AliasHandler{
				Aliases:     a.DB,
				Users:       a.DB,
				Admins:      handler.NewChatAdminChecker(a.Telegram.Client()),
				Logger:      a.Logger,
				RateLimiter: rateLimiter,
			},
			"yeen": &handler.YeenHandler{
				Client:      yeenClient,
				Logger:      a.Logger,
				RateLimiter: rateLimiter,
			},
			"image": handler.NewImageHandler(
				time.Duration(a.Config.GetInt("ImageTimeoutSec"))*time.Second,
				int64(a.Config.GetInt("ImageMaxBytes")),
				a.Logger,
				rateLimiter,
			),
			"timezone": &handler.TimezoneHandler{Users: a.DB, Logger: a.Logger, RateLimiter: rateLimiter},
			"remind":   &handler.RemindHandler{Users: a.DB, Reminders: a.DB, Logger: a.Logger, RateLimiter: rateLimiter},
			"status": &handler.StatusHandler{
				Aliases:     a.DB,
				Reminders:   a.DB,
				Stats:       a.DB,
				Logger:      a.Logger,
				RateLimiter: rateLimiter,
			},
		},
		Fallback: &handler.FallbackHandler{
			Aliases:     a.DB,
			Logger:      a.Logger,
			RateLimiter: rateLimiter,
			BotName:     botName,
		},
		Logger:      a.Logger,
		Pool:        a.Pool,
		Stats:       a.DB,
		RateLimiter: rateLimiter,
		BotName:     botName,
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	a.cancel = cancelRun

	updates, err := a.Telegram.Updates(runCtx)
	if err != nil {
		cancelRun()
		return fmt.Errorf("start long polling: %w", err)
	}

	scheduler := reminder.New(
		a.DB,
		a.Pool,
		func(ctx context.Context, chatID int64, text string) error {
			params := &telego.SendMessageParams{
				ChatID: telego.ChatID{ID: chatID},
				Text:   text,
			}
			_, err := telegram.SendMessageWithRetry(ctx, rateLimiter, a.Telegram.Client(), params)
			return err
		},
		time.Duration(a.Config.GetInt("ReminderPollSec"))*time.Second,
		a.Config.GetInt("ReminderBatchSize"),
		a.Logger,
	)

	group, groupCtx := errgroup.WithContext(runCtx)
	a.group = group
	group.Go(func() error {
		router.Run(groupCtx, a.Telegram.Client(), updates)
		return nil
	})
	group.Go(func() error {
		err := scheduler.Run(groupCtx)
		if err != nil && groupCtx.Err() != nil {
			return nil
		}
		return err
	})

	a.Logger.Info("hyenabot started",
		"version", a.Build.BinVersion, "commit", a.Build.CommitSHA, "workers", a.Pool.Size())
	return nil
}

// Shutdown releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error

	if a.cancel != nil {
		a.cancel()
	}
	if a.group != nil {
		if err := a.group.Wait(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("background services: %w", err)
		}
	}

	if a.Pool != nil {
		if err := a.Pool.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shutdown worker pool: %w", err)
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			if a.Logger != nil {
				a.Logger.Error("failed to close database", "error", err)
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("close database: %w", err)
			}
		}
	}

	if a.Logger != nil {
		if err := a.Logger.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close logger: %w", err)
		}
	}

	return firstErr
}
