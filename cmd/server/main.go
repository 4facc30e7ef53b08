package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/iliyamo/eventx-studio/internal/backend"
	"github.com/iliyamo/eventx-studio/internal/config"
	"github.com/iliyamo/eventx-studio/internal/database"
	"github.com/iliyamo/eventx-studio/internal/handler"
	"github.com/iliyamo/eventx-studio/internal/inflight"
	"github.com/iliyamo/eventx-studio/internal/logger"
	"github.com/iliyamo/eventx-studio/internal/middleware"
	"github.com/iliyamo/eventx-studio/internal/queue"
	"github.com/iliyamo/eventx-studio/internal/repository"
	"github.com/iliyamo/eventx-studio/internal/router"
	"github.com/iliyamo/eventx-studio/internal/service"
	"github.com/iliyamo/eventx-studio/internal/session"
)

func main() {
	var (
		envFile string
		port    string
	)
	pflag.StringVar(&envFile, "env-file", "", "path to a .env file (default: ./.env if present)")
	pflag.StringVar(&port, "port", "", "HTTP port, overrides APP_PORT")
	pflag.Parse()

	cfg, cfgErr := config.Load(envFile)
	if port != "" {
		cfg.Port = port
	}

	l := logger.New(cfg.Log.Level, cfg.Log.Mode, cfg.Log.Encoding)
	defer l.Sync()
	if cfgErr != nil {
		l.Fatal("config", "error", cfgErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api, err := backend.New(backend.Config{BaseURL: cfg.Backend.BaseURL, Timeout: cfg.Backend.Timeout, Logger: l})
	if err != nil {
		l.Fatal("backend client", "error", err)
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}

	records, screens, guard := stores(ctx, cfg, rdb, l)
	validate := validator.New()
	sessions := session.NewManager(records, screens, api, validate, cfg.Session.TTL, l)
	cookie := middleware.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secret: cfg.Session.Secret,
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.CookieSecure,
	}

	activity := service.NewActivityPublisher(cfg.Events, l)
	if cfg.Events.Enabled {
		go func() {
			if err := queue.StartActivityConsumer(ctx, cfg.Events, l); err != nil && !errors.Is(err, context.Canceled) {
				l.Error("activity consumer stopped", "error", err)
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.Session(cookie, sessions, l))
	e.Use(middleware.RequestLogger(l))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cookie, l),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, l))
	admin := handler.NewAdminHandler(screens, guard, validate, l)
	router.RegisterAdmin(e, admin, middleware.NewRedisCache(config.LoadCacheConfig(), rdb, l))
	router.RegisterUser(e, handler.NewUserHandler(screens, guard, activity, l))
	router.RegisterShared(e, handler.NewNotificationHandler(guard, l), admin)

	go func() {
		l.Info("listening", "addr", ":"+cfg.Port, "env", cfg.Env, "session_store", cfg.Session.Store)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("server stopped", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		l.Error("shutdown", "error", err)
	}
}

// stores picks where session records, screen state and in-flight slots
// live.  Without Redis everything except MySQL session records falls back
// to process memory.
func stores(ctx context.Context, cfg config.Config, rdb *redis.Client, l logger.Logger) (repository.SessionRepository, repository.ScreenRepository, inflight.Guard) {
	var (
		screens repository.ScreenRepository = repository.NewMemoryScreenRepository()
		guard   inflight.Guard              = inflight.NewLocal()
	)
	if rdb != nil {
		screens = repository.NewRedisScreenRepository(rdb, cfg.Session.ScreenTTL, l)
		guard = inflight.NewRedis(rdb, cfg.Session.InFlightTTL)
	}

	switch cfg.Session.Store {
	case config.SessionStoreMySQL:
		db, err := database.Open(cfg.DB)
		if err != nil {
			l.Fatal("mysql", "error", err)
		}
		if err := database.EnsureSessionSchema(ctx, db); err != nil {
			l.Fatal("mysql schema", "error", err)
		}
		repo := repository.NewSessionRepo(db)
		if n, err := repo.PurgeExpired(ctx); err != nil {
			l.Warn("purge expired sessions", "error", err)
		} else if n > 0 {
			l.Info("purged expired sessions", "count", n)
		}
		return repo, screens, guard
	case config.SessionStoreRedis:
		if rdb != nil {
			return repository.NewRedisSessionRepository(rdb, l), screens, guard
		}
		l.Warn("redis unavailable, session records kept in memory")
	}
	return repository.NewMemorySessionRepository(), screens, guard
}
