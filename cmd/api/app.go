package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-analytics/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-analytics/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-analytics/internal/adapters/metrics"
	"github.com/comitanigiacomo/kanso-analytics/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-analytics/internal/config"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/services"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/workers"
	"github.com/comitanigiacomo/kanso-analytics/internal/logger"
)

type app struct {
	router *gin.Engine
	worker *workers.StreakWorker

	db  *sqlx.DB
	rdb *redis.Client
}

type stores struct {
	users   domain.UserRepository
	habits  domain.HabitRepository
	entries domain.HabitEntryRepository
}

// openStores returns the repositories for cfg.DB.Driver. db is nil for the
// memory driver.
func openStores(ctx context.Context, cfg repository.DBConfig) (stores, *sqlx.DB, error) {
	if cfg.Driver == repository.DriverMemory {
		entries := repository.NewInMemoryEntryRepository()
		return stores{
			users:   repository.NewInMemoryUserRepository(),
			habits:  repository.NewInMemoryHabitRepository(entries),
			entries: entries,
		}, nil, nil
	}

	db, err := repository.Open(ctx, cfg)
	if err != nil {
		return stores{}, nil, err
	}
	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return stores{}, nil, err
	}

	return stores{
		users:   repository.NewSQLUserRepository(db),
		habits:  repository.NewSQLHabitRepository(db),
		entries: repository.NewSQLEntryRepository(db),
	}, db, nil
}

// newApp wires every component. Redis is optional: without it habits are
// not cached, streak events go to the log and requests are not rate limited.
func newApp(ctx context.Context, cfg *config.Config, m *metrics.Registry) (*app, error) {
	st, db, err := openStores(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}

	a := &app{db: db}

	habits := st.habits
	var notifier workers.Notifier = cache.LogNotifier{}

	if cfg.RedisEnabled {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			a.close()
			return nil, err
		}
		a.rdb = rdb
		habits = repository.NewCachedHabitRepository(st.habits, rdb, m)
		notifier = cache.NewRedisNotifier(rdb)
	}

	a.worker = workers.NewStreakWorker(habits, st.entries, notifier, workers.WithObserver(m))

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL, st.users)
	authSvc := services.NewAuthService(st.users)
	habitSvc := services.NewHabitService(habits)
	entrySvc := services.NewEntryService(st.entries, habits, a.worker)
	analyticsSvc := services.NewAnalyticsService(habits, st.entries, services.WithAnalyticsRecorder(m))

	deps := adapterHTTP.RouterDependencies{
		AuthHandler:      adapterHTTP.NewAuthHandler(authSvc, tokens),
		HabitHandler:     adapterHTTP.NewHabitHandler(habitSvc),
		EntryHandler:     adapterHTTP.NewEntryHandler(entrySvc),
		AnalyticsHandler: adapterHTTP.NewAnalyticsHandler(analyticsSvc),
		Tokens:           tokens,
		Metrics:          m,
		RateLimit:        cfg.RateLimit,
		RateLimitWindow:  cfg.RateLimitWindow,
		StartTime:        time.Now(),
	}
	if db != nil {
		deps.DB = db
	}
	if a.rdb != nil {
		deps.Redis = a.rdb
	}
	a.router = adapterHTTP.NewRouter(deps)

	return a, nil
}

func (a *app) close() error {
	var errs []error
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		logger.Error("shutdown cleanup failed", "error", err)
		return err
	}
	return nil
}
