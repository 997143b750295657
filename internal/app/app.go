package app

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/glkeru/skn/internal/config"
	db "github.com/glkeru/skn/internal/db"
	interf "github.com/glkeru/skn/internal/interfaces"
	model "github.com/glkeru/skn/internal/models"
	skn "github.com/glkeru/skn/internal/services"
	"go.uber.org/zap"
)

// Сервисы с подключенными хранилищами, общие для всех бинарников
type App struct {
	Logger    *zap.Logger
	Plan      *config.Plan
	Ledger    *skn.LedgerWriter
	Engine    *skn.PropagationEngine
	Placement *skn.PlacementService
	Admin     *skn.AdminService

	closers []func()
}

func NewLogger() (*zap.Logger, error) {
	if os.Getenv("SKN_ENV") == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func New(ctx context.Context, logger *zap.Logger) (_ *App, err error) {
	app := &App{Logger: logger}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	// plan
	plan, err := config.LoadPlan()
	if err != nil {
		return nil, err
	}
	app.Plan = plan

	// mongo
	mdb, err := db.NewMongo(ctx)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, func() { _ = mdb.Client().Disconnect(context.Background()) })
	members := db.NewMembersDB(mdb)
	if err := members.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	admin := db.NewAdminDB(mdb)
	if err := admin.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	// postgres
	ledger, err := db.NewLedgerDB(logger)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, ledger.Close)
	if err := ledger.Migrate(ctx); err != nil {
		return nil, err
	}

	// cache
	var cache interf.CacheStorage
	redis, err := db.NewCacheService()
	if err != nil {
		logger.Error("cache is disabled", zap.Error(err))
	} else {
		cache = redis
		app.closers = append(app.closers, func() { _ = redis.Close() })
	}

	// services
	resolver := skn.NewResolver(logger, members, plan.MaxTreeDepth)
	app.Ledger = skn.NewLedgerWriter(logger, ledger)
	app.Engine = skn.NewPropagationEngine(logger, members, app.Ledger, cache, plan)
	app.Placement = skn.NewPlacementService(logger, members, resolver, app.Engine, plan)
	app.Admin = skn.NewAdminService(logger, members, admin, cache, app.Placement)

	return app, nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Число воркеров из env
func Workers(env string, def int) int {
	n, err := strconv.Atoi(os.Getenv(env))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

var retryInterval = 500 * time.Millisecond

// Ошибка, после которой есть смысл повторить
func Transient(err error) bool {
	return errors.Is(err, model.ErrStoreUnavailable) ||
		errors.Is(err, model.ErrConcurrentPlacement) ||
		errors.Is(err, model.ErrVersionConflict)
}

// Повтор операции с экспоненциальной задержкой, только для временных ошибок
func Retry(ctx context.Context, tries uint, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := op()
		if err != nil && !Transient(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(tries))
	return err
}
