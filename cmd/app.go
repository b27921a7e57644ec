package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ai_chess/internal/adapters"
	"ai_chess/internal/bootstrap"
	"ai_chess/internal/domain/game"
	repo "ai_chess/internal/repository"
	gameuc "ai_chess/internal/usecase/game"
)

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

type storages struct {
	states  gameuc.StateStore
	archive gameuc.ArchiveStore
}

// initDatabaseAdapters connects the configured databases. Either one may be
// missing, in which case the in-memory storage takes its place.
func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) (*dataBaseAdapters, *storages, error) {
	dbs := &dataBaseAdapters{}
	stores := &storages{
		states:  repo.NewMemoryStateStorage(),
		archive: repo.NewMemoryArchiveStorage(),
	}

	if cfg.RedisUrl != "" {
		dbs.redisAdapter = adapters.NewAdapterRedis(cfg, log)
		if err := dbs.redisAdapter.Init(ctx); err != nil {
			return nil, nil, err
		}
		stores.states = repo.NewStateRedisStorage(dbs.redisAdapter.GetClient(), log)
	} else {
		log.Info("REDIS_URL is not set, game state is kept in memory")
	}

	if cfg.MongoUri != "" {
		dbs.mongoAdapter = adapters.NewAdapterMongo(cfg, log)
		if err := dbs.mongoAdapter.Init(ctx); err != nil {
			dbs.Close(ctx)
			return nil, nil, err
		}
		stores.archive = repo.NewArchiveMongoStorage(dbs.mongoAdapter.Database, log)
	} else {
		log.Info("MONGO_URI is not set, finished games are kept in memory")
	}

	return dbs, stores, nil
}

func (d *dataBaseAdapters) Close(ctx context.Context) {
	if d.redisAdapter != nil {
		_ = d.redisAdapter.Close(ctx)
	}
	if d.mongoAdapter != nil {
		_ = d.mongoAdapter.Close(ctx)
	}
}

func newLlmFactory(cfg *bootstrap.Config, log *zap.SugaredLogger) gameuc.LlmFactory {
	factory := repo.NewLlmFactory(cfg, log)
	return func(provider, model string) (gameuc.LlmStore, string, error) {
		llm, err := factory.New(provider, model)
		if err != nil {
			return nil, "", err
		}
		return llm, llm.Model(), nil
	}
}

func gameSettings(cfg *bootstrap.Config) gameuc.Settings {
	return gameuc.Settings{
		White:       game.PlayerRequest{Provider: cfg.WhiteProvider, Model: cfg.WhiteModel},
		Black:       game.PlayerRequest{Provider: cfg.BlackProvider, Model: cfg.BlackModel},
		MaxAttempts: cfg.MaxAttempts,
		MoveTimeout: cfg.MoveTimeout,
		TurnDelay:   cfg.TurnDelay,
		MaxPlies:    cfg.MaxPlies,
		ClaimDraws:  cfg.ClaimDraws,
	}
}

func setup(cfgPath string) (*bootstrap.Config, *zap.SugaredLogger, error) {
	cfg, err := bootstrap.Setup(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := bootstrap.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
	time.Sleep(1 * time.Second)
}
