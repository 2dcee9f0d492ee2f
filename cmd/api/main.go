package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	driver "go.mongodb.org/mongo-driver/mongo"

	"github.com/aeturnus/vitality-system/internal/api"
	"github.com/aeturnus/vitality-system/internal/infrastructure/db/mongo"
	"github.com/aeturnus/vitality-system/internal/infrastructure/db/redis"
	"github.com/aeturnus/vitality-system/internal/infrastructure/oracle"
	"github.com/aeturnus/vitality-system/internal/pkg/config"
	"github.com/aeturnus/vitality-system/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "vitality-api",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx := context.Background()

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	if err := ensureIndexes(ctx, mongoClient, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}()

	gemini, err := oracle.New(ctx, oracle.Config{
		APIKey:      cfg.Oracle.APIKey,
		Model:       cfg.Oracle.Model,
		VisionModel: cfg.Oracle.VisionModel,
		Timeout:     cfg.Oracle.Timeout,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("oracle client init failed")
	}

	e := api.NewRouter(api.RouterConfig{
		MongoClient: mongoClient,
		MongoDB:     db,
		Redis:       rdb,
		Oracle:      gemini,
		Identifier:  gemini,
		JWTSecret:   cfg.JWTSecret,
		Log:         log,
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting http server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func ensureIndexes(ctx context.Context, client *driver.Client, db *driver.Database) error {
	if err := mongo.NewAuthRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongo.NewPlayerRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	return mongo.NewChoiceRepository(client, db).EnsureIndexes(ctx)
}
