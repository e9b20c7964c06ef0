package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"leadtrack/cache"
	"leadtrack/config"
	"leadtrack/services"
	"leadtrack/store"
	"leadtrack/worker"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := config.ConnectPostgres(cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Info("connected to directory database")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoClient, interactions, err := config.ConnectMongo(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to interaction store: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	logger.Info("connected to interaction store")

	redisClient := config.NewRedisClient(cfg)
	defer redisClient.Close()

	directory := store.NewDirectory(db, cfg.StoreTimeout)
	docs := store.NewInteractionStore(interactions, cfg.StoreTimeout)
	appCache := cache.NewRedisCache(redisClient, logger, cfg.CacheTTL)

	app := services.NewApp(directory, docs, appCache, logger)

	refresher := worker.NewRefreshWorker(app.Calls, logger, cfg.RefreshInterval)
	go refresher.Start(ctx)

	logger.Info("leadtrack started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancel()
}
