package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/kingdom-bot/internal/api"
	"github.com/mcoot/kingdom-bot/internal/config"
	"github.com/mcoot/kingdom-bot/internal/factory"
	redisstorage "github.com/mcoot/kingdom-bot/internal/storage/redis"
)

func main() {
	serverCfg, err := config.LoadServerConfig()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	level, err := serverCfg.SlogLevel()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	botCfg, err := config.LoadBotConfig(serverCfg.BotConfigPath)
	if err != nil {
		logger.Error("failed to load bot config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Build factory config from environment
	cfg := factory.Config{
		Logger:           logger,
		StorageType:      serverCfg.StorageType,
		SQLitePath:       serverCfg.SQLitePath,
		BotConfig:        &botCfg,
		SerializeSenders: serverCfg.SerializeSenders,
		ExpectationTTL:   serverCfg.ExpectationTTL,
	}
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = serverCfg.RedisURL
		cfg.RedisConfig = &redisCfg
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create application factory
	app, err := factory.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	logger.Info("plugins loaded",
		slog.Any("plugins", app.Registry.Names()),
		slog.String("storage", serverCfg.StorageType),
	)

	router := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Dispatcher: app.Dispatcher,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Addr = serverCfg.Addr()
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
