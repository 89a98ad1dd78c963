package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/kingdom-bot/internal/config"
	"github.com/mcoot/kingdom-bot/internal/dependencies/clock"
	"github.com/mcoot/kingdom-bot/internal/dependencies/random"
	"github.com/mcoot/kingdom-bot/internal/plugin"
	"github.com/mcoot/kingdom-bot/internal/plugins"
	"github.com/mcoot/kingdom-bot/internal/services/dispatch"
	"github.com/mcoot/kingdom-bot/internal/services/players"
	"github.com/mcoot/kingdom-bot/internal/storage"
	"github.com/mcoot/kingdom-bot/internal/storage/memory"
	redisstorage "github.com/mcoot/kingdom-bot/internal/storage/redis"
	"github.com/mcoot/kingdom-bot/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Players    *players.Service
	Registry   *plugin.Registry
	Dispatcher *dispatch.Dispatcher
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// BotConfig holds the kingdom table and plugin overrides (optional)
	// If nil, the built-in defaults are used
	BotConfig *config.BotConfig
	// ExtraPlugins are loaded after the built-in plugins
	ExtraPlugins []plugin.Loader
	// SerializeSenders handles events from one sender one at a time
	SerializeSenders bool
	// ExpectationTTL is the default expectation lifetime; 0 keeps the built-in default
	ExpectationTTL time.Duration
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return newWithDependencies(store, clock.New(), random.New(), cfg, logger), nil
}

func openStorage(ctx context.Context, cfg Config, logger *slog.Logger) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		store, err := redisstorage.New(*cfg.RedisConfig, logger)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return store, nil
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		return sqlite.Open(ctx, cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *App {
	botCfg := cfg.BotConfig
	if botCfg == nil {
		defaults, _ := config.LoadBotConfig("")
		botCfg = &defaults
	}

	playerService := players.New(store, botCfg.Resolver(), clk, logger).
		WithExpectationTTL(cfg.ExpectationTTL)

	registry := plugin.NewRegistry(logger, botCfg.PluginOverrides()...)
	registry.Load(plugins.Loaders(plugins.Deps{
		Players: playerService,
		Clock:   clk,
		Random:  rnd,
		Logger:  logger,
	})...)
	registry.Load(cfg.ExtraPlugins...)

	dispatcher := dispatch.New(playerService, registry, store, clk, logger, dispatch.Config{
		SerializeSenders: cfg.SerializeSenders,
	})

	return &App{
		Storage:    store,
		Clock:      clk,
		Random:     rnd,
		Players:    playerService,
		Registry:   registry,
		Dispatcher: dispatcher,
	}
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
