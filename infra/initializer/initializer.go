// Package initializer builds the dependency container: database, unit of
// work, event bus and settings cache, selected by configuration.
package initializer

import (
	"fmt"
	"log/slog"

	"github.com/venuehq/payouts/infra"
	infracache "github.com/venuehq/payouts/infra/cache"
	infraeventbus "github.com/venuehq/payouts/infra/eventbus"
	infrarepository "github.com/venuehq/payouts/infra/repository"
	"github.com/venuehq/payouts/pkg/config"
	"github.com/venuehq/payouts/pkg/eventbus"
	"github.com/venuehq/payouts/pkg/service/settings"
)

// InitializeDependencies wires the application dependencies from cfg.
func InitializeDependencies(cfg *config.App) (*config.Deps, error) {
	logger := setupLogger(cfg.Log)

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	if err := db.AutoMigrate(infrarepository.Models()...); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	bus, err := newEventBus(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &config.Deps{
		Uow:      infrarepository.NewUoW(db),
		EventBus: bus,
		Logger:   logger,
		Config:   cfg,
	}, nil
}

// NewSettingsCache builds the settings cache selected by configuration.
// Returns nil when caching is disabled.
func NewSettingsCache(cfg *config.App) (settings.Cache, error) {
	if !cfg.SettingsCache.Enabled {
		return nil, nil
	}
	if cfg.Redis.URL != "" {
		cache, err := infracache.NewRedisSettingsCache(
			cfg.Redis.URL,
			cfg.Redis.KeyPrefix+"settings",
			cfg.SettingsCache.TTL,
		)
		if err != nil {
			return nil, fmt.Errorf("initialize settings cache: %w", err)
		}
		return cache, nil
	}
	return infracache.NewMemorySettingsCache(cfg.SettingsCache.TTL), nil
}

func newEventBus(cfg *config.App, logger *slog.Logger) (eventbus.Bus, error) {
	switch cfg.EventBus.Driver {
	case "", "memory":
		return infraeventbus.NewWithMemory(logger), nil
	case "redis":
		bus, err := infraeventbus.NewWithRedis(
			cfg.Redis.URL,
			cfg.EventBus.RedisStream,
			cfg.EventBus.RedisGroup,
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("initialize redis event bus: %w", err)
		}
		return bus, nil
	case "kafka":
		bus, err := infraeventbus.NewWithKafka(
			cfg.EventBus.KafkaBrokers,
			infraeventbus.KafkaBusConfig{},
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("initialize kafka event bus: %w", err)
		}
		return bus, nil
	default:
		return nil, fmt.Errorf("unknown event bus driver %q", cfg.EventBus.Driver)
	}
}
