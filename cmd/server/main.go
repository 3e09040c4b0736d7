package main

import (
	"fmt"

	log "github.com/charmbracelet/log"
	"github.com/venuehq/payouts/infra/initializer"
	"github.com/venuehq/payouts/pkg/config"
	"github.com/venuehq/payouts/pkg/service/bankaccount"
	"github.com/venuehq/payouts/pkg/service/ledger"
	"github.com/venuehq/payouts/pkg/service/payout"
	"github.com/venuehq/payouts/pkg/service/settings"
	"github.com/venuehq/payouts/webapi"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	logger := deps.Logger

	cache, err := initializer.NewSettingsCache(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize settings cache: %w", err)
	}

	settingsSvc := settings.NewService(*deps, cache)
	svcs := webapi.Services{
		Ledger:      ledger.NewService(*deps),
		BankAccount: bankaccount.NewService(*deps),
		Payout:      payout.NewService(*deps, settingsSvc),
		Settings:    settingsSvc,
	}

	app := webapi.SetupApp(svcs, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server",
		"env", cfg.Env,
		"address", addr,
	)

	return app.Listen(addr)
}
