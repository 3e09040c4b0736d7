package config

import (
	"log/slog"

	"github.com/venuehq/payouts/pkg/eventbus"
	"github.com/venuehq/payouts/pkg/repository"
)

// Deps is the dependency container the initializer builds and every service
// constructor receives.
type Deps struct {
	Uow      repository.UnitOfWork
	EventBus eventbus.Bus
	Logger   *slog.Logger
	Config   *App
}
