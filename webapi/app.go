// Package webapi provides the HTTP surface over the payout services. It is
// a thin layer: handlers bind and validate input, call one service method
// and translate the result; all rules live in the services.
package webapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/venuehq/payouts/pkg/config"
	"github.com/venuehq/payouts/pkg/service/bankaccount"
	"github.com/venuehq/payouts/pkg/service/ledger"
	"github.com/venuehq/payouts/pkg/service/payout"
	"github.com/venuehq/payouts/pkg/service/settings"
	"github.com/venuehq/payouts/webapi/common"
)

// Services bundles the service layer handed to the route constructors.
type Services struct {
	Ledger      *ledger.Service
	BankAccount *bankaccount.Service
	Payout      *payout.Service
	Settings    *settings.Service
}

// SetupApp builds the fiber application with middleware and all routes.
func SetupApp(svcs Services, cfg *config.App) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
			return common.ErrorResponseJSON(c, status, "Internal Server Error", err.Error())
		},
	})

	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit.MaxRequests,
		Expiration: cfg.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				if i := strings.Index(forwardedFor, ","); i != -1 {
					return strings.TrimSpace(forwardedFor[:i])
				}
				return strings.TrimSpace(forwardedFor)
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ErrorResponseJSON(
				c, fiber.StatusTooManyRequests, "Too Many Requests", "rate limit exceeded")
		},
	}))
	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Payouts API is running")
	})

	WalletRoutes(app, svcs.Ledger, cfg)
	BankAccountRoutes(app, svcs.BankAccount, cfg)
	PayoutRoutes(app, svcs.Payout, cfg)
	SettingsRoutes(app, svcs.Settings, cfg)

	return app
}
