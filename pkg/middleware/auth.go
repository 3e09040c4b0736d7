// Package middleware holds the shared fiber middleware: JWT verification
// and actor extraction.
package middleware

import (
	"errors"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/venuehq/payouts/pkg/config"
	"github.com/venuehq/payouts/pkg/domain"
)

// JwtProtected verifies the bearer token and stores the parsed token under
// c.Locals("user").
func JwtProtected(cfg config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{Key: []byte(cfg.Secret)},
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	status := fiber.StatusUnauthorized
	if err.Error() == "Missing or malformed JWT" {
		status = fiber.StatusBadRequest
	}
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(status).JSON(fiber.Map{
		"title":  "Unauthorized",
		"status": status,
		"detail": err.Error(),
	})
}

// ActorFromContext builds the domain actor from the verified token. A token
// with role=admin acts without a partner scope; everything else is pinned to
// its own partner id.
func ActorFromContext(c *fiber.Ctx) (domain.Actor, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return domain.Actor{}, errors.New("missing token in context")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Actor{}, errors.New("unexpected claims type")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return domain.Actor{}, err
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return domain.Actor{}, errors.New("subject is not a valid id")
	}

	role, _ := claims["role"].(string)
	return domain.Actor{
		ID:            id,
		PartnerScoped: role != "admin",
	}, nil
}

// AdminOnly rejects partner-scoped actors. It must run after JwtProtected.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := ActorFromContext(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		if actor.PartnerScoped {
			return fiber.ErrForbidden
		}
		return c.Next()
	}
}
