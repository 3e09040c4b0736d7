// Package common holds the response envelope, RFC 9457 problem details and
// request binding shared by all handlers.
package common

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/venuehq/payouts/pkg/domain"
)

// Response is the standard success envelope.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

// SuccessResponseJSON writes the success envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// ErrorResponseJSON writes a problem details response.
func ErrorResponseJSON(c *fiber.Ctx, status int, title string, detail any) error {
	pd := ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Instance: c.OriginalURL(),
	}
	if detail != nil {
		if s, ok := detail.(string); ok {
			pd.Detail = s
		} else {
			pd.Errors = detail
		}
	}
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(status).JSON(pd)
}

// DomainErrorJSON maps a service error to its status code and writes the
// problem details response.
func DomainErrorJSON(c *fiber.Ctx, err error) error {
	status := ErrorToStatusCode(err)
	title := fiber.ErrInternalServerError.Message
	if status != fiber.StatusInternalServerError {
		title = err.Error()
	}
	return ErrorResponseJSON(c, status, title, err.Error())
}

// ErrorToStatusCode maps domain errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrWalletNotFound),
		errors.Is(err, domain.ErrBankAccountNotFound),
		errors.Is(err, domain.ErrPayoutRequestNotFound),
		errors.Is(err, domain.ErrPayoutNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrNetAmountNotPositive):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidStateTransition),
		errors.Is(err, domain.ErrDuplicateBankAccount),
		errors.Is(err, domain.ErrBankAccountInUse):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrAmountMustBePositive),
		errors.Is(err, domain.ErrAmountOutOfBounds),
		errors.Is(err, domain.ErrPayoutMethodNotAllowed),
		errors.Is(err, domain.ErrBankAccountNotUsable),
		errors.Is(err, domain.ErrInvalidTransactionType):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// BindAndValidate parses the request body into T and validates it. On
// failure it writes the error response and returns the error.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		_ = ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
		return nil, err
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		_ = ErrorResponseJSON(c, fiber.StatusBadRequest, "Validation failed", err.Error())
		return nil, err
	}
	return &input, nil
}
