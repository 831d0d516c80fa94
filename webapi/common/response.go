// Package common holds the response envelope, the RFC 9457 problem writer and
// the request binding/validation helper shared by the handler packages.
package common

import (
	"errors"

	"github.com/contabank/contabank/pkg/domain"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Response defines the standard API response structure for success cases.
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
	return c.Status(status).JSON(Response{Status: status, Message: message, Data: data})
}

// ProblemDetailsJSON writes an RFC 9457 problem response. Extra arguments
// refine it: a string becomes the detail, an int overrides the status (which
// otherwise comes from ErrorToStatusCode). A validation error additionally
// carries its field errors.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, details ...any) error {
	status := fiber.StatusInternalServerError
	if err != nil {
		status = ErrorToStatusCode(err)
	}
	pd := ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Instance: c.OriginalURL(),
	}
	if err != nil {
		pd.Detail = err.Error()
	}
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		pd.Errors = validationErr.Fields
	}
	for _, d := range details {
		switch v := d.(type) {
		case string:
			pd.Detail = v
		case int:
			status = v
		}
	}
	pd.Status = status
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(status).JSON(pd)
}

// ErrorToStatusCode maps the domain error taxonomy to HTTP status codes.
// Remote rejections surface as 422 so the caller can show the server's
// message; transport failures are the upstream's fault, 502.
func ErrorToStatusCode(err error) int {
	var validationErr *domain.ValidationError
	var remoteErr *domain.RemoteError
	var transportErr *domain.TransportError
	switch {
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrProfileNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrSelfTransfer),
		errors.Is(err, domain.ErrDuplicateSubmission):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &remoteErr):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUserUnauthorized):
		return fiber.StatusUnauthorized
	case errors.As(err, &transportErr):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// BindAndValidate parses the request body and validates it using
// go-playground/validator. On failure the error response has already been
// written and the returned pointer is nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		_ = ProblemDetailsJSON(c, "Invalid request body", nil, err.Error(), fiber.StatusBadRequest)
		return nil, err
	}
	if err := validator.New().Struct(input); err != nil {
		_ = ProblemDetailsJSON(c, "Validation failed", nil, err.Error(), fiber.StatusBadRequest)
		return nil, err
	}
	return &input, nil
}
