// Package auth exposes registration, login and logout over HTTP.
package auth

import (
	"errors"

	"github.com/contabank/contabank/pkg/config"
	"github.com/contabank/contabank/pkg/domain"
	"github.com/contabank/contabank/pkg/middleware"
	authsvc "github.com/contabank/contabank/pkg/service/auth"
	"github.com/contabank/contabank/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers the /auth endpoints.
func Routes(app *fiber.App, svc *authsvc.Service, cfg *config.App) {
	app.Post("/auth/register", Register(svc))
	app.Post("/auth/login", Login(svc))
	app.Post("/auth/logout", middleware.JwtProtected(cfg.Auth.Jwt), Logout(svc))
}

// Register creates the identity, its profile and the seeded bank account.
func Register(svc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[RegisterRequest](c)
		if input == nil {
			return err
		}
		u, err := svc.Register(c.Context(), input.Name, input.Email, input.Password)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Registration failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "User registered", fiber.Map{
			"id":    u.ID,
			"email": u.Email,
		})
	}
}

// Login authenticates the user and returns the session token.
func Login(svc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[LoginRequest](c)
		if input == nil {
			return err
		}
		sess, err := svc.Login(c.Context(), input.Email, input.Password)
		if err != nil {
			if errors.Is(err, domain.ErrUserUnauthorized) {
				return common.ProblemDetailsJSON(c, "Invalid email or password", err, "Email or password is incorrect")
			}
			return common.ProblemDetailsJSON(c, "Login failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Success login", fiber.Map{
			"token":      sess.Token,
			"expires_at": sess.ExpiresAt,
		})
	}
}

// Logout revokes the current session.
func Logout(svc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Logout(c.Context()); err != nil {
			return common.ProblemDetailsJSON(c, "Logout failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Signed out", nil)
	}
}
