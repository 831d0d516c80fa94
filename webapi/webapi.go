// Package webapi wires the HTTP surface. It is organized into sub-packages:
// - auth: registration, login, logout
// - account: snapshot, refresh, transfer, statement
// - profile: profile snapshot and credential updates
package webapi

import (
	"errors"
	"strings"

	"github.com/contabank/contabank/pkg/app"
	accountweb "github.com/contabank/contabank/webapi/account"
	authweb "github.com/contabank/contabank/webapi/auth"
	"github.com/contabank/contabank/webapi/common"
	profileweb "github.com/contabank/contabank/webapi/profile"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupApp initializes Fiber with the rate limiter, panic recovery and
// request logging, then registers all routes.
func SetupApp(a *app.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	// Rate limiting keyed by client IP; X-Forwarded-For wins when the app sits
	// behind a proxy.
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        a.Config.RateLimit.MaxRequests,
		Expiration: a.Config.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
					return strings.TrimSpace(forwardedFor[:commaIndex])
				}
				return strings.TrimSpace(forwardedFor)
			}
			if realIP := c.Get("X-Real-IP"); realIP != "" {
				return realIP
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	// Health check endpoint
	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Contabank API is running! 🚀")
	})

	authweb.Routes(fiberApp, a.Auth, a.Config)
	accountweb.Routes(fiberApp, a)
	profileweb.Routes(fiberApp, a)
	return fiberApp
}
