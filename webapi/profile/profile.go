// Package profile exposes the profile snapshot and the credential-update
// endpoints.
package profile

import (
	appkg "github.com/contabank/contabank/pkg/app"
	"github.com/contabank/contabank/pkg/middleware"
	"github.com/contabank/contabank/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers the /profile endpoints, all behind the JWT guard.
func Routes(app *fiber.App, a *appkg.App) {
	jwt := middleware.JwtProtected(a.Config.Auth.Jwt)
	app.Get("/profile", jwt, GetProfile(a))
	app.Put("/profile/email", jwt, UpdateEmail(a))
	app.Put("/profile/password", jwt, UpdatePassword(a))
}

// GetProfile returns the caller's profile.
func GetProfile(a *appkg.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.UserID(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		email, _ := middleware.UserEmail(c)

		if sess := a.Store.Session(); sess != nil && sess.UserID == userID {
			if p := a.Store.Profile(); p != nil {
				return common.SuccessResponseJSON(c, fiber.StatusOK, "Profile", fiber.Map{
					"id": p.ID, "name": p.Name, "email": email, "created_at": p.CreatedAt,
				})
			}
		}
		p, _, err := a.Loader.Load(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load profile", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Profile", fiber.Map{
			"id": p.ID, "name": p.Name, "email": email, "created_at": p.CreatedAt,
		})
	}
}

// UpdateEmail changes the caller's login e-mail.
func UpdateEmail(a *appkg.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.UserID(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		current, _ := middleware.UserEmail(c)
		input, err := common.BindAndValidate[UpdateEmailRequest](c)
		if input == nil {
			return err
		}
		if err := a.User.ChangeEmail(c.Context(), userID, current, input.Email); err != nil {
			return common.ProblemDetailsJSON(c, "Email update failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Email updated", nil)
	}
}

// UpdatePassword changes the caller's password after verifying the current
// one.
func UpdatePassword(a *appkg.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.UserID(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		input, err := common.BindAndValidate[UpdatePasswordRequest](c)
		if input == nil {
			return err
		}
		err = a.User.ChangePassword(c.Context(), userID, input.CurrentPassword, input.NewPassword, input.ConfirmPassword)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Password update failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Password updated", nil)
	}
}
