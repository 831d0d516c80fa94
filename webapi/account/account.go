// Package account exposes the account snapshot, the explicit refresh, the
// funds transfer and the statement over HTTP.
package account

import (
	appkg "github.com/contabank/contabank/pkg/app"
	"github.com/contabank/contabank/pkg/domain"
	"github.com/contabank/contabank/pkg/middleware"
	"github.com/contabank/contabank/pkg/money"
	transfersvc "github.com/contabank/contabank/pkg/service/transfer"
	"github.com/contabank/contabank/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Routes registers the /account endpoints, all behind the JWT guard.
func Routes(app *fiber.App, a *appkg.App) {
	jwt := middleware.JwtProtected(a.Config.Auth.Jwt)
	app.Get("/account", jwt, GetAccount(a))
	app.Post("/account/refresh", jwt, Refresh(a))
	app.Post("/account/transfer", jwt, Transfer(a))
	app.Get("/account/:id/transactions", jwt, GetTransactions(a))
}

// GetAccount returns the current profile and account snapshot. The session
// store snapshot is served when it belongs to the caller; otherwise the data
// is loaded fresh.
func GetAccount(a *appkg.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.UserID(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		profile, acct, err := snapshot(c, a, userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account", fiber.Map{
			"profile": fiber.Map{"id": profile.ID, "name": profile.Name},
			"account": accountResponse(acct),
		})
	}
}

// Refresh re-fetches the authoritative balance and replaces the cached
// account wholesale. On failure the cache is untouched and the error surfaces.
func Refresh(a *appkg.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.UserID(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		acct, err := a.Refresher.Refresh(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Refresh failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account refreshed", accountResponse(acct))
	}
}

// Transfer runs the transfer workflow for the caller's account and reports
// the terminal state.
func Transfer(a *appkg.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.UserID(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		input, err := common.BindAndValidate[TransferRequest](c)
		if input == nil {
			return err
		}
		_, acct, err := snapshot(c, a, userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load account", err)
		}

		req := transfersvc.Request{
			SourceAccountID:          acct.ID,
			DestinationAccountNumber: input.DestinationAccountNumber,
			Amount:                   input.Amount,
			Description:              input.Description,
		}
		if input.IdempotencyKey != "" {
			key, err := uuid.Parse(input.IdempotencyKey)
			if err != nil {
				return common.ProblemDetailsJSON(c, "Invalid idempotency key", nil, err.Error(), fiber.StatusBadRequest)
			}
			req.IdempotencyKey = key
		}
		result, err := a.Transfer.Run(c.Context(), userID, req)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Transfer failed", err)
		}

		data := fiber.Map{
			"state":            result.State,
			"amount":           result.Amount.StringFixed(2),
			"formatted_amount": money.FormatBRL(result.Amount),
			"idempotency_key":  result.IdempotencyKey,
		}
		if result.RefreshedAccount != nil {
			data["account"] = accountResponse(result.RefreshedAccount)
		}
		if result.RefreshErr != nil {
			// Money already moved; the client should refresh explicitly.
			data["refresh_error"] = result.RefreshErr.Error()
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transfer completed", data)
	}
}

// GetTransactions returns the account statement in server order. The account
// must belong to the caller.
func GetTransactions(a *appkg.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.UserID(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		accountID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", nil, err.Error(), fiber.StatusBadRequest)
		}
		_, acct, err := snapshot(c, a, userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load account", err)
		}
		if acct.ID != accountID {
			return common.ProblemDetailsJSON(c, "Account not found", domain.ErrAccountNotFound)
		}

		txs, err := a.Deps.Ledger.ListTransactions(c.Context(), accountID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load transactions", err)
		}
		rows := make([]TransactionResponse, 0, len(txs))
		for i := range txs {
			rows = append(rows, transactionResponse(&txs[i], accountID))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions", rows)
	}
}

// snapshot serves the session store's cached profile/account when it belongs
// to userID, falling back to a fresh load.
func snapshot(c *fiber.Ctx, a *appkg.App, userID uuid.UUID) (*domain.Profile, *domain.Account, error) {
	if sess := a.Store.Session(); sess != nil && sess.UserID == userID {
		profile, acct := a.Store.Profile(), a.Store.Account()
		if profile != nil && acct != nil {
			return profile, acct, nil
		}
	}
	return a.Loader.Load(c.Context(), userID)
}

func accountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		ID:               a.ID.String(),
		AccountNumber:    a.AccountNumber,
		Balance:          a.Balance.StringFixed(2),
		FormattedBalance: money.FormatBRL(a.Balance),
		CreatedAt:        a.CreatedAt,
	}
}

func transactionResponse(tx *domain.Transaction, accountID uuid.UUID) TransactionResponse {
	direction := "outgoing"
	if tx.Incoming(accountID) {
		direction = "incoming"
	}
	return TransactionResponse{
		ID:              tx.ID.String(),
		Amount:          tx.Amount.StringFixed(2),
		FormattedAmount: money.FormatBRL(tx.Amount),
		Description:     tx.Description,
		Status:          string(tx.Status),
		Direction:       direction,
		SenderName:      tx.SenderName,
		CreatedAt:       tx.CreatedAt,
	}
}
