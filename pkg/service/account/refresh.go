package account

import (
	"context"
	"log/slog"

	"github.com/contabank/contabank/pkg/domain"
	"github.com/contabank/contabank/pkg/repository"
	"github.com/contabank/contabank/pkg/session"
	"github.com/google/uuid"
)

// Refresher re-synchronizes the cached account with the authoritative balance
// after any operation that may have changed it: a successful transfer, or an
// explicit user-triggered refresh.
type Refresher struct {
	accounts repository.AccountReader
	store    *session.Store
	logger   *slog.Logger
}

// NewRefresher creates a Refresher writing into the given session store.
func NewRefresher(
	accounts repository.AccountReader,
	store *session.Store,
	logger *slog.Logger,
) *Refresher {
	return &Refresher{accounts: accounts, store: store, logger: logger}
}

// Refresh performs a full re-fetch of the most-recently-created account row
// for the user and replaces the cached account wholesale. On error the
// previous cached account is left unchanged and the error is propagated; there
// is no silent retry. A session change racing the re-fetch causes the result
// to be discarded rather than clobbering newer state.
func (r *Refresher) Refresh(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	log := r.logger.With("userID", userID)
	gen := r.store.Generation()

	account, err := r.accounts.GetLatestByUserID(ctx, userID)
	if err != nil {
		log.Error("account refresh failed", "error", err)
		return nil, err
	}
	if !r.store.ReplaceAccount(gen, account) {
		log.Debug("refresh result discarded: session changed mid-flight")
	}
	log.Info("account refreshed", "accountID", account.ID, "balance", account.Balance)
	return account, nil
}
