// Package account provides the profile/account loader and the account refresh
// coordinator. Both read through the repository contracts; neither ever writes
// a balance.
package account

import (
	"context"
	"log/slog"

	"github.com/contabank/contabank/pkg/domain"
	"github.com/contabank/contabank/pkg/repository"
	"github.com/google/uuid"
)

// Loader resolves a user identity to exactly one profile and one account,
// most-recently-created row first when duplicates exist.
type Loader struct {
	profiles repository.ProfileReader
	accounts repository.AccountReader
	logger   *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(
	profiles repository.ProfileReader,
	accounts repository.AccountReader,
	logger *slog.Logger,
) *Loader {
	return &Loader{profiles: profiles, accounts: accounts, logger: logger}
}

// Load fetches the profile and the current account for userID. It fails with
// domain.ErrProfileNotFound / domain.ErrAccountNotFound when either query
// returns zero rows, and with a transport error on service failure. Both kinds
// surface identically to the caller.
func (l *Loader) Load(ctx context.Context, userID uuid.UUID) (*domain.Profile, *domain.Account, error) {
	log := l.logger.With("userID", userID)

	profile, err := l.profiles.GetLatestByUserID(ctx, userID)
	if err != nil {
		log.Error("profile lookup failed", "error", err)
		return nil, nil, err
	}
	account, err := l.accounts.GetLatestByUserID(ctx, userID)
	if err != nil {
		log.Error("account lookup failed", "error", err)
		return nil, nil, err
	}
	return profile, account, nil
}
