// Package auth orchestrates login, registration and logout over the identity
// provider. Registration also seeds the new user's bank account: a random
// 8-digit account number and the configured opening balance.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/contabank/contabank/pkg/config"
	"github.com/contabank/contabank/pkg/provider/identity"
	"github.com/contabank/contabank/pkg/repository"
	"github.com/shopspring/decimal"
)

// Service wraps the identity provider and the account seeding step.
type Service struct {
	provider identity.Provider
	accounts repository.AccountWriter
	cfg      *config.Account
	logger   *slog.Logger
}

// New creates a Service.
func New(
	provider identity.Provider,
	accounts repository.AccountWriter,
	cfg *config.Account,
	logger *slog.Logger,
) *Service {
	return &Service{provider: provider, accounts: accounts, cfg: cfg, logger: logger}
}

// Login authenticates and establishes the current session. The session store
// picks the result up through the provider's change notification.
func (s *Service) Login(ctx context.Context, email, password string) (*identity.Session, error) {
	log := s.logger.With("email", email)
	sess, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		log.Warn("login failed", "error", err)
		return nil, err
	}
	log.Info("login successful", "userID", sess.UserID)
	return sess, nil
}

// Register creates the identity with its profile name, then seeds the bank
// account. An account seeding failure fails the registration as a whole.
func (s *Service) Register(ctx context.Context, name, email, password string) (*identity.User, error) {
	log := s.logger.With("email", email)
	u, err := s.provider.SignUp(ctx, email, password, name)
	if err != nil {
		log.Warn("sign-up failed", "error", err)
		return nil, err
	}

	opening, err := decimal.NewFromString(s.cfg.OpeningBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid opening balance %q: %w", s.cfg.OpeningBalance, err)
	}
	if _, err := s.accounts.Create(ctx, repository.AccountCreate{
		UserID:        u.ID,
		AccountNumber: NewAccountNumber(),
		Balance:       opening,
	}); err != nil {
		log.Error("account seeding failed", "userID", u.ID, "error", err)
		return nil, fmt.Errorf("database error saving new user: %w", err)
	}
	log.Info("user registered", "userID", u.ID)
	return u, nil
}

// Logout tears down the current session.
func (s *Service) Logout(ctx context.Context) error {
	return s.provider.SignOut(ctx)
}

// NewAccountNumber returns a random 8-digit human-facing account number.
// Uniqueness is enforced by the accounts table constraint.
func NewAccountNumber() string {
	return fmt.Sprintf("%08d", 10000000+rand.IntN(90000000))
}
