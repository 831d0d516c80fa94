// Package repository declares the read/write contracts over the relational
// store tables this client touches directly (profiles, accounts). The ledger
// procedures have their own contract in pkg/ledger.
package repository

import (
	"context"

	"github.com/contabank/contabank/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountCreate seeds a new account at registration time.
type AccountCreate struct {
	UserID        uuid.UUID
	AccountNumber string
	Balance       decimal.Decimal
}

// ProfileReader resolves a user id to its profile. When duplicate rows exist
// the most-recently-created one wins (order by created_at desc, limit 1).
type ProfileReader interface {
	GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
}

// AccountReader resolves a user id to its current account, most-recent row
// first, same policy as ProfileReader.
type AccountReader interface {
	GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
}

// AccountWriter creates the seeded account during registration. Balances are
// never written through this interface afterwards; only the remote ledger
// procedure mutates them.
type AccountWriter interface {
	Create(ctx context.Context, create AccountCreate) (*domain.Account, error)
}

// Accounts bundles the account-side contracts.
type Accounts interface {
	AccountReader
	AccountWriter
}
