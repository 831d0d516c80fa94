// Package ledger defines the typed wrapper over the two remote ledger
// procedures. The remote side owns atomicity: debiting the source, crediting
// the destination and appending the transaction row happen in one opaque
// operation. The client performs no retry; remote errors pass through
// verbatim.
package ledger

import (
	"context"

	"github.com/contabank/contabank/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferCommand is one submission to the remote transfer procedure.
// IdempotencyKey is generated client-side per submission; the current remote
// procedure does not consume it, but it is carried on the command so the
// workflow can suppress duplicate submissions and a future ledger can dedupe.
type TransferCommand struct {
	SourceAccountID      uuid.UUID
	DestinationAccountID uuid.UUID
	Amount               decimal.Decimal
	Description          string
	IdempotencyKey       uuid.UUID
}

// Client wraps the remote procedures. It owns no state.
type Client interface {
	// ResolveAccountByNumber maps a human-entered account number to the
	// account it identifies. Returns domain.ErrAccountNotFound when absent.
	ResolveAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)

	// Transfer invokes the remote transfer_funds procedure. A rejection is a
	// *domain.RemoteError with the remote message intact; an unreachable
	// service is a *domain.TransportError.
	Transfer(ctx context.Context, cmd TransferCommand) error

	// ListTransactions invokes get_transactions_with_sender_name. Order is
	// server-determined (reverse-chronological) and preserved as returned.
	ListTransactions(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error)
}
