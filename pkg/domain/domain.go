// Package domain holds the core entities and the error taxonomy shared by the
// services and the HTTP layer.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Profile is the user-facing identity: the display name shown in greetings
// and as the sender name on transfers. The name is immutable after creation.
type Profile struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Account is a bank account. The balance is authoritative on the server side;
// the cached copy can be stale between a transfer and the following refresh.
type Account struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	AccountNumber string
	Balance       decimal.Decimal
	CreatedAt     time.Time
}

// TransactionStatus is the ledger-assigned state of a transaction row.
type TransactionStatus string

// TransactionCompleted is the only status the transfer procedure writes today.
const TransactionCompleted TransactionStatus = "completed"

// Transaction is one statement row as returned by the ledger, already joined
// with the sender's display name. Source or destination may be nil for
// system-originated entries such as the opening credit.
type Transaction struct {
	ID                   uuid.UUID
	SourceAccountID      *uuid.UUID
	DestinationAccountID *uuid.UUID
	Amount               decimal.Decimal
	Description          string
	Status               TransactionStatus
	CreatedAt            time.Time
	SenderName           string
}

// Incoming reports whether the transaction credits the given account.
func (t *Transaction) Incoming(accountID uuid.UUID) bool {
	return t.DestinationAccountID != nil && *t.DestinationAccountID == accountID
}
