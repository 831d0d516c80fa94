// Package model holds the GORM table models shared by the repository and
// provider implementations.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is an identity record. Credentials live here, never in the domain.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email          string    `gorm:"uniqueIndex;not null"`
	HashedPassword string    `gorm:"not null"`
	CreatedAt      time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string { return "users" }

// Profile is the user-facing profile row, one per identity.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Name      string    `gorm:"not null"`
	CreatedAt time.Time
}

// TableName specifies the table name for the Profile model.
func (Profile) TableName() string { return "profiles" }

// Account is a bank account row. The balance column is mutated only by the
// transfer_funds procedure.
type Account struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	AccountNumber string          `gorm:"uniqueIndex;not null"`
	Balance       decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CreatedAt     time.Time
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string { return "accounts" }

// Transaction mirrors the rows returned by get_transactions_with_sender_name.
// Rows are appended by the transfer procedure and never updated.
type Transaction struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SourceAccountID      *uuid.UUID      `gorm:"type:uuid"`
	DestinationAccountID *uuid.UUID      `gorm:"type:uuid"`
	Amount               decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Description          string
	Status               string
	CreatedAt            time.Time
	SenderName           string `gorm:"->"` // derived by the remote procedure
}

// TableName specifies the table name for the Transaction model.
func (Transaction) TableName() string { return "transactions" }
