// Package ledger implements the ledger-client contract against the relational
// store's stored procedures. The procedures own atomicity; this client only
// marshals calls and maps driver errors onto the domain taxonomy.
package ledger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/contabank/contabank/infra/repository/model"
	"github.com/contabank/contabank/pkg/domain"
	"github.com/contabank/contabank/pkg/ledger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type client struct {
	db     *gorm.DB
	logger *slog.Logger
}

// New creates a ledger client on the given *gorm.DB.
func New(db *gorm.DB, logger *slog.Logger) ledger.Client {
	return &client{db: db, logger: logger}
}

// ResolveAccountByNumber implements ledger.Client.
func (c *client) ResolveAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	var acct model.Account
	err := c.db.WithContext(ctx).First(&acct, "account_number = ?", accountNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, &domain.TransportError{Op: "accounts.select", Err: err}
	}
	return mapAccount(&acct), nil
}

// Transfer implements ledger.Client. The remote procedure atomically debits
// the source, credits the destination and appends the transaction row; its
// rejection message is passed through verbatim. No retry.
func (c *client) Transfer(ctx context.Context, cmd ledger.TransferCommand) error {
	err := c.db.WithContext(ctx).Exec(
		"SELECT transfer_funds(?, ?, ?, ?)",
		cmd.SourceAccountID,
		cmd.DestinationAccountID,
		cmd.Amount,
		cmd.Description,
	).Error
	if err != nil {
		c.logger.Warn("transfer_funds rejected",
			"sourceAccountID", cmd.SourceAccountID,
			"destinationAccountID", cmd.DestinationAccountID,
			"key", cmd.IdempotencyKey,
			"error", err,
		)
		return mapProcError("ledger.transfer_funds", err)
	}
	return nil
}

// ListTransactions implements ledger.Client. Server order (assumed
// reverse-chronological) is preserved as returned.
func (c *client) ListTransactions(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error) {
	var rows []model.Transaction
	err := c.db.WithContext(ctx).
		Raw("SELECT * FROM get_transactions_with_sender_name(?)", accountID).
		Scan(&rows).Error
	if err != nil {
		return nil, mapProcError("ledger.get_transactions_with_sender_name", err)
	}
	txs := make([]domain.Transaction, 0, len(rows))
	for i := range rows {
		txs = append(txs, mapTransaction(&rows[i]))
	}
	return txs, nil
}

// mapProcError classifies a procedure failure: an error raised inside the
// procedure (insufficient balance, constraint violation) arrives as a
// *pgconn.PgError and is a RemoteError carrying the server message verbatim.
// Everything else never came from the procedure, so it is a TransportError.
func mapProcError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &domain.RemoteError{Message: pgErr.Message}
	}
	return &domain.TransportError{Op: op, Err: err}
}

func mapAccount(acct *model.Account) *domain.Account {
	return &domain.Account{
		ID:            acct.ID,
		UserID:        acct.UserID,
		AccountNumber: acct.AccountNumber,
		Balance:       acct.Balance,
		CreatedAt:     acct.CreatedAt,
	}
}

func mapTransaction(tx *model.Transaction) domain.Transaction {
	return domain.Transaction{
		ID:                   tx.ID,
		SourceAccountID:      tx.SourceAccountID,
		DestinationAccountID: tx.DestinationAccountID,
		Amount:               tx.Amount,
		Description:          tx.Description,
		Status:               domain.TransactionStatus(tx.Status),
		CreatedAt:            tx.CreatedAt,
		SenderName:           tx.SenderName,
	}
}
