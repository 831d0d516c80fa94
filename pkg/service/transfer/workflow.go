// Package transfer implements the funds-transfer workflow: a client-driven
// saga against the external ledger. One run is strictly sequential:
// validate, resolve the destination, submit, then exactly one account refresh
// on success. The workflow performs no retry of its own; atomicity of the
// money movement belongs to the remote procedure.
package transfer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/contabank/contabank/pkg/domain"
	"github.com/contabank/contabank/pkg/ledger"
	"github.com/contabank/contabank/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State is the workflow position. Every run terminates in StateSucceeded or
// StateFailed; a failed run returns control to the pre-submission state so the
// user can resubmit with corrected input.
type State string

const (
	StateIdle                 State = "idle"
	StateValidating           State = "validating"
	StateResolvingDestination State = "resolving_destination"
	StateSubmitting           State = "submitting"
	StateSucceeded            State = "succeeded"
	StateFailed               State = "failed"
)

// completedKeyTTL bounds how long a finished idempotency key keeps suppressing
// duplicates.
const completedKeyTTL = time.Hour

// Request is one user submission. Amount arrives as entered; parsing is part
// of validation. IdempotencyKey may be zero, in which case the workflow
// generates one for the run.
type Request struct {
	SourceAccountID          uuid.UUID
	DestinationAccountNumber string
	Amount                   string
	Description              string
	IdempotencyKey           uuid.UUID
}

// Result reports the terminal state of a run. On success RefreshedAccount
// carries the post-transfer balance when the follow-up refresh worked;
// RefreshErr is set when it did not. Refresh failure never turns a succeeded
// transfer into a failure.
type Result struct {
	State            State
	Amount           decimal.Decimal
	IdempotencyKey   uuid.UUID
	RefreshedAccount *domain.Account
	RefreshErr       error
}

// AccountRefresher is the slice of the refresh coordinator the workflow needs.
type AccountRefresher interface {
	Refresh(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
}

// Workflow validates a transfer request, resolves the destination account
// number to an account id, invokes the ledger client, and on success triggers
// exactly one account refresh.
type Workflow struct {
	ledger    ledger.Client
	refresher AccountRefresher
	logger    *slog.Logger

	mu        sync.Mutex
	inflight  map[uuid.UUID]struct{}
	completed map[uuid.UUID]time.Time
}

// New creates a Workflow.
func New(ledgerClient ledger.Client, refresher AccountRefresher, logger *slog.Logger) *Workflow {
	return &Workflow{
		ledger:    ledgerClient,
		refresher: refresher,
		logger:    logger,
		inflight:  make(map[uuid.UUID]struct{}),
		completed: make(map[uuid.UUID]time.Time),
	}
}

// Run executes one submission for the given user. Validation failures return
// a *domain.ValidationError before any network call; destination and remote
// failures pass the underlying error through. The returned Result always
// reflects the terminal state reached.
func (w *Workflow) Run(ctx context.Context, userID uuid.UUID, req Request) (*Result, error) {
	log := w.logger.With(
		"userID", userID,
		"sourceAccountID", req.SourceAccountID,
		"destination", req.DestinationAccountNumber,
	)

	// Validating: local guards only, zero network calls on failure.
	amount, verr := validate(req)
	if verr != nil {
		log.Info("transfer rejected by validation", "error", verr)
		return &Result{State: StateFailed}, verr
	}

	key := req.IdempotencyKey
	if key == uuid.Nil {
		key = uuid.New()
	}
	if err := w.claimKey(key); err != nil {
		log.Warn("duplicate transfer submission suppressed", "key", key)
		return &Result{State: StateFailed, IdempotencyKey: key}, err
	}

	// ResolvingDestination.
	dest, err := w.ledger.ResolveAccountByNumber(ctx, req.DestinationAccountNumber)
	if err != nil {
		w.releaseKey(key)
		log.Info("destination resolution failed", "error", err)
		return &Result{State: StateFailed, IdempotencyKey: key}, err
	}
	if dest.ID == req.SourceAccountID {
		w.releaseKey(key)
		log.Info("self transfer rejected")
		return &Result{State: StateFailed, IdempotencyKey: key}, domain.ErrSelfTransfer
	}

	// Submitting: at most one transfer call per run, no retry.
	cmd := ledger.TransferCommand{
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: dest.ID,
		Amount:               amount,
		Description:          req.Description,
		IdempotencyKey:       key,
	}
	if err := w.ledger.Transfer(ctx, cmd); err != nil {
		// The key is released so the user may resubmit after correcting input.
		w.releaseKey(key)
		log.Error("transfer rejected by ledger", "error", err)
		return &Result{State: StateFailed, IdempotencyKey: key}, err
	}
	w.completeKey(key)
	log.Info("transfer accepted by ledger", "amount", amount, "key", key)

	// Succeeded: exactly one refresh before signaling completion. A refresh
	// failure is reported alongside success, never instead of it.
	result := &Result{State: StateSucceeded, Amount: amount, IdempotencyKey: key}
	account, refreshErr := w.refresher.Refresh(ctx, userID)
	if refreshErr != nil {
		log.Error("post-transfer refresh failed", "error", refreshErr)
		result.RefreshErr = refreshErr
	} else {
		result.RefreshedAccount = account
	}
	return result, nil
}

// validate runs the pre-network guards and parses the amount.
func validate(req Request) (decimal.Decimal, error) {
	var fields []domain.FieldError
	if req.DestinationAccountNumber == "" {
		fields = append(fields, domain.FieldError{
			Field:   "destination_account_number",
			Message: "destination account number is required",
		})
	}
	amount, err := money.ParsePositiveAmount(req.Amount)
	if err != nil {
		fields = append(fields, domain.FieldError{Field: "amount", Message: err.Error()})
	}
	if len(fields) > 0 {
		return decimal.Zero, &domain.ValidationError{Fields: fields}
	}
	return amount, nil
}

func (w *Workflow) claimKey(key uuid.UUID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.inflight[key]; ok {
		return domain.ErrDuplicateSubmission
	}
	if done, ok := w.completed[key]; ok {
		if time.Since(done) < completedKeyTTL {
			return domain.ErrDuplicateSubmission
		}
		delete(w.completed, key)
	}
	w.inflight[key] = struct{}{}
	return nil
}

func (w *Workflow) releaseKey(key uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inflight, key)
}

func (w *Workflow) completeKey(key uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inflight, key)
	now := time.Now()
	for k, done := range w.completed {
		if now.Sub(done) >= completedKeyTTL {
			delete(w.completed, k)
		}
	}
	w.completed[key] = now
}
