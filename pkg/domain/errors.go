package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across services.
var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrUserUnauthorized = errors.New("user unauthorized")
	ErrSelfTransfer     = errors.New("cannot transfer to the same account")
	// ErrDuplicateSubmission is returned when a transfer carrying an
	// idempotency key already in flight or just completed is submitted again.
	ErrDuplicateSubmission = errors.New("duplicate transfer submission")
)

// FieldError describes a single failed validation guard, scoped to the input
// field it belongs to.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates pre-network validation failures. It never results
// from a remote call.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// RemoteError means the ledger procedure rejected the operation, e.g.
// insufficient balance or a constraint violation. The remote-provided message
// is preserved verbatim for the user.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// TransportError means the remote service was unreachable or returned a
// malformed response. It wraps the underlying driver error.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
