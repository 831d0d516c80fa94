// Package user implements profile management: e-mail and password changes.
// The profile name is immutable after creation and has no update operation.
package user

import (
	"context"
	"log/slog"
	"net/mail"

	"github.com/contabank/contabank/pkg/domain"
	"github.com/contabank/contabank/pkg/provider/identity"
	"github.com/google/uuid"
)

const minPasswordLength = 6

// Service wraps the credential-update operations of the identity provider.
type Service struct {
	provider identity.Provider
	logger   *slog.Logger
}

// New creates a Service.
func New(provider identity.Provider, logger *slog.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

// ChangeEmail updates the identity's e-mail address. The new address must be
// well-formed and different from the current one.
func (s *Service) ChangeEmail(ctx context.Context, userID uuid.UUID, current, next string) error {
	var fields []domain.FieldError
	if next == "" {
		fields = append(fields, domain.FieldError{Field: "email", Message: "email is required"})
	} else if _, err := mail.ParseAddress(next); err != nil {
		fields = append(fields, domain.FieldError{Field: "email", Message: "email is invalid"})
	} else if next == current {
		fields = append(fields, domain.FieldError{Field: "email", Message: "new email must differ from the current one"})
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}

	if err := s.provider.UpdateEmail(ctx, userID, next); err != nil {
		s.logger.Error("email update failed", "userID", userID, "error", err)
		return err
	}
	s.logger.Info("email updated", "userID", userID)
	return nil
}

// ChangePassword verifies the current password and installs the new one.
// Guards: all fields required, minimum length, confirmation must match.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next, confirm string) error {
	var fields []domain.FieldError
	if current == "" {
		fields = append(fields, domain.FieldError{Field: "current_password", Message: "current password is required"})
	}
	switch {
	case next == "":
		fields = append(fields, domain.FieldError{Field: "new_password", Message: "new password is required"})
	case len(next) < minPasswordLength:
		fields = append(fields, domain.FieldError{Field: "new_password", Message: "password must be at least 6 characters"})
	}
	switch {
	case confirm == "":
		fields = append(fields, domain.FieldError{Field: "confirm_password", Message: "password confirmation is required"})
	case confirm != next:
		fields = append(fields, domain.FieldError{Field: "confirm_password", Message: "passwords do not match"})
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}

	if err := s.provider.UpdatePassword(ctx, userID, current, next); err != nil {
		s.logger.Warn("password update failed", "userID", userID, "error", err)
		return err
	}
	s.logger.Info("password updated", "userID", userID)
	return nil
}
