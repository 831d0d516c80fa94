package user_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/contabank/contabank/pkg/domain"
	"github.com/contabank/contabank/pkg/provider/identity"
	usersvc "github.com/contabank/contabank/pkg/service/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	identity.Provider

	emailUpdates    int
	passwordUpdates int
	updateErr       error
}

func (f *fakeProvider) UpdateEmail(ctx context.Context, userID uuid.UUID, newEmail string) error {
	f.emailUpdates++
	return f.updateErr
}

func (f *fakeProvider) UpdatePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	f.passwordUpdates++
	return f.updateErr
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	names := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestChangeEmail_Success(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{}
	svc := usersvc.New(p, slog.Default())
	err := svc.ChangeEmail(context.Background(), uuid.New(), "old@example.com", "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, p.emailUpdates)
}

func TestChangeEmail_Guards(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{}
	svc := usersvc.New(p, slog.Default())
	tests := []struct {
		name string
		next string
	}{
		{"empty", ""},
		{"invalid", "not-an-email"},
		{"unchanged", "old@example.com"},
	}
	for _, tt := range tests {
		err := svc.ChangeEmail(context.Background(), uuid.New(), "old@example.com", tt.next)
		assert.Contains(t, fieldNames(t, err), "email", tt.name)
	}
	assert.Zero(t, p.emailUpdates)
}

func TestChangePassword_Success(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{}
	svc := usersvc.New(p, slog.Default())
	err := svc.ChangePassword(context.Background(), uuid.New(), "current1", "nextpass", "nextpass")
	require.NoError(t, err)
	assert.Equal(t, 1, p.passwordUpdates)
}

func TestChangePassword_Guards(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{}
	svc := usersvc.New(p, slog.Default())

	err := svc.ChangePassword(context.Background(), uuid.New(), "", "", "")
	assert.ElementsMatch(t,
		[]string{"current_password", "new_password", "confirm_password"},
		fieldNames(t, err),
	)

	err = svc.ChangePassword(context.Background(), uuid.New(), "current1", "short", "short")
	assert.Contains(t, fieldNames(t, err), "new_password")

	err = svc.ChangePassword(context.Background(), uuid.New(), "current1", "nextpass", "different")
	assert.Contains(t, fieldNames(t, err), "confirm_password")

	assert.Zero(t, p.passwordUpdates)
}

func TestChangePassword_WrongCurrentPassword(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{updateErr: domain.ErrUserUnauthorized}
	svc := usersvc.New(p, slog.Default())
	err := svc.ChangePassword(context.Background(), uuid.New(), "wrong", "nextpass", "nextpass")
	assert.ErrorIs(t, err, domain.ErrUserUnauthorized)
}
