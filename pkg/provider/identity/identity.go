// Package identity defines the contract of the external identity provider:
// sign-up, sign-in, sign-out, the currently persisted session and session
// change notifications. The concrete implementation lives in infra/identity.
package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuthEvent classifies a session change notification.
type AuthEvent string

const (
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// Session is the authenticated identity context for the current user. A nil
// session in a change notification means signed out.
type Session struct {
	UserID    uuid.UUID
	Email     string
	Token     string
	ExpiresAt time.Time
}

// User is the provider-owned identity record.
type User struct {
	ID        uuid.UUID
	Email     string
	CreatedAt time.Time
}

// ChangeListener receives session change notifications. Listeners are invoked
// synchronously in registration order.
type ChangeListener func(event AuthEvent, session *Session)

// Provider is the identity/session collaborator. All blocking operations take
// a context; errors follow the domain taxonomy (ErrUserUnauthorized,
// TransportError).
type Provider interface {
	// SignUp creates a new identity with the given profile name.
	SignUp(ctx context.Context, email, password, name string) (*User, error)

	// SignIn authenticates and establishes the current session.
	SignIn(ctx context.Context, email, password string) (*Session, error)

	// SignOut tears down the current session.
	SignOut(ctx context.Context) error

	// GetSession returns the currently persisted session, or nil when signed
	// out.
	GetSession(ctx context.Context) (*Session, error)

	// OnAuthStateChange registers a listener for sign-in/sign-out/refresh
	// events and returns an unsubscribe function.
	OnAuthStateChange(fn ChangeListener) (unsubscribe func())

	// UpdateEmail changes the identity's e-mail address.
	UpdateEmail(ctx context.Context, userID uuid.UUID, newEmail string) error

	// UpdatePassword changes the password after verifying the current one.
	UpdatePassword(ctx context.Context, userID uuid.UUID, current, next string) error
}
