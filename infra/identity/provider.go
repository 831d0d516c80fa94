// Package identity implements the identity-provider contract on the
// relational store: bcrypt credentials, HS256 session tokens, and in-process
// session change notifications.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/contabank/contabank/infra/repository/model"
	"github.com/contabank/contabank/pkg/config"
	"github.com/contabank/contabank/pkg/domain"
	"github.com/contabank/contabank/pkg/provider/identity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 14

// dummyHash keeps the password comparison running even when the email is
// unknown, so lookup misses are not distinguishable by timing.
const dummyHash = "$2a$14$7zFqzDbD3RrlkMTczbXG9OWZ0FLOXjIxXzSZ.QZxkVXjXcx7QZQiC"

// Provider is the GORM-backed identity provider. It owns the currently
// persisted session and notifies registered listeners on every change.
type Provider struct {
	db     *gorm.DB
	cfg    *config.Jwt
	logger *slog.Logger

	mu        sync.Mutex
	current   *identity.Session
	listeners map[int]identity.ChangeListener
	nextID    int
}

var _ identity.Provider = (*Provider)(nil)

// New creates a Provider.
func New(db *gorm.DB, cfg *config.Jwt, logger *slog.Logger) *Provider {
	return &Provider{
		db:        db,
		cfg:       cfg,
		logger:    logger,
		listeners: make(map[int]identity.ChangeListener),
	}
}

// SignUp creates the identity and its profile row in one transaction.
func (p *Provider) SignUp(ctx context.Context, email, password, name string) (*identity.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}
	u := model.User{
		ID:             uuid.New(),
		Email:          email,
		HashedPassword: string(hash),
	}
	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&u).Error; err != nil {
			return err
		}
		return tx.Create(&model.Profile{
			ID:     uuid.New(),
			UserID: u.ID,
			Name:   name,
		}).Error
	})
	if err != nil {
		p.logger.Warn("sign-up failed", "email", email, "error", err)
		return nil, fmt.Errorf("sign-up failed: %w", err)
	}
	p.logger.Info("identity created", "userID", u.ID)
	return &identity.User{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}, nil
}

// SignIn verifies the credentials and establishes the current session.
// Unknown emails still pay the bcrypt comparison cost.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	var u model.User
	err := p.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return nil, domain.ErrUserUnauthorized
	}
	if err != nil {
		return nil, &domain.TransportError{Op: "identity.signin", Err: err}
	}
	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)) != nil {
		return nil, domain.ErrUserUnauthorized
	}

	expiresAt := time.Now().Add(p.cfg.Expiry)
	token, err := p.generateToken(&u, expiresAt)
	if err != nil {
		return nil, err
	}
	sess := &identity.Session{
		UserID:    u.ID,
		Email:     u.Email,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	p.setSession(sess, identity.EventSignedIn)
	p.logger.Info("signed in", "userID", u.ID)
	return sess, nil
}

// SignOut clears the current session and notifies listeners.
func (p *Provider) SignOut(ctx context.Context) error {
	p.setSession(nil, identity.EventSignedOut)
	return nil
}

// GetSession returns a copy of the currently persisted session, nil when
// signed out or expired.
func (p *Provider) GetSession(ctx context.Context) (*identity.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || time.Now().After(p.current.ExpiresAt) {
		return nil, nil
	}
	cp := *p.current
	return &cp, nil
}

// OnAuthStateChange registers a change listener; the returned function
// unsubscribes it.
func (p *Provider) OnAuthStateChange(fn identity.ChangeListener) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// UpdateEmail changes the stored e-mail address.
func (p *Provider) UpdateEmail(ctx context.Context, userID uuid.UUID, newEmail string) error {
	res := p.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("email", newEmail)
	if res.Error != nil {
		return &domain.TransportError{Op: "identity.update_email", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserUnauthorized
	}
	return nil
}

// UpdatePassword verifies the current password before installing the new one.
func (p *Provider) UpdatePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	var u model.User
	err := p.db.WithContext(ctx).First(&u, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrUserUnauthorized
	}
	if err != nil {
		return &domain.TransportError{Op: "identity.update_password", Err: err}
	}
	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(current)) != nil {
		return domain.ErrUserUnauthorized
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcryptCost)
	if err != nil {
		return err
	}
	if err := p.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("hashed_password", string(hash)).Error; err != nil {
		return &domain.TransportError{Op: "identity.update_password", Err: err}
	}
	return nil
}

func (p *Provider) generateToken(u *model.User, expiresAt time.Time) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["user_id"] = u.ID.String()
	claims["email"] = u.Email
	claims["exp"] = expiresAt.Unix()
	signed, err := token.SignedString([]byte(p.cfg.Secret))
	if err != nil {
		p.logger.Error("token signing failed", "userID", u.ID, "error", err)
		return "", err
	}
	return signed, nil
}

// setSession swaps the current session and notifies listeners synchronously,
// outside the lock, in registration order.
func (p *Provider) setSession(sess *identity.Session, ev identity.AuthEvent) {
	p.mu.Lock()
	p.current = sess
	fns := make([]identity.ChangeListener, 0, len(p.listeners))
	// Map iteration order is random; notify in registration order.
	for i := 0; i < p.nextID; i++ {
		if fn, ok := p.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(ev, sess)
	}
}
