// Package testutils assembles the full HTTP app on in-memory fakes of the
// identity provider, the repositories and the ledger, so handler tests
// exercise real routing, middleware and services without a database.
package testutils

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/contabank/contabank/pkg/app"
	"github.com/contabank/contabank/pkg/config"
	"github.com/contabank/contabank/pkg/domain"
	"github.com/contabank/contabank/pkg/ledger"
	"github.com/contabank/contabank/pkg/provider/identity"
	"github.com/contabank/contabank/pkg/repository"
	"github.com/contabank/contabank/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

const TestSecret = "test-secret"

type fakeUser struct {
	id       uuid.UUID
	email    string
	password string
}

type state struct {
	mu sync.Mutex

	usersByEmail map[string]*fakeUser
	usersByID    map[uuid.UUID]*fakeUser
	profiles     map[uuid.UUID]*domain.Profile // by user id
	accounts     map[uuid.UUID]*domain.Account // by user id
	byNumber     map[string]*domain.Account
	transactions map[uuid.UUID][]domain.Transaction // by account id, newest first

	session   *identity.Session
	listeners map[int]identity.ChangeListener
	nextID    int
}

// Backend is the shared in-memory world behind all fake contracts.
type Backend struct {
	s *state

	// TransferErr, when set, makes every ledger transfer fail with it.
	TransferErr error
	// ResolveErr, when set, makes destination resolution fail with it.
	ResolveErr error
}

// NewBackend creates an empty in-memory backend.
func NewBackend() *Backend {
	return &Backend{s: &state{
		usersByEmail: make(map[string]*fakeUser),
		usersByID:    make(map[uuid.UUID]*fakeUser),
		profiles:     make(map[uuid.UUID]*domain.Profile),
		accounts:     make(map[uuid.UUID]*domain.Account),
		byNumber:     make(map[string]*domain.Account),
		transactions: make(map[uuid.UUID][]domain.Transaction),
		listeners:    make(map[int]identity.ChangeListener),
	}}
}

// Identity returns the identity-provider fake.
func (b *Backend) Identity() identity.Provider { return (*fakeProvider)(b) }

// Profiles returns the profile reader fake.
func (b *Backend) Profiles() repository.ProfileReader { return (*fakeProfiles)(b) }

// Accounts returns the accounts repository fake.
func (b *Backend) Accounts() repository.Accounts { return (*fakeAccounts)(b) }

// Ledger returns the ledger client fake.
func (b *Backend) Ledger() ledger.Client { return (*fakeLedger)(b) }

// Account returns the stored account for a user, nil if absent.
func (b *Backend) Account(userID uuid.UUID) *domain.Account {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if a, ok := b.s.accounts[userID]; ok {
		cp := *a
		return &cp
	}
	return nil
}

type fakeProvider Backend

func (p *fakeProvider) SignUp(ctx context.Context, email, password, name string) (*identity.User, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if _, exists := p.s.usersByEmail[email]; exists {
		return nil, &domain.RemoteError{Message: "email already registered"}
	}
	u := &fakeUser{id: uuid.New(), email: email, password: password}
	p.s.usersByEmail[email] = u
	p.s.usersByID[u.id] = u
	p.s.profiles[u.id] = &domain.Profile{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
	return &identity.User{ID: u.id, Email: email, CreatedAt: time.Now()}, nil
}

func (p *fakeProvider) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	p.s.mu.Lock()
	u, ok := p.s.usersByEmail[email]
	if !ok || u.password != password {
		p.s.mu.Unlock()
		return nil, domain.ErrUserUnauthorized
	}
	expiresAt := time.Now().Add(time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.id.String(),
		"email":   u.email,
		"exp":     expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(TestSecret))
	if err != nil {
		p.s.mu.Unlock()
		return nil, err
	}
	sess := &identity.Session{UserID: u.id, Email: u.email, Token: signed, ExpiresAt: expiresAt}
	p.s.session = sess
	fns := listeners(p.s)
	p.s.mu.Unlock()
	for _, fn := range fns {
		fn(identity.EventSignedIn, sess)
	}
	return sess, nil
}

func (p *fakeProvider) SignOut(ctx context.Context) error {
	p.s.mu.Lock()
	p.s.session = nil
	fns := listeners(p.s)
	p.s.mu.Unlock()
	for _, fn := range fns {
		fn(identity.EventSignedOut, nil)
	}
	return nil
}

func (p *fakeProvider) GetSession(ctx context.Context) (*identity.Session, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if p.s.session == nil {
		return nil, nil
	}
	cp := *p.s.session
	return &cp, nil
}

func (p *fakeProvider) OnAuthStateChange(fn identity.ChangeListener) func() {
	p.s.mu.Lock()
	id := p.s.nextID
	p.s.nextID++
	p.s.listeners[id] = fn
	p.s.mu.Unlock()
	return func() {
		p.s.mu.Lock()
		delete(p.s.listeners, id)
		p.s.mu.Unlock()
	}
}

func (p *fakeProvider) UpdateEmail(ctx context.Context, userID uuid.UUID, newEmail string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	u, ok := p.s.usersByID[userID]
	if !ok {
		return domain.ErrUserUnauthorized
	}
	delete(p.s.usersByEmail, u.email)
	u.email = newEmail
	p.s.usersByEmail[newEmail] = u
	return nil
}

func (p *fakeProvider) UpdatePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	u, ok := p.s.usersByID[userID]
	if !ok || u.password != current {
		return domain.ErrUserUnauthorized
	}
	u.password = next
	return nil
}

func listeners(s *state) []identity.ChangeListener {
	fns := make([]identity.ChangeListener, 0, len(s.listeners))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

type fakeProfiles Backend

func (f *fakeProfiles) GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if p, ok := f.s.profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrProfileNotFound
}

type fakeAccounts Backend

func (f *fakeAccounts) GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if a, ok := f.s.accounts[userID]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (f *fakeAccounts) Create(ctx context.Context, create repository.AccountCreate) (*domain.Account, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a := &domain.Account{
		ID:            uuid.New(),
		UserID:        create.UserID,
		AccountNumber: create.AccountNumber,
		Balance:       create.Balance,
		CreatedAt:     time.Now(),
	}
	f.s.accounts[create.UserID] = a
	f.s.byNumber[create.AccountNumber] = a
	cp := *a
	return &cp, nil
}

type fakeLedger Backend

func (f *fakeLedger) ResolveAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	if f.ResolveErr != nil {
		return nil, f.ResolveErr
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if a, ok := f.s.byNumber[accountNumber]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, domain.ErrAccountNotFound
}

// Transfer mimics the remote procedure: balance check, atomic double entry,
// appended transaction row.
func (f *fakeLedger) Transfer(ctx context.Context, cmd ledger.TransferCommand) error {
	if f.TransferErr != nil {
		return f.TransferErr
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var source, dest *domain.Account
	for _, a := range f.s.accounts {
		switch a.ID {
		case cmd.SourceAccountID:
			source = a
		case cmd.DestinationAccountID:
			dest = a
		}
	}
	if source == nil || dest == nil {
		return domain.ErrAccountNotFound
	}
	if source.Balance.LessThan(cmd.Amount) {
		return &domain.RemoteError{Message: "Insufficient balance"}
	}
	source.Balance = source.Balance.Sub(cmd.Amount)
	dest.Balance = dest.Balance.Add(cmd.Amount)

	senderName := ""
	if p, ok := f.s.profiles[source.UserID]; ok {
		senderName = p.Name
	}
	srcID, dstID := source.ID, dest.ID
	tx := domain.Transaction{
		ID:                   uuid.New(),
		SourceAccountID:      &srcID,
		DestinationAccountID: &dstID,
		Amount:               cmd.Amount,
		Description:          cmd.Description,
		Status:               domain.TransactionCompleted,
		CreatedAt:            time.Now(),
	}
	// sender_name is joined only onto the recipient's rows.
	incoming := tx
	incoming.SenderName = senderName
	f.s.transactions[srcID] = append([]domain.Transaction{tx}, f.s.transactions[srcID]...)
	f.s.transactions[dstID] = append([]domain.Transaction{incoming}, f.s.transactions[dstID]...)
	return nil
}

func (f *fakeLedger) ListTransactions(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return append([]domain.Transaction(nil), f.s.transactions[accountID]...), nil
}

// E2ETestSuite builds the whole app on a fresh backend for every test.
type E2ETestSuite struct {
	suite.Suite

	Backend     *Backend
	Application *app.App
	App         *fiber.App
	Cfg         *config.App
}

// SetupTest assembles a fresh app.
func (s *E2ETestSuite) SetupTest() {
	s.Backend = NewBackend()
	s.Cfg = &config.App{
		Env:       "test",
		Server:    &config.Server{Host: "localhost", Port: 3000},
		Log:       &config.Log{},
		DB:        &config.DB{},
		Auth:      &config.Auth{Jwt: &config.Jwt{Secret: TestSecret, Expiry: time.Hour}},
		RateLimit: &config.RateLimit{MaxRequests: 1000, Window: time.Minute},
		Account:   &config.Account{OpeningBalance: "1000"},
	}
	deps := &config.Deps{
		Identity: s.Backend.Identity(),
		Ledger:   s.Backend.Ledger(),
		Profiles: s.Backend.Profiles(),
		Accounts: s.Backend.Accounts(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:   s.Cfg,
	}
	s.Application = app.New(deps)
	s.Require().NoError(s.Application.Start(context.Background()))
	s.App = webapi.SetupApp(s.Application)
}

// TearDownTest stops the session store.
func (s *E2ETestSuite) TearDownTest() {
	s.Application.Stop()
}

// CreateTestUser registers a user and returns its id.
func (s *E2ETestSuite) CreateTestUser(name, email, password string) uuid.UUID {
	u, err := s.Application.Auth.Register(context.Background(), name, email, password)
	s.Require().NoError(err)
	return u.ID
}

// LoginTestUser signs the user in and returns the bearer token.
func (s *E2ETestSuite) LoginTestUser(email, password string) string {
	sess, err := s.Application.Auth.Login(context.Background(), email, password)
	s.Require().NoError(err)
	return sess.Token
}

// MakeRequest performs an HTTP request against the in-process app.
func (s *E2ETestSuite) MakeRequest(method, path, body, token string) *http.Response {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.App.Test(req, -1)
	s.Require().NoError(err)
	return resp
}
