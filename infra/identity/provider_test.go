package identity_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	infraidentity "github.com/contabank/contabank/infra/identity"
	"github.com/contabank/contabank/pkg/config"
	"github.com/contabank/contabank/pkg/domain"
	"github.com/contabank/contabank/pkg/provider/identity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

func newMockProvider(t *testing.T) (*infraidentity.Provider, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	cfg := &config.Jwt{Secret: testSecret, Expiry: time.Hour}
	return infraidentity.New(gdb, cfg, slog.Default()), mock
}

func userRow(t *testing.T, id uuid.UUID, email, password string) *sqlmock.Rows {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return sqlmock.NewRows([]string{"id", "email", "hashed_password", "created_at"}).
		AddRow(id, email, string(hash), time.Now())
}

func TestSignIn_IssuesTokenAndNotifies(t *testing.T) {
	p, mock := newMockProvider(t)
	userID := uuid.New()

	var gotEvent identity.AuthEvent
	var gotSession *identity.Session
	unsubscribe := p.OnAuthStateChange(func(ev identity.AuthEvent, sess *identity.Session) {
		gotEvent = ev
		gotSession = sess
	})
	defer unsubscribe()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = .+`).
		WillReturnRows(userRow(t, userID, "ana@example.com", "senha123"))

	sess, err := p.SignIn(context.Background(), "ana@example.com", "senha123")
	require.NoError(t, err)
	assert.Equal(t, userID, sess.UserID)
	assert.Equal(t, "ana@example.com", sess.Email)
	assert.Equal(t, identity.EventSignedIn, gotEvent)
	require.NotNil(t, gotSession)
	assert.Equal(t, sess.Token, gotSession.Token)

	// The token must carry the user id claim the middleware reads back.
	parsed, err := jwt.Parse(sess.Token, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, userID.String(), claims["user_id"])
}

func TestSignIn_WrongPassword(t *testing.T) {
	p, mock := newMockProvider(t)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(userRow(t, uuid.New(), "ana@example.com", "senha123"))

	_, err := p.SignIn(context.Background(), "ana@example.com", "errada")
	assert.ErrorIs(t, err, domain.ErrUserUnauthorized)

	sess, err := p.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestSignIn_UnknownEmail(t *testing.T) {
	p, mock := newMockProvider(t)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "hashed_password", "created_at"}))

	_, err := p.SignIn(context.Background(), "ninguem@example.com", "senha123")
	assert.ErrorIs(t, err, domain.ErrUserUnauthorized)
}

func TestSignUp_CreatesUserAndProfileInOneTransaction(t *testing.T) {
	p, mock := newMockProvider(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "users"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "profiles"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	u, err := p.SignUp(context.Background(), "ana@example.com", "senha123", "Ana")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignUp_RollsBackOnProfileFailure(t *testing.T) {
	p, mock := newMockProvider(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "users"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "profiles"`).WillReturnError(gorm.ErrInvalidData)
	mock.ExpectRollback()

	_, err := p.SignUp(context.Background(), "ana@example.com", "senha123", "Ana")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignOut_ClearsSessionAndNotifies(t *testing.T) {
	p, mock := newMockProvider(t)
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(userRow(t, uuid.New(), "ana@example.com", "senha123"))

	_, err := p.SignIn(context.Background(), "ana@example.com", "senha123")
	require.NoError(t, err)

	var events []identity.AuthEvent
	unsubscribe := p.OnAuthStateChange(func(ev identity.AuthEvent, sess *identity.Session) {
		events = append(events, ev)
		assert.Nil(t, sess)
	})
	defer unsubscribe()

	require.NoError(t, p.SignOut(context.Background()))
	assert.Equal(t, []identity.AuthEvent{identity.EventSignedOut}, events)

	sess, err := p.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestGetSession_ExpiredSessionIsNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	// Negative expiry makes the issued session already stale.
	p := infraidentity.New(gdb, &config.Jwt{Secret: testSecret, Expiry: -time.Minute}, slog.Default())
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(userRow(t, uuid.New(), "ana@example.com", "senha123"))

	_, err = p.SignIn(context.Background(), "ana@example.com", "senha123")
	require.NoError(t, err)

	sess, err := p.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestUpdatePassword_RequiresCurrentPassword(t *testing.T) {
	p, mock := newMockProvider(t)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = .+`).
		WillReturnRows(userRow(t, userID, "ana@example.com", "senha123"))

	err := p.UpdatePassword(context.Background(), userID, "errada", "nova123")
	assert.ErrorIs(t, err, domain.ErrUserUnauthorized)
}

func TestUpdateEmail_UnknownUser(t *testing.T) {
	p, mock := newMockProvider(t)

	mock.ExpectExec(`UPDATE "users" SET "email"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := p.UpdateEmail(context.Background(), uuid.New(), "nova@example.com")
	assert.ErrorIs(t, err, domain.ErrUserUnauthorized)
}

func TestOnAuthStateChange_UnsubscribeStopsNotifications(t *testing.T) {
	p, mock := newMockProvider(t)

	calls := 0
	unsubscribe := p.OnAuthStateChange(func(identity.AuthEvent, *identity.Session) { calls++ })
	unsubscribe()

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(userRow(t, uuid.New(), "ana@example.com", "senha123"))
	_, err := p.SignIn(context.Background(), "ana@example.com", "senha123")
	require.NoError(t, err)
	assert.Zero(t, calls)
}
