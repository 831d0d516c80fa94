// Package account implements the profile/account read contracts plus the
// registration-time account insert on GORM.
package account

import (
	"context"
	"errors"

	"github.com/contabank/contabank/infra/repository/model"
	"github.com/contabank/contabank/pkg/domain"
	"github.com/contabank/contabank/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type profileRepository struct {
	db *gorm.DB
}

// NewProfileReader creates the profile read repository.
func NewProfileReader(db *gorm.DB) repository.ProfileReader {
	return &profileRepository{db: db}
}

// GetLatestByUserID implements repository.ProfileReader: most-recently-created
// row wins when duplicates exist.
func (r *profileRepository) GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	var p model.Profile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, &domain.TransportError{Op: "profiles.select", Err: err}
	}
	return &domain.Profile{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt}, nil
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccounts creates the account repository.
func NewAccounts(db *gorm.DB) repository.Accounts {
	return &accountRepository{db: db}
}

// GetLatestByUserID implements repository.AccountReader, same row-selection
// policy as the profile reader.
func (r *accountRepository) GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	var a model.Account
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, &domain.TransportError{Op: "accounts.select", Err: err}
	}
	return mapAccount(&a), nil
}

// Create implements repository.AccountWriter; used only to seed the account at
// registration.
func (r *accountRepository) Create(ctx context.Context, create repository.AccountCreate) (*domain.Account, error) {
	a := model.Account{
		ID:            uuid.New(),
		UserID:        create.UserID,
		AccountNumber: create.AccountNumber,
		Balance:       create.Balance,
	}
	if err := r.db.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, &domain.TransportError{Op: "accounts.insert", Err: err}
	}
	return mapAccount(&a), nil
}

func mapAccount(a *model.Account) *domain.Account {
	return &domain.Account{
		ID:            a.ID,
		UserID:        a.UserID,
		AccountNumber: a.AccountNumber,
		Balance:       a.Balance,
		CreatedAt:     a.CreatedAt,
	}
}
