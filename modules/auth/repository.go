package auth

import (
	"context"
	"errors"

	domain "github.com/example/task-tracker/domain/account"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound is returned when no account exists for an email.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when an account already exists for an email.
	ErrUserExists = errors.New("user already exists")
)

// UserRepository is the credential store: accounts keyed by email.
type UserRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// GormUserRepository handles account persistence using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{
		db: db,
	}
}

// Create inserts a new account.
func (r *GormUserRepository) Create(ctx context.Context, account *domain.Account) error {
	result := r.db.WithContext(ctx).Create(account)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrUserExists
		}
		return result.Error
	}
	return nil
}

// FindByEmail finds an account by exact email.
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var account domain.Account
	result := r.db.WithContext(ctx).First(&account, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &account, nil
}

// EmailExists checks if an account with the given email exists.
func (r *GormUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&domain.Account{}).Where("email = ?", email).Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}
