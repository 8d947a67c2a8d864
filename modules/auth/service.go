package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	domain "github.com/example/task-tracker/domain/account"
)

const (
	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 6
	// MaxPasswordLength is bcrypt's input limit.
	MaxPasswordLength = 72
)

var (
	// ErrInvalidCredentials is returned when login credentials are invalid.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidEmail is returned when email format is invalid.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrWeakPassword is returned when password is too short.
	ErrWeakPassword = errors.New("password must be at least 6 characters")
	// ErrPasswordTooLong is returned when password exceeds bcrypt's 72-byte limit.
	ErrPasswordTooLong = errors.New("password must be at most 72 characters")
)

// AuthService handles registration, login and token verification.
type AuthService struct {
	repo   UserRepository
	hasher *PasswordHasher
	jwt    *JWTManager
	now    func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo UserRepository, hasher *PasswordHasher, jwt *JWTManager) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		jwt:    jwt,
		now:    time.Now,
	}
}

// Register creates a new account.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.Account, error) {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}

	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	if len(password) > MaxPasswordLength {
		return nil, ErrPasswordTooLong
	}

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &domain.Account{
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    s.now(),
	}

	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return account, nil
}

// Login verifies the credentials and issues an identity token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwt.Issue(account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &domain.Session{
		Token:     token,
		ExpiresAt: expiresAt,
		Email:     account.Email,
	}, nil
}

// ValidateToken verifies the token signature and returns its assertion.
// Expiry is left to the caller.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*domain.Assertion, error) {
	return s.jwt.Verify(token)
}

// FindAccount looks up an account by email.
func (s *AuthService) FindAccount(ctx context.Context, email string) (*domain.Account, error) {
	return s.repo.FindByEmail(ctx, email)
}
