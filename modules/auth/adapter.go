package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	domain "github.com/example/task-tracker/domain/account"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthPort defines the interface for authentication operations.
// This is the port that other modules use to access auth functionality.
type AuthPort interface {
	Register(ctx context.Context, email, password string) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	ValidateToken(ctx context.Context, token string) (*domain.Assertion, error)
	FindAccount(ctx context.Context, email string) (*domain.Account, error)
}

// AuthAdapter implements AuthPort using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{
		container: container,
	}
}

// Register creates an account through the register service.
func (a *AuthAdapter) Register(ctx context.Context, email, password string) (*domain.Account, error) {
	req := RegisterRequest{Email: email, Password: password}
	var resp RegisterResponse

	if err := call(ctx, a.container, "register", &req, &resp); err != nil {
		return nil, err
	}

	return &domain.Account{
		Email:     resp.Email,
		CreatedAt: resp.CreatedAt,
	}, nil
}

// Login authenticates through the login service.
func (a *AuthAdapter) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	req := LoginRequest{Email: email, Password: password}
	var resp LoginResponse

	if err := call(ctx, a.container, "login", &req, &resp); err != nil {
		return nil, err
	}

	return &domain.Session{
		Token:     resp.Token,
		ExpiresAt: resp.ExpiresAt,
		Email:     resp.Email,
	}, nil
}

// ValidateToken verifies a token's signature and returns its assertion.
func (a *AuthAdapter) ValidateToken(ctx context.Context, token string) (*domain.Assertion, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse

	if err := call(ctx, a.container, "validate-token", &req, &resp); err != nil {
		return nil, err
	}

	if !resp.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, resp.Error)
	}

	return &domain.Assertion{
		Subject:   resp.Subject,
		IssuedAt:  resp.IssuedAt,
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

// FindAccount looks up an account; ErrUserNotFound when there is none.
func (a *AuthAdapter) FindAccount(ctx context.Context, email string) (*domain.Account, error) {
	req := FindAccountRequest{Email: email}
	var resp FindAccountResponse

	if err := call(ctx, a.container, "find-account", &req, &resp); err != nil {
		return nil, err
	}

	if !resp.Found {
		return nil, ErrUserNotFound
	}

	return &domain.Account{
		Email:     resp.Email,
		CreatedAt: resp.CreatedAt,
	}, nil
}

// call sends req to service and decodes the reply into resp.
func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return remoteError(service, err)
	}
	return nil
}

// knownErrors are the service errors callers branch on. Errors lose their identity
// when they cross the request-reply boundary, so they are recovered by message.
var knownErrors = []error{
	ErrInvalidCredentials,
	ErrUserExists,
	ErrInvalidEmail,
	ErrWeakPassword,
	ErrPasswordTooLong,
	ErrUserNotFound,
	ErrInvalidToken,
}

func remoteError(service string, err error) error {
	msg := err.Error()
	for _, known := range knownErrors {
		if strings.Contains(msg, known.Error()) {
			return known
		}
	}
	return fmt.Errorf("%s request failed: %w", service, err)
}
