package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/task-tracker/config"
	domain "github.com/example/task-tracker/domain/account"
	"github.com/example/task-tracker/pkg/logger"
	"github.com/example/task-tracker/store"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"go.uber.org/zap"
)

// AuthModule provides authentication services.
type AuthModule struct {
	storeCfg config.StoreConfig
	jwtCfg   JWTConfig
	store    *store.Handle
	service  *AuthService
	log      *zap.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule.
func NewModule(storeCfg config.StoreConfig, jwtCfg config.JWTConfig, log *zap.Logger) *AuthModule {
	return &AuthModule{
		storeCfg: storeCfg,
		jwtCfg: JWTConfig{
			SecretKey: jwtCfg.Secret,
			Issuer:    jwtCfg.Issuer,
		},
		log: logger.OrNop(log).Named("auth"),
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start opens the credential store and wires the service.
func (m *AuthModule) Start(ctx context.Context) error {
	h, err := store.Open(ctx, m.storeCfg, &domain.Account{})
	if err != nil {
		return err
	}
	m.store = h

	var repo UserRepository
	if h.SQL != nil {
		repo = NewGormUserRepository(h.SQL)
	} else {
		repo, err = NewMongoUserRepository(ctx, h.Mongo)
		if err != nil {
			return err
		}
	}

	m.service = NewAuthService(repo, NewPasswordHasher(), NewJWTManager(m.jwtCfg))

	m.log.Info("module started", zap.String("driver", h.Driver()))
	return nil
}

// Stop closes the credential store.
func (m *AuthModule) Stop(ctx context.Context) error {
	if m.store != nil {
		if err := m.store.Close(ctx); err != nil {
			m.log.Warn("failed to close store", zap.Error(err))
		}
	}
	m.log.Info("module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(ctx context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "store not initialized",
		}
	}

	if err := m.store.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("store ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": m.store.Driver(),
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "register", json.Unmarshal, json.Marshal, m.handleRegister,
	); err != nil {
		return fmt.Errorf("failed to register register service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "login", json.Unmarshal, json.Marshal, m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "validate-token", json.Unmarshal, json.Marshal, m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "find-account", json.Unmarshal, json.Marshal, m.handleFindAccount,
	); err != nil {
		return fmt.Errorf("failed to register find-account service: %w", err)
	}

	m.log.Info("registered services", zap.Strings("services", []string{"register", "login", "validate-token", "find-account"}))
	return nil
}

func (m *AuthModule) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (RegisterResponse, error) {
	account, err := m.service.Register(ctx, req.Email, req.Password)
	if err != nil {
		return RegisterResponse{}, err
	}

	m.log.Info("account registered", zap.String("email", account.Email))
	return RegisterResponse{
		Email:     account.Email,
		CreatedAt: account.CreatedAt,
	}, nil
}

func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (LoginResponse, error) {
	session, err := m.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		return LoginResponse{}, err
	}

	return LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		Email:     session.Email,
	}, nil
}

// handleValidateToken reports invalid tokens in the response rather than as an error.
func (m *AuthModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	assertion, err := m.service.ValidateToken(ctx, req.Token)
	if err != nil {
		return ValidateTokenResponse{
			Valid: false,
			Error: err.Error(),
		}, nil
	}

	return ValidateTokenResponse{
		Valid:     true,
		Subject:   assertion.Subject,
		IssuedAt:  assertion.IssuedAt,
		ExpiresAt: assertion.ExpiresAt,
	}, nil
}

// handleFindAccount reports a missing account with Found=false; only store failures are errors.
func (m *AuthModule) handleFindAccount(ctx context.Context, req FindAccountRequest, _ *mono.Msg) (FindAccountResponse, error) {
	account, err := m.service.FindAccount(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return FindAccountResponse{Found: false}, nil
		}
		return FindAccountResponse{}, fmt.Errorf("failed to find user: %w", err)
	}

	return FindAccountResponse{
		Found:     true,
		Email:     account.Email,
		CreatedAt: account.CreatedAt,
	}, nil
}
