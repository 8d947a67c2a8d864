package auth

import (
	"errors"
	"fmt"
	"time"

	domain "github.com/example/task-tracker/domain/account"
	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed lifetime of an identity token.
const TokenTTL = time.Hour

// ErrInvalidToken is returned when the token signature or structure is invalid.
var ErrInvalidToken = errors.New("invalid token")

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	SecretKey string
	Issuer    string
}

// JWTClaims represents the claims carried by an identity token.
// UserID duplicates the subject under the claim name existing clients decode.
type JWTClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies identity tokens.
type JWTManager struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTManager creates a new JWTManager with the given configuration.
func NewJWTManager(config JWTConfig) *JWTManager {
	return &JWTManager{
		config: config,
		now:    time.Now,
	}
}

// Issue signs a token asserting email, valid for TokenTTL from now.
// It returns the token and its expiry as encoded in the token.
func (m *JWTManager) Issue(email string) (string, time.Time, error) {
	if email == "" {
		return "", time.Time{}, fmt.Errorf("cannot issue token without subject")
	}

	now := m.now()
	claims := JWTClaims{
		UserID: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.config.SecretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Verify checks the token signature and structure and returns its assertion.
// Expiry is deliberately not enforced here: callers compare ExpiresAt themselves,
// which keeps an expired token distinguishable from a forged one.
func (m *JWTManager) Verify(tokenString string) (*domain.Assertion, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (any, error) {
		return []byte(m.config.SecretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing subject or expiry", ErrInvalidToken)
	}
	if claims.UserID != "" && claims.UserID != claims.Subject {
		return nil, fmt.Errorf("%w: subject mismatch", ErrInvalidToken)
	}
	if m.config.Issuer != "" && claims.Issuer != m.config.Issuer {
		return nil, fmt.Errorf("%w: unexpected issuer", ErrInvalidToken)
	}

	assertion := &domain.Assertion{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		assertion.IssuedAt = claims.IssuedAt.Time
	}
	return assertion, nil
}
