package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testJWTConfig() JWTConfig {
	return JWTConfig{
		SecretKey: "test-secret-key",
		Issuer:    "test-issuer",
	}
}

func TestJWTManager_IssueAndVerify(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	emails := []string{"alice@example.com", "bob+tasks@mail.example.com", "Carol@Example.com"}
	for _, email := range emails {
		t.Run(email, func(t *testing.T) {
			token, expiresAt, err := manager.Issue(email)
			if err != nil {
				t.Fatalf("Issue() error = %v", err)
			}
			if token == "" {
				t.Fatal("Issue() returned empty token")
			}

			assertion, err := manager.Verify(token)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if assertion.Subject != email {
				t.Errorf("Subject = %v, want %v", assertion.Subject, email)
			}
			if !assertion.ExpiresAt.Equal(expiresAt) {
				t.Errorf("ExpiresAt = %v, want %v", assertion.ExpiresAt, expiresAt)
			}
		})
	}
}

func TestJWTManager_TTLIsOneHour(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return fixed }

	token, expiresAt, err := manager.Issue("alice@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if !expiresAt.Equal(fixed.Add(time.Hour)) {
		t.Errorf("expiresAt = %v, want %v", expiresAt, fixed.Add(time.Hour))
	}

	assertion, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if got := assertion.ExpiresAt.Sub(assertion.IssuedAt); got != TokenTTL {
		t.Errorf("ExpiresAt - IssuedAt = %v, want %v", got, TokenTTL)
	}
}

func TestJWTManager_ExpiredTokenStillVerifies(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())
	manager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := manager.Issue("alice@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	assertion, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("Verify() should accept an authentic expired token, got %v", err)
	}
	if !assertion.Expired(time.Now()) {
		t.Errorf("assertion should be expired, ExpiresAt = %v", assertion.ExpiresAt)
	}
}

func TestJWTManager_InvalidToken(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "empty token",
			token: "",
		},
		{
			name:  "random string",
			token: "not.a.valid.token",
		},
		{
			name:  "malformed jwt",
			token: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.Verify(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestJWTManager_WrongSecretKey(t *testing.T) {
	other := testJWTConfig()
	other.SecretKey = "another-secret"

	token, _, err := NewJWTManager(other).Issue("alice@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = NewJWTManager(testJWTConfig()).Verify(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestJWTManager_TamperedPayload(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())
	token, _, err := manager.Issue("alice@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	forged, _, err := manager.Issue("mallory@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Splice mallory's claims onto alice's signature.
	parts := strings.Split(token, ".")
	forgedParts := strings.Split(forged, ".")
	spliced := parts[0] + "." + forgedParts[1] + "." + parts[2]

	if _, err := manager.Verify(spliced); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestJWTManager_RejectsOtherAlgorithms(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())
	claims := JWTClaims{
		UserID: "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			Subject:   "alice@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret-key"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	for name, token := range map[string]string{"HS512": hs512, "none": none} {
		t.Run(name, func(t *testing.T) {
			if _, err := manager.Verify(token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestJWTManager_StructuralChecks(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())
	sign := func(claims JWTClaims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-key"))
		if err != nil {
			t.Fatalf("SignedString() error = %v", err)
		}
		return token
	}
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		claims JWTClaims
	}{
		{
			name:   "missing subject",
			claims: JWTClaims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "test-issuer", ExpiresAt: exp}},
		},
		{
			name:   "missing expiry",
			claims: JWTClaims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "test-issuer", Subject: "a@example.com"}},
		},
		{
			name:   "wrong issuer",
			claims: JWTClaims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else", Subject: "a@example.com", ExpiresAt: exp}},
		},
		{
			name: "userId disagrees with subject",
			claims: JWTClaims{
				UserID:           "b@example.com",
				RegisteredClaims: jwt.RegisteredClaims{Issuer: "test-issuer", Subject: "a@example.com", ExpiresAt: exp},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := manager.Verify(sign(tt.claims)); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestJWTManager_IssueRequiresSubject(t *testing.T) {
	if _, _, err := NewJWTManager(testJWTConfig()).Issue(""); err == nil {
		t.Error("Issue() should fail without a subject")
	}
}
