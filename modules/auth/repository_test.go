package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/example/task-tracker/domain/account"
	"github.com/example/task-tracker/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := store.OpenSQLite(":memory:", false)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// One connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&domain.Account{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func TestGormUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo := NewGormUserRepository(setupTestDB(t))

	account := &domain.Account{
		Email:        "alice@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	}

	if err := repo.Create(ctx, account); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	duplicate := &domain.Account{Email: "alice@example.com", PasswordHash: "other"}
	if err := repo.Create(ctx, duplicate); !errors.Is(err, ErrUserExists) {
		t.Errorf("Create() duplicate error = %v, want ErrUserExists", err)
	}
}

func TestGormUserRepository_FindByEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewGormUserRepository(setupTestDB(t))

	if err := repo.Create(ctx, &domain.Account{Email: "alice@example.com", PasswordHash: "hash"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("existing account", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("FindByEmail() error = %v", err)
		}
		if found.PasswordHash != "hash" {
			t.Errorf("PasswordHash = %q, want %q", found.PasswordHash, "hash")
		}
	})

	t.Run("exact match is case sensitive", func(t *testing.T) {
		_, err := repo.FindByEmail(ctx, "Alice@example.com")
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("FindByEmail() error = %v, want ErrUserNotFound", err)
		}
	})

	t.Run("missing account", func(t *testing.T) {
		_, err := repo.FindByEmail(ctx, "nobody@example.com")
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("FindByEmail() error = %v, want ErrUserNotFound", err)
		}
	})
}

func TestGormUserRepository_EmailExists(t *testing.T) {
	ctx := context.Background()
	repo := NewGormUserRepository(setupTestDB(t))

	exists, err := repo.EmailExists(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("EmailExists() error = %v", err)
	}
	if exists {
		t.Error("EmailExists() = true before registration")
	}

	if err := repo.Create(ctx, &domain.Account{Email: "alice@example.com", PasswordHash: "hash"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	exists, err = repo.EmailExists(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("EmailExists() error = %v", err)
	}
	if !exists {
		t.Error("EmailExists() = false after registration")
	}
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}
