package auth

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	domain "github.com/example/task-tracker/domain/account"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// setupTestMongo connects to MONGO_TEST_URI (default localhost) and skips when unreachable.
func setupTestMongo(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetServerSelectionTimeout(time.Second))
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}

	ctx := context.Background()
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		t.Skipf("MongoDB not available at %s: %v", uri, err)
	}

	db := client.Database("task_tracker_test_" + bson.NewObjectID().Hex())
	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

func TestMongoUserRepository(t *testing.T) {
	ctx := context.Background()
	repo, err := NewMongoUserRepository(ctx, setupTestMongo(t))
	if err != nil {
		t.Fatalf("NewMongoUserRepository() error = %v", err)
	}

	account := &domain.Account{Email: "alice@example.com", PasswordHash: "hash", CreatedAt: time.Now()}
	if err := repo.Create(ctx, account); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Create(ctx, &domain.Account{Email: "alice@example.com"}); !errors.Is(err, ErrUserExists) {
		t.Errorf("Create() duplicate error = %v, want ErrUserExists", err)
	}

	found, err := repo.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if found.PasswordHash != "hash" {
		t.Errorf("PasswordHash = %q, want %q", found.PasswordHash, "hash")
	}

	if _, err := repo.FindByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("FindByEmail() error = %v, want ErrUserNotFound", err)
	}

	exists, err := repo.EmailExists(ctx, "alice@example.com")
	if err != nil || !exists {
		t.Errorf("EmailExists() = %v, %v; want true, nil", exists, err)
	}
}
