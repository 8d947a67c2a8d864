package auth

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/example/task-tracker/domain/account"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const usersCollection = "users"

// MongoUserRepository stores accounts in the users collection, unique by email.
type MongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository creates the repository and ensures the unique email index.
func NewMongoUserRepository(ctx context.Context, db *mongo.Database) (*MongoUserRepository, error) {
	coll := db.Collection(usersCollection)

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create users email index: %w", err)
	}

	return &MongoUserRepository{coll: coll}, nil
}

// Create inserts a new account.
func (r *MongoUserRepository) Create(ctx context.Context, account *domain.Account) error {
	if _, err := r.coll.InsertOne(ctx, account); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUserExists
		}
		return err
	}
	return nil
}

// FindByEmail finds an account by exact email.
func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var account domain.Account
	err := r.coll.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &account, nil
}

// EmailExists checks if an account with the given email exists.
func (r *MongoUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.D{{Key: "email", Value: email}}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
