package task

import (
	"context"
	"fmt"
	"time"

	domain "github.com/example/task-tracker/domain/task"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const tasksCollection = "tasks"

// taskDocument is the stored shape of a task; the id is a native ObjectID.
type taskDocument struct {
	ID          bson.ObjectID `bson:"_id"`
	CreatedBy   string        `bson:"created_by"`
	CreatedAt   time.Time     `bson:"created_at"`
	Name        string        `bson:"name"`
	Description string        `bson:"description"`
	DueAt       time.Time     `bson:"due_at"`
	Done        bool          `bson:"done"`
	Category    string        `bson:"category"`
}

func toDocument(t *domain.Task) (taskDocument, error) {
	id, err := bson.ObjectIDFromHex(t.ID)
	if err != nil {
		return taskDocument{}, domain.ErrInvalidID
	}
	return taskDocument{
		ID:          id,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		Name:        t.Name,
		Description: t.Description,
		DueAt:       t.DueAt,
		Done:        t.Done,
		Category:    string(t.Category),
	}, nil
}

func (d taskDocument) toTask() *domain.Task {
	return &domain.Task{
		ID:          d.ID.Hex(),
		CreatedBy:   d.CreatedBy,
		CreatedAt:   d.CreatedAt,
		Name:        d.Name,
		Description: d.Description,
		DueAt:       d.DueAt,
		Done:        d.Done,
		Category:    domain.Category(d.Category),
	}
}

// filter converts a predicate into a MongoDB filter, mapping the id field to _id.
func filter(predicate map[string]any) (bson.M, error) {
	f := bson.M{}
	for field, value := range predicate {
		if field != domain.FieldID {
			f[field] = value
			continue
		}
		hex, _ := value.(string)
		id, err := bson.ObjectIDFromHex(hex)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		f["_id"] = id
	}
	return f, nil
}

// MongoRepository stores tasks in the tasks collection.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository creates the repository and ensures the owner index.
func NewMongoRepository(ctx context.Context, db *mongo.Database) (*MongoRepository, error) {
	coll := db.Collection(tasksCollection)

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: domain.FieldCreatedBy, Value: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks owner index: %w", err)
	}

	return &MongoRepository{coll: coll}, nil
}

// Insert saves a new task.
func (r *MongoRepository) Insert(ctx context.Context, task *domain.Task) error {
	doc, err := toDocument(task)
	if err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// Find returns the tasks matching q in natural order.
func (r *MongoRepository) Find(ctx context.Context, q domain.Query) ([]*domain.Task, error) {
	f, err := filter(q.Predicate())
	if err != nil {
		return nil, err
	}

	cursor, err := r.coll.Find(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.toTask())
	}
	return tasks, nil
}

// Replace overwrites the mutable fields of the scoped task.
func (r *MongoRepository) Replace(ctx context.Context, scope domain.Scope, fields domain.Fields) (domain.UpdateResult, error) {
	return r.update(ctx, scope, bson.M{
		"name":               fields.Name,
		"description":        fields.Description,
		"due_at":             fields.DueAt,
		domain.FieldDone:     fields.Done,
		domain.FieldCategory: string(fields.Category),
	})
}

// MarkDone sets done on the scoped task.
func (r *MongoRepository) MarkDone(ctx context.Context, scope domain.Scope) (domain.UpdateResult, error) {
	return r.update(ctx, scope, bson.M{domain.FieldDone: true})
}

func (r *MongoRepository) update(ctx context.Context, scope domain.Scope, set bson.M) (domain.UpdateResult, error) {
	f, err := filter(scope.Predicate())
	if err != nil {
		return domain.UpdateResult{}, err
	}

	res, err := r.coll.UpdateOne(ctx, f, bson.M{"$set": set})
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("failed to update task: %w", err)
	}

	return domain.UpdateResult{
		Acknowledged:  res.Acknowledged,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}, nil
}

// Delete removes the scoped task.
func (r *MongoRepository) Delete(ctx context.Context, scope domain.Scope) (domain.DeleteResult, error) {
	f, err := filter(scope.Predicate())
	if err != nil {
		return domain.DeleteResult{}, err
	}

	res, err := r.coll.DeleteOne(ctx, f)
	if err != nil {
		return domain.DeleteResult{}, fmt.Errorf("failed to delete task: %w", err)
	}

	return domain.DeleteResult{
		Acknowledged: res.Acknowledged,
		DeletedCount: res.DeletedCount,
	}, nil
}
