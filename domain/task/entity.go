package task

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrInvalidID is returned when a task identifier is not a 24 character hex ObjectID.
var ErrInvalidID = errors.New("invalid task ID")

// ErrInvalidCategory is returned for a category outside the predefined set.
var ErrInvalidCategory = errors.New("invalid task category")

// Category classifies a task.
type Category string

// Predefined task categories.
const (
	CategoryWork          Category = "Work"
	CategoryPersonal      Category = "Personal"
	CategoryUrgent        Category = "Urgent"
	CategoryImportant     Category = "Important"
	CategoryLowPriority   Category = "Low Priority"
	CategoryRecurring     Category = "Recurring"
	CategoryLearning      Category = "Learning"
	CategoryHealth        Category = "Health"
	CategoryFinance       Category = "Finance"
	CategoryHousehold     Category = "Household"
	CategorySocial        Category = "Social"
	CategoryMiscellaneous Category = "Miscellaneous"
)

var categories = []Category{
	CategoryWork, CategoryPersonal, CategoryUrgent, CategoryImportant,
	CategoryLowPriority, CategoryRecurring, CategoryLearning, CategoryHealth,
	CategoryFinance, CategoryHousehold, CategorySocial, CategoryMiscellaneous,
}

// Categories returns the predefined categories in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether c is one of the predefined categories. Matching is case-sensitive.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory converts s into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

// Task is a to-do item owned by the account whose email is CreatedBy.
// JSON names follow the wire format clients already use.
type Task struct {
	ID          string    `gorm:"column:id;primaryKey;size:24" json:"_id"`
	CreatedBy   string    `gorm:"column:created_by;index;not null" json:"CREATED_BY"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"CREATED_AT"`
	Name        string    `gorm:"column:name;not null" json:"TASK_NAME"`
	Description string    `gorm:"column:description" json:"TASK_DESC"`
	DueAt       time.Time `gorm:"column:due_at" json:"TASK_TIME"`
	Done        bool      `gorm:"column:done;not null" json:"DONE"`
	Category    Category  `gorm:"column:category;size:32;index" json:"CATEGORY"`
}

// TableName returns the table name for Task.
func (Task) TableName() string {
	return "tasks"
}

// Fields holds the mutable part of a task, replaced wholesale by an update.
type Fields struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	DueAt       time.Time `json:"due_at"`
	Done        bool      `json:"done"`
	Category    Category  `json:"category"`
}

// Fields returns the mutable part of t.
func (t *Task) Fields() Fields {
	return Fields{
		Name:        t.Name,
		Description: t.Description,
		DueAt:       t.DueAt,
		Done:        t.Done,
		Category:    t.Category,
	}
}

// NewID returns a fresh task identifier.
func NewID() string {
	return bson.NewObjectID().Hex()
}

// ValidID reports whether id is a well-formed task identifier.
func ValidID(id string) bool {
	_, err := bson.ObjectIDFromHex(id)
	return err == nil
}

// InsertResult acknowledges a created task.
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// UpdateResult reports how many tasks an update or mark matched and changed.
type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteResult reports how many tasks a delete removed.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}
