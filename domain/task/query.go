package task

import (
	"errors"
	"fmt"
)

// Storage field names shared by every backend.
const (
	FieldID        = "id"
	FieldCreatedBy = "created_by"
	FieldDone      = "done"
	FieldCategory  = "category"
)

var (
	// ErrMissingOwner is returned when a query is built without an owner.
	ErrMissingOwner = errors.New("task query requires an owner")
	// ErrInvalidDone is returned when the done filter is not "true" or "false".
	ErrInvalidDone = errors.New("done must be true or false")
)

// Query selects tasks belonging to Owner, optionally narrowed by Done and Category.
// A Query can only be obtained through OwnedBy or ParseFilter, so it always
// carries an owner.
type Query struct {
	owner    string
	done     *bool
	category *Category
}

// OwnedBy returns a query matching every task of owner.
func OwnedBy(owner string) (Query, error) {
	if owner == "" {
		return Query{}, ErrMissingOwner
	}
	return Query{owner: owner}, nil
}

// ParseFilter builds a query from the raw done and category filter values.
// An empty value means the filter was not supplied.
func ParseFilter(owner, done, category string) (Query, error) {
	q, err := OwnedBy(owner)
	if err != nil {
		return Query{}, err
	}

	switch done {
	case "":
	case "true":
		q = q.WithDone(true)
	case "false":
		q = q.WithDone(false)
	default:
		return Query{}, fmt.Errorf("%w: %q", ErrInvalidDone, done)
	}

	if category != "" {
		c, err := ParseCategory(category)
		if err != nil {
			return Query{}, err
		}
		q = q.WithCategory(c)
	}

	return q, nil
}

// WithDone narrows the query to tasks whose done flag equals done.
func (q Query) WithDone(done bool) Query {
	q.done = &done
	return q
}

// WithCategory narrows the query to tasks of category c.
func (q Query) WithCategory(c Category) Query {
	q.category = &c
	return q
}

// Owner returns the owner the query is scoped to.
func (q Query) Owner() string {
	return q.owner
}

// Done returns the done filter, if any.
func (q Query) Done() (bool, bool) {
	if q.done == nil {
		return false, false
	}
	return *q.done, true
}

// Category returns the category filter, if any.
func (q Query) Category() (Category, bool) {
	if q.category == nil {
		return "", false
	}
	return *q.category, true
}

// Predicate returns the equality conditions of the query keyed by storage field name.
// The owner condition is always present.
func (q Query) Predicate() map[string]any {
	predicate := map[string]any{FieldCreatedBy: q.owner}
	if q.done != nil {
		predicate[FieldDone] = *q.done
	}
	if q.category != nil {
		predicate[FieldCategory] = string(*q.category)
	}
	return predicate
}

// Scope addresses one task of one owner. Mutations are always issued against a Scope,
// so a task owned by someone else is never matched.
type Scope struct {
	owner string
	id    string
}

// NewScope validates id and owner and returns the scope addressing them.
func NewScope(owner, id string) (Scope, error) {
	if owner == "" {
		return Scope{}, ErrMissingOwner
	}
	if !ValidID(id) {
		return Scope{}, ErrInvalidID
	}
	return Scope{owner: owner, id: id}, nil
}

// Owner returns the scoped owner.
func (s Scope) Owner() string {
	return s.owner
}

// ID returns the scoped task identifier.
func (s Scope) ID() string {
	return s.id
}

// Predicate returns the id and owner conditions keyed by storage field name.
func (s Scope) Predicate() map[string]any {
	return map[string]any{
		FieldID:        s.id,
		FieldCreatedBy: s.owner,
	}
}
