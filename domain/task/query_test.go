package task

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "alice@example.com"

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name     string
		done     string
		category string
		want     map[string]any
	}{
		{
			name: "no filters is ownership only",
			want: map[string]any{FieldCreatedBy: owner},
		},
		{
			name:     "category only",
			category: "Work",
			want:     map[string]any{FieldCreatedBy: owner, FieldCategory: "Work"},
		},
		{
			name: "done only",
			done: "false",
			want: map[string]any{FieldCreatedBy: owner, FieldDone: false},
		},
		{
			name:     "both",
			done:     "true",
			category: "Low Priority",
			want:     map[string]any{FieldCreatedBy: owner, FieldDone: true, FieldCategory: "Low Priority"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseFilter(owner, tt.done, tt.category)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Predicate())
			assert.Equal(t, owner, q.Owner())
		})
	}
}

func TestParseFilter_Errors(t *testing.T) {
	tests := []struct {
		name     string
		owner    string
		done     string
		category string
		wantErr  error
	}{
		{name: "missing owner", owner: "", wantErr: ErrMissingOwner},
		{name: "done not boolean", owner: owner, done: "yes", wantErr: ErrInvalidDone},
		{name: "done uppercase", owner: owner, done: "TRUE", wantErr: ErrInvalidDone},
		{name: "unknown category", owner: owner, category: "Chores", wantErr: ErrInvalidCategory},
		{name: "category wrong case", owner: owner, category: "work", wantErr: ErrInvalidCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFilter(tt.owner, tt.done, tt.category)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestQuery_Accessors(t *testing.T) {
	q, err := OwnedBy(owner)
	require.NoError(t, err)

	_, ok := q.Done()
	assert.False(t, ok)
	_, ok = q.Category()
	assert.False(t, ok)

	q = q.WithDone(true).WithCategory(CategoryHealth)
	done, ok := q.Done()
	assert.True(t, ok)
	assert.True(t, done)
	c, ok := q.Category()
	assert.True(t, ok)
	assert.Equal(t, CategoryHealth, c)
}

func TestQuery_WithDoesNotMutateReceiver(t *testing.T) {
	base, err := OwnedBy(owner)
	require.NoError(t, err)

	_ = base.WithDone(true)
	assert.Equal(t, map[string]any{FieldCreatedBy: owner}, base.Predicate())
}

func TestNewScope(t *testing.T) {
	id := NewID()

	s, err := NewScope(owner, id)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{FieldID: id, FieldCreatedBy: owner}, s.Predicate())
	assert.Equal(t, id, s.ID())
	assert.Equal(t, owner, s.Owner())

	_, err = NewScope(owner, "not-an-id")
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = NewScope("", id)
	assert.ErrorIs(t, err, ErrMissingOwner)
}

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{id: NewID(), want: true},
		{id: "507f1f77bcf86cd799439011", want: true},
		{id: "507f1f77bcf86cd79943901", want: false},
		{id: "zzzzzzzzzzzzzzzzzzzzzzzz", want: false},
		{id: "", want: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidID(tt.id), "ValidID(%q)", tt.id)
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	assert.Len(t, Categories(), 12)

	_, err := ParseCategory("")
	assert.ErrorIs(t, err, ErrInvalidCategory)
}
