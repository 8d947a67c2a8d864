package activity

import (
	"sync"
	"time"
)

// DefaultMaxEntries is the number of entries kept per owner.
const DefaultMaxEntries = 50

// Entry types.
const (
	TypeTaskCreated   = "task_created"
	TypeTaskUpdated   = "task_updated"
	TypeTaskCompleted = "task_completed"
	TypeTaskDeleted   = "task_deleted"
)

// Entry is one item of an owner's activity feed.
type Entry struct {
	TaskID    string    `json:"taskId"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Feed keeps a bounded, newest-first list of entries per owner.
type Feed struct {
	mu         sync.RWMutex
	entries    map[string][]Entry
	maxEntries int
}

// NewFeed creates a feed with the default limit.
func NewFeed() *Feed {
	return NewFeedWithLimit(DefaultMaxEntries)
}

// NewFeedWithLimit creates a feed keeping at most maxEntries per owner.
func NewFeedWithLimit(maxEntries int) *Feed {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Feed{
		entries:    make(map[string][]Entry),
		maxEntries: maxEntries,
	}
}

// Record prepends e to owner's feed, dropping the oldest entry past the limit.
func (f *Feed) Record(owner string, e Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()

	current := f.entries[owner]
	next := make([]Entry, 0, min(len(current)+1, f.maxEntries))
	next = append(next, e)
	for _, old := range current {
		if len(next) == f.maxEntries {
			break
		}
		next = append(next, old)
	}
	f.entries[owner] = next
}

// List returns a copy of owner's feed, newest first.
func (f *Feed) List(owner string) []Entry {
	f.mu.RLock()
	defer f.mu.RUnlock()

	result := make([]Entry, len(f.entries[owner]))
	copy(result, f.entries[owner])
	return result
}

// Owners returns how many owners have at least one entry.
func (f *Feed) Owners() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.entries)
}
