package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/PabloGalante/planora/internal/domain"
)

var errAlreadyExists = errors.New("record already exists")

// records is a user-scoped map of rows, kept in insertion order.
// T values are stored and returned as copies.
type records[T any] struct {
	mu       sync.RWMutex
	rows     map[string]T
	owners   map[string]domain.UserID
	byUserID map[domain.UserID][]string
}

func newRecords[T any]() *records[T] {
	return &records[T]{
		rows:     make(map[string]T),
		owners:   make(map[string]domain.UserID),
		byUserID: make(map[domain.UserID][]string),
	}
}

func (r *records[T]) create(id string, owner domain.UserID, row T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rows[id]; exists {
		return fmt.Errorf("%w: %s", errAlreadyExists, id)
	}
	r.rows[id] = row
	r.owners[id] = owner
	r.byUserID[owner] = append(r.byUserID[owner], id)
	return nil
}

func (r *records[T]) update(id string, owner domain.UserID, row T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if got, ok := r.owners[id]; !ok || got != owner {
		return domain.ErrNotFound
	}
	r.rows[id] = row
	return nil
}

// get returns ErrNotFound for missing ids and for rows owned by another user.
func (r *records[T]) get(id string, owner domain.UserID) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var zero T
	if got, ok := r.owners[id]; !ok || got != owner {
		return zero, domain.ErrNotFound
	}
	return r.rows[id], nil
}

// list returns the last `limit` rows for a user, oldest first.
// If limit <= 0, returns all.
func (r *records[T]) list(owner domain.UserID, limit int) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byUserID[owner]
	if limit <= 0 || limit > len(ids) {
		limit = len(ids)
	}

	out := make([]T, 0, limit)
	for _, id := range ids[len(ids)-limit:] {
		out = append(out, r.rows[id])
	}
	return out
}

func cloneTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	return append([]string(nil), tags...)
}
