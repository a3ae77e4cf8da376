package memory

import (
	"context"
	"sync"

	"github.com/PabloGalante/planora/internal/domain"
)

type indexKey struct {
	entityType domain.EntityType
	entityID   string
}

// VectorIndex is an in-memory domain.VectorIndex doing a linear cosine scan.
type VectorIndex struct {
	mu      sync.RWMutex
	entries map[indexKey]domain.IndexEntry
}

func NewVectorIndex() *VectorIndex {
	return &VectorIndex{entries: make(map[indexKey]domain.IndexEntry)}
}

// Upsert replaces any previous entry for the same (EntityType, EntityID).
func (v *VectorIndex) Upsert(_ context.Context, e domain.IndexEntry) error {
	e.Vector = append([]float32(nil), e.Vector...)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries[indexKey{e.EntityType, e.EntityID}] = e
	return nil
}

func (v *VectorIndex) Search(_ context.Context, userID domain.UserID, query []float32, threshold float64, topK int) ([]domain.Match, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var matches []domain.Match
	for _, e := range v.entries {
		if e.UserID != userID {
			continue
		}
		matches = append(matches, domain.Match{
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Content:    e.Content,
			Similarity: domain.CosineSimilarity(query, e.Vector),
		})
	}
	return domain.RankMatches(matches, threshold, topK), nil
}

// Len reports the number of indexed entries.
func (v *VectorIndex) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.entries)
}
