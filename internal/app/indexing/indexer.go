// Package indexing embeds user content and writes it to the vector index,
// detached from request handling.
package indexing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PabloGalante/planora/internal/domain"
	"github.com/PabloGalante/planora/internal/observability"
)

// Handler processes one job. Queues call it from their workers.
type Handler func(ctx context.Context, job domain.IndexJob) error

// Indexer turns an IndexJob into an embedding upsert.
type Indexer struct {
	embedder domain.Embedder
	index    domain.VectorIndex
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewIndexer(embedder domain.Embedder, index domain.VectorIndex, metrics *observability.Metrics) *Indexer {
	return &Indexer{
		embedder: embedder,
		index:    index,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Index embeds job.Content and upserts it under (EntityType, EntityID).
// Blank content is skipped. Safe to run more than once for the same job.
func (i *Indexer) Index(ctx context.Context, job domain.IndexJob) error {
	log := observability.LoggerFromContext(ctx).With(
		"entity_type", job.EntityType,
		"entity_id", job.EntityID,
	)

	if strings.TrimSpace(job.Content) == "" {
		log.Debug("index job skipped: empty content")
		i.metrics.ObserveIndexJob("skipped")
		return nil
	}

	vec, err := i.embedder.Embed(ctx, job.Content)
	if err != nil {
		i.metrics.ObserveIndexJob("failed")
		return fmt.Errorf("embed %s %s: %w", job.EntityType, job.EntityID, err)
	}

	err = i.index.Upsert(ctx, domain.IndexEntry{
		UserID:     job.UserID,
		EntityType: job.EntityType,
		EntityID:   job.EntityID,
		Content:    job.Content,
		Vector:     vec,
		UpdatedAt:  i.now(),
	})
	if err != nil {
		i.metrics.ObserveIndexJob("failed")
		return fmt.Errorf("upsert %s %s: %w", job.EntityType, job.EntityID, err)
	}

	i.metrics.ObserveIndexJob("ok")
	log.Debug("indexed entity", "dims", len(vec))
	return nil
}
