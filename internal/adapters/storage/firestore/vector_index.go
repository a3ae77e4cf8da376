package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/PabloGalante/planora/internal/domain"
)

const distanceField = "vector_distance"

type embeddingDoc struct {
	UserID     string             `firestore:"user_id"`
	EntityType string             `firestore:"entity_type"`
	EntityID   string             `firestore:"entity_id"`
	Content    string             `firestore:"content"`
	Vector     firestore.Vector32 `firestore:"vector"`
	UpdatedAt  time.Time          `firestore:"updated_at"`
}

// VectorIndex uses Firestore's native nearest-neighbour search. The
// collection needs a vector index on "vector" filtered by "user_id".
type VectorIndex struct {
	col *firestore.CollectionRef
}

func (v *VectorIndex) Upsert(ctx context.Context, e domain.IndexEntry) error {
	doc := embeddingDoc{
		UserID:     string(e.UserID),
		EntityType: string(e.EntityType),
		EntityID:   e.EntityID,
		Content:    e.Content,
		Vector:     firestore.Vector32(e.Vector),
		UpdatedAt:  e.UpdatedAt,
	}
	if _, err := v.col.Doc(string(e.EntityType)+"_"+e.EntityID).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore Upsert embedding: %w", err)
	}
	return nil
}

// Search ranks by cosine distance; similarity is reported as 1 - distance.
func (v *VectorIndex) Search(ctx context.Context, userID domain.UserID, query []float32, threshold float64, topK int) ([]domain.Match, error) {
	if topK <= 0 {
		return nil, nil
	}

	vq := v.col.Where("user_id", "==", string(userID)).
		FindNearest("vector", firestore.Vector32(query), topK, firestore.DistanceMeasureCosine, &firestore.FindNearestOptions{
			DistanceThreshold:   firestore.Ptr(1 - threshold),
			DistanceResultField: distanceField,
		})

	iter := vq.Documents(ctx)
	defer iter.Stop()

	var out []domain.Match
	for {
		snap, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				break
			}
			return nil, fmt.Errorf("firestore Search: %w", err)
		}

		var doc embeddingDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode embeddingDoc: %w", err)
		}
		dist, err := snap.DataAt(distanceField)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", distanceField, err)
		}
		d, _ := dist.(float64)

		out = append(out, domain.Match{
			EntityType: domain.EntityType(doc.EntityType),
			EntityID:   doc.EntityID,
			Content:    doc.Content,
			Similarity: 1 - d,
		})
	}
	return domain.RankMatches(out, threshold, topK), nil
}
