package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/PabloGalante/planora/internal/domain"
)

// VectorIndex keeps embeddings as JSON arrays and ranks them in Go.
type VectorIndex struct {
	db *sql.DB
}

func (v *VectorIndex) Upsert(ctx context.Context, e domain.IndexEntry) error {
	vec, err := json.Marshal(e.Vector)
	if err != nil {
		return fmt.Errorf("encode embedding: %w", err)
	}
	_, err = v.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO embeddings (entity_type, entity_id, user_id, content, embedding, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(e.EntityType), e.EntityID, string(e.UserID), e.Content, string(vec), e.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("upsert embedding: %w", err)
	}
	return nil
}

func (v *VectorIndex) Search(ctx context.Context, userID domain.UserID, query []float32, threshold float64, topK int) ([]domain.Match, error) {
	rows, err := v.db.QueryContext(ctx,
		`SELECT entity_type, entity_id, content, embedding FROM embeddings WHERE user_id = ?`, string(userID))
	if err != nil {
		return nil, fmt.Errorf("search embeddings: %w", err)
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		var (
			typ, id, content, raw string
			vec                   []float32
		)
		if err := rows.Scan(&typ, &id, &content, &raw); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &vec); err != nil {
			return nil, fmt.Errorf("decode embedding %s/%s: %w", typ, id, err)
		}
		matches = append(matches, domain.Match{
			EntityType: domain.EntityType(typ),
			EntityID:   id,
			Content:    content,
			Similarity: domain.CosineSimilarity(query, vec),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search embeddings: %w", err)
	}

	return domain.RankMatches(matches, threshold, topK), nil
}
