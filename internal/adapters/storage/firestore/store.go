package firestore

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/planora/internal/domain"
)

type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store.
// Uses the project passed (PLANORA_FIRESTORE_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Repositories returns the per-kind repositories backed by this store.
func (s *Store) Repositories() domain.Repositories {
	return domain.Repositories{
		Tasks:    &TaskRepo{s: s},
		Notes:    &NoteRepo{s: s},
		Projects: &ProjectRepo{s: s},
		Habits:   &HabitRepo{s: s},
	}
}

// VectorIndex returns the embeddings collection as a domain.VectorIndex.
func (s *Store) VectorIndex() *VectorIndex {
	return &VectorIndex{col: s.client.Collection("embeddings")}
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) col(name string) *firestore.CollectionRef {
	return s.client.Collection(name)
}

// getOwned reads one document and hides it from anyone but its owner.
func getOwned[D any, T any](ctx context.Context, ref *firestore.DocumentRef, userID domain.UserID, owner func(*D) string, conv func(string, *D) *T) (*T, error) {
	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore get %s: %w", ref.Path, err)
	}

	var doc D
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore decode %s: %w", ref.Path, err)
	}
	if owner(&doc) != string(userID) {
		return nil, domain.ErrNotFound
	}
	return conv(snap.Ref.ID, &doc), nil
}

// listOwned returns the user's most recent documents, oldest first.
func listOwned[D any, T any](ctx context.Context, col *firestore.CollectionRef, userID domain.UserID, limit int, conv func(string, *D) *T) ([]*T, error) {
	q := col.Where("user_id", "==", string(userID)).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*T
	for {
		snap, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				break
			}
			return nil, fmt.Errorf("firestore list %s: %w", col.ID, err)
		}

		var doc D
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode %s doc: %w", col.ID, err)
		}
		out = append(out, conv(snap.Ref.ID, &doc))
	}

	slices.Reverse(out)
	return out, nil
}

// updateOwned overwrites a document after checking it belongs to userID.
func (s *Store) updateOwned(ctx context.Context, ref *firestore.DocumentRef, userID domain.UserID, doc any) error {
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return domain.ErrNotFound
			}
			return err
		}
		owner, err := snap.DataAt("user_id")
		if err != nil || owner != string(userID) {
			return domain.ErrNotFound
		}
		return tx.Set(ref, doc)
	})
}
