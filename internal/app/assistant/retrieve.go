package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PabloGalante/planora/internal/domain"
)

const (
	contextHeading = "Relevant info found in the user's data:"
	snippetWords   = 5
)

// retrieval is the outcome of the semantic search stage. ok is false when
// the search did not run or failed.
type retrieval struct {
	ok           bool
	citations    []domain.Citation
	contextBlock string
}

// retrieve embeds the query and searches the user's index. Failures are
// logged and yield an empty result.
func (s *Service) retrieve(ctx context.Context, log *slog.Logger, userID domain.UserID, query string) retrieval {
	if strings.TrimSpace(query) == "" {
		return retrieval{}
	}
	defer s.stage(log, "retrieve")()

	ctx, cancel := context.WithTimeout(ctx, s.opts.RetrieveTimeout)
	defer cancel()

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		log.Warn("query embedding failed, continuing without context", "error", err)
		return retrieval{}
	}

	matches, err := s.index.Search(ctx, userID, vec, *s.opts.SimilarityThreshold, s.opts.TopK)
	if err != nil {
		log.Warn("vector search failed, continuing without context", "error", err)
		return retrieval{}
	}

	res := retrieval{ok: true, citations: make([]domain.Citation, 0, len(matches))}
	for _, m := range matches {
		res.citations = append(res.citations, domain.Citation{
			EntityID:   m.EntityID,
			EntityType: m.EntityType,
			Snippet:    snippet(m.Content),
			Similarity: clamp01(m.Similarity),
		})
	}
	res.contextBlock = contextBlock(matches)
	log.Info("retrieval done", "matches", len(matches))
	return res
}

func contextBlock(matches []domain.Match) string {
	if len(matches) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(contextHeading)
	for _, m := range matches {
		fmt.Fprintf(&b, "\n- [%s] %s (ID: %s)", strings.ToUpper(string(m.EntityType)), m.Content, m.EntityID)
	}
	return b.String()
}

// snippet is the first few words of content, always marked as truncated.
func snippet(content string) string {
	words := strings.Fields(content)
	if len(words) > snippetWords {
		words = words[:snippetWords]
	}
	return strings.Join(words, " ") + "..."
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
