package indexing

import (
	"strings"

	"github.com/PabloGalante/planora/internal/domain"
)

// TaskJob builds the indexing job for a task: "title description tags...".
func TaskJob(t *domain.Task) domain.IndexJob {
	return domain.IndexJob{
		UserID:     t.UserID,
		EntityType: domain.EntityTask,
		EntityID:   t.ID,
		Content:    joinText(append([]string{t.Title, t.Description}, t.Tags...)),
	}
}

// NoteJob builds the indexing job for a note: "title content tags...".
func NoteJob(n *domain.Note) domain.IndexJob {
	return domain.IndexJob{
		UserID:     n.UserID,
		EntityType: domain.EntityNote,
		EntityID:   n.ID,
		Content:    joinText(append([]string{n.Title, n.Content}, n.Tags...)),
	}
}

func joinText(parts []string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
