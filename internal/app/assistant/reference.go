package assistant

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/PabloGalante/planora/internal/domain"
)

const referenceLimit = 50

type refItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// loadReference lists the identifiers the model may point at: projects,
// habits, and the user's recent tasks and notes. A failing repository
// contributes nothing.
func (s *Service) loadReference(ctx context.Context, log *slog.Logger, userID domain.UserID) string {
	defer s.stage(log, "reference")()

	var sections []string
	add := func(heading string, items []refItem) {
		if len(items) == 0 {
			return
		}
		b, err := json.Marshal(items)
		if err != nil {
			return
		}
		sections = append(sections, heading+": "+string(b))
	}

	if s.repos.Projects != nil {
		projects, err := s.repos.Projects.ListProjects(ctx, userID, referenceLimit)
		if err != nil {
			log.Warn("listing projects failed", "error", err)
		}
		items := make([]refItem, 0, len(projects))
		for _, p := range projects {
			items = append(items, refItem{ID: p.ID, Title: p.Title})
		}
		add("Available projects (use these IDs for projectId)", items)
	}

	if s.repos.Habits != nil {
		habits, err := s.repos.Habits.ListHabits(ctx, userID, referenceLimit)
		if err != nil {
			log.Warn("listing habits failed", "error", err)
		}
		items := make([]refItem, 0, len(habits))
		for _, h := range habits {
			items = append(items, refItem{ID: h.ID, Title: h.Name})
		}
		add("Existing habits (use these IDs for targetId)", items)
	}

	if s.repos.Tasks != nil {
		tasks, err := s.repos.Tasks.ListTasks(ctx, userID, referenceLimit)
		if err != nil {
			log.Warn("listing tasks failed", "error", err)
		}
		items := make([]refItem, 0, len(tasks))
		for _, t := range tasks {
			items = append(items, refItem{ID: t.ID, Title: t.Title})
		}
		add("Recent tasks (use these IDs for targetId)", items)
	}

	if s.repos.Notes != nil {
		notes, err := s.repos.Notes.ListNotes(ctx, userID, referenceLimit)
		if err != nil {
			log.Warn("listing notes failed", "error", err)
		}
		items := make([]refItem, 0, len(notes))
		for _, n := range notes {
			items = append(items, refItem{ID: n.ID, Title: n.Title})
		}
		add("Recent notes (use these IDs for targetId)", items)
	}

	return strings.Join(sections, "\n")
}
