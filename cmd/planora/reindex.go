package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/planora/internal/app/indexing"
	"github.com/PabloGalante/planora/internal/domain"
	"github.com/PabloGalante/planora/internal/observability"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Re-embed a user's tasks and notes",
	Long: `Rebuilds the similarity index for one user from the record stores.
Useful after switching the embedding model or the index backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		limit, _ := cmd.Flags().GetInt("limit")
		if user == "" {
			return errors.New("--user is required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		c, err := setup(ctx, cfg)
		if err != nil {
			return err
		}
		defer c.Close()

		n, failed, err := reindex(ctx, c, domain.UserID(user), limit)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reindexed %d entries for %s (%d failed)\n", n, user, failed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
	reindexCmd.Flags().StringP("user", "u", "", "User ID to reindex")
	reindexCmd.Flags().Int("limit", 1000, "Maximum tasks and notes to read per kind")
}

func reindex(ctx context.Context, c *components, userID domain.UserID, limit int) (int, int, error) {
	log := observability.WithFields("user_id", userID)
	indexer := indexing.NewIndexer(c.embedder, c.index, c.metrics)

	tasks, err := c.repos.Tasks.ListTasks(ctx, userID, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("list tasks: %w", err)
	}
	notes, err := c.repos.Notes.ListNotes(ctx, userID, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("list notes: %w", err)
	}

	jobs := make([]domain.IndexJob, 0, len(tasks)+len(notes))
	for _, t := range tasks {
		jobs = append(jobs, indexing.TaskJob(t))
	}
	for _, n := range notes {
		jobs = append(jobs, indexing.NoteJob(n))
	}

	var done, failed int
	for _, job := range jobs {
		if err := indexer.Index(ctx, job); err != nil {
			failed++
			log.Warn("reindex entry failed", "entity_type", job.EntityType, "entity_id", job.EntityID, "error", err)
			continue
		}
		done++
	}
	return done, failed, nil
}
