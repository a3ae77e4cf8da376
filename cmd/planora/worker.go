package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/planora/internal/app/indexing"
	"github.com/PabloGalante/planora/internal/observability"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume index jobs from redis",
	Long: `Runs index workers without the HTTP API. Pair it with
"planora serve --no-index-workers" and PLANORA_QUEUE_BACKEND=redis.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Queue.Backend != "redis" {
			return errors.New("worker needs the redis queue backend")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c, err := setup(ctx, cfg)
		if err != nil {
			return err
		}
		defer c.Close()

		indexer := indexing.NewIndexer(c.embedder, c.index, c.metrics)
		_, closeQueue := startQueue(ctx, cfg, c.metrics, indexer.Index)

		observability.Logger().Info("index worker running", "workers", cfg.Queue.Workers)
		<-ctx.Done()

		observability.Logger().Info("index worker stopping")
		closeQueue()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
