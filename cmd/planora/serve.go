package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/planora/internal/adapters/auth"
	httpadapter "github.com/PabloGalante/planora/internal/adapters/http"
	redisqueue "github.com/PabloGalante/planora/internal/adapters/queue/redis"
	"github.com/PabloGalante/planora/internal/adapters/speech/polly"
	"github.com/PabloGalante/planora/internal/app/actions"
	"github.com/PabloGalante/planora/internal/app/assistant"
	"github.com/PabloGalante/planora/internal/app/indexing"
	"github.com/PabloGalante/planora/internal/config"
	"github.com/PabloGalante/planora/internal/domain"
	"github.com/PabloGalante/planora/internal/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Starts the assistant API. Index jobs are consumed in-process unless --no-index-workers is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		noWorkers, _ := cmd.Flags().GetBool("no-index-workers")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if p, _ := cmd.Flags().GetString("port"); p != "" {
			cfg.Port = p
		}
		return serve(cfg, noWorkers)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides PLANORA_PORT)")
	serveCmd.Flags().Bool("no-index-workers", false, "Only enqueue index jobs; leave consuming to `planora worker`")
}

func serve(cfg *config.Config, noWorkers bool) error {
	log := observability.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	indexer := indexing.NewIndexer(c.embedder, c.index, c.metrics)
	handler := indexing.Handler(indexer.Index)
	if noWorkers {
		if cfg.Queue.Backend == "redis" {
			handler = nil
		} else {
			log.Warn("the local queue needs in-process workers; ignoring --no-index-workers")
		}
	}
	queue, closeQueue := startQueue(ctx, cfg, c.metrics, handler)
	defer closeQueue()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	var speech domain.SpeechSynthesizer
	if cfg.Speech.Enabled {
		log.Info("spoken replies enabled", "voice", cfg.Speech.Voice)
		speech = polly.NewSynthesizer(polly.Config{
			Region: cfg.Speech.Region,
			Voice:  cfg.Speech.Voice,
			Engine: cfg.Speech.Engine,
		})
	}

	a := cfg.Assistant
	svc, err := assistant.NewService(assistant.Deps{
		Generator: c.gen,
		Embedder:  c.embedder,
		Index:     c.index,
		Repos:     c.repos,
		Executor:  actions.NewExecutor(c.repos, queue, c.metrics),
		Speech:    speech,
		Metrics:   c.metrics,
	}, assistant.Options{
		SimilarityThreshold: &a.SimilarityThreshold,
		TopK:                a.TopK,
		HistoryTurns:        a.HistoryTurns,
		MaxActions:          a.MaxActions,
		RetryMaxAttempts:    a.RetryMaxAttempts,
		RetryBaseDelay:      a.RetryBaseDelay,
		RetryMaxDelay:       a.RetryMaxDelay,
		TranscribeTimeout:   a.TranscribeTimeout,
		RetrieveTimeout:     a.RetrieveTimeout,
		InferTimeout:        a.InferTimeout,
		Location:            loc,
		FallbackReply:       a.FallbackReply,
		AckReply:            a.AckReply,
		NoMemoryReply:       a.NoMemoryReply,
	})
	if err != nil {
		return err
	}

	if len(cfg.AuthTokens) == 0 {
		log.Warn("no auth tokens configured; every request will be rejected")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpadapter.NewServer(svc, auth.NewStaticTokens(cfg.AuthTokens), c.metrics),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Planora API listening", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("shutdown started")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown did not complete", "error", err)
			_ = srv.Close()
		}
		log.Info("Planora API stopped")
		return nil
	}
}

// startQueue builds the configured index queue. A nil handler only produces.
func startQueue(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, handler indexing.Handler) (domain.IndexQueue, func()) {
	log := observability.Logger()
	q := cfg.Queue

	switch q.Backend {
	case "redis":
		log.Info("using redis index queue", "addr", q.RedisAddr, "key", q.RedisKey, "consume", handler != nil)
		rq := redisqueue.New(q.RedisAddr, q.RedisPassword, q.RedisDB,
			redisqueue.WithKey(q.RedisKey),
			redisqueue.WithBuffer(q.Buffer),
			redisqueue.WithWorkers(q.Workers),
			redisqueue.WithMetrics(metrics),
		)
		if err := rq.Ping(ctx); err != nil {
			log.Warn("redis not reachable yet; jobs will be retried per push", "error", err)
		}
		rq.Start(context.WithoutCancel(ctx), handler)
		return rq, rq.Close
	default:
		log.Info("using in-process index queue", "workers", q.Workers, "buffer", q.Buffer)
		lq := indexing.NewLocalQueue(handler,
			indexing.WithWorkers(q.Workers),
			indexing.WithBuffer(q.Buffer),
			indexing.WithMetrics(metrics),
		)
		lq.Start(context.WithoutCancel(ctx))
		return lq, lq.Close
	}
}
