package main

import (
	"context"
	"fmt"

	"github.com/PabloGalante/planora/internal/adapters/llm"
	firestorestore "github.com/PabloGalante/planora/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/planora/internal/adapters/storage/memory"
	sqlitestore "github.com/PabloGalante/planora/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/planora/internal/config"
	"github.com/PabloGalante/planora/internal/domain"
	"github.com/PabloGalante/planora/internal/observability"
)

// components are the backends shared by every subcommand.
type components struct {
	cfg      *config.Config
	metrics  *observability.Metrics
	gen      domain.Generator
	embedder domain.Embedder
	repos    domain.Repositories
	index    domain.VectorIndex

	closers []func() error
}

func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			observability.Logger().Warn("closing backend", "error", err)
		}
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	observability.Configure(cfg.LogLevel)
	return cfg, nil
}

func setup(ctx context.Context, cfg *config.Config) (*components, error) {
	log := observability.Logger()
	c := &components{cfg: cfg, metrics: observability.NewMetrics()}

	// Choose between mock and Gemini (useful for dev)
	if cfg.Gemini.UseMock {
		log.Info("using mock LLM client")
		mock := llm.NewMockLLM()
		c.gen, c.embedder = mock, mock
	} else {
		log.Info("using Gemini LLM client", "backend", cfg.Gemini.Backend, "model", cfg.Gemini.Model)
		client, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey:         cfg.Gemini.APIKey,
			Project:        cfg.Gemini.Project,
			Location:       cfg.Gemini.Location,
			Backend:        cfg.Gemini.Backend,
			Model:          cfg.Gemini.Model,
			EmbeddingModel: cfg.Gemini.EmbeddingModel,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing Gemini client: %w", err)
		}
		c.gen, c.embedder = client, client
	}

	// Storage and index may share one sqlite or Firestore handle.
	var (
		sqliteDB *sqlitestore.Store
		fsStore  *firestorestore.Store
	)
	openSQLite := func() (*sqlitestore.Store, error) {
		if sqliteDB != nil {
			return sqliteDB, nil
		}
		s, err := sqlitestore.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		sqliteDB = s
		c.closers = append(c.closers, s.Close)
		return s, nil
	}
	openFirestore := func() (*firestorestore.Store, error) {
		if fsStore != nil {
			return fsStore, nil
		}
		s, err := firestorestore.NewStore(ctx, cfg.FirestoreProject)
		if err != nil {
			return nil, err
		}
		fsStore = s
		c.closers = append(c.closers, s.Close)
		return s, nil
	}

	switch cfg.StorageBackend {
	case "sqlite":
		log.Info("using sqlite storage", "path", cfg.SQLitePath)
		s, err := openSQLite()
		if err != nil {
			c.Close()
			return nil, err
		}
		c.repos = s.Repositories()
	case "firestore":
		log.Info("using Firestore storage", "project", cfg.FirestoreProject)
		s, err := openFirestore()
		if err != nil {
			c.Close()
			return nil, err
		}
		c.repos = s.Repositories()
	default:
		log.Info("using in-memory storage")
		c.repos = memstore.NewRepositories()
	}

	switch cfg.IndexBackend {
	case "sqlite":
		log.Info("using sqlite vector index", "path", cfg.SQLitePath)
		s, err := openSQLite()
		if err != nil {
			c.Close()
			return nil, err
		}
		c.index = s.VectorIndex()
	case "firestore":
		log.Info("using Firestore vector index", "project", cfg.FirestoreProject)
		s, err := openFirestore()
		if err != nil {
			c.Close()
			return nil, err
		}
		c.index = s.VectorIndex()
	default:
		log.Info("using in-memory vector index")
		c.index = memstore.NewVectorIndex()
	}

	return c, nil
}
