// Package bootstrap wires the configured infrastructure into an App.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	"nutrigenie/internal/app"
	"nutrigenie/internal/clipper"
	"nutrigenie/internal/config"
	"nutrigenie/internal/database"
	"nutrigenie/internal/favorites"
	"nutrigenie/internal/llm"
	"nutrigenie/internal/metrics"
	"nutrigenie/internal/planner"
	"nutrigenie/internal/profile"
	"nutrigenie/internal/session"
	"nutrigenie/internal/shopping"
	"nutrigenie/internal/storage"
	"nutrigenie/internal/tracker"
)

// Runtime holds everything a binary needs, already connected.
type Runtime struct {
	Config   *config.Config
	DB       *database.DB
	Store    storage.Store
	Metrics  *metrics.Store
	Sessions *session.Manager
	App      *app.App

	gen llm.StructuredGenerator
}

// New opens the database, picks the storage backend and the model provider,
// and builds the App. The caller must Close the Runtime.
func New(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	store, err := NewStore(cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	gen, err := NewGenerator(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	return newRuntime(cfg, db, store, gen), nil
}

func newRuntime(cfg *config.Config, db *database.DB, store storage.Store, gen llm.StructuredGenerator) *Runtime {
	metricsStore := metrics.NewStore(db.SQL)
	sessions := session.NewManager(cfg.SessionTTL)

	application := app.NewApp(app.Deps{
		Sessions:    sessions,
		Preferences: profile.NewStore(store),
		Favorites:   favorites.NewStore(store),
		Planner:     planner.NewPlanner(gen),
		Grocery:     shopping.NewAssistant(gen),
		Tracker:     tracker.NewTracker(gen),
		Fetcher:     clipper.NewClipper(),
		Metrics:     metricsStore,
	})

	return &Runtime{
		Config:   cfg,
		DB:       db,
		Store:    store,
		Metrics:  metricsStore,
		Sessions: sessions,
		App:      application,
		gen:      gen,
	}
}

// NewStore returns the key-value backend selected by STORAGE_BACKEND.
func NewStore(cfg *config.Config, db *database.DB) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendFile:
		store, err := storage.NewFileStore(cfg.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file store: %w", err)
		}
		log.Printf("Storing profiles as files under %s", cfg.StoragePath)
		return store, nil
	case config.BackendSQLite, "":
		return storage.NewSQLiteStore(db.SQL), nil
	}
	return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
}

// NewGenerator returns the model client selected by LLM_PROVIDER.
func NewGenerator(ctx context.Context, cfg *config.Config) (llm.StructuredGenerator, error) {
	switch cfg.LLMProvider {
	case config.ProviderGroq:
		log.Printf("Using Groq model %s", cfg.GroqModel)
		client := llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel, cfg.LLMTimeout)
		if cfg.GroqURL != "" {
			client.WithURL(cfg.GroqURL)
		}
		return client, nil
	case config.ProviderGemini, "":
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		log.Printf("Using Gemini model %s", cfg.GeminiModel)
		return client, nil
	}
	return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLMProvider)
}

// Close releases the model client and the database.
func (r *Runtime) Close() error {
	if closer, ok := r.gen.(llm.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Printf("Warning: failed to close model client: %v", err)
		}
	}
	return r.DB.Close()
}
