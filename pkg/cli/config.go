package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/minuta/pkg/adapter"
	"github.com/m-mizutani/minuta/pkg/repository"
	"github.com/m-mizutani/minuta/pkg/templates"
	"github.com/m-mizutani/minuta/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	// Storage
	backend  string
	dataDir  string
	project  string
	database string
	bucket   string

	// Templates
	templateFile string

	// Logging
	logLevel string

	// Adapters
	geminiProject  string
	geminiLocation string
	geminiModel    string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "backend",
			Aliases:     []string{"b"},
			Usage:       "Storage backend: file, sqlite, firestore or gcs",
			Value:       "file",
			Sources:     cli.EnvVars("MINUTA_BACKEND"),
			Destination: &cfg.backend,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "Directory for local storage backends",
			Sources:     cli.EnvVars("MINUTA_DATA_DIR"),
			Destination: &cfg.dataDir,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID for the firestore backend",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Cloud Storage bucket for the gcs backend",
			Sources:     cli.EnvVars("MINUTA_BUCKET"),
			Destination: &cfg.bucket,
		},
		&cli.StringFlag{
			Name:        "templates",
			Usage:       "Path to YAML file with custom meeting templates",
			Sources:     cli.EnvVars("MINUTA_TEMPLATES"),
			Destination: &cfg.templateFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("MINUTA_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model used for structuring",
			Sources:     cli.EnvVars("GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
	}
}

// setupLogging installs the default logger at the configured level
func (cfg *config) setupLogging() {
	logging.SetDefault(logging.New(cfg.logLevel, os.Stderr))
}

func (cfg *config) resolveDataDir() (string, error) {
	if cfg.dataDir != "" {
		return cfg.dataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve home directory")
	}
	return filepath.Join(home, ".minuta"), nil
}

// newStore creates the durable store for the configured backend
func (cfg *config) newStore(ctx context.Context) (adapter.KVStore, error) {
	switch cfg.backend {
	case "file":
		dir, err := cfg.resolveDataDir()
		if err != nil {
			return nil, err
		}
		return adapter.NewFileStore(dir)

	case "sqlite":
		dir, err := cfg.resolveDataDir()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, goerr.Wrap(err, "failed to create data directory", goerr.Value("dir", dir))
		}
		return adapter.NewSQLiteStore(filepath.Join(dir, "minuta.db"))

	case "firestore":
		if cfg.project == "" {
			return nil, goerr.New("project is required for the firestore backend")
		}
		if cfg.database == "" {
			return nil, goerr.New("database is required for the firestore backend")
		}
		return adapter.NewFirestoreStore(ctx, cfg.project, cfg.database)

	case "gcs":
		if cfg.bucket == "" {
			return nil, goerr.New("bucket is required for the gcs backend")
		}
		return adapter.NewGCSStore(ctx, cfg.bucket)

	default:
		return nil, goerr.New("unknown storage backend", goerr.Value("backend", cfg.backend))
	}
}

// newRepository creates a hydrated repository over the configured store
func (cfg *config) newRepository(ctx context.Context) (*repository.Repository, error) {
	store, err := cfg.newStore(ctx)
	if err != nil {
		return nil, err
	}

	repo := repository.New(store)
	if err := repo.Hydrate(ctx); err != nil {
		return nil, goerr.Wrap(err, "failed to load notes")
	}
	return repo, nil
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}

	var opts []adapter.GeminiOption
	if cfg.geminiModel != "" {
		opts = append(opts, adapter.WithGenerativeModel(cfg.geminiModel))
	}
	return adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation, opts...)
}

// newRegistry builds the template registry, merging in user templates
// when a template file is configured
func (cfg *config) newRegistry() (*templates.Registry, error) {
	registry := templates.NewRegistry()
	if cfg.templateFile != "" {
		if err := registry.Load(cfg.templateFile); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
