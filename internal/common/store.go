package common

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dtnitsch/readtime/models"
	"github.com/dtnitsch/readtime/pkg/db"
	"github.com/dtnitsch/readtime/pkg/storage"
	"github.com/urfave/cli/v2"
)

// NewLogger returns the JSON stderr logger used by every command.
func NewLogger(c *cli.Context) *slog.Logger {
	return newLogger(os.Stderr, c.Bool("quiet"))
}

func newLogger(w io.Writer, quiet bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if quiet {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// StoreConfigFromFlags reads the global store flags.
func StoreConfigFromFlags(c *cli.Context) models.StoreConfig {
	return models.StoreConfig{
		Backend:   strings.ToLower(c.String("store")),
		DBPath:    c.String("db"),
		RedisAddr: c.String("redis-addr"),
		Namespace: c.String("namespace"),
		Capacity:  c.Int("capacity"),
	}
}

// OpenStore builds the backend named by cfg and wraps it in a Store.
// Closing the store closes the backend.
func OpenStore(ctx context.Context, cfg models.StoreConfig, logger *slog.Logger) (*storage.Store, error) {
	var backend storage.Backend
	switch cfg.Backend {
	case "", models.BackendMemory:
		backend = storage.NewMemoryBackend()
	case models.BackendSQLite:
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		logger.Debug("opened sqlite store", "path", database.Path())
		backend = database
	case models.BackendRedis:
		rb, err := storage.DialRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		backend = rb
	default:
		return nil, fmt.Errorf("unknown store %q (want memory, sqlite or redis)", cfg.Backend)
	}

	return storage.New(backend,
		storage.WithCapacity(cfg.Capacity),
		storage.WithNamespace(cfg.Namespace),
		storage.WithLogger(logger),
	), nil
}

// OpenStoreFromFlags is OpenStore driven by the global flags.
func OpenStoreFromFlags(c *cli.Context, logger *slog.Logger) (*storage.Store, error) {
	return OpenStore(c.Context, StoreConfigFromFlags(c), logger)
}

// LoadSettings reads the --settings file.
func LoadSettings(c *cli.Context) (models.Settings, error) {
	return models.LoadSettings(c.String("settings"))
}
