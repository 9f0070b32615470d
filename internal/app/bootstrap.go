package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"prosperity_go/internal/config"
	"prosperity_go/internal/storage"
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config *config.Config
	Store  *storage.TickStore
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads configuration, installs the logger and opens the tick
// store. An empty configPath falls back to the built-in defaults.
func (b *Bootstrap) Initialize(configPath string) error {
	// 1. Load Config
	if configPath == "" {
		b.Config = config.Default()
	} else {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err // Let main handle the error
		}
		b.Config = cfg
	}

	// 2. Setup Logger
	slog.SetDefault(NewLogger(b.Config))
	slog.Info("🚀 Bootstrapping quoting simulator",
		slog.String("app", b.Config.App.Name),
		slog.String("version", b.Config.App.Version))

	// 3. Initialize TickStore (Single-Writer WAL DB)
	dataDir := b.Config.Data.Dir
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "ticks.db")
	store, err := storage.NewTickStore(dbPath)
	if err != nil {
		return err
	}
	b.Store = store
	slog.Info("✅ TickStore initialized (WAL-mode)", "path", dbPath)

	return nil
}

// Close releases the resources Initialize opened.
func (b *Bootstrap) Close() error {
	if b.Store != nil {
		return b.Store.Close()
	}
	return nil
}

// NewLogger builds the text logger at the configured level. Unknown
// levels fall back to info.
func NewLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
