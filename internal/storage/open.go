package storage

import (
	"context"

	"github.com/DevSidd2006/learnquest/internal/config"
	"github.com/DevSidd2006/learnquest/internal/database"
	"github.com/DevSidd2006/learnquest/internal/logger"
)

// Open picks the backend once at startup. Without DATABASE_URL, or when the
// database cannot be reached or migrated, it falls back to memory.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) Backend {
	if cfg.DatabaseURL == "" {
		log.Info("no DATABASE_URL configured, using in-memory storage")
		return NewMemStorage()
	}

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Warn("database unavailable, falling back to in-memory storage", "error", err)
		return NewMemStorage()
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		log.Warn("database migration failed, falling back to in-memory storage", "error", err)
		return NewMemStorage()
	}

	log.Info("using postgres storage")
	return NewPostgresStorage(db)
}
