package database

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
)

// Backend is a moderation.Backend that owns a connection or file handle.
type Backend interface {
	moderation.Backend
	Name() string
	Ping(ctx context.Context) error
	Close() error
}

// Status returns a display string for the backend health and whether it
// answered.
func Status(ctx context.Context, b Backend) (string, bool) {
	if b == nil {
		return "⚪ | Sin configurar", false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := b.Ping(ctx); err != nil {
		return fmt.Sprintf("🔴 | %s desconectado", b.Name()), false
	}
	return fmt.Sprintf("🟢 | %s en linea", b.Name()), true
}

// Options selects and configures a backend.
type Options struct {
	// Kind is one of "json", "bolt", "mongo" or "redis". Empty means "json".
	Kind     string
	DataDir  string
	MongoURL string
	DBName   string
	GuildID  string
	RedisURL string
}

// Open builds the backend named by opts.Kind.
func Open(ctx context.Context, opts Options) (Backend, error) {
	kind := strings.ToLower(strings.TrimSpace(opts.Kind))
	if opts.DataDir == "" {
		opts.DataDir = "data"
	}

	var (
		backend Backend
		err     error
	)
	switch kind {
	case "", "json":
		backend, err = NewFileBackend(opts.DataDir)
	case "bolt":
		backend, err = OpenBolt(BoltOptions{Path: filepath.Join(opts.DataDir, "pancymod.db")})
	case "mongo":
		var db *Database
		db, err = Init(opts.MongoURL, opts.DBName)
		if err == nil {
			backend = NewMongoBackend(db, opts.GuildID)
		}
	case "redis":
		backend, err = NewRedisBackend(ctx, opts.RedisURL, defaultRedisPrefix)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", kind, err)
	}

	logger.System("Almacenamiento de moderación: "+backend.Name(), "DB")
	return backend, nil
}
