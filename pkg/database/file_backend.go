package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/goccy/go-json"
)

const (
	warnsFile       = "warns.json"
	punishmentsFile = "punishments.json"
)

// FileBackend keeps each store in its own JSON document under dir and
// rewrites the whole document on every save.
type FileBackend struct {
	dir string
	mu  sync.Mutex
}

var _ moderation.Backend = (*FileBackend)(nil)

// NewFileBackend creates dir if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) Load(ctx context.Context) (moderation.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := moderation.Snapshot{
		Warnings:    map[string][]moderation.WarningRecord{},
		Punishments: map[string]moderation.PunishmentRecord{},
	}
	if err := b.read(warnsFile, &snap.Warnings); err != nil {
		return snap, err
	}
	if err := b.read(punishmentsFile, &snap.Punishments); err != nil {
		return snap, err
	}
	return snap, nil
}

func (b *FileBackend) SaveWarnings(ctx context.Context, warnings map[string][]moderation.WarningRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.write(warnsFile, warnings)
}

func (b *FileBackend) SavePunishments(ctx context.Context, punishments map[string]moderation.PunishmentRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.write(punishmentsFile, punishments)
}

func (b *FileBackend) read(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(b.dir, name))
	if errors.Is(err, fs.ErrNotExist) || (err == nil && len(data) == 0) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// write replaces name atomically through a temp file and rename.
func (b *FileBackend) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(b.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(b.dir, name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func (b *FileBackend) Name() string { return "json" }

// Ping checks the data directory is still there.
func (b *FileBackend) Ping(ctx context.Context) error {
	info, err := os.Stat(b.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", b.dir)
	}
	return nil
}

func (b *FileBackend) Close() error { return nil }
