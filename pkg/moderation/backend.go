package moderation

import (
	"context"
	"errors"
	"sync"
)

// Backend persists the two stores. Each Save call receives the complete
// current contents of one store and must replace what was stored before.
type Backend interface {
	Load(ctx context.Context) (Snapshot, error)
	SaveWarnings(ctx context.Context, warnings map[string][]WarningRecord) error
	SavePunishments(ctx context.Context, punishments map[string]PunishmentRecord) error
}

// MemoryBackend keeps the snapshot in process. It is used in tests and when
// persistence is disabled.
type MemoryBackend struct {
	mu        sync.Mutex
	snap      Snapshot
	failSaves bool
}

// ErrBackendUnavailable is returned by MemoryBackend while save failures are on.
var ErrBackendUnavailable = errors.New("backend unavailable")

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{snap: Snapshot{
		Warnings:    map[string][]WarningRecord{},
		Punishments: map[string]PunishmentRecord{},
	}}
}

func (b *MemoryBackend) Load(ctx context.Context) (Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		Warnings:    cloneWarnings(b.snap.Warnings),
		Punishments: clonePunishments(b.snap.Punishments),
	}, nil
}

func (b *MemoryBackend) SaveWarnings(ctx context.Context, warnings map[string][]WarningRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failSaves {
		return ErrBackendUnavailable
	}
	b.snap.Warnings = cloneWarnings(warnings)
	return nil
}

func (b *MemoryBackend) SavePunishments(ctx context.Context, punishments map[string]PunishmentRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failSaves {
		return ErrBackendUnavailable
	}
	b.snap.Punishments = clonePunishments(punishments)
	return nil
}

// SetFailSaves makes every following Save call fail with ErrBackendUnavailable.
func (b *MemoryBackend) SetFailSaves(fail bool) {
	b.mu.Lock()
	b.failSaves = fail
	b.mu.Unlock()
}
