package database

import (
	"context"
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "pancymod"

// RedisBackend keeps each store in a hash: "<prefix>:warns" maps member id to
// its JSON warning bucket and "<prefix>:punishments" maps id to punishment.
type RedisBackend struct {
	rdb    *redis.Client
	prefix string
}

var _ moderation.Backend = (*RedisBackend)(nil)

// NewRedisBackend connects to redisURL and checks the connection.
func NewRedisBackend(ctx context.Context, redisURL, prefix string) (*RedisBackend, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, err
	}
	return NewRedisBackendFromClient(rdb, prefix), nil
}

func NewRedisBackendFromClient(rdb *redis.Client, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisBackend{rdb: rdb, prefix: prefix}
}

func (b *RedisBackend) warnsKey() string       { return b.prefix + ":warns" }
func (b *RedisBackend) punishmentsKey() string { return b.prefix + ":punishments" }

func (b *RedisBackend) Load(ctx context.Context) (moderation.Snapshot, error) {
	snap := moderation.Snapshot{
		Warnings:    map[string][]moderation.WarningRecord{},
		Punishments: map[string]moderation.PunishmentRecord{},
	}

	warns, err := b.rdb.HGetAll(ctx, b.warnsKey()).Result()
	if err != nil {
		return snap, fmt.Errorf("load warns: %w", err)
	}
	for member, raw := range warns {
		var records []moderation.WarningRecord
		if err := json.Unmarshal([]byte(raw), &records); err != nil {
			return snap, fmt.Errorf("decode warns of %s: %w", member, err)
		}
		snap.Warnings[member] = records
	}

	punishments, err := b.rdb.HGetAll(ctx, b.punishmentsKey()).Result()
	if err != nil {
		return snap, fmt.Errorf("load punishments: %w", err)
	}
	for id, raw := range punishments {
		var p moderation.PunishmentRecord
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return snap, fmt.Errorf("decode punishment %s: %w", id, err)
		}
		snap.Punishments[id] = p
	}

	return snap, nil
}

func (b *RedisBackend) SaveWarnings(ctx context.Context, warnings map[string][]moderation.WarningRecord) error {
	fields := make(map[string]any, len(warnings))
	for member, records := range warnings {
		data, err := json.Marshal(records)
		if err != nil {
			return fmt.Errorf("encode warns of %s: %w", member, err)
		}
		fields[member] = data
	}
	return b.replaceHash(ctx, b.warnsKey(), fields)
}

func (b *RedisBackend) SavePunishments(ctx context.Context, punishments map[string]moderation.PunishmentRecord) error {
	fields := make(map[string]any, len(punishments))
	for id, p := range punishments {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode punishment %s: %w", id, err)
		}
		fields[id] = data
	}
	return b.replaceHash(ctx, b.punishmentsKey(), fields)
}

// replaceHash swaps the hash contents in a MULTI/EXEC block.
func (b *RedisBackend) replaceHash(ctx context.Context, key string, fields map[string]any) error {
	_, err := b.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(fields) > 0 {
			pipe.HSet(ctx, key, fields)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (b *RedisBackend) Name() string { return "redis" }

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}

func (b *RedisBackend) Close() error {
	return b.rdb.Close()
}
