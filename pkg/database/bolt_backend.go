package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/goccy/go-json"
	bolt "go.etcd.io/bbolt"
)

var (
	// BucketWarnings stores a member's warning bucket keyed by member id
	BucketWarnings = []byte("warnings")

	// BucketPunishments stores punishments keyed by punishment id
	BucketPunishments = []byte("punishments")
)

// BoltOptions configures the BoltDB backend.
type BoltOptions struct {
	// Path to the database file. Parent directories are created if needed.
	Path string

	// Timeout for obtaining the file lock. Defaults to 5 seconds.
	Timeout time.Duration

	// FileMode for creating the database file. Defaults to 0600.
	FileMode os.FileMode
}

// BoltBackend persists the stores in a single BoltDB file.
type BoltBackend struct {
	db *bolt.DB
}

var _ moderation.Backend = (*BoltBackend)(nil)

// OpenBolt creates or opens the database and its buckets.
func OpenBolt(opts BoltOptions) (*BoltBackend, error) {
	if opts.Path == "" {
		opts.Path = "pancymod.db"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.FileMode == 0 {
		opts.FileMode = 0600
	}

	if dir := filepath.Dir(opts.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := bolt.Open(opts.Path, opts.FileMode, &bolt.Options{Timeout: opts.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{BucketWarnings, BucketPunishments} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltBackend{db: db}, nil
}

func (b *BoltBackend) Load(ctx context.Context) (moderation.Snapshot, error) {
	snap := moderation.Snapshot{
		Warnings:    map[string][]moderation.WarningRecord{},
		Punishments: map[string]moderation.PunishmentRecord{},
	}

	err := b.db.View(func(tx *bolt.Tx) error {
		err := tx.Bucket(BucketWarnings).ForEach(func(k, v []byte) error {
			var records []moderation.WarningRecord
			if err := json.Unmarshal(v, &records); err != nil {
				return fmt.Errorf("failed to unmarshal warnings of %s: %w", k, err)
			}
			snap.Warnings[string(k)] = records
			return nil
		})
		if err != nil {
			return err
		}

		return tx.Bucket(BucketPunishments).ForEach(func(k, v []byte) error {
			var p moderation.PunishmentRecord
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("failed to unmarshal punishment %s: %w", k, err)
			}
			snap.Punishments[string(k)] = p
			return nil
		})
	})
	return snap, err
}

func (b *BoltBackend) SaveWarnings(ctx context.Context, warnings map[string][]moderation.WarningRecord) error {
	return b.replaceBucket(BucketWarnings, func(put func(key string, v any) error) error {
		for member, records := range warnings {
			if err := put(member, records); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *BoltBackend) SavePunishments(ctx context.Context, punishments map[string]moderation.PunishmentRecord) error {
	return b.replaceBucket(BucketPunishments, func(put func(key string, v any) error) error {
		for id, p := range punishments {
			if err := put(id, p); err != nil {
				return err
			}
		}
		return nil
	})
}

// replaceBucket drops and refills a bucket inside one transaction.
func (b *BoltBackend) replaceBucket(name []byte, fill func(put func(key string, v any) error) error) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(name); err != nil {
			return fmt.Errorf("failed to clear bucket %s: %w", name, err)
		}
		bucket, err := tx.CreateBucket(name)
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", name, err)
		}

		return fill(func(key string, v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("failed to marshal %s/%s: %w", name, key, err)
			}
			return bucket.Put([]byte(key), data)
		})
	})
}

func (b *BoltBackend) Name() string { return "bolt" }

// Ping checks the file is open and the punishments bucket exists.
func (b *BoltBackend) Ping(ctx context.Context) error {
	return b.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(BucketPunishments) == nil {
			return fmt.Errorf("bucket %s missing", BucketPunishments)
		}
		return nil
	})
}

// Close closes the database.
func (b *BoltBackend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
