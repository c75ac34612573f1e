package database

import (
	"context"
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	warnsCollection       = "warns"
	punishmentsCollection = "punishments"
)

// MongoBackend stores one document per warned member in "warns" and one per
// punishment in "punishments". Warnings are scoped to guildID.
//
// A save is an upsert followed by a prune, not a transaction, since a
// standalone mongod has none. If the prune fails the upserts stay written
// while the service rolls its memory back, so the collection runs ahead of
// memory until the next successful save rewrites the full state. A restart
// inside that window loads the newer documents.
type MongoBackend struct {
	db      *Database
	guildID string
}

var _ moderation.Backend = (*MongoBackend)(nil)

func NewMongoBackend(db *Database, guildID string) *MongoBackend {
	return &MongoBackend{db: db, guildID: guildID}
}

func (b *MongoBackend) collection(name string) (*mongo.Collection, error) {
	if !b.db.Connected() {
		return nil, ErrNotConnected
	}
	col := b.db.GetCollection(name)
	if col == nil {
		return nil, ErrNotConnected
	}
	return col, nil
}

func (b *MongoBackend) Load(ctx context.Context) (moderation.Snapshot, error) {
	snap := moderation.Snapshot{
		Warnings:    map[string][]moderation.WarningRecord{},
		Punishments: map[string]moderation.PunishmentRecord{},
	}

	warns, err := b.collection(warnsCollection)
	if err != nil {
		return snap, err
	}
	var warnDocs []models.WarnsDocument
	cur, err := warns.Find(ctx, bson.M{"guildId": b.guildID})
	if err != nil {
		return snap, fmt.Errorf("find warns: %w", err)
	}
	if err := cur.All(ctx, &warnDocs); err != nil {
		return snap, fmt.Errorf("decode warns: %w", err)
	}
	for _, doc := range warnDocs {
		if len(doc.Warns) > 0 {
			snap.Warnings[doc.UserID] = doc.Records()
		}
	}

	punishments, err := b.collection(punishmentsCollection)
	if err != nil {
		return snap, err
	}
	var punDocs []models.PunishmentDocument
	cur, err = punishments.Find(ctx, bson.M{})
	if err != nil {
		return snap, fmt.Errorf("find punishments: %w", err)
	}
	if err := cur.All(ctx, &punDocs); err != nil {
		return snap, fmt.Errorf("decode punishments: %w", err)
	}
	for _, doc := range punDocs {
		snap.Punishments[doc.ID] = doc.Record()
	}

	return snap, nil
}

// SaveWarnings upserts every member bucket and removes the documents of
// members no longer present.
func (b *MongoBackend) SaveWarnings(ctx context.Context, warnings map[string][]moderation.WarningRecord) error {
	col, err := b.collection(warnsCollection)
	if err != nil {
		return err
	}

	members := make([]string, 0, len(warnings))
	writes := make([]mongo.WriteModel, 0, len(warnings))
	for member, records := range warnings {
		members = append(members, member)
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"guildId": b.guildID, "userId": member}).
			SetReplacement(models.NewWarnsDocument(b.guildID, member, records)).
			SetUpsert(true))
	}

	if len(writes) > 0 {
		if _, err := col.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
			return fmt.Errorf("write warns: %w", err)
		}
	}
	if _, err := col.DeleteMany(ctx, bson.M{"guildId": b.guildID, "userId": bson.M{"$nin": members}}); err != nil {
		return fmt.Errorf("prune warns: %w", err)
	}
	return nil
}

// SavePunishments upserts every punishment and removes the rest.
func (b *MongoBackend) SavePunishments(ctx context.Context, punishments map[string]moderation.PunishmentRecord) error {
	col, err := b.collection(punishmentsCollection)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(punishments))
	writes := make([]mongo.WriteModel, 0, len(punishments))
	for id, p := range punishments {
		ids = append(ids, id)
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": id}).
			SetReplacement(models.NewPunishmentDocument(p)).
			SetUpsert(true))
	}

	if len(writes) > 0 {
		if _, err := col.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
			return fmt.Errorf("write punishments: %w", err)
		}
	}
	if _, err := col.DeleteMany(ctx, bson.M{"_id": bson.M{"$nin": ids}}); err != nil {
		return fmt.Errorf("prune punishments: %w", err)
	}
	return nil
}

func (b *MongoBackend) Name() string { return "mongo" }

func (b *MongoBackend) Ping(ctx context.Context) error {
	_, err := b.db.Ping(ctx)
	return err
}

func (b *MongoBackend) Close() error {
	return b.db.Disconnect()
}
