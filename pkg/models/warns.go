package models

import (
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/moderation"
)

// Warn representa una advertencia individual
type Warn struct {
	ID        string `bson:"id" json:"id"`
	Reason    string `bson:"reason" json:"reason"`
	Moderator string `bson:"moderator,omitempty" json:"moderator,omitempty"`
	Timestamp int64  `bson:"timestamp" json:"timestamp"`
}

// WarnsDocument es el documento de la colección "warns": una entrada por miembro.
type WarnsDocument struct {
	GuildID string `bson:"guildId" json:"guildId"`
	UserID  string `bson:"userId" json:"userId"`
	Warns   []Warn `bson:"warns" json:"warns"`
}

// NewWarnsDocument converts a member's warning bucket into its stored form.
func NewWarnsDocument(guildID, userID string, records []moderation.WarningRecord) WarnsDocument {
	doc := WarnsDocument{GuildID: guildID, UserID: userID, Warns: make([]Warn, 0, len(records))}
	for _, r := range records {
		doc.Warns = append(doc.Warns, Warn{
			ID:        r.ID,
			Reason:    r.Reason,
			Moderator: r.ModeratorID,
			Timestamp: r.CreatedAt.UnixMilli(),
		})
	}
	return doc
}

// Records converts the document back into warning records, oldest first.
func (d WarnsDocument) Records() []moderation.WarningRecord {
	out := make([]moderation.WarningRecord, 0, len(d.Warns))
	for _, w := range d.Warns {
		out = append(out, moderation.WarningRecord{
			ID:          w.ID,
			MemberID:    d.UserID,
			Reason:      w.Reason,
			ModeratorID: w.Moderator,
			CreatedAt:   time.UnixMilli(w.Timestamp).UTC(),
		})
	}
	return out
}
