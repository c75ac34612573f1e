package models

import (
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/moderation"
)

// PunishmentDocument es el documento de la colección "punishments".
// Los tiempos se guardan en milisegundos Unix.
type PunishmentDocument struct {
	ID          string `bson:"_id" json:"id"`
	UserID      string `bson:"userId" json:"userId"`
	GuildID     string `bson:"guildId" json:"guildId"`
	ModeratorID string `bson:"moderatorId" json:"moderatorId"`
	Reason      string `bson:"reason" json:"reason"`
	Type        string `bson:"type" json:"type"`
	CreatedAt   int64  `bson:"createdAt" json:"createdAt"`
	EndTime     int64  `bson:"endTime" json:"endTime"`
}

func NewPunishmentDocument(p moderation.PunishmentRecord) PunishmentDocument {
	return PunishmentDocument{
		ID:          p.ID,
		UserID:      p.MemberID,
		GuildID:     p.CommunityID,
		ModeratorID: p.ModeratorID,
		Reason:      p.Reason,
		Type:        string(p.Kind),
		CreatedAt:   p.CreatedAt.UnixMilli(),
		EndTime:     p.ExpiresAt.UnixMilli(),
	}
}

func (d PunishmentDocument) Record() moderation.PunishmentRecord {
	return moderation.PunishmentRecord{
		ID:          d.ID,
		MemberID:    d.UserID,
		CommunityID: d.GuildID,
		ModeratorID: d.ModeratorID,
		Reason:      d.Reason,
		Kind:        moderation.Kind(d.Type),
		CreatedAt:   time.UnixMilli(d.CreatedAt).UTC(),
		ExpiresAt:   time.UnixMilli(d.EndTime).UTC(),
	}
}
