// Package enforcement turns moderation outcomes into Discord side effects:
// role changes, DMs, log channel embeds and the MQTT audit feed. Failures
// here are logged and counted, never returned to the moderation core.
package enforcement

import (
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/moderation"
)

// EventType names an audit event. It doubles as the MQTT topic suffix.
type EventType string

const (
	EventWarn   EventType = "warn"
	EventPunish EventType = "punish"
	EventExpire EventType = "expire"
	EventRemove EventType = "remove"
)

// Event is what notifiers receive after a state change has been persisted.
type Event struct {
	Type            EventType                    `json:"type"`
	CommunityID     string                       `json:"communityId"`
	MemberID        string                       `json:"memberId"`
	ModeratorID     string                       `json:"moderatorId,omitempty"`
	Reason          string                       `json:"reason,omitempty"`
	Automatic       bool                         `json:"automatic,omitempty"`
	ChannelID       string                       `json:"channelId,omitempty"`
	Content         string                       `json:"content,omitempty"`
	WarnCount       int                          `json:"warnCount,omitempty"`
	DurationMinutes int                          `json:"durationMinutes,omitempty"`
	Merged          bool                         `json:"merged,omitempty"`
	Warning         *moderation.WarningRecord    `json:"warning,omitempty"`
	Punishment      *moderation.PunishmentRecord `json:"punishment,omitempty"`
	At              time.Time                    `json:"at"`
}

// Trigger is the message that made automod warn a member.
type Trigger struct {
	ChannelID string
	Content   string
}

// maxTriggerContent is how much of the offending message reaches the log.
const maxTriggerContent = 500

// kindLabel is the punishment kind carried by the event, "" for none.
func (e Event) kindLabel() string {
	if e.Punishment == nil {
		return ""
	}
	return string(e.Punishment.Kind)
}
