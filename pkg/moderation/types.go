// Package moderation is the warning and punishment lifecycle engine: escalation
// policy, duration codec, stacking and debounce rules, expiry sweep and the
// spam detectors. It has no knowledge of Discord; callers apply the returned
// outcomes.
package moderation

import (
	"time"
)

// Kind is the type of restriction a punishment applies.
type Kind string

const (
	KindMute Kind = "mute"
	KindBan  Kind = "ban"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindMute || k == KindBan
}

// WarningRecord is a single warning issued to a member. Records are immutable.
type WarningRecord struct {
	ID          string    `json:"id"`
	MemberID    string    `json:"memberId"`
	Reason      string    `json:"reason"`
	ModeratorID string    `json:"moderatorId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PunishmentRecord is an active, time-bounded restriction on a member.
type PunishmentRecord struct {
	ID          string    `json:"id"`
	MemberID    string    `json:"memberId"`
	CommunityID string    `json:"communityId"`
	ModeratorID string    `json:"moderatorId"`
	Reason      string    `json:"reason"`
	Kind        Kind      `json:"kind"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Remaining is the time left before the punishment lapses, never negative.
func (p PunishmentRecord) Remaining(now time.Time) time.Duration {
	if d := p.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Snapshot is the full persisted state of both stores.
type Snapshot struct {
	Warnings    map[string][]WarningRecord  `json:"warnings"`
	Punishments map[string]PunishmentRecord `json:"punishments"`
}
