package moderation

import (
	"sort"
	"time"
)

// PunishmentStore keeps active punishments keyed by id. It is not safe for
// concurrent use; Service serializes access.
type PunishmentStore struct {
	byID map[string]PunishmentRecord
	ids  *IDGenerator
}

// NewPunishmentStore builds a store seeded with previously persisted punishments.
func NewPunishmentStore(seed map[string]PunishmentRecord, ids *IDGenerator) *PunishmentStore {
	s := &PunishmentStore{
		byID: clonePunishments(seed),
		ids:  ids,
	}
	ids.track(s.has)
	return s
}

// Apply records a punishment. A mute for a member that already has an
// active mute in the same community extends that record instead of creating
// another: the expiry moves to existing expiry + minutes and the id is kept.
// Mutes that have run out but were not swept yet are replaced by the new one.
// minutes must not exceed MaxDurationMinutes.
func (s *PunishmentStore) Apply(memberID, communityID string, kind Kind, minutes int, reason, moderatorID string, now time.Time) (PunishmentRecord, bool) {
	length := time.Duration(minutes) * time.Minute

	if kind == KindMute {
		if existing, ok := s.activeMute(memberID, communityID, now); ok {
			existing.ExpiresAt = existing.ExpiresAt.Add(length)
			existing.Reason = reason
			existing.ModeratorID = moderatorID
			s.byID[existing.ID] = existing
			return existing, true
		}
	}

	id := s.ids.unique(memberID, now)

	p := PunishmentRecord{
		ID:          id,
		MemberID:    memberID,
		CommunityID: communityID,
		ModeratorID: moderatorID,
		Reason:      reason,
		Kind:        kind,
		CreatedAt:   now,
		ExpiresAt:   now.Add(length),
	}
	s.byID[id] = p
	return p, false
}

// activeMute returns the member's unexpired mute, dropping any stale ones so
// at most one mute record is left for the pair.
func (s *PunishmentStore) activeMute(memberID, communityID string, now time.Time) (PunishmentRecord, bool) {
	var (
		active PunishmentRecord
		found  bool
	)
	for id, p := range s.byID {
		if p.MemberID != memberID || p.CommunityID != communityID || p.Kind != KindMute {
			continue
		}
		if !p.ExpiresAt.After(now) {
			delete(s.byID, id)
			continue
		}
		active, found = p, true
	}
	return active, found
}

func (s *PunishmentStore) has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Get looks up a punishment by id.
func (s *PunishmentStore) Get(id string) (PunishmentRecord, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// RemoveByID deletes a punishment and returns it.
func (s *PunishmentStore) RemoveByID(id string) (PunishmentRecord, bool) {
	p, ok := s.byID[id]
	if ok {
		delete(s.byID, id)
	}
	return p, ok
}

// RemoveForMember deletes every punishment of the given kind held by the
// member in the community, expired or not.
func (s *PunishmentStore) RemoveForMember(memberID, communityID string, kind Kind) []PunishmentRecord {
	var removed []PunishmentRecord
	for id, p := range s.byID {
		if p.MemberID == memberID && p.CommunityID == communityID && p.Kind == kind {
			removed = append(removed, p)
			delete(s.byID, id)
		}
	}
	sortByExpiry(removed)
	return removed
}

// ActiveForMember lists the member's unexpired punishments, soonest expiry first.
func (s *PunishmentStore) ActiveForMember(memberID, communityID string, now time.Time) []PunishmentRecord {
	var out []PunishmentRecord
	for _, p := range s.byID {
		if p.MemberID == memberID && p.CommunityID == communityID && p.ExpiresAt.After(now) {
			out = append(out, p)
		}
	}
	sortByExpiry(out)
	return out
}

// Active lists every unexpired punishment, soonest expiry first.
func (s *PunishmentStore) Active(now time.Time) []PunishmentRecord {
	out := make([]PunishmentRecord, 0, len(s.byID))
	for _, p := range s.byID {
		if p.ExpiresAt.After(now) {
			out = append(out, p)
		}
	}
	sortByExpiry(out)
	return out
}

// SweepExpired removes and returns every punishment whose expiry is at or
// before now.
func (s *PunishmentStore) SweepExpired(now time.Time) []PunishmentRecord {
	var expired []PunishmentRecord
	for id, p := range s.byID {
		if !p.ExpiresAt.After(now) {
			expired = append(expired, p)
			delete(s.byID, id)
		}
	}
	sortByExpiry(expired)
	return expired
}

// Len is the number of stored punishments.
func (s *PunishmentStore) Len() int {
	return len(s.byID)
}

func (s *PunishmentStore) snapshot() map[string]PunishmentRecord {
	return clonePunishments(s.byID)
}

func (s *PunishmentStore) restore(state map[string]PunishmentRecord) {
	s.byID = state
}

func clonePunishments(in map[string]PunishmentRecord) map[string]PunishmentRecord {
	out := make(map[string]PunishmentRecord, len(in))
	for id, p := range in {
		out[id] = p
	}
	return out
}

func sortByExpiry(list []PunishmentRecord) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].ExpiresAt.Equal(list[j].ExpiresAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].ExpiresAt.Before(list[j].ExpiresAt)
	})
}
