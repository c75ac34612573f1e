package moderation

import (
	"time"
)

// WarningTTL is how long a warning counts towards escalation.
const WarningTTL = 30 * 24 * time.Hour

// WarningStore keeps warnings grouped per member, oldest first. It is not safe
// for concurrent use; Service serializes access.
type WarningStore struct {
	byMember map[string][]WarningRecord
	ids      *IDGenerator
	ttl      time.Duration
}

// NewWarningStore builds a store seeded with previously persisted warnings.
func NewWarningStore(seed map[string][]WarningRecord, ids *IDGenerator) *WarningStore {
	s := &WarningStore{
		byMember: cloneWarnings(seed),
		ids:      ids,
		ttl:      WarningTTL,
	}
	ids.track(s.hasID)
	return s
}

func (s *WarningStore) live(w WarningRecord, now time.Time) bool {
	return now.Sub(w.CreatedAt) <= s.ttl
}

func (s *WarningStore) hasID(id string) bool {
	for _, bucket := range s.byMember {
		for _, w := range bucket {
			if w.ID == id {
				return true
			}
		}
	}
	return false
}

// Add appends a warning and returns it with the member's live count, which
// includes the new warning.
func (s *WarningStore) Add(memberID, reason, moderatorID string, now time.Time) (WarningRecord, int) {
	id := s.ids.unique(memberID, now)

	w := WarningRecord{
		ID:          id,
		MemberID:    memberID,
		Reason:      reason,
		ModeratorID: moderatorID,
		CreatedAt:   now,
	}
	s.byMember[memberID] = append(s.byMember[memberID], w)
	return w, s.LiveCount(memberID, now)
}

// LiveCount counts the member's warnings that have not aged out.
func (s *WarningStore) LiveCount(memberID string, now time.Time) int {
	n := 0
	for _, w := range s.byMember[memberID] {
		if s.live(w, now) {
			n++
		}
	}
	return n
}

// List returns the member's live warnings, oldest first.
func (s *WarningStore) List(memberID string, now time.Time) []WarningRecord {
	out := make([]WarningRecord, 0, len(s.byMember[memberID]))
	for _, w := range s.byMember[memberID] {
		if s.live(w, now) {
			out = append(out, w)
		}
	}
	return out
}

// PruneExpired drops aged-out warnings and empty buckets. It returns how many
// warnings were removed.
func (s *WarningStore) PruneExpired(now time.Time) int {
	removed := 0
	for member, bucket := range s.byMember {
		kept := bucket[:0:0]
		for _, w := range bucket {
			if s.live(w, now) {
				kept = append(kept, w)
			}
		}
		removed += len(bucket) - len(kept)
		if len(kept) == 0 {
			delete(s.byMember, member)
			continue
		}
		s.byMember[member] = kept
	}
	return removed
}

// RemoveByID deletes a single warning wherever it lives.
func (s *WarningStore) RemoveByID(id string) (WarningRecord, bool) {
	for member, bucket := range s.byMember {
		for i, w := range bucket {
			if w.ID != id {
				continue
			}
			rest := append(bucket[:i:i], bucket[i+1:]...)
			if len(rest) == 0 {
				delete(s.byMember, member)
			} else {
				s.byMember[member] = rest
			}
			return w, true
		}
	}
	return WarningRecord{}, false
}

// Len is the total number of stored warnings, live or not.
func (s *WarningStore) Len() int {
	n := 0
	for _, bucket := range s.byMember {
		n += len(bucket)
	}
	return n
}

func (s *WarningStore) snapshot() map[string][]WarningRecord {
	return cloneWarnings(s.byMember)
}

func (s *WarningStore) restore(state map[string][]WarningRecord) {
	s.byMember = state
}

func cloneWarnings(in map[string][]WarningRecord) map[string][]WarningRecord {
	out := make(map[string][]WarningRecord, len(in))
	for member, bucket := range in {
		if len(bucket) == 0 {
			continue
		}
		out[member] = append([]WarningRecord(nil), bucket...)
	}
	return out
}
