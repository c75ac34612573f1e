package moderation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestWarningStoreTTL(t *testing.T) {
	s := NewWarningStore(nil, &IDGenerator{})

	for i := 0; i < 3; i++ {
		s.Add("111122223333", "spam", "mod", epoch.Add(time.Duration(i)*time.Minute))
	}
	assert.Equal(t, 3, s.LiveCount("111122223333", epoch.Add(time.Hour)))

	later := epoch.Add(WarningTTL + time.Hour)
	assert.Equal(t, 0, s.LiveCount("111122223333", later))

	assert.Equal(t, 3, s.PruneExpired(later))
	_, present := s.byMember["111122223333"]
	assert.False(t, present, "empty bucket should be removed")
}

func TestWarningStoreUniqueIDs(t *testing.T) {
	s := NewWarningStore(nil, &IDGenerator{})
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		w, count := s.Add("42", "r", "", epoch)
		require.False(t, seen[w.ID], "duplicate id %s", w.ID)
		seen[w.ID] = true
		assert.Equal(t, i+1, count)
	}
}

func TestWarningStoreRemoveByID(t *testing.T) {
	s := NewWarningStore(nil, &IDGenerator{})
	first, _ := s.Add("a", "one", "", epoch)
	s.Add("a", "two", "", epoch)

	removed, ok := s.RemoveByID(first.ID)
	require.True(t, ok)
	assert.Equal(t, "one", removed.Reason)
	assert.Equal(t, 1, s.LiveCount("a", epoch))

	_, ok = s.RemoveByID(first.ID)
	assert.False(t, ok)
}

func TestMuteStacking(t *testing.T) {
	s := NewPunishmentStore(nil, &IDGenerator{})

	first, merged := s.Apply("m", "g", KindMute, 10, "a", "mod", epoch)
	require.False(t, merged)
	assert.Equal(t, epoch.Add(10*time.Minute), first.ExpiresAt)

	second, merged := s.Apply("m", "g", KindMute, 30, "b", "mod2", epoch.Add(5*time.Minute))
	require.True(t, merged)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, epoch.Add(40*time.Minute), second.ExpiresAt)
	assert.Equal(t, "b", second.Reason)
	assert.Equal(t, "mod2", second.ModeratorID)
	assert.Len(t, s.ActiveForMember("m", "g", epoch.Add(5*time.Minute)), 1)

	// A mute that ran out but was not swept yet is replaced, not extended.
	later := epoch.Add(time.Hour)
	third, merged := s.Apply("m", "g", KindMute, 10, "c", "mod", later)
	require.False(t, merged)
	assert.NotEqual(t, first.ID, third.ID)
	assert.Equal(t, later, third.CreatedAt)
	assert.Equal(t, later.Add(10*time.Minute), third.ExpiresAt)
	assert.Equal(t, 1, s.Len())
	_, stale := s.Get(first.ID)
	assert.False(t, stale)
}

func TestMuteEndingNowIsNotExtended(t *testing.T) {
	s := NewPunishmentStore(nil, &IDGenerator{})

	first, _ := s.Apply("m", "g", KindMute, 10, "a", "mod", epoch)
	second, merged := s.Apply("m", "g", KindMute, 5, "b", "mod", first.ExpiresAt)
	assert.False(t, merged)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.ExpiresAt.Add(5*time.Minute), second.ExpiresAt)
	assert.Len(t, s.ActiveForMember("m", "g", first.ExpiresAt), 1)
}

func TestIDsAreUniqueAcrossStores(t *testing.T) {
	ids := &IDGenerator{}
	// After a restart the counter starts over, so the first ids it issues
	// can already exist in storage.
	clash := (&IDGenerator{}).Next("member", epoch)
	punishments := NewPunishmentStore(map[string]PunishmentRecord{
		clash: {ID: clash, MemberID: "member", Kind: KindMute, ExpiresAt: epoch.Add(time.Hour)},
	}, ids)
	warnings := NewWarningStore(nil, ids)

	w, _ := warnings.Add("member", "spam", "", epoch)
	assert.NotEqual(t, clash, w.ID)

	p, _ := punishments.Apply("member", "g", KindBan, 10, "", "", epoch)
	assert.NotEqual(t, clash, p.ID)
	assert.NotEqual(t, w.ID, p.ID)
}

func TestBansAreNotMerged(t *testing.T) {
	s := NewPunishmentStore(nil, &IDGenerator{})
	a, _ := s.Apply("m", "g", KindBan, 10080, "a", "mod", epoch)
	b, merged := s.Apply("m", "g", KindBan, 10080, "b", "mod", epoch)
	assert.False(t, merged)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, s.Len())
}

func TestMutesAreScopedPerCommunity(t *testing.T) {
	s := NewPunishmentStore(nil, &IDGenerator{})
	s.Apply("m", "g1", KindMute, 10, "", "", epoch)
	_, merged := s.Apply("m", "g2", KindMute, 10, "", "", epoch)
	assert.False(t, merged)
}

func TestSweepExpired(t *testing.T) {
	s := NewPunishmentStore(nil, &IDGenerator{})
	s.Apply("a", "g", KindMute, 10, "", "", epoch)
	s.Apply("b", "g", KindMute, 20, "", "", epoch)
	s.Apply("c", "g", KindBan, 30, "", "", epoch)

	expired := s.SweepExpired(epoch.Add(20 * time.Minute))
	require.Len(t, expired, 2)
	assert.Equal(t, "a", expired[0].MemberID)
	assert.Equal(t, "b", expired[1].MemberID)

	assert.Empty(t, s.SweepExpired(epoch.Add(20*time.Minute)))
	active := s.Active(epoch.Add(20 * time.Minute))
	require.Len(t, active, 1)
	assert.Equal(t, "c", active[0].MemberID)
}

func TestSweepOrderIndependent(t *testing.T) {
	build := func() *PunishmentStore {
		s := NewPunishmentStore(nil, &IDGenerator{})
		for i := 1; i <= 10; i++ {
			s.Apply(string(rune('a'+i)), "g", KindBan, i*10, "", "", epoch)
		}
		return s
	}

	once := build()
	once.SweepExpired(epoch.Add(55 * time.Minute))

	stepped := build()
	for m := 0; m <= 55; m += 5 {
		stepped.SweepExpired(epoch.Add(time.Duration(m) * time.Minute))
	}

	assert.Equal(t, once.Active(epoch), stepped.Active(epoch))
	assert.Equal(t, 5, once.Len())
}

func TestRemoveForMember(t *testing.T) {
	s := NewPunishmentStore(nil, &IDGenerator{})
	s.Apply("m", "g", KindMute, 10, "", "", epoch)
	s.Apply("m", "g", KindBan, 10, "", "", epoch)

	removed := s.RemoveForMember("m", "g", KindMute)
	require.Len(t, removed, 1)
	assert.Equal(t, KindMute, removed[0].Kind)
	assert.Equal(t, 1, s.Len())
}

func TestDebounceGuard(t *testing.T) {
	g := NewDebounceGuard(DebounceWindow)
	assert.True(t, g.Allow("m", epoch))

	g.Record("m", epoch)
	assert.False(t, g.Allow("m", epoch.Add(2*time.Second)))
	assert.True(t, g.Allow("other", epoch.Add(2*time.Second)))
	assert.True(t, g.Allow("m", epoch.Add(DebounceWindow)))

	g.Prune(epoch.Add(DebounceWindow))
	assert.Empty(t, g.last)
}

func TestRateDetector(t *testing.T) {
	d := NewRateDetector(0)

	triggers := 0
	for i := 0; i < 6; i++ {
		if _, hit := d.Observe("m", epoch.Add(time.Duration(i)*500*time.Millisecond)); hit {
			triggers++
		}
	}
	assert.Equal(t, 1, triggers)
	_, tracked := d.windows.Get("m")
	assert.False(t, tracked, "window should be cleared after a trigger")
}

func TestRateDetectorWindowSlides(t *testing.T) {
	d := NewRateDetector(0)
	for i := 0; i < 20; i++ {
		_, hit := d.Observe("m", epoch.Add(time.Duration(i)*time.Second))
		assert.False(t, hit, "one message per second never exceeds the limit")
	}
}

func TestRateDetectorBounded(t *testing.T) {
	d := NewRateDetector(2)
	d.Observe("a", epoch)
	d.Observe("b", epoch)
	d.Observe("c", epoch)
	assert.Equal(t, 2, d.Tracked())
}

func TestFloodDetector(t *testing.T) {
	d := NewFloodDetector()

	_, hit := d.Inspect("line\nline\nline")
	assert.False(t, hit)

	_, hit = d.Inspect("a\n\n\n\n\n\n\n\n\n\nb")
	assert.False(t, hit, "exactly ten breaks is allowed")

	reason, hit := d.Inspect("a\n\n\n\n\n\n\n\n\n\n\nb")
	assert.True(t, hit)
	assert.Equal(t, ReasonFlood, reason)
}
