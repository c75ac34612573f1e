package enforcement

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

const guild = "guild-1"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type roleCall struct {
	member string
	kind   moderation.Kind
}

type fakeRoles struct {
	granted []roleCall
	revoked []roleCall
	err     error
}

func (f *fakeRoles) Grant(_ context.Context, p moderation.PunishmentRecord) error {
	f.granted = append(f.granted, roleCall{p.MemberID, p.Kind})
	return f.err
}

func (f *fakeRoles) Revoke(_ context.Context, p moderation.PunishmentRecord) error {
	f.revoked = append(f.revoked, roleCall{p.MemberID, p.Kind})
	return f.err
}

type recordingNotifier struct {
	events []Event
}

func (r *recordingNotifier) Notify(_ context.Context, evt Event) error {
	r.events = append(r.events, evt)
	return nil
}

type failingNotifier struct{}

func (failingNotifier) Notify(context.Context, Event) error { return errors.New("discord down") }

func newFixture(t *testing.T) (*moderation.Service, *fakeClock, *fakeRoles, *recordingNotifier, *Enforcer) {
	t.Helper()
	clock := &fakeClock{now: epoch}
	svc, err := moderation.NewService(context.Background(), moderation.NewMemoryBackend(), moderation.Options{Clock: clock})
	require.NoError(t, err)

	roles := &fakeRoles{}
	rec := &recordingNotifier{}
	return svc, clock, roles, rec, New(svc, roles, failingNotifier{}, rec)
}

func TestWarnedGrantsRoleAndNotifies(t *testing.T) {
	svc, _, roles, rec, enf := newFixture(t)
	ctx := context.Background()

	out, err := svc.IssueWarning(ctx, moderation.WarnRequest{CommunityID: guild, MemberID: "u1", Reason: "spam", ModeratorID: "mod"})
	require.NoError(t, err)
	enf.Warned(ctx, out, nil)

	assert.Equal(t, []roleCall{{"u1", moderation.KindMute}}, roles.granted)
	require.Len(t, rec.events, 1)

	evt := rec.events[0]
	assert.Equal(t, EventWarn, evt.Type)
	assert.Equal(t, guild, evt.CommunityID)
	assert.Equal(t, "mod", evt.ModeratorID)
	assert.Equal(t, 1, evt.WarnCount)
	assert.Equal(t, 10, evt.DurationMinutes)
	require.NotNil(t, evt.Punishment)
	assert.Equal(t, out.Punishment.ID, evt.Punishment.ID)
	assert.Equal(t, epoch, evt.At)
}

func TestWarnedCarriesTrigger(t *testing.T) {
	svc, _, _, rec, enf := newFixture(t)
	ctx := context.Background()

	out, err := svc.IssueWarning(ctx, moderation.WarnRequest{CommunityID: guild, MemberID: "u1", Reason: "flood", Automatic: true})
	require.NoError(t, err)
	long := strings.Repeat("ñ", 600)
	enf.Warned(ctx, out, &Trigger{ChannelID: "c1", Content: long})

	require.Len(t, rec.events, 1)
	evt := rec.events[0]
	assert.True(t, evt.Automatic)
	assert.Equal(t, "c1", evt.ChannelID)
	assert.Equal(t, 500, utf8.RuneCountInString(evt.Content))
	assert.True(t, strings.HasPrefix(long, evt.Content))
}

func TestWarnedSkippedDoesNothing(t *testing.T) {
	_, _, roles, rec, enf := newFixture(t)

	enf.Warned(context.Background(), moderation.WarnOutcome{Skipped: true}, &Trigger{ChannelID: "c1"})

	assert.Empty(t, roles.granted)
	assert.Empty(t, rec.events)
}

func TestGrantFailureStillNotifies(t *testing.T) {
	svc, _, roles, rec, enf := newFixture(t)
	roles.err = errors.New("missing permissions")
	ctx := context.Background()

	out, err := svc.ApplyManualPunishment(ctx, moderation.PunishRequest{
		CommunityID: guild, MemberID: "u1", Kind: moderation.KindBan, DurationMinutes: 60, Reason: "raid", ModeratorID: "mod",
	})
	require.NoError(t, err)
	enf.Punished(ctx, out)

	require.Len(t, rec.events, 1)
	assert.Equal(t, EventPunish, rec.events[0].Type)
	assert.Equal(t, 60, rec.events[0].DurationMinutes)
}

func TestExpiredKeepsRoleWhileAnotherBanHolds(t *testing.T) {
	svc, clock, roles, rec, enf := newFixture(t)
	ctx := context.Background()
	sweeper := NewSweeper(svc, enf, time.Minute)

	for _, minutes := range []int{10, 60} {
		_, err := svc.ApplyManualPunishment(ctx, moderation.PunishRequest{
			CommunityID: guild, MemberID: "u1", Kind: moderation.KindBan, DurationMinutes: minutes, Reason: "raid",
		})
		require.NoError(t, err)
	}

	clock.Advance(11 * time.Minute)
	res, err := sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Len(t, res.Expired, 1)
	assert.Empty(t, roles.revoked, "second ban still holds the role")
	require.Len(t, rec.events, 1)
	assert.Equal(t, EventExpire, rec.events[0].Type)

	clock.Advance(time.Hour)
	_, err = sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, []roleCall{{"u1", moderation.KindBan}}, roles.revoked)
}

func TestRemovedWarningUsesCommunity(t *testing.T) {
	svc, _, roles, rec, enf := newFixture(t)
	ctx := context.Background()

	out, err := svc.IssueWarning(ctx, moderation.WarnRequest{CommunityID: guild, MemberID: "u1", Reason: "spam"})
	require.NoError(t, err)

	removal, err := svc.RemovePunishment(ctx, out.Warning.ID, "error", "mod")
	require.NoError(t, err)
	enf.Removed(ctx, guild, removal)

	assert.Empty(t, roles.revoked)
	require.Len(t, rec.events, 1)
	evt := rec.events[0]
	assert.Equal(t, EventRemove, evt.Type)
	assert.Equal(t, guild, evt.CommunityID)
	assert.Equal(t, "u1", evt.MemberID)
	require.NotNil(t, evt.Warning)
	assert.Nil(t, evt.Punishment)
}

func TestRemovedPunishmentRevokes(t *testing.T) {
	svc, _, roles, rec, enf := newFixture(t)
	ctx := context.Background()

	out, err := svc.IssueWarning(ctx, moderation.WarnRequest{CommunityID: guild, MemberID: "u1", Reason: "spam"})
	require.NoError(t, err)

	removal, err := svc.RemovePunishment(ctx, out.Punishment.ID, "apelación", "mod")
	require.NoError(t, err)
	enf.Removed(ctx, guild, removal)

	assert.Equal(t, []roleCall{{"u1", moderation.KindMute}}, roles.revoked)
	require.Len(t, rec.events, 1)
	assert.Equal(t, "apelación", rec.events[0].Reason)
}

func TestLiftedRevokesAndNotifies(t *testing.T) {
	svc, _, roles, rec, enf := newFixture(t)
	ctx := context.Background()

	_, err := svc.ApplyManualPunishment(ctx, moderation.PunishRequest{
		CommunityID: guild, MemberID: "u1", Kind: moderation.KindMute, DurationMinutes: 30,
	})
	require.NoError(t, err)

	removed, err := svc.RemoveMemberPunishment(ctx, guild, "u1", moderation.KindMute)
	require.NoError(t, err)
	enf.Lifted(ctx, removed, "perdonado", "mod")

	assert.Equal(t, []roleCall{{"u1", moderation.KindMute}}, roles.revoked)
	require.Len(t, rec.events, 1)
	assert.Equal(t, "mod", rec.events[0].ModeratorID)
	assert.Equal(t, "perdonado", rec.events[0].Reason)
}

func TestReapply(t *testing.T) {
	svc, _, roles, _, enf := newFixture(t)
	ctx := context.Background()

	_, err := svc.ApplyManualPunishment(ctx, moderation.PunishRequest{
		CommunityID: guild, MemberID: "u1", Kind: moderation.KindMute, DurationMinutes: 30,
	})
	require.NoError(t, err)
	roles.granted = nil

	assert.Equal(t, 1, enf.Reapply(ctx, guild, "u1"))
	assert.Equal(t, []roleCall{{"u1", moderation.KindMute}}, roles.granted)
	assert.Equal(t, 0, enf.Reapply(ctx, guild, "u2"))
}

func TestSweeperRunStopsOnCancel(t *testing.T) {
	svc, _, _, _, enf := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- NewSweeper(svc, enf, time.Hour).Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
