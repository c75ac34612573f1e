package enforcement

import (
	"context"
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/metrics"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
)

// Enforcer applies persisted outcomes. Call it after the Service method
// returned successfully; it never mutates moderation state.
type Enforcer struct {
	svc       *moderation.Service
	roles     RoleSink
	notifiers []Notifier
}

func New(svc *moderation.Service, roles RoleSink, notifiers ...Notifier) *Enforcer {
	return &Enforcer{svc: svc, roles: roles, notifiers: notifiers}
}

// Warned handles the outcome of IssueWarning or an automod verdict. trigger
// is nil for moderator-issued warnings.
func (e *Enforcer) Warned(ctx context.Context, out moderation.WarnOutcome, trigger *Trigger) {
	if out.Skipped {
		return
	}

	p := out.Punishment
	e.grant(ctx, p)

	w := out.Warning
	evt := Event{
		Type:            EventWarn,
		CommunityID:     p.CommunityID,
		MemberID:        w.MemberID,
		ModeratorID:     w.ModeratorID,
		Reason:          w.Reason,
		Automatic:       trigger != nil,
		WarnCount:       out.WarnCount,
		DurationMinutes: out.DurationMinutes,
		Merged:          out.Merged,
		Warning:         &w,
		Punishment:      &p,
	}
	if trigger != nil {
		evt.ChannelID = trigger.ChannelID
		evt.Content = clipRunes(trigger.Content, maxTriggerContent)
	}
	e.dispatch(ctx, evt)
}

func clipRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Punished handles the outcome of ApplyManualPunishment.
func (e *Enforcer) Punished(ctx context.Context, out moderation.PunishOutcome) {
	p := out.Punishment
	e.grant(ctx, p)
	e.dispatch(ctx, Event{
		Type:            EventPunish,
		CommunityID:     p.CommunityID,
		MemberID:        p.MemberID,
		ModeratorID:     p.ModeratorID,
		Reason:          p.Reason,
		DurationMinutes: out.DurationMinutes,
		Merged:          out.Merged,
		Punishment:      &p,
	})
}

// Removed handles the outcome of RemovePunishment. communityID is used when
// a warning (which carries no community) was removed.
func (e *Enforcer) Removed(ctx context.Context, communityID string, out moderation.RemovalOutcome) {
	evt := Event{
		Type:        EventRemove,
		CommunityID: communityID,
		ModeratorID: out.ModeratorID,
		Reason:      out.Reason,
	}
	switch {
	case out.Punishment != nil:
		p := *out.Punishment
		e.revokeIfLifted(ctx, p)
		evt.CommunityID = p.CommunityID
		evt.MemberID = p.MemberID
		evt.Punishment = &p
	case out.Warning != nil:
		w := *out.Warning
		evt.MemberID = w.MemberID
		evt.Warning = &w
	default:
		return
	}
	e.dispatch(ctx, evt)
}

// Lifted handles the records returned by RemoveMemberPunishment.
func (e *Enforcer) Lifted(ctx context.Context, records []moderation.PunishmentRecord, reason, moderatorID string) {
	for _, p := range records {
		e.revokeIfLifted(ctx, p)
		e.dispatch(ctx, Event{
			Type:        EventRemove,
			CommunityID: p.CommunityID,
			MemberID:    p.MemberID,
			ModeratorID: moderatorID,
			Reason:      reason,
			Punishment:  &p,
		})
	}
}

// Expired handles the punishments removed by a sweep.
func (e *Enforcer) Expired(ctx context.Context, records []moderation.PunishmentRecord) {
	for _, p := range records {
		e.revokeIfLifted(ctx, p)
		e.dispatch(ctx, Event{
			Type:        EventExpire,
			CommunityID: p.CommunityID,
			MemberID:    p.MemberID,
			Reason:      p.Reason,
			Punishment:  &p,
		})
	}
}

// Reapply grants the roles of every punishment still in force for the
// member, e.g. after they left and rejoined. Returns how many were applied.
func (e *Enforcer) Reapply(ctx context.Context, communityID, memberID string) int {
	active := e.svc.ActiveForMember(communityID, memberID)
	for _, p := range active {
		e.grant(ctx, p)
	}
	return len(active)
}

func (e *Enforcer) grant(ctx context.Context, p moderation.PunishmentRecord) {
	if err := e.roles.Grant(ctx, p); err != nil {
		metrics.EnforcementFailures.WithLabelValues("grant").Inc()
		logger.Error(fmt.Sprintf("No se pudo aplicar el rol de %s a %s: %v", p.Kind, p.MemberID, err), "Enforcement")
	}
}

// revokeIfLifted removes the role unless another punishment of the same
// kind still holds it (bans are never merged, so a member can carry two).
func (e *Enforcer) revokeIfLifted(ctx context.Context, p moderation.PunishmentRecord) {
	for _, other := range e.svc.ActiveForMember(p.CommunityID, p.MemberID) {
		if other.Kind == p.Kind {
			return
		}
	}
	if err := e.roles.Revoke(ctx, p); err != nil {
		metrics.EnforcementFailures.WithLabelValues("revoke").Inc()
		logger.Error(fmt.Sprintf("No se pudo quitar el rol de %s a %s: %v", p.Kind, p.MemberID, err), "Enforcement")
	}
}

func (e *Enforcer) dispatch(ctx context.Context, evt Event) {
	evt.At = e.svc.Now()
	metrics.EventsCounter.WithLabelValues(string(evt.Type), evt.kindLabel()).Inc()

	for _, n := range e.notifiers {
		if err := n.Notify(ctx, evt); err != nil {
			metrics.EnforcementFailures.WithLabelValues("notify").Inc()
			logger.Warn(fmt.Sprintf("Notificación %s fallida: %v", evt.Type, err), "Enforcement")
		}
	}
}
