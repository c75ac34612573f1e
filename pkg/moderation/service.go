package moderation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Options tunes a Service. Zero values fall back to the package defaults.
type Options struct {
	Clock          Clock
	TrackedMembers int
	DebounceWindow time.Duration
}

// Service is the single authority over warnings and punishments. Every
// method holds one lock for its whole duration, including persistence.
type Service struct {
	mu sync.Mutex

	clock       Clock
	backend     Backend
	ids         *IDGenerator
	warnings    *WarningStore
	punishments *PunishmentStore
	debounce    *DebounceGuard
	rate        *RateDetector
	flood       *FloodDetector
}

// NewService loads the persisted state from backend and returns a ready Service.
func NewService(ctx context.Context, backend Backend, opts Options) (*Service, error) {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.DebounceWindow <= 0 {
		opts.DebounceWindow = DebounceWindow
	}

	snap, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load moderation state: %w", err)
	}

	ids := &IDGenerator{}
	return &Service{
		clock:       opts.Clock,
		backend:     backend,
		ids:         ids,
		warnings:    NewWarningStore(snap.Warnings, ids),
		punishments: NewPunishmentStore(snap.Punishments, ids),
		debounce:    NewDebounceGuard(opts.DebounceWindow),
		rate:        NewRateDetector(opts.TrackedMembers),
		flood:       NewFloodDetector(),
	}, nil
}

// Now is the service clock's current time.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// WarnRequest asks for a warning to be issued. Automatic requests come from
// the detectors and are subject to the debounce window.
type WarnRequest struct {
	CommunityID string
	MemberID    string
	Reason      string
	ModeratorID string
	Automatic   bool
}

// WarnOutcome describes what IssueWarning did. When Skipped is true nothing
// else is set.
type WarnOutcome struct {
	Skipped         bool
	Warning         WarningRecord
	WarnCount       int
	Kind            Kind
	DurationMinutes int
	Punishment      PunishmentRecord
	Merged          bool
}

// IssueWarning records a warning and applies the escalated punishment.
func (s *Service) IssueWarning(ctx context.Context, req WarnRequest) (WarnOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueWarning(ctx, req)
}

func (s *Service) issueWarning(ctx context.Context, req WarnRequest) (WarnOutcome, error) {
	if strings.TrimSpace(req.MemberID) == "" {
		return WarnOutcome{}, ErrMissingMember
	}

	now := s.clock.Now()
	if req.Automatic && !s.debounce.Allow(req.MemberID, now) {
		return WarnOutcome{Skipped: true}, nil
	}

	prevW, prevP := s.warnings.snapshot(), s.punishments.snapshot()

	warning, count := s.warnings.Add(req.MemberID, req.Reason, req.ModeratorID, now)
	kind, minutes := Escalate(count)
	if minutes <= 0 {
		s.warnings.restore(prevW)
		return WarnOutcome{}, ErrInvalidDuration
	}
	punishment, merged := s.punishments.Apply(req.MemberID, req.CommunityID, kind, minutes, req.Reason, req.ModeratorID, now)

	if err := s.commit(ctx, "warning", prevW, prevP, true, true); err != nil {
		return WarnOutcome{}, err
	}

	if req.Automatic {
		s.debounce.Record(req.MemberID, now)
	}

	return WarnOutcome{
		Warning:         warning,
		WarnCount:       count,
		Kind:            kind,
		DurationMinutes: minutes,
		Punishment:      punishment,
		Merged:          merged,
	}, nil
}

// PunishRequest is a moderator-issued punishment of an explicit length.
type PunishRequest struct {
	CommunityID     string
	MemberID        string
	Kind            Kind
	DurationMinutes int
	Reason          string
	ModeratorID     string
}

type PunishOutcome struct {
	Punishment      PunishmentRecord
	DurationMinutes int
	Merged          bool
}

// ApplyManualPunishment applies a punishment without touching warnings.
func (s *Service) ApplyManualPunishment(ctx context.Context, req PunishRequest) (PunishOutcome, error) {
	if strings.TrimSpace(req.MemberID) == "" {
		return PunishOutcome{}, ErrMissingMember
	}
	if !req.Kind.Valid() {
		return PunishOutcome{}, ErrInvalidKind
	}
	if req.DurationMinutes <= 0 || req.DurationMinutes > MaxDurationMinutes {
		return PunishOutcome{}, ErrInvalidDuration
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	prevP := s.punishments.snapshot()
	p, merged := s.punishments.Apply(req.MemberID, req.CommunityID, req.Kind, req.DurationMinutes, req.Reason, req.ModeratorID, now)

	if err := s.commit(ctx, "punishment", nil, prevP, false, true); err != nil {
		return PunishOutcome{}, err
	}
	return PunishOutcome{Punishment: p, DurationMinutes: req.DurationMinutes, Merged: merged}, nil
}

// RemovalOutcome holds whichever record RemovePunishment deleted.
type RemovalOutcome struct {
	Punishment  *PunishmentRecord
	Warning     *WarningRecord
	Reason      string
	ModeratorID string
}

// RemovePunishment deletes the punishment with the given id, or failing that
// the warning with that id. ErrNotFound when neither exists.
func (s *Service) RemovePunishment(ctx context.Context, id, reason, moderatorID string) (RemovalOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := RemovalOutcome{Reason: reason, ModeratorID: moderatorID}

	prevP := s.punishments.snapshot()
	if p, ok := s.punishments.RemoveByID(id); ok {
		if err := s.commit(ctx, "remove punishment", nil, prevP, false, true); err != nil {
			return RemovalOutcome{}, err
		}
		out.Punishment = &p
		return out, nil
	}

	prevW := s.warnings.snapshot()
	if w, ok := s.warnings.RemoveByID(id); ok {
		if err := s.commit(ctx, "remove warning", prevW, nil, true, false); err != nil {
			return RemovalOutcome{}, err
		}
		out.Warning = &w
		return out, nil
	}

	return RemovalOutcome{}, ErrNotFound
}

// RemoveMemberPunishment lifts every punishment of kind held by the member.
// ErrNotFound when the member has none.
func (s *Service) RemoveMemberPunishment(ctx context.Context, communityID, memberID string, kind Kind) ([]PunishmentRecord, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prevP := s.punishments.snapshot()
	removed := s.punishments.RemoveForMember(memberID, communityID, kind)
	if len(removed) == 0 {
		return nil, ErrNotFound
	}
	if err := s.commit(ctx, "remove punishment", nil, prevP, false, true); err != nil {
		return nil, err
	}
	return removed, nil
}

// SweepResult lists what a sweep removed.
type SweepResult struct {
	Expired        []PunishmentRecord
	PrunedWarnings int
}

// Sweep removes expired punishments and aged-out warnings. Running it again
// with nothing new expired is a no-op.
func (s *Service) Sweep(ctx context.Context) (SweepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	prevW, prevP := s.warnings.snapshot(), s.punishments.snapshot()

	expired := s.punishments.SweepExpired(now)
	pruned := s.warnings.PruneExpired(now)
	s.debounce.Prune(now)

	if err := s.commit(ctx, "sweep", prevW, prevP, pruned > 0, len(expired) > 0); err != nil {
		return SweepResult{}, err
	}
	return SweepResult{Expired: expired, PrunedWarnings: pruned}, nil
}

// Message is an incoming chat message as seen by the detectors.
type Message struct {
	CommunityID string
	MemberID    string
	ChannelID   string
	Text        string
	Timestamp   time.Time
}

// MessageVerdict is the result of ObserveMessage. When Triggered is set the
// caller should delete the message; Outcome is nil if the warning was
// debounced.
type MessageVerdict struct {
	Triggered     bool
	Reason        string
	DeleteMessage bool
	Outcome       *WarnOutcome
}

// ObserveMessage feeds a message to the spam and flood detectors and issues an
// automatic warning when one of them triggers.
func (s *Service) ObserveMessage(ctx context.Context, msg Message) (MessageVerdict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := msg.Timestamp
	if ts.IsZero() {
		ts = s.clock.Now()
	}

	reason, triggered := s.rate.Observe(msg.MemberID, ts)
	if !triggered {
		reason, triggered = s.flood.Inspect(msg.Text)
	}
	if !triggered {
		return MessageVerdict{}, nil
	}

	verdict := MessageVerdict{Triggered: true, Reason: reason, DeleteMessage: true}
	out, err := s.issueWarning(ctx, WarnRequest{
		CommunityID: msg.CommunityID,
		MemberID:    msg.MemberID,
		Reason:      reason,
		Automatic:   true,
	})
	if err != nil {
		return verdict, err
	}
	if !out.Skipped {
		verdict.Outcome = &out
	}
	return verdict, nil
}

// Warnings lists the member's live warnings, oldest first.
func (s *Service) Warnings(memberID string) []WarningRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warnings.List(memberID, s.clock.Now())
}

// WarnCount is the member's live warning count.
func (s *Service) WarnCount(memberID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warnings.LiveCount(memberID, s.clock.Now())
}

// ActiveForMember lists the member's unexpired punishments in the community.
func (s *Service) ActiveForMember(communityID, memberID string) []PunishmentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.punishments.ActiveForMember(memberID, communityID, s.clock.Now())
}

// ActivePunishments lists every unexpired punishment.
func (s *Service) ActivePunishments() []PunishmentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.punishments.Active(s.clock.Now())
}

// Stats is a point-in-time summary of the stores.
type Stats struct {
	ActiveMutes    int `json:"activeMutes"`
	ActiveBans     int `json:"activeBans"`
	StoredWarnings int `json:"storedWarnings"`
	TrackedMembers int `json:"trackedMembers"`
}

func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		StoredWarnings: s.warnings.Len(),
		TrackedMembers: s.rate.Tracked(),
	}
	for _, p := range s.punishments.Active(s.clock.Now()) {
		if p.Kind == KindBan {
			st.ActiveBans++
		} else {
			st.ActiveMutes++
		}
	}
	return st
}

// commit saves the stores flagged as changed. On failure both stores are put
// back to prevW/prevP and a PersistenceError is returned.
func (s *Service) commit(ctx context.Context, op string, prevW map[string][]WarningRecord, prevP map[string]PunishmentRecord, warnings, punishments bool) error {
	rollback := func() {
		if warnings {
			s.warnings.restore(prevW)
		}
		if punishments {
			s.punishments.restore(prevP)
		}
	}

	if warnings {
		if err := s.backend.SaveWarnings(ctx, s.warnings.snapshot()); err != nil {
			rollback()
			return &PersistenceError{Op: op, Err: err}
		}
	}
	if punishments {
		if err := s.backend.SavePunishments(ctx, s.punishments.snapshot()); err != nil {
			rollback()
			if warnings {
				// Best effort: the warnings were already written.
				_ = s.backend.SaveWarnings(ctx, s.warnings.snapshot())
			}
			return &PersistenceError{Op: op, Err: err}
		}
	}
	return nil
}
