package moderation

import (
	"time"
)

// DebounceWindow is the cooldown between two automatic escalations of one member.
const DebounceWindow = 10 * time.Second

// DebounceGuard suppresses automatic escalations that arrive too close to the
// previous one for the same member.
type DebounceGuard struct {
	window time.Duration
	last   map[string]time.Time
}

func NewDebounceGuard(window time.Duration) *DebounceGuard {
	return &DebounceGuard{
		window: window,
		last:   make(map[string]time.Time),
	}
}

// Allow reports whether an automatic action for memberID may proceed at now.
func (g *DebounceGuard) Allow(memberID string, now time.Time) bool {
	last, ok := g.last[memberID]
	return !ok || now.Sub(last) >= g.window
}

// Record marks an automatic action for memberID at now.
func (g *DebounceGuard) Record(memberID string, now time.Time) {
	g.last[memberID] = now
}

// Prune forgets entries whose window has passed.
func (g *DebounceGuard) Prune(now time.Time) {
	for member, last := range g.last {
		if now.Sub(last) >= g.window {
			delete(g.last, member)
		}
	}
}
