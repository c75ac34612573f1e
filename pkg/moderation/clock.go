package moderation

import (
	"strconv"
	"sync/atomic"
	"time"
)

// Clock supplies the current time to the engine.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// IDGenerator produces record ids of the form "<epoch-ms>-<member suffix>-<seq>".
// The sequence makes ids issued in the same millisecond distinct.
// Stores sharing a generator register their lookups with it, so an id is
// never handed out twice across warnings and punishments, including ids
// loaded from storage after a restart.
type IDGenerator struct {
	seq   atomic.Uint64
	taken []func(id string) bool
}

// track registers a lookup consulted by unique. Call it before the generator
// is shared between goroutines.
func (g *IDGenerator) track(exists func(id string) bool) {
	g.taken = append(g.taken, exists)
}

// unique returns an id from Next that no tracked store holds yet.
func (g *IDGenerator) unique(memberID string, now time.Time) string {
	id := g.Next(memberID, now)
	for g.inUse(id) {
		id = g.Next(memberID, now)
	}
	return id
}

func (g *IDGenerator) inUse(id string) bool {
	for _, exists := range g.taken {
		if exists(id) {
			return true
		}
	}
	return false
}

// Next returns a new id for memberID created at now.
func (g *IDGenerator) Next(memberID string, now time.Time) string {
	suffix := memberID
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	n := g.seq.Add(1)
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix + "-" + strconv.FormatUint(n, 36)
}
