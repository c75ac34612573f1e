package moderation

import (
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// SpamWindow is the trailing window the rate detector looks at.
	SpamWindow = 5 * time.Second
	// SpamThreshold is the message count in SpamWindow that is still allowed.
	SpamThreshold = 5
	// FloodThreshold is the number of line breaks a message may contain.
	FloodThreshold = 10
	// DefaultTrackedMembers bounds how many member windows the rate detector keeps.
	DefaultTrackedMembers = 10000
)

const (
	ReasonSpam  = "Enviar mensajes demasiado rápido"
	ReasonFlood = "Saltos de línea excesivos"
)

// RateDetector flags members sending more than SpamThreshold messages within
// SpamWindow. Windows of the least recently active members are evicted once
// the tracked set is full.
type RateDetector struct {
	window    time.Duration
	threshold int
	windows   *lru.Cache[string, []time.Time]
}

// NewRateDetector tracks at most size members. A size below 1 uses
// DefaultTrackedMembers.
func NewRateDetector(size int) *RateDetector {
	if size < 1 {
		size = DefaultTrackedMembers
	}
	// lru.New only fails on a non-positive size.
	windows, _ := lru.New[string, []time.Time](size)
	return &RateDetector{
		window:    SpamWindow,
		threshold: SpamThreshold,
		windows:   windows,
	}
}

// Observe records a message from memberID at ts and returns a reason when the
// member crossed the threshold. A triggered window is cleared.
func (d *RateDetector) Observe(memberID string, ts time.Time) (string, bool) {
	prev, _ := d.windows.Get(memberID)

	recent := make([]time.Time, 0, len(prev)+1)
	for _, t := range prev {
		if ts.Sub(t) < d.window {
			recent = append(recent, t)
		}
	}
	recent = append(recent, ts)

	if len(recent) > d.threshold {
		d.windows.Remove(memberID)
		return ReasonSpam, true
	}
	d.windows.Add(memberID, recent)
	return "", false
}

// Tracked is the number of member windows currently held.
func (d *RateDetector) Tracked() int {
	return d.windows.Len()
}

// FloodDetector flags messages with too many line breaks.
type FloodDetector struct {
	threshold int
}

func NewFloodDetector() *FloodDetector {
	return &FloodDetector{threshold: FloodThreshold}
}

// Inspect returns a reason when text has more than FloodThreshold line breaks.
func (d *FloodDetector) Inspect(text string) (string, bool) {
	if strings.Count(text, "\n") > d.threshold {
		return ReasonFlood, true
	}
	return "", false
}
