// Package metrics exposes the bot's prometheus collectors.
package metrics

import (
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var EventsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pancymod_events_total",
	Help: "Moderation events by type (warn, punish, expire, remove)",
}, []string{"type", "kind"})

var AutomodTriggers = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pancymod_automod_triggers_total",
	Help: "Messages flagged by the spam and flood detectors",
}, []string{"reason"})

var EnforcementFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pancymod_enforcement_failures_total",
	Help: "Role, DM and log channel calls that failed",
}, []string{"action"})

var PersistenceFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "pancymod_persistence_failures_total",
	Help: "Mutations rolled back because the backend could not save them",
})

var SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "pancymod_sweep_duration_seconds",
	Help:    "Time spent in one expiry sweep",
	Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
})

var activePunishments = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "pancymod_active_punishments",
	Help: "Punishments currently in force",
}, []string{"kind"})

var storedWarnings = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "pancymod_stored_warnings",
	Help: "Warnings younger than the retention window",
})

var trackedMembers = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "pancymod_automod_tracked_members",
	Help: "Members with a live spam window",
})

// SetStats publishes a Service snapshot to the gauges.
func SetStats(s moderation.Stats) {
	activePunishments.WithLabelValues(string(moderation.KindMute)).Set(float64(s.ActiveMutes))
	activePunishments.WithLabelValues(string(moderation.KindBan)).Set(float64(s.ActiveBans))
	storedWarnings.Set(float64(s.StoredWarnings))
	trackedMembers.Set(float64(s.TrackedMembers))
}
