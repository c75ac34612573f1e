package enforcement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/metrics"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
)

// DefaultSweepInterval is how often expired punishments are lifted.
const DefaultSweepInterval = 30 * time.Second

// Sweeper periodically expires punishments and lifts their roles.
type Sweeper struct {
	svc      *moderation.Service
	enforcer *Enforcer
	interval time.Duration
}

func NewSweeper(svc *moderation.Service, enforcer *Enforcer, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{svc: svc, enforcer: enforcer, interval: interval}
}

// RunOnce performs a single sweep and applies its result.
func (s *Sweeper) RunOnce(ctx context.Context) (moderation.SweepResult, error) {
	start := time.Now()
	res, err := s.svc.Sweep(ctx)
	metrics.SweepDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		var perr *moderation.PersistenceError
		if errors.As(err, &perr) {
			metrics.PersistenceFailures.Inc()
		}
		logger.Error("Error en el barrido de sanciones: "+err.Error(), "Sweeper")
		return res, err
	}

	if len(res.Expired) > 0 || res.PrunedWarnings > 0 {
		logger.Info(fmt.Sprintf("Barrido: %d sanciones expiradas, %d advertencias caducadas", len(res.Expired), res.PrunedWarnings), "Sweeper")
	}
	s.enforcer.Expired(ctx, res.Expired)
	metrics.SetStats(s.svc.Stats())
	return res, nil
}

// Run sweeps immediately, so punishments that lapsed while the bot was down
// are lifted on startup, then every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	logger.System(fmt.Sprintf("Barrido de sanciones cada %v", s.interval), "Sweeper")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		_, _ = s.RunOnce(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
