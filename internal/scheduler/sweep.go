package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const sessionSweepJobName = "theme_editor_session_sweep"

// SessionSweeper closes editor sessions that have gone idle.
type SessionSweeper interface {
	Sweep(ctx context.Context, idle time.Duration) int
	Len() int
}

// RegisterSessionSweep flushes and closes idle theme editor sessions on cronExpr.
// Each run is bounded by timeout.
func RegisterSessionSweep(sweeper SessionSweeper, cronExpr string, idle, timeout time.Duration) error {
	svc, err := ServiceInstance()
	if err != nil {
		return err
	}
	return svc.RegisterSessionSweep(sweeper, cronExpr, idle, timeout)
}

func (s *Service) RegisterSessionSweep(sweeper SessionSweeper, cronExpr string, idle, timeout time.Duration) error {
	_, err := s.AddJob(sessionSweepJobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		sweepIdleSessions(ctx, sweeper, idle)
	})
	return err
}

func sweepIdleSessions(ctx context.Context, sweeper SessionSweeper, idle time.Duration) int {
	before := sweeper.Len()
	closed := sweeper.Sweep(ctx, idle)
	if closed > 0 {
		log.Info().
			Int("closed", closed).
			Int("open_before", before).
			Dur("idle", idle).
			Msg("Swept idle theme editor sessions")
	}
	return closed
}
