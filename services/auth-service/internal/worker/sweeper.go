package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const sweepTimeout = 30 * time.Second

// ExpiredTokenStore removes password reset tokens whose expiry has passed.
type ExpiredTokenStore interface {
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// ResetTokenSweeper periodically clears expired password reset tokens.
// Expiry is still enforced on every read; the sweep only keeps documents tidy.
type ResetTokenSweeper struct {
	cron   *cron.Cron
	store  ExpiredTokenStore
	logger *zerolog.Logger
	now    func() time.Time
}

// NewResetTokenSweeper schedules the sweep according to a standard cron spec
// such as "@every 15m" or "0 * * * *".
func NewResetTokenSweeper(schedule string, store ExpiredTokenStore, logger *zerolog.Logger) (*ResetTokenSweeper, error) {
	s := &ResetTokenSweeper{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		store:  store,
		logger: logger,
		now:    time.Now,
	}

	if _, err := s.cron.AddFunc(schedule, s.Sweep); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *ResetTokenSweeper) Start() {
	s.logger.Info().Msg("starting reset token sweeper")
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *ResetTokenSweeper) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("reset token sweeper stopped")
}

// Sweep clears every expired token once.
func (s *ResetTokenSweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	cleared, err := s.store.ClearExpiredResetTokens(ctx, s.now())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to clear expired reset tokens")
		return
	}

	if cleared > 0 {
		s.logger.Info().Int64("cleared", cleared).Msg("cleared expired reset tokens")
	}
}
