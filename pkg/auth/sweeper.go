package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultSweepSchedule runs the expiry sweep every ten minutes
const DefaultSweepSchedule = "@every 10m"

// Sweeper periodically flags tokens whose expiry has passed so the persisted
// flag catches up with time. Tokens are never deleted; they stay as an audit
// trail.
type Sweeper struct {
	tokens  TokenStore
	clock   clockwork.Clock
	log     *logrus.Logger
	timeout time.Duration
	cron    *cron.Cron

	recorder SweepRecorder
}

// SweepRecorder observes how many tokens each sweep flagged
type SweepRecorder interface {
	RecordTokensFlagged(n int64)
}

// NewSweeper creates a sweeper over the token store
func NewSweeper(tokens TokenStore, clock clockwork.Clock, log *logrus.Logger) *Sweeper {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = logrus.New()
	}
	return &Sweeper{
		tokens:  tokens,
		clock:   clock,
		log:     log,
		timeout: 30 * time.Second,
	}
}

// SetRecorder attaches a recorder notified after every successful sweep
func (s *Sweeper) SetRecorder(recorder SweepRecorder) {
	s.recorder = recorder
}

// Sweep flags every elapsed token once and returns how many were touched
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	n, err := s.tokens.FlagElapsedTokens(ctx, s.clock.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to flag elapsed tokens: %w", err)
	}
	if s.recorder != nil {
		s.recorder.RecordTokensFlagged(n)
	}
	return n, nil
}

// Start schedules Sweep on the given cron spec
func (s *Sweeper) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		n, err := s.Sweep(ctx)
		if err != nil {
			s.log.WithError(err).Error("token sweep failed")
			return
		}
		if n > 0 {
			s.log.WithField("flagged", n).Info("flagged elapsed tokens")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	s.cron = c
	c.Start()
	s.log.WithField("schedule", schedule).Info("token sweeper started")
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish
func (s *Sweeper) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
