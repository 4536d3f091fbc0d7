// Package expiry runs the scheduled sweep that moves active agreements past
// their end date into the expired state.
package expiry

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Expirer is the single service operation the sweep invokes.
type Expirer interface {
	ExpireOverdue(ctx context.Context) (int64, error)
}

const sweepTimeout = 30 * time.Second

// Sweeper schedules the expiry sweep on a cron expression.
type Sweeper struct {
	svc  Expirer
	log  zerolog.Logger
	cron *cron.Cron
}

// New builds a sweeper running on the given cron schedule (e.g. "@hourly").
func New(svc Expirer, schedule string, log zerolog.Logger) (*Sweeper, error) {
	s := &Sweeper{
		svc:  svc,
		log:  log,
		cron: cron.New(),
	}
	if _, err := s.cron.AddFunc(schedule, s.Run); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins the schedule in its own goroutine.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Run executes one sweep. Exported so operators can trigger it out of band.
func (s *Sweeper) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	n, err := s.svc.ExpireOverdue(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("expiry sweep failed")
		return
	}
	if n > 0 {
		s.log.Info().Int64("expired", n).Msg("expiry sweep completed")
	}
}
