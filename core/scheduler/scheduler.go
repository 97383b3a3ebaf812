// Package scheduler drives the periodic work of the core: the elevator
// movement tick, the reservation expiration sweep and the waitlist
// promotion sweep, each on its own cadence.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/sarkarn/parkinglotmgmt/core/logger"
)

// Config holds the sweep cadences.
type Config struct {
	TickInterval    time.Duration `koanf:"tick_interval"`
	ExpirationSweep time.Duration `koanf:"expiration_sweep"`
	PromotionSweep  time.Duration `koanf:"promotion_sweep"`
}

// SetDefaults fills unset cadences.
func (c *Config) SetDefaults() {
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.ExpirationSweep <= 0 {
		c.ExpirationSweep = time.Minute
	}
	if c.PromotionSweep <= 0 {
		// Promotion runs on a longer cadence than expiration so freed
		// capacity accumulates between passes.
		c.PromotionSweep = 5 * c.ExpirationSweep
	}
}

// Ticker is the elevator-side periodic hook.
type Ticker interface {
	ProcessOperations()
}

// Sweeper is the reservation-side periodic hook.
type Sweeper interface {
	SweepExpired() int
	PromoteWaitlisted() int
}

// Scheduler runs the periodic hooks until its context is cancelled.
type Scheduler struct {
	cfg     Config
	ticker  Ticker
	sweeper Sweeper
	log     logger.Logger
}

// New creates a scheduler. Either hook may be nil; its loop is skipped.
func New(cfg Config, ticker Ticker, sweeper Sweeper, log logger.Logger) (*Scheduler, error) {
	if log == nil {
		return nil, fmt.Errorf("scheduler: nil logger provided to New")
	}
	if ticker == nil && sweeper == nil {
		return nil, fmt.Errorf("scheduler: no hooks provided to New")
	}
	cfg.SetDefaults()
	return &Scheduler{cfg: cfg, ticker: ticker, sweeper: sweeper, log: log}, nil
}

// Run blocks until ctx is done, firing each hook at its cadence. Expiration
// runs before promotion on a shared instant so freed capacity is handed to
// the waitlists in the same pass.
func (s *Scheduler) Run(ctx context.Context) {
	tick := time.NewTicker(s.cfg.TickInterval)
	defer tick.Stop()
	expire := time.NewTicker(s.cfg.ExpirationSweep)
	defer expire.Stop()
	promote := time.NewTicker(s.cfg.PromotionSweep)
	defer promote.Stop()

	s.log.Infof("scheduler running: tick %v, expiration %v, promotion %v",
		s.cfg.TickInterval, s.cfg.ExpirationSweep, s.cfg.PromotionSweep)
	for {
		select {
		case <-ctx.Done():
			s.log.Infof("scheduler stopped: %v", ctx.Err())
			return
		case <-tick.C:
			if s.ticker != nil {
				s.ticker.ProcessOperations()
			}
		case <-expire.C:
			if s.sweeper != nil {
				if n := s.sweeper.SweepExpired(); n > 0 {
					s.log.Infof("expired %d reservations", n)
				}
			}
		case <-promote.C:
			if s.sweeper != nil {
				if n := s.sweeper.PromoteWaitlisted(); n > 0 {
					s.log.Infof("promoted %d reservations", n)
				}
			}
		}
	}
}
