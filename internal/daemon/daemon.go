package daemon

import (
	"context"
	"log"
	"time"

	"github.com/alphatrack/alphatrack/internal/app/tracker"
)

// Daemon runs the periodic background checks: the hourly automatic cycle
// rollover and the per-minute gauge refresh. Neither does any work beyond
// the tracker call; all state changes flow through the tracker as usual.
type Daemon struct {
	tracker  *tracker.Tracker
	rollover time.Duration
	refresh  time.Duration
}

// New creates a daemon around tr with the configured intervals.
func New(tr *tracker.Tracker, cfg TimersConfig) *Daemon {
	return &Daemon{
		tracker:  tr,
		rollover: cfg.RolloverCheck.Duration,
		refresh:  cfg.Refresh.Duration,
	}
}

// Run blocks until ctx is cancelled, firing the periodic checks.
func (d *Daemon) Run(ctx context.Context) {
	rollover := time.NewTicker(d.rollover)
	defer rollover.Stop()
	refresh := time.NewTicker(d.refresh)
	defer refresh.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-rollover.C:
			advanced, err := d.tracker.AutoAdvance()
			if err != nil {
				log.Printf("daemon: auto cycle advance: %v", err)
				continue
			}
			if advanced {
				log.Printf("daemon: advanced to cycle %d", d.tracker.CycleStatus().CurrentCycle)
			}
		case <-refresh.C:
			d.tracker.RefreshGauges()
		}
	}
}
