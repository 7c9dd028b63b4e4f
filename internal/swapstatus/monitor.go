package swapstatus

import (
	"context"
	"time"
)

// Monitor polls the collector on an interval and delivers snapshots on a
// channel. Polling is idempotent and side-effect free, so there are no
// cancellation semantics beyond the context: a snapshot in flight when the
// context ends is simply dropped.
type Monitor struct {
	Collector *Collector
	Interval  time.Duration
}

// NewMonitor returns a monitor polling every interval; intervals below one
// second are raised to one second.
func NewMonitor(c *Collector, interval time.Duration) *Monitor {
	if interval < time.Second {
		interval = time.Second
	}
	return &Monitor{Collector: c, Interval: interval}
}

// Run polls until ctx ends, sending one snapshot immediately and then one per
// interval. The channel is closed on return.
func (m *Monitor) Run(ctx context.Context, out chan<- Snapshot) {
	defer close(out)

	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()

	send := func() {
		snap := m.Collector.Collect(ctx)
		select {
		case out <- snap:
		case <-ctx.Done():
		}
	}

	send()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			send()
		}
	}
}
