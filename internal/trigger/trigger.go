// Package trigger converts external process signals into reload
// notifications. Each SIGHUP received publishes exactly one notification
// onto the shared bus; the listener is absent in static-only mode.
package trigger

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/conneroisu/liveserve/internal/bus"
	"github.com/conneroisu/liveserve/internal/logging"
)

// Listener owns the signal subscription feeding the reload bus.
type Listener struct {
	bus     *bus.Bus
	logger  logging.Logger
	signals chan os.Signal
}

// NewListener subscribes to SIGHUP. Call Run to start forwarding and Stop
// to release the subscription.
func NewListener(b *bus.Bus, logger logging.Logger) *Listener {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP)

	return &Listener{
		bus:     b,
		logger:  logger.WithComponent("trigger"),
		signals: signals,
	}
}

// Run forwards signals until the context is cancelled or the bus is torn
// down. Bus teardown is the designed shutdown path and returns nil.
func (l *Listener) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug(ctx, "signal listener stopping")
			return ctx.Err()
		case <-l.signals:
			if err := l.bus.Publish(); err != nil {
				l.logger.Info(ctx, "reload bus closed, signal listener stopping")
				return nil
			}
			l.logger.Info(ctx, "received hangup signal, reload published")
		}
	}
}

// Stop releases the signal subscription.
func (l *Listener) Stop() {
	signal.Stop(l.signals)
}
