package inbox

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mindstash/mindstash/internal/events"
)

// Worker drives the Processor in the background: a steady poll tick plus
// a nudge whenever a capture event lands, so fresh captures are picked
// up without waiting a full interval.
type Worker struct {
	proc     *Processor
	bus      *events.Bus
	interval time.Duration
	log      zerolog.Logger
}

// NewWorker constructs a Worker. bus may be nil (poll-only).
func NewWorker(proc *Processor, bus *events.Bus, interval time.Duration, log zerolog.Logger) *Worker {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Worker{proc: proc, bus: bus, interval: interval, log: log}
}

// Run starts the loop until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("inbox worker starting")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var nudge <-chan events.Event
	if w.bus != nil {
		nudge = w.bus.Subscribe()
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("inbox worker stopping")
			return ctx.Err()
		case <-ticker.C:
			w.runOnce(ctx)
		case evt := <-nudge:
			w.log.Debug().Str("item_id", evt.ItemID).Msg("capture event nudge")
			w.runOnce(ctx)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	if _, err := w.proc.ProcessPendingItems(ctx); err != nil {
		// Log and continue; the at-most-one-attempt policy prevents
		// hot-looping on a poisoned item.
		w.log.Error().Err(err).Msg("inbox processPendingItems")
	}
}
