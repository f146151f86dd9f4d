package worker

import (
	"context"
	"time"

	"github.com/coursekit/coursekit-backend/internal/service"
	"github.com/rs/zerolog"
)

// ExpiryWorker force-finalizes IN_PROGRESS attempts whose test time limit
// has lapsed. The server-side timer: a client that goes silent near the
// deadline still gets its attempt closed and scored.
type ExpiryWorker struct {
	scoring  *service.ScoringService
	interval time.Duration
	log      zerolog.Logger
}

// NewExpiryWorker creates a new ExpiryWorker.
func NewExpiryWorker(scoring *service.ScoringService, interval time.Duration, log zerolog.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		scoring:  scoring,
		interval: interval,
		log:      log.With().Str("component", "expiry_worker").Logger(),
	}
}

// Start begins the sweep loop. Call in a goroutine.
func (w *ExpiryWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("Worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpiryWorker) sweep(ctx context.Context) {
	closed, err := w.scoring.ExpireOverdue(ctx, time.Now())
	if err != nil {
		w.log.Error().Err(err).Msg("Sweep error")
		return
	}
	if closed > 0 {
		w.log.Info().Int("closed", closed).Msg("Expired attempts finalized")
	}
}
