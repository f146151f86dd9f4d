package monitor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coursekit/coursekit-backend/internal/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Event types published on a test's monitor channel.
const (
	EventAttemptStarted   = "ATTEMPT_STARTED"
	EventResponseRecorded = "RESPONSE_RECORDED"
	EventAttemptSubmitted = "ATTEMPT_SUBMITTED"
	EventAttemptGraded    = "ATTEMPT_GRADED"
)

// Event is one attempt-progress notification streamed to instructors.
type Event struct {
	Type          string     `json:"type"`
	TestID        uuid.UUID  `json:"test_id"`
	AttemptID     uuid.UUID  `json:"attempt_id"`
	UserID        uuid.UUID  `json:"user_id"`
	QuestionID    *uuid.UUID `json:"question_id,omitempty"`
	AnsweredCount *int       `json:"answered_count,omitempty"`
	TotalScore    *float64   `json:"total_score,omitempty"`
	At            time.Time  `json:"at"`
}

// Publisher fans attempt-progress events out over Redis PubSub so any
// server instance can serve the monitor stream.
type Publisher struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewPublisher creates a new Publisher.
func NewPublisher(rdb *redis.Client, log zerolog.Logger) *Publisher {
	return &Publisher{
		rdb: rdb,
		log: log.With().Str("component", "monitor").Logger(),
	}
}

// Publish sends an event on the test's monitor channel. Best-effort:
// monitoring must never fail the write path, so errors are only logged.
func (p *Publisher) Publish(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		p.log.Error().Err(err).Msg("marshal monitor event")
		return
	}
	channel := config.CacheKey.TestMonitorChannel(ev.TestID.String())
	if err := p.rdb.Publish(ctx, channel, raw).Err(); err != nil {
		p.log.Warn().Err(err).Str("test_id", ev.TestID.String()).Msg("publish monitor event")
	}
}

// Subscribe opens a PubSub subscription on the test's monitor channel.
// The caller owns the returned subscription and must Close it.
func (p *Publisher) Subscribe(ctx context.Context, testID uuid.UUID) *redis.PubSub {
	return p.rdb.Subscribe(ctx, config.CacheKey.TestMonitorChannel(testID.String()))
}
