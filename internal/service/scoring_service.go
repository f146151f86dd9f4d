package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/coursekit/coursekit-backend/internal/monitor"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ScoringService finalizes attempts and assembles results. Finalization is
// a single atomic conditional update in storage; this service adds the
// ownership scoping, pass/fail derivation and the results join.
type ScoringService struct {
	tests    TestStore
	attempts AttemptStore
	resps    ResponseStore
	events   ProgressPublisher
	grace    time.Duration
	log      zerolog.Logger
}

// NewScoringService creates a new ScoringService.
func NewScoringService(
	tests TestStore,
	attempts AttemptStore,
	resps ResponseStore,
	events ProgressPublisher,
	grace time.Duration,
	log zerolog.Logger,
) *ScoringService {
	return &ScoringService{
		tests:    tests,
		attempts: attempts,
		resps:    resps,
		events:   events,
		grace:    grace,
		log:      log.With().Str("component", "scoring_service").Logger(),
	}
}

// Finalize performs the one-way submit transition and returns the score
// summary. A repeated call fails with model.ErrAlreadySubmitted.
func (s *ScoringService) Finalize(ctx context.Context, testID, attemptID, userID uuid.UUID) (*model.AttemptSummary, error) {
	attempt, err := s.attempts.GetByIDAndUser(ctx, attemptID, userID)
	if err != nil {
		return nil, err
	}
	if attempt.TestID != testID {
		return nil, model.ErrNotFound
	}

	test, err := s.tests.GetByID(ctx, attempt.TestID)
	if err != nil {
		return nil, fmt.Errorf("load test: %w", err)
	}

	score, err := s.attempts.Finalize(ctx, attempt.ID)
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, monitor.Event{
		Type:       monitor.EventAttemptSubmitted,
		TestID:     attempt.TestID,
		AttemptID:  attempt.ID,
		UserID:     userID,
		TotalScore: &score.TotalScore,
	})

	return buildSummary(score, model.AttemptStatusCompleted, test.PassingScore), nil
}

// Results returns the final score and the per-question review. Blocked
// with model.ErrNotSubmitted while the attempt is still IN_PROGRESS, so
// in-flight scoring never leaks.
func (s *ScoringService) Results(ctx context.Context, testID, attemptID, userID uuid.UUID) (*model.AttemptResult, error) {
	attempt, err := s.attempts.GetByIDAndUser(ctx, attemptID, userID)
	if err != nil {
		return nil, err
	}
	if attempt.TestID != testID {
		return nil, model.ErrNotFound
	}
	if !attempt.Status.Terminal() {
		return nil, model.ErrNotSubmitted
	}

	test, err := s.tests.GetByID(ctx, attempt.TestID)
	if err != nil {
		return nil, fmt.Errorf("load test: %w", err)
	}

	review, err := s.resps.ListReviewByAttempt(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("load review: %w", err)
	}

	score := model.AttemptScore{AttemptID: attempt.ID}
	if attempt.TotalScore != nil {
		score.TotalScore = *attempt.TotalScore
	}
	if attempt.MaxScore != nil {
		score.MaxScore = *attempt.MaxScore
	}
	if attempt.SubmittedAt != nil {
		score.SubmittedAt = *attempt.SubmittedAt
	}

	return &model.AttemptResult{
		Summary: *buildSummary(&score, attempt.Status, test.PassingScore),
		Review:  review,
	}, nil
}

// ExpireOverdue finalizes every IN_PROGRESS attempt whose time limit has
// lapsed. Returns how many attempts were closed. Called by the expiry
// worker; safe to race with client submits because both sides go through
// the same conditional update.
func (s *ScoringService) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	ids, err := s.attempts.ListExpiredIDs(ctx, now, s.grace)
	if err != nil {
		return 0, fmt.Errorf("list expired attempts: %w", err)
	}

	closed := 0
	for _, id := range ids {
		if _, err := s.attempts.Finalize(ctx, id); err != nil {
			if errors.Is(err, model.ErrAlreadySubmitted) {
				continue // Client submit won the race; nothing to do.
			}
			s.log.Error().Err(err).Str("attempt_id", id.String()).Msg("expire attempt")
			continue
		}
		closed++
	}
	return closed, nil
}

func buildSummary(score *model.AttemptScore, status model.AttemptStatus, passingScore float64) *model.AttemptSummary {
	pct := score.Percentage()
	return &model.AttemptSummary{
		AttemptID:   score.AttemptID,
		Status:      status,
		TotalScore:  score.TotalScore,
		MaxScore:    score.MaxScore,
		Percentage:  pct,
		Passed:      pct >= passingScore,
		SubmittedAt: score.SubmittedAt,
	}
}
