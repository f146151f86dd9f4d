package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/coursekit/coursekit-backend/internal/monitor"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ResponseService records answers: one response per (attempt, question),
// scored synchronously at write time, upserted so client retries are safe.
type ResponseService struct {
	tests     TestStore
	questions QuestionStore
	attempts  AttemptStore
	resps     ResponseStore
	events    ProgressPublisher
	grace     time.Duration
	log       zerolog.Logger
}

// NewResponseService creates a new ResponseService. grace is added to a
// test's time limit before a late write is rejected.
func NewResponseService(
	tests TestStore,
	questions QuestionStore,
	attempts AttemptStore,
	resps ResponseStore,
	events ProgressPublisher,
	grace time.Duration,
	log zerolog.Logger,
) *ResponseService {
	return &ResponseService{
		tests:     tests,
		questions: questions,
		attempts:  attempts,
		resps:     resps,
		events:    events,
		grace:     grace,
		log:       log.With().Str("component", "response_service").Logger(),
	}
}

// Submit records (or overwrites) the caller's answer to one question.
// Returns the stored response including correctness and awarded points.
//
// The status check here is advisory; the authoritative check is the
// conditional update inside ResponseStore.UpsertInProgress, which runs at
// write time under the attempt's row lock.
func (s *ResponseService) Submit(ctx context.Context, testID, attemptID, userID uuid.UUID, req *model.SubmitResponseRequest) (*model.QuestionResponse, error) {
	attempt, err := s.attempts.GetByIDAndUser(ctx, attemptID, userID)
	if err != nil {
		return nil, err
	}
	if attempt.TestID != testID {
		return nil, model.ErrNotFound
	}
	if attempt.Status.Terminal() {
		return nil, model.ErrAttemptNotWritable
	}

	test, err := s.tests.GetByID(ctx, attempt.TestID)
	if err != nil {
		return nil, fmt.Errorf("load test: %w", err)
	}

	// Server-side timer: a write past the limit closes the attempt
	// instead of extending it.
	if attemptExpired(test, attempt, time.Now(), s.grace) {
		if _, err := s.attempts.Finalize(ctx, attempt.ID); err != nil && !errors.Is(err, model.ErrAlreadySubmitted) {
			s.log.Error().Err(err).
				Str("attempt_id", attempt.ID.String()).
				Msg("force-finalize expired attempt")
		}
		return nil, model.ErrAttemptNotWritable
	}

	question, err := s.questions.GetByIDAndTest(ctx, req.QuestionID, attempt.TestID)
	if err != nil {
		return nil, err
	}

	var answer model.AnswerPayload
	if err := json.Unmarshal(req.Answer, &answer); err != nil {
		return nil, model.ErrInvalidAnswerShape
	}

	outcome, err := ScoreAnswer(question, answer)
	if err != nil {
		return nil, err
	}

	resp := &model.QuestionResponse{
		AttemptID:     attempt.ID,
		QuestionID:    question.ID,
		Answer:        answer,
		IsCorrect:     outcome.IsCorrect,
		PointsAwarded: outcome.Points,
	}
	if err := s.resps.UpsertInProgress(ctx, resp); err != nil {
		return nil, err
	}

	answered, err := s.resps.CountByAttempt(ctx, attempt.ID)
	if err != nil {
		// The write itself succeeded; progress count is monitoring-only.
		s.log.Warn().Err(err).Str("attempt_id", attempt.ID.String()).Msg("count responses")
	} else {
		qid := question.ID
		s.events.Publish(ctx, monitor.Event{
			Type:          monitor.EventResponseRecorded,
			TestID:        attempt.TestID,
			AttemptID:     attempt.ID,
			UserID:        userID,
			QuestionID:    &qid,
			AnsweredCount: &answered,
		})
	}

	return resp, nil
}
