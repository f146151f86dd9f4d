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

// AttemptService manages the attempt lifecycle: starting attempts under
// the allowed-attempts policy and reporting in-flight progress.
type AttemptService struct {
	tests    TestStore
	attempts AttemptStore
	enrolls  EnrollmentStore
	resps    ResponseStore
	events   ProgressPublisher
	log      zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	tests TestStore,
	attempts AttemptStore,
	enrolls EnrollmentStore,
	resps ResponseStore,
	events ProgressPublisher,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		tests:    tests,
		attempts: attempts,
		enrolls:  enrolls,
		resps:    resps,
		events:   events,
		log:      log.With().Str("component", "attempt_service").Logger(),
	}
}

// Start creates an IN_PROGRESS attempt for the user, or resumes the
// existing one. created reports whether a new attempt row was inserted.
//
// Policy order matters: an existing active attempt is resumed before the
// allowed-attempts count is consulted, so a user can never be locked out
// of an attempt they already hold.
func (s *AttemptService) Start(ctx context.Context, testID, userID uuid.UUID) (*model.TestAttempt, bool, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return nil, false, err
	}
	if test.Status != model.TestStatusPublished {
		return nil, false, model.ErrTestNotAvailable
	}

	if test.CourseID != nil {
		enrolled, err := s.enrolls.IsEnrolled(ctx, *test.CourseID, userID)
		if err != nil {
			return nil, false, fmt.Errorf("check enrollment: %w", err)
		}
		if !enrolled {
			return nil, false, model.ErrNotEnrolled
		}
	}

	if active, err := s.attempts.GetActive(ctx, testID, userID); err == nil {
		return active, false, nil
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, false, fmt.Errorf("check active attempt: %w", err)
	}

	if test.AllowedAttempts != nil {
		count, err := s.attempts.CountByTestAndUser(ctx, testID, userID)
		if err != nil {
			return nil, false, fmt.Errorf("count attempts: %w", err)
		}
		if count >= *test.AllowedAttempts {
			return nil, false, model.ErrAttemptLimitExceeded
		}
	}

	attempt := &model.TestAttempt{TestID: testID, UserID: userID}
	created, err := s.attempts.Create(ctx, attempt)
	if err != nil {
		return nil, false, fmt.Errorf("create attempt: %w", err)
	}
	if !created {
		// Lost a concurrent start; the other request's row is ours too.
		existing, err := s.attempts.GetActive(ctx, testID, userID)
		if err != nil {
			return nil, false, fmt.Errorf("concurrent start detected, fetch failed: %w", err)
		}
		return existing, false, nil
	}

	s.events.Publish(ctx, monitor.Event{
		Type:      monitor.EventAttemptStarted,
		TestID:    testID,
		AttemptID: attempt.ID,
		UserID:    userID,
	})

	return attempt, true, nil
}

// State returns the progress view of an attempt: status, elapsed and
// remaining time, and how many questions have recorded answers.
func (s *AttemptService) State(ctx context.Context, testID, attemptID, userID uuid.UUID) (*model.AttemptState, error) {
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

	answered, err := s.resps.CountByAttempt(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("count responses: %w", err)
	}

	now := time.Now()
	state := &model.AttemptState{
		AttemptID:      attempt.ID,
		Status:         attempt.Status,
		StartedAt:      attempt.StartedAt,
		ElapsedSeconds: now.Sub(attempt.StartedAt).Seconds(),
		AnsweredCount:  answered,
		QuestionCount:  test.QuestionCount,
	}

	if test.TimeLimitSeconds != nil {
		remaining := time.Until(attempt.StartedAt.Add(time.Duration(*test.TimeLimitSeconds) * time.Second)).Seconds()
		if remaining < 0 {
			remaining = 0
		}
		state.RemainingSeconds = &remaining
	}

	return state, nil
}

// ListMine returns the caller's attempt history across all tests.
func (s *AttemptService) ListMine(ctx context.Context, userID uuid.UUID) ([]model.TestAttempt, error) {
	return s.attempts.ListByUser(ctx, userID)
}
