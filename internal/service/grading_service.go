package service

import (
	"context"
	"fmt"

	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/coursekit/coursekit-backend/internal/monitor"
	"github.com/coursekit/coursekit-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// GradingService handles the instructor side of submitted attempts:
// roster views and manual grading of text responses.
type GradingService struct {
	tests     *repository.TestRepository
	questions *repository.QuestionRepository
	attempts  *repository.AttemptRepository
	resps     *repository.ResponseRepository
	events    *monitor.Publisher
	log       zerolog.Logger
}

// NewGradingService creates a new GradingService.
func NewGradingService(
	tests *repository.TestRepository,
	questions *repository.QuestionRepository,
	attempts *repository.AttemptRepository,
	resps *repository.ResponseRepository,
	events *monitor.Publisher,
	log zerolog.Logger,
) *GradingService {
	return &GradingService{
		tests:     tests,
		questions: questions,
		attempts:  attempts,
		resps:     resps,
		events:    events,
		log:       log.With().Str("component", "grading_service").Logger(),
	}
}

// ListAttempts retrieves all attempts for an authored test, newest first.
func (s *GradingService) ListAttempts(ctx context.Context, testID, callerID uuid.UUID, role model.UserRole, page, perPage int) ([]repository.AttemptWithUser, int64, error) {
	if _, err := s.authoredTest(ctx, testID, callerID, role); err != nil {
		return nil, 0, err
	}
	return s.attempts.ListByTest(ctx, testID, page, perPage)
}

// AttemptDetail retrieves one attempt with its full per-question review,
// correctness included, for grading.
func (s *GradingService) AttemptDetail(ctx context.Context, testID, attemptID, callerID uuid.UUID, role model.UserRole) (*model.TestAttempt, []model.ResponseReview, error) {
	if _, err := s.authoredTest(ctx, testID, callerID, role); err != nil {
		return nil, nil, err
	}
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return nil, nil, err
	}
	if attempt.TestID != testID {
		return nil, nil, model.ErrNotFound
	}
	review, err := s.resps.ListReviewByAttempt(ctx, attemptID)
	if err != nil {
		return nil, nil, fmt.Errorf("load review: %w", err)
	}
	return attempt, review, nil
}

// Grade assigns points to manually graded responses of a submitted attempt
// and moves it to GRADED. Auto-scored questions are rejected with
// model.ErrNotGradable; points above the question's value with
// model.ErrInvalidGrade. Regrading a GRADED attempt is allowed.
func (s *GradingService) Grade(ctx context.Context, testID, attemptID, callerID uuid.UUID, role model.UserRole, grades []model.GradeResponseRequest) (*model.AttemptSummary, error) {
	test, err := s.authoredTest(ctx, testID, callerID, role)
	if err != nil {
		return nil, err
	}
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.TestID != testID {
		return nil, model.ErrNotFound
	}
	if !attempt.Status.Terminal() {
		return nil, model.ErrNotSubmitted
	}

	for _, g := range grades {
		question, err := s.questions.GetByIDAndTest(ctx, g.QuestionID, testID)
		if err != nil {
			return nil, err
		}
		if question.Kind.AutoScored() {
			return nil, model.ErrNotGradable
		}
		if g.Points > question.Points {
			return nil, model.ErrInvalidGrade
		}
	}

	score, err := s.attempts.ApplyGrades(ctx, attemptID, grades)
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, monitor.Event{
		Type:       monitor.EventAttemptGraded,
		TestID:     testID,
		AttemptID:  attemptID,
		UserID:     attempt.UserID,
		TotalScore: &score.TotalScore,
	})
	s.log.Info().
		Str("attempt_id", attemptID.String()).
		Int("graded", len(grades)).
		Msg("attempt graded")

	return buildSummary(score, model.AttemptStatusGraded, test.PassingScore), nil
}

func (s *GradingService) authoredTest(ctx context.Context, testID, callerID uuid.UUID, role model.UserRole) (*model.Test, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if role != model.RoleAdmin && test.AuthorID != callerID {
		return nil, model.ErrNotFound
	}
	return test, nil
}
