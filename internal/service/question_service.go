package service

import (
	"context"
	"fmt"

	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/coursekit/coursekit-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// QuestionService handles question authoring. All operations are scoped to
// the test's author and blocked once the test has attempts, so a score can
// never be computed against a question set that changed under it.
type QuestionService struct {
	tests     *repository.TestRepository
	questions *repository.QuestionRepository
	log       zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(
	tests *repository.TestRepository,
	questions *repository.QuestionRepository,
	log zerolog.Logger,
) *QuestionService {
	return &QuestionService{
		tests:     tests,
		questions: questions,
		log:       log.With().Str("component", "question_service").Logger(),
	}
}

// Add appends a question to a draft test.
func (s *QuestionService) Add(ctx context.Context, testID, callerID uuid.UUID, role model.UserRole, req *model.AddQuestionRequest) (*model.Question, error) {
	if err := s.editable(ctx, testID, callerID, role); err != nil {
		return nil, err
	}

	q := buildQuestion(testID, req)
	if err := validateQuestionShape(q); err != nil {
		return nil, err
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

// List retrieves a test's questions for its author, correctness included.
func (s *QuestionService) List(ctx context.Context, testID, callerID uuid.UUID, role model.UserRole) ([]model.Question, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if role != model.RoleAdmin && test.AuthorID != callerID {
		return nil, model.ErrNotFound
	}
	return s.questions.ListByTest(ctx, testID)
}

// Delete removes a question from a draft test.
func (s *QuestionService) Delete(ctx context.Context, testID, questionID, callerID uuid.UUID, role model.UserRole) error {
	if err := s.editable(ctx, testID, callerID, role); err != nil {
		return err
	}
	return s.questions.Delete(ctx, questionID, testID)
}

// Replace swaps the test's full question set in one transaction. Authoring
// UIs use this to save a whole edited paper at once.
func (s *QuestionService) Replace(ctx context.Context, testID, callerID uuid.UUID, role model.UserRole, reqs []model.AddQuestionRequest) ([]model.Question, error) {
	if err := s.editable(ctx, testID, callerID, role); err != nil {
		return nil, err
	}

	questions := make([]model.Question, 0, len(reqs))
	for i := range reqs {
		q := buildQuestion(testID, &reqs[i])
		if err := validateQuestionShape(q); err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	if err := s.questions.ReplaceByTest(ctx, testID, questions); err != nil {
		return nil, fmt.Errorf("replace questions: %w", err)
	}
	return questions, nil
}

// editable verifies authorship and the structural lock.
func (s *QuestionService) editable(ctx context.Context, testID, callerID uuid.UUID, role model.UserRole) error {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return err
	}
	if role != model.RoleAdmin && test.AuthorID != callerID {
		return model.ErrNotFound
	}
	locked, err := s.tests.HasAttempts(ctx, testID)
	if err != nil {
		return fmt.Errorf("check attempts: %w", err)
	}
	if locked {
		return model.ErrTestLocked
	}
	return nil
}

func buildQuestion(testID uuid.UUID, req *model.AddQuestionRequest) *model.Question {
	q := &model.Question{
		TestID:   testID,
		Prompt:   req.Prompt,
		Kind:     model.QuestionKind(req.Kind),
		Points:   req.Points,
		OrderNum: req.OrderNum,
	}
	for _, opt := range req.Options {
		q.Options = append(q.Options, model.QuestionOption{
			Text:      opt.Text,
			IsCorrect: opt.IsCorrect,
			OrderNum:  opt.OrderNum,
		})
	}
	return q
}

// validateQuestionShape rejects option lists on text questions and option
// sets a choice question could never score against.
func validateQuestionShape(q *model.Question) error {
	if !q.Kind.IsChoice() {
		if len(q.Options) > 0 {
			return fmt.Errorf("%w: %s questions carry no options", model.ErrNotPublishable, q.Kind)
		}
		return nil
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: choice questions need at least two options", model.ErrNotPublishable)
	}
	correct := 0
	for _, opt := range q.Options {
		if opt.IsCorrect {
			correct++
		}
	}
	if q.Kind == model.QuestionKindSingleChoice && correct != 1 {
		return fmt.Errorf("%w: single-choice questions need exactly one correct option", model.ErrNotPublishable)
	}
	if q.Kind == model.QuestionKindMultiSelect && correct == 0 {
		return fmt.Errorf("%w: multi-select questions need at least one correct option", model.ErrNotPublishable)
	}
	return nil
}
