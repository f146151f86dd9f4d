package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/coursekit/coursekit-backend/internal/config"
	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/coursekit/coursekit-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const paperCacheTTL = 10 * time.Minute

// TestService handles test authoring, the publish transition and the
// student-facing paper. Published papers are cached in Redis with
// correctness flags already stripped, so a cache hit can never leak an
// answer key.
type TestService struct {
	tests     *repository.TestRepository
	questions *repository.QuestionRepository
	courses   *repository.CourseRepository
	enrolls   *repository.EnrollmentRepository
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewTestService creates a new TestService.
func NewTestService(
	tests *repository.TestRepository,
	questions *repository.QuestionRepository,
	courses *repository.CourseRepository,
	enrolls *repository.EnrollmentRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *TestService {
	return &TestService{
		tests:     tests,
		questions: questions,
		courses:   courses,
		enrolls:   enrolls,
		rdb:       rdb,
		log:       log.With().Str("component", "test_service").Logger(),
	}
}

// Create inserts a new DRAFT test. When the test is linked to a course,
// the course must exist and belong to the author (admins bypass the
// ownership check).
func (s *TestService) Create(ctx context.Context, authorID uuid.UUID, role model.UserRole, req *model.CreateTestRequest) (*model.Test, error) {
	if req.CourseID != nil {
		course, err := s.courses.GetByID(ctx, *req.CourseID)
		if err != nil {
			return nil, err
		}
		if role != model.RoleAdmin && course.OwnerID != authorID {
			return nil, model.ErrNotFound
		}
	}
	if req.ModuleID != nil && req.CourseID == nil {
		return nil, model.ErrNotFound
	}

	test := &model.Test{
		CourseID:         req.CourseID,
		ModuleID:         req.ModuleID,
		AuthorID:         authorID,
		Title:            req.Title,
		Kind:             model.TestKind(req.Kind),
		TimeLimitSeconds: req.TimeLimitSeconds,
		PassingScore:     req.PassingScore,
		AllowedAttempts:  req.AllowedAttempts,
		RandomizeOrder:   req.RandomizeOrder,
		Status:           model.TestStatusDraft,
	}
	if err := s.tests.Create(ctx, test); err != nil {
		return nil, fmt.Errorf("create test: %w", err)
	}
	return test, nil
}

// Get retrieves a test for its author. Admins can read any test.
func (s *TestService) Get(ctx context.Context, testID, callerID uuid.UUID, role model.UserRole) (*model.Test, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if role != model.RoleAdmin && test.AuthorID != callerID {
		return nil, model.ErrNotFound
	}
	return test, nil
}

// ListByAuthor retrieves the caller's tests with pagination.
func (s *TestService) ListByAuthor(ctx context.Context, authorID uuid.UUID, page, perPage int) ([]model.Test, int64, error) {
	return s.tests.ListByAuthor(ctx, authorID, page, perPage)
}

// Update modifies test settings. Once any attempt exists the test is
// structurally locked: only title and passing score may still change,
// everything that alters what students face returns model.ErrTestLocked.
func (s *TestService) Update(ctx context.Context, testID, callerID uuid.UUID, role model.UserRole, req *model.UpdateTestRequest) (*model.Test, error) {
	test, err := s.Get(ctx, testID, callerID, role)
	if err != nil {
		return nil, err
	}

	structural := (req.Kind != "" && model.TestKind(req.Kind) != test.Kind) ||
		(req.TimeLimitSeconds != nil && !intPtrEqual(req.TimeLimitSeconds, test.TimeLimitSeconds)) ||
		(req.AllowedAttempts != nil && !intPtrEqual(req.AllowedAttempts, test.AllowedAttempts)) ||
		(req.RandomizeOrder != nil && *req.RandomizeOrder != test.RandomizeOrder)
	if structural {
		locked, err := s.tests.HasAttempts(ctx, test.ID)
		if err != nil {
			return nil, fmt.Errorf("check attempts: %w", err)
		}
		if locked {
			return nil, model.ErrTestLocked
		}
	}

	if req.Title != "" {
		test.Title = req.Title
	}
	if req.Kind != "" {
		test.Kind = model.TestKind(req.Kind)
	}
	if req.TimeLimitSeconds != nil {
		test.TimeLimitSeconds = req.TimeLimitSeconds
	}
	if req.PassingScore != nil {
		test.PassingScore = *req.PassingScore
	}
	if req.AllowedAttempts != nil {
		test.AllowedAttempts = req.AllowedAttempts
	}
	if req.RandomizeOrder != nil {
		test.RandomizeOrder = *req.RandomizeOrder
	}

	if err := s.tests.Update(ctx, test); err != nil {
		return nil, err
	}
	s.invalidatePaper(ctx, test.ID)
	return test, nil
}

// Publish validates the question set and moves the test to PUBLISHED.
// Publishing an already-published test is a no-op.
func (s *TestService) Publish(ctx context.Context, testID, callerID uuid.UUID, role model.UserRole) (*model.Test, error) {
	test, err := s.Get(ctx, testID, callerID, role)
	if err != nil {
		return nil, err
	}
	if test.Status == model.TestStatusPublished {
		return test, nil
	}

	questions, err := s.questions.ListByTest(ctx, test.ID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if err := validatePublishable(questions); err != nil {
		return nil, err
	}

	if err := s.tests.SetStatus(ctx, test.ID, model.TestStatusPublished); err != nil {
		return nil, err
	}
	test.Status = model.TestStatusPublished
	s.invalidatePaper(ctx, test.ID)
	s.log.Info().Str("test_id", test.ID.String()).Msg("test published")
	return test, nil
}

// Archive retires a test from students. Attempts already submitted keep
// their results; new starts are rejected.
func (s *TestService) Archive(ctx context.Context, testID, callerID uuid.UUID, role model.UserRole) (*model.Test, error) {
	test, err := s.Get(ctx, testID, callerID, role)
	if err != nil {
		return nil, err
	}
	if err := s.tests.SetStatus(ctx, test.ID, model.TestStatusArchived); err != nil {
		return nil, err
	}
	test.Status = model.TestStatusArchived
	s.invalidatePaper(ctx, test.ID)
	return test, nil
}

// Delete removes a test. Blocked once attempts exist; archive instead.
func (s *TestService) Delete(ctx context.Context, testID, callerID uuid.UUID, role model.UserRole) error {
	test, err := s.Get(ctx, testID, callerID, role)
	if err != nil {
		return err
	}
	locked, err := s.tests.HasAttempts(ctx, test.ID)
	if err != nil {
		return fmt.Errorf("check attempts: %w", err)
	}
	if locked {
		return model.ErrTestLocked
	}
	if err := s.tests.Delete(ctx, test.ID); err != nil {
		return err
	}
	s.invalidatePaper(ctx, test.ID)
	return nil
}

// Paper serves the student-facing question set for a published test.
// Correctness flags never appear in the payload. When the test randomizes
// order the shuffle happens per request, after the cache.
func (s *TestService) Paper(ctx context.Context, testID, userID uuid.UUID) (*model.TestPaper, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if test.Status != model.TestStatusPublished {
		return nil, model.ErrTestNotAvailable
	}
	if test.CourseID != nil {
		enrolled, err := s.enrolls.IsEnrolled(ctx, *test.CourseID, userID)
		if err != nil {
			return nil, fmt.Errorf("check enrollment: %w", err)
		}
		if !enrolled {
			return nil, model.ErrNotEnrolled
		}
	}

	paper, err := s.loadPaper(ctx, test)
	if err != nil {
		return nil, err
	}

	if test.RandomizeOrder {
		rand.Shuffle(len(paper.Questions), func(i, j int) {
			paper.Questions[i], paper.Questions[j] = paper.Questions[j], paper.Questions[i]
		})
	}
	return paper, nil
}

func (s *TestService) loadPaper(ctx context.Context, test *model.Test) (*model.TestPaper, error) {
	key := config.CacheKey.TestPaperKey(test.ID.String())

	if cached, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var paper model.TestPaper
		if err := json.Unmarshal(cached, &paper); err == nil {
			return &paper, nil
		}
		// Corrupt entry; fall through and rebuild.
		s.rdb.Del(ctx, key)
	}

	questions, err := s.questions.ListByTest(ctx, test.ID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	paper := &model.TestPaper{
		TestID:           test.ID,
		Title:            test.Title,
		Kind:             test.Kind,
		TimeLimitSeconds: test.TimeLimitSeconds,
		Questions:        make([]model.PaperQuestion, 0, len(questions)),
	}
	for _, q := range questions {
		pq := model.PaperQuestion{
			ID:       q.ID,
			Prompt:   q.Prompt,
			Kind:     q.Kind,
			Points:   q.Points,
			OrderNum: q.OrderNum,
		}
		for _, opt := range q.Options {
			pq.Options = append(pq.Options, model.PaperOption{
				ID:       opt.ID,
				Text:     opt.Text,
				OrderNum: opt.OrderNum,
			})
		}
		paper.Questions = append(paper.Questions, pq)
	}

	if data, err := json.Marshal(paper); err == nil {
		if err := s.rdb.Set(ctx, key, data, paperCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Str("test_id", test.ID.String()).Msg("cache paper")
		}
	}
	return paper, nil
}

func (s *TestService) invalidatePaper(ctx context.Context, testID uuid.UUID) {
	key := config.CacheKey.TestPaperKey(testID.String())
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.log.Warn().Err(err).Str("test_id", testID.String()).Msg("invalidate paper cache")
	}
}

// validatePublishable enforces the shape rules a test must satisfy before
// students can see it: at least one question, choice questions carry at
// least two options, single-choice has exactly one correct option and
// multi-select at least one.
func validatePublishable(questions []model.Question) error {
	if len(questions) == 0 {
		return model.ErrNoQuestions
	}
	for _, q := range questions {
		if !q.Kind.IsChoice() {
			continue
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: question %s has fewer than two options", model.ErrNotPublishable, q.ID)
		}
		correct := 0
		for _, opt := range q.Options {
			if opt.IsCorrect {
				correct++
			}
		}
		switch q.Kind {
		case model.QuestionKindSingleChoice:
			if correct != 1 {
				return fmt.Errorf("%w: question %s must have exactly one correct option", model.ErrNotPublishable, q.ID)
			}
		case model.QuestionKindMultiSelect:
			if correct == 0 {
				return fmt.Errorf("%w: question %s has no correct option", model.ErrNotPublishable, q.ID)
			}
		}
	}
	return nil
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
