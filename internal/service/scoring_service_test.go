package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/coursekit/coursekit-backend/internal/monitor"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type scoringFixture struct {
	svc      *ScoringService
	tests    *fakeTestStore
	attempts *fakeAttemptStore
	resps    *fakeResponseStore
	events   *fakePublisher
}

func newScoringFixture(grace time.Duration) *scoringFixture {
	tests := newFakeTestStore()
	attempts, resps := newFakeStores()
	events := &fakePublisher{}
	return &scoringFixture{
		svc:      NewScoringService(tests, attempts, resps, events, grace, zerolog.Nop()),
		tests:    tests,
		attempts: attempts,
		resps:    resps,
		events:   events,
	}
}

// seed creates a published test whose questions total maxPoints, and an
// open attempt for userID with awarded points already recorded.
func (f *scoringFixture) seed(userID uuid.UUID, maxPoints, awarded float64) (*model.Test, *model.TestAttempt) {
	test := &model.Test{
		Title:        "Quiz",
		Kind:         model.TestKindQuiz,
		Status:       model.TestStatusPublished,
		PassingScore: 60,
	}
	f.tests.add(test)
	f.attempts.testPoints[test.ID] = maxPoints

	attempt := &model.TestAttempt{TestID: test.ID, UserID: userID}
	if _, err := f.attempts.Create(context.Background(), attempt); err != nil {
		panic(err)
	}

	if awarded > 0 {
		correct := true
		if err := f.resps.UpsertInProgress(context.Background(), &model.QuestionResponse{
			AttemptID:     attempt.ID,
			QuestionID:    uuid.New(),
			IsCorrect:     &correct,
			PointsAwarded: awarded,
		}); err != nil {
			panic(err)
		}
	}
	return test, attempt
}

func TestScoringFinalize(t *testing.T) {
	f := newScoringFixture(0)
	userID := uuid.New()
	test, attempt := f.seed(userID, 20, 15)
	ctx := context.Background()

	summary, err := f.svc.Finalize(ctx, test.ID, attempt.ID, userID)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if summary.Status != model.AttemptStatusCompleted {
		t.Errorf("status = %s, want COMPLETED", summary.Status)
	}
	if summary.TotalScore != 15 || summary.MaxScore != 20 {
		t.Errorf("score = %v/%v, want 15/20", summary.TotalScore, summary.MaxScore)
	}
	if summary.Percentage != 75 {
		t.Errorf("percentage = %v, want 75", summary.Percentage)
	}
	if !summary.Passed {
		t.Error("passed = false, want true (75 >= 60)")
	}
	if summary.SubmittedAt.IsZero() {
		t.Error("submitted_at is zero")
	}

	events := f.events.byType(monitor.EventAttemptSubmitted)
	if len(events) != 1 {
		t.Fatalf("submitted events = %d, want 1", len(events))
	}
	if events[0].TotalScore == nil || *events[0].TotalScore != 15 {
		t.Errorf("event total = %v, want 15", events[0].TotalScore)
	}
}

func TestScoringFinalize_RepeatedSubmitRejected(t *testing.T) {
	f := newScoringFixture(0)
	userID := uuid.New()
	test, attempt := f.seed(userID, 10, 10)
	ctx := context.Background()

	if _, err := f.svc.Finalize(ctx, test.ID, attempt.ID, userID); err != nil {
		t.Fatalf("first finalize: %v", err)
	}
	if _, err := f.svc.Finalize(ctx, test.ID, attempt.ID, userID); !errors.Is(err, model.ErrAlreadySubmitted) {
		t.Fatalf("second finalize: err = %v, want ErrAlreadySubmitted", err)
	}
	if got := len(f.events.byType(monitor.EventAttemptSubmitted)); got != 1 {
		t.Errorf("submitted events = %d, want 1", got)
	}
}

func TestScoringFinalize_FailingScore(t *testing.T) {
	f := newScoringFixture(0)
	userID := uuid.New()
	test, attempt := f.seed(userID, 20, 10)

	summary, err := f.svc.Finalize(context.Background(), test.ID, attempt.ID, userID)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if summary.Percentage != 50 {
		t.Errorf("percentage = %v, want 50", summary.Percentage)
	}
	if summary.Passed {
		t.Error("passed = true, want false (50 < 60)")
	}
}

func TestScoringFinalize_ForeignAttemptHidden(t *testing.T) {
	f := newScoringFixture(0)
	owner := uuid.New()
	test, attempt := f.seed(owner, 10, 5)
	ctx := context.Background()

	if _, err := f.svc.Finalize(ctx, test.ID, attempt.ID, uuid.New()); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("other user: err = %v, want ErrNotFound", err)
	}
	if _, err := f.svc.Finalize(ctx, uuid.New(), attempt.ID, owner); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("wrong test: err = %v, want ErrNotFound", err)
	}
}

func TestScoringResults_BlockedUntilSubmitted(t *testing.T) {
	f := newScoringFixture(0)
	userID := uuid.New()
	test, attempt := f.seed(userID, 10, 10)
	ctx := context.Background()

	if _, err := f.svc.Results(ctx, test.ID, attempt.ID, userID); !errors.Is(err, model.ErrNotSubmitted) {
		t.Fatalf("results before submit: err = %v, want ErrNotSubmitted", err)
	}

	if _, err := f.svc.Finalize(ctx, test.ID, attempt.ID, userID); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	f.resps.mu.Lock()
	f.resps.reviews[attempt.ID] = []model.ResponseReview{
		{QuestionID: uuid.New(), Prompt: "Q1", Kind: model.QuestionKindSingleChoice, Points: 10, OrderNum: 1, Answered: true, PointsAwarded: 10},
	}
	f.resps.mu.Unlock()

	result, err := f.svc.Results(ctx, test.ID, attempt.ID, userID)
	if err != nil {
		t.Fatalf("results after submit: %v", err)
	}
	if result.Summary.TotalScore != 10 || result.Summary.MaxScore != 10 {
		t.Errorf("summary = %v/%v, want 10/10", result.Summary.TotalScore, result.Summary.MaxScore)
	}
	if result.Summary.Percentage != 100 || !result.Summary.Passed {
		t.Errorf("percentage/passed = %v/%v, want 100/true", result.Summary.Percentage, result.Summary.Passed)
	}
	if len(result.Review) != 1 {
		t.Fatalf("review rows = %d, want 1", len(result.Review))
	}
}

func TestScoringResults_ZeroMaxScore(t *testing.T) {
	f := newScoringFixture(0)
	userID := uuid.New()
	test, attempt := f.seed(userID, 0, 0)
	ctx := context.Background()

	summary, err := f.svc.Finalize(ctx, test.ID, attempt.ID, userID)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if summary.Percentage != 0 {
		t.Errorf("percentage = %v, want 0 when max score is 0", summary.Percentage)
	}
	if summary.Passed {
		t.Error("passed = true, want false")
	}
}

func TestScoringExpireOverdue(t *testing.T) {
	f := newScoringFixture(30 * time.Second)
	ctx := context.Background()

	// Overdue attempt on a 60s test started ten minutes ago.
	_, overdue := f.seed(uuid.New(), 10, 5)
	f.attempts.testLimits[overdue.TestID] = 60
	f.attempts.mu.Lock()
	f.attempts.attempts[overdue.ID].StartedAt = time.Now().Add(-10 * time.Minute)
	f.attempts.mu.Unlock()

	// Fresh attempt on a timed test, still inside its window.
	_, fresh := f.seed(uuid.New(), 10, 0)
	f.attempts.testLimits[fresh.TestID] = 3600

	// Old attempt on an untimed test never expires.
	_, untimed := f.seed(uuid.New(), 10, 0)
	f.attempts.mu.Lock()
	f.attempts.attempts[untimed.ID].StartedAt = time.Now().Add(-24 * time.Hour)
	f.attempts.mu.Unlock()

	closed, err := f.svc.ExpireOverdue(ctx, time.Now())
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if closed != 1 {
		t.Fatalf("closed = %d, want 1", closed)
	}

	got, _ := f.attempts.GetByIDAndUser(ctx, overdue.ID, overdue.UserID)
	if got.Status != model.AttemptStatusCompleted {
		t.Errorf("overdue status = %s, want COMPLETED", got.Status)
	}
	if got.TotalScore == nil || *got.TotalScore != 5 {
		t.Errorf("overdue total = %v, want 5 (partial answers kept)", got.TotalScore)
	}

	got, _ = f.attempts.GetByIDAndUser(ctx, fresh.ID, fresh.UserID)
	if got.Status != model.AttemptStatusInProgress {
		t.Errorf("fresh status = %s, want IN_PROGRESS", got.Status)
	}
	got, _ = f.attempts.GetByIDAndUser(ctx, untimed.ID, untimed.UserID)
	if got.Status != model.AttemptStatusInProgress {
		t.Errorf("untimed status = %s, want IN_PROGRESS", got.Status)
	}
}

func TestScoringExpireOverdue_SkipsRacedSubmit(t *testing.T) {
	f := newScoringFixture(0)
	ctx := context.Background()

	test, attempt := f.seed(uuid.New(), 10, 10)
	f.attempts.testLimits[test.ID] = 60
	f.attempts.mu.Lock()
	f.attempts.attempts[attempt.ID].StartedAt = time.Now().Add(-10 * time.Minute)
	f.attempts.mu.Unlock()

	// The client's submit lands first.
	if _, err := f.svc.Finalize(ctx, test.ID, attempt.ID, attempt.UserID); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	closed, err := f.svc.ExpireOverdue(ctx, time.Now())
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if closed != 0 {
		t.Errorf("closed = %d, want 0", closed)
	}
}
