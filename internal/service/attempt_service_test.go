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

func intPtr(n int) *int { return &n }

type attemptFixture struct {
	svc      *AttemptService
	tests    *fakeTestStore
	enrolls  *fakeEnrollmentStore
	attempts *fakeAttemptStore
	resps    *fakeResponseStore
	events   *fakePublisher
}

func newAttemptFixture() *attemptFixture {
	tests := newFakeTestStore()
	enrolls := newFakeEnrollmentStore()
	attempts, resps := newFakeStores()
	events := &fakePublisher{}
	return &attemptFixture{
		svc:      NewAttemptService(tests, attempts, enrolls, resps, events, zerolog.Nop()),
		tests:    tests,
		enrolls:  enrolls,
		attempts: attempts,
		resps:    resps,
		events:   events,
	}
}

func (f *attemptFixture) publishedTest(mut ...func(*model.Test)) *model.Test {
	test := &model.Test{
		Title:        "Quiz",
		Kind:         model.TestKindQuiz,
		Status:       model.TestStatusPublished,
		PassingScore: 60,
	}
	for _, m := range mut {
		m(test)
	}
	f.tests.add(test)
	return test
}

func TestAttemptStart_UnpublishedTest(t *testing.T) {
	f := newAttemptFixture()
	test := f.publishedTest(func(tt *model.Test) { tt.Status = model.TestStatusDraft })

	_, _, err := f.svc.Start(context.Background(), test.ID, uuid.New())
	if !errors.Is(err, model.ErrTestNotAvailable) {
		t.Fatalf("err = %v, want ErrTestNotAvailable", err)
	}
}

func TestAttemptStart_RequiresEnrollment(t *testing.T) {
	f := newAttemptFixture()
	courseID := uuid.New()
	test := f.publishedTest(func(tt *model.Test) { tt.CourseID = &courseID })
	userID := uuid.New()

	_, _, err := f.svc.Start(context.Background(), test.ID, userID)
	if !errors.Is(err, model.ErrNotEnrolled) {
		t.Fatalf("err = %v, want ErrNotEnrolled", err)
	}

	f.enrolls.enroll(courseID, userID)
	attempt, created, err := f.svc.Start(context.Background(), test.ID, userID)
	if err != nil {
		t.Fatalf("start after enrolling: %v", err)
	}
	if !created {
		t.Error("created = false, want true")
	}
	if attempt.Status != model.AttemptStatusInProgress {
		t.Errorf("status = %s, want IN_PROGRESS", attempt.Status)
	}
}

func TestAttemptStart_StandaloneTestSkipsEnrollment(t *testing.T) {
	f := newAttemptFixture()
	test := f.publishedTest() // no CourseID

	_, created, err := f.svc.Start(context.Background(), test.ID, uuid.New())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !created {
		t.Error("created = false, want true")
	}
}

func TestAttemptStart_ResumesActiveAttempt(t *testing.T) {
	f := newAttemptFixture()
	// Limit of 1 so a resume that miscounted would surface as a limit error.
	test := f.publishedTest(func(tt *model.Test) { tt.AllowedAttempts = intPtr(1) })
	userID := uuid.New()

	first, created, err := f.svc.Start(context.Background(), test.ID, userID)
	if err != nil || !created {
		t.Fatalf("first start: created=%v err=%v", created, err)
	}

	second, created, err := f.svc.Start(context.Background(), test.ID, userID)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if created {
		t.Error("created = true, want false (resume)")
	}
	if second.ID != first.ID {
		t.Errorf("resumed attempt %s, want %s", second.ID, first.ID)
	}

	if got := len(f.events.byType(monitor.EventAttemptStarted)); got != 1 {
		t.Errorf("started events = %d, want 1 (no event on resume)", got)
	}
}

func TestAttemptStart_LimitExceeded(t *testing.T) {
	f := newAttemptFixture()
	test := f.publishedTest(func(tt *model.Test) { tt.AllowedAttempts = intPtr(2) })
	userID := uuid.New()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		attempt, _, err := f.svc.Start(ctx, test.ID, userID)
		if err != nil {
			t.Fatalf("start %d: %v", i+1, err)
		}
		if _, err := f.attempts.Finalize(ctx, attempt.ID); err != nil {
			t.Fatalf("finalize %d: %v", i+1, err)
		}
	}

	_, _, err := f.svc.Start(ctx, test.ID, userID)
	if !errors.Is(err, model.ErrAttemptLimitExceeded) {
		t.Fatalf("err = %v, want ErrAttemptLimitExceeded", err)
	}
}

func TestAttemptStart_UnlimitedWhenNoCap(t *testing.T) {
	f := newAttemptFixture()
	test := f.publishedTest()
	userID := uuid.New()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		attempt, _, err := f.svc.Start(ctx, test.ID, userID)
		if err != nil {
			t.Fatalf("start %d: %v", i+1, err)
		}
		if _, err := f.attempts.Finalize(ctx, attempt.ID); err != nil {
			t.Fatalf("finalize %d: %v", i+1, err)
		}
	}
}

func TestAttemptState(t *testing.T) {
	f := newAttemptFixture()
	limit := 600
	test := f.publishedTest(func(tt *model.Test) {
		tt.TimeLimitSeconds = &limit
		tt.QuestionCount = 4
	})
	userID := uuid.New()
	ctx := context.Background()

	attempt, _, err := f.svc.Start(ctx, test.ID, userID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	state, err := f.svc.State(ctx, test.ID, attempt.ID, userID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Status != model.AttemptStatusInProgress {
		t.Errorf("status = %s, want IN_PROGRESS", state.Status)
	}
	if state.AnsweredCount != 0 {
		t.Errorf("answered = %d, want 0", state.AnsweredCount)
	}
	if state.QuestionCount != 4 {
		t.Errorf("question count = %d, want 4", state.QuestionCount)
	}
	if state.RemainingSeconds == nil {
		t.Fatal("remaining = nil, want set for a timed test")
	}
	if *state.RemainingSeconds <= 0 || *state.RemainingSeconds > 600 {
		t.Errorf("remaining = %v, want within (0, 600]", *state.RemainingSeconds)
	}
}

func TestAttemptState_RemainingClampedAtZero(t *testing.T) {
	f := newAttemptFixture()
	limit := 60
	test := f.publishedTest(func(tt *model.Test) { tt.TimeLimitSeconds = &limit })
	userID := uuid.New()
	ctx := context.Background()

	attempt, _, err := f.svc.Start(ctx, test.ID, userID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	f.attempts.mu.Lock()
	f.attempts.attempts[attempt.ID].StartedAt = time.Now().Add(-5 * time.Minute)
	f.attempts.mu.Unlock()

	state, err := f.svc.State(ctx, test.ID, attempt.ID, userID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.RemainingSeconds == nil || *state.RemainingSeconds != 0 {
		t.Errorf("remaining = %v, want 0", state.RemainingSeconds)
	}
	if state.ElapsedSeconds < 290 {
		t.Errorf("elapsed = %v, want ~300", state.ElapsedSeconds)
	}
}

func TestAttemptState_ForeignAttemptHidden(t *testing.T) {
	f := newAttemptFixture()
	test := f.publishedTest()
	owner := uuid.New()
	ctx := context.Background()

	attempt, _, err := f.svc.Start(ctx, test.ID, owner)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := f.svc.State(ctx, test.ID, attempt.ID, uuid.New()); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("other user: err = %v, want ErrNotFound", err)
	}
	if _, err := f.svc.State(ctx, uuid.New(), attempt.ID, owner); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("wrong test id: err = %v, want ErrNotFound", err)
	}
}

func TestAttemptListMine(t *testing.T) {
	f := newAttemptFixture()
	testA := f.publishedTest()
	testB := f.publishedTest()
	userID := uuid.New()
	ctx := context.Background()

	if _, _, err := f.svc.Start(ctx, testA.ID, userID); err != nil {
		t.Fatalf("start A: %v", err)
	}
	if _, _, err := f.svc.Start(ctx, testB.ID, userID); err != nil {
		t.Fatalf("start B: %v", err)
	}
	if _, _, err := f.svc.Start(ctx, testA.ID, uuid.New()); err != nil {
		t.Fatalf("start other user: %v", err)
	}

	mine, err := f.svc.ListMine(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("len = %d, want 2", len(mine))
	}
	for _, a := range mine {
		if a.UserID != userID {
			t.Errorf("attempt %s belongs to %s", a.ID, a.UserID)
		}
	}
}
