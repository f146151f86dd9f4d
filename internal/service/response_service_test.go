package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/coursekit/coursekit-backend/internal/monitor"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type responseFixture struct {
	svc       *ResponseService
	tests     *fakeTestStore
	questions *fakeQuestionStore
	attempts  *fakeAttemptStore
	resps     *fakeResponseStore
	events    *fakePublisher
}

func newResponseFixture(grace time.Duration) *responseFixture {
	tests := newFakeTestStore()
	questions := newFakeQuestionStore()
	attempts, resps := newFakeStores()
	events := &fakePublisher{}
	return &responseFixture{
		svc:       NewResponseService(tests, questions, attempts, resps, events, grace, zerolog.Nop()),
		tests:     tests,
		questions: questions,
		attempts:  attempts,
		resps:     resps,
		events:    events,
	}
}

// seed creates a published test with one single-choice question worth 10
// points (first option correct) and an open attempt for userID.
func (f *responseFixture) seed(userID uuid.UUID) (*model.Test, *model.Question, *model.TestAttempt) {
	test := &model.Test{Title: "Quiz", Kind: model.TestKindQuiz, Status: model.TestStatusPublished}
	f.tests.add(test)

	q := choiceQuestion(model.QuestionKindSingleChoice, 10, true, false)
	q.TestID = test.ID
	f.questions.add(q)

	attempt := &model.TestAttempt{TestID: test.ID, UserID: userID}
	if _, err := f.attempts.Create(context.Background(), attempt); err != nil {
		panic(err)
	}
	return test, q, attempt
}

func answerOption(id uuid.UUID) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"option_id":%q}`, id))
}

func TestResponseSubmit_ScoresAndStores(t *testing.T) {
	f := newResponseFixture(0)
	userID := uuid.New()
	test, q, attempt := f.seed(userID)
	ctx := context.Background()

	resp, err := f.svc.Submit(ctx, test.ID, attempt.ID, userID, &model.SubmitResponseRequest{
		QuestionID: q.ID,
		Answer:     answerOption(q.Options[0].ID),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.IsCorrect == nil || !*resp.IsCorrect {
		t.Error("IsCorrect = false, want true")
	}
	if resp.PointsAwarded != 10 {
		t.Errorf("points = %v, want 10", resp.PointsAwarded)
	}

	events := f.events.byType(monitor.EventResponseRecorded)
	if len(events) != 1 {
		t.Fatalf("recorded events = %d, want 1", len(events))
	}
	if events[0].AnsweredCount == nil || *events[0].AnsweredCount != 1 {
		t.Errorf("answered count = %v, want 1", events[0].AnsweredCount)
	}
}

func TestResponseSubmit_OverwriteKeepsOneRow(t *testing.T) {
	f := newResponseFixture(0)
	userID := uuid.New()
	test, q, attempt := f.seed(userID)
	ctx := context.Background()

	first, err := f.svc.Submit(ctx, test.ID, attempt.ID, userID, &model.SubmitResponseRequest{
		QuestionID: q.ID,
		Answer:     answerOption(q.Options[0].ID),
	})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}

	second, err := f.svc.Submit(ctx, test.ID, attempt.ID, userID, &model.SubmitResponseRequest{
		QuestionID: q.ID,
		Answer:     answerOption(q.Options[1].ID),
	})
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("overwrite created new row %s, want %s", second.ID, first.ID)
	}
	if second.IsCorrect == nil || *second.IsCorrect {
		t.Error("IsCorrect = true after switching to the wrong option")
	}
	if second.PointsAwarded != 0 {
		t.Errorf("points = %v, want 0", second.PointsAwarded)
	}

	count, _ := f.resps.CountByAttempt(ctx, attempt.ID)
	if count != 1 {
		t.Errorf("stored responses = %d, want 1", count)
	}
	if got := f.resps.sumPoints(attempt.ID); got != 0 {
		t.Errorf("sum points = %v, want 0 (old score replaced)", got)
	}
}

func TestResponseSubmit_TerminalAttemptRejected(t *testing.T) {
	f := newResponseFixture(0)
	userID := uuid.New()
	test, q, attempt := f.seed(userID)
	ctx := context.Background()

	if _, err := f.attempts.Finalize(ctx, attempt.ID); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	_, err := f.svc.Submit(ctx, test.ID, attempt.ID, userID, &model.SubmitResponseRequest{
		QuestionID: q.ID,
		Answer:     answerOption(q.Options[0].ID),
	})
	if !errors.Is(err, model.ErrAttemptNotWritable) {
		t.Fatalf("err = %v, want ErrAttemptNotWritable", err)
	}
}

func TestResponseSubmit_ExpiredAttemptForceClosed(t *testing.T) {
	f := newResponseFixture(30 * time.Second)
	userID := uuid.New()
	test, q, attempt := f.seed(userID)
	ctx := context.Background()

	limit := 60
	f.tests.mu.Lock()
	f.tests.tests[test.ID].TimeLimitSeconds = &limit
	f.tests.mu.Unlock()
	f.attempts.mu.Lock()
	f.attempts.attempts[attempt.ID].StartedAt = time.Now().Add(-10 * time.Minute)
	f.attempts.mu.Unlock()

	_, err := f.svc.Submit(ctx, test.ID, attempt.ID, userID, &model.SubmitResponseRequest{
		QuestionID: q.ID,
		Answer:     answerOption(q.Options[0].ID),
	})
	if !errors.Is(err, model.ErrAttemptNotWritable) {
		t.Fatalf("err = %v, want ErrAttemptNotWritable", err)
	}

	closed, err := f.attempts.GetByIDAndUser(ctx, attempt.ID, userID)
	if err != nil {
		t.Fatalf("reload attempt: %v", err)
	}
	if closed.Status != model.AttemptStatusCompleted {
		t.Errorf("status = %s, want COMPLETED (force-finalized)", closed.Status)
	}
}

func TestResponseSubmit_WithinGraceAccepted(t *testing.T) {
	f := newResponseFixture(30 * time.Second)
	userID := uuid.New()
	test, q, attempt := f.seed(userID)
	ctx := context.Background()

	limit := 60
	f.tests.mu.Lock()
	f.tests.tests[test.ID].TimeLimitSeconds = &limit
	f.tests.mu.Unlock()
	// 75s elapsed: past the 60s limit but inside limit+grace.
	f.attempts.mu.Lock()
	f.attempts.attempts[attempt.ID].StartedAt = time.Now().Add(-75 * time.Second)
	f.attempts.mu.Unlock()

	if _, err := f.svc.Submit(ctx, test.ID, attempt.ID, userID, &model.SubmitResponseRequest{
		QuestionID: q.ID,
		Answer:     answerOption(q.Options[0].ID),
	}); err != nil {
		t.Fatalf("submit inside grace window: %v", err)
	}
}

func TestResponseSubmit_MalformedAnswer(t *testing.T) {
	f := newResponseFixture(0)
	userID := uuid.New()
	test, q, attempt := f.seed(userID)

	_, err := f.svc.Submit(context.Background(), test.ID, attempt.ID, userID, &model.SubmitResponseRequest{
		QuestionID: q.ID,
		Answer:     json.RawMessage(`"not an object"`),
	})
	if !errors.Is(err, model.ErrInvalidAnswerShape) {
		t.Fatalf("err = %v, want ErrInvalidAnswerShape", err)
	}
}

func TestResponseSubmit_QuestionFromAnotherTest(t *testing.T) {
	f := newResponseFixture(0)
	userID := uuid.New()
	test, _, attempt := f.seed(userID)

	foreign := choiceQuestion(model.QuestionKindSingleChoice, 5, true)
	f.questions.add(foreign)

	_, err := f.svc.Submit(context.Background(), test.ID, attempt.ID, userID, &model.SubmitResponseRequest{
		QuestionID: foreign.ID,
		Answer:     answerOption(foreign.Options[0].ID),
	})
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestResponseSubmit_ForeignAttemptHidden(t *testing.T) {
	f := newResponseFixture(0)
	owner := uuid.New()
	test, q, attempt := f.seed(owner)

	_, err := f.svc.Submit(context.Background(), test.ID, attempt.ID, uuid.New(), &model.SubmitResponseRequest{
		QuestionID: q.ID,
		Answer:     answerOption(q.Options[0].ID),
	})
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
