package service

import (
	"context"
	"sync"
	"time"

	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/coursekit/coursekit-backend/internal/monitor"
	"github.com/google/uuid"
)

// In-memory fakes for the storage interfaces. They reproduce the same
// conditional-update semantics the SQL layer has: finalize and response
// writes are atomic on status under one mutex.

type fakeTestStore struct {
	mu    sync.Mutex
	tests map[uuid.UUID]*model.Test
}

func newFakeTestStore() *fakeTestStore {
	return &fakeTestStore{tests: make(map[uuid.UUID]*model.Test)}
}

func (s *fakeTestStore) add(t *model.Test) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	s.tests[t.ID] = t
}

func (s *fakeTestStore) GetByID(_ context.Context, id uuid.UUID) (*model.Test, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tests[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

type fakeQuestionStore struct {
	mu        sync.Mutex
	questions map[uuid.UUID]*model.Question
}

func newFakeQuestionStore() *fakeQuestionStore {
	return &fakeQuestionStore{questions: make(map[uuid.UUID]*model.Question)}
}

func (s *fakeQuestionStore) add(q *model.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	s.questions[q.ID] = q
}

func (s *fakeQuestionStore) GetByIDAndTest(_ context.Context, id, testID uuid.UUID) (*model.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok || q.TestID != testID {
		return nil, model.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

type fakeEnrollmentStore struct {
	mu       sync.Mutex
	enrolled map[[2]uuid.UUID]bool
}

func newFakeEnrollmentStore() *fakeEnrollmentStore {
	return &fakeEnrollmentStore{enrolled: make(map[[2]uuid.UUID]bool)}
}

func (s *fakeEnrollmentStore) enroll(courseID, userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrolled[[2]uuid.UUID{courseID, userID}] = true
}

func (s *fakeEnrollmentStore) IsEnrolled(_ context.Context, courseID, userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enrolled[[2]uuid.UUID{courseID, userID}], nil
}

type fakeAttemptStore struct {
	mu       sync.Mutex
	attempts map[uuid.UUID]*model.TestAttempt
	// per-test totals used at finalize: sum of question points and the
	// time limit in seconds (absent = no limit)
	testPoints map[uuid.UUID]float64
	testLimits map[uuid.UUID]int
	responses  *fakeResponseStore
}

func (s *fakeAttemptStore) Create(_ context.Context, a *model.TestAttempt) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ex := range s.attempts {
		if ex.TestID == a.TestID && ex.UserID == a.UserID && ex.Status == model.AttemptStatusInProgress {
			return false, nil
		}
	}
	a.ID = uuid.New()
	a.Status = model.AttemptStatusInProgress
	a.StartedAt = time.Now()
	cp := *a
	s.attempts[a.ID] = &cp
	return true, nil
}

func (s *fakeAttemptStore) GetActive(_ context.Context, testID, userID uuid.UUID) (*model.TestAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.attempts {
		if a.TestID == testID && a.UserID == userID && a.Status == model.AttemptStatusInProgress {
			cp := *a
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *fakeAttemptStore) GetByIDAndUser(_ context.Context, id, userID uuid.UUID) (*model.TestAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok || a.UserID != userID {
		return nil, model.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *fakeAttemptStore) CountByTestAndUser(_ context.Context, testID, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, a := range s.attempts {
		if a.TestID == testID && a.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (s *fakeAttemptStore) ListByUser(_ context.Context, userID uuid.UUID) ([]model.TestAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.TestAttempt
	for _, a := range s.attempts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeAttemptStore) Finalize(_ context.Context, id uuid.UUID) (*model.AttemptScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	if a.Status != model.AttemptStatusInProgress {
		return nil, model.ErrAlreadySubmitted
	}
	now := time.Now()
	a.Status = model.AttemptStatusCompleted
	a.SubmittedAt = &now

	total := s.responses.sumPoints(id)
	max := s.testPoints[a.TestID]
	a.TotalScore = &total
	a.MaxScore = &max

	return &model.AttemptScore{
		AttemptID:   id,
		TotalScore:  total,
		MaxScore:    max,
		SubmittedAt: now,
	}, nil
}

func (s *fakeAttemptStore) ListExpiredIDs(_ context.Context, now time.Time, grace time.Duration) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uuid.UUID
	for _, a := range s.attempts {
		if a.Status != model.AttemptStatusInProgress {
			continue
		}
		limit, ok := s.testLimits[a.TestID]
		if !ok {
			continue
		}
		if now.After(a.StartedAt.Add(time.Duration(limit)*time.Second + grace)) {
			ids = append(ids, a.ID)
		}
	}
	return ids, nil
}

type fakeResponseStore struct {
	mu       sync.Mutex
	attempts *fakeAttemptStore
	// keyed by attempt, then question
	responses map[uuid.UUID]map[uuid.UUID]*model.QuestionResponse
	reviews   map[uuid.UUID][]model.ResponseReview
}

// newFakeStores wires the attempt and response fakes together; the
// response store consults attempt status on writes the way the SQL
// conditional touch does.
func newFakeStores() (*fakeAttemptStore, *fakeResponseStore) {
	resps := &fakeResponseStore{
		responses: make(map[uuid.UUID]map[uuid.UUID]*model.QuestionResponse),
		reviews:   make(map[uuid.UUID][]model.ResponseReview),
	}
	attempts := &fakeAttemptStore{
		attempts:   make(map[uuid.UUID]*model.TestAttempt),
		testPoints: make(map[uuid.UUID]float64),
		testLimits: make(map[uuid.UUID]int),
		responses:  resps,
	}
	resps.attempts = attempts
	return attempts, resps
}

func (s *fakeResponseStore) UpsertInProgress(_ context.Context, resp *model.QuestionResponse) error {
	s.attempts.mu.Lock()
	a, ok := s.attempts.attempts[resp.AttemptID]
	writable := ok && a.Status == model.AttemptStatusInProgress
	s.attempts.mu.Unlock()
	if !writable {
		return model.ErrAttemptNotWritable
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	byQ, ok := s.responses[resp.AttemptID]
	if !ok {
		byQ = make(map[uuid.UUID]*model.QuestionResponse)
		s.responses[resp.AttemptID] = byQ
	}
	resp.UpdatedAt = time.Now()
	if prev, exists := byQ[resp.QuestionID]; exists {
		resp.ID = prev.ID
	} else {
		resp.ID = uuid.New()
	}
	cp := *resp
	byQ[resp.QuestionID] = &cp
	return nil
}

func (s *fakeResponseStore) CountByAttempt(_ context.Context, attemptID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.responses[attemptID]), nil
}

func (s *fakeResponseStore) ListReviewByAttempt(_ context.Context, attemptID uuid.UUID) ([]model.ResponseReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviews[attemptID], nil
}

func (s *fakeResponseStore) sumPoints(attemptID uuid.UUID) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0.0
	for _, r := range s.responses[attemptID] {
		total += r.PointsAwarded
	}
	return total
}

type fakePublisher struct {
	mu     sync.Mutex
	events []monitor.Event
}

func (p *fakePublisher) Publish(_ context.Context, ev monitor.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *fakePublisher) byType(t string) []monitor.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []monitor.Event
	for _, ev := range p.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}
