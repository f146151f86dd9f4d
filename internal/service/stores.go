package service

import (
	"context"
	"time"

	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/coursekit/coursekit-backend/internal/monitor"
	"github.com/google/uuid"
)

// Narrow storage interfaces consumed by the attempt, response and scoring
// services. The pgx repositories satisfy them in production; tests swap in
// in-memory fakes. Constructors take these instead of a shared client so
// no service reaches into ambient connection state.

// TestStore supplies test metadata (time limit, passing score, status).
type TestStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error)
}

// QuestionStore supplies question and correct-option data for scoring.
type QuestionStore interface {
	GetByIDAndTest(ctx context.Context, id, testID uuid.UUID) (*model.Question, error)
}

// EnrollmentStore answers whether a student may attempt course-linked tests.
type EnrollmentStore interface {
	IsEnrolled(ctx context.Context, courseID, userID uuid.UUID) (bool, error)
}

// AttemptStore persists attempt lifecycle transitions. Finalize must be
// atomic on status = IN_PROGRESS (model.ErrAlreadySubmitted on the losing
// side of a race).
type AttemptStore interface {
	Create(ctx context.Context, a *model.TestAttempt) (bool, error)
	GetActive(ctx context.Context, testID, userID uuid.UUID) (*model.TestAttempt, error)
	GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*model.TestAttempt, error)
	CountByTestAndUser(ctx context.Context, testID, userID uuid.UUID) (int, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.TestAttempt, error)
	Finalize(ctx context.Context, id uuid.UUID) (*model.AttemptScore, error)
	ListExpiredIDs(ctx context.Context, now time.Time, grace time.Duration) ([]uuid.UUID, error)
}

// ResponseStore persists answers. UpsertInProgress must re-verify attempt
// status at write time (model.ErrAttemptNotWritable otherwise).
type ResponseStore interface {
	UpsertInProgress(ctx context.Context, resp *model.QuestionResponse) error
	CountByAttempt(ctx context.Context, attemptID uuid.UUID) (int, error)
	ListReviewByAttempt(ctx context.Context, attemptID uuid.UUID) ([]model.ResponseReview, error)
}

// ProgressPublisher fans attempt-progress events out to monitor streams.
// Implementations must be best-effort; the write path never blocks on it.
type ProgressPublisher interface {
	Publish(ctx context.Context, ev monitor.Event)
}

// attemptExpired reports whether the attempt has outlived the test's time
// limit plus grace. Tests without a limit never expire.
func attemptExpired(test *model.Test, attempt *model.TestAttempt, now time.Time, grace time.Duration) bool {
	if test.TimeLimitSeconds == nil {
		return false
	}
	deadline := attempt.StartedAt.Add(time.Duration(*test.TimeLimitSeconds)*time.Second + grace)
	return now.After(deadline)
}
