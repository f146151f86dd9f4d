package repository

import (
	"context"
	"errors"
	"time"

	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AttemptRepository handles test attempt data access.
//
// The status column is the single source of truth for writability. Every
// state transition here is a conditional UPDATE on status = 'IN_PROGRESS';
// a zero-row result means another request won the race, never a lost write.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

const attemptColumns = `id, test_id, user_id, status, started_at, submitted_at, total_score, max_score`

// Create inserts a new IN_PROGRESS attempt. The partial unique index on
// (test_id, user_id) WHERE status = 'IN_PROGRESS' makes concurrent starts
// collapse into one row; created reports whether this call inserted it.
func (r *AttemptRepository) Create(ctx context.Context, a *model.TestAttempt) (bool, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO test_attempts (test_id, user_id, status)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (test_id, user_id) WHERE status = 'IN_PROGRESS' DO NOTHING
		 RETURNING id, started_at`,
		a.TestID, a.UserID, model.AttemptStatusInProgress,
	).Scan(&a.ID, &a.StartedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	a.Status = model.AttemptStatusInProgress
	return true, nil
}

// GetByIDAndUser retrieves an attempt scoped to its owner. A missing row
// and a foreign owner are both model.ErrNotFound.
func (r *AttemptRepository) GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*model.TestAttempt, error) {
	a := &model.TestAttempt{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+`
		 FROM test_attempts WHERE id = $1 AND user_id = $2`, id, userID,
	).Scan(&a.ID, &a.TestID, &a.UserID, &a.Status, &a.StartedAt, &a.SubmittedAt, &a.TotalScore, &a.MaxScore)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves an attempt without owner scoping. Instructor-side
// callers must verify test authorship before using this.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TestAttempt, error) {
	a := &model.TestAttempt{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+`
		 FROM test_attempts WHERE id = $1`, id,
	).Scan(&a.ID, &a.TestID, &a.UserID, &a.Status, &a.StartedAt, &a.SubmittedAt, &a.TotalScore, &a.MaxScore)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetActive retrieves the user's IN_PROGRESS attempt for a test, if any.
func (r *AttemptRepository) GetActive(ctx context.Context, testID, userID uuid.UUID) (*model.TestAttempt, error) {
	a := &model.TestAttempt{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+`
		 FROM test_attempts
		 WHERE test_id = $1 AND user_id = $2 AND status = $3`,
		testID, userID, model.AttemptStatusInProgress,
	).Scan(&a.ID, &a.TestID, &a.UserID, &a.Status, &a.StartedAt, &a.SubmittedAt, &a.TotalScore, &a.MaxScore)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// CountByTestAndUser counts the user's attempts against a test, any status.
func (r *AttemptRepository) CountByTestAndUser(ctx context.Context, testID, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM test_attempts WHERE test_id = $1 AND user_id = $2`,
		testID, userID,
	).Scan(&count)
	return count, err
}

// Finalize performs the one-way IN_PROGRESS → COMPLETED transition and
// fixes the scores, all inside one transaction.
//
// The conditional UPDATE both closes the duplicate-submit race (zero rows
// → model.ErrAlreadySubmitted) and takes the row lock that response
// writers contend on, so no response can slip in after the sums are read.
func (r *AttemptRepository) Finalize(ctx context.Context, id uuid.UUID) (*model.AttemptScore, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var testID uuid.UUID
	var submittedAt time.Time
	err = tx.QueryRow(ctx,
		`UPDATE test_attempts
		 SET status = $2, submitted_at = NOW()
		 WHERE id = $1 AND status = $3
		 RETURNING test_id, submitted_at`,
		id, model.AttemptStatusCompleted, model.AttemptStatusInProgress,
	).Scan(&testID, &submittedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrAlreadySubmitted
	}
	if err != nil {
		return nil, err
	}

	var total float64
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(points_awarded), 0)
		 FROM question_responses WHERE attempt_id = $1`, id,
	).Scan(&total); err != nil {
		return nil, err
	}

	// Every question counts toward max, answered or not.
	var max float64
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(points), 0)
		 FROM questions WHERE test_id = $1`, testID,
	).Scan(&max); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE test_attempts SET total_score = $2, max_score = $3 WHERE id = $1`,
		id, total, max,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &model.AttemptScore{
		AttemptID:   id,
		TotalScore:  total,
		MaxScore:    max,
		SubmittedAt: submittedAt,
	}, nil
}

// ListExpiredIDs returns IN_PROGRESS attempts whose test time limit (plus
// grace) lapsed before now. Used by the expiry worker.
func (r *AttemptRepository) ListExpiredIDs(ctx context.Context, now time.Time, grace time.Duration) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id
		 FROM test_attempts a
		 JOIN tests t ON t.id = a.test_id
		 WHERE a.status = $1
		   AND t.time_limit_seconds IS NOT NULL
		   AND a.started_at + (t.time_limit_seconds + $2) * INTERVAL '1 second' < $3`,
		model.AttemptStatusInProgress, int(grace.Seconds()), now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AttemptWithUser joins an attempt with its owner, for instructor views.
type AttemptWithUser struct {
	model.TestAttempt
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

// ListByTest retrieves all attempts for a test with owner identity,
// newest first, paginated.
func (r *AttemptRepository) ListByTest(ctx context.Context, testID uuid.UUID, page, perPage int) ([]AttemptWithUser, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM test_attempts WHERE test_id = $1`, testID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.test_id, a.user_id, a.status, a.started_at,
		        a.submitted_at, a.total_score, a.max_score, u.name, u.email
		 FROM test_attempts a
		 JOIN users u ON u.id = a.user_id
		 WHERE a.test_id = $1
		 ORDER BY a.started_at DESC
		 LIMIT $2 OFFSET $3`, testID, perPage, (page-1)*perPage,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var attempts []AttemptWithUser
	for rows.Next() {
		var a AttemptWithUser
		if err := rows.Scan(
			&a.ID, &a.TestID, &a.UserID, &a.Status, &a.StartedAt,
			&a.SubmittedAt, &a.TotalScore, &a.MaxScore, &a.UserName, &a.UserEmail,
		); err != nil {
			return nil, 0, err
		}
		attempts = append(attempts, a)
	}
	return attempts, total, rows.Err()
}

// ListByUser retrieves all of a user's attempts, newest first.
func (r *AttemptRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.TestAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+attemptColumns+`
		 FROM test_attempts WHERE user_id = $1
		 ORDER BY started_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.TestAttempt
	for rows.Next() {
		var a model.TestAttempt
		if err := rows.Scan(&a.ID, &a.TestID, &a.UserID, &a.Status, &a.StartedAt, &a.SubmittedAt, &a.TotalScore, &a.MaxScore); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// ApplyGrades overwrites points on manually graded responses, recomputes
// the attempt total and flips status to GRADED, in one transaction. The
// attempt must already be COMPLETED or GRADED.
func (r *AttemptRepository) ApplyGrades(ctx context.Context, attemptID uuid.UUID, grades []model.GradeResponseRequest) (*model.AttemptScore, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Lock the attempt row first so concurrent regrades serialize.
	var status model.AttemptStatus
	var testID uuid.UUID
	var submittedAt *time.Time
	err = tx.QueryRow(ctx,
		`SELECT status, test_id, submitted_at FROM test_attempts
		 WHERE id = $1 FOR UPDATE`, attemptID,
	).Scan(&status, &testID, &submittedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if status == model.AttemptStatusInProgress {
		return nil, model.ErrNotSubmitted
	}

	for _, g := range grades {
		ct, err := tx.Exec(ctx,
			`UPDATE question_responses
			 SET points_awarded = $3, is_correct = $4, updated_at = NOW()
			 WHERE attempt_id = $1 AND question_id = $2`,
			attemptID, g.QuestionID, g.Points, g.IsCorrect,
		)
		if err != nil {
			return nil, err
		}
		if ct.RowsAffected() == 0 {
			return nil, model.ErrNotFound
		}
	}

	var total, max float64
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(points_awarded), 0)
		 FROM question_responses WHERE attempt_id = $1`, attemptID,
	).Scan(&total); err != nil {
		return nil, err
	}
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(points), 0) FROM questions WHERE test_id = $1`, testID,
	).Scan(&max); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE test_attempts
		 SET status = $2, total_score = $3, max_score = $4
		 WHERE id = $1`,
		attemptID, model.AttemptStatusGraded, total, max,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	score := &model.AttemptScore{AttemptID: attemptID, TotalScore: total, MaxScore: max}
	if submittedAt != nil {
		score.SubmittedAt = *submittedAt
	}
	return score, nil
}
