package repository

import (
	"context"
	"errors"

	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestRepository handles test data access.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

const testColumns = `id, course_id, module_id, author_id, title, kind,
	time_limit_seconds, passing_score, allowed_attempts, randomize_order,
	status, created_at, updated_at`

// Create inserts a new test in DRAFT status.
func (r *TestRepository) Create(ctx context.Context, t *model.Test) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO tests (course_id, module_id, author_id, title, kind,
			time_limit_seconds, passing_score, allowed_attempts, randomize_order, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		t.CourseID, t.ModuleID, t.AuthorID, t.Title, t.Kind,
		t.TimeLimitSeconds, t.PassingScore, t.AllowedAttempts, t.RandomizeOrder, model.TestStatusDraft,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID retrieves a test by id, including its question count.
func (r *TestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	t := &model.Test{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+testColumns+`,
			(SELECT COUNT(*) FROM questions q WHERE q.test_id = tests.id)
		 FROM tests WHERE id = $1`, id,
	).Scan(
		&t.ID, &t.CourseID, &t.ModuleID, &t.AuthorID, &t.Title, &t.Kind,
		&t.TimeLimitSeconds, &t.PassingScore, &t.AllowedAttempts, &t.RandomizeOrder,
		&t.Status, &t.CreatedAt, &t.UpdatedAt, &t.QuestionCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListByAuthor retrieves an instructor's tests with pagination.
func (r *TestRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, page, perPage int) ([]model.Test, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tests WHERE author_id = $1`, authorID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+testColumns+`, 0
		 FROM tests WHERE author_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, authorID, perPage, (page-1)*perPage,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tests, err := scanTests(rows)
	return tests, total, err
}

// ListPublishedByCourse retrieves published tests attached to a course.
func (r *TestRepository) ListPublishedByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Test, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+testColumns+`, 0
		 FROM tests WHERE course_id = $1 AND status = $2
		 ORDER BY created_at`, courseID, model.TestStatusPublished,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTests(rows)
}

// Update persists mutable test fields.
func (r *TestRepository) Update(ctx context.Context, t *model.Test) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE tests
		 SET title = $2, kind = $3, time_limit_seconds = $4, passing_score = $5,
		     allowed_attempts = $6, randomize_order = $7, updated_at = NOW()
		 WHERE id = $1`,
		t.ID, t.Title, t.Kind, t.TimeLimitSeconds, t.PassingScore,
		t.AllowedAttempts, t.RandomizeOrder,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// SetStatus performs the publish/archive transition.
func (r *TestRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.TestStatus) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE tests SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Delete removes a test and, via FK cascade, its questions, options,
// attempts and responses.
func (r *TestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM tests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// HasAttempts reports whether any attempt exists against the test.
// Structural edits are blocked once this is true.
func (r *TestRepository) HasAttempts(ctx context.Context, id uuid.UUID) (bool, error) {
	var has bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM test_attempts WHERE test_id = $1)`, id,
	).Scan(&has)
	return has, err
}

func scanTests(rows pgx.Rows) ([]model.Test, error) {
	var tests []model.Test
	for rows.Next() {
		var t model.Test
		if err := rows.Scan(
			&t.ID, &t.CourseID, &t.ModuleID, &t.AuthorID, &t.Title, &t.Kind,
			&t.TimeLimitSeconds, &t.PassingScore, &t.AllowedAttempts, &t.RandomizeOrder,
			&t.Status, &t.CreatedAt, &t.UpdatedAt, &t.QuestionCount,
		); err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}
