package repository

import (
	"context"
	"errors"

	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CourseRepository handles course data access.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO courses (owner_id, title, description, published)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		c.OwnerID, c.Title, c.Description, c.Published,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// GetByID retrieves a course by id.
func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	c := &model.Course{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, owner_id, title, description, published, created_at, updated_at
		 FROM courses WHERE id = $1`, id,
	).Scan(&c.ID, &c.OwnerID, &c.Title, &c.Description, &c.Published, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListPublished retrieves published courses with pagination.
func (r *CourseRepository) ListPublished(ctx context.Context, page, perPage int) ([]model.Course, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM courses WHERE published = TRUE`,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, title, description, published, created_at, updated_at
		 FROM courses WHERE published = TRUE
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`, perPage, (page-1)*perPage,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	courses, err := scanCourses(rows)
	return courses, total, err
}

// ListByOwner retrieves all courses owned by an instructor.
func (r *CourseRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, title, description, published, created_at, updated_at
		 FROM courses WHERE owner_id = $1
		 ORDER BY created_at DESC`, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCourses(rows)
}

// Update persists mutable course fields.
func (r *CourseRepository) Update(ctx context.Context, c *model.Course) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE courses
		 SET title = $2, description = $3, published = $4, updated_at = NOW()
		 WHERE id = $1`,
		c.ID, c.Title, c.Description, c.Published,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Delete removes a course and, via FK cascade, its modules and lessons.
func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanCourses(rows pgx.Rows) ([]model.Course, error) {
	var courses []model.Course
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Title, &c.Description, &c.Published, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}
