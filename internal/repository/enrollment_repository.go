package repository

import (
	"context"

	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnrollmentRepository handles enrollment data access.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// Create inserts an enrollment. Returns model.ErrConflict if the student
// is already enrolled (unique on course_id+user_id).
func (r *EnrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO enrollments (course_id, user_id)
		 VALUES ($1, $2)
		 RETURNING id, enrolled_at`,
		e.CourseID, e.UserID,
	).Scan(&e.ID, &e.EnrolledAt)
	if isUniqueViolation(err) {
		return model.ErrConflict
	}
	return err
}

// IsEnrolled reports whether the user is enrolled in the course.
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, courseID, userID uuid.UUID) (bool, error) {
	var enrolled bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM enrollments WHERE course_id = $1 AND user_id = $2
		 )`, courseID, userID,
	).Scan(&enrolled)
	return enrolled, err
}

// ListByUser retrieves all enrollments for a student.
func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Enrollment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, course_id, user_id, enrolled_at
		 FROM enrollments WHERE user_id = $1
		 ORDER BY enrolled_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []model.Enrollment
	for rows.Next() {
		var e model.Enrollment
		if err := rows.Scan(&e.ID, &e.CourseID, &e.UserID, &e.EnrolledAt); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

// CountByCourse returns the number of students enrolled in a course.
func (r *EnrollmentRepository) CountByCourse(ctx context.Context, courseID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE course_id = $1`, courseID,
	).Scan(&count)
	return count, err
}
