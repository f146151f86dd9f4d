package service

import (
	"context"
	"fmt"

	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/coursekit/coursekit-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EnrollmentService handles student enrollment into courses.
type EnrollmentService struct {
	courses *repository.CourseRepository
	enrolls *repository.EnrollmentRepository
	log     zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService.
func NewEnrollmentService(
	courses *repository.CourseRepository,
	enrolls *repository.EnrollmentRepository,
	log zerolog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		courses: courses,
		enrolls: enrolls,
		log:     log.With().Str("component", "enrollment_service").Logger(),
	}
}

// Enroll adds the student to a published course. Duplicate enrollment
// returns model.ErrConflict.
func (s *EnrollmentService) Enroll(ctx context.Context, courseID, userID uuid.UUID) (*model.Enrollment, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.Published {
		return nil, model.ErrNotFound
	}

	enrollment := &model.Enrollment{CourseID: courseID, UserID: userID}
	if err := s.enrolls.Create(ctx, enrollment); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("course_id", courseID.String()).
		Str("user_id", userID.String()).
		Msg("student enrolled")
	return enrollment, nil
}

// ListMine retrieves the caller's enrollments.
func (s *EnrollmentService) ListMine(ctx context.Context, userID uuid.UUID) ([]model.Enrollment, error) {
	return s.enrolls.ListByUser(ctx, userID)
}

// CourseStats returns the enrolled-student count for an owned course.
func (s *EnrollmentService) CourseStats(ctx context.Context, courseID, callerID uuid.UUID, role model.UserRole) (int, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return 0, err
	}
	if role != model.RoleAdmin && course.OwnerID != callerID {
		return 0, model.ErrNotFound
	}
	count, err := s.enrolls.CountByCourse(ctx, courseID)
	if err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return count, nil
}
