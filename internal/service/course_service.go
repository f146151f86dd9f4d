package service

import (
	"context"
	"fmt"

	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/coursekit/coursekit-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CourseService handles the course catalog and its module/lesson content.
type CourseService struct {
	courses *repository.CourseRepository
	lessons *repository.LessonRepository
	enrolls *repository.EnrollmentRepository
	log     zerolog.Logger
}

// NewCourseService creates a new CourseService.
func NewCourseService(
	courses *repository.CourseRepository,
	lessons *repository.LessonRepository,
	enrolls *repository.EnrollmentRepository,
	log zerolog.Logger,
) *CourseService {
	return &CourseService{
		courses: courses,
		lessons: lessons,
		enrolls: enrolls,
		log:     log.With().Str("component", "course_service").Logger(),
	}
}

// Create inserts a new unpublished course owned by the caller.
func (s *CourseService) Create(ctx context.Context, ownerID uuid.UUID, req *model.CreateCourseRequest) (*model.Course, error) {
	course := &model.Course{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return course, nil
}

// Get retrieves a course. Unpublished courses are visible only to their
// owner and admins.
func (s *CourseService) Get(ctx context.Context, courseID, callerID uuid.UUID, role model.UserRole) (*model.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.Published && role != model.RoleAdmin && course.OwnerID != callerID {
		return nil, model.ErrNotFound
	}
	return course, nil
}

// ListCatalog retrieves published courses with pagination.
func (s *CourseService) ListCatalog(ctx context.Context, page, perPage int) ([]model.Course, int64, error) {
	return s.courses.ListPublished(ctx, page, perPage)
}

// ListOwned retrieves the caller's courses.
func (s *CourseService) ListOwned(ctx context.Context, ownerID uuid.UUID) ([]model.Course, error) {
	return s.courses.ListByOwner(ctx, ownerID)
}

// Update modifies course fields, owner or admin only.
func (s *CourseService) Update(ctx context.Context, courseID, callerID uuid.UUID, role model.UserRole, req *model.UpdateCourseRequest) (*model.Course, error) {
	course, err := s.owned(ctx, courseID, callerID, role)
	if err != nil {
		return nil, err
	}
	if req.Title != "" {
		course.Title = req.Title
	}
	if req.Description != "" {
		course.Description = req.Description
	}
	if req.Published != nil {
		course.Published = *req.Published
	}
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// Delete removes a course and cascades to its modules and lessons.
func (s *CourseService) Delete(ctx context.Context, courseID, callerID uuid.UUID, role model.UserRole) error {
	if _, err := s.owned(ctx, courseID, callerID, role); err != nil {
		return err
	}
	return s.courses.Delete(ctx, courseID)
}

// Content retrieves the course's modules and lessons. Students must be
// enrolled; owners and admins always pass.
func (s *CourseService) Content(ctx context.Context, courseID, callerID uuid.UUID, role model.UserRole) ([]model.CourseModule, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if role != model.RoleAdmin && course.OwnerID != callerID {
		if !course.Published {
			return nil, model.ErrNotFound
		}
		enrolled, err := s.enrolls.IsEnrolled(ctx, courseID, callerID)
		if err != nil {
			return nil, fmt.Errorf("check enrollment: %w", err)
		}
		if !enrolled {
			return nil, model.ErrNotEnrolled
		}
	}
	return s.lessons.ListModulesWithLessons(ctx, courseID)
}

// AddModule appends a module to an owned course.
func (s *CourseService) AddModule(ctx context.Context, courseID, callerID uuid.UUID, role model.UserRole, req *model.CreateModuleRequest) (*model.CourseModule, error) {
	if _, err := s.owned(ctx, courseID, callerID, role); err != nil {
		return nil, err
	}
	module := &model.CourseModule{
		CourseID: courseID,
		Title:    req.Title,
		OrderNum: req.OrderNum,
	}
	if err := s.lessons.CreateModule(ctx, module); err != nil {
		return nil, fmt.Errorf("create module: %w", err)
	}
	return module, nil
}

// DeleteModule removes a module and its lessons.
func (s *CourseService) DeleteModule(ctx context.Context, courseID, moduleID, callerID uuid.UUID, role model.UserRole) error {
	if _, err := s.owned(ctx, courseID, callerID, role); err != nil {
		return err
	}
	return s.lessons.DeleteModule(ctx, moduleID, courseID)
}

// AddLesson appends a lesson to a module of an owned course.
func (s *CourseService) AddLesson(ctx context.Context, courseID, moduleID, callerID uuid.UUID, role model.UserRole, req *model.CreateLessonRequest) (*model.Lesson, error) {
	if _, err := s.owned(ctx, courseID, callerID, role); err != nil {
		return nil, err
	}
	if _, err := s.lessons.GetModule(ctx, moduleID, courseID); err != nil {
		return nil, err
	}
	lesson := &model.Lesson{
		ModuleID: moduleID,
		Title:    req.Title,
		Content:  req.Content,
		OrderNum: req.OrderNum,
	}
	if err := s.lessons.CreateLesson(ctx, lesson); err != nil {
		return nil, fmt.Errorf("create lesson: %w", err)
	}
	return lesson, nil
}

// UpdateLesson modifies a lesson of an owned course.
func (s *CourseService) UpdateLesson(ctx context.Context, courseID, moduleID, lessonID, callerID uuid.UUID, role model.UserRole, req *model.UpdateLessonRequest) (*model.Lesson, error) {
	if _, err := s.owned(ctx, courseID, callerID, role); err != nil {
		return nil, err
	}
	if _, err := s.lessons.GetModule(ctx, moduleID, courseID); err != nil {
		return nil, err
	}
	lesson, err := s.lessons.GetLesson(ctx, lessonID, moduleID)
	if err != nil {
		return nil, err
	}
	if req.Title != "" {
		lesson.Title = req.Title
	}
	if req.Content != nil {
		lesson.Content = *req.Content
	}
	if req.OrderNum != nil {
		lesson.OrderNum = *req.OrderNum
	}
	if err := s.lessons.UpdateLesson(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// DeleteLesson removes a lesson of an owned course.
func (s *CourseService) DeleteLesson(ctx context.Context, courseID, moduleID, lessonID, callerID uuid.UUID, role model.UserRole) error {
	if _, err := s.owned(ctx, courseID, callerID, role); err != nil {
		return err
	}
	if _, err := s.lessons.GetModule(ctx, moduleID, courseID); err != nil {
		return err
	}
	return s.lessons.DeleteLesson(ctx, lessonID, moduleID)
}

func (s *CourseService) owned(ctx context.Context, courseID, callerID uuid.UUID, role model.UserRole) (*model.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if role != model.RoleAdmin && course.OwnerID != callerID {
		return nil, model.ErrNotFound
	}
	return course, nil
}
