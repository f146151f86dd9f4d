package handler

import (
	"net/http"

	"github.com/coursekit/coursekit-backend/internal/middleware"
	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/coursekit/coursekit-backend/internal/response"
	"github.com/coursekit/coursekit-backend/internal/service"
	"github.com/coursekit/coursekit-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CourseHandler handles catalog and course management endpoints.
type CourseHandler struct {
	courses *service.CourseService
	log     zerolog.Logger
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courses *service.CourseService, log zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		courses: courses,
		log:     log.With().Str("component", "course_handler").Logger(),
	}
}

// ListCatalog godoc
// GET /api/v1/courses
// Lists published courses with pagination.
func (h *CourseHandler) ListCatalog(c *gin.Context) {
	page, perPage := pageParams(c)

	courses, total, err := h.courses.ListCatalog(c.Request.Context(), page, perPage)
	if err != nil {
		h.log.Error().Err(err).Msg("list catalog")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"courses": courses}, buildPagination(page, perPage, total))
}

// GetCourse godoc
// GET /api/v1/courses/:course_id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, ok := parseID(c, "course_id")
	if !ok {
		return
	}

	course, err := h.courses.Get(c.Request.Context(), courseID, claims.UserID, claims.Role)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// GetContent godoc
// GET /api/v1/courses/:course_id/content
// Returns the course's modules and lessons. Enrollment required for
// students.
func (h *CourseHandler) GetContent(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, ok := parseID(c, "course_id")
	if !ok {
		return
	}

	modules, err := h.courses.Content(c.Request.Context(), courseID, claims.UserID, claims.Role)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"modules": modules})
}

// CreateCourse godoc
// POST /api/v1/manage/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courses.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		h.log.Error().Err(err).Msg("create course")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"course": course})
}

// ListOwned godoc
// GET /api/v1/manage/courses
func (h *CourseHandler) ListOwned(c *gin.Context) {
	claims := middleware.GetClaims(c)

	courses, err := h.courses.ListOwned(c.Request.Context(), claims.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("list owned courses")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// UpdateCourse godoc
// PATCH /api/v1/manage/courses/:course_id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, ok := parseID(c, "course_id")
	if !ok {
		return
	}

	var req model.UpdateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courses.Update(c.Request.Context(), courseID, claims.UserID, claims.Role, &req)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// DeleteCourse godoc
// DELETE /api/v1/manage/courses/:course_id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, ok := parseID(c, "course_id")
	if !ok {
		return
	}

	if err := h.courses.Delete(c.Request.Context(), courseID, claims.UserID, claims.Role); err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// AddModule godoc
// POST /api/v1/manage/courses/:course_id/modules
func (h *CourseHandler) AddModule(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, ok := parseID(c, "course_id")
	if !ok {
		return
	}

	var req model.CreateModuleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	module, err := h.courses.AddModule(c.Request.Context(), courseID, claims.UserID, claims.Role, &req)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"module": module})
}

// DeleteModule godoc
// DELETE /api/v1/manage/courses/:course_id/modules/:module_id
func (h *CourseHandler) DeleteModule(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, ok := parseID(c, "course_id")
	if !ok {
		return
	}
	moduleID, ok := parseID(c, "module_id")
	if !ok {
		return
	}

	if err := h.courses.DeleteModule(c.Request.Context(), courseID, moduleID, claims.UserID, claims.Role); err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// AddLesson godoc
// POST /api/v1/manage/courses/:course_id/modules/:module_id/lessons
func (h *CourseHandler) AddLesson(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, ok := parseID(c, "course_id")
	if !ok {
		return
	}
	moduleID, ok := parseID(c, "module_id")
	if !ok {
		return
	}

	var req model.CreateLessonRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	lesson, err := h.courses.AddLesson(c.Request.Context(), courseID, moduleID, claims.UserID, claims.Role, &req)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"lesson": lesson})
}

// UpdateLesson godoc
// PATCH /api/v1/manage/courses/:course_id/modules/:module_id/lessons/:lesson_id
func (h *CourseHandler) UpdateLesson(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, ok := parseID(c, "course_id")
	if !ok {
		return
	}
	moduleID, ok := parseID(c, "module_id")
	if !ok {
		return
	}
	lessonID, ok := parseID(c, "lesson_id")
	if !ok {
		return
	}

	var req model.UpdateLessonRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	lesson, err := h.courses.UpdateLesson(c.Request.Context(), courseID, moduleID, lessonID, claims.UserID, claims.Role, &req)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"lesson": lesson})
}

// DeleteLesson godoc
// DELETE /api/v1/manage/courses/:course_id/modules/:module_id/lessons/:lesson_id
func (h *CourseHandler) DeleteLesson(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, ok := parseID(c, "course_id")
	if !ok {
		return
	}
	moduleID, ok := parseID(c, "module_id")
	if !ok {
		return
	}
	lessonID, ok := parseID(c, "lesson_id")
	if !ok {
		return
	}

	if err := h.courses.DeleteLesson(c.Request.Context(), courseID, moduleID, lessonID, claims.UserID, claims.Role); err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
