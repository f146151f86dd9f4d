package handler

import (
	"net/http"

	"github.com/coursekit/coursekit-backend/internal/middleware"
	"github.com/coursekit/coursekit-backend/internal/response"
	"github.com/coursekit/coursekit-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// EnrollmentHandler handles enrollment endpoints.
type EnrollmentHandler struct {
	enrolls *service.EnrollmentService
	log     zerolog.Logger
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(enrolls *service.EnrollmentService, log zerolog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrolls: enrolls,
		log:     log.With().Str("component", "enrollment_handler").Logger(),
	}
}

// Enroll godoc
// POST /api/v1/courses/:course_id/enroll
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, ok := parseID(c, "course_id")
	if !ok {
		return
	}

	enrollment, err := h.enrolls.Enroll(c.Request.Context(), courseID, claims.UserID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"enrollment": enrollment})
}

// ListMine godoc
// GET /api/v1/enrollments
func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	claims := middleware.GetClaims(c)

	enrollments, err := h.enrolls.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("list enrollments")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"enrollments": enrollments})
}

// CourseStats godoc
// GET /api/v1/manage/courses/:course_id/stats
func (h *EnrollmentHandler) CourseStats(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID, ok := parseID(c, "course_id")
	if !ok {
		return
	}

	count, err := h.enrolls.CourseStats(c.Request.Context(), courseID, claims.UserID, claims.Role)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"enrolled_count": count})
}
