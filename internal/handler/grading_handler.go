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

// GradingHandler handles the instructor side of submitted attempts.
type GradingHandler struct {
	grading *service.GradingService
	log     zerolog.Logger
}

// NewGradingHandler creates a new GradingHandler.
func NewGradingHandler(grading *service.GradingService, log zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		grading: grading,
		log:     log.With().Str("component", "grading_handler").Logger(),
	}
}

// ListAttempts godoc
// GET /api/v1/manage/tests/:test_id/attempts
// Lists all attempts against an authored test, newest first.
func (h *GradingHandler) ListAttempts(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := parseID(c, "test_id")
	if !ok {
		return
	}
	page, perPage := pageParams(c)

	attempts, total, err := h.grading.ListAttempts(c.Request.Context(), testID, claims.UserID, claims.Role, page, perPage)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"attempts": attempts}, buildPagination(page, perPage, total))
}

// GetAttemptDetail godoc
// GET /api/v1/manage/tests/:test_id/attempts/:attempt_id
// Full per-question review of one attempt, correctness included.
func (h *GradingHandler) GetAttemptDetail(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := parseID(c, "test_id")
	if !ok {
		return
	}
	attemptID, ok := parseID(c, "attempt_id")
	if !ok {
		return
	}

	attempt, review, err := h.grading.AttemptDetail(c.Request.Context(), testID, attemptID, claims.UserID, claims.Role)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt, "review": review})
}

// GradeAttempt godoc
// POST /api/v1/manage/tests/:test_id/attempts/:attempt_id/grade
// Assigns points to text responses and moves the attempt to GRADED.
func (h *GradingHandler) GradeAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := parseID(c, "test_id")
	if !ok {
		return
	}
	attemptID, ok := parseID(c, "attempt_id")
	if !ok {
		return
	}

	var req struct {
		Grades []model.GradeResponseRequest `json:"grades" binding:"required,min=1,max=200,dive"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	summary, err := h.grading.Grade(c.Request.Context(), testID, attemptID, claims.UserID, claims.Role, req.Grades)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"summary": summary})
}
