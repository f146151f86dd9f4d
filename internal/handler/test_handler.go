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

// TestHandler handles test authoring and the student-facing paper.
type TestHandler struct {
	tests *service.TestService
	log   zerolog.Logger
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(tests *service.TestService, log zerolog.Logger) *TestHandler {
	return &TestHandler{
		tests: tests,
		log:   log.With().Str("component", "test_handler").Logger(),
	}
}

// CreateTest godoc
// POST /api/v1/manage/tests
func (h *TestHandler) CreateTest(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.tests.Create(c.Request.Context(), claims.UserID, claims.Role, &req)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"test": test})
}

// ListTests godoc
// GET /api/v1/manage/tests
func (h *TestHandler) ListTests(c *gin.Context) {
	claims := middleware.GetClaims(c)
	page, perPage := pageParams(c)

	tests, total, err := h.tests.ListByAuthor(c.Request.Context(), claims.UserID, page, perPage)
	if err != nil {
		h.log.Error().Err(err).Msg("list tests")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"tests": tests}, buildPagination(page, perPage, total))
}

// GetTest godoc
// GET /api/v1/manage/tests/:test_id
func (h *TestHandler) GetTest(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := parseID(c, "test_id")
	if !ok {
		return
	}

	test, err := h.tests.Get(c.Request.Context(), testID, claims.UserID, claims.Role)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": test})
}

// UpdateTest godoc
// PATCH /api/v1/manage/tests/:test_id
func (h *TestHandler) UpdateTest(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := parseID(c, "test_id")
	if !ok {
		return
	}

	var req model.UpdateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.tests.Update(c.Request.Context(), testID, claims.UserID, claims.Role, &req)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": test})
}

// PublishTest godoc
// POST /api/v1/manage/tests/:test_id/publish
func (h *TestHandler) PublishTest(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := parseID(c, "test_id")
	if !ok {
		return
	}

	test, err := h.tests.Publish(c.Request.Context(), testID, claims.UserID, claims.Role)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": test})
}

// ArchiveTest godoc
// POST /api/v1/manage/tests/:test_id/archive
func (h *TestHandler) ArchiveTest(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := parseID(c, "test_id")
	if !ok {
		return
	}

	test, err := h.tests.Archive(c.Request.Context(), testID, claims.UserID, claims.Role)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": test})
}

// DeleteTest godoc
// DELETE /api/v1/manage/tests/:test_id
func (h *TestHandler) DeleteTest(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := parseID(c, "test_id")
	if !ok {
		return
	}

	if err := h.tests.Delete(c.Request.Context(), testID, claims.UserID, claims.Role); err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GetPaper godoc
// GET /api/v1/tests/:test_id/paper
// Returns the question set with correctness stripped. Published tests
// only; enrollment required when the test is course-linked.
func (h *TestHandler) GetPaper(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := parseID(c, "test_id")
	if !ok {
		return
	}

	paper, err := h.tests.Paper(c.Request.Context(), testID, claims.UserID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"paper": paper})
}
