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

// AttemptHandler handles the student attempt lifecycle: start, progress,
// answer recording, submit and results.
type AttemptHandler struct {
	attempts *service.AttemptService
	resps    *service.ResponseService
	scoring  *service.ScoringService
	log      zerolog.Logger
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(
	attempts *service.AttemptService,
	resps *service.ResponseService,
	scoring *service.ScoringService,
	log zerolog.Logger,
) *AttemptHandler {
	return &AttemptHandler{
		attempts: attempts,
		resps:    resps,
		scoring:  scoring,
		log:      log.With().Str("component", "attempt_handler").Logger(),
	}
}

// StartAttempt godoc
// POST /api/v1/tests/:test_id/attempts
// Starts an attempt, or resumes the caller's active one. 201 on a fresh
// attempt, 200 on resume.
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := parseID(c, "test_id")
	if !ok {
		return
	}

	attempt, created, err := h.attempts.Start(c.Request.Context(), testID, claims.UserID)
	if err != nil {
		failDomain(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, gin.H{"attempt": attempt, "resumed": !created})
}

// GetState godoc
// GET /api/v1/tests/:test_id/attempts/:attempt_id
// Returns attempt progress: elapsed/remaining time and answered count.
func (h *AttemptHandler) GetState(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := parseID(c, "test_id")
	if !ok {
		return
	}
	attemptID, ok := parseID(c, "attempt_id")
	if !ok {
		return
	}

	state, err := h.attempts.State(c.Request.Context(), testID, attemptID, claims.UserID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": state})
}

// SubmitResponse godoc
// PUT /api/v1/tests/:test_id/attempts/:attempt_id/responses
// Records (or overwrites) the answer to one question. Idempotent per
// (attempt, question); retries are safe.
func (h *AttemptHandler) SubmitResponse(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := parseID(c, "test_id")
	if !ok {
		return
	}
	attemptID, ok := parseID(c, "attempt_id")
	if !ok {
		return
	}

	var req model.SubmitResponseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	resp, err := h.resps.Submit(c.Request.Context(), testID, attemptID, claims.UserID, &req)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"response": resp})
}

// SubmitAttempt godoc
// POST /api/v1/tests/:test_id/attempts/:attempt_id/submit
// One-way finalize. A duplicate submit returns 409 ALREADY_SUBMITTED.
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := parseID(c, "test_id")
	if !ok {
		return
	}
	attemptID, ok := parseID(c, "attempt_id")
	if !ok {
		return
	}

	summary, err := h.scoring.Finalize(c.Request.Context(), testID, attemptID, claims.UserID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"summary": summary})
}

// GetResults godoc
// GET /api/v1/tests/:test_id/attempts/:attempt_id/results
// Returns the score summary and per-question review. 409 NOT_SUBMITTED
// while the attempt is still in progress.
func (h *AttemptHandler) GetResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := parseID(c, "test_id")
	if !ok {
		return
	}
	attemptID, ok := parseID(c, "attempt_id")
	if !ok {
		return
	}

	result, err := h.scoring.Results(c.Request.Context(), testID, attemptID, claims.UserID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// ListMine godoc
// GET /api/v1/attempts
// Returns the caller's attempt history across all tests.
func (h *AttemptHandler) ListMine(c *gin.Context) {
	claims := middleware.GetClaims(c)

	attempts, err := h.attempts.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("list attempts")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}
