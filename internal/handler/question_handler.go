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

// QuestionHandler handles question authoring endpoints.
type QuestionHandler struct {
	questions *service.QuestionService
	log       zerolog.Logger
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questions *service.QuestionService, log zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		questions: questions,
		log:       log.With().Str("component", "question_handler").Logger(),
	}
}

// AddQuestion godoc
// POST /api/v1/manage/tests/:test_id/questions
func (h *QuestionHandler) AddQuestion(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := parseID(c, "test_id")
	if !ok {
		return
	}

	var req model.AddQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questions.Add(c.Request.Context(), testID, claims.UserID, claims.Role, &req)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// ListQuestions godoc
// GET /api/v1/manage/tests/:test_id/questions
// Author view: includes correctness flags.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := parseID(c, "test_id")
	if !ok {
		return
	}

	questions, err := h.questions.List(c.Request.Context(), testID, claims.UserID, claims.Role)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// ReplaceQuestions godoc
// PUT /api/v1/manage/tests/:test_id/questions
// Swaps the full question set in one transaction.
func (h *QuestionHandler) ReplaceQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := parseID(c, "test_id")
	if !ok {
		return
	}

	var req struct {
		Questions []model.AddQuestionRequest `json:"questions" binding:"required,max=200,dive"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions, err := h.questions.Replace(c.Request.Context(), testID, claims.UserID, claims.Role, req.Questions)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// DeleteQuestion godoc
// DELETE /api/v1/manage/tests/:test_id/questions/:question_id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := parseID(c, "test_id")
	if !ok {
		return
	}
	questionID, ok := parseID(c, "question_id")
	if !ok {
		return
	}

	if err := h.questions.Delete(c.Request.Context(), testID, questionID, claims.UserID, claims.Role); err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
