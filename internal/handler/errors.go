package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/coursekit/coursekit-backend/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// failDomain translates a domain sentinel into the envelope error the API
// contract promises. Unknown errors become 500 INTERNAL_ERROR; handlers
// log those before calling this.
func failDomain(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, model.ErrNotEnrolled):
		response.Fail(c, http.StatusForbidden, response.ErrNotEnrolled)
	case errors.Is(err, model.ErrConflict):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, model.ErrAttemptLimitExceeded):
		response.Fail(c, http.StatusConflict, response.ErrAttemptLimitExceeded)
	case errors.Is(err, model.ErrAttemptNotWritable):
		response.Fail(c, http.StatusConflict, response.ErrAttemptNotWritable)
	case errors.Is(err, model.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case errors.Is(err, model.ErrNotSubmitted):
		response.Fail(c, http.StatusConflict, response.ErrNotSubmitted)
	case errors.Is(err, model.ErrInvalidAnswerShape):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidAnswerShape)
	case errors.Is(err, model.ErrTestNotAvailable):
		response.Fail(c, http.StatusConflict, response.ErrTestNotAvailable)
	case errors.Is(err, model.ErrTestLocked):
		response.Fail(c, http.StatusConflict, response.ErrTestLocked)
	case errors.Is(err, model.ErrNoQuestions):
		response.Fail(c, http.StatusBadRequest, response.ErrNoQuestions)
	case errors.Is(err, model.ErrNotPublishable):
		response.Fail(c, http.StatusBadRequest, response.ErrNotPublishable)
	case errors.Is(err, model.ErrNotGradable):
		response.Fail(c, http.StatusBadRequest, response.ErrNotGradable)
	case errors.Is(err, model.ErrInvalidGrade):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidGrade)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// parseID reads a UUID path param, failing the request on bad input.
func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// pageParams reads page/per_page query params with sane bounds.
func pageParams(c *gin.Context) (page, perPage int) {
	page = queryInt(c, "page", 1)
	perPage = queryInt(c, "per_page", 20)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}

func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// buildPagination assembles the envelope pagination block.
func buildPagination(page, perPage int, total int64) *response.Pagination {
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	}
}
