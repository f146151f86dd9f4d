package handler

import (
	"errors"
	"net/http"

	"github.com/coursekit/coursekit-backend/internal/middleware"
	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/coursekit/coursekit-backend/internal/response"
	"github.com/coursekit/coursekit-backend/internal/service"
	"github.com/coursekit/coursekit-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuthHandler handles registration, login and session endpoints.
type AuthHandler struct {
	users *service.UserService
	auth  *service.AuthService
	log   zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users *service.UserService, auth *service.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		users: users,
		auth:  auth,
		log:   log.With().Str("component", "auth_handler").Logger(),
	}
}

// Register godoc
// POST /api/v1/auth/register
// Creates a student account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		h.log.Error().Err(err).Msg("register user")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

// Login godoc
// POST /api/v1/auth/login
// Verifies credentials and issues a JWT. A new login supersedes any
// previous session for the same account.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		h.log.Error().Err(err).Msg("authenticate user")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	token, err := h.auth.GenerateToken(c.Request.Context(), user)
	if err != nil {
		h.log.Error().Err(err).Msg("generate token")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"token": token, "user": user})
}

// Logout godoc
// POST /api/v1/auth/logout
// Invalidates the caller's active session.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.auth.InvalidateSession(c.Request.Context(), claims.UserID); err != nil {
		h.log.Error().Err(err).Msg("invalidate session")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the caller's account.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}
