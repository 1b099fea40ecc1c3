package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alexpaac/testrh-backend/internal/model"
	"github.com/alexpaac/testrh-backend/internal/response"
	"github.com/alexpaac/testrh-backend/internal/service"
	"github.com/alexpaac/testrh-backend/internal/validator"
)

// PortalHandler handles the candidate-facing REST endpoints.
type PortalHandler struct {
	portal *service.PortalService
	log    zerolog.Logger
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(portal *service.PortalService, log zerolog.Logger) *PortalHandler {
	return &PortalHandler{
		portal: portal,
		log:    log.With().Str("component", "portal_handler").Logger(),
	}
}

// Login godoc
// POST /api/v1/test/login
// Validates both access codes and opens or resumes the attempt.
func (h *PortalHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.portal.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuizNotFound), errors.Is(err, service.ErrQuizInactive):
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidAccessCode)
		case errors.Is(err, service.ErrCandidateNotFound):
			response.Fail(c, http.StatusUnauthorized, response.ErrUnknownCandidate)
		case errors.Is(err, service.ErrTestAlreadyDone):
			response.Fail(c, http.StatusConflict, response.ErrTestAlreadyDone)
		case errors.Is(err, service.ErrTestCancelled):
			response.Fail(c, http.StatusConflict, response.ErrTestCancelled)
		case errors.Is(err, service.ErrNoQuestions):
			response.Fail(c, http.StatusConflict, response.ErrNoQuestions)
		default:
			h.log.Error().Err(err).Msg("login failed")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	status := http.StatusCreated
	if result.Resumed {
		status = http.StatusOK
	}
	response.Success(c, status, result)
}

// GetSession godoc
// GET /api/v1/test/sessions/:session_id
// Returns the session record so the portal can restore its view.
func (h *PortalHandler) GetSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	session, err := h.portal.GetSession(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
			return
		}
		h.log.Error().Err(err).Msg("get session failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, session)
}
