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

// CandidateHandler handles roster management endpoints.
type CandidateHandler struct {
	candidates *service.CandidateService
	log        zerolog.Logger
}

// NewCandidateHandler creates a new CandidateHandler.
func NewCandidateHandler(candidates *service.CandidateService, log zerolog.Logger) *CandidateHandler {
	return &CandidateHandler{
		candidates: candidates,
		log:        log.With().Str("component", "candidate_handler").Logger(),
	}
}

// Create godoc
// POST /api/v1/admin/candidates
func (h *CandidateHandler) Create(c *gin.Context) {
	var req model.CreateCandidateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	candidate, err := h.candidates.Create(c.Request.Context(), &req)
	if err != nil {
		h.log.Error().Err(err).Msg("create candidate failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, candidate)
}

// List godoc
// GET /api/v1/admin/candidates
func (h *CandidateHandler) List(c *gin.Context) {
	candidates, err := h.candidates.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list candidates failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, candidates)
}

// Get godoc
// GET /api/v1/admin/candidates/:id
func (h *CandidateHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	candidate, err := h.candidates.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCandidateNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		h.log.Error().Err(err).Msg("get candidate failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, candidate)
}

// Update godoc
// PUT /api/v1/admin/candidates/:id
func (h *CandidateHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateCandidateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	candidate, err := h.candidates.Update(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrCandidateNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		h.log.Error().Err(err).Msg("update candidate failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, candidate)
}

// Delete godoc
// DELETE /api/v1/admin/candidates/:id
func (h *CandidateHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.candidates.Delete(c.Request.Context(), id); err != nil {
		h.log.Error().Err(err).Msg("delete candidate failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}
