package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alexpaac/testrh-backend/internal/model"
	"github.com/alexpaac/testrh-backend/internal/repository"
	"github.com/alexpaac/testrh-backend/internal/response"
	"github.com/alexpaac/testrh-backend/internal/service"
)

// ReportHandler serves back-office result views.
type ReportHandler struct {
	reports *service.ReportService
	log     zerolog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports *service.ReportService, log zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		log:     log.With().Str("component", "report_handler").Logger(),
	}
}

func parseFilter(c *gin.Context) repository.SessionFilter {
	f := repository.SessionFilter{
		Status: model.SessionStatus(c.Query("status")),
		Search: c.Query("search"),
	}
	if raw := c.Query("quiz_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			f.QuizID = id
		}
	}
	return f
}

// ListSessions godoc
// GET /api/v1/admin/sessions?page=&per_page=&status=&quiz_id=&search=
func (h *ReportHandler) ListSessions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	sessions, total, err := h.reports.ListSessions(c.Request.Context(), parseFilter(c), page, perPage)
	if err != nil {
		h.log.Error().Err(err).Msg("list sessions failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	totalPages := (total + perPage - 1) / perPage
	response.SuccessWithPagination(c, http.StatusOK, sessions, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	})
}

// GetSession godoc
// GET /api/v1/admin/sessions/:id
// Returns the attempt with its full integrity log.
func (h *ReportHandler) GetSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	detail, err := h.reports.GetSessionDetail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
			return
		}
		h.log.Error().Err(err).Msg("get session detail failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, detail)
}

// ExportCSV godoc
// GET /api/v1/admin/sessions/export?status=&quiz_id=&search=
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	filename := "resultats-" + time.Now().UTC().Format("20060102-150405") + ".csv"
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := h.reports.ExportCSV(c.Request.Context(), c.Writer, parseFilter(c)); err != nil {
		h.log.Error().Err(err).Msg("export failed")
	}
}
