package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danielpj17/junior-ledger/internal/dto"
	"github.com/danielpj17/junior-ledger/internal/middleware"
	"github.com/danielpj17/junior-ledger/internal/models"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
	"github.com/danielpj17/junior-ledger/pkg/response"
)

type calendarService interface {
	Month(ctx context.Context, token, focusMonth string) (*dto.CalendarResponse, error)
	Selection(ctx context.Context) (models.CalendarSelection, error)
	SetSelection(ctx context.Context, req dto.SelectionRequest) (models.CalendarSelection, error)
}

// CalendarHandler exposes the merged month view and the context selection.
type CalendarHandler struct {
	service calendarService
}

// NewCalendarHandler builds a new handler.
func NewCalendarHandler(service calendarService) *CalendarHandler {
	return &CalendarHandler{service: service}
}

// Month godoc
// @Summary Three-month event window bucketed by day
// @Tags Calendar
// @Produce json
// @Param month query string false "Focus month (YYYY-MM); defaults to the current month"
// @Success 200 {object} response.Envelope
// @Router /calendar [get]
func (h *CalendarHandler) Month(c *gin.Context) {
	view, err := h.service.Month(c.Request.Context(), tokenFromContext(c), c.Query("month"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "window", view.From+".."+view.To)
	response.JSON(c, http.StatusOK, view, middleware.ExtractMeta(c))
}

// GetSelection godoc
// @Summary Selected calendar context codes
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /calendar/selection [get]
func (h *CalendarHandler) GetSelection(c *gin.Context) {
	selection, err := h.service.Selection(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, selection)
}

// PutSelection godoc
// @Summary Replace the calendar context selection
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body dto.SelectionRequest true "Context codes; empty list restores all"
// @Success 200 {object} response.Envelope
// @Router /calendar/selection [put]
func (h *CalendarHandler) PutSelection(c *gin.Context) {
	var req dto.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid selection payload"))
		return
	}
	selection, err := h.service.SetSelection(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, selection)
}
