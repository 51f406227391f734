package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danielpj17/junior-ledger/internal/dto"
	"github.com/danielpj17/junior-ledger/internal/middleware"
	"github.com/danielpj17/junior-ledger/pkg/response"
)

type agendaService interface {
	Agenda(ctx context.Context, token string) (*dto.AgendaResponse, bool, error)
}

// AgendaHandler exposes the deadline dashboard.
type AgendaHandler struct {
	service agendaService
}

// NewAgendaHandler builds a new handler.
func NewAgendaHandler(service agendaService) *AgendaHandler {
	return &AgendaHandler{service: service}
}

// Agenda godoc
// @Summary Upcoming deadlines per course with the exam headline
// @Tags Agenda
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /agenda [get]
func (h *AgendaHandler) Agenda(c *gin.Context) {
	start := time.Now()
	agenda, cacheHit, err := h.service.Agenda(c.Request.Context(), tokenFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, agenda, meta)
}
