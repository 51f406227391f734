package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danielpj17/junior-ledger/internal/dto"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
	"github.com/danielpj17/junior-ledger/pkg/response"
)

type ledgerService interface {
	Ledger(ctx context.Context) (*dto.LedgerResponse, error)
	Post(ctx context.Context, req dto.LedgerEntryRequest) (*dto.LedgerResponse, error)
	Reset(ctx context.Context) error
}

// LedgerHandler exposes the double-entry practice sandbox.
type LedgerHandler struct {
	service ledgerService
}

// NewLedgerHandler builds a new handler.
func NewLedgerHandler(service ledgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// State godoc
// @Summary Practice ledger with derived T-account balances
// @Tags Ledger
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /ledger [get]
func (h *LedgerHandler) State(c *gin.Context) {
	ledger, err := h.service.Ledger(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ledger)
}

// Post godoc
// @Summary Post a debit/credit pair to the practice ledger
// @Tags Ledger
// @Accept json
// @Produce json
// @Param payload body dto.LedgerEntryRequest true "Ledger entry"
// @Success 201 {object} response.Envelope
// @Router /ledger/entries [post]
func (h *LedgerHandler) Post(c *gin.Context) {
	var req dto.LedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid ledger entry payload"))
		return
	}
	ledger, err := h.service.Post(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, ledger)
}

// Reset godoc
// @Summary Reset the practice ledger
// @Tags Ledger
// @Produce json
// @Success 204 "No Content"
// @Router /ledger [delete]
func (h *LedgerHandler) Reset(c *gin.Context) {
	if err := h.service.Reset(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
