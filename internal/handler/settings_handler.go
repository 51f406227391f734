package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/danielpj17/junior-ledger/internal/dto"
	"github.com/danielpj17/junior-ledger/internal/models"
	"github.com/danielpj17/junior-ledger/internal/store"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
	"github.com/danielpj17/junior-ledger/pkg/response"
)

type refreshSettings interface {
	IntervalMinutes() int
	SetIntervalMinutes(ctx context.Context, minutes int) error
}

type feedService interface {
	Feed(ctx context.Context) (models.FeedSettings, error)
	SetFeed(ctx context.Context, req dto.FeedSettingsRequest) (models.FeedSettings, error)
}

// SettingsHandler exposes user preferences: refresh cadence, the external
// calendar feed and the stored Canvas token.
type SettingsHandler struct {
	refresh refreshSettings
	feed    feedService
	store   store.Store
}

// NewSettingsHandler builds a new handler.
func NewSettingsHandler(refresh refreshSettings, feed feedService, st store.Store) *SettingsHandler {
	return &SettingsHandler{refresh: refresh, feed: feed, store: st}
}

// GetRefresh godoc
// @Summary Current auto-refresh cadence
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings/refresh [get]
func (h *SettingsHandler) GetRefresh(c *gin.Context) {
	response.JSON(c, http.StatusOK, dto.RefreshSettingsResponse{IntervalMinutes: h.refresh.IntervalMinutes()})
}

// PutRefresh godoc
// @Summary Set the auto-refresh cadence; zero disables it
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.RefreshSettingsRequest true "Refresh settings"
// @Success 200 {object} response.Envelope
// @Router /settings/refresh [put]
func (h *SettingsHandler) PutRefresh(c *gin.Context) {
	var req dto.RefreshSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid refresh settings payload"))
		return
	}
	if err := h.refresh.SetIntervalMinutes(c.Request.Context(), *req.IntervalMinutes); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.RefreshSettingsResponse{IntervalMinutes: h.refresh.IntervalMinutes()})
}

// GetFeed godoc
// @Summary External calendar feed settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings/feed [get]
func (h *SettingsHandler) GetFeed(c *gin.Context) {
	feed, err := h.feed.Feed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, feed)
}

// PutFeed godoc
// @Summary Point the calendar at an external iCal feed
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.FeedSettingsRequest true "Feed settings"
// @Success 200 {object} response.Envelope
// @Router /settings/feed [put]
func (h *SettingsHandler) PutFeed(c *gin.Context) {
	var req dto.FeedSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid feed settings payload"))
		return
	}
	feed, err := h.feed.SetFeed(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, feed)
}

// GetToken godoc
// @Summary Whether a Canvas token is stored for background syncs
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings/token [get]
func (h *SettingsHandler) GetToken(c *gin.Context) {
	var stored string
	if err := h.store.Get(c.Request.Context(), store.KeyToken, &stored); err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.TokenStatusResponse{Configured: stored != ""})
}

// PutToken godoc
// @Summary Store the Canvas token used by background syncs
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.TokenRequest true "Canvas access token"
// @Success 200 {object} response.Envelope
// @Router /settings/token [put]
func (h *SettingsHandler) PutToken(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid token payload"))
		return
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token must not be blank"))
		return
	}
	if err := h.store.Set(c.Request.Context(), store.KeyToken, token); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.TokenStatusResponse{Configured: true})
}
