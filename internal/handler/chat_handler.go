package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danielpj17/junior-ledger/internal/dto"
	"github.com/danielpj17/junior-ledger/internal/models"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
	"github.com/danielpj17/junior-ledger/pkg/response"
)

type chatService interface {
	Send(ctx context.Context, token string, courseID int64, req dto.ChatRequest) (*dto.ChatResponse, error)
	History(ctx context.Context, courseID int64) ([]models.ChatMessage, error)
	Clear(ctx context.Context, courseID int64) error
}

// ChatHandler exposes the per-course study assistant.
type ChatHandler struct {
	service chatService
}

// NewChatHandler builds a new handler.
func NewChatHandler(service chatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// Send godoc
// @Summary Send a message to the course assistant
// @Tags Chat
// @Accept json
// @Produce json
// @Param courseID path int true "Course ID"
// @Param payload body dto.ChatRequest true "User message"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseID}/chat [post]
func (h *ChatHandler) Send(c *gin.Context) {
	courseID, err := int64Param(c, "courseID")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid chat payload"))
		return
	}
	reply, err := h.service.Send(c.Request.Context(), tokenFromContext(c), courseID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reply)
}

// History godoc
// @Summary Persisted conversation for a course
// @Tags Chat
// @Produce json
// @Param courseID path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseID}/chat [get]
func (h *ChatHandler) History(c *gin.Context) {
	courseID, err := int64Param(c, "courseID")
	if err != nil {
		response.Error(c, err)
		return
	}
	messages, err := h.service.History(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.ChatHistoryResponse{CourseID: courseID, Messages: messages})
}

// Clear godoc
// @Summary Clear the conversation for a course
// @Tags Chat
// @Produce json
// @Param courseID path int true "Course ID"
// @Success 204 "No Content"
// @Router /courses/{courseID}/chat [delete]
func (h *ChatHandler) Clear(c *gin.Context) {
	courseID, err := int64Param(c, "courseID")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Clear(c.Request.Context(), courseID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
