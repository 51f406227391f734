package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danielpj17/junior-ledger/internal/dto"
	"github.com/danielpj17/junior-ledger/internal/models"
	"github.com/danielpj17/junior-ledger/pkg/response"
)

type documentService interface {
	Documents(ctx context.Context, courseID int64) ([]models.Document, error)
}

// DocumentHandler exposes the extracted-text corpus of a course.
type DocumentHandler struct {
	service documentService
}

// NewDocumentHandler builds a new handler.
func NewDocumentHandler(service documentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// List godoc
// @Summary Extracted documents for a course
// @Tags Documents
// @Produce json
// @Param courseID path int true "Course ID"
// @Param includeText query bool false "Return extracted text instead of metadata only"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseID}/documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	courseID, err := int64Param(c, "courseID")
	if err != nil {
		response.Error(c, err)
		return
	}
	documents, err := h.service.Documents(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if c.Query("includeText") == "true" {
		response.JSON(c, http.StatusOK, documents)
		return
	}
	views := make([]dto.DocumentView, 0, len(documents))
	for _, doc := range documents {
		views = append(views, dto.NewDocumentView(doc))
	}
	response.JSON(c, http.StatusOK, views)
}
