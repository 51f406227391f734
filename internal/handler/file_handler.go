package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danielpj17/junior-ledger/internal/dto"
	"github.com/danielpj17/junior-ledger/internal/middleware"
	"github.com/danielpj17/junior-ledger/internal/models"
	"github.com/danielpj17/junior-ledger/pkg/response"
)

type fileSyncService interface {
	FileTree(ctx context.Context, token string, courseID int64) (*dto.FileTreeResponse, error)
	Sync(ctx context.Context, token string, courseID int64) (*dto.SyncReport, error)
	FileContent(ctx context.Context, courseID, fileID int64) (*models.CachedFile, []byte, error)
}

// FileHandler exposes the course file area and the cache reconciler.
type FileHandler struct {
	service fileSyncService
}

// NewFileHandler builds a new handler.
func NewFileHandler(service fileSyncService) *FileHandler {
	return &FileHandler{service: service}
}

// Tree godoc
// @Summary Course file tree with cache and restriction state
// @Tags Files
// @Produce json
// @Param courseID path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseID}/files [get]
func (h *FileHandler) Tree(c *gin.Context) {
	courseID, err := int64Param(c, "courseID")
	if err != nil {
		response.Error(c, err)
		return
	}
	tree, err := h.service.FileTree(c.Request.Context(), tokenFromContext(c), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tree)
}

// Sync godoc
// @Summary Reconcile the course file cache and rebuild extracted documents
// @Tags Files
// @Produce json
// @Param courseID path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseID}/files/sync [post]
func (h *FileHandler) Sync(c *gin.Context) {
	courseID, err := int64Param(c, "courseID")
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	report, err := h.service.Sync(c.Request.Context(), tokenFromContext(c), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, report, meta)
}

// Content godoc
// @Summary Cached bytes of a synced course file
// @Tags Files
// @Produce octet-stream
// @Param courseID path int true "Course ID"
// @Param fileID path int true "File ID"
// @Success 200 {file} binary
// @Router /courses/{courseID}/files/{fileID}/content [get]
func (h *FileHandler) Content(c *gin.Context) {
	courseID, err := int64Param(c, "courseID")
	if err != nil {
		response.Error(c, err)
		return
	}
	fileID, err := int64Param(c, "fileID")
	if err != nil {
		response.Error(c, err)
		return
	}
	entry, data, err := h.service.FileContent(c.Request.Context(), courseID, fileID)
	if err != nil {
		response.Error(c, err)
		return
	}
	contentType := entry.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", entry.Name))
	c.Data(http.StatusOK, contentType, data)
}
