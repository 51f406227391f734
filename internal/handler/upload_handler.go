package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/danielpj17/junior-ledger/internal/dto"
	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
	"github.com/danielpj17/junior-ledger/pkg/response"
)

type uploadService interface {
	List(ctx context.Context, courseID *int64) ([]dto.UploadView, error)
	Create(ctx context.Context, req dto.UploadRequest) (*dto.UploadView, error)
	Delete(ctx context.Context, uploadID string) error
}

// UploadHandler exposes user-supplied study materials.
type UploadHandler struct {
	service uploadService
}

// NewUploadHandler builds a new handler.
func NewUploadHandler(service uploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// List godoc
// @Summary List uploads for a course or the semester-wide bucket
// @Tags Uploads
// @Produce json
// @Param courseId query int false "Course ID; omit for semester-wide uploads"
// @Success 200 {object} response.Envelope
// @Router /uploads [get]
func (h *UploadHandler) List(c *gin.Context) {
	courseID, err := optionalCourseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	uploads, err := h.service.List(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, uploads)
}

// Create godoc
// @Summary Store an uploaded study file
// @Tags Uploads
// @Accept json
// @Produce json
// @Param payload body dto.UploadRequest true "Upload payload (base64 data)"
// @Success 201 {object} response.Envelope
// @Router /uploads [post]
func (h *UploadHandler) Create(c *gin.Context) {
	var req dto.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid upload payload"))
		return
	}
	view, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// Delete godoc
// @Summary Delete an upload by id
// @Tags Uploads
// @Produce json
// @Param uploadID path string true "Upload ID"
// @Success 204 "No Content"
// @Router /uploads/{uploadID} [delete]
func (h *UploadHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("uploadID")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func optionalCourseID(c *gin.Context) (*int64, error) {
	raw := c.Query("courseId")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "courseId must be a numeric id")
	}
	return &id, nil
}
