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

type courseService interface {
	List(ctx context.Context, token string, includeHidden bool) ([]models.Course, error)
	Update(ctx context.Context, token string, courseID int64, req dto.CourseUpdateRequest) (*models.Course, error)
	Color(ctx context.Context, token string, courseID int64) (string, error)
}

// CourseHandler exposes the Canvas course surface.
type CourseHandler struct {
	service courseService
}

// NewCourseHandler builds a new handler.
func NewCourseHandler(service courseService) *CourseHandler {
	return &CourseHandler{service: service}
}

// List godoc
// @Summary List courses with local preferences applied
// @Tags Courses
// @Produce json
// @Param includeHidden query bool false "Include hidden courses"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	includeHidden := c.Query("includeHidden") == "true"
	courses, err := h.service.List(c.Request.Context(), tokenFromContext(c), includeHidden)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

// Update godoc
// @Summary Patch course nickname or visibility
// @Tags Courses
// @Accept json
// @Produce json
// @Param courseID path int true "Course ID"
// @Param payload body dto.CourseUpdateRequest true "Course patch"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseID} [patch]
func (h *CourseHandler) Update(c *gin.Context) {
	courseID, err := int64Param(c, "courseID")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CourseUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course patch payload"))
		return
	}
	course, err := h.service.Update(c.Request.Context(), tokenFromContext(c), courseID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Color godoc
// @Summary Canvas dashboard color for a course
// @Tags Courses
// @Produce json
// @Param courseID path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseID}/color [get]
func (h *CourseHandler) Color(c *gin.Context) {
	courseID, err := int64Param(c, "courseID")
	if err != nil {
		response.Error(c, err)
		return
	}
	hexcode, err := h.service.Color(c.Request.Context(), tokenFromContext(c), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.CourseColorResponse{CourseID: courseID, Hexcode: hexcode})
}
