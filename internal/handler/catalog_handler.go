package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LawrenceVelilla/UCourseHub/internal/models"
	appErrors "github.com/LawrenceVelilla/UCourseHub/pkg/errors"
	"github.com/LawrenceVelilla/UCourseHub/pkg/response"
)

type catalogService interface {
	GetProfessor(ctx context.Context, id string) (*models.ProfessorProfile, error)
	ListProfessorsByDepartment(ctx context.Context, department string) ([]models.Professor, error)
	ListCoursesByPrefix(ctx context.Context, prefix string) ([]models.CourseRef, error)
}

// CatalogHandler exposes the read side of the catalog built by the sync
// pipelines.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs a catalog handler.
func NewCatalogHandler(svc catalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// GetProfessor returns one professor with its course links.
func (h *CatalogHandler) GetProfessor(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "professor id is required"))
		return
	}

	profile, err := h.service.GetProfessor(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// ListProfessors returns all professors in a department.
func (h *CatalogHandler) ListProfessors(c *gin.Context) {
	professors, err := h.service.ListProfessorsByDepartment(c.Request.Context(), c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professors, nil)
}

// ListCourses returns catalog courses for a subject prefix.
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	courses, err := h.service.ListCoursesByPrefix(c.Request.Context(), c.Query("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}
