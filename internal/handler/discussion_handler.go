package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/LawrenceVelilla/UCourseHub/internal/models"
	appErrors "github.com/LawrenceVelilla/UCourseHub/pkg/errors"
	"github.com/LawrenceVelilla/UCourseHub/pkg/response"
)

type discussionService interface {
	ScrapeForDepartment(ctx context.Context, department string) models.ScrapeResult
	ScrapeForCourse(ctx context.Context, courseCode string, maxPages int) models.ScrapeResult
	ScrapeCourses(ctx context.Context, courseCodes []string, maxPagesPerCourse int) []models.ScrapeResult
	GetDiscussionsByCourseID(ctx context.Context, courseID string, limit, offset int) (models.DiscussionPage, error)
}

// DiscussionHandler exposes the discussion scrape pipelines and the read path
// for course pages.
type DiscussionHandler struct {
	service discussionService
}

// NewDiscussionHandler constructs a discussion handler.
func NewDiscussionHandler(svc discussionService) *DiscussionHandler {
	return &DiscussionHandler{service: svc}
}

// ScrapeCoursesRequest is the payload for the batch course scrape endpoint.
type ScrapeCoursesRequest struct {
	CourseCodes []string `json:"course_codes" binding:"required,min=1"`
	MaxPages    int      `json:"max_pages"`
}

// ScrapeDepartment scrapes discussions for one department prefix.
func (h *DiscussionHandler) ScrapeDepartment(c *gin.Context) {
	department := c.Param("department")
	if department == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "department is required"))
		return
	}

	result := h.service.ScrapeForDepartment(c.Request.Context(), department)
	response.JSON(c, http.StatusOK, result, nil)
}

// ScrapeCourse scrapes discussions mentioning one course code.
func (h *DiscussionHandler) ScrapeCourse(c *gin.Context) {
	courseCode := c.Param("code")
	if courseCode == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "course code is required"))
		return
	}
	maxPages, _ := strconv.Atoi(c.DefaultQuery("max_pages", "2"))

	result := h.service.ScrapeForCourse(c.Request.Context(), courseCode, maxPages)
	response.JSON(c, http.StatusOK, result, nil)
}

// ScrapeCourses scrapes a batch of course codes with title-scoped search.
func (h *DiscussionHandler) ScrapeCourses(c *gin.Context) {
	var req ScrapeCoursesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid scrape payload"))
		return
	}

	results := h.service.ScrapeCourses(c.Request.Context(), req.CourseCodes, req.MaxPages)
	response.JSON(c, http.StatusOK, results, nil)
}

// ListByCourse returns one page of discussions linked to a course.
func (h *DiscussionHandler) ListByCourse(c *gin.Context) {
	courseID := c.Param("id")
	if courseID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "course id is required"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	page, err := h.service.GetDiscussionsByCourseID(c.Request.Context(), courseID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page, nil)
}
