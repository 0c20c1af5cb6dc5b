package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LawrenceVelilla/UCourseHub/internal/models"
	appErrors "github.com/LawrenceVelilla/UCourseHub/pkg/errors"
	"github.com/LawrenceVelilla/UCourseHub/pkg/response"
)

type professorSyncService interface {
	SyncProfessorsToCourses(ctx context.Context, scraped []models.ScrapedProfessor, department string) models.SyncSummary
	FullSync(ctx context.Context, department, schoolID, departmentID string) models.FullSyncSummary
}

// SyncHandler exposes the professor sync pipelines.
type SyncHandler struct {
	service         professorSyncService
	defaultSchoolID string
}

// NewSyncHandler constructs a sync handler. The school id is used when a full
// sync request does not carry one.
func NewSyncHandler(svc professorSyncService, defaultSchoolID string) *SyncHandler {
	return &SyncHandler{service: svc, defaultSchoolID: defaultSchoolID}
}

// SyncProfessorsRequest is the payload for the directory sync endpoint.
type SyncProfessorsRequest struct {
	Department string                    `json:"department" binding:"required"`
	Professors []models.ScrapedProfessor `json:"professors" binding:"required,dive"`
}

// FullSyncRequest is the payload for the full sync endpoint.
type FullSyncRequest struct {
	Department   string `json:"department" binding:"required"`
	SchoolID     string `json:"school_id"`
	DepartmentID string `json:"department_id"`
}

// SyncProfessors runs the directory pipeline over pre-scraped records.
// The summary is always a 200; partial failures live in its errors list.
func (h *SyncHandler) SyncProfessors(c *gin.Context) {
	var req SyncProfessorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sync payload"))
		return
	}

	summary := h.service.SyncProfessorsToCourses(c.Request.Context(), req.Professors, req.Department)
	response.JSON(c, http.StatusOK, summary, nil)
}

// FullSync runs the ratings pipeline then the directory pipeline for one
// department.
func (h *SyncHandler) FullSync(c *gin.Context) {
	var req FullSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sync payload"))
		return
	}
	if req.SchoolID == "" {
		req.SchoolID = h.defaultSchoolID
	}

	summary := h.service.FullSync(c.Request.Context(), req.Department, req.SchoolID, req.DepartmentID)
	response.JSON(c, http.StatusOK, summary, nil)
}
