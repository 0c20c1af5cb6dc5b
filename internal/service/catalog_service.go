package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/LawrenceVelilla/UCourseHub/internal/models"
	"github.com/LawrenceVelilla/UCourseHub/internal/names"
	appErrors "github.com/LawrenceVelilla/UCourseHub/pkg/errors"
)

type professorReader interface {
	FindByID(ctx context.Context, id string) (*models.Professor, error)
	ListByDepartment(ctx context.Context, department string) ([]models.Professor, error)
}

type professorCourseReader interface {
	ListByProfessor(ctx context.Context, professorID string) ([]models.ProfessorCourse, error)
}

type courseLister interface {
	ListByDepartmentPrefix(ctx context.Context, prefix string) ([]models.CourseRef, error)
}

// CatalogService serves the read side of the catalog: professor pages and
// course listings built by the sync pipelines.
type CatalogService struct {
	professors professorReader
	links      professorCourseReader
	courses    courseLister
	logger     *zap.Logger
}

// NewCatalogService builds a CatalogService.
func NewCatalogService(professors professorReader, links professorCourseReader, courses courseLister, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		professors: professors,
		links:      links,
		courses:    courses,
		logger:     logger,
	}
}

// GetProfessor returns one professor with its recorded course links.
func (s *CatalogService) GetProfessor(ctx context.Context, id string) (*models.ProfessorProfile, error) {
	professor, err := s.professors.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor")
	}
	if professor == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "professor not found")
	}

	links, err := s.links.ListByProfessor(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor courses")
	}

	return &models.ProfessorProfile{Professor: *professor, Courses: links}, nil
}

// ListProfessorsByDepartment returns all professors in a department. The
// display-name mapping applies, so scraper department names are accepted.
func (s *CatalogService) ListProfessorsByDepartment(ctx context.Context, department string) ([]models.Professor, error) {
	if strings.TrimSpace(department) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department is required")
	}
	canonical := names.NormalizeDepartment(department)

	professors, err := s.professors.ListByDepartment(ctx, canonical)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list professors")
	}
	return professors, nil
}

// ListCoursesByPrefix returns catalog courses for a subject prefix such as
// "CMPUT".
func (s *CatalogService) ListCoursesByPrefix(ctx context.Context, prefix string) ([]models.CourseRef, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject prefix is required")
	}

	courses, err := s.courses.ListByDepartmentPrefix(ctx, prefix)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}
