package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/LawrenceVelilla/UCourseHub/internal/models"
	"github.com/LawrenceVelilla/UCourseHub/internal/names"
)

type courseFinder interface {
	FindByCode(ctx context.Context, courseCode string) (*models.CourseRef, error)
}

type courseLinkWriter interface {
	Link(ctx context.Context, link models.ProfessorCourse) (bool, error)
}

// CourseLinkService resolves free-text course mentions to catalog courses and
// records professor-course links.
type CourseLinkService struct {
	courses courseFinder
	links   courseLinkWriter
	logger  *zap.Logger
	now     func() time.Time
}

// NewCourseLinkService builds a CourseLinkService.
func NewCourseLinkService(courses courseFinder, links courseLinkWriter, logger *zap.Logger) *CourseLinkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseLinkService{
		courses: courses,
		links:   links,
		logger:  logger,
		now:     time.Now,
	}
}

// LinkProfessorToCourses attempts one link per scraped course mention. Each
// attempt is independent; failures are recorded per item and never abort the
// batch. Term defaults to "Unknown" and year to the current calendar year.
func (s *CourseLinkService) LinkProfessorToCourses(ctx context.Context, professorID string, scrapedCourses []models.ScrapedCourse) models.LinkResult {
	result := models.LinkResult{Details: []models.LinkDetail{}}

	for _, scraped := range scrapedCourses {
		courseCode := names.ExtractCourseCode(scraped.Course)
		if courseCode == "" {
			result.Failed++
			result.Details = append(result.Details, models.LinkDetail{
				CourseCode: scraped.Course,
				Success:    false,
				Reason:     "could not extract course code",
			})
			continue
		}

		course, err := s.courses.FindByCode(ctx, courseCode)
		if err != nil {
			result.Failed++
			result.Details = append(result.Details, models.LinkDetail{
				CourseCode: courseCode,
				Success:    false,
				Reason:     err.Error(),
			})
			continue
		}
		if course == nil {
			result.Failed++
			result.Details = append(result.Details, models.LinkDetail{
				CourseCode: courseCode,
				Success:    false,
				Reason:     "course not found in database",
			})
			continue
		}

		term := scraped.Term
		if term == "" {
			term = "Unknown"
		}
		year := s.now().Year()
		if scraped.Year != "" {
			if parsed, err := strconv.Atoi(scraped.Year); err == nil {
				year = parsed
			}
		}

		if _, err := s.links.Link(ctx, models.ProfessorCourse{
			ProfessorID: professorID,
			CourseID:    course.ID,
			Term:        term,
			Year:        year,
		}); err != nil {
			result.Failed++
			result.Details = append(result.Details, models.LinkDetail{
				CourseCode: courseCode,
				Success:    false,
				Reason:     err.Error(),
			})
			continue
		}

		result.Linked++
		result.Details = append(result.Details, models.LinkDetail{
			CourseCode: courseCode,
			Success:    true,
		})
	}

	return result
}
