package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/LawrenceVelilla/UCourseHub/internal/models"
	"github.com/LawrenceVelilla/UCourseHub/internal/names"
	appErrors "github.com/LawrenceVelilla/UCourseHub/pkg/errors"
)

type professorMatcher interface {
	FindMatchingProfessor(ctx context.Context, scrapedName, department string) (*models.ProfessorRef, error)
	CreateProfessorWithoutRatings(ctx context.Context, name, department string) (string, bool, error)
}

type courseLinker interface {
	LinkProfessorToCourses(ctx context.Context, professorID string, scrapedCourses []models.ScrapedCourse) models.LinkResult
}

type directoryFetcher interface {
	FetchProfessors(ctx context.Context, department string) ([]models.ScrapedProfessor, error)
}

type ratingsFetcher interface {
	FetchProfessors(ctx context.Context, schoolID, departmentName, departmentID string) ([]models.RatingsProfessor, error)
}

type professorBulkUpserter interface {
	BulkUpsertByRMPID(ctx context.Context, professors []models.Professor) (int, error)
}

// ProfessorSyncService sequences the ratings import, the directory match and
// the course-link stages into named pipelines. Every pipeline entry returns
// its summary and never raises; a failed top-level fetch sets Fatal on the
// summary instead.
type ProfessorSyncService struct {
	matcher    professorMatcher
	linker     courseLinker
	directory  directoryFetcher
	ratings    ratingsFetcher
	professors professorBulkUpserter
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewProfessorSyncService builds a ProfessorSyncService.
func NewProfessorSyncService(
	matcher professorMatcher,
	linker courseLinker,
	directory directoryFetcher,
	ratings ratingsFetcher,
	professors professorBulkUpserter,
	metrics *MetricsService,
	logger *zap.Logger,
) *ProfessorSyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfessorSyncService{
		matcher:    matcher,
		linker:     linker,
		directory:  directory,
		ratings:    ratings,
		professors: professors,
		metrics:    metrics,
		validator:  validator.New(),
		logger:     logger,
	}
}

// SyncProfessorsToCourses runs the directory pipeline over pre-scraped
// records: match or create each professor, then link its course mentions.
// Professors are processed in source order and one failure never aborts the
// run.
func (s *ProfessorSyncService) SyncProfessorsToCourses(ctx context.Context, scraped []models.ScrapedProfessor, department string) models.SyncSummary {
	canonical := names.NormalizeDepartment(department)
	s.logger.Info("starting directory sync",
		zap.String("department", department),
		zap.String("canonical", canonical),
		zap.Int("scraped", len(scraped)))

	summary := models.SyncSummary{
		TotalScraped: len(scraped),
		Errors:       []string{},
	}

	for _, prof := range scraped {
		if err := s.processProfessor(ctx, prof, canonical, &summary); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("failed to process %s: %v", prof.Name, err))
		}
	}

	s.metrics.RecordSyncRun("directory")
	s.metrics.RecordMatchOutcomes(summary.Matched, summary.NewProfessors)
	s.metrics.RecordCoursesLinked(summary.CoursesLinked)

	s.logger.Info("directory sync complete",
		zap.Int("matched", summary.Matched),
		zap.Int("new", summary.NewProfessors),
		zap.Int("linked", summary.CoursesLinked),
		zap.Int("failed", summary.CoursesFailed))
	return summary
}

func (s *ProfessorSyncService) processProfessor(ctx context.Context, prof models.ScrapedProfessor, department string, summary *models.SyncSummary) error {
	if err := s.validator.Struct(prof); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scraped record")
	}

	match, err := s.matcher.FindMatchingProfessor(ctx, prof.Name, department)
	if err != nil {
		return err
	}

	var professorID string
	if match != nil {
		professorID = match.ID
		summary.Matched++
	} else {
		id, created, err := s.matcher.CreateProfessorWithoutRatings(ctx, prof.Name, department)
		if err != nil {
			return err
		}
		professorID = id
		if created {
			summary.NewProfessors++
		} else {
			summary.Matched++
		}
	}

	linkResult := s.linker.LinkProfessorToCourses(ctx, professorID, prof.Courses)
	summary.CoursesLinked += linkResult.Linked
	summary.CoursesFailed += linkResult.Failed
	for _, detail := range linkResult.Details {
		if !detail.Success {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %s - %s", prof.Name, detail.CourseCode, detail.Reason))
		}
	}
	return nil
}

// SyncRatings runs the ratings-only pipeline: fetch every ratings-source
// professor for the department, deduplicate by normalized full name keeping
// the record with the most ratings, then bulk upsert.
func (s *ProfessorSyncService) SyncRatings(ctx context.Context, schoolID, departmentName, departmentID string) (scraped, saved int, err error) {
	records, err := s.ratings.FetchProfessors(ctx, schoolID, departmentName, departmentID)
	if err != nil {
		return 0, 0, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "ratings fetch failed")
	}
	scraped = len(records)
	if scraped == 0 {
		return 0, 0, nil
	}

	unique := dedupeByName(records)
	s.logger.Info("deduplicated ratings records",
		zap.Int("scraped", scraped),
		zap.Int("unique", len(unique)))

	rows := make([]models.Professor, 0, len(unique))
	for _, record := range unique {
		rows = append(rows, ratingsToProfessor(record))
	}

	saved, err = s.professors.BulkUpsertByRMPID(ctx, rows)
	if err != nil {
		return scraped, saved, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "ratings upsert failed")
	}
	s.metrics.RecordSyncRun("ratings")
	return scraped, saved, nil
}

// FullSync runs the ratings pipeline then the directory pipeline for one
// department and merges both summaries. A fatal stage failure is recorded on
// the summary and stops the run; it is never raised.
func (s *ProfessorSyncService) FullSync(ctx context.Context, department, schoolID, departmentID string) models.FullSyncSummary {
	summary := models.FullSyncSummary{
		Department: department,
		Errors:     []string{},
	}
	s.metrics.RecordSyncRun("full")

	ratingsDepartment := names.NormalizeDepartment(department)
	s.logger.Info("starting full sync",
		zap.String("department", department),
		zap.String("ratings_department", ratingsDepartment))

	scraped, saved, err := s.SyncRatings(ctx, schoolID, ratingsDepartment, departmentID)
	summary.RatingsScraped = scraped
	summary.RatingsSaved = saved
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("fatal: %v", err))
		summary.Fatal = true
		return summary
	}

	directoryRecords, err := s.directory.FetchProfessors(ctx, department)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("fatal: directory fetch failed: %v", err))
		summary.Fatal = true
		return summary
	}
	summary.DirScraped = len(directoryRecords)
	if len(directoryRecords) == 0 {
		s.logger.Warn("no professors found in directory", zap.String("department", department))
		return summary
	}

	dirSummary := s.SyncProfessorsToCourses(ctx, directoryRecords, department)
	summary.Matched = dirSummary.Matched
	summary.NewProfessors = dirSummary.NewProfessors
	summary.CoursesLinked = dirSummary.CoursesLinked
	summary.CoursesFailed = dirSummary.CoursesFailed
	summary.Errors = append(summary.Errors, dirSummary.Errors...)

	return summary
}

// dedupeByName keeps, for each normalized full name, the record with the
// highest rating count. First-seen order is preserved.
func dedupeByName(records []models.RatingsProfessor) []models.RatingsProfessor {
	index := make(map[string]int, len(records))
	var unique []models.RatingsProfessor
	for _, record := range records {
		key := strings.ToLower(record.FullName())
		if at, ok := index[key]; ok {
			if record.NumRatings > unique[at].NumRatings {
				unique[at] = record
			}
			continue
		}
		index[key] = len(unique)
		unique = append(unique, record)
	}
	return unique
}

// ratingsToProfessor folds one ratings-source record into canonical row form.
// The source row id is reused so repeated imports stay stable.
func ratingsToProfessor(record models.RatingsProfessor) models.Professor {
	rmpID := strconv.Itoa(record.RMPID)
	avgRating := record.AvgRating
	difficulty := record.Difficulty
	wouldTakeAgain := record.WouldTakeAgain
	return models.Professor{
		ID:             record.SourceID,
		Name:           record.FullName(),
		Department:     record.Department,
		RMPID:          &rmpID,
		AvgRating:      &avgRating,
		Difficulty:     &difficulty,
		WouldTakeAgain: &wouldTakeAgain,
		NumRatings:     record.NumRatings,
	}
}
