package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/LawrenceVelilla/UCourseHub/internal/models"
	"github.com/LawrenceVelilla/UCourseHub/internal/names"
	"github.com/LawrenceVelilla/UCourseHub/internal/scraper"
	appErrors "github.com/LawrenceVelilla/UCourseHub/pkg/errors"
)

const (
	defaultCommentLimit = 50
	defaultCacheTTL     = 10 * time.Minute
	previewLength       = 200

	// pause between processed posts to moderate the request rate.
	postPacing = 500 * time.Millisecond
)

// departmentTiers assigns subject prefixes a scraping tier. Higher tiers get
// broader page coverage; anything unlisted is low.
var departmentTiers = map[string]string{
	"CMPUT": "high", "MATH": "high", "CHEM": "high", "PHYS": "high",
	"BIOL": "high", "ECON": "high", "PSYCO": "high", "ENGL": "high",
	"STAT": "medium", "ACCTG": "medium", "FIN": "medium", "MARK": "medium",
	"MINS": "medium", "SOC": "medium", "POLS": "medium", "PHIL": "medium",
}

var tierPages = map[string]int{
	"high":   10,
	"medium": 5,
	"low":    2,
}

const tierPageSize = 100

type discussionFetcher interface {
	FetchPostsPaginated(ctx context.Context, query string, pageSize, maxPages int) ([]scraper.Post, error)
	FetchPostComments(ctx context.Context, postID string, limit int) ([]scraper.Comment, error)
}

type discussionStore interface {
	UpsertPost(ctx context.Context, post models.DiscussionPost) (bool, error)
	SaveComment(ctx context.Context, comment models.DiscussionComment) error
	LinkPostToCourse(ctx context.Context, postID, courseID string) error
	ListPostsByCourse(ctx context.Context, courseID string, limit, offset int) ([]models.Discussion, error)
}

type courseCodeResolver interface {
	FindByCodes(ctx context.Context, courseCodes []string) ([]models.CourseRef, error)
}

type discussionCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// DiscussionService scrapes the discussion source for course mentions,
// persists posts and comments, and serves the cached read path for course
// pages.
type DiscussionService struct {
	fetcher      discussionFetcher
	store        discussionStore
	courses      courseCodeResolver
	cache        discussionCache
	metrics      *MetricsService
	logger       *zap.Logger
	commentLimit int
	cacheTTL     time.Duration
	sleep        func(context.Context, time.Duration) error
}

// NewDiscussionService builds a DiscussionService. The cache may be nil, in
// which case reads go straight to the store.
func NewDiscussionService(
	fetcher discussionFetcher,
	store discussionStore,
	courses courseCodeResolver,
	cache discussionCache,
	metrics *MetricsService,
	commentLimit int,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *DiscussionService {
	if commentLimit <= 0 {
		commentLimit = defaultCommentLimit
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiscussionService{
		fetcher:      fetcher,
		store:        store,
		courses:      courses,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
		commentLimit: commentLimit,
		cacheTTL:     cacheTTL,
		sleep:        sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// tierFor returns the scraping tier for a department prefix.
func tierFor(department string) string {
	if tier, ok := departmentTiers[strings.ToUpper(department)]; ok {
		return tier
	}
	return "low"
}

// ScrapeForDepartment scrapes quoted-phrase search results for a department.
// The department's tier controls how many pages are fetched.
func (s *DiscussionService) ScrapeForDepartment(ctx context.Context, department string) models.ScrapeResult {
	tier := tierFor(department)
	pages := tierPages[tier]
	s.logger.Info("scraping discussions for department",
		zap.String("department", department),
		zap.String("tier", tier),
		zap.Int("pages", pages))

	result := s.runScrape(ctx, department, fmt.Sprintf("%q", department), tierPageSize, pages, "")
	s.finishScrape(ctx, "discussions:course:*", &result)
	return result
}

// ScrapeForCourse scrapes quoted-phrase search results for one course code.
// The searched code is always linked even when the text scan misses it.
func (s *DiscussionService) ScrapeForCourse(ctx context.Context, courseCode string, maxPages int) models.ScrapeResult {
	if maxPages <= 0 {
		maxPages = 2
	}
	s.logger.Info("scraping discussions for course", zap.String("course", courseCode))

	result := s.runScrape(ctx, courseCode, fmt.Sprintf("%q", courseCode), tierPageSize, maxPages, courseCode)
	s.finishScrape(ctx, "discussions:course:*", &result)
	return result
}

// ScrapeCourses scrapes a batch of course codes using title-scoped search,
// which avoids bare course numbers in unrelated posts matching.
func (s *DiscussionService) ScrapeCourses(ctx context.Context, courseCodes []string, maxPagesPerCourse int) []models.ScrapeResult {
	if maxPagesPerCourse <= 0 {
		maxPagesPerCourse = 2
	}
	s.logger.Info("scraping discussions for course batch", zap.Int("courses", len(courseCodes)))

	results := make([]models.ScrapeResult, 0, len(courseCodes))
	for _, courseCode := range courseCodes {
		query := fmt.Sprintf("title:%q", courseCode)
		result := s.runScrape(ctx, courseCode, query, tierPageSize, maxPagesPerCourse, courseCode)
		results = append(results, result)
	}
	if len(courseCodes) > 0 {
		s.invalidate(ctx, "discussions:course:*")
	}
	return results
}

// runScrape is the shared scrape loop: fetch pages, keep quality posts, then
// persist each post with its course links and comments. Per-post failures are
// recorded and never abort the run; a failed top-level fetch marks the run
// fatal.
func (s *DiscussionService) runScrape(ctx context.Context, label, query string, pageSize, maxPages int, forceCourse string) models.ScrapeResult {
	result := models.ScrapeResult{Query: label, Errors: []string{}}

	posts, err := s.fetcher.FetchPostsPaginated(ctx, query, pageSize, maxPages)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("scrape failed: %v", err))
		result.Fatal = true
		return result
	}
	result.PostsScraped = len(posts)

	quality := scraper.FilterQualityPosts(posts)
	s.logger.Info("filtered quality posts",
		zap.String("query", label),
		zap.Int("total", len(posts)),
		zap.Int("quality", len(quality)))

	for _, post := range quality {
		if err := s.processPost(ctx, post, forceCourse, &result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("post %s: %v", post.ID, err))
		}
	}

	s.metrics.RecordSyncRun("discussions")
	s.metrics.RecordPostsSaved(result.PostsSaved, result.CommentsSaved)
	return result
}

func (s *DiscussionService) processPost(ctx context.Context, post scraper.Post, forceCourse string, result *models.ScrapeResult) error {
	mentioned := names.ExtractCourseCodes(post.Title + " " + post.Selftext)
	if forceCourse != "" && !containsCode(mentioned, forceCourse) {
		mentioned = append(mentioned, forceCourse)
	}

	saveResult, err := s.savePost(ctx, post, mentioned)
	if err != nil {
		return err
	}
	result.PostsSaved++
	if saveResult.IsNew {
		result.PostsNew++
	}
	result.CoursesLinked += saveResult.CoursesLinked

	if post.NumComments > 0 {
		saved, err := s.saveComments(ctx, post.ID)
		if err != nil {
			return err
		}
		result.CommentsSaved += saved
		if err := s.sleep(ctx, postPacing); err != nil {
			return err
		}
	}
	return nil
}

func (s *DiscussionService) savePost(ctx context.Context, post scraper.Post, mentioned []string) (models.SavePostResult, error) {
	saveResult := models.SavePostResult{PostID: post.ID}

	isNew, err := s.store.UpsertPost(ctx, models.DiscussionPost{
		ID:               post.ID,
		Title:            post.Title,
		Body:             post.Selftext,
		URL:              post.URL,
		Score:            post.Score,
		NumComments:      post.NumComments,
		CreatedUTC:       time.Unix(int64(post.CreatedUTC), 0).UTC(),
		MentionedCourses: mentioned,
	})
	if err != nil {
		return saveResult, err
	}
	saveResult.IsNew = isNew

	if len(mentioned) > 0 {
		courses, err := s.courses.FindByCodes(ctx, mentioned)
		if err != nil {
			return saveResult, err
		}
		for _, course := range courses {
			if err := s.store.LinkPostToCourse(ctx, post.ID, course.ID); err != nil {
				return saveResult, err
			}
			saveResult.CoursesLinked++
		}
	}
	return saveResult, nil
}

func (s *DiscussionService) saveComments(ctx context.Context, postID string) (int, error) {
	comments, err := s.fetcher.FetchPostComments(ctx, postID, s.commentLimit)
	if err != nil {
		return 0, err
	}

	saved := 0
	for _, comment := range comments {
		if err := s.store.SaveComment(ctx, models.DiscussionComment{
			ID:         comment.ID,
			PostID:     postID,
			ParentID:   comment.ParentID,
			Body:       comment.Body,
			Score:      comment.Score,
			CreatedUTC: time.Unix(int64(comment.CreatedUTC), 0).UTC(),
			URL:        comment.URL,
		}); err != nil {
			return saved, err
		}
		saved++
	}
	return saved, nil
}

// GetDiscussionsByCourseID returns one page of discussions for a course. The
// store is over-fetched by one row to compute hasMore, and pages are cached.
func (s *DiscussionService) GetDiscussionsByCourseID(ctx context.Context, courseID string, limit, offset int) (models.DiscussionPage, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	cacheKey := fmt.Sprintf("discussions:course:%s:%d:%d", courseID, limit, offset)
	if s.cache != nil {
		var cached models.DiscussionPage
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	rows, err := s.store.ListPostsByCourse(ctx, courseID, limit+1, offset)
	if err != nil {
		return models.DiscussionPage{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load discussions")
	}

	page := models.DiscussionPage{Discussions: []models.Discussion{}}
	if len(rows) > limit {
		page.HasMore = true
		rows = rows[:limit]
	}
	for _, row := range rows {
		row.Preview = truncatePreview(row.Preview)
		page.Discussions = append(page.Discussions, row)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, page, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache discussions page", zap.Error(err))
		}
	}
	return page, nil
}

func (s *DiscussionService) finishScrape(ctx context.Context, pattern string, result *models.ScrapeResult) {
	if result.PostsSaved > 0 {
		s.invalidate(ctx, pattern)
	}
}

func (s *DiscussionService) invalidate(ctx context.Context, pattern string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("failed to invalidate discussion cache", zap.Error(err))
	}
}

func truncatePreview(body string) string {
	runes := []rune(body)
	if len(runes) <= previewLength {
		return body
	}
	return string(runes[:previewLength]) + "..."
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
