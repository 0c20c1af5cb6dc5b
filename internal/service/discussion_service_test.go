package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LawrenceVelilla/UCourseHub/internal/models"
	"github.com/LawrenceVelilla/UCourseHub/internal/scraper"
)

type fetcherStub struct {
	posts        []scraper.Post
	comments     []scraper.Comment
	fetchErr     error
	queries      []string
	maxPages     []int
	commentCalls []string
}

func (s *fetcherStub) FetchPostsPaginated(ctx context.Context, query string, pageSize, maxPages int) ([]scraper.Post, error) {
	s.queries = append(s.queries, query)
	s.maxPages = append(s.maxPages, maxPages)
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.posts, nil
}

func (s *fetcherStub) FetchPostComments(ctx context.Context, postID string, limit int) ([]scraper.Comment, error) {
	s.commentCalls = append(s.commentCalls, postID)
	return s.comments, nil
}

type discussionStoreStub struct {
	posts    map[string]models.DiscussionPost
	comments map[string]models.DiscussionComment
	links    map[string]string
	listed   []models.Discussion
}

func newDiscussionStoreStub() *discussionStoreStub {
	return &discussionStoreStub{
		posts:    make(map[string]models.DiscussionPost),
		comments: make(map[string]models.DiscussionComment),
		links:    make(map[string]string),
	}
}

func (s *discussionStoreStub) UpsertPost(ctx context.Context, post models.DiscussionPost) (bool, error) {
	_, exists := s.posts[post.ID]
	s.posts[post.ID] = post
	return !exists, nil
}

func (s *discussionStoreStub) SaveComment(ctx context.Context, comment models.DiscussionComment) error {
	s.comments[comment.ID] = comment
	return nil
}

func (s *discussionStoreStub) LinkPostToCourse(ctx context.Context, postID, courseID string) error {
	s.links[postID+"/"+courseID] = courseID
	return nil
}

func (s *discussionStoreStub) ListPostsByCourse(ctx context.Context, courseID string, limit, offset int) ([]models.Discussion, error) {
	if len(s.listed) > limit {
		return s.listed[:limit], nil
	}
	return s.listed, nil
}

type cacheStub struct {
	pages   map[string]models.DiscussionPage
	deleted []string
}

func newCacheStub() *cacheStub {
	return &cacheStub{pages: make(map[string]models.DiscussionPage)}
}

func (c *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	page, ok := c.pages[key]
	if !ok {
		return errors.New("cache miss")
	}
	*dest.(*models.DiscussionPage) = page
	return nil
}

func (c *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.pages[key] = value.(models.DiscussionPage)
	return nil
}

func (c *cacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	c.deleted = append(c.deleted, pattern)
	return nil
}

func newDiscussionFixture() (*DiscussionService, *fetcherStub, *discussionStoreStub, *courseFinderStub, *cacheStub) {
	fetcher := &fetcherStub{}
	store := newDiscussionStoreStub()
	courses := &courseFinderStub{courses: map[string]string{"CMPUT 204": "c1", "CMPUT 174": "c2"}}
	cache := newCacheStub()
	svc := NewDiscussionService(fetcher, store, courses, cache, nil, 50, time.Minute, nil)
	svc.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return svc, fetcher, store, courses, cache
}

func TestScrapeForDepartmentQualityFilterAndCommentSkip(t *testing.T) {
	svc, fetcher, store, _, _ := newDiscussionFixture()

	fetcher.posts = []scraper.Post{
		{ID: "keep", Title: "CMPUT 204 midterm", Score: 10, NumComments: 0, Selftext: "how hard is it"},
		{ID: "drop", Title: "random", Score: 2, NumComments: 1},
	}

	result := svc.ScrapeForDepartment(context.Background(), "CMPUT")

	assert.Equal(t, 2, result.PostsScraped)
	assert.Equal(t, 1, result.PostsSaved)
	assert.Equal(t, 1, result.PostsNew)
	assert.Equal(t, 0, result.CommentsSaved)
	assert.False(t, result.Fatal)
	assert.Empty(t, result.Errors)

	// zero-comment post saved without a comment fetch
	assert.Empty(t, fetcher.commentCalls)
	_, saved := store.posts["keep"]
	assert.True(t, saved)
	_, dropped := store.posts["drop"]
	assert.False(t, dropped)
}

func TestScrapeForDepartmentTierControlsPages(t *testing.T) {
	svc, fetcher, _, _, _ := newDiscussionFixture()

	svc.ScrapeForDepartment(context.Background(), "CMPUT")
	svc.ScrapeForDepartment(context.Background(), "STAT")
	svc.ScrapeForDepartment(context.Background(), "CLASS")

	require.Equal(t, []int{10, 5, 2}, fetcher.maxPages)
	assert.Equal(t, `"CMPUT"`, fetcher.queries[0])
}

func TestScrapeForDepartmentSavesComments(t *testing.T) {
	svc, fetcher, store, _, _ := newDiscussionFixture()

	fetcher.posts = []scraper.Post{
		{ID: "p1", Title: "CMPUT 204 advice", Score: 8, NumComments: 2},
	}
	fetcher.comments = []scraper.Comment{
		{ID: "c1", ParentID: "t3_p1", Body: "take it", Score: 4},
		{ID: "c2", ParentID: "t1_c1", Body: "agreed", Score: 1},
	}

	result := svc.ScrapeForDepartment(context.Background(), "CMPUT")

	assert.Equal(t, 2, result.CommentsSaved)
	assert.Equal(t, []string{"p1"}, fetcher.commentCalls)
	assert.Len(t, store.comments, 2)
	assert.Equal(t, "p1", store.comments["c1"].PostID)
}

func TestScrapeForCourseForcesSearchedCode(t *testing.T) {
	svc, fetcher, store, _, _ := newDiscussionFixture()

	// the post text never mentions the code in matchable form
	fetcher.posts = []scraper.Post{
		{ID: "p1", Title: "is this course hard?", Score: 12, NumComments: 0, Selftext: "thinking of taking it"},
	}

	result := svc.ScrapeForCourse(context.Background(), "CMPUT 174", 0)

	assert.Equal(t, 1, result.PostsSaved)
	assert.Equal(t, 1, result.CoursesLinked)
	assert.Equal(t, []int{2}, fetcher.maxPages)
	assert.Contains(t, store.posts["p1"].MentionedCourses, "CMPUT 174")
	assert.Equal(t, "c2", store.links["p1/c2"])
}

func TestScrapeCoursesUsesTitleScopedQueries(t *testing.T) {
	svc, fetcher, _, _, _ := newDiscussionFixture()

	results := svc.ScrapeCourses(context.Background(), []string{"CMPUT 174", "CMPUT 204"}, 3)

	require.Len(t, results, 2)
	require.Len(t, fetcher.queries, 2)
	assert.Equal(t, `title:"CMPUT 174"`, fetcher.queries[0])
	assert.Equal(t, `title:"CMPUT 204"`, fetcher.queries[1])
	assert.Equal(t, []int{3, 3}, fetcher.maxPages)
}

func TestScrapeFatalOnFetchFailure(t *testing.T) {
	svc, fetcher, _, _, _ := newDiscussionFixture()

	fetcher.fetchErr = errors.New("all retries exhausted")

	result := svc.ScrapeForDepartment(context.Background(), "CMPUT")

	assert.True(t, result.Fatal)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "scrape failed")
	assert.Equal(t, 0, result.PostsScraped)
}

func TestGetDiscussionsByCourseIDHasMoreAndPreview(t *testing.T) {
	svc, _, store, _, _ := newDiscussionFixture()

	long := strings.Repeat("x", 250)
	store.listed = []models.Discussion{
		{ID: "p1", Title: "first", Preview: long, Upvotes: 50},
		{ID: "p2", Title: "second", Preview: "short", Upvotes: 10},
		{ID: "p3", Title: "third", Preview: "", Upvotes: 1},
	}

	page, err := svc.GetDiscussionsByCourseID(context.Background(), "c1", 2, 0)
	require.NoError(t, err)

	assert.True(t, page.HasMore)
	require.Len(t, page.Discussions, 2)
	assert.Len(t, page.Discussions[0].Preview, 203)
	assert.True(t, strings.HasSuffix(page.Discussions[0].Preview, "..."))
	assert.Equal(t, "short", page.Discussions[1].Preview)
}

func TestGetDiscussionsByCourseIDUsesCache(t *testing.T) {
	svc, _, store, _, cache := newDiscussionFixture()

	store.listed = []models.Discussion{{ID: "p1", Title: "first"}}

	first, err := svc.GetDiscussionsByCourseID(context.Background(), "c1", 10, 0)
	require.NoError(t, err)
	require.Len(t, first.Discussions, 1)

	// drop the store rows; the second read must come from the cache
	store.listed = nil
	second, err := svc.GetDiscussionsByCourseID(context.Background(), "c1", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, cache.pages, 1)
}

func TestScrapeInvalidatesCachedPages(t *testing.T) {
	svc, fetcher, _, _, cache := newDiscussionFixture()

	fetcher.posts = []scraper.Post{
		{ID: "p1", Title: "CMPUT 204 advice", Score: 8, NumComments: 0},
	}

	svc.ScrapeForDepartment(context.Background(), "CMPUT")

	require.Len(t, cache.deleted, 1)
	assert.Equal(t, "discussions:course:*", cache.deleted[0])
}
