package scraper

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/LawrenceVelilla/UCourseHub/pkg/errors"
)

const (
	defaultRedditAuthURL = "https://www.reddit.com"
	defaultRedditAPIURL  = "https://oauth.reddit.com"

	maxFetchAttempts = 3
	initialBackoff   = time.Second
	maxBackoff       = 30 * time.Second
	maxBackoffJitter = time.Second

	// tokens are considered expired this long before the reported expiry.
	tokenExpirySlack = 60 * time.Second

	qualityMinScore    = 5
	qualityMinComments = 2
)

// Post is one discussion post as returned by the source API.
type Post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Selftext    string  `json:"selftext"`
}

// Comment is one discussion comment as returned by the source API.
type Comment struct {
	ID         string  `json:"id"`
	ParentID   string  `json:"parent_id"`
	Body       string  `json:"body"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
	Permalink  string  `json:"permalink"`
	URL        string  `json:"-"`
}

// RedditConfig carries credentials and endpoints for the discussion API.
type RedditConfig struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	Subreddit    string
	AuthURL      string
	APIURL       string
}

// RedditClient talks to the discussion API. Every request passes through the
// shared RateLimiter and the retry policy below; the OAuth token is fetched
// lazily and cached until shortly before expiry.
type RedditClient struct {
	cfg     RedditConfig
	http    *http.Client
	limiter *RateLimiter
	logger  *zap.Logger

	tokenMu     sync.Mutex
	token       string
	tokenExpiry time.Time

	sleep   func(context.Context, time.Duration) error
	jitter  func() time.Duration
	now     func() time.Time
	onRetry func()
}

// OnRetry registers a callback invoked once per retried request. Set it
// before the client is shared across goroutines.
func (c *RedditClient) OnRetry(fn func()) {
	c.onRetry = fn
}

// NewRedditClient constructs a client sharing the given limiter.
func NewRedditClient(cfg RedditConfig, limiter *RateLimiter, logger *zap.Logger) *RedditClient {
	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultRedditAuthURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultRedditAPIURL
	}
	if limiter == nil {
		limiter = NewRateLimiter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedditClient{
		cfg:     cfg,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: limiter,
		logger:  logger,
		sleep:   sleepContext,
		jitter:  func() time.Duration { return time.Duration(rand.Int63n(int64(maxBackoffJitter))) },
		now:     time.Now,
	}
}

// FilterQualityPosts keeps posts worth persisting: score >= 5 or more than
// two comments.
func FilterQualityPosts(posts []Post) []Post {
	var quality []Post
	for _, post := range posts {
		if post.Score >= qualityMinScore || post.NumComments > qualityMinComments {
			quality = append(quality, post)
		}
	}
	return quality
}

type listingEnvelope struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Kind string          `json:"kind"`
			Data json.RawMessage `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// FetchPostsPaginated fetches up to maxPages pages of search results for the
// query, following the source's opaque cursor. A failure after the first page
// returns the records accumulated so far rather than discarding them.
func (c *RedditClient) FetchPostsPaginated(ctx context.Context, query string, pageSize, maxPages int) ([]Post, error) {
	var posts []Post
	after := ""

	for page := 0; page < maxPages; page++ {
		listing, err := c.fetchSearchPage(ctx, query, pageSize, after)
		if err != nil {
			if len(posts) > 0 {
				c.logger.Sugar().Warnw("pagination aborted, returning partial results",
					"query", query, "page", page, "collected", len(posts), "error", err)
				return posts, nil
			}
			return nil, err
		}

		for _, child := range listing.Data.Children {
			var post Post
			if err := json.Unmarshal(child.Data, &post); err != nil {
				return posts, fmt.Errorf("decode post: %w", err)
			}
			posts = append(posts, post)
		}

		after = listing.Data.After
		if after == "" {
			break
		}
	}

	return posts, nil
}

// FetchPostComments fetches up to limit comments for a post, dropping
// non-comment entries ("more" stubs) from the listing.
func (c *RedditClient) FetchPostComments(ctx context.Context, postID string, limit int) ([]Comment, error) {
	reqURL := fmt.Sprintf("%s/r/%s/comments/%s/?limit=%d", c.cfg.APIURL, c.cfg.Subreddit, postID, limit)

	body, err := c.fetchWithRetry(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	// The source returns [postListing, commentListing].
	var listings []listingEnvelope
	if err := json.Unmarshal(body, &listings); err != nil {
		return nil, fmt.Errorf("decode comment listing: %w", err)
	}
	if len(listings) < 2 {
		return nil, fmt.Errorf("unexpected comment listing shape for post %s", postID)
	}

	var comments []Comment
	for _, child := range listings[1].Data.Children {
		if child.Kind != "t1" {
			continue
		}
		var comment Comment
		if err := json.Unmarshal(child.Data, &comment); err != nil {
			return nil, fmt.Errorf("decode comment: %w", err)
		}
		comment.URL = "https://www.reddit.com" + comment.Permalink
		comments = append(comments, comment)
	}
	return comments, nil
}

func (c *RedditClient) fetchSearchPage(ctx context.Context, query string, pageSize int, after string) (*listingEnvelope, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("restrict_sr", "true")
	params.Set("limit", strconv.Itoa(pageSize))
	if after != "" {
		params.Set("after", after)
	}
	reqURL := fmt.Sprintf("%s/r/%s/search?%s", c.cfg.APIURL, c.cfg.Subreddit, params.Encode())

	body, err := c.fetchWithRetry(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var listing listingEnvelope
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("decode search listing: %w", err)
	}
	return &listing, nil
}

// fetchWithRetry issues an authenticated GET under the retry policy: up to
// three attempts, 429 waits for Retry-After (or exponential backoff with
// jitter, capped at 30s), other non-2xx statuses fail immediately, transport
// errors retry until the final attempt.
func (c *RedditClient) fetchWithRetry(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		token, err := c.getAccessToken(ctx)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("User-Agent", c.cfg.UserAgent)

		body, status, retryAfter, err := c.do(req)
		switch {
		case err != nil:
			lastErr = err
			if attempt == maxFetchAttempts-1 {
				return nil, lastErr
			}
		case status == http.StatusTooManyRequests:
			lastErr = appErrors.Clone(appErrors.ErrRateLimited, fmt.Sprintf("throttled fetching %s", reqURL))
			if attempt == maxFetchAttempts-1 {
				return nil, lastErr
			}
		case status >= 200 && status < 300:
			return body, nil
		default:
			return nil, appErrors.Wrap(
				fmt.Errorf("status %d", status),
				appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status,
				fmt.Sprintf("upstream error fetching %s", reqURL),
			)
		}

		wait := c.retryDelay(retryAfter, attempt)
		c.logger.Sugar().Debugw("retrying fetch", "url", reqURL, "attempt", attempt+1, "wait", wait, "error", lastErr)
		if c.onRetry != nil {
			c.onRetry()
		}
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

// do executes the request and returns the body, status and any Retry-After
// hint from the response headers.
func (c *RedditClient) do(req *http.Request) (body []byte, status int, retryAfter time.Duration, err error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, 0, err
	}
	defer resp.Body.Close()

	retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, retryAfter, err
	}
	return data, resp.StatusCode, retryAfter, nil
}

// retryDelay prefers the server's Retry-After hint, falling back to capped
// exponential backoff with jitter.
func (c *RedditClient) retryDelay(retryAfter time.Duration, attempt int) time.Duration {
	if retryAfter > 0 {
		return retryAfter
	}
	backoff := initialBackoff<<uint(attempt) + c.jitter()
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	return backoff
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// getAccessToken returns the cached token or fetches a fresh one. Refreshes
// follow the same retry policy as data fetches.
func (c *RedditClient) getAccessToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	var lastErr error
	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		token, expiresIn, status, retryAfter, err := c.requestToken(ctx)
		switch {
		case err == nil && status >= 200 && status < 300:
			c.token = token
			c.tokenExpiry = c.now().Add(time.Duration(expiresIn)*time.Second - tokenExpirySlack)
			return c.token, nil
		case err == nil && status != http.StatusTooManyRequests:
			return "", appErrors.Wrap(
				fmt.Errorf("status %d", status),
				appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status,
				"failed to obtain access token",
			)
		case err != nil:
			lastErr = err
		default:
			lastErr = appErrors.Clone(appErrors.ErrRateLimited, "throttled obtaining access token")
		}

		if attempt == maxFetchAttempts-1 {
			return "", lastErr
		}
		if err := c.sleep(ctx, c.retryDelay(retryAfter, attempt)); err != nil {
			return "", err
		}
	}

	return "", lastErr
}

func (c *RedditClient) requestToken(ctx context.Context) (token string, expiresIn, status int, retryAfter time.Duration, err error) {
	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL+"/api/v1/access_token", form)
	if err != nil {
		return "", 0, 0, 0, err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.cfg.ClientID + ":" + c.cfg.ClientSecret))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	body, status, retryAfter, err := c.do(req)
	if err != nil {
		return "", 0, status, retryAfter, err
	}
	if status < 200 || status >= 300 {
		return "", 0, status, retryAfter, nil
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", 0, status, retryAfter, fmt.Errorf("decode token response: %w", err)
	}
	return tr.AccessToken, tr.ExpiresIn, status, retryAfter, nil
}
