package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/LawrenceVelilla/UCourseHub/internal/models"
	appErrors "github.com/LawrenceVelilla/UCourseHub/pkg/errors"
)

// DirectoryFetcher is the boundary to the university-directory adapter. The
// adapter owns page navigation and HTML extraction; implementations must
// return records already filtered through FilterByRole.
type DirectoryFetcher interface {
	FetchProfessors(ctx context.Context, department string) ([]models.ScrapedProfessor, error)
}

// validRoles is the allowlist of academic titles surfaced from the
// directory. Administrative and support staff are dropped.
var validRoles = map[string]bool{
	"professor":                    true,
	"associate professor":          true,
	"assistant professor":          true,
	"adjunct professor":            true,
	"professor emeritus":           true,
	"assistant lecturer":           true,
	"lecturer":                     true,
	"sessional instructor":         true,
	"faculty lecturer":             true,
	"faculty service officer":      true,
	"associate teaching professor": true,
	"assistant teaching professor": true,
	"teaching professor":           true,
}

// FilterByRole keeps records whose role is a recognized academic title.
// Unknown roles are dropped silently.
func FilterByRole(records []models.ScrapedProfessor) []models.ScrapedProfessor {
	filtered := make([]models.ScrapedProfessor, 0, len(records))
	for _, record := range records {
		if validRoles[strings.ToLower(strings.TrimSpace(record.Role))] {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// DirectoryClient fetches directory records from the scraping sidecar, which
// owns the HTML extraction and serves normalized JSON.
type DirectoryClient struct {
	baseURL string
	http    *http.Client
}

// NewDirectoryClient constructs a DirectoryClient for the given base URL.
func NewDirectoryClient(baseURL string) *DirectoryClient {
	return &DirectoryClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// FetchProfessors returns the directory records for a department, filtered to
// academic roles.
func (c *DirectoryClient) FetchProfessors(ctx context.Context, department string) ([]models.ScrapedProfessor, error) {
	if c.baseURL == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "directory base URL is not configured")
	}

	reqURL := fmt.Sprintf("%s/professors?department=%s", c.baseURL, url.QueryEscape(department))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "directory request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, appErrors.Wrap(
			fmt.Errorf("status %d", resp.StatusCode),
			appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status,
			"directory request failed",
		)
	}

	var records []models.ScrapedProfessor
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "directory response malformed")
	}
	return FilterByRole(records), nil
}
