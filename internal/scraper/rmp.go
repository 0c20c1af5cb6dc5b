package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/LawrenceVelilla/UCourseHub/internal/models"
	appErrors "github.com/LawrenceVelilla/UCourseHub/pkg/errors"
)

const defaultRMPAPIURL = "https://www.ratemyprofessors.com/graphql"

// DefaultSchoolID is the ratings-service identifier for the University of
// Alberta, used when a sync request does not specify a school.
const DefaultSchoolID = "U2Nob29sLTE0MDc="

// teacherSearchQuery mirrors the query issued by the ratings site itself.
const teacherSearchQuery = `query TeacherSearchResultsPageQuery(
  $query: TeacherSearchQuery!
  $first: Int!
  $after: String
) {
  search: newSearch {
    teachers(query: $query, first: $first, after: $after) {
      edges {
        node {
          id
          legacyId
          firstName
          lastName
          department
          avgRating
          avgDifficulty
          numRatings
          wouldTakeAgainPercent
        }
      }
      pageInfo {
        hasNextPage
        endCursor
      }
    }
  }
}`

const rmpPageSize = 100

// RMPConfig carries the ratings-service endpoint.
type RMPConfig struct {
	APIURL string
}

// RMPClient pages through the ratings service's teacher search. The service
// has no documented rate limit, so the client self-throttles with a jittered
// 2-3 second pause between pages.
type RMPClient struct {
	cfg    RMPConfig
	http   *http.Client
	logger *zap.Logger

	sleep     func(context.Context, time.Duration) error
	pageDelay func() time.Duration
}

// NewRMPClient constructs a ratings client.
func NewRMPClient(cfg RMPConfig, logger *zap.Logger) *RMPClient {
	if cfg.APIURL == "" {
		cfg.APIURL = defaultRMPAPIURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RMPClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger,
		sleep:  sleepContext,
		pageDelay: func() time.Duration {
			return 2*time.Second + time.Duration(rand.Int63n(int64(time.Second)))
		},
	}
}

type rmpSearchVariables struct {
	Query struct {
		SchoolID     string `json:"schoolID"`
		Text         string `json:"text"`
		Fallback     bool   `json:"fallback"`
		DepartmentID string `json:"departmentID,omitempty"`
	} `json:"query"`
	First               int    `json:"first"`
	After               string `json:"after,omitempty"`
	SchoolID            string `json:"schoolID"`
	IncludeSchoolFilter bool   `json:"includeSchoolFilter"`
}

type rmpTeacherNode struct {
	ID                    string  `json:"id"`
	LegacyID              int     `json:"legacyId"`
	FirstName             string  `json:"firstName"`
	LastName              string  `json:"lastName"`
	Department            string  `json:"department"`
	AvgRating             float64 `json:"avgRating"`
	AvgDifficulty         float64 `json:"avgDifficulty"`
	NumRatings            int     `json:"numRatings"`
	WouldTakeAgainPercent float64 `json:"wouldTakeAgainPercent"`
}

type rmpSearchResponse struct {
	Data struct {
		Search struct {
			Teachers struct {
				Edges []struct {
					Node rmpTeacherNode `json:"node"`
				} `json:"edges"`
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
			} `json:"teachers"`
		} `json:"search"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchProfessors pages through every teacher for the school, optionally
// filtered by a ratings-service department id. The department name is only a
// fallback for nodes that report no department of their own.
func (c *RMPClient) FetchProfessors(ctx context.Context, schoolID, departmentName, departmentID string) ([]models.RatingsProfessor, error) {
	if schoolID == "" {
		schoolID = DefaultSchoolID
	}

	var professors []models.RatingsProfessor
	cursor := ""

	for {
		page, err := c.fetchPage(ctx, schoolID, departmentID, cursor)
		if err != nil {
			return nil, err
		}

		teachers := page.Data.Search.Teachers
		for _, edge := range teachers.Edges {
			professors = append(professors, parseRatingsProfessor(edge.Node, departmentName))
		}

		c.logger.Sugar().Debugw("ratings page fetched",
			"school", schoolID, "batch", len(teachers.Edges), "total", len(professors),
			"has_next", teachers.PageInfo.HasNextPage)

		if !teachers.PageInfo.HasNextPage {
			break
		}
		cursor = teachers.PageInfo.EndCursor
		if cursor == "" {
			break
		}

		if err := c.sleep(ctx, c.pageDelay()); err != nil {
			return nil, err
		}
	}

	return professors, nil
}

func (c *RMPClient) fetchPage(ctx context.Context, schoolID, departmentID, cursor string) (*rmpSearchResponse, error) {
	variables := rmpSearchVariables{
		First:               rmpPageSize,
		After:               cursor,
		SchoolID:            schoolID,
		IncludeSchoolFilter: true,
	}
	variables.Query.SchoolID = schoolID
	variables.Query.DepartmentID = departmentID

	payload, err := json.Marshal(map[string]interface{}{
		"query":     teacherSearchQuery,
		"variables": variables,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic dGVzdDp0ZXN0")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)")
	req.Header.Set("Referer", "https://www.ratemyprofessors.com/")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, appErrors.Wrap(
			fmt.Errorf("status %d", resp.StatusCode),
			appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status,
			"ratings search failed",
		)
	}

	var result rmpSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode ratings response: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, appErrors.Wrap(
			fmt.Errorf("graphql: %s", result.Errors[0].Message),
			appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status,
			"ratings search failed",
		)
	}
	return &result, nil
}

func parseRatingsProfessor(node rmpTeacherNode, fallbackDepartment string) models.RatingsProfessor {
	department := node.Department
	if department == "" {
		department = fallbackDepartment
	}
	return models.RatingsProfessor{
		RMPID:          node.LegacyID,
		FirstName:      node.FirstName,
		LastName:       node.LastName,
		Department:     department,
		AvgRating:      node.AvgRating,
		Difficulty:     node.AvgDifficulty,
		NumRatings:     node.NumRatings,
		WouldTakeAgain: int(math.Round(node.WouldTakeAgainPercent)),
		SourceID:       node.ID,
	}
}
