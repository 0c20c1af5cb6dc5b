package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rmpPage(hasNext bool, cursor string, nodes ...rmpTeacherNode) string {
	type edge struct {
		Node rmpTeacherNode `json:"node"`
	}
	edges := make([]edge, len(nodes))
	for i, n := range nodes {
		edges[i] = edge{Node: n}
	}
	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"search": map[string]interface{}{
				"teachers": map[string]interface{}{
					"edges": edges,
					"pageInfo": map[string]interface{}{
						"hasNextPage": hasNext,
						"endCursor":   cursor,
					},
				},
			},
		},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func TestRMPClientPaginates(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++

		var body struct {
			Variables rmpSearchVariables `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "school-1", body.Variables.SchoolID)

		switch calls {
		case 1:
			assert.Empty(t, body.Variables.After)
			fmt.Fprint(w, rmpPage(true, "cur-1",
				rmpTeacherNode{ID: "a", LegacyID: 11, FirstName: "Ada", LastName: "Lovelace", Department: "Computer Science", NumRatings: 12, WouldTakeAgainPercent: 87.4}))
		default:
			assert.Equal(t, "cur-1", body.Variables.After)
			fmt.Fprint(w, rmpPage(false, "",
				rmpTeacherNode{ID: "b", LegacyID: 22, FirstName: "Alan", LastName: "Turing", NumRatings: 3}))
		}
	}))
	defer server.Close()

	client := NewRMPClient(RMPConfig{APIURL: server.URL}, nil)
	var delays []time.Duration
	client.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	profs, err := client.FetchProfessors(context.Background(), "school-1", "Computer Science", "")
	require.NoError(t, err)
	require.Len(t, profs, 2)

	assert.Equal(t, 11, profs[0].RMPID)
	assert.Equal(t, "Ada Lovelace", profs[0].FullName())
	assert.Equal(t, 87, profs[0].WouldTakeAgain)

	// department falls back to the query filter when the node omits it
	assert.Equal(t, "Computer Science", profs[1].Department)

	require.Len(t, delays, 1, "one inter-page pause between two pages")
	assert.GreaterOrEqual(t, delays[0], 2*time.Second)
	assert.Less(t, delays[0], 3*time.Second)
}

func TestRMPClientGraphQLError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errors": [{"message": "rate limited"}]}`)
	}))
	defer server.Close()

	client := NewRMPClient(RMPConfig{APIURL: server.URL}, nil)
	_, err := client.FetchProfessors(context.Background(), "school-1", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ratings search failed")
}

func TestRMPClientHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewRMPClient(RMPConfig{APIURL: server.URL}, nil)
	_, err := client.FetchProfessors(context.Background(), "", "", "")
	require.Error(t, err)
}
