package workspace

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListAllPaginates(t *testing.T) {
	var requests []queryRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/databases/db-123/query", r.URL.Path)
		require.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		require.Equal(t, APIVersion, r.Header.Get("Workspace-Version"))

		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests = append(requests, req)

		var resp queryResponse
		switch req.StartCursor {
		case "":
			resp = queryResponse{
				Results:    []Record{{ID: "r-1"}, {ID: "r-2"}},
				HasMore:    true,
				NextCursor: "cursor-2",
			}
		case "cursor-2":
			resp = queryResponse{Results: []Record{{ID: "r-3"}}}
		default:
			t.Fatalf("unexpected cursor %q", req.StartCursor)
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-token", "db-123")
	records, err := client.ListAll(t.Context())
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "r-1", records[0].ID)
	require.Equal(t, "r-3", records[2].ID)

	require.Len(t, requests, 2)
	require.Equal(t, pageSize, requests[0].PageSize)
	require.Equal(t, "cursor-2", requests[1].StartCursor)
}

func TestListAllStopsOnMissingCursor(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		resp := queryResponse{
			Results:    []Record{{ID: "r-1"}},
			HasMore:    true,
			NextCursor: "",
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-token", "db-123")
	records, err := client.ListAll(t.Context())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 1, calls)
}

func TestListAllStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid token"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad", "db-123")
	_, err := client.ListAll(t.Context())
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 401")
}

func TestPropertyExtraction(t *testing.T) {
	payload := `{
		"type": "title",
		"title": [{"plain_text": "Lena "}, {"plain_text": "Park"}]
	}`
	var title Property
	require.NoError(t, json.Unmarshal([]byte(payload), &title))
	require.Equal(t, "Lena Park", title.String())

	n := 42.5
	num := Property{Type: "number", Number: &n}
	got, ok := num.Float()
	require.True(t, ok)
	require.InDelta(t, 42.5, got, 0.0001)

	_, ok = Property{Type: "number"}.Float()
	require.False(t, ok)

	sel := Property{Type: "select", Select: &SelectOption{Name: "Engineering"}}
	require.Equal(t, "Engineering", sel.String())

	multi := Property{Type: "multi_select", MultiSelect: []SelectOption{{Name: "a"}, {Name: "b"}}}
	require.Equal(t, []string{"a", "b"}, multi.StringList())

	date := Property{Type: "date", Date: &DateValue{Start: "2023-04-01"}}
	ts, ok := date.Time()
	require.True(t, ok)
	require.Equal(t, 2023, ts.Year())

	s := "formula result"
	formula := Property{Type: "formula", Formula: &FormulaValue{Type: "string", String: &s}}
	require.Equal(t, "formula result", formula.String())

	// Unknown types extract to zero values everywhere.
	unknown := Property{Type: "rollup"}
	require.Empty(t, unknown.String())
	require.Nil(t, unknown.StringList())
	_, ok = unknown.Time()
	require.False(t, ok)
}
