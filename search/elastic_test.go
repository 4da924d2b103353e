package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/talentsearch/filters"
)

type capturedRequest struct {
	path  string
	query string
	body  map[string]any
}

type recorder struct {
	mu       sync.Mutex
	requests []capturedRequest
}

func (r *recorder) all() []capturedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]capturedRequest(nil), r.requests...)
}

func elasticServer(t *testing.T, status int, response string) (*Elastic, *recorder) {
	t.Helper()
	rec := &recorder{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		rec.mu.Lock()
		rec.requests = append(rec.requests, capturedRequest{path: r.URL.Path, query: r.URL.RawQuery, body: body})
		rec.mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	e, err := NewElastic(ElasticOptions{Addresses: []string{srv.URL}, Size: 20})
	require.NoError(t, err)
	return e, rec
}

func TestElastic_SearchPeople(t *testing.T) {
	e, captured := elasticServer(t, http.StatusOK, `{
		"hits": {
			"total": {"value": 31, "relation": "eq"},
			"hits": [
				{"_id": "1", "_source": {"id": "1", "name": "John Chen", "title": "CTO", "location": "Singapore", "yearsOfExperience": 15, "skills": ["AI"]}}
			]
		}
	}`)

	r, err := e.Search(context.Background(), filters.Flat{
		JobTitles:         []string{"CTO", "VP Engineering"},
		Locations:         []string{"Singapore"},
		YearsOfExperience: "5+",
		CompanyName:       "Grab",
	}, filters.Person)
	require.NoError(t, err)

	assert.Equal(t, 31, r.TotalPeople)
	require.Len(t, r.People, 1)
	assert.Equal(t, "John Chen", r.People[0].Name)
	assert.Equal(t, 15, r.People[0].YearsOfExperience)
	assert.Empty(t, r.Companies)

	requests := captured.all()
	require.Len(t, requests, 1)
	req := requests[0]
	assert.Equal(t, "/people/_search", req.path)
	assert.Contains(t, req.query, "size=20")

	must := req.body["query"].(map[string]any)["bool"].(map[string]any)["must"].([]any)
	require.Len(t, must, 4)

	titles := must[0].(map[string]any)["bool"].(map[string]any)["should"].([]any)
	assert.Len(t, titles, 2)
	assert.Equal(t, map[string]any{"match": map[string]any{"title": "CTO"}}, titles[0])

	assert.Equal(t, map[string]any{"range": map[string]any{"yearsOfExperience": map[string]any{"gte": "5"}}}, must[2])
	assert.Equal(t, map[string]any{"match": map[string]any{"company": "Grab"}}, must[3])
}

func TestElastic_SearchCompaniesMatchAll(t *testing.T) {
	e, captured := elasticServer(t, http.StatusOK, `{
		"hits": {
			"total": {"value": 1},
			"hits": [{"_source": {"id": "c1", "name": "AI Labs Singapore", "headcount": "51-200", "type": "Startup"}}]
		}
	}`)

	r, err := e.Search(context.Background(), filters.Flat{}, filters.Company)
	require.NoError(t, err)

	assert.Equal(t, 1, r.TotalCompanies)
	require.Len(t, r.Companies, 1)
	assert.Equal(t, "Startup", r.Companies[0].Type)
	assert.Empty(t, r.People)

	req := captured.all()[0]
	assert.Equal(t, "/companies/_search", req.path)
	assert.Equal(t, map[string]any{"match_all": map[string]any{}}, req.body["query"])
}

func TestElastic_ErrorResponse(t *testing.T) {
	e, _ := elasticServer(t, http.StatusBadRequest, `{"error": {"type": "parsing_exception"}}`)

	_, err := e.Search(context.Background(), filters.Flat{Locations: []string{"Tokyo"}}, filters.Person)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing_exception")
}

func TestNew_Backends(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = New(Config{Backend: BackendElastic, Elastic: ElasticOptions{Addresses: []string{"http://localhost:9200"}}})
	require.NoError(t, err)
	assert.IsType(t, &Elastic{}, s)

	_, err = New(Config{Backend: "solr"})
	assert.ErrorContains(t, err, "unknown search backend")
}
