package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/smallnest/talentsearch/filters"
)

// ElasticOptions configures an Elasticsearch-backed searcher.
type ElasticOptions struct {
	Addresses    []string
	PeopleIndex  string
	CompanyIndex string
	// Size caps the number of hits returned per search.
	Size int
}

// Elastic searches people and company indices in Elasticsearch.
type Elastic struct {
	client *elasticsearch.Client
	opts   ElasticOptions
}

var _ Searcher = (*Elastic)(nil)

// NewElastic creates an Elasticsearch searcher.
func NewElastic(opts ElasticOptions) (*Elastic, error) {
	if opts.PeopleIndex == "" {
		opts.PeopleIndex = "people"
	}
	if opts.CompanyIndex == "" {
		opts.CompanyIndex = "companies"
	}
	if opts.Size <= 0 {
		opts.Size = 50
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: opts.Addresses})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &Elastic{client: client, opts: opts}, nil
}

// Search implements Searcher.
func (e *Elastic) Search(ctx context.Context, q filters.Flat, domain filters.Domain) (Result, error) {
	if domain == filters.Company {
		var companies []Company
		total, err := e.query(ctx, e.opts.CompanyIndex, companyQuery(q), &companies)
		if err != nil {
			return Result{}, err
		}
		return Result{People: []Person{}, Companies: companies, TotalCompanies: total}, nil
	}
	var people []Person
	total, err := e.query(ctx, e.opts.PeopleIndex, peopleQuery(q), &people)
	if err != nil {
		return Result{}, err
	}
	return Result{People: people, Companies: []Company{}, TotalPeople: total}, nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// query runs body against index and decodes the hit sources into out,
// which must point to a slice.
func (e *Elastic) query(ctx context.Context, index string, body map[string]any, out any) (int, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, fmt.Errorf("failed to encode query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(index),
		e.client.Search.WithBody(&buf),
		e.client.Search.WithSize(e.opts.Size),
		e.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return 0, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return 0, fmt.Errorf("elasticsearch search failed: %s: %s", res.Status(), strings.TrimSpace(string(msg)))
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return 0, fmt.Errorf("failed to decode search response: %w", err)
	}

	sources := make([]json.RawMessage, 0, len(sr.Hits.Hits))
	for _, h := range sr.Hits.Hits {
		sources = append(sources, h.Source)
	}
	raw, err := json.Marshal(sources)
	if err != nil {
		return 0, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return 0, fmt.Errorf("failed to decode hits: %w", err)
	}
	return sr.Hits.Total.Value, nil
}

// anyMatch requires at least one of values to match field.
func anyMatch(field string, values []string) map[string]any {
	should := make([]any, 0, len(values))
	for _, v := range values {
		should = append(should, map[string]any{"match": map[string]any{field: v}})
	}
	return map[string]any{"bool": map[string]any{"should": should, "minimum_should_match": 1}}
}

func boolQuery(must []any) map[string]any {
	if len(must) == 0 {
		return map[string]any{"query": map[string]any{"match_all": map[string]any{}}}
	}
	return map[string]any{"query": map[string]any{"bool": map[string]any{"must": must}}}
}

func peopleQuery(q filters.Flat) map[string]any {
	var must []any
	for _, c := range []struct {
		field  string
		values []string
	}{
		{"title", q.JobTitles},
		{"location", q.Locations},
		{"industry", q.Industries},
		{"seniority", q.Seniorities},
		{"companyHeadcount", q.CompanyHeadcount},
		{"skills", q.Skills},
	} {
		if len(c.values) > 0 {
			must = append(must, anyMatch(c.field, c.values))
		}
	}
	if m := experienceFloor.FindStringSubmatch(norm(q.YearsOfExperience)); m != nil {
		must = append(must, map[string]any{"range": map[string]any{"yearsOfExperience": map[string]any{"gte": m[1]}}})
	}
	if q.CompanyName != "" {
		must = append(must, map[string]any{"match": map[string]any{"company": q.CompanyName}})
	}
	return boolQuery(must)
}

func companyQuery(q filters.Flat) map[string]any {
	var must []any
	if len(q.Industries) > 0 {
		must = append(must, anyMatch("industry", q.Industries))
	}
	if len(q.Locations) > 0 {
		must = append(must, anyMatch("location", q.Locations))
	}
	if len(q.CompanyHeadcount) > 0 {
		must = append(must, anyMatch("headcount", q.CompanyHeadcount))
	}
	if q.CompanyName != "" {
		must = append(must, map[string]any{"match": map[string]any{"name": q.CompanyName}})
	}
	return boolQuery(must)
}
