// Package search runs flattened filters against a people/company dataset.
//
// Memory searches the bundled sample dataset with alias-aware matching;
// Elastic runs the same filters as an Elasticsearch bool query.
package search

import (
	"context"
	"fmt"

	"github.com/smallnest/talentsearch/filters"
)

// Person is a candidate record.
type Person struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Title             string   `json:"title"`
	Seniority         string   `json:"seniority"`
	Location          string   `json:"location"`
	Industry          string   `json:"industry"`
	Company           string   `json:"company"`
	CompanyHeadcount  string   `json:"companyHeadcount"`
	YearsOfExperience int      `json:"yearsOfExperience"`
	Skills            []string `json:"skills"`
}

// Company is an organization record.
type Company struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Industry  string `json:"industry"`
	Location  string `json:"location"`
	Headcount string `json:"headcount"`
	Type      string `json:"type"`
}

// Result holds the matches of one search. Only the slice for the searched
// domain is populated.
type Result struct {
	People         []Person  `json:"people"`
	Companies      []Company `json:"companies"`
	TotalPeople    int       `json:"totalPeople"`
	TotalCompanies int       `json:"totalCompanies"`
}

// Searcher executes a search for the given domain.
type Searcher interface {
	Search(ctx context.Context, q filters.Flat, domain filters.Domain) (Result, error)
}

// Backend names accepted by New.
const (
	BackendMemory  = "memory"
	BackendElastic = "elasticsearch"
)

// Config selects and configures a Searcher.
type Config struct {
	Backend string
	Elastic ElasticOptions
}

// New builds the configured Searcher.
func New(cfg Config) (Searcher, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemory()
	case BackendElastic:
		return NewElastic(cfg.Elastic)
	default:
		return nil, fmt.Errorf("unknown search backend %q", cfg.Backend)
	}
}
