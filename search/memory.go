package search

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/smallnest/talentsearch/filters"
)

//go:embed data/*.json
var dataset embed.FS

// Memory searches an in-process dataset.
type Memory struct {
	people    []Person
	companies []Company
}

var _ Searcher = (*Memory)(nil)

// NewMemory returns a searcher over the bundled sample dataset.
func NewMemory() (*Memory, error) {
	var people []Person
	if err := load("data/people.json", &people); err != nil {
		return nil, err
	}
	var companies []Company
	if err := load("data/companies.json", &companies); err != nil {
		return nil, err
	}
	return NewMemoryWith(people, companies), nil
}

// NewMemoryWith returns a searcher over the given records.
func NewMemoryWith(people []Person, companies []Company) *Memory {
	return &Memory{people: people, companies: companies}
}

func load(name string, v any) error {
	data, err := dataset.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

// Search implements Searcher.
func (m *Memory) Search(ctx context.Context, q filters.Flat, domain filters.Domain) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if domain == filters.Company {
		companies := m.matchCompanies(q)
		return Result{People: []Person{}, Companies: companies, TotalCompanies: len(companies)}, nil
	}
	people := m.matchPeople(q)
	return Result{People: people, Companies: []Company{}, TotalPeople: len(people)}, nil
}

func (m *Memory) matchPeople(q filters.Flat) []Person {
	out := []Person{}
	for _, p := range m.people {
		if anyOf(p.Title, q.JobTitles, matchTitle) &&
			anyOf(p.Location, q.Locations, matchLocation) &&
			anyOf(p.Industry, q.Industries, matchIndustry) &&
			anyOf(p.Seniority, q.Seniorities, matchSubstring) &&
			anyOf(p.CompanyHeadcount, q.CompanyHeadcount, matchHeadcount) &&
			matchExperience(p.YearsOfExperience, q.YearsOfExperience) &&
			matchSkills(p.Skills, q.Skills) &&
			anyOf(p.Company, nonEmpty(q.CompanyName), matchSubstring) {
			out = append(out, p)
		}
	}
	return out
}

func (m *Memory) matchCompanies(q filters.Flat) []Company {
	out := []Company{}
	for _, c := range m.companies {
		if anyOf(c.Industry, q.Industries, matchIndustry) &&
			anyOf(c.Location, q.Locations, matchLocation) &&
			anyOf(c.Headcount, q.CompanyHeadcount, matchHeadcount) &&
			anyOf(c.Name, nonEmpty(q.CompanyName), matchSubstring) {
			out = append(out, c)
		}
	}
	return out
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}
