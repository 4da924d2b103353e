// Package completeness scores how well-specified a search is and decides
// when to ask the user a clarifying question.
package completeness

import (
	"math"
	"slices"

	"github.com/smallnest/talentsearch/filters"
)

// Weights is the importance of each field.
var Weights = map[filters.Field]int{
	filters.Titles:            3,
	filters.Locations:         2,
	filters.Industries:        2,
	filters.Companies:         2,
	filters.Seniorities:       1,
	filters.CompanyHeadcount:  1,
	filters.YearsOfExperience: 1,
	filters.Skills:            1,
}

var totalWeight = func() int {
	n := 0
	for _, w := range Weights {
		n += w
	}
	return n
}()

// Recommended lists the fields worth asking about, per domain.
var Recommended = map[filters.Domain][]filters.Field{
	filters.Person:  {filters.Titles, filters.Locations, filters.Industries},
	filters.Company: {filters.Industries, filters.Locations, filters.CompanyHeadcount},
}

// questionPriority decides which missing field to ask about first.
var questionPriority = []filters.Field{
	filters.Locations, filters.Industries, filters.Titles, filters.Seniorities,
}

// clarifyBelow is the score under which missing fields trigger a question.
const clarifyBelow = 60

// Result is the outcome of scoring.
type Result struct {
	Score                 int
	Filled                []filters.Field
	MissingFields         []filters.Field
	ClarificationNeeded   bool
	ClarificationQuestion string
	// Target is the field the question asks about, if any.
	Target filters.Field
}

// Score evaluates f for domain, ignoring missing fields the user skipped.
func Score(f filters.SearchFilters, domain filters.Domain, skip []filters.Field) Result {
	filled := f.Filled()

	sum := 0
	for _, field := range filled {
		sum += Weights[field]
	}
	score := min(100, int(math.Round(float64(sum)/float64(totalWeight)*100)))

	missing := Missing(f, domain, skip)
	res := Result{
		Score:         score,
		Filled:        filled,
		MissingFields: missing,
	}

	res.ClarificationNeeded = (len(filled) < 2 || (len(missing) > 0 && score < clarifyBelow)) && len(missing) > 0
	if res.ClarificationNeeded {
		res.Target = Target(missing)
		res.ClarificationQuestion = Question(res.Target, f.Has(filters.Titles))
	}
	return res
}

// Missing returns the recommended fields for domain that are neither filled
// nor skipped, in recommendation order.
func Missing(f filters.SearchFilters, domain filters.Domain, skip []filters.Field) []filters.Field {
	recommended, ok := Recommended[domain]
	if !ok {
		recommended = Recommended[filters.Person]
	}
	missing := []filters.Field{}
	for _, field := range recommended {
		if !f.Has(field) && !slices.Contains(skip, field) {
			missing = append(missing, field)
		}
	}
	return missing
}

// Target picks the missing field a clarifying question should ask about.
func Target(missing []filters.Field) filters.Field {
	for _, field := range questionPriority {
		if slices.Contains(missing, field) {
			return field
		}
	}
	if len(missing) > 0 {
		return missing[0]
	}
	return ""
}

// Apply refreshes the derived fields of meta from f and skip, keeping the
// domain and new-search flag.
func Apply(meta filters.SearchMeta, f filters.SearchFilters, skip []filters.Field) filters.SearchMeta {
	if meta.Domain == "" {
		meta.Domain = filters.Person
	}
	res := Score(f, meta.Domain, skip)
	meta.CompletenessScore = res.Score
	meta.MissingFields = res.MissingFields
	meta.ClarificationNeeded = res.ClarificationNeeded
	meta.ClarificationQuestion = res.ClarificationQuestion
	return meta
}
