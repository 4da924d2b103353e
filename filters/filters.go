package filters

import (
	"slices"
	"strings"
)

// Field names one of the fixed search criteria.
type Field string

const (
	Titles            Field = "titles"
	Locations         Field = "locations"
	Industries        Field = "industries"
	Seniorities       Field = "seniorities"
	CompanyHeadcount  Field = "companyHeadcount"
	YearsOfExperience Field = "yearsOfExperience"
	Skills            Field = "skills"
	Companies         Field = "companies"
)

// Fields lists every field in display order.
var Fields = []Field{
	Titles, Locations, Industries, Seniorities,
	CompanyHeadcount, YearsOfExperience, Skills, Companies,
}

// listFields are the fields whose value is a string set.
var listFields = []Field{
	Titles, Locations, Industries, Seniorities,
	CompanyHeadcount, Skills, Companies,
}

// ParseField resolves a field name as used in JSON payloads.
func ParseField(s string) (Field, bool) {
	f := Field(strings.TrimSpace(s))
	if slices.Contains(Fields, f) {
		return f, true
	}
	return "", false
}

// Confidence records whether the user stated a value or the oracle inferred it.
type Confidence string

const (
	Direct Confidence = "DIRECT"
	Guess  Confidence = "GUESS"
)

func parseConfidence(s string) Confidence {
	if Confidence(strings.ToUpper(strings.TrimSpace(s))) == Guess {
		return Guess
	}
	return Direct
}

// Domain selects what kind of record the search targets.
type Domain string

const (
	Person  Domain = "person"
	Company Domain = "company"
)

// ParseDomain returns Company for "company" and Person for anything else.
func ParseDomain(s string) Domain {
	if Domain(strings.ToLower(strings.TrimSpace(s))) == Company {
		return Company
	}
	return Person
}

// FilterField is one accumulated criterion.
type FilterField[T any] struct {
	Value      T          `json:"value"`
	Confidence Confidence `json:"confidence"`
	Source     string     `json:"source,omitempty"`
}

// ListField is a criterion over an ordered, de-duplicated set of strings.
type ListField = FilterField[[]string]

// RangeField is the years-of-experience criterion.
type RangeField = FilterField[Range]

// Range is an inclusive numeric range; either bound may be open.
type Range struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// Empty reports whether neither bound is set.
func (r Range) Empty() bool { return r.Min == nil && r.Max == nil }

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// NewList builds a ListField, dropping blanks and duplicates. It returns nil
// when no value survives.
func NewList(conf Confidence, values ...string) *ListField {
	v := dedupe(nil, values)
	if len(v) == 0 {
		return nil
	}
	return &ListField{Value: v, Confidence: conf}
}

// DirectList builds a ListField of user-stated values.
func DirectList(values ...string) *ListField { return NewList(Direct, values...) }

// GuessList builds a ListField of inferred values.
func GuessList(values ...string) *ListField { return NewList(Guess, values...) }

// SearchFilters is the accumulated criteria of a conversation. A nil field
// means the value is not yet known.
type SearchFilters struct {
	Titles            *ListField  `json:"titles,omitempty"`
	Locations         *ListField  `json:"locations,omitempty"`
	Industries        *ListField  `json:"industries,omitempty"`
	Seniorities       *ListField  `json:"seniorities,omitempty"`
	CompanyHeadcount  *ListField  `json:"companyHeadcount,omitempty"`
	YearsOfExperience *RangeField `json:"yearsOfExperience,omitempty"`
	Skills            *ListField  `json:"skills,omitempty"`
	Companies         *ListField  `json:"companies,omitempty"`
}

// list selects a string-set field. It returns nil for YearsOfExperience.
func (f *SearchFilters) list(field Field) **ListField {
	switch field {
	case Titles:
		return &f.Titles
	case Locations:
		return &f.Locations
	case Industries:
		return &f.Industries
	case Seniorities:
		return &f.Seniorities
	case CompanyHeadcount:
		return &f.CompanyHeadcount
	case Skills:
		return &f.Skills
	case Companies:
		return &f.Companies
	}
	return nil
}

// Has reports whether field carries a non-empty value.
func (f SearchFilters) Has(field Field) bool {
	if field == YearsOfExperience {
		return f.YearsOfExperience != nil && !f.YearsOfExperience.Value.Empty()
	}
	p := f.list(field)
	return p != nil && *p != nil && len((*p).Value) > 0
}

// Values returns a copy of a string-set field's values.
func (f SearchFilters) Values(field Field) []string {
	p := f.list(field)
	if p == nil || *p == nil {
		return nil
	}
	return slices.Clone((*p).Value)
}

// Set stores a string-set field; an empty value removes it.
func (f *SearchFilters) Set(field Field, v *ListField) {
	p := f.list(field)
	if p == nil {
		return
	}
	if v == nil || len(v.Value) == 0 {
		*p = nil
		return
	}
	*p = cloneList(v)
}

// Filled returns the fields carrying values, in display order.
func (f SearchFilters) Filled() []Field {
	var out []Field
	for _, field := range Fields {
		if f.Has(field) {
			out = append(out, field)
		}
	}
	return out
}

// Empty reports whether no field carries a value.
func (f SearchFilters) Empty() bool {
	for _, field := range Fields {
		if f.Has(field) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy, normalizing empty fields away.
func (f SearchFilters) Clone() SearchFilters {
	var out SearchFilters
	for _, field := range listFields {
		if f.Has(field) {
			*out.list(field) = cloneList(*f.list(field))
		}
	}
	if f.Has(YearsOfExperience) {
		out.YearsOfExperience = cloneRange(f.YearsOfExperience)
	}
	return out
}

// Snapshot is an archived search, kept so the user can pivot back to it.
type Snapshot struct {
	Domain  Domain        `json:"domain"`
	Filters SearchFilters `json:"filters"`
}

// Clone returns a deep copy of s, or nil.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	return &Snapshot{Domain: s.Domain, Filters: s.Filters.Clone()}
}

// SearchMeta is derived from the filters and the skip list.
type SearchMeta struct {
	Domain                Domain  `json:"domain"`
	IsNewSearch           bool    `json:"isNewSearch"`
	CompletenessScore     int     `json:"completenessScore"`
	MissingFields         []Field `json:"missingFields"`
	ClarificationNeeded   bool    `json:"clarificationNeeded"`
	ClarificationQuestion string  `json:"clarificationQuestion,omitempty"`
}

// DefaultMeta is the meta of a fresh session.
func DefaultMeta() SearchMeta {
	return SearchMeta{Domain: Person, MissingFields: []Field{}}
}

// Clone returns a copy that shares no slices with m.
func (m SearchMeta) Clone() SearchMeta {
	m.MissingFields = slices.Clone(m.MissingFields)
	if m.MissingFields == nil {
		m.MissingFields = []Field{}
	}
	return m
}

func cloneList(v *ListField) *ListField {
	if v == nil {
		return nil
	}
	return &ListField{Value: slices.Clone(v.Value), Confidence: v.Confidence, Source: v.Source}
}

func cloneRange(v *RangeField) *RangeField {
	if v == nil {
		return nil
	}
	out := &RangeField{Confidence: v.Confidence, Source: v.Source}
	if v.Value.Min != nil {
		out.Value.Min = IntPtr(*v.Value.Min)
	}
	if v.Value.Max != nil {
		out.Value.Max = IntPtr(*v.Value.Max)
	}
	return out
}

// dedupe appends values to dst, skipping blanks and case-insensitive repeats.
func dedupe(dst []string, values []string) []string {
	seen := make(map[string]struct{}, len(dst)+len(values))
	out := make([]string, 0, len(dst)+len(values))
	for _, v := range append(slices.Clone(dst), values...) {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
