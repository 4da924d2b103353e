// Package intent decides what a user is trying to do with each utterance.
package intent

import (
	"github.com/smallnest/talentsearch/filters"
)

// Type is one of the six conversational intents.
type Type string

const (
	NewSearch   Type = "new_search"
	Refine      Type = "refine"
	Modify      Type = "modify"
	Confirm     Type = "confirm"
	Reject      Type = "reject"
	CrossDomain Type = "cross_domain"
)

// Types lists every intent.
var Types = []Type{NewSearch, Refine, Modify, Confirm, Reject, CrossDomain}

// ParseType validates s as an intent name.
func ParseType(s string) (Type, bool) {
	for _, t := range Types {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Policy returns the filter merge policy the intent implies.
func (t Type) Policy() filters.Policy {
	switch t {
	case NewSearch:
		return filters.ReplaceAll
	case Refine:
		return filters.Union
	case Modify:
		return filters.FieldReplace
	case CrossDomain:
		return filters.Inherit
	default:
		return filters.Keep
	}
}

// KeepsDomain reports whether extraction must leave the search domain alone.
func (t Type) KeepsDomain() bool {
	return t == Refine || t == Modify
}

// Intent is a single-turn classification.
type Intent struct {
	Type       Type    `json:"type"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

// Default is used whenever the oracle cannot be understood.
func Default() Intent {
	return Intent{
		Type:       NewSearch,
		Confidence: 0.5,
		Reasoning:  "Default classification due to parsing error",
	}
}

// Path records how a classification was reached.
type Path string

const (
	PathConfirmWord  Path = "confirm_word"
	PathDomainSwitch Path = "domain_switch"
	PathRefineValue  Path = "refine_value"
	PathOracle       Path = "oracle"
	PathDefault      Path = "default"
)

// Context is the part of the session the classifier looks at.
type Context struct {
	Filters  filters.SearchFilters
	Domain   filters.Domain
	Previous *filters.Snapshot
}

// Result is a classification plus the state change it implies.
type Result struct {
	Intent Intent
	Path   Path
	// Archive is set when the utterance starts a new search over non-empty
	// filters: the outgoing search to keep as previous context. The caller
	// clears the current filters and marks the search as new.
	Archive *filters.Snapshot
}
