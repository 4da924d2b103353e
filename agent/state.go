package agent

import (
	"slices"

	"github.com/smallnest/talentsearch/filters"
	"github.com/smallnest/talentsearch/graph"
	"github.com/smallnest/talentsearch/intent"
)

// Node names.
const (
	NodeClassifyIntent    = "classify_intent"
	NodeRewriteQuery      = "rewrite_query"
	NodeExtractFilters    = "extract_filters"
	NodeCheckCompleteness = "check_completeness"
	NodeGenerateResponse  = "generate_response"
)

// Route names, as shown in diagrams.
const (
	RouteByIntent       = "route_by_intent"
	RouteByCompleteness = "route_by_completeness"
)

var nodeMessages = map[string]string{
	NodeClassifyIntent:    "Understanding your intent...",
	NodeRewriteQuery:      "Processing your query...",
	NodeExtractFilters:    "Extracting search filters...",
	NodeCheckCompleteness: "Checking filter completeness...",
	NodeGenerateResponse:  "Generating response...",
}

// NodeMessage returns the progress text shown while node runs.
func NodeMessage(node string) string {
	if msg, ok := nodeMessages[node]; ok {
		return msg
	}
	return "Processing..."
}

// pathAnyResponse marks a turn resolved by the dismissal fast path.
const pathAnyResponse intent.Path = "any_response"

// State flows through the turn graph. Nodes receive a copy and return the
// next state; slices are never modified in place.
type State struct {
	SessionID string
	UserInput string

	Intent *intent.Intent
	Path   intent.Path

	Filters    filters.SearchFilters
	Meta       filters.SearchMeta
	Previous   *filters.Snapshot
	SkipFields []filters.Field

	RewrittenQuery string
	Response       string
	// Searched is set when the reply is a search result listing.
	Searched bool

	// baseline is the state the turn started from, restored when
	// extraction yields nothing usable.
	baseline *baseline
}

type baseline struct {
	filters  filters.SearchFilters
	meta     filters.SearchMeta
	previous *filters.Snapshot
}

// Input is what a turn starts from: the message and the session's stored
// search state.
type Input struct {
	SessionID  string
	Message    string
	Filters    filters.SearchFilters
	Meta       filters.SearchMeta
	Previous   *filters.Snapshot
	SkipFields []filters.Field
}

func (in Input) state() State {
	meta := in.Meta.Clone()
	if meta.Domain == "" {
		meta.Domain = filters.Person
	}
	return State{
		SessionID:  in.SessionID,
		UserInput:  in.Message,
		Filters:    in.Filters.Clone(),
		Meta:       meta,
		Previous:   in.Previous.Clone(),
		SkipFields: slices.Clone(in.SkipFields),
		baseline: &baseline{
			filters:  in.Filters.Clone(),
			meta:     meta.Clone(),
			previous: in.Previous.Clone(),
		},
	}
}

// unionSkipFields keeps every skip field ever recorded during the turn.
func unionSkipFields(current, next State) (State, error) {
	merged := slices.Clone(current.SkipFields)
	for _, f := range next.SkipFields {
		if !slices.Contains(merged, f) {
			merged = append(merged, f)
		}
	}
	if merged == nil {
		merged = []filters.Field{}
	}
	next.SkipFields = merged
	return next, nil
}

func newSchema() graph.StateSchema[State] {
	return graph.NewStructSchema(func() State { return State{SkipFields: []filters.Field{}} }, unionSkipFields)
}
