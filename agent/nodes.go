package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/smallnest/talentsearch/completeness"
	"github.com/smallnest/talentsearch/filters"
	"github.com/smallnest/talentsearch/intent"
	"github.com/smallnest/talentsearch/oracle"
	"github.com/smallnest/talentsearch/prompts"
	"github.com/smallnest/talentsearch/search"
)

// Oracle call stages, used as metric labels.
const (
	stageIntent   = "intent"
	stageRewrite  = "rewrite"
	stageExtract  = "extract"
	stageResponse = "response"
)

// classifyIntent resolves the turn's intent. A dismissal such as "any
// location" while fields are missing confirms without consulting the
// classifier and records the dismissed field as skipped.
func (a *Agent) classifyIntent(ctx context.Context, s State) (State, error) {
	if completeness.IsAnyResponse(s.UserInput) && len(s.Meta.MissingFields) > 0 {
		field := completeness.DetectField(s.UserInput)
		if !slices.Contains(s.Meta.MissingFields, field) {
			field = completeness.Target(s.Meta.MissingFields)
		}
		if !slices.Contains(s.SkipFields, field) {
			s.SkipFields = append(slices.Clone(s.SkipFields), field)
		}
		s.Intent = &intent.Intent{Type: intent.Confirm, Confidence: 0.9, Reasoning: "User does not mind about " + string(field)}
		s.Path = pathAnyResponse
		s.Meta = completeness.Apply(s.Meta, s.Filters, s.SkipFields)
		a.logger.Debug("agent: %s dismissed %s", s.SessionID, field)
		return s, nil
	}

	res := a.classifier.Classify(ctx, s.UserInput, intent.Context{
		Filters:  s.Filters,
		Domain:   s.Meta.Domain,
		Previous: s.Previous,
	})
	switch res.Path {
	case intent.PathOracle:
		a.metrics.RecordOracleCall(stageIntent, nil)
	case intent.PathDefault:
		a.metrics.RecordOracleCall(stageIntent, errDefaulted)
	}

	in := res.Intent
	s.Intent = &in
	s.Path = res.Path
	if res.Archive != nil {
		s.Previous = res.Archive
		s.Filters = filters.SearchFilters{}
		s.Meta.IsNewSearch = true
	}
	a.logger.Debug("agent: %s intent %s (%.2f, %s)", s.SessionID, in.Type, in.Confidence, res.Path)
	return s, nil
}

// routeByIntent sends confirmations and rejections straight to the reply.
func routeByIntent(_ context.Context, s State) string {
	if s.Intent == nil {
		return NodeRewriteQuery
	}
	switch s.Intent.Type {
	case intent.Confirm, intent.Reject:
		return NodeGenerateResponse
	default:
		return NodeRewriteQuery
	}
}

// ambiguousTerms trigger a rewrite; anything else passes through.
var ambiguousTerms = []string{
	"tech leaders", "tech bros", "engineers", "developers",
	"product people", "designers", "big tech", "faang",
	"startups", "enterprise", "europe", "asia", "bay area",
	"senior", "junior", "management", "技术大佬", "技术人员",
}

func isAmbiguous(input string) bool {
	lower := strings.ToLower(input)
	return slices.ContainsFunc(ambiguousTerms, func(term string) bool {
		return strings.Contains(lower, term)
	})
}

type rewriteReply struct {
	RewrittenQuery string `json:"rewrittenQuery"`
}

func (a *Agent) rewriteQuery(ctx context.Context, s State) (State, error) {
	s.RewrittenQuery = s.UserInput
	if !isAmbiguous(s.UserInput) || a.oracle == nil {
		return s, nil
	}

	text, err := a.oracle.Invoke(ctx, prompts.Rewrite, fmt.Sprintf("Query: %q", s.UserInput))
	a.metrics.RecordOracleCall(stageRewrite, err)
	if err != nil {
		if ctx.Err() != nil {
			return s, ctx.Err()
		}
		a.logger.Warn("agent: rewrite failed: %v", err)
		return s, nil
	}
	decoded := oracle.DecodeJSON[rewriteReply](text)
	if !decoded.OK {
		a.logger.Warn("agent: unreadable rewrite reply (%v): %.200s", decoded.Err, decoded.Raw)
		return s, nil
	}
	if q := strings.TrimSpace(decoded.Value.RewrittenQuery); q != "" {
		s.RewrittenQuery = q
	}
	return s, nil
}

type extractReply struct {
	Filters json.RawMessage `json:"filters"`
	Domain  string          `json:"domain"`
}

// extractionPrompt builds the user prompt for the extraction call.
func extractionPrompt(s State) string {
	var sb strings.Builder
	t := intentType(s)
	switch {
	case (t == intent.Refine || t == intent.Modify) && !s.Filters.Empty():
		current, _ := json.MarshalIndent(s.Filters, "", "  ")
		verb, instruction := "adding to", "MERGE the new conditions with existing filters."
		if t == intent.Modify {
			verb, instruction = "modifying", "REPLACE the specific field being modified."
		}
		fmt.Fprintf(&sb, "IMPORTANT: User is %s existing search.\nCurrent filters: %s\n\n%s\n\n", verb, current, instruction)
	case t == intent.CrossDomain && s.Previous != nil:
		previous, _ := json.MarshalIndent(s.Previous.Filters, "", "  ")
		fmt.Fprintf(&sb, "IMPORTANT: User is pivoting from %s search to a new domain.\nPrevious %s search context: %s\n\nInherit relevant fields (locations, industries) from previous context if applicable.\n\n",
			s.Previous.Domain, s.Previous.Domain, previous)
	}
	fmt.Fprintf(&sb, "User query: %q", s.UserInput)
	if s.RewrittenQuery != "" && s.RewrittenQuery != s.UserInput {
		fmt.Fprintf(&sb, "\nRewritten query: %q", s.RewrittenQuery)
	}
	return sb.String()
}

// extractFilters asks the oracle for filters and merges them by the
// intent's policy. When nothing usable comes back the turn falls back to
// the filters it started with.
func (a *Agent) extractFilters(ctx context.Context, s State) (State, error) {
	if a.oracle == nil {
		return restoreBaseline(s), nil
	}

	t := intentType(s)
	if t == intent.CrossDomain && !s.Filters.Empty() {
		s.Previous = &filters.Snapshot{Domain: s.Meta.Domain, Filters: s.Filters.Clone()}
	}

	text, err := a.oracle.Invoke(ctx, prompts.Extraction, extractionPrompt(s))
	a.metrics.RecordOracleCall(stageExtract, err)
	if err != nil {
		if ctx.Err() != nil {
			return s, ctx.Err()
		}
		a.logger.Warn("agent: extraction failed: %v", err)
		return restoreBaseline(s), nil
	}

	decoded := oracle.DecodeJSON[extractReply](text)
	if !decoded.OK {
		a.logger.Warn("agent: unreadable extraction reply (%v): %.200s", decoded.Err, decoded.Raw)
		return restoreBaseline(s), nil
	}
	update, err := filters.Normalize(decoded.Value.Filters)
	if err != nil {
		a.logger.Warn("agent: invalid extracted filters: %v", err)
		return restoreBaseline(s), nil
	}
	if update.Empty() {
		a.logger.Debug("agent: %s extraction found no filters", s.SessionID)
		return restoreBaseline(s), nil
	}

	s.Filters = filters.Merge(t.Policy(), s.Filters, update, s.Previous)

	if !t.KeepsDomain() {
		s.Meta.Domain = filters.ParseDomain(decoded.Value.Domain)
	}
	s.Meta.IsNewSearch = t == intent.NewSearch
	return s, nil
}

func restoreBaseline(s State) State {
	if s.baseline == nil {
		return s
	}
	s.Filters = s.baseline.filters.Clone()
	s.Previous = s.baseline.previous.Clone()
	s.Meta.Domain = s.baseline.meta.Domain
	s.Meta.IsNewSearch = s.baseline.meta.IsNewSearch
	return s
}

func intentType(s State) intent.Type {
	if s.Intent == nil {
		return intent.NewSearch
	}
	return s.Intent.Type
}

func (a *Agent) checkCompleteness(_ context.Context, s State) (State, error) {
	s.Meta = completeness.Apply(s.Meta, s.Filters, s.SkipFields)
	return s, nil
}

// routeByCompleteness has a single destination for now.
func routeByCompleteness(_ context.Context, _ State) string {
	return NodeGenerateResponse
}

// shouldSearch reports whether the turn runs the search instead of
// talking about it.
func shouldSearch(s State) bool {
	if s.Filters.Empty() {
		return false
	}
	if intentType(s) == intent.Confirm {
		return true
	}
	return intent.ContainsConfirmKeyword(s.UserInput) && !s.Meta.ClarificationNeeded
}

func (a *Agent) generateResponse(ctx context.Context, s State) (State, error) {
	emit := emitFrom(ctx)

	if shouldSearch(s) {
		res, err := a.searcher.Search(ctx, filters.Flatten(s.Filters), s.Meta.Domain)
		if err != nil {
			return s, fmt.Errorf("search failed: %w", err)
		}
		s.Response = search.FormatResults(res)
		s.Searched = true
		emit(ContentEvent(s.Response, true))
		return s, nil
	}

	if a.oracle != nil {
		text, err := a.oracle.Stream(ctx, prompts.Response, responseContext(s), func(_ context.Context, chunk string) error {
			if chunk != "" {
				emit(ContentEvent(chunk, false))
			}
			return nil
		})
		a.metrics.RecordOracleCall(stageResponse, err)
		if err == nil && strings.TrimSpace(text) != "" {
			s.Response = text
			emit(ContentEvent("", true))
			return s, nil
		}
		if ctx.Err() != nil {
			return s, ctx.Err()
		}
		if err != nil {
			a.logger.Warn("agent: response generation failed: %v", err)
		}
	}

	s.Response = fallbackResponse(s)
	emit(ContentEvent(s.Response, true))
	return s, nil
}
