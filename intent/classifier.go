package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/smallnest/talentsearch/filters"
	"github.com/smallnest/talentsearch/log"
	"github.com/smallnest/talentsearch/oracle"
	"github.com/smallnest/talentsearch/prompts"
)

// shortCircuitConfidence is reported for every heuristic classification.
const shortCircuitConfidence = 0.95

// Classifier resolves intents, consulting the oracle only when no heuristic
// applies.
type Classifier struct {
	oracle oracle.Oracle
	logger log.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(c *Classifier) { c.logger = l }
}

// NewClassifier returns a classifier backed by o.
func NewClassifier(o oracle.Oracle, opts ...Option) *Classifier {
	c := &Classifier{oracle: o}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = log.OrDefault(c.logger)
	return c
}

type reply struct {
	Type       string   `json:"type"`
	Confidence *float64 `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}

// Classify never fails: oracle errors and unreadable replies resolve to
// Default().
func (c *Classifier) Classify(ctx context.Context, input string, cc Context) Result {
	res := c.classify(ctx, input, cc)
	if res.Intent.Type == NewSearch && !cc.Filters.Empty() {
		res.Archive = &filters.Snapshot{Domain: domainOf(cc), Filters: cc.Filters.Clone()}
	}
	return res
}

func (c *Classifier) classify(ctx context.Context, input string, cc Context) Result {
	if !cc.Filters.Empty() {
		switch {
		case IsConfirmWord(input):
			return Result{Path: PathConfirmWord, Intent: Intent{
				Type: Confirm, Confidence: shortCircuitConfidence,
				Reasoning: "User provided a simple confirmation word",
			}}
		case IsDomainSwitch(input, domainOf(cc)):
			return Result{Path: PathDomainSwitch, Intent: Intent{
				Type: CrossDomain, Confidence: shortCircuitConfidence,
				Reasoning: "User explicitly asked for the other search domain",
			}}
		case IsRefineValue(input):
			return Result{Path: PathRefineValue, Intent: Intent{
				Type: Refine, Confidence: shortCircuitConfidence,
				Reasoning: "User added a single known filter value",
			}}
		}
	}

	if c.oracle == nil {
		return Result{Path: PathDefault, Intent: Default()}
	}

	prompt := fmt.Sprintf("Context: %s\n\nUser input: %q", DescribeContext(cc), input)
	text, err := c.oracle.Invoke(ctx, prompts.Intent, prompt)
	if err != nil {
		c.logger.Warn("intent: oracle call failed: %v", err)
		return Result{Path: PathDefault, Intent: Default()}
	}

	decoded := oracle.DecodeJSON[reply](text)
	if !decoded.OK {
		c.logger.Warn("intent: unreadable reply (%v): %.200s", decoded.Err, decoded.Raw)
		return Result{Path: PathDefault, Intent: Default()}
	}
	t, ok := ParseType(strings.TrimSpace(decoded.Value.Type))
	if !ok {
		c.logger.Warn("intent: unknown intent type %q", decoded.Value.Type)
		return Result{Path: PathDefault, Intent: Default()}
	}

	confidence := 0.5
	if decoded.Value.Confidence != nil {
		confidence = min(1, max(0, *decoded.Value.Confidence))
	}
	return Result{Path: PathOracle, Intent: Intent{
		Type:       t,
		Confidence: confidence,
		Reasoning:  decoded.Value.Reasoning,
	}}
}

func domainOf(cc Context) filters.Domain {
	if cc.Domain == "" {
		return filters.Person
	}
	return cc.Domain
}

// DescribeContext summarizes the search state for the classification prompt.
func DescribeContext(cc Context) string {
	switch {
	case !cc.Filters.Empty():
		return "Current search filters: " + describeFilters(cc.Filters)
	case cc.Previous != nil && !cc.Previous.Filters.Empty():
		return fmt.Sprintf("Previous %s search: %s", cc.Previous.Domain, describeFilters(cc.Previous.Filters))
	default:
		return "No previous search context"
	}
}

func describeFilters(f filters.SearchFilters) string {
	parts := make([]string, 0, len(filters.Fields))
	for _, field := range f.Filled() {
		var value any
		if field == filters.YearsOfExperience {
			value = f.YearsOfExperience.Value
		} else {
			value = f.Values(field)
		}
		data, _ := json.Marshal(value)
		parts = append(parts, fmt.Sprintf("%s: %s", field, data))
	}
	return strings.Join(parts, ", ")
}
