package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/smallnest/talentsearch/completeness"
	"github.com/smallnest/talentsearch/filters"
	"github.com/smallnest/talentsearch/intent"
	"github.com/smallnest/talentsearch/log"
	"github.com/smallnest/talentsearch/oracle/oracletest"
	"github.com/smallnest/talentsearch/prompts"
	"github.com/smallnest/talentsearch/search"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"))
}

// script answers each oracle stage with a fixed reply. A blank reply fails
// the call.
type script struct {
	intent     string
	rewrite    string
	extraction string
	response   string
}

func (sc script) fake() *oracletest.Fake {
	return oracletest.New(func(_ context.Context, system, _ string) (string, error) {
		var reply string
		switch system {
		case prompts.Intent:
			reply = sc.intent
		case prompts.Rewrite:
			reply = sc.rewrite
		case prompts.Extraction:
			reply = sc.extraction
		case prompts.Response:
			reply = sc.response
		}
		if reply == "" {
			return "", errors.New("no reply scripted")
		}
		return reply, nil
	})
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) emit(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// trace names each event, collapsing runs of content chunks into one entry.
func trace(events []Event) []string {
	var out []string
	for _, e := range events {
		step := string(e.Type)
		if d, ok := e.Data.(ProgressData); ok {
			step = fmt.Sprintf("%s %s %s", e.Type, d.Node, d.Status)
		}
		if e.Type == EventContent && len(out) > 0 && out[len(out)-1] == step {
			continue
		}
		out = append(out, step)
	}
	return out
}

func contentOf(events []Event) string {
	var sb strings.Builder
	for _, e := range events {
		if d, ok := e.Data.(ContentData); ok {
			sb.WriteString(d.Chunk)
		}
	}
	return sb.String()
}

func newTestAgent(t *testing.T, o *oracletest.Fake, opts ...Option) *Agent {
	t.Helper()
	mem, err := search.NewMemory()
	require.NoError(t, err)
	opts = append([]Option{WithLogger(log.NoOpLogger{})}, opts...)
	var a *Agent
	if o == nil {
		a, err = New(nil, mem, opts...)
	} else {
		a, err = New(o, mem, opts...)
	}
	require.NoError(t, err)
	return a
}

func ctoSingapore() filters.SearchFilters {
	return filters.SearchFilters{
		Titles:    filters.DirectList("CTO"),
		Locations: filters.DirectList("Singapore"),
	}
}

func scoredMeta(f filters.SearchFilters, domain filters.Domain) filters.SearchMeta {
	meta := filters.DefaultMeta()
	meta.Domain = domain
	return completeness.Apply(meta, f, nil)
}

const ctoExtraction = `{"filters":{"titles":{"value":["CTO"],"confidence":"DIRECT"},` +
	`"locations":{"value":["Singapore"],"confidence":"DIRECT"}},"domain":"person"}`

func TestNew_RequiresSearcher(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}

func TestRun_FirstTurnEventOrder(t *testing.T) {
	fake := script{
		intent:     `{"type":"new_search","confidence":0.9,"reasoning":"fresh query"}`,
		extraction: ctoExtraction,
		response:   "Got it! Which industry should they work in?",
	}.fake()
	a := newTestAgent(t, fake)
	rec := &recorder{}

	final, err := a.Run(context.Background(), Input{SessionID: "s1", Message: "Find CTOs in Singapore"}, rec.emit)
	require.NoError(t, err)

	events := rec.all()
	assert.Equal(t, []string{
		"heartbeat",
		"progress classify_intent started",
		"progress classify_intent completed",
		"progress rewrite_query started",
		"progress rewrite_query completed",
		"progress extract_filters started",
		"progress extract_filters completed",
		"progress check_completeness started",
		"progress check_completeness completed",
		"progress generate_response started",
		"content",
		"progress generate_response completed",
		"filters",
	}, trace(events))

	started := events[1].Data.(ProgressData)
	assert.Equal(t, "Understanding your intent...", started.Message)

	assert.Equal(t, "Got it! Which industry should they work in?", contentOf(events))
	last := events[len(events)-3].Data.(ContentData)
	assert.True(t, last.IsComplete)
	assert.Empty(t, last.Chunk)
	assert.False(t, events[len(events)-4].Data.(ContentData).IsComplete)

	assert.Equal(t, []string{"CTO"}, final.Filters.Values(filters.Titles))
	assert.Equal(t, []string{"Singapore"}, final.Filters.Values(filters.Locations))
	assert.Equal(t, filters.Person, final.Meta.Domain)
	assert.True(t, final.Meta.IsNewSearch)
	assert.True(t, final.Meta.ClarificationNeeded)
	assert.Equal(t, []filters.Field{filters.Industries}, final.Meta.MissingFields)
	assert.Equal(t, 38, final.Meta.CompletenessScore)
	assert.Equal(t, intent.PathOracle, final.Path)
	assert.False(t, final.Searched)

	fd := events[len(events)-1].Data.(FiltersData)
	assert.Equal(t, final.Filters, fd.Filters)
	assert.Equal(t, final.Meta, fd.Meta)

	assert.Equal(t, 0, fake.CallsTo(prompts.Rewrite), "query is not ambiguous")
	assert.Equal(t, 1, fake.CallsTo(prompts.Extraction))
}

func TestRun_RefineValueMergesWithoutClassifier(t *testing.T) {
	fake := script{
		extraction: `{"filters":{"industries":["Fintech"]},"domain":"company"}`,
		response:   "Searching CTOs in Singapore fintech?",
	}.fake()
	a := newTestAgent(t, fake)
	current := ctoSingapore()

	final, err := a.Run(context.Background(), Input{
		Message: "fintech",
		Filters: current,
		Meta:    scoredMeta(current, filters.Person),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, intent.Refine, final.Intent.Type)
	assert.Equal(t, intent.PathRefineValue, final.Path)
	assert.Equal(t, 0, fake.CallsTo(prompts.Intent))
	assert.Equal(t, []string{"CTO"}, final.Filters.Values(filters.Titles))
	assert.Equal(t, []string{"Fintech"}, final.Filters.Values(filters.Industries))
	assert.Equal(t, filters.Person, final.Meta.Domain, "refinements keep the domain")
	assert.False(t, final.Meta.IsNewSearch)
	assert.False(t, final.Meta.ClarificationNeeded)
	assert.Empty(t, final.Meta.MissingFields)

	calls := fake.Calls()
	var prompt string
	for _, c := range calls {
		if c.System == prompts.Extraction {
			prompt = c.User
		}
	}
	assert.Contains(t, prompt, "IMPORTANT: User is adding to existing search.")
	assert.Contains(t, prompt, `User query: "fintech"`)
}

func TestRun_CrossDomainInheritsLocationsAndIndustries(t *testing.T) {
	fake := script{
		extraction: `{"filters":{"companyHeadcount":["1-10","11-50"]},"domain":"company"}`,
		response:   "Looking for small companies.",
	}.fake()
	a := newTestAgent(t, fake)
	current := ctoSingapore()
	current.Industries = filters.DirectList("AI")

	final, err := a.Run(context.Background(), Input{
		Message: "find companies",
		Filters: current,
		Meta:    scoredMeta(current, filters.Person),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, intent.CrossDomain, final.Intent.Type)
	assert.Equal(t, filters.Company, final.Meta.Domain)
	assert.Nil(t, final.Filters.Titles)
	assert.Equal(t, []string{"Singapore"}, final.Filters.Values(filters.Locations))
	assert.Equal(t, []string{"AI"}, final.Filters.Values(filters.Industries))
	assert.Equal(t, []string{"1-10", "11-50"}, final.Filters.Values(filters.CompanyHeadcount))

	require.NotNil(t, final.Previous)
	assert.Equal(t, filters.Person, final.Previous.Domain)
	assert.Equal(t, []string{"CTO"}, final.Previous.Filters.Values(filters.Titles))

	for _, c := range fake.Calls() {
		if c.System == prompts.Extraction {
			assert.Contains(t, c.User, "pivoting from person search")
		}
	}
}

func TestRun_NewSearchArchivesAndReplaces(t *testing.T) {
	fake := script{
		intent:     `{"type":"new_search","confidence":0.85}`,
		rewrite:    `{"rewrittenQuery":"Find UX Designer, Product Designer in London"}`,
		extraction: `{"filters":{"titles":["Product Designer"],"locations":["London"]},"domain":"person"}`,
		response:   "Designers in London, which industry?",
	}.fake()
	a := newTestAgent(t, fake)
	current := ctoSingapore()
	current.Skills = filters.DirectList("Go")

	final, err := a.Run(context.Background(), Input{
		Message: "Find designers in London",
		Filters: current,
		Meta:    scoredMeta(current, filters.Person),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Product Designer"}, final.Filters.Values(filters.Titles))
	assert.Equal(t, []string{"London"}, final.Filters.Values(filters.Locations))
	assert.Nil(t, final.Filters.Skills, "a new search drops old criteria")
	assert.True(t, final.Meta.IsNewSearch)
	require.NotNil(t, final.Previous)
	assert.Equal(t, []string{"CTO"}, final.Previous.Filters.Values(filters.Titles))
	assert.Equal(t, "Find UX Designer, Product Designer in London", final.RewrittenQuery)

	assert.Equal(t, 1, fake.CallsTo(prompts.Rewrite))
	for _, c := range fake.Calls() {
		if c.System == prompts.Extraction {
			assert.Contains(t, c.User, `Rewritten query: "Find UX Designer, Product Designer in London"`)
		}
	}
}

func TestRun_FailedExtractionKeepsFilters(t *testing.T) {
	for name, extraction := range map[string]string{
		"error":     "",
		"not json":  "I could not find any filters, sorry.",
		"no fields": `{"filters":{},"domain":"company"}`,
	} {
		t.Run(name, func(t *testing.T) {
			fake := script{
				intent:     `{"type":"new_search","confidence":0.7}`,
				extraction: extraction,
				response:   "Could you rephrase?",
			}.fake()
			a := newTestAgent(t, fake)
			current := ctoSingapore()

			final, err := a.Run(context.Background(), Input{
				Message: "hmm, something else entirely",
				Filters: current,
				Meta:    scoredMeta(current, filters.Person),
			}, nil)
			require.NoError(t, err)

			assert.Equal(t, current, final.Filters)
			assert.Nil(t, final.Previous)
			assert.Equal(t, filters.Person, final.Meta.Domain)
			assert.False(t, final.Meta.IsNewSearch)
		})
	}
}

func TestRun_AnyResponseSkipsFieldAndSearches(t *testing.T) {
	fake := script{}.fake()
	a := newTestAgent(t, fake)
	current := ctoSingapore()
	meta := scoredMeta(current, filters.Person)
	require.Equal(t, []filters.Field{filters.Industries}, meta.MissingFields)

	rec := &recorder{}
	final, err := a.Run(context.Background(), Input{
		Message: "any industry is fine",
		Filters: current,
		Meta:    meta,
	}, rec.emit)
	require.NoError(t, err)

	assert.Equal(t, intent.Confirm, final.Intent.Type)
	assert.Equal(t, pathAnyResponse, final.Path)
	assert.Equal(t, []filters.Field{filters.Industries}, final.SkipFields)
	assert.Empty(t, final.Meta.MissingFields)
	assert.False(t, final.Meta.ClarificationNeeded)
	assert.True(t, final.Searched)
	assert.Contains(t, final.Response, "John Chen")
	assert.Empty(t, fake.Calls())

	var contents []ContentData
	for _, e := range rec.all() {
		if d, ok := e.Data.(ContentData); ok {
			contents = append(contents, d)
		}
	}
	require.Len(t, contents, 1)
	assert.True(t, contents[0].IsComplete)
	assert.Equal(t, final.Response, contents[0].Chunk)
}

func TestRun_ConfirmWordRunsSearchDirectly(t *testing.T) {
	fake := script{}.fake()
	a := newTestAgent(t, fake)
	current := ctoSingapore()
	rec := &recorder{}

	final, err := a.Run(context.Background(), Input{
		Message: "yes",
		Filters: current,
		Meta:    scoredMeta(current, filters.Person),
	}, rec.emit)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"heartbeat",
		"progress classify_intent started",
		"progress classify_intent completed",
		"progress generate_response started",
		"content",
		"progress generate_response completed",
		"filters",
	}, trace(rec.all()))
	assert.True(t, final.Searched)
	assert.True(t, strings.HasPrefix(final.Response, "🔍 **Search Complete!"))
	assert.Contains(t, final.Response, "John Chen")
	assert.Equal(t, current, final.Filters)
	assert.Empty(t, fake.Calls())
}

func TestRun_ConfirmWithoutFiltersDoesNotSearch(t *testing.T) {
	fake := script{intent: `{"type":"confirm","confidence":0.9}`}.fake()
	a := newTestAgent(t, fake)

	final, err := a.Run(context.Background(), Input{Message: "go ahead"}, nil)
	require.NoError(t, err)

	assert.False(t, final.Searched)
	assert.Equal(t, welcomeReply, final.Response, "response call fails, fallback greets")
}

func TestRun_ConfirmKeywordSearchesWhenComplete(t *testing.T) {
	fake := script{
		intent:     `{"type":"refine","confidence":0.8}`,
		extraction: `{"filters":{"industries":["Technology"]}}`,
	}.fake()
	a := newTestAgent(t, fake)
	current := ctoSingapore()

	final, err := a.Run(context.Background(), Input{
		Message: "add technology and go ahead",
		Filters: current,
		Meta:    scoredMeta(current, filters.Person),
	}, nil)
	require.NoError(t, err)

	assert.True(t, final.Searched)
	assert.Contains(t, final.Response, "John Chen")
	assert.Equal(t, 0, fake.CallsTo(prompts.Response))
}

func TestRouteByIntent(t *testing.T) {
	tests := []struct {
		in   *intent.Intent
		want string
	}{
		{nil, NodeRewriteQuery},
		{&intent.Intent{Type: intent.NewSearch}, NodeRewriteQuery},
		{&intent.Intent{Type: intent.Refine}, NodeRewriteQuery},
		{&intent.Intent{Type: intent.Modify}, NodeRewriteQuery},
		{&intent.Intent{Type: intent.CrossDomain}, NodeRewriteQuery},
		{&intent.Intent{Type: intent.Confirm}, NodeGenerateResponse},
		{&intent.Intent{Type: intent.Reject}, NodeGenerateResponse},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, routeByIntent(context.Background(), State{Intent: tt.in}))
	}
}

func TestRun_RejectStreamsReply(t *testing.T) {
	fake := script{
		intent:   `{"type":"reject","confidence":0.9}`,
		response: "No problem, what should I change?",
	}.fake()
	a := newTestAgent(t, fake)
	current := ctoSingapore()

	final, err := a.Run(context.Background(), Input{
		Message: "no that's wrong",
		Filters: current,
		Meta:    scoredMeta(current, filters.Person),
	}, nil)
	require.NoError(t, err)

	assert.False(t, final.Searched)
	assert.Equal(t, "No problem, what should I change?", final.Response)
	assert.Equal(t, current, final.Filters)
	assert.Equal(t, 0, fake.CallsTo(prompts.Extraction))
}

func TestRun_WithoutOracleFallsBack(t *testing.T) {
	a := newTestAgent(t, nil)

	final, err := a.Run(context.Background(), Input{Message: "Find CTOs in Singapore"}, nil)
	require.NoError(t, err)

	assert.Equal(t, intent.PathDefault, final.Path)
	assert.True(t, final.Filters.Empty())
	assert.Equal(t, welcomeReply, final.Response)
}

func TestFallbackResponse(t *testing.T) {
	current := ctoSingapore()
	meta := scoredMeta(current, filters.Person)
	assert.Equal(t, "I found some search criteria. "+meta.ClarificationQuestion,
		fallbackResponse(State{Filters: current, Meta: meta}))

	current.Industries = filters.DirectList("Technology")
	got := fallbackResponse(State{Filters: current, Meta: scoredMeta(current, filters.Person)})
	assert.True(t, strings.HasPrefix(got, "Here's what I found:\n\n• "))
	assert.Contains(t, got, "Singapore")
	assert.True(t, strings.HasSuffix(got, "\n\nShall I search with these filters? 🔍"))
}

func TestRun_TurnTimeout(t *testing.T) {
	fake := oracletest.New(func(ctx context.Context, _, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	a := newTestAgent(t, fake, WithTurnTimeout(20*time.Millisecond))

	var last Event
	for e := range a.Stream(context.Background(), Input{SessionID: "s1", Message: "Find CTOs in Singapore"}) {
		last = e
	}

	require.Equal(t, EventError, last.Type)
	data := last.Data.(ErrorData)
	assert.Equal(t, ErrorCode, data.Code)
	assert.Contains(t, data.Message, ErrTurnTimeout.Error())
}

func TestRun_TimeoutErrorChain(t *testing.T) {
	fake := oracletest.New(func(ctx context.Context, _, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	a := newTestAgent(t, fake, WithTurnTimeout(20*time.Millisecond))

	_, err := a.Run(context.Background(), Input{Message: "Find CTOs in Singapore"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTurnTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRun_CanceledIsNotTimeout(t *testing.T) {
	a := newTestAgent(t, script{}.fake())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Run(ctx, Input{Message: "Find CTOs in Singapore"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTurnTimeout)
}

type failingSearcher struct{}

func (failingSearcher) Search(context.Context, filters.Flat, filters.Domain) (search.Result, error) {
	return search.Result{}, errors.New("index unavailable")
}

func TestStream_SearchFailureEndsWithError(t *testing.T) {
	a, err := New(script{}.fake(), failingSearcher{}, WithLogger(log.NoOpLogger{}))
	require.NoError(t, err)
	current := ctoSingapore()

	var types []EventType
	var last Event
	for e := range a.Stream(context.Background(), Input{
		Message: "yes",
		Filters: current,
		Meta:    scoredMeta(current, filters.Person),
	}) {
		types = append(types, e.Type)
		last = e
	}

	assert.NotContains(t, types, EventFilters)
	assert.NotContains(t, types, EventDone)
	require.Equal(t, EventError, last.Type)
	assert.Contains(t, last.Data.(ErrorData).Message, "index unavailable")
}

func TestStream_EndsWithDone(t *testing.T) {
	a := newTestAgent(t, script{
		intent:     `{"type":"new_search","confidence":0.9}`,
		extraction: ctoExtraction,
		response:   "Which industry?",
	}.fake())

	var events []Event
	for e := range a.Stream(context.Background(), Input{SessionID: "abc", Message: "Find CTOs in Singapore"}) {
		events = append(events, e)
	}

	require.NotEmpty(t, events)
	assert.Equal(t, EventHeartbeat, events[0].Type)
	last := events[len(events)-1]
	require.Equal(t, EventDone, last.Type)
	assert.Equal(t, DoneData{Success: true, SessionID: "abc"}, last.Data)
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i].Timestamp, events[i-1].Timestamp)
	}
}

func TestAgent_Mermaid(t *testing.T) {
	a := newTestAgent(t, nil)
	out := a.Mermaid()

	assert.Contains(t, out, "classify_intent -.->|route_by_intent| rewrite_query")
	assert.Contains(t, out, "classify_intent -.->|route_by_intent| generate_response")
	assert.Contains(t, out, "check_completeness -.->|route_by_completeness| generate_response")
	assert.Contains(t, out, "rewrite_query --> extract_filters")
}
