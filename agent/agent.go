// Package agent runs one conversational turn through the search pipeline.
//
// A turn is a typed state graph. classify_intent routes confirmations and
// rejections straight to generate_response; every other intent goes through
// rewrite_query, extract_filters and check_completeness first.
//
// Nodes are plain functions from State to State. Agent.Run drives the graph
// and turns node lifecycle callbacks into progress events; reply text from
// generate_response is forwarded as content events. Service adds session
// loading, per-session locking and persistence around Run.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallnest/talentsearch/graph"
	"github.com/smallnest/talentsearch/intent"
	"github.com/smallnest/talentsearch/log"
	"github.com/smallnest/talentsearch/metrics"
	"github.com/smallnest/talentsearch/oracle"
	"github.com/smallnest/talentsearch/search"
)

// DefaultTurnTimeout bounds a whole turn.
const DefaultTurnTimeout = 2 * time.Minute

// ErrTurnTimeout is reported when a turn exceeds its deadline.
var ErrTurnTimeout = errors.New("turn timed out")

// errDefaulted labels classifier fallbacks in metrics.
var errDefaulted = errors.New("classification defaulted")

// Agent executes turns. It is safe for concurrent use; callers serialize
// turns of the same session.
type Agent struct {
	oracle     oracle.Oracle
	searcher   search.Searcher
	classifier *intent.Classifier
	logger     log.Logger
	metrics    *metrics.Metrics
	timeout    time.Duration

	graph    *graph.StateGraph[State]
	runnable *graph.StateRunnable[State]
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// WithMetrics records turn, node and oracle metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Agent) { a.metrics = m }
}

// WithTurnTimeout bounds each turn. Zero disables the bound.
func WithTurnTimeout(d time.Duration) Option {
	return func(a *Agent) { a.timeout = d }
}

// New builds an agent. o may be nil, in which case every oracle-backed step
// takes its fallback.
func New(o oracle.Oracle, s search.Searcher, opts ...Option) (*Agent, error) {
	if s == nil {
		return nil, errors.New("agent: searcher is required")
	}
	a := &Agent{oracle: o, searcher: s, timeout: DefaultTurnTimeout}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = log.OrDefault(a.logger)
	a.classifier = intent.NewClassifier(o, intent.WithLogger(a.logger))

	g := graph.NewStateGraph[State]()
	g.AddNode(NodeClassifyIntent, "Classify the user's intent", a.classifyIntent)
	g.AddNode(NodeRewriteQuery, "Expand ambiguous terms", a.rewriteQuery)
	g.AddNode(NodeExtractFilters, "Extract and merge search filters", a.extractFilters)
	g.AddNode(NodeCheckCompleteness, "Score filter completeness", a.checkCompleteness)
	g.AddNode(NodeGenerateResponse, "Reply or run the search", a.generateResponse)

	g.SetEntryPoint(NodeClassifyIntent)
	g.AddNamedConditionalEdge(NodeClassifyIntent, RouteByIntent, routeByIntent, NodeRewriteQuery, NodeGenerateResponse)
	g.AddEdge(NodeRewriteQuery, NodeExtractFilters)
	g.AddEdge(NodeExtractFilters, NodeCheckCompleteness)
	g.AddNamedConditionalEdge(NodeCheckCompleteness, RouteByCompleteness, routeByCompleteness, NodeGenerateResponse)
	g.AddEdge(NodeGenerateResponse, graph.END)
	g.SetSchema(newSchema())

	runnable, err := g.Compile()
	if err != nil {
		return nil, fmt.Errorf("agent: failed to compile graph: %w", err)
	}
	a.graph = g
	a.runnable = runnable
	return a, nil
}

// Mermaid renders the turn graph as a Mermaid flowchart.
func (a *Agent) Mermaid() string {
	return graph.NewExporter(a.graph).DrawMermaid()
}

// Run executes one turn. It emits the heartbeat, progress, content and, on
// success, filters events; the terminal done or error event is left to the
// caller. The returned state is the final state of a successful turn.
func (a *Agent) Run(ctx context.Context, in Input, emit Emitter) (State, error) {
	if emit == nil {
		emit = func(Event) {}
	}
	parent := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	ctx = withEmitter(ctx, emit)

	started := time.Now()
	emit(HeartbeatEvent())

	var nodeStart time.Time
	progress := graph.NodeListenerFunc[State](func(_ context.Context, event graph.NodeEvent, node string, _ State, _ error) {
		switch event {
		case graph.NodeEventStart:
			nodeStart = time.Now()
			emit(ProgressEvent(node, StatusStarted, NodeMessage(node)))
		case graph.NodeEventComplete:
			a.metrics.ObserveNode(node, time.Since(nodeStart))
			emit(ProgressEvent(node, StatusCompleted, ""))
		}
	})

	final, err := a.runnable.WithListeners(progress).Invoke(ctx, in.state())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil {
			err = fmt.Errorf("%w after %s: %w", ErrTurnTimeout, a.timeout, err)
		}
		a.metrics.RecordTurn(time.Since(started), err)
		a.logger.Error("agent: turn failed for session %s: %v", in.SessionID, err)
		return State{}, err
	}

	a.metrics.RecordTurn(time.Since(started), nil)
	emit(FiltersEvent(final.Filters, final.Meta))
	return final, nil
}

// Stream runs a turn in the background and returns its complete event
// stream, ending in exactly one done or error event. The channel is closed
// after the last event. Callers must drain it or cancel ctx.
func (a *Agent) Stream(ctx context.Context, in Input) <-chan Event {
	events := make(chan Event, 16)
	go func() {
		defer close(events)
		send := func(e Event) {
			select {
			case events <- e:
			case <-ctx.Done():
			}
		}
		if _, err := a.Run(ctx, in, send); err != nil {
			send(ErrorEvent(err))
			return
		}
		send(DoneEvent(in.SessionID))
	}()
	return events
}
