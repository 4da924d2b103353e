package graph

import (
	"context"
	"fmt"
	"slices"
)

// defaultMaxSteps bounds a run when the graph has a cycle.
const defaultMaxSteps = 100

// StateGraph represents a generic state-based graph with compile-time type safety.
// The type parameter S represents the state type, which is typically a struct.
type StateGraph[S any] struct {
	// nodes is a map of node names to their corresponding Node objects
	nodes map[string]Node[S]

	// order keeps node names in insertion order
	order []string

	// edges is a slice of Edge objects representing the connections between nodes
	edges []Edge

	// conditionalEdges maps the "From" node to its router
	conditionalEdges map[string]ConditionalEdge[S]

	// entryPoint is the name of the entry point node in the graph
	entryPoint string

	// Schema folds node outputs into the running state. Nil means a node's
	// output replaces the state.
	Schema StateSchema[S]

	// MaxSteps bounds the number of node executions per run.
	MaxSteps int

	err error
}

// NewStateGraph creates a new instance of StateGraph.
func NewStateGraph[S any]() *StateGraph[S] {
	return &StateGraph[S]{
		nodes:            make(map[string]Node[S]),
		conditionalEdges: make(map[string]ConditionalEdge[S]),
	}
}

// AddNode adds a new node to the state graph with the given name, description and function.
func (g *StateGraph[S]) AddNode(name string, description string, fn NodeFunc[S]) {
	if _, ok := g.nodes[name]; ok || name == END {
		g.err = fmt.Errorf("%w: %s", ErrDuplicateNode, name)
		return
	}
	g.nodes[name] = Node[S]{Name: name, Description: description, Function: fn}
	g.order = append(g.order, name)
}

// AddEdge adds a new edge to the state graph between the "from" and "to" nodes.
func (g *StateGraph[S]) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{From: from, To: to})
}

// AddConditionalEdge adds a conditional edge where the target node is
// determined at runtime. destinations lists every name route may return.
func (g *StateGraph[S]) AddConditionalEdge(from string, route RouteFunc[S], destinations ...string) {
	g.conditionalEdges[from] = ConditionalEdge[S]{
		From:         from,
		Route:        route,
		Destinations: slices.Clone(destinations),
	}
}

// AddNamedConditionalEdge is AddConditionalEdge with a name shown on the
// edge in diagrams.
func (g *StateGraph[S]) AddNamedConditionalEdge(from, name string, route RouteFunc[S], destinations ...string) {
	g.AddConditionalEdge(from, route, destinations...)
	ce := g.conditionalEdges[from]
	ce.Name = name
	g.conditionalEdges[from] = ce
}

// SetEntryPoint sets the entry point node name for the state graph.
func (g *StateGraph[S]) SetEntryPoint(name string) {
	g.entryPoint = name
}

// SetSchema sets the state schema for the graph.
func (g *StateGraph[S]) SetSchema(schema StateSchema[S]) {
	g.Schema = schema
}

// Nodes returns the nodes in insertion order.
func (g *StateGraph[S]) Nodes() []Node[S] {
	out := make([]Node[S], 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.nodes[name])
	}
	return out
}

func (g *StateGraph[S]) known(name string) bool {
	_, ok := g.nodes[name]
	return ok || name == END
}

func (g *StateGraph[S]) validate() error {
	if g.err != nil {
		return g.err
	}
	if g.entryPoint == "" {
		return ErrEntryPointNotSet
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return fmt.Errorf("%w: entry point %s", ErrNodeNotFound, g.entryPoint)
	}
	for _, e := range g.edges {
		if !g.known(e.From) || !g.known(e.To) {
			return fmt.Errorf("%w: edge %s -> %s", ErrNodeNotFound, e.From, e.To)
		}
	}
	for from, ce := range g.conditionalEdges {
		if !g.known(from) {
			return fmt.Errorf("%w: conditional edge from %s", ErrNodeNotFound, from)
		}
		for _, to := range ce.Destinations {
			if !g.known(to) {
				return fmt.Errorf("%w: conditional edge %s -> %s", ErrNodeNotFound, from, to)
			}
		}
	}
	for _, name := range g.order {
		if _, ok := g.conditionalEdges[name]; ok {
			continue
		}
		if !slices.ContainsFunc(g.edges, func(e Edge) bool { return e.From == name }) {
			return fmt.Errorf("%w: %s", ErrNoOutgoingEdge, name)
		}
	}
	return nil
}

// StateRunnable represents a compiled state graph that can be invoked with type safety.
type StateRunnable[S any] struct {
	graph     *StateGraph[S]
	listeners []NodeListener[S]
}

// Compile validates the state graph and returns a StateRunnable instance.
func (g *StateGraph[S]) Compile() (*StateRunnable[S], error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	return &StateRunnable[S]{graph: g}, nil
}

// Graph returns the graph the runnable was compiled from.
func (r *StateRunnable[S]) Graph() *StateGraph[S] { return r.graph }

// WithListeners returns a copy of r that also notifies ls.
func (r *StateRunnable[S]) WithListeners(ls ...NodeListener[S]) *StateRunnable[S] {
	return &StateRunnable[S]{
		graph:     r.graph,
		listeners: append(slices.Clone(r.listeners), ls...),
	}
}

// Invoke executes the compiled state graph with the given input state and
// returns the final state. On error the state reached so far is returned
// with it.
func (r *StateRunnable[S]) Invoke(ctx context.Context, initialState S) (S, error) {
	g := r.graph
	state := initialState
	if g.Schema != nil {
		var err error
		state, err = g.Schema.Update(g.Schema.Init(), initialState)
		if err != nil {
			return initialState, fmt.Errorf("failed to initialize state with schema: %w", err)
		}
	}

	maxSteps := g.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	current := g.entryPoint
	for step := 0; current != END; step++ {
		if step >= maxSteps {
			return state, ErrMaxSteps
		}
		if err := ctx.Err(); err != nil {
			return state, err
		}

		node, ok := g.nodes[current]
		if !ok {
			return state, fmt.Errorf("%w: %s", ErrNodeNotFound, current)
		}

		r.notify(ctx, NodeEventStart, current, state, nil)
		out, err := node.Function(ctx, state)
		if err != nil {
			r.notify(ctx, NodeEventError, current, state, err)
			return state, fmt.Errorf("error in node %s: %w", current, err)
		}
		if g.Schema != nil {
			out, err = g.Schema.Update(state, out)
			if err != nil {
				r.notify(ctx, NodeEventError, current, state, err)
				return state, fmt.Errorf("failed to update state after node %s: %w", current, err)
			}
		}
		state = out
		r.notify(ctx, NodeEventComplete, current, state, nil)

		current, err = r.next(ctx, current, state)
		if err != nil {
			return state, err
		}
	}
	return state, nil
}

func (r *StateRunnable[S]) next(ctx context.Context, from string, state S) (string, error) {
	if ce, ok := r.graph.conditionalEdges[from]; ok {
		to := ce.Route(ctx, state)
		if len(ce.Destinations) > 0 && !slices.Contains(ce.Destinations, to) {
			return "", fmt.Errorf("%w: %s -> %q", ErrInvalidRoute, from, to)
		}
		if !r.graph.known(to) {
			return "", fmt.Errorf("%w: %s", ErrNodeNotFound, to)
		}
		return to, nil
	}
	for _, e := range r.graph.edges {
		if e.From == from {
			return e.To, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoOutgoingEdge, from)
}

func (r *StateRunnable[S]) notify(ctx context.Context, event NodeEvent, node string, state S, err error) {
	for _, l := range r.listeners {
		l.OnNodeEvent(ctx, event, node, state, err)
	}
}
