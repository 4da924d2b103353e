package graph

import (
	"context"
	"errors"
)

// END is a special constant used to represent the end node in the graph.
const END = "END"

var (
	// ErrEntryPointNotSet is returned when the entry point of the graph is not set.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when a node is not found in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoOutgoingEdge is returned when no outgoing edge is found for a node.
	ErrNoOutgoingEdge = errors.New("no outgoing edge found for node")

	// ErrInvalidRoute is returned when a conditional edge picks a destination
	// it did not declare.
	ErrInvalidRoute = errors.New("conditional edge returned an undeclared destination")

	// ErrDuplicateNode is returned when two nodes share a name.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrMaxSteps is returned when a run does not reach END in time.
	ErrMaxSteps = errors.New("maximum number of steps exceeded")
)

// NodeFunc transforms the state. Returning an error stops the run.
type NodeFunc[S any] func(ctx context.Context, state S) (S, error)

// RouteFunc picks the next node from the state.
type RouteFunc[S any] func(ctx context.Context, state S) string

// Node represents a node in the graph.
type Node[S any] struct {
	// Name is the unique identifier for the node.
	Name string

	// Description is shown in diagrams and progress output.
	Description string

	// Function is the function associated with the node.
	Function NodeFunc[S]
}

// Edge represents an edge in the graph.
type Edge struct {
	// From is the name of the node from which the edge originates.
	From string

	// To is the name of the node to which the edge points.
	To string
}

// ConditionalEdge routes from one node to one of a declared set of
// destinations.
type ConditionalEdge[S any] struct {
	From         string
	Route        RouteFunc[S]
	Destinations []string

	// Name labels the edge in diagrams.
	Name string
}
