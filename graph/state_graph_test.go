package graph

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testState struct {
	Count int
	Path  []string
	Tags  []string
}

func step(name string) NodeFunc[testState] {
	return func(_ context.Context, s testState) (testState, error) {
		s.Count++
		s.Path = append(slices.Clone(s.Path), name)
		return s, nil
	}
}

func linear(t *testing.T) *StateGraph[testState] {
	t.Helper()
	g := NewStateGraph[testState]()
	g.AddNode("a", "first", step("a"))
	g.AddNode("b", "second", step("b"))
	g.AddEdge("a", "b")
	g.AddEdge("b", END)
	g.SetEntryPoint("a")
	return g
}

func TestStateGraph_Linear(t *testing.T) {
	r, err := linear(t).Compile()
	require.NoError(t, err)

	out, err := r.Invoke(context.Background(), testState{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, []string{"a", "b"}, out.Path)
}

func TestStateGraph_ConditionalEdge(t *testing.T) {
	g := NewStateGraph[testState]()
	g.AddNode("check", "check", step("check"))
	g.AddNode("high", "high", step("high"))
	g.AddNode("low", "low", step("low"))
	g.AddConditionalEdge("check", func(_ context.Context, s testState) string {
		if s.Count > 5 {
			return "high"
		}
		return "low"
	}, "high", "low")
	g.AddEdge("high", END)
	g.AddEdge("low", END)
	g.SetEntryPoint("check")

	r, err := g.Compile()
	require.NoError(t, err)

	out, err := r.Invoke(context.Background(), testState{Count: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"check", "high"}, out.Path)

	out, err = r.Invoke(context.Background(), testState{})
	require.NoError(t, err)
	assert.Equal(t, []string{"check", "low"}, out.Path)
}

func TestStateGraph_UndeclaredRoute(t *testing.T) {
	g := NewStateGraph[testState]()
	g.AddNode("a", "a", step("a"))
	g.AddNode("b", "b", step("b"))
	g.AddConditionalEdge("a", func(context.Context, testState) string { return "c" }, "b")
	g.AddEdge("b", END)
	g.SetEntryPoint("a")

	r, err := g.Compile()
	require.NoError(t, err)
	_, err = r.Invoke(context.Background(), testState{})
	assert.ErrorIs(t, err, ErrInvalidRoute)
}

func TestStateGraph_CompileErrors(t *testing.T) {
	g := NewStateGraph[testState]()
	g.AddNode("a", "a", step("a"))
	g.AddEdge("a", END)
	_, err := g.Compile()
	assert.ErrorIs(t, err, ErrEntryPointNotSet)

	g.SetEntryPoint("missing")
	_, err = g.Compile()
	assert.ErrorIs(t, err, ErrNodeNotFound)

	g = NewStateGraph[testState]()
	g.AddNode("a", "a", step("a"))
	g.SetEntryPoint("a")
	_, err = g.Compile()
	assert.ErrorIs(t, err, ErrNoOutgoingEdge)

	g.AddEdge("a", "nowhere")
	_, err = g.Compile()
	assert.ErrorIs(t, err, ErrNodeNotFound)

	g = NewStateGraph[testState]()
	g.AddNode("a", "a", step("a"))
	g.AddNode("a", "again", step("a"))
	g.AddEdge("a", END)
	g.SetEntryPoint("a")
	_, err = g.Compile()
	assert.ErrorIs(t, err, ErrDuplicateNode)
}

func TestStateGraph_NodeErrorStopsRun(t *testing.T) {
	boom := errors.New("boom")
	g := NewStateGraph[testState]()
	g.AddNode("a", "a", step("a"))
	g.AddNode("b", "b", func(context.Context, testState) (testState, error) { return testState{}, boom })
	g.AddNode("c", "c", step("c"))
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", END)
	g.SetEntryPoint("a")

	r, err := g.Compile()
	require.NoError(t, err)

	out, err := r.Invoke(context.Background(), testState{})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "error in node b")
	assert.Equal(t, []string{"a"}, out.Path, "state before the failing node is returned")
}

func TestStateGraph_CancelledContext(t *testing.T) {
	r, err := linear(t).Compile()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := r.Invoke(ctx, testState{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, out.Count)
}

func TestStateGraph_MaxSteps(t *testing.T) {
	g := NewStateGraph[testState]()
	g.AddNode("loop", "loop", step("loop"))
	g.AddEdge("loop", "loop")
	g.SetEntryPoint("loop")
	g.MaxSteps = 3

	r, err := g.Compile()
	require.NoError(t, err)
	out, err := r.Invoke(context.Background(), testState{})
	assert.ErrorIs(t, err, ErrMaxSteps)
	assert.Equal(t, 3, out.Count)
}

func TestStateGraph_Listeners(t *testing.T) {
	var events []string
	listener := NodeListenerFunc[testState](func(_ context.Context, ev NodeEvent, node string, s testState, err error) {
		events = append(events, string(ev)+":"+node)
	})

	r, err := linear(t).Compile()
	require.NoError(t, err)

	_, err = r.WithListeners(listener).Invoke(context.Background(), testState{})
	require.NoError(t, err)
	assert.Equal(t, []string{"start:a", "complete:a", "start:b", "complete:b"}, events)

	events = nil
	_, err = r.Invoke(context.Background(), testState{})
	require.NoError(t, err)
	assert.Empty(t, events, "WithListeners does not modify the original runnable")
}

func TestStateGraph_ListenerSeesError(t *testing.T) {
	g := NewStateGraph[testState]()
	g.AddNode("a", "a", func(context.Context, testState) (testState, error) {
		return testState{}, errors.New("bad")
	})
	g.AddEdge("a", END)
	g.SetEntryPoint("a")
	r, err := g.Compile()
	require.NoError(t, err)

	var got error
	_, _ = r.WithListeners(NodeListenerFunc[testState](func(_ context.Context, ev NodeEvent, _ string, _ testState, err error) {
		if ev == NodeEventError {
			got = err
		}
	})).Invoke(context.Background(), testState{})
	assert.EqualError(t, got, "bad")
}

func TestStateGraph_Schema(t *testing.T) {
	union := func(current, next testState) (testState, error) {
		for _, tag := range current.Tags {
			if !slices.Contains(next.Tags, tag) {
				next.Tags = append(next.Tags, tag)
			}
		}
		return next, nil
	}

	g := NewStateGraph[testState]()
	g.AddNode("a", "a", func(_ context.Context, s testState) (testState, error) {
		s.Tags = []string{"x"}
		return s, nil
	})
	g.AddNode("b", "b", func(_ context.Context, s testState) (testState, error) {
		s.Tags = []string{"y"}
		return s, nil
	})
	g.AddEdge("a", "b")
	g.AddEdge("b", END)
	g.SetEntryPoint("a")
	g.SetSchema(NewStructSchema(func() testState { return testState{Tags: []string{"init"}} }, union))

	r, err := g.Compile()
	require.NoError(t, err)
	out, err := r.Invoke(context.Background(), testState{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"init", "x", "y"}, out.Tags)
}

func TestExporter_DrawMermaid(t *testing.T) {
	g := NewStateGraph[testState]()
	g.AddNode("classify", "classify", step("classify"))
	g.AddNode("answer", "answer", step("answer"))
	g.AddConditionalEdge("classify", func(context.Context, testState) string { return "answer" }, "answer", END)
	g.AddEdge("answer", END)
	g.SetEntryPoint("classify")

	out := NewExporter(g).DrawMermaid()
	assert.True(t, strings.HasPrefix(out, "flowchart TD\n"))
	assert.Contains(t, out, "START --> classify")
	assert.Contains(t, out, "classify -.-> answer")
	assert.Contains(t, out, "classify -.-> END")
	assert.Contains(t, out, "answer --> END")
	assert.Contains(t, out, "style classify fill:#87CEEB")

	lr := NewExporter(g).DrawMermaidWithOptions(MermaidOptions{Direction: "LR"})
	assert.True(t, strings.HasPrefix(lr, "flowchart LR\n"))
}

func TestExporter_NamedConditionalEdge(t *testing.T) {
	g := NewStateGraph[testState]()
	g.AddNode("check", "check", step("check"))
	g.AddNode("reply", "reply", step("reply"))
	g.AddNamedConditionalEdge("check", "route_by_check", func(context.Context, testState) string { return "reply" }, "reply")
	g.AddEdge("reply", END)
	g.SetEntryPoint("check")

	_, err := g.Compile()
	require.NoError(t, err)
	assert.Contains(t, NewExporter(g).DrawMermaid(), "check -.->|route_by_check| reply")
}
