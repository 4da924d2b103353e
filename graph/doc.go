// Package graph provides a small typed state graph used to run a turn of
// the search conversation.
//
// A StateGraph[S] holds named nodes that transform a state value of type S,
// static edges, and conditional edges whose destination is chosen at run
// time from the state. Compile validates the wiring and returns a
// StateRunnable that executes nodes one at a time, starting at the entry
// point and stopping at END.
//
// # Example Usage
//
//	g := graph.NewStateGraph[MyState]()
//	g.AddNode("classify", "Classify the input", classify)
//	g.AddNode("answer", "Answer", answer)
//	g.AddConditionalEdge("classify", route, "answer", graph.END)
//	g.AddEdge("answer", graph.END)
//	g.SetEntryPoint("classify")
//
//	runnable, err := g.Compile()
//	if err != nil {
//	    return err
//	}
//	final, err := runnable.Invoke(ctx, MyState{Input: "hello"})
//
// Listeners receive start, complete and error events for every node, which
// is how callers stream progress while a graph runs. An optional
// StateSchema decides how each node's output is folded into the running
// state.
package graph
