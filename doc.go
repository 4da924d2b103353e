// Package talentsearch is a conversational people and company search
// assistant.
//
// A user describes who or what they are looking for in plain language. Every
// message runs through a small state graph that classifies the intent,
// extracts structured filters, merges them with the filters accumulated in the
// session and decides whether to ask a follow-up question or run the search.
//
// # Quick Start
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//
//		"github.com/smallnest/talentsearch/agent"
//		"github.com/smallnest/talentsearch/oracle"
//		"github.com/smallnest/talentsearch/search"
//		"github.com/smallnest/talentsearch/session"
//		"github.com/smallnest/talentsearch/session/memory"
//	)
//
//	func main() {
//		o, _ := oracle.New(oracle.Config{APIKey: "sk-..."})
//		searcher, _ := search.NewMemory()
//		a, _ := agent.New(o, searcher)
//
//		svc := agent.NewService(a, session.NewManager(memory.New(memory.Options{})))
//		turn, _ := svc.Chat(context.Background(), "", "Find CTOs in Singapore")
//		for e := range turn.Events {
//			fmt.Println(e.Type, e.Data)
//		}
//	}
//
// # Package Structure
//
// filters/
// Search filters, merge policies and the snapshot kept for cross-domain turns
//
// completeness/
// Scores how much of a search is specified and picks the next field to ask for
//
// intent/
// Intent types, routing and the confirm and skip phrase detectors
//
// oracle/
// The language model boundary, backed by langchaingo or go-openai
//
// graph/
// The state graph engine the turn runs on, with Mermaid rendering
//
// agent/
// The turn graph, its event stream and the session-aware Service
//
// session/
// Session storage with memory, redis, postgres and sqlite backends
//
// search/
// People and company search over embedded data or Elasticsearch
//
// server/
// The HTTP API with server-sent event streaming
//
// cmd/talentsearch
// The serve, chat, reap and graph commands
package talentsearch // import "github.com/smallnest/talentsearch"
