// Package oracletest provides a scripted Oracle for tests.
package oracletest

import (
	"context"
	"strings"
	"sync"

	"github.com/smallnest/talentsearch/oracle"
)

// Call records one request made to a Fake.
type Call struct {
	System string
	User   string
	Stream bool
}

// Handler produces the reply for a request.
type Handler func(ctx context.Context, system, user string) (string, error)

// Fake is an Oracle whose replies come from Handler. Stream splits the reply
// into word chunks.
type Fake struct {
	Handler Handler

	mu    sync.Mutex
	calls []Call
}

var _ oracle.Oracle = (*Fake)(nil)

// New returns a Fake backed by h.
func New(h Handler) *Fake { return &Fake{Handler: h} }

// Reply returns a Fake that always answers reply.
func Reply(reply string) *Fake {
	return New(func(context.Context, string, string) (string, error) { return reply, nil })
}

// Fail returns a Fake whose every call fails with err.
func Fail(err error) *Fake {
	return New(func(context.Context, string, string) (string, error) { return "", err })
}

// Calls returns a copy of the recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo counts calls made with the given system prompt.
func (f *Fake) CallsTo(system string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.System == system {
			n++
		}
	}
	return n
}

func (f *Fake) record(c Call) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

// Invoke implements oracle.Oracle.
func (f *Fake) Invoke(ctx context.Context, system, user string) (string, error) {
	f.record(Call{System: system, User: user})
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.Handler(ctx, system, user)
}

// Stream implements oracle.Oracle.
func (f *Fake) Stream(ctx context.Context, system, user string, onChunk oracle.ChunkFunc) (string, error) {
	f.record(Call{System: system, User: user, Stream: true})
	if err := ctx.Err(); err != nil {
		return "", err
	}
	reply, err := f.Handler(ctx, system, user)
	if err != nil {
		return "", err
	}
	if onChunk != nil {
		for _, chunk := range strings.SplitAfter(reply, " ") {
			if chunk == "" {
				continue
			}
			if err := onChunk(ctx, chunk); err != nil {
				return "", err
			}
		}
	}
	return reply, nil
}
