package agent

import (
	"context"
	"time"

	"github.com/smallnest/talentsearch/filters"
)

// EventType names a stream event.
type EventType string

const (
	EventHeartbeat EventType = "heartbeat"
	EventProgress  EventType = "progress"
	EventContent   EventType = "content"
	EventFilters   EventType = "filters"
	EventDone      EventType = "done"
	EventError     EventType = "error"
)

// ErrorCode is reported in every error event.
const ErrorCode = "AGENT_ERROR"

// Progress statuses.
const (
	StatusStarted   = "started"
	StatusCompleted = "completed"
)

// Event is one item of a turn's event stream. Timestamp is in Unix
// milliseconds.
type Event struct {
	Type      EventType `json:"type"`
	Data      any       `json:"data"`
	Timestamp int64     `json:"timestamp"`
}

// HeartbeatData is the payload of a heartbeat event.
type HeartbeatData struct {
	Timestamp int64 `json:"timestamp"`
}

// ProgressData reports a node starting or completing.
type ProgressData struct {
	Node    string `json:"node"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ContentData carries reply text.
type ContentData struct {
	Chunk      string `json:"chunk"`
	IsComplete bool   `json:"isComplete"`
}

// FiltersData is the final filter state of a turn.
type FiltersData struct {
	Filters filters.SearchFilters `json:"filters"`
	Meta    filters.SearchMeta    `json:"meta"`
}

// DoneData ends a successful turn.
type DoneData struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId"`
}

// ErrorData ends a failed turn.
type ErrorData struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Emitter receives events in order.
type Emitter func(Event)

func nowMillis() int64 { return time.Now().UnixMilli() }

func newEvent(t EventType, data any) Event {
	return Event{Type: t, Data: data, Timestamp: nowMillis()}
}

// HeartbeatEvent opens a turn.
func HeartbeatEvent() Event {
	ts := nowMillis()
	return Event{Type: EventHeartbeat, Data: HeartbeatData{Timestamp: ts}, Timestamp: ts}
}

// ProgressEvent reports a node transition.
func ProgressEvent(node, status, message string) Event {
	return newEvent(EventProgress, ProgressData{Node: node, Status: status, Message: message})
}

// ContentEvent carries a reply chunk.
func ContentEvent(chunk string, complete bool) Event {
	return newEvent(EventContent, ContentData{Chunk: chunk, IsComplete: complete})
}

// FiltersEvent carries the final filters and meta.
func FiltersEvent(f filters.SearchFilters, meta filters.SearchMeta) Event {
	return newEvent(EventFilters, FiltersData{Filters: f, Meta: meta})
}

// DoneEvent ends a successful turn.
func DoneEvent(sessionID string) Event {
	return newEvent(EventDone, DoneData{Success: true, SessionID: sessionID})
}

// ErrorEvent ends a failed turn.
func ErrorEvent(err error) Event {
	msg := "An error occurred"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return newEvent(EventError, ErrorData{Message: msg, Code: ErrorCode})
}

type emitterKey struct{}

// withEmitter makes emit reachable from node functions.
func withEmitter(ctx context.Context, emit Emitter) context.Context {
	return context.WithValue(ctx, emitterKey{}, emit)
}

// emitFrom returns the emitter stored in ctx, or a no-op.
func emitFrom(ctx context.Context) Emitter {
	if emit, ok := ctx.Value(emitterKey{}).(Emitter); ok && emit != nil {
		return emit
	}
	return func(Event) {}
}
