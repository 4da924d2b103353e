// Package session persists conversation state between turns.
//
// A Manager implements Store on top of a Backend, which only knows how to
// put, load and remove whole session records. Backends live in the
// subpackages memory, redis, postgres and sqlite.
package session

import (
	"errors"
	"slices"
	"time"

	"github.com/smallnest/talentsearch/filters"
)

// ErrNotFound is returned when a session id is unknown.
var ErrNotFound = errors.New("session not found")

// DefaultTitle is used until the first user message arrives.
const DefaultTitle = "New conversation"

const titleLimit = 50

// Role identifies who wrote a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single chat message
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the persisted state of one conversation.
type Session struct {
	ID           string                `json:"sessionId"`
	CreatedAt    time.Time             `json:"createdAt"`
	LastActiveAt time.Time             `json:"lastActiveAt"`
	Title        string                `json:"title"`
	Filters      filters.SearchFilters `json:"filters"`
	Meta         filters.SearchMeta    `json:"meta"`
	Previous     *filters.Snapshot     `json:"previousContext"`
	SkipFields   []filters.Field       `json:"skipFields"`
	Messages     []Message             `json:"messages"`
}

// New returns an empty session created at now.
func New(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		CreatedAt:    now,
		LastActiveAt: now,
		Title:        DefaultTitle,
		Meta:         filters.DefaultMeta(),
		SkipFields:   []filters.Field{},
		Messages:     []Message{},
	}
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Filters = s.Filters.Clone()
	out.Meta = s.Meta.Clone()
	out.Previous = s.Previous.Clone()
	out.SkipFields = slices.Clone(s.SkipFields)
	if out.SkipFields == nil {
		out.SkipFields = []filters.Field{}
	}
	out.Messages = slices.Clone(s.Messages)
	if out.Messages == nil {
		out.Messages = []Message{}
	}
	return &out
}

// AddSkip records field as declined. It reports whether the set changed.
func (s *Session) AddSkip(field filters.Field) bool {
	if slices.Contains(s.SkipFields, field) {
		return false
	}
	s.SkipFields = append(slices.Clone(s.SkipFields), field)
	return true
}

// Append adds messages, setting the title from the first user message.
func (s *Session) Append(msgs ...Message) {
	for _, m := range msgs {
		if m.Role == RoleUser && s.firstUserMessage() == "" {
			s.Title = Title(m.Content)
		}
		s.Messages = append(s.Messages, m)
	}
}

func (s *Session) firstUserMessage() string {
	for _, m := range s.Messages {
		if m.Role == RoleUser {
			return m.Content
		}
	}
	return ""
}

// Title shortens a message to a session title.
func Title(message string) string {
	if message == "" {
		return DefaultTitle
	}
	return truncate(message, titleLimit)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// Summary is the list view of a session.
type Summary struct {
	ID           string    `json:"sessionId"`
	Title        string    `json:"title"`
	Preview      string    `json:"preview"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
	MessageCount int       `json:"messageCount"`
}

// Summary builds the list view of s. The preview is the first user
// message, shortened like the title.
func (s *Session) Summary() Summary {
	preview := s.firstUserMessage()
	if preview != "" {
		preview = truncate(preview, titleLimit)
	}
	return Summary{
		ID:           s.ID,
		Title:        s.Title,
		Preview:      preview,
		CreatedAt:    s.CreatedAt,
		LastActiveAt: s.LastActiveAt,
		MessageCount: len(s.Messages),
	}
}
