package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/smallnest/talentsearch/filters"
)

// Store is the session persistence API used by the agent and the server.
type Store interface {
	Create(ctx context.Context) (*Session, error)
	// Get loads a session. touch also bumps LastActiveAt.
	Get(ctx context.Context, id string, touch bool) (*Session, error)
	Save(ctx context.Context, s *Session) error
	UpdateFilters(ctx context.Context, id string, f filters.SearchFilters, meta filters.SearchMeta, previous *filters.Snapshot) error
	AppendMessage(ctx context.Context, id string, msg Message) error
	SetSkipField(ctx context.Context, id string, field filters.Field) error
	// ClearFilters archives the current search as previous context and
	// resets filters, meta and skip fields.
	ClearFilters(ctx context.Context, id string) error
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, id string) error
	// Reap deletes sessions inactive for longer than maxAge.
	Reap(ctx context.Context, maxAge time.Duration) (int, error)
	Close() error
}

// Backend persists whole session records. Load and Remove return
// ErrNotFound for unknown ids.
type Backend interface {
	Put(ctx context.Context, s *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Remove(ctx context.Context, id string) error
	LoadAll(ctx context.Context) ([]*Session, error)
	RemoveInactive(ctx context.Context, before time.Time) (int, error)
	Close() error
}

// Manager implements Store over a Backend. It does not serialize
// read-modify-write operations on one id; callers hold a Locker for that.
type Manager struct {
	backend Backend
	now     func() time.Time
	newID   func() string
}

var _ Store = (*Manager)(nil)

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator replaces uuid generation.
func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) { m.newID = gen }
}

// NewManager creates a session manager over b.
func NewManager(b Backend, opts ...Option) *Manager {
	m := &Manager{
		backend: b,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create creates and stores an empty session.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	s := New(m.newID(), m.now())
	if err := m.backend.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s, nil
}

// Get retrieves a session by ID
func (m *Manager) Get(ctx context.Context, id string, touch bool) (*Session, error) {
	s, err := m.backend.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if touch {
		s.LastActiveAt = m.now()
		if err := m.backend.Put(ctx, s); err != nil {
			return nil, fmt.Errorf("failed to touch session %s: %w", id, err)
		}
	}
	return s, nil
}

// Save stores s and marks it active.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	s.LastActiveAt = m.now()
	if err := m.backend.Put(ctx, s); err != nil {
		return fmt.Errorf("failed to save session %s: %w", s.ID, err)
	}
	return nil
}

func (m *Manager) update(ctx context.Context, id string, fn func(s *Session)) error {
	s, err := m.backend.Load(ctx, id)
	if err != nil {
		return err
	}
	fn(s)
	return m.Save(ctx, s)
}

// UpdateFilters replaces the search state of a session.
func (m *Manager) UpdateFilters(ctx context.Context, id string, f filters.SearchFilters, meta filters.SearchMeta, previous *filters.Snapshot) error {
	return m.update(ctx, id, func(s *Session) {
		s.Filters = f.Clone()
		s.Meta = meta.Clone()
		s.Previous = previous.Clone()
	})
}

// AppendMessage adds a message to a session
func (m *Manager) AppendMessage(ctx context.Context, id string, msg Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = m.now()
	}
	return m.update(ctx, id, func(s *Session) { s.Append(msg) })
}

// SetSkipField records a declined field.
func (m *Manager) SetSkipField(ctx context.Context, id string, field filters.Field) error {
	return m.update(ctx, id, func(s *Session) { s.AddSkip(field) })
}

// ClearFilters starts the session's search over.
func (m *Manager) ClearFilters(ctx context.Context, id string) error {
	return m.update(ctx, id, func(s *Session) {
		if !s.Filters.Empty() {
			s.Previous = &filters.Snapshot{Domain: s.Meta.Domain, Filters: s.Filters.Clone()}
		}
		s.Filters = filters.SearchFilters{}
		s.Meta = filters.DefaultMeta()
		s.SkipFields = []filters.Field{}
	})
}

// List returns session summaries, most recently active first.
func (m *Manager) List(ctx context.Context) ([]Summary, error) {
	all, err := m.backend.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	out := make([]Summary, 0, len(all))
	for _, s := range all {
		out = append(out, s.Summary())
	}
	slices.SortStableFunc(out, func(a, b Summary) int {
		return b.LastActiveAt.Compare(a.LastActiveAt)
	})
	return out, nil
}

// Delete removes a session
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.backend.Remove(ctx, id)
}

// Reap deletes sessions whose last activity is older than maxAge.
func (m *Manager) Reap(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, errors.New("reap: max age must be positive")
	}
	n, err := m.backend.RemoveInactive(ctx, m.now().Add(-maxAge))
	if err != nil {
		return n, fmt.Errorf("failed to reap sessions: %w", err)
	}
	return n, nil
}

// Close releases the backend.
func (m *Manager) Close() error {
	return m.backend.Close()
}
