package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/smallnest/talentsearch/completeness"
	"github.com/smallnest/talentsearch/filters"
	"github.com/smallnest/talentsearch/log"
	"github.com/smallnest/talentsearch/session"
)

// ErrEmptyMessage is returned for blank chat messages.
var ErrEmptyMessage = errors.New("message is required")

// Service runs turns against stored sessions. Every operation that
// rewrites a session holds that session's lock for its whole
// read-modify-write, so turns of one session never interleave.
type Service struct {
	agent  *Agent
	store  session.Store
	locker *session.Locker
	logger log.Logger
	now    func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger.
func WithServiceLogger(l log.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithServiceClock sets the clock used for message timestamps.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service.
func NewService(a *Agent, store session.Store, opts ...ServiceOption) *Service {
	s := &Service{
		agent:  a,
		store:  store,
		locker: session.NewLocker(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.OrDefault(s.logger)
	return s
}

// Agent returns the underlying agent.
func (s *Service) Agent() *Agent { return s.agent }

// Store returns the session store.
func (s *Service) Store() session.Store { return s.store }

// ActiveTurns returns the number of sessions with a turn running or queued.
func (s *Service) ActiveTurns() int { return s.locker.Len() }

// Turn is a turn in progress.
type Turn struct {
	SessionID string
	// Events ends with exactly one done or error event and is then closed.
	Events <-chan Event
}

// Chat starts a turn for message. An empty sessionID starts a new session;
// an unknown one fails with session.ErrNotFound before any event is sent.
// The session is saved only when the turn succeeds, before the done event.
// Callers must drain Events or cancel ctx.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (*Turn, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	if sessionID == "" {
		created, err := s.store.Create(ctx)
		if err != nil {
			return nil, err
		}
		sessionID = created.ID
		s.logger.Info("agent: created session %s", sessionID)
	}

	unlock := s.locker.Lock(sessionID)
	sess, err := s.store.Get(ctx, sessionID, false)
	if err != nil {
		unlock()
		return nil, err
	}

	events := make(chan Event, 16)
	go func() {
		defer close(events)
		defer unlock()

		send := func(e Event) {
			select {
			case events <- e:
			case <-ctx.Done():
			}
		}

		final, err := s.agent.Run(ctx, Input{
			SessionID:  sess.ID,
			Message:    message,
			Filters:    sess.Filters,
			Meta:       sess.Meta,
			Previous:   sess.Previous,
			SkipFields: sess.SkipFields,
		}, send)
		if err != nil {
			send(ErrorEvent(err))
			return
		}
		if err := s.persist(ctx, sess, message, final); err != nil {
			s.logger.Error("agent: failed to persist session %s: %v", sess.ID, err)
			send(ErrorEvent(err))
			return
		}
		send(DoneEvent(sess.ID))
	}()

	return &Turn{SessionID: sessionID, Events: events}, nil
}

func (s *Service) persist(ctx context.Context, sess *session.Session, message string, final State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := s.now()
	sess.Filters = final.Filters
	sess.Meta = final.Meta
	sess.Previous = final.Previous
	sess.SkipFields = final.SkipFields
	sess.Append(session.Message{Role: session.RoleUser, Content: message, Timestamp: now})
	if final.Response != "" {
		sess.Append(session.Message{Role: session.RoleAssistant, Content: final.Response, Timestamp: now})
	}
	return s.store.Save(ctx, sess)
}

// Clear archives the session's search and starts over.
func (s *Service) Clear(ctx context.Context, id string) (*session.Session, error) {
	unlock := s.locker.Lock(id)
	defer unlock()

	if err := s.store.ClearFilters(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id, false)
}

// Skip marks field as declined and re-scores the session.
func (s *Service) Skip(ctx context.Context, id string, field filters.Field) (*session.Session, error) {
	unlock := s.locker.Lock(id)
	defer unlock()

	if err := s.store.SetSkipField(ctx, id, field); err != nil {
		return nil, err
	}
	sess, err := s.store.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	meta := completeness.Apply(sess.Meta, sess.Filters, sess.SkipFields)
	if err := s.store.UpdateFilters(ctx, id, sess.Filters, meta, sess.Previous); err != nil {
		return nil, fmt.Errorf("failed to rescore session %s: %w", id, err)
	}
	sess.Meta = meta
	return sess, nil
}

// Delete removes a session once no turn holds it.
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.locker.Lock(id)
	defer unlock()
	return s.store.Delete(ctx, id)
}
