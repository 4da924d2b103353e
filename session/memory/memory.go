// Package memory is an in-process session backend over go-cache.
package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/smallnest/talentsearch/session"
)

// Backend keeps sessions in a go-cache instance. Stored values are copies, so
// callers never share state with the cache.
type Backend struct {
	cache *cache.Cache
}

var _ session.Backend = (*Backend)(nil)

// Options configuration for the in-memory backend
type Options struct {
	// TTL expires idle entries on top of explicit reaping. Zero keeps
	// entries until they are reaped or removed.
	TTL time.Duration
	// CleanupInterval is how often expired entries are purged, default 10m.
	CleanupInterval time.Duration
}

// New creates an in-memory backend.
func New(opts Options) *Backend {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	cleanup := opts.CleanupInterval
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &Backend{cache: cache.New(ttl, cleanup)}
}

// Put stores a copy of s.
func (b *Backend) Put(_ context.Context, s *session.Session) error {
	b.cache.Set(s.ID, s.Clone(), cache.DefaultExpiration)
	return nil
}

// Load returns a copy of the stored session.
func (b *Backend) Load(_ context.Context, id string) (*session.Session, error) {
	v, ok := b.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", session.ErrNotFound, id)
	}
	return v.(*session.Session).Clone(), nil
}

// Remove deletes a session.
func (b *Backend) Remove(_ context.Context, id string) error {
	if _, ok := b.cache.Get(id); !ok {
		return fmt.Errorf("%w: %s", session.ErrNotFound, id)
	}
	b.cache.Delete(id)
	return nil
}

// LoadAll returns copies of every live session.
func (b *Backend) LoadAll(_ context.Context) ([]*session.Session, error) {
	items := b.cache.Items()
	out := make([]*session.Session, 0, len(items))
	for _, item := range items {
		out = append(out, item.Object.(*session.Session).Clone())
	}
	return out, nil
}

// RemoveInactive deletes sessions last active before the cutoff.
func (b *Backend) RemoveInactive(_ context.Context, before time.Time) (int, error) {
	n := 0
	for id, item := range b.cache.Items() {
		if item.Object.(*session.Session).LastActiveAt.Before(before) {
			b.cache.Delete(id)
			n++
		}
	}
	return n, nil
}

// Close empties the cache.
func (b *Backend) Close() error {
	b.cache.Flush()
	return nil
}
