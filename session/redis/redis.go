// Package redis stores sessions in Redis as JSON documents.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smallnest/talentsearch/session"
)

// Backend implements session.Backend using Redis
type Backend struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ session.Backend = (*Backend)(nil)

// Options configuration for Redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "talentsearch:"
	TTL      time.Duration // Expiration for sessions, default 0 (no expiration)
}

// New creates a new Redis session backend
func New(opts Options) *Backend {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewWithClient(client, opts.Prefix, opts.TTL)
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, prefix string, ttl time.Duration) *Backend {
	if prefix == "" {
		prefix = "talentsearch:"
	}
	return &Backend{client: client, prefix: prefix, ttl: ttl}
}

func (b *Backend) sessionKey(id string) string {
	return fmt.Sprintf("%ssession:%s", b.prefix, id)
}

func (b *Backend) indexKey() string {
	return b.prefix + "sessions"
}

// Put stores a session
func (b *Backend) Put(ctx context.Context, s *session.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := b.client.TxPipeline()
	pipe.Set(ctx, b.sessionKey(s.ID), data, b.ttl)
	pipe.SAdd(ctx, b.indexKey(), s.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session to redis: %w", err)
	}
	return nil
}

// Load retrieves a session by ID
func (b *Backend) Load(ctx context.Context, id string) (*session.Session, error) {
	data, err := b.client.Get(ctx, b.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", session.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load session from redis: %w", err)
	}

	var s session.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// Remove deletes a session
func (b *Backend) Remove(ctx context.Context, id string) error {
	pipe := b.client.TxPipeline()
	del := pipe.Del(ctx, b.sessionKey(id))
	pipe.SRem(ctx, b.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("%w: %s", session.ErrNotFound, id)
	}
	return nil
}

// LoadAll returns every indexed session, dropping index entries whose
// document expired.
func (b *Backend) LoadAll(ctx context.Context) ([]*session.Session, error) {
	ids, err := b.client.SMembers(ctx, b.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(ids) == 0 {
		return []*session.Session{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = b.sessionKey(id)
	}

	// MGet returns nil for missing keys
	results, err := b.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sessions: %w", err)
	}

	out := make([]*session.Session, 0, len(results))
	var stale []any
	for i, result := range results {
		str, ok := result.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var s session.Session
		if err := json.Unmarshal([]byte(str), &s); err != nil {
			continue
		}
		out = append(out, &s)
	}
	if len(stale) > 0 {
		b.client.SRem(ctx, b.indexKey(), stale...)
	}
	return out, nil
}

// RemoveInactive deletes sessions last active before the cutoff.
func (b *Backend) RemoveInactive(ctx context.Context, before time.Time) (int, error) {
	all, err := b.LoadAll(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, s := range all {
		if !s.LastActiveAt.Before(before) {
			continue
		}
		if err := b.Remove(ctx, s.ID); err != nil {
			if errors.Is(err, session.ErrNotFound) {
				continue
			}
			return n, err
		}
		n++
	}
	return n, nil
}

// Close closes the client.
func (b *Backend) Close() error {
	return b.client.Close()
}
