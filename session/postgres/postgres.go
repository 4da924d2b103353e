// Package postgres stores sessions in a PostgreSQL table with JSONB columns.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smallnest/talentsearch/session"
)

// DBPool defines the interface for database connection pool
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Backend implements session.Backend using PostgreSQL
type Backend struct {
	pool      DBPool
	tableName string
}

var _ session.Backend = (*Backend)(nil)

// Options configuration for Postgres connection
type Options struct {
	ConnString string
	TableName  string // Default "chat_sessions"
}

// New connects to Postgres and ensures the schema exists.
func New(ctx context.Context, opts Options) (*Backend, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	b := NewWithPool(pool, opts.TableName)
	if err := b.InitSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return b, nil
}

// NewWithPool creates a backend with an existing pool
// Useful for testing with mocks
func NewWithPool(pool DBPool, tableName string) *Backend {
	if tableName == "" {
		tableName = "chat_sessions"
	}
	return &Backend{pool: pool, tableName: tableName}
}

// InitSchema creates the necessary table if it doesn't exist
func (b *Backend) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			session_id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			last_active_at TIMESTAMPTZ NOT NULL,
			title TEXT NOT NULL,
			filters JSONB NOT NULL,
			meta JSONB NOT NULL,
			previous_context JSONB,
			skip_fields JSONB NOT NULL,
			messages JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_last_active_at ON %s (last_active_at);
	`, b.tableName, b.tableName, b.tableName)

	if _, err := b.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// columns is shared by every SELECT so scan order stays in one place.
const columns = "session_id, created_at, last_active_at, title, filters, meta, previous_context, skip_fields, messages"

// record holds the JSON-encoded columns of a session row.
type record struct {
	filters, meta, previous, skip, messages []byte
}

func encode(s *session.Session) (record, error) {
	var r record
	var err error
	if r.filters, err = json.Marshal(s.Filters); err != nil {
		return r, fmt.Errorf("failed to marshal filters: %w", err)
	}
	if r.meta, err = json.Marshal(s.Meta); err != nil {
		return r, fmt.Errorf("failed to marshal meta: %w", err)
	}
	if s.Previous != nil {
		if r.previous, err = json.Marshal(s.Previous); err != nil {
			return r, fmt.Errorf("failed to marshal previous context: %w", err)
		}
	}
	if r.skip, err = json.Marshal(s.SkipFields); err != nil {
		return r, fmt.Errorf("failed to marshal skip fields: %w", err)
	}
	if r.messages, err = json.Marshal(s.Messages); err != nil {
		return r, fmt.Errorf("failed to marshal messages: %w", err)
	}
	return r, nil
}

func (r record) decode(s *session.Session) error {
	if err := json.Unmarshal(r.filters, &s.Filters); err != nil {
		return fmt.Errorf("failed to unmarshal filters: %w", err)
	}
	if err := json.Unmarshal(r.meta, &s.Meta); err != nil {
		return fmt.Errorf("failed to unmarshal meta: %w", err)
	}
	if len(r.previous) > 0 {
		if err := json.Unmarshal(r.previous, &s.Previous); err != nil {
			return fmt.Errorf("failed to unmarshal previous context: %w", err)
		}
	}
	if err := json.Unmarshal(r.skip, &s.SkipFields); err != nil {
		return fmt.Errorf("failed to unmarshal skip fields: %w", err)
	}
	if err := json.Unmarshal(r.messages, &s.Messages); err != nil {
		return fmt.Errorf("failed to unmarshal messages: %w", err)
	}
	return nil
}

func scan(row pgx.Row) (*session.Session, error) {
	var s session.Session
	var r record
	if err := row.Scan(&s.ID, &s.CreatedAt, &s.LastActiveAt, &s.Title,
		&r.filters, &r.meta, &r.previous, &r.skip, &r.messages); err != nil {
		return nil, err
	}
	if err := r.decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Put upserts a session
func (b *Backend) Put(ctx context.Context, s *session.Session) error {
	r, err := encode(s)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (session_id) DO UPDATE SET
			last_active_at = EXCLUDED.last_active_at,
			title = EXCLUDED.title,
			filters = EXCLUDED.filters,
			meta = EXCLUDED.meta,
			previous_context = EXCLUDED.previous_context,
			skip_fields = EXCLUDED.skip_fields,
			messages = EXCLUDED.messages
	`, b.tableName, columns)

	_, err = b.pool.Exec(ctx, query,
		s.ID, s.CreatedAt, s.LastActiveAt, s.Title,
		r.filters, r.meta, r.previous, r.skip, r.messages,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load retrieves a session by ID
func (b *Backend) Load(ctx context.Context, id string) (*session.Session, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE session_id = $1", columns, b.tableName)
	s, err := scan(b.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", session.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return s, nil
}

// Remove deletes a session
func (b *Backend) Remove(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE session_id = $1", b.tableName)
	tag, err := b.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", session.ErrNotFound, id)
	}
	return nil
}

// LoadAll returns every session, most recently active first.
func (b *Backend) LoadAll(ctx context.Context) ([]*session.Session, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY last_active_at DESC", columns, b.tableName)
	rows, err := b.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []*session.Session
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

// RemoveInactive deletes sessions last active before the cutoff.
func (b *Backend) RemoveInactive(ctx context.Context, before time.Time) (int, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE last_active_at < $1", b.tableName)
	tag, err := b.pool.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete inactive sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Close closes the connection pool
func (b *Backend) Close() error {
	b.pool.Close()
	return nil
}
