// Package sqlite stores sessions in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/smallnest/talentsearch/session"
)

// Backend implements session.Backend using SQLite
type Backend struct {
	db        *sql.DB
	tableName string
}

var _ session.Backend = (*Backend)(nil)

// Options configuration for SQLite connection
type Options struct {
	Path      string
	TableName string // Default "chat_sessions"
}

// New opens the database and ensures the schema exists.
func New(opts Options) (*Backend, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "chat_sessions"
	}

	b := &Backend{db: db, tableName: tableName}
	if err := b.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

// InitSchema creates the necessary table if it doesn't exist
func (b *Backend) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			session_id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			last_active_at INTEGER NOT NULL,
			title TEXT NOT NULL,
			state TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_last_active_at ON %s (last_active_at);
	`, b.tableName, b.tableName, b.tableName)

	if _, err := b.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Put upserts a session. The whole record is kept as one JSON document; the
// timestamps are duplicated as unix milliseconds for ordering and reaping.
func (b *Backend) Put(ctx context.Context, s *session.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (session_id, created_at, last_active_at, title, state)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			last_active_at = excluded.last_active_at,
			title = excluded.title,
			state = excluded.state
	`, b.tableName)

	_, err = b.db.ExecContext(ctx, query, s.ID, s.CreatedAt.UnixMilli(), s.LastActiveAt.UnixMilli(), s.Title, string(data))
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func decode(data string) (*session.Session, error) {
	var s session.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// Load retrieves a session by ID
func (b *Backend) Load(ctx context.Context, id string) (*session.Session, error) {
	query := fmt.Sprintf("SELECT state FROM %s WHERE session_id = ?", b.tableName)
	var data string
	if err := b.db.QueryRowContext(ctx, query, id).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", session.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return decode(data)
}

// Remove deletes a session
func (b *Backend) Remove(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE session_id = ?", b.tableName)
	res, err := b.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", session.ErrNotFound, id)
	}
	return nil
}

// LoadAll returns every session, most recently active first.
func (b *Backend) LoadAll(ctx context.Context) ([]*session.Session, error) {
	query := fmt.Sprintf("SELECT state FROM %s ORDER BY last_active_at DESC", b.tableName)
	rows, err := b.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []*session.Session
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		s, err := decode(data)
		if err != nil {
			return nil, err
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
	query := fmt.Sprintf("DELETE FROM %s WHERE last_active_at < ?", b.tableName)
	res, err := b.db.ExecContext(ctx, query, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete inactive sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted sessions: %w", err)
	}
	return int(n), nil
}

// Close closes the database.
func (b *Backend) Close() error {
	return b.db.Close()
}
