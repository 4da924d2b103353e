package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/talentsearch/session"
	"github.com/smallnest/talentsearch/session/sessiontest"
)

func newBackend(t *testing.T, path string) *Backend {
	t.Helper()
	b, err := New(Options{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBackend(t *testing.T) {
	sessiontest.RunBackendTests(t, func(t *testing.T) session.Backend {
		return newBackend(t, filepath.Join(t.TempDir(), "sessions.db"))
	})
}

func TestBackend_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.db")

	b, err := New(Options{Path: path, TableName: "chats"})
	require.NoError(t, err)
	require.NoError(t, b.Put(ctx, sessiontest.Sample("a", time.Now())))
	require.NoError(t, b.Close())

	b = newBackend(t, path)
	_, err = b.Load(ctx, "a")
	assert.ErrorIs(t, err, session.ErrNotFound, "default table is separate")

	b2, err := New(Options{Path: path, TableName: "chats"})
	require.NoError(t, err)
	defer b2.Close()
	got, err := b2.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Find CTOs in Singapore", got.Title)
}

func TestBackend_LoadAllOrder(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t, filepath.Join(t.TempDir(), "sessions.db"))
	base := time.Now()

	require.NoError(t, b.Put(ctx, sessiontest.Sample("older", base)))
	require.NoError(t, b.Put(ctx, sessiontest.Sample("newer", base.Add(time.Second))))

	all, err := b.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "newer", all[0].ID)
}
