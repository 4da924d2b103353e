// Package sessiontest holds a conformance suite for session backends.
package sessiontest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/talentsearch/filters"
	"github.com/smallnest/talentsearch/session"
)

// Sample returns a populated session last active at t.
func Sample(id string, t time.Time) *session.Session {
	s := session.New(id, t)
	s.Filters = filters.SearchFilters{
		Titles:            filters.DirectList("CTO"),
		Locations:         filters.GuessList("Singapore"),
		YearsOfExperience: &filters.RangeField{Value: filters.Range{Min: filters.IntPtr(5)}, Confidence: filters.Direct},
	}
	s.Meta = filters.SearchMeta{
		Domain:            filters.Person,
		CompletenessScore: 54,
		MissingFields:     []filters.Field{filters.Industries},
	}
	s.Previous = &filters.Snapshot{Domain: filters.Company, Filters: filters.SearchFilters{Industries: filters.DirectList("Fintech")}}
	s.AddSkip(filters.Seniorities)
	s.Append(
		session.Message{Role: session.RoleUser, Content: "Find CTOs in Singapore", Timestamp: t},
		session.Message{Role: session.RoleAssistant, Content: "Which industry?", Timestamp: t},
	)
	return s
}

// RunBackendTests exercises the session.Backend contract against backends
// produced by newBackend. Each subtest gets a fresh backend.
func RunBackendTests(t *testing.T, newBackend func(t *testing.T) session.Backend) {
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

	t.Run("load missing", func(t *testing.T) {
		b := newBackend(t)
		_, err := b.Load(ctx, "missing")
		assert.ErrorIs(t, err, session.ErrNotFound)
		assert.ErrorIs(t, b.Remove(ctx, "missing"), session.ErrNotFound)
	})

	t.Run("put and load", func(t *testing.T) {
		b := newBackend(t)
		want := Sample("a", base)
		require.NoError(t, b.Put(ctx, want))

		got, err := b.Load(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Title, got.Title)
		assert.WithinDuration(t, want.CreatedAt, got.CreatedAt, time.Millisecond)
		assert.WithinDuration(t, want.LastActiveAt, got.LastActiveAt, time.Millisecond)
		assert.Equal(t, want.Filters, got.Filters)
		assert.Equal(t, want.Meta, got.Meta)
		assert.Equal(t, want.Previous, got.Previous)
		assert.Equal(t, want.SkipFields, got.SkipFields)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, want.Messages[1].Content, got.Messages[1].Content)
		assert.Equal(t, session.RoleAssistant, got.Messages[1].Role)
	})

	t.Run("put overwrites", func(t *testing.T) {
		b := newBackend(t)
		s := Sample("a", base)
		require.NoError(t, b.Put(ctx, s))

		s.Filters = filters.SearchFilters{}
		s.Previous = nil
		s.LastActiveAt = base.Add(time.Hour)
		require.NoError(t, b.Put(ctx, s))

		got, err := b.Load(ctx, "a")
		require.NoError(t, err)
		assert.True(t, got.Filters.Empty())
		assert.Nil(t, got.Previous)
		assert.WithinDuration(t, base.Add(time.Hour), got.LastActiveAt, time.Millisecond)

		all, err := b.LoadAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("remove", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.Put(ctx, Sample("a", base)))
		require.NoError(t, b.Put(ctx, Sample("b", base)))

		require.NoError(t, b.Remove(ctx, "a"))
		_, err := b.Load(ctx, "a")
		assert.ErrorIs(t, err, session.ErrNotFound)

		all, err := b.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "b", all[0].ID)
	})

	t.Run("remove inactive", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.Put(ctx, Sample("old", base)))
		require.NoError(t, b.Put(ctx, Sample("new", base.Add(2*time.Hour))))

		n, err := b.RemoveInactive(ctx, base.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		_, err = b.Load(ctx, "old")
		assert.ErrorIs(t, err, session.ErrNotFound)
		_, err = b.Load(ctx, "new")
		assert.NoError(t, err)
	})
}
