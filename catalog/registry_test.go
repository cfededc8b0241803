package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/patternflow/types"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return NewRegistry(RegistryConfig{
		Now: func() time.Time { return now },
	}, zap.NewNop())
}

func TestRegistry_LoadManifestAndList(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)
	m := &types.Manifest{
		Version: "2",
		Patterns: []types.Pattern{
			{ID: "streaming-first", Title: "Streaming First"},
			{ID: "context-ledger", Title: "Context Ledger"},
			{ID: "pathscore", Title: "PathScore"},
		},
	}
	require.NoError(t, r.LoadManifest(m))
	require.Equal(t, 3, r.Len())

	list := r.List()
	require.Equal(t, "context-ledger", list[0].ID)
	require.Equal(t, "pathscore", list[1].ID)
	require.Equal(t, "streaming-first", list[2].ID)
}

func TestRegistry_Search(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)
	require.NoError(t, r.Upsert(types.Pattern{ID: "structured-memory", Title: "Structured Memory", Tags: []string{"memory"}}))
	require.NoError(t, r.Upsert(types.Pattern{ID: "pathscore", Title: "PathScore", Summary: "weighted-sum heuristic"}))

	hits := r.Search("memory")
	require.Len(t, hits, 1)
	require.Equal(t, "structured-memory", hits[0].ID)

	hits = r.Search("WEIGHTED")
	require.Len(t, hits, 1)
	require.Equal(t, "pathscore", hits[0].ID)

	require.Len(t, r.Search(""), 2)
}

func TestRegistry_UpsertPreservesCreatedAt(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)
	require.NoError(t, r.Upsert(types.Pattern{ID: "acv", Title: "ACV"}))

	first, ok := r.Get("acv")
	require.True(t, ok)
	require.False(t, first.CreatedAt.IsZero())

	require.NoError(t, r.Upsert(types.Pattern{ID: "acv", Title: "Agent-Controller-View"}))
	second, ok := r.Get("acv")
	require.True(t, ok)
	require.Equal(t, first.CreatedAt, second.CreatedAt)
	require.Equal(t, "Agent-Controller-View", second.Title)
}

func TestRegistry_UpsertRejectsInvalid(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)
	require.Error(t, r.Upsert(types.Pattern{ID: "Bad ID", Title: "X"}))
	require.Error(t, r.Upsert(types.Pattern{ID: "ok", Title: "X", Maturity: "alpha"}))
}

func TestRegistry_SubscribeNotifies(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)
	ch := r.Subscribe()

	require.NoError(t, r.Upsert(types.Pattern{ID: "tool-fallbacks", Title: "Tool Fallbacks"}))

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected notification after upsert")
	}

	require.True(t, r.Remove("tool-fallbacks"))
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected notification after remove")
	}

	require.False(t, r.Remove("tool-fallbacks"))
}
