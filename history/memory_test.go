package history_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emperance/statify/history"
	"github.com/emperance/statify/stats"
)

func mustResult(t *testing.T, raw string) *stats.Result {
	t.Helper()
	res, err := stats.ComputeAll(stats.Parse(raw), 0)
	require.NoError(t, err)
	return res
}

func TestMemoryStoreSaveGet(t *testing.T) {
	ctx := context.Background()
	store := history.NewMemoryStore(10)

	res := mustResult(t, "1, 2, 3, 4")
	entry, err := store.Save(ctx, res)
	require.NoError(t, err)
	require.NotEmpty(t, entry.ID)
	require.False(t, entry.CreatedAt.IsZero())

	got, err := store.Get(ctx, entry.ID)
	require.NoError(t, err)
	require.Equal(t, res, got.Result)

	_, err = store.Get(ctx, "no-such-id")
	require.ErrorIs(t, err, history.ErrNotFound)
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := history.NewMemoryStore(10)

	first, err := store.Save(ctx, mustResult(t, "1, 2"))
	require.NoError(t, err)
	second, err := store.Save(ctx, mustResult(t, "3, 4"))
	require.NoError(t, err)

	entries, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, second.ID, entries[0].ID)
	require.Equal(t, first.ID, entries[1].ID)

	entries, err = store.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, second.ID, entries[0].ID)
}

func TestMemoryStoreEviction(t *testing.T) {
	ctx := context.Background()
	store := history.NewMemoryStore(2)

	oldest, err := store.Save(ctx, mustResult(t, "1"))
	require.NoError(t, err)
	_, err = store.Save(ctx, mustResult(t, "2"))
	require.NoError(t, err)
	_, err = store.Save(ctx, mustResult(t, "3"))
	require.NoError(t, err)

	_, err = store.Get(ctx, oldest.ID)
	require.ErrorIs(t, err, history.ErrNotFound)

	entries, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}
