package store

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTree_SetGetRoundTrip(t *testing.T) {
	tree := NewMemoryTree()
	ctx := context.Background()

	err := tree.Set(ctx, "rooms/R1", map[string]any{
		"host":      "h1",
		"players":   map[string]any{"h1": true},
		"createdAt": int64(1700000000000),
	})
	require.NoError(t, err)

	got, err := tree.Get(ctx, "rooms/R1")
	require.NoError(t, err)
	room, ok := got.(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "h1", room["host"])
	assert.Equal(t, float64(1700000000000), room["createdAt"])

	players, ok := room["players"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, players["h1"])
}

func TestMemoryTree_GetAbsentPath(t *testing.T) {
	tree := NewMemoryTree()

	got, err := tree.Get(context.Background(), "rooms/missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryTree_UpdateMergesWithoutTouchingSiblings(t *testing.T) {
	tree := NewMemoryTree()
	ctx := context.Background()

	require.NoError(t, tree.Set(ctx, "rooms/R1", map[string]any{
		"host":    "h1",
		"players": map[string]any{"h1": true},
	}))

	require.NoError(t, tree.Update(ctx, "rooms/R1/players", map[string]any{"p2": true}))

	got, err := tree.Get(ctx, "rooms/R1")
	require.NoError(t, err)
	room := got.(map[string]any)

	assert.Equal(t, "h1", room["host"])
	players := room["players"].(map[string]any)
	assert.Equal(t, true, players["h1"])
	assert.Equal(t, true, players["p2"])
}

func TestMemoryTree_UpdateCreatesMissingPath(t *testing.T) {
	tree := NewMemoryTree()
	ctx := context.Background()

	require.NoError(t, tree.Update(ctx, "rooms/R1/offers", map[string]any{"p2": "sdp"}))

	got, err := tree.Get(ctx, "rooms/R1/offers/p2")
	require.NoError(t, err)
	assert.Equal(t, "sdp", got)
}

func TestMemoryTree_DeleteSubtree(t *testing.T) {
	tree := NewMemoryTree()
	ctx := context.Background()

	require.NoError(t, tree.Set(ctx, "rooms/R1", map[string]any{"host": "h1"}))
	require.NoError(t, tree.Delete(ctx, "rooms/R1"))

	got, err := tree.Get(ctx, "rooms/R1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryTree_DeleteAbsentPathIsNoop(t *testing.T) {
	tree := NewMemoryTree()

	require.NoError(t, tree.Delete(context.Background(), "rooms/never-existed"))
	require.NoError(t, tree.Delete(context.Background(), "rooms/a/b/c/d"))
}

func TestMemoryTree_PushKeysPreserveOrder(t *testing.T) {
	tree := NewMemoryTree()
	ctx := context.Background()

	var keys []string
	for i := 0; i < 50; i++ {
		key, err := tree.Push(ctx, "rooms/R1/notifications/p1", map[string]any{"seq": i})
		require.NoError(t, err)
		keys = append(keys, key)
	}

	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	assert.Equal(t, sorted, keys, "push keys must sort in generation order")

	got, err := tree.Get(ctx, "rooms/R1/notifications/p1")
	require.NoError(t, err)
	entries := got.(map[string]any)
	assert.Len(t, entries, 50)
}

func TestMemoryTree_GetReturnsSnapshot(t *testing.T) {
	tree := NewMemoryTree()
	ctx := context.Background()

	require.NoError(t, tree.Set(ctx, "rooms/R1", map[string]any{"host": "h1"}))

	got, _ := tree.Get(ctx, "rooms/R1")
	got.(map[string]any)["host"] = "mutated"

	fresh, err := tree.Get(ctx, "rooms/R1/host")
	require.NoError(t, err)
	assert.Equal(t, "h1", fresh)
}
