package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	graph := testGraph(t)
	s, err := New(graph)
	require.NoError(t, err)

	// Play a little.
	require.True(t, s.MarkVisited("beach"))
	_, err = s.ApplyScore(5)
	require.NoError(t, err)
	require.True(t, s.MarkAwarded("first_visit:beach"))
	require.NoError(t, s.MoveItem("shell", "beach", LocationInventory))
	require.NoError(t, s.MoveItem("lantern", "beach", LocationInventory))
	require.NoError(t, s.SetItemFlag("lantern", "lit", true))
	s.MarkItemsMoved("beach")
	s.IncrementMoves()
	s.IncrementMoves()
	require.NoError(t, s.SetCurrentScene("dunes"))
	s.SetSceneFlag("dunes", "wind", "howling")

	snap, err := s.Snapshot()
	require.NoError(t, err)

	restored, err := Restore(graph, snap)
	require.NoError(t, err)

	assert.Equal(t, "dunes", restored.CurrentScene())
	assert.Equal(t, []string{"shell", "lantern"}, restored.Inventory())
	assert.Equal(t, 2, restored.Moves())
	assert.Equal(t, 5, restored.Score())
	assert.Equal(t, s.MaxScore(), restored.MaxScore())
	assert.True(t, restored.Visited("beach"))
	assert.True(t, restored.ItemsMoved("beach"))
	assert.True(t, restored.Awarded("first_visit:beach"))
	assert.True(t, restored.ItemFlag("lantern", "lit"))
	assert.True(t, restored.CarryingLitLight())
	assert.Equal(t, "howling", restored.SceneFlag("dunes", "wind"))

	// Identical subsequent behavior: the same transfer succeeds on both.
	require.NoError(t, s.MoveItem("shell", LocationInventory, "dunes"))
	require.NoError(t, restored.MoveItem("shell", LocationInventory, "dunes"))
	assert.Equal(t, s.Inventory(), restored.Inventory())
	assert.Equal(t, s.SceneItems("dunes"), restored.SceneItems("dunes"))
}

func TestSnapshotRoundTrip_Fresh(t *testing.T) {
	graph := testGraph(t)
	s, err := New(graph)
	require.NoError(t, err)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	restored, err := Restore(graph, snap)
	require.NoError(t, err)

	assert.Equal(t, s.CurrentScene(), restored.CurrentScene())
	assert.Empty(t, restored.Inventory())
	assert.Equal(t, 0, restored.Moves())
	assert.Equal(t, 0, restored.Score())
}

func TestRestore_Malformed(t *testing.T) {
	graph := testGraph(t)
	_, err := Restore(graph, []byte("not json"))
	assert.Error(t, err)
}

func TestRestore_BadVersion(t *testing.T) {
	graph := testGraph(t)
	_, err := Restore(graph, []byte(`{"version": 99, "current_scene": "beach"}`))
	assert.ErrorContains(t, err, "unsupported snapshot version")
}

func TestRestore_UnknownScene(t *testing.T) {
	graph := testGraph(t)
	_, err := Restore(graph, []byte(`{"version": 1, "current_scene": "atlantis"}`))
	assert.ErrorContains(t, err, "not found in world")
}

func TestRestore_MissingItemLocation(t *testing.T) {
	graph := testGraph(t)
	_, err := Restore(graph, []byte(`{"version": 1, "current_scene": "beach", "locations": {"leaves": "beach"}}`))
	assert.ErrorContains(t, err, "missing location")
}

func TestRestore_InconsistentInventory(t *testing.T) {
	graph := testGraph(t)
	snap := []byte(`{
		"version": 1,
		"current_scene": "beach",
		"inventory": ["leaves"],
		"locations": {"leaves": "beach", "shell": "beach", "lantern": "beach"}
	}`)
	_, err := Restore(graph, snap)
	assert.ErrorContains(t, err, "inventory lists")
}

func TestRestore_InventoryLocationWithoutListing(t *testing.T) {
	graph := testGraph(t)
	// leaves claims to be carried but the inventory list omits it; such an
	// item could never be listed or dropped.
	snap := []byte(`{
		"version": 1,
		"current_scene": "beach",
		"inventory": [],
		"locations": {"leaves": "inventory", "shell": "beach", "lantern": "beach"}
	}`)
	_, err := Restore(graph, snap)
	assert.ErrorContains(t, err, "missing from the inventory list")
}

func TestRestore_ScoreOutOfRange(t *testing.T) {
	graph := testGraph(t)
	snap := []byte(`{
		"version": 1,
		"current_scene": "beach",
		"locations": {"leaves": "beach", "shell": "beach", "lantern": "beach"},
		"score": 9999
	}`)
	_, err := Restore(graph, snap)
	assert.ErrorContains(t, err, "outside")
}
