package expand

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lantern-engine/lantern/internal/world"
)

const coveYAML = `
region:
  id: cove
  name: "Smugglers' Cove"
  start_scene: jetty
  scenes:
    - id: jetty
      title: "Rotting Jetty"
      description: "Barnacled planks creak underfoot."
      exits:
        - direction: north
          target: grotto
        - direction: east
          target: cliff
      items: [rope]
      monsters: [gull]
    - id: grotto
      title: "Sea Grotto"
      description: "Green light filters through the water."
      exits:
        - direction: south
          target: jetty
    - id: cliff
      title: "Chalk Cliff"
      description: "The path ends at a sheer drop."
      exits:
        - direction: west
          target: jetty
  items:
    - id: rope
      name: "coil of rope"
      description: "A salt-stiffened coil of rope."
      portable: true
      weight: 2
      type: tool
  monsters:
    - id: gull
      name: "herring gull"
      description: "A fat gull with a piratical glare."
      scene: jetty
      state: dormant
`

func testCache(t *testing.T, gen Generator) *Cache {
	t.Helper()
	region, err := world.LoadRegionFromBytes([]byte(coveYAML))
	require.NoError(t, err)
	graph, err := world.NewGraph([]*world.Region{region})
	require.NoError(t, err)
	cache, err := NewCache(gen, graph, zap.NewNop(), "classic")
	require.NoError(t, err)
	return cache
}

func TestExpandScene_CachesResult(t *testing.T) {
	gen := NewMockGenerator()
	cache := testCache(t, gen)

	first, err := cache.ExpandScene(context.Background(), "jetty", "classic")
	require.NoError(t, err)
	assert.NotEmpty(t, first.Text)
	assert.Equal(t, EntityScene, first.EntityType)

	second, err := cache.ExpandScene(context.Background(), "jetty", "classic")
	require.NoError(t, err)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, 1, gen.CallCount())
}

func TestExpandScene_UnknownScene(t *testing.T) {
	cache := testCache(t, NewMockGenerator())
	_, err := cache.ExpandScene(context.Background(), "atlantis", "classic")
	assert.ErrorContains(t, err, "not found")
}

func TestExpandScene_DistinctStylesDistinctEntries(t *testing.T) {
	gen := NewMockGenerator()
	cache := testCache(t, gen)

	_, err := cache.ExpandScene(context.Background(), "jetty", "classic")
	require.NoError(t, err)
	_, err = cache.ExpandScene(context.Background(), "jetty", "noir")
	require.NoError(t, err)
	assert.Equal(t, 2, gen.CallCount())
}

// Concurrent requests for the same key are served by a single generation
// call and all receive the same value.
func TestExpandScene_Coalescing(t *testing.T) {
	gate := make(chan struct{})
	gen := NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, req PromptRequest) (string, error) {
		<-gate
		return "the jetty, richly described", nil
	}
	cache := testCache(t, gen)

	const callers = 8
	results := make([]ExpandedContent, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for n := 0; n < callers; n++ {
		n := n
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[n], errs[n] = cache.ExpandScene(context.Background(), "jetty", "classic")
		}()
	}

	// Give every caller a chance to attach before the generator resolves.
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	for n := 0; n < callers; n++ {
		require.NoError(t, errs[n])
		assert.Equal(t, "the jetty, richly described", results[n].Text)
	}
	assert.Equal(t, 1, gen.CallCount())
}

func TestExpandScene_FailureNotCached(t *testing.T) {
	var calls int
	gen := NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, req PromptRequest) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("upstream exploded")
		}
		return "second time lucky", nil
	}
	cache := testCache(t, gen)

	_, err := cache.ExpandScene(context.Background(), "jetty", "classic")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.False(t, cache.IsExpanded("jetty", EntityScene))

	// A later request retries from scratch.
	content, err := cache.ExpandScene(context.Background(), "jetty", "classic")
	require.NoError(t, err)
	assert.Equal(t, "second time lucky", content.Text)
}

// A pending request's failure reaches every coalesced waiter.
func TestExpandScene_FailurePropagatesToWaiters(t *testing.T) {
	gate := make(chan struct{})
	gen := NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, req PromptRequest) (string, error) {
		<-gate
		return "", errors.New("upstream exploded")
	}
	cache := testCache(t, gen)

	const callers = 4
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for n := 0; n < callers; n++ {
		n := n
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[n] = cache.ExpandScene(context.Background(), "jetty", "classic")
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	for n := 0; n < callers; n++ {
		assert.ErrorIs(t, errs[n], ErrGenerationFailed)
	}
	assert.Equal(t, 1, gen.CallCount())
}

func TestIsExpanded_IgnoresInFlight(t *testing.T) {
	gate := make(chan struct{})
	released := make(chan struct{})
	gen := NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, req PromptRequest) (string, error) {
		close(released)
		<-gate
		return "done", nil
	}
	cache := testCache(t, gen)

	go func() {
		_, _ = cache.ExpandScene(context.Background(), "jetty", "classic")
	}()
	<-released
	assert.False(t, cache.IsExpanded("jetty", EntityScene))

	close(gate)
	require.Eventually(t, func() bool {
		return cache.IsExpanded("jetty", EntityScene)
	}, time.Second, 5*time.Millisecond)
}

func TestCached(t *testing.T) {
	gen := NewMockGenerator()
	cache := testCache(t, gen)

	_, ok := cache.Cached("rope", EntityItem)
	assert.False(t, ok)

	content, err := cache.ExpandItem(context.Background(), "rope", "classic")
	require.NoError(t, err)

	text, ok := cache.Cached("rope", EntityItem)
	require.True(t, ok)
	assert.Equal(t, content.Text, text)

	// Other styles do not satisfy the configured-style lookup.
	_, err = cache.ExpandItem(context.Background(), "rope", "noir")
	require.NoError(t, err)
	text, _ = cache.Cached("rope", EntityItem)
	assert.Equal(t, content.Text, text)
}

func TestPreloadAdjacentScenes(t *testing.T) {
	gen := NewMockGenerator()
	cache := testCache(t, gen)

	cache.PreloadAdjacentScenes("jetty")
	cache.Flush()

	assert.True(t, cache.IsExpanded("grotto", EntityScene))
	assert.True(t, cache.IsExpanded("cliff", EntityScene))
	assert.False(t, cache.IsExpanded("jetty", EntityScene))
	assert.Equal(t, 2, gen.CallCount())
}

func TestPreloadAdjacentScenes_SwallowsFailures(t *testing.T) {
	gen := NewMockGenerator()
	gen.SetError(errors.New("upstream exploded"))
	cache := testCache(t, gen)

	cache.PreloadAdjacentScenes("jetty")
	cache.Flush()

	assert.False(t, cache.IsExpanded("grotto", EntityScene))
	assert.False(t, cache.IsExpanded("cliff", EntityScene))
}

func TestPreloadAdjacentScenes_Disabled(t *testing.T) {
	gen := NewMockGenerator()
	region, err := world.LoadRegionFromBytes([]byte(coveYAML))
	require.NoError(t, err)
	graph, err := world.NewGraph([]*world.Region{region})
	require.NoError(t, err)
	cache, err := NewCache(gen, graph, zap.NewNop(), "classic", WithoutPreload())
	require.NoError(t, err)

	cache.PreloadAdjacentScenes("jetty")
	cache.Flush()

	assert.Zero(t, gen.CallCount())
}

func TestExpandInventoryItems(t *testing.T) {
	gen := NewMockGenerator()
	cache := testCache(t, gen)

	cache.ExpandInventoryItems([]string{"rope"})
	cache.Flush()

	assert.True(t, cache.IsExpanded("rope", EntityItem))
}

func TestExpandSceneContext(t *testing.T) {
	gen := NewMockGenerator()
	cache := testCache(t, gen)

	sc, err := cache.ExpandSceneContext(context.Background(), "jetty", "classic")
	require.NoError(t, err)
	assert.Equal(t, "jetty", sc.Scene.EntityID)
	require.Len(t, sc.Items, 1)
	assert.Equal(t, "rope", sc.Items[0].EntityID)
	require.Len(t, sc.Monsters, 1)
	assert.Equal(t, "gull", sc.Monsters[0].EntityID)

	assert.True(t, cache.IsExpanded("jetty", EntityScene))
	assert.True(t, cache.IsExpanded("rope", EntityItem))
	assert.True(t, cache.IsExpanded("gull", EntityMonster))
}

func TestGenerate_Timeout(t *testing.T) {
	gen := NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, req PromptRequest) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(5 * time.Second):
			return "too late", nil
		}
	}
	region, err := world.LoadRegionFromBytes([]byte(coveYAML))
	require.NoError(t, err)
	graph, err := world.NewGraph([]*world.Region{region})
	require.NoError(t, err)
	cache, err := NewCache(gen, graph, zap.NewNop(), "classic", WithTimeout(10*time.Millisecond))
	require.NoError(t, err)

	_, err = cache.ExpandScene(context.Background(), "jetty", "classic")
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestNewCache_Validation(t *testing.T) {
	region, err := world.LoadRegionFromBytes([]byte(coveYAML))
	require.NoError(t, err)
	graph, err := world.NewGraph([]*world.Region{region})
	require.NoError(t, err)

	tests := []struct {
		name string
		fn   func() (*Cache, error)
	}{
		{"nil generator", func() (*Cache, error) { return NewCache(nil, graph, zap.NewNop(), "classic") }},
		{"nil graph", func() (*Cache, error) { return NewCache(NewMockGenerator(), nil, zap.NewNop(), "classic") }},
		{"nil logger", func() (*Cache, error) { return NewCache(NewMockGenerator(), graph, nil, "classic") }},
		{"empty style", func() (*Cache, error) { return NewCache(NewMockGenerator(), graph, zap.NewNop(), "") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			assert.Error(t, err)
		})
	}
}

func TestMockGenerator_Records(t *testing.T) {
	gen := NewMockGenerator()
	_, err := gen.Generate(context.Background(), PromptRequest{
		EntityID:   "jetty",
		EntityType: EntityScene,
		Style:      "classic",
		Prompt:     "describe the jetty",
	})
	require.NoError(t, err)

	calls := gen.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "jetty", calls[0].EntityID)

	gen.Reset()
	assert.Equal(t, 0, gen.CallCount())
}
