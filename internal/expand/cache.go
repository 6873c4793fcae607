package expand

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lantern-engine/lantern/internal/world"
)

// Key identifies one cache entry.
type Key struct {
	EntityID   string
	EntityType EntityType
	Style      string
}

// entry is a pending or resolved expansion. done is closed exactly once,
// after content and err are set; failed entries are removed from the map
// before done closes so later callers regenerate from scratch.
type entry struct {
	done    chan struct{}
	content ExpandedContent
	err     error
}

// Cache coalesces and memoizes expansion requests per (entity, type, style)
// key. Safe for concurrent use.
type Cache struct {
	generator Generator
	graph     *world.Graph
	logger    *zap.Logger
	style     string
	timeout   time.Duration

	mu      sync.Mutex
	entries map[Key]*entry

	background sync.WaitGroup
	noPreload  bool
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTimeout bounds each generation call. Zero means no bound beyond the
// caller's context.
func WithTimeout(d time.Duration) CacheOption {
	return func(c *Cache) { c.timeout = d }
}

// WithoutPreload turns PreloadAdjacentScenes into a no-op; on-demand and
// inventory expansion are unaffected.
func WithoutPreload() CacheOption {
	return func(c *Cache) { c.noPreload = true }
}

// NewCache creates an expansion cache over the given generator and world.
//
// Precondition: generator, graph, and logger are non-nil; style is non-empty.
func NewCache(generator Generator, graph *world.Graph, logger *zap.Logger, style string, opts ...CacheOption) (*Cache, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if graph == nil {
		return nil, fmt.Errorf("graph is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if style == "" {
		return nil, fmt.Errorf("style is required")
	}

	c := &Cache{
		generator: generator,
		graph:     graph,
		logger:    logger,
		style:     style,
		entries:   make(map[Key]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Style returns the cache's configured narrative style.
func (c *Cache) Style() string {
	return c.style
}

// ExpandScene expands a scene's description, coalescing concurrent requests
// and serving completed ones from cache.
func (c *Cache) ExpandScene(ctx context.Context, sceneID, style string) (ExpandedContent, error) {
	scene, ok := c.graph.Scene(sceneID)
	if !ok {
		return ExpandedContent{}, fmt.Errorf("scene %q not found", sceneID)
	}
	key := Key{EntityID: sceneID, EntityType: EntityScene, Style: style}
	return c.expand(ctx, key, scenePrompt(scene, style))
}

// ExpandItem expands an item's description.
func (c *Cache) ExpandItem(ctx context.Context, itemID, style string) (ExpandedContent, error) {
	item, ok := c.graph.Item(itemID)
	if !ok {
		return ExpandedContent{}, fmt.Errorf("item %q not found", itemID)
	}
	key := Key{EntityID: itemID, EntityType: EntityItem, Style: style}
	return c.expand(ctx, key, itemPrompt(item, style))
}

// ExpandMonster expands a monster's description.
func (c *Cache) ExpandMonster(ctx context.Context, monsterID, style string) (ExpandedContent, error) {
	monster, ok := c.graph.Monster(monsterID)
	if !ok {
		return ExpandedContent{}, fmt.Errorf("monster %q not found", monsterID)
	}
	key := Key{EntityID: monsterID, EntityType: EntityMonster, Style: style}
	return c.expand(ctx, key, monsterPrompt(monster, style))
}

// ExpandSceneContext expands a scene and every visible item and monster in
// it. The first failure aborts and is returned.
func (c *Cache) ExpandSceneContext(ctx context.Context, sceneID, style string) (SceneContext, error) {
	scene, ok := c.graph.Scene(sceneID)
	if !ok {
		return SceneContext{}, fmt.Errorf("scene %q not found", sceneID)
	}

	var sc SceneContext
	var err error
	if sc.Scene, err = c.ExpandScene(ctx, sceneID, style); err != nil {
		return SceneContext{}, err
	}
	for _, itemID := range scene.Items {
		item, ok := c.graph.Item(itemID)
		if !ok || !item.Visible {
			continue
		}
		content, err := c.ExpandItem(ctx, itemID, style)
		if err != nil {
			return SceneContext{}, err
		}
		sc.Items = append(sc.Items, content)
	}
	for _, monsterID := range scene.Monsters {
		content, err := c.ExpandMonster(ctx, monsterID, style)
		if err != nil {
			return SceneContext{}, err
		}
		sc.Monsters = append(sc.Monsters, content)
	}
	return sc, nil
}

// IsExpanded reports whether a completed expansion exists for the entity in
// any style. In-flight requests do not count.
func (c *Cache) IsExpanded(entityID string, entityType EntityType) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if key.EntityID != entityID || key.EntityType != entityType {
			continue
		}
		select {
		case <-e.done:
			if e.err == nil {
				return true
			}
		default:
		}
	}
	return false
}

// Cached returns the completed expansion text for the entity in the cache's
// configured style, if present. Never blocks.
func (c *Cache) Cached(entityID string, entityType EntityType) (string, bool) {
	c.mu.Lock()
	e, ok := c.entries[Key{EntityID: entityID, EntityType: entityType, Style: c.style}]
	c.mu.Unlock()
	if !ok {
		return "", false
	}
	select {
	case <-e.done:
		if e.err != nil {
			return "", false
		}
		return e.content.Text, true
	default:
		return "", false
	}
}

// PreloadAdjacentScenes schedules best-effort expansion of every scene one
// unblocked exit hop away. It returns immediately; failures are logged and
// swallowed. Flush waits for the scheduled work.
func (c *Cache) PreloadAdjacentScenes(sceneID string) {
	if c.noPreload {
		return
	}
	for _, adjacent := range c.graph.AdjacentScenes(sceneID) {
		adjacent := adjacent
		c.background.Add(1)
		go func() {
			defer c.background.Done()
			if _, err := c.ExpandScene(context.Background(), adjacent, c.style); err != nil {
				c.logger.Debug("scene preload failed",
					zap.String("scene", adjacent),
					zap.Error(err))
			}
		}()
	}
}

// ExpandInventoryItems schedules best-effort expansion of the given carried
// items. It returns immediately; failures are logged and swallowed.
func (c *Cache) ExpandInventoryItems(itemIDs []string) {
	for _, itemID := range itemIDs {
		itemID := itemID
		c.background.Add(1)
		go func() {
			defer c.background.Done()
			if _, err := c.ExpandItem(context.Background(), itemID, c.style); err != nil {
				c.logger.Debug("inventory item preload failed",
					zap.String("item", itemID),
					zap.Error(err))
			}
		}()
	}
}

// Flush blocks until all background expansion tasks scheduled so far have
// finished. Intended for shutdown and for deterministic tests.
func (c *Cache) Flush() {
	c.background.Wait()
}

// expand returns the cached or in-flight result for key, or performs the
// generation itself when it is the first request for the key.
func (c *Cache) expand(ctx context.Context, key Key, prompt string) (ExpandedContent, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		select {
		case <-e.done:
			return e.content, e.err
		case <-ctx.Done():
			return ExpandedContent{}, ctx.Err()
		}
	}
	e := &entry{done: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()

	text, err := c.generate(ctx, key, prompt)
	if err != nil {
		// Remove before closing done so no reader ever sees a poisoned
		// entry; the failure still propagates to the coalesced waiters.
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		e.err = fmt.Errorf("expanding %s %q: %w: %v", key.EntityType, key.EntityID, ErrGenerationFailed, err)
		close(e.done)
		return ExpandedContent{}, e.err
	}

	e.content = ExpandedContent{
		EntityID:   key.EntityID,
		EntityType: key.EntityType,
		Style:      key.Style,
		Text:       text,
		ExpandedAt: time.Now(),
	}
	close(e.done)
	return e.content, nil
}

func (c *Cache) generate(ctx context.Context, key Key, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	text, err := c.generator.Generate(ctx, PromptRequest{
		EntityID:   key.EntityID,
		EntityType: key.EntityType,
		Style:      key.Style,
		Prompt:     prompt,
	})
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("generator returned empty text")
	}
	return text, nil
}
