package world

import (
	"fmt"
	"sync"
)

// Graph provides read-only access to the loaded world topology.
// It indexes scenes, items, and monsters across all regions for O(1) lookup.
// The Graph is never mutated after construction; the mutex guards only the
// lazily cached maximum-score computation.
type Graph struct {
	regions    map[string]*Region
	scenes     map[string]*Scene
	items      map[string]*Item
	monsters   map[string]*Monster
	itemOrder  []string
	startScene string

	mu       sync.Mutex
	maxScore int
	scored   bool
}

// NewGraph creates a Graph from the given regions.
//
// Precondition: regions must contain at least one region; the first region's
// start scene is the global start scene.
// Postcondition: Returns a Graph with all entities indexed by ID, or an error
// on duplicate IDs.
func NewGraph(regions []*Region) (*Graph, error) {
	g := &Graph{
		regions:  make(map[string]*Region, len(regions)),
		scenes:   make(map[string]*Scene),
		items:    make(map[string]*Item),
		monsters: make(map[string]*Monster),
	}

	for _, r := range regions {
		if _, exists := g.regions[r.ID]; exists {
			return nil, fmt.Errorf("duplicate region ID: %q", r.ID)
		}
		g.regions[r.ID] = r
		for id, scene := range r.Scenes {
			if existing, exists := g.scenes[id]; exists {
				return nil, fmt.Errorf("duplicate scene ID %q: in region %q and %q", id, existing.RegionID, r.ID)
			}
			g.scenes[id] = scene
		}
		for id, item := range r.Items {
			if _, exists := g.items[id]; exists {
				return nil, fmt.Errorf("duplicate item ID: %q", id)
			}
			g.items[id] = item
		}
		g.itemOrder = append(g.itemOrder, r.itemOrder...)
		for id, monster := range r.Monsters {
			if _, exists := g.monsters[id]; exists {
				return nil, fmt.Errorf("duplicate monster ID: %q", id)
			}
			g.monsters[id] = monster
		}
	}

	if len(regions) > 0 {
		g.startScene = regions[0].StartScene
	}

	return g, nil
}

// ValidateExits checks that every exit target in every scene resolves to a
// known scene across all loaded regions. Call this after NewGraph to catch
// dangling cross-region exit references.
//
// Postcondition: Returns nil if all exits resolve, or an error naming the
// first dangling target.
func (g *Graph) ValidateExits() error {
	for _, region := range g.regions {
		for _, scene := range region.Scenes {
			for _, exit := range scene.Exits {
				if _, ok := g.scenes[exit.TargetScene]; !ok {
					return fmt.Errorf("region %q: scene %q: exit %q targets unknown scene %q",
						region.ID, scene.ID, exit.Direction, exit.TargetScene)
				}
			}
		}
	}
	return nil
}

// Scene returns the scene with the given ID.
//
// Postcondition: Returns (scene, true) if found, or (nil, false) otherwise.
func (g *Graph) Scene(id string) (*Scene, bool) {
	s, ok := g.scenes[id]
	return s, ok
}

// Item returns the item with the given ID.
func (g *Graph) Item(id string) (*Item, bool) {
	i, ok := g.items[id]
	return i, ok
}

// Monster returns the monster with the given ID.
func (g *Graph) Monster(id string) (*Monster, bool) {
	m, ok := g.monsters[id]
	return m, ok
}

// ItemOrder returns all item IDs in authored order. The returned slice is
// shared; callers must not modify it.
func (g *Graph) ItemOrder() []string {
	return g.itemOrder
}

// AdjacentScenes returns the IDs of all scenes reachable via one unblocked
// exit hop from the given scene.
//
// Postcondition: Returns a deduplicated slice in exit order; empty if the
// scene is unknown.
func (g *Graph) AdjacentScenes(sceneID string) []string {
	scene, ok := g.scenes[sceneID]
	if !ok {
		return nil
	}
	seen := make(map[string]bool, len(scene.Exits))
	var adjacent []string
	for _, exit := range scene.Exits {
		if exit.Blocked || seen[exit.TargetScene] {
			continue
		}
		if _, ok := g.scenes[exit.TargetScene]; !ok {
			continue
		}
		seen[exit.TargetScene] = true
		adjacent = append(adjacent, exit.TargetScene)
	}
	return adjacent
}

// TrophyScene returns the trophy scene ID for the region containing sceneID,
// or "" if the region has none.
func (g *Graph) TrophyScene(sceneID string) string {
	scene, ok := g.scenes[sceneID]
	if !ok {
		return ""
	}
	region, ok := g.regions[scene.RegionID]
	if !ok {
		return ""
	}
	return region.TrophyScene
}

// StartScene returns the global start scene.
//
// Postcondition: Returns the start scene or nil if the world is empty.
func (g *Graph) StartScene() *Scene {
	if g.startScene == "" {
		return nil
	}
	return g.scenes[g.startScene]
}

// MaxScore returns the precomputed sum over all awardable scoring events:
// every scene's first-visit bonus plus every item's take and deposit bonuses.
// The value is independent of current session score.
func (g *Graph) MaxScore() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.scored {
		return g.maxScore
	}
	total := 0
	for _, scene := range g.scenes {
		total += scene.FirstVisitPoints
	}
	for _, item := range g.items {
		total += item.TakePoints + item.DepositPoints
	}
	g.maxScore = total
	g.scored = true
	return total
}

// SceneCount returns the total number of scenes across all regions.
func (g *Graph) SceneCount() int {
	return len(g.scenes)
}

// ItemCount returns the total number of items across all regions.
func (g *Graph) ItemCount() int {
	return len(g.items)
}

// MonsterCount returns the total number of monsters across all regions.
func (g *Graph) MonsterCount() int {
	return len(g.monsters)
}

// RegionCount returns the number of loaded regions.
func (g *Graph) RegionCount() int {
	return len(g.regions)
}
