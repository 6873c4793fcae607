// Package state owns the mutable session state: current scene, inventory,
// item locations, move counter, score, and per-scene runtime overlays.
// All mutation goes through named transition methods so the invariants
// (single item ownership, monotone bounded score) are enforced in one place.
package state

import (
	"errors"
	"fmt"

	"github.com/lantern-engine/lantern/internal/world"
)

// Reserved item location names. Any other location value is a scene ID.
const (
	LocationInventory = "inventory"
	LocationNowhere   = "nowhere"
)

// ErrScoreDecrease is returned when a transition would lower the score.
var ErrScoreDecrease = errors.New("score must not decrease")

// SceneRuntime holds the mutable per-scene overlay on top of the authored scene.
type SceneRuntime struct {
	// Visited is set the first time the player enters the scene.
	Visited bool
	// ItemsMoved is set once any item has been taken from or dropped in the scene.
	ItemsMoved bool
	// Flags holds custom scene flags set by handlers or scripts.
	Flags map[string]string
}

// State is the aggregate root for a single play session. It is mutated only
// by the synchronous command path and is not safe for concurrent use.
type State struct {
	graph        *world.Graph
	currentScene string
	inventory    []string
	locations    map[string]string
	itemFlags    map[string]map[string]bool
	scenes       map[string]*SceneRuntime
	monsters     map[string]world.MonsterState
	awarded      map[string]bool
	moves        int
	score        int
	maxScore     int
}

// New creates a fresh session state seeded from the world graph: the player
// starts in the graph's start scene with an empty inventory, every item in
// its authored scene, and item flags set to their authored initial state.
//
// Precondition: graph must be non-nil with a valid start scene.
// Postcondition: Returns a State satisfying all ownership invariants.
func New(graph *world.Graph) (*State, error) {
	start := graph.StartScene()
	if start == nil {
		return nil, errors.New("world has no start scene")
	}
	return NewAt(graph, start.ID)
}

// NewAt creates a fresh session state starting in the given scene.
//
// Precondition: sceneID must name a scene in the graph.
func NewAt(graph *world.Graph, sceneID string) (*State, error) {
	if _, ok := graph.Scene(sceneID); !ok {
		return nil, fmt.Errorf("start scene %q not found", sceneID)
	}

	s := &State{
		graph:        graph,
		currentScene: sceneID,
		locations:    make(map[string]string),
		itemFlags:    make(map[string]map[string]bool),
		scenes:       make(map[string]*SceneRuntime),
		monsters:     make(map[string]world.MonsterState),
		awarded:      make(map[string]bool),
		maxScore:     graph.MaxScore(),
	}

	for _, itemID := range graph.ItemOrder() {
		item, _ := graph.Item(itemID)
		if item.StartScene != "" {
			s.locations[itemID] = item.StartScene
		} else {
			s.locations[itemID] = LocationNowhere
		}
		if len(item.InitialState) > 0 {
			flags := make(map[string]bool, len(item.InitialState))
			for k, v := range item.InitialState {
				flags[k] = v
			}
			s.itemFlags[itemID] = flags
		}
	}

	return s, nil
}

// CurrentScene returns the ID of the scene the player occupies.
func (s *State) CurrentScene() string {
	return s.currentScene
}

// SetCurrentScene moves the player to the given scene.
//
// Precondition: sceneID must name a scene in the graph.
// Postcondition: CurrentScene() == sceneID, or an error and no change.
func (s *State) SetCurrentScene(sceneID string) error {
	if _, ok := s.graph.Scene(sceneID); !ok {
		return fmt.Errorf("scene %q not found", sceneID)
	}
	s.currentScene = sceneID
	return nil
}

// Inventory returns a copy of the item IDs the player carries, in acquisition order.
func (s *State) Inventory() []string {
	out := make([]string, len(s.inventory))
	copy(out, s.inventory)
	return out
}

// InInventory reports whether the player carries the given item.
func (s *State) InInventory(itemID string) bool {
	return s.locations[itemID] == LocationInventory
}

// Location returns the owner of the given item: a scene ID, LocationInventory,
// or LocationNowhere. Unknown items return ("", false).
func (s *State) Location(itemID string) (string, bool) {
	loc, ok := s.locations[itemID]
	return loc, ok
}

// SceneItems returns the IDs of all items currently located in the given
// scene, in authored item order.
func (s *State) SceneItems(sceneID string) []string {
	var items []string
	for _, itemID := range s.graph.ItemOrder() {
		if s.locations[itemID] == sceneID {
			items = append(items, itemID)
		}
	}
	return items
}

// MoveItem transfers an item between owners as one atomic transition: the
// item is removed from `from` and added to `to`, and no intermediate state is
// ever observable.
//
// Precondition: itemID must be known; from must be the item's current owner;
// to must be LocationInventory, LocationNowhere, or a known scene ID.
// Postcondition: Location(itemID) == to, or an error and no change.
func (s *State) MoveItem(itemID, from, to string) error {
	current, ok := s.locations[itemID]
	if !ok {
		return fmt.Errorf("item %q not found", itemID)
	}
	if current != from {
		return fmt.Errorf("item %q is at %q, not %q", itemID, current, from)
	}
	if to != LocationInventory && to != LocationNowhere {
		if _, ok := s.graph.Scene(to); !ok {
			return fmt.Errorf("destination %q not found", to)
		}
	}

	if from == LocationInventory {
		for i, id := range s.inventory {
			if id == itemID {
				s.inventory = append(s.inventory[:i], s.inventory[i+1:]...)
				break
			}
		}
	}
	if to == LocationInventory {
		s.inventory = append(s.inventory, itemID)
	}
	s.locations[itemID] = to
	return nil
}

// ItemFlag returns the named runtime flag for an item. Unset flags are false.
func (s *State) ItemFlag(itemID, key string) bool {
	return s.itemFlags[itemID][key]
}

// ItemFlags returns a copy of all runtime flags currently set on an item.
func (s *State) ItemFlags(itemID string) map[string]bool {
	flags := make(map[string]bool, len(s.itemFlags[itemID]))
	for key, value := range s.itemFlags[itemID] {
		flags[key] = value
	}
	return flags
}

// SetItemFlag sets a runtime flag on an item (e.g. lit, open).
//
// Precondition: itemID must be known to the graph.
func (s *State) SetItemFlag(itemID, key string, value bool) error {
	if _, ok := s.graph.Item(itemID); !ok {
		return fmt.Errorf("item %q not found", itemID)
	}
	flags := s.itemFlags[itemID]
	if flags == nil {
		flags = make(map[string]bool)
		s.itemFlags[itemID] = flags
	}
	flags[key] = value
	return nil
}

// sceneRuntime returns the overlay for a scene, creating it on first use.
func (s *State) sceneRuntime(sceneID string) *SceneRuntime {
	rt := s.scenes[sceneID]
	if rt == nil {
		rt = &SceneRuntime{Flags: make(map[string]string)}
		s.scenes[sceneID] = rt
	}
	return rt
}

// Visited reports whether the scene has been entered before.
func (s *State) Visited(sceneID string) bool {
	rt := s.scenes[sceneID]
	return rt != nil && rt.Visited
}

// MarkVisited records that the scene has been entered.
//
// Postcondition: Returns true exactly once per scene, on the unvisited →
// visited transition; later calls return false.
func (s *State) MarkVisited(sceneID string) bool {
	rt := s.sceneRuntime(sceneID)
	if rt.Visited {
		return false
	}
	rt.Visited = true
	return true
}

// ItemsMoved reports whether any item has been moved in the scene.
func (s *State) ItemsMoved(sceneID string) bool {
	rt := s.scenes[sceneID]
	return rt != nil && rt.ItemsMoved
}

// MarkItemsMoved records that an item was taken from or dropped in the scene.
func (s *State) MarkItemsMoved(sceneID string) {
	s.sceneRuntime(sceneID).ItemsMoved = true
}

// SceneFlag returns the custom flag value for a scene, or "" if unset.
func (s *State) SceneFlag(sceneID, key string) string {
	rt := s.scenes[sceneID]
	if rt == nil {
		return ""
	}
	return rt.Flags[key]
}

// SetSceneFlag sets a custom flag on a scene's runtime overlay.
func (s *State) SetSceneFlag(sceneID, key, value string) {
	s.sceneRuntime(sceneID).Flags[key] = value
}

// MonsterState returns the monster's current disposition, falling back to
// the authored state when no override has been recorded.
func (s *State) MonsterState(monsterID string) world.MonsterState {
	if st, ok := s.monsters[monsterID]; ok {
		return st
	}
	if m, ok := s.graph.Monster(monsterID); ok {
		return m.State
	}
	return ""
}

// SetMonsterState overrides a monster's disposition for this session.
//
// Precondition: monsterID must be known to the graph.
func (s *State) SetMonsterState(monsterID string, st world.MonsterState) error {
	if _, ok := s.graph.Monster(monsterID); !ok {
		return fmt.Errorf("monster %q not found", monsterID)
	}
	s.monsters[monsterID] = st
	return nil
}

// Moves returns the session move counter.
func (s *State) Moves() int {
	return s.moves
}

// IncrementMoves advances the move counter by one.
func (s *State) IncrementMoves() {
	s.moves++
}

// Score returns the current session score.
func (s *State) Score() int {
	return s.score
}

// MaxScore returns the precomputed ceiling over all awardable events.
func (s *State) MaxScore() int {
	return s.maxScore
}

// ApplyScore adds a non-negative delta to the score, capped at MaxScore.
//
// Postcondition: Score() is non-decreasing and Score() <= MaxScore().
// Returns the delta actually applied.
func (s *State) ApplyScore(delta int) (int, error) {
	if delta < 0 {
		return 0, ErrScoreDecrease
	}
	if s.score+delta > s.maxScore {
		delta = s.maxScore - s.score
	}
	s.score += delta
	return delta, nil
}

// Awarded reports whether the named scoring event has already been awarded.
func (s *State) Awarded(key string) bool {
	return s.awarded[key]
}

// MarkAwarded records a scoring event as awarded.
//
// Postcondition: Returns true exactly once per key; later calls return false.
func (s *State) MarkAwarded(key string) bool {
	if s.awarded[key] {
		return false
	}
	s.awarded[key] = true
	return true
}

// CarryingLitLight reports whether the player carries a lit light source.
func (s *State) CarryingLitLight() bool {
	for _, itemID := range s.inventory {
		item, ok := s.graph.Item(itemID)
		if !ok || item.Type != world.TypeLight {
			continue
		}
		if s.ItemFlag(itemID, "lit") {
			return true
		}
	}
	return false
}

// Graph returns the world graph this state was created against.
func (s *State) Graph() *world.Graph {
	return s.graph
}
