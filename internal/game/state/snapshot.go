package state

import (
	"encoding/json"
	"fmt"

	"github.com/lantern-engine/lantern/internal/world"
)

// snapshotVersion guards against loading snapshots from incompatible builds.
const snapshotVersion = 1

// snapshotData is the JSON-serializable snapshot format. It is opaque to
// callers: the only supported operations are Snapshot and Restore.
type snapshotData struct {
	Version      int                        `json:"version"`
	CurrentScene string                     `json:"current_scene"`
	Inventory    []string                   `json:"inventory"`
	Locations    map[string]string          `json:"locations"`
	ItemFlags    map[string]map[string]bool `json:"item_flags,omitempty"`
	Scenes       map[string]*SceneRuntime   `json:"scenes,omitempty"`
	Monsters     map[string]string          `json:"monsters,omitempty"`
	Awarded      map[string]bool            `json:"awarded,omitempty"`
	Moves        int                        `json:"moves"`
	Score        int                        `json:"score"`
}

// Snapshot serializes the session state to an opaque byte slice.
//
// Postcondition: Restore on the result reproduces identical command behavior.
func (s *State) Snapshot() ([]byte, error) {
	data := snapshotData{
		Version:      snapshotVersion,
		CurrentScene: s.currentScene,
		Inventory:    s.inventory,
		Locations:    s.locations,
		ItemFlags:    s.itemFlags,
		Scenes:       s.scenes,
		Monsters:     make(map[string]string, len(s.monsters)),
		Awarded:      s.awarded,
		Moves:        s.moves,
		Score:        s.score,
	}
	if data.Inventory == nil {
		data.Inventory = []string{}
	}
	for id, st := range s.monsters {
		data.Monsters[id] = string(st)
	}
	out, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshalling snapshot: %w", err)
	}
	return out, nil
}

// Restore rebuilds a session state from a snapshot produced by Snapshot.
//
// Precondition: graph must be the same world the snapshot was taken against.
// Postcondition: Returns a State whose subsequent command behavior matches
// the snapshotted session, or an error on malformed or mismatched data.
func Restore(graph *world.Graph, snapshot []byte) (*State, error) {
	var data snapshotData
	if err := json.Unmarshal(snapshot, &data); err != nil {
		return nil, fmt.Errorf("unmarshalling snapshot: %w", err)
	}
	if data.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", data.Version)
	}
	if _, ok := graph.Scene(data.CurrentScene); !ok {
		return nil, fmt.Errorf("snapshot scene %q not found in world", data.CurrentScene)
	}

	s := &State{
		graph:        graph,
		currentScene: data.CurrentScene,
		inventory:    data.Inventory,
		locations:    data.Locations,
		itemFlags:    data.ItemFlags,
		scenes:       data.Scenes,
		monsters:     make(map[string]world.MonsterState, len(data.Monsters)),
		awarded:      data.Awarded,
		moves:        data.Moves,
		score:        data.Score,
		maxScore:     graph.MaxScore(),
	}
	if s.locations == nil {
		s.locations = make(map[string]string)
	}
	if s.itemFlags == nil {
		s.itemFlags = make(map[string]map[string]bool)
	}
	if s.scenes == nil {
		s.scenes = make(map[string]*SceneRuntime)
	}
	if s.awarded == nil {
		s.awarded = make(map[string]bool)
	}
	for id, st := range data.Monsters {
		s.monsters[id] = world.MonsterState(st)
	}

	// Every item the graph knows must have exactly one owner.
	for _, itemID := range graph.ItemOrder() {
		loc, ok := s.locations[itemID]
		if !ok {
			return nil, fmt.Errorf("snapshot missing location for item %q", itemID)
		}
		if loc != LocationInventory && loc != LocationNowhere {
			if _, ok := graph.Scene(loc); !ok {
				return nil, fmt.Errorf("snapshot item %q has unknown location %q", itemID, loc)
			}
		}
	}
	carried := make(map[string]bool, len(s.inventory))
	for _, itemID := range s.inventory {
		if s.locations[itemID] != LocationInventory {
			return nil, fmt.Errorf("snapshot inventory lists %q but its location is %q", itemID, s.locations[itemID])
		}
		carried[itemID] = true
	}
	for itemID, loc := range s.locations {
		if loc == LocationInventory && !carried[itemID] {
			return nil, fmt.Errorf("snapshot item %q is located in inventory but missing from the inventory list", itemID)
		}
	}
	if s.score < 0 || s.score > s.maxScore {
		return nil, fmt.Errorf("snapshot score %d outside [0, %d]", s.score, s.maxScore)
	}

	return s, nil
}
