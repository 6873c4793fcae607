package command

import (
	"strings"

	"github.com/lantern-engine/lantern/internal/game/state"
	"github.com/lantern-engine/lantern/internal/world"
)

// TargetKind classifies what a noun phrase resolved to.
type TargetKind int

// Target kinds, in resolution precedence order.
const (
	TargetNone TargetKind = iota
	TargetInventoryItem
	TargetSceneItem
	TargetMonster
	TargetDirection
	TargetScene
)

// Target is a resolved noun phrase.
type Target struct {
	Kind TargetKind
	// ID is the entity ID (item, monster, scene) or the direction name.
	ID string
}

// resolveTarget resolves a noun phrase against the player's surroundings.
// Resolution checks, in order: carried items, visible scene items, monsters
// in the scene, exit directions, then the scene itself.
//
// Precondition: noun is lowercased with articles already stripped.
// Postcondition: Returns TargetNone when nothing visible matches.
func resolveTarget(graph *world.Graph, s *state.State, noun string) Target {
	if noun == "" {
		return Target{Kind: TargetNone}
	}

	scene, ok := graph.Scene(s.CurrentScene())
	if !ok {
		return Target{Kind: TargetNone}
	}
	dark := scene.IsDark() && !s.CarryingLitLight()

	for _, itemID := range s.Inventory() {
		if item, ok := graph.Item(itemID); ok && item.Visible && item.Matches(noun) {
			return Target{Kind: TargetInventoryItem, ID: itemID}
		}
	}

	// A dark scene hides its contents; only carried items and exit
	// directions can still be addressed.
	if !dark {
		for _, itemID := range s.SceneItems(scene.ID) {
			if item, ok := graph.Item(itemID); ok && item.Visible && item.Matches(noun) {
				return Target{Kind: TargetSceneItem, ID: itemID}
			}
		}
		for _, monsterID := range scene.Monsters {
			if monster, ok := graph.Monster(monsterID); ok && monster.Matches(noun) {
				return Target{Kind: TargetMonster, ID: monsterID}
			}
		}
	}

	for _, exit := range scene.Exits {
		if string(exit.Direction) == noun {
			return Target{Kind: TargetDirection, ID: noun}
		}
	}
	if world.Direction(noun).IsStandard() {
		return Target{Kind: TargetDirection, ID: noun}
	}

	if !dark && (noun == scene.ID || noun == "around" || matchesTitle(scene, noun)) {
		return Target{Kind: TargetScene, ID: scene.ID}
	}

	return Target{Kind: TargetNone}
}

func matchesTitle(scene *world.Scene, noun string) bool {
	return strings.EqualFold(scene.Title, noun)
}
