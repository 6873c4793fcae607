// Package world provides the authored game world model: scenes, exits,
// items, and monsters. The loaded world is immutable; all runtime state
// lives in the state package.
package world

import (
	"fmt"
	"strings"
)

// Direction represents a compass direction or named exit.
type Direction string

// Standard compass directions and vertical movements.
const (
	North     Direction = "north"
	South     Direction = "south"
	East      Direction = "east"
	West      Direction = "west"
	Northeast Direction = "northeast"
	Northwest Direction = "northwest"
	Southeast Direction = "southeast"
	Southwest Direction = "southwest"
	Up        Direction = "up"
	Down      Direction = "down"
)

// StandardDirections contains all standard compass and vertical directions.
var StandardDirections = []Direction{
	North, South, East, West,
	Northeast, Northwest, Southeast, Southwest,
	Up, Down,
}

// IsStandard reports whether d is one of the ten standard directions.
// Worlds may also declare named exits ("launch", "stairs") which are not standard.
func (d Direction) IsStandard() bool {
	for _, sd := range StandardDirections {
		if d == sd {
			return true
		}
	}
	return false
}

// Lighting classifies a scene's ambient light.
type Lighting string

// Lighting values.
const (
	LightingDaylight Lighting = "daylight"
	LightingLit      Lighting = "lit"
	LightingDark     Lighting = "dark"
)

// Exit represents a passage from one scene to another.
type Exit struct {
	// Direction is the compass direction or named exit (e.g., "launch").
	Direction Direction
	// TargetScene is the ID of the destination scene.
	TargetScene string
	// Blocked indicates the exit cannot currently be traversed.
	Blocked bool
	// BlockedMessage is shown when a blocked exit is attempted. Empty = generic message.
	BlockedMessage string
}

// Scene represents a location in the game world.
type Scene struct {
	// ID uniquely identifies this scene within the region.
	ID string
	// RegionID identifies the region this scene belongs to.
	RegionID string
	// Title is the short display name of the scene.
	Title string
	// Description is the base scene description shown to players.
	Description string
	// Atmosphere is an ordered sequence of flavor lines appended to descriptions.
	Atmosphere []string
	// Lighting is the scene's ambient light classification.
	Lighting Lighting
	// Exits lists all passages leading out of this scene.
	Exits []Exit
	// Items lists IDs of items initially present in this scene.
	Items []string
	// Monsters lists IDs of monsters associated with this scene.
	Monsters []string
	// FirstVisitPoints is the score bonus for entering this scene the first
	// time. Zero means the scene awards nothing.
	FirstVisitPoints int
}

// ExitForDirection returns the exit in the given direction, if one exists.
//
// Postcondition: Returns (exit, true) if found, or (Exit{}, false) otherwise.
func (s *Scene) ExitForDirection(dir Direction) (Exit, bool) {
	for _, e := range s.Exits {
		if e.Direction == dir {
			return e, true
		}
	}
	return Exit{}, false
}

// OpenExits returns all unblocked exits from this scene.
//
// Postcondition: Returns a slice of exits where Blocked is false.
func (s *Scene) OpenExits() []Exit {
	var open []Exit
	for _, e := range s.Exits {
		if !e.Blocked {
			open = append(open, e)
		}
	}
	return open
}

// IsDark reports whether the scene needs a light source to be seen.
func (s *Scene) IsDark() bool {
	return s.Lighting == LightingDark
}

// ItemType classifies an item's role.
type ItemType string

// Item type values.
const (
	TypeTool      ItemType = "tool"
	TypeContainer ItemType = "container"
	TypeTreasure  ItemType = "treasure"
	TypeLight     ItemType = "light"
	TypeScenery   ItemType = "scenery"
)

// validItemTypes is the set of recognised item types.
var validItemTypes = map[ItemType]bool{
	TypeTool:      true,
	TypeContainer: true,
	TypeTreasure:  true,
	TypeLight:     true,
	TypeScenery:   true,
}

// Item defines the static properties of an authored item.
type Item struct {
	// ID uniquely identifies this item.
	ID string
	// Name is the display name used in messages and listings.
	Name string
	// Aliases are alternate nouns the player may use to address this item.
	Aliases []string
	// Description is the one-line text used in scene listings.
	Description string
	// ExamineText is the detailed text returned by examine.
	ExamineText string
	// Portable indicates the item can be taken.
	Portable bool
	// Visible indicates the item appears in listings and can be targeted.
	Visible bool
	// Weight is the item's carry weight.
	Weight int
	// Size is the item's bulk.
	Size int
	// Type classifies the item.
	Type ItemType
	// StartScene is the scene the item initially occupies.
	StartScene string
	// InitialState seeds the item's runtime flags (e.g. lit, open).
	InitialState map[string]bool
	// TakePoints is the score bonus for first acquiring this item.
	TakePoints int
	// DepositPoints is the score bonus for first depositing this item in the
	// region's trophy scene. Zero for non-treasures.
	DepositPoints int
}

// Matches reports whether the given noun addresses this item. The match is
// case-insensitive against the item's ID, full name, any registered alias,
// or any single word of the name ("lantern" matches "brass lantern").
func (i *Item) Matches(noun string) bool {
	noun = strings.ToLower(strings.TrimSpace(noun))
	if noun == "" {
		return false
	}
	if noun == strings.ToLower(i.ID) || noun == strings.ToLower(i.Name) {
		return true
	}
	for _, alias := range i.Aliases {
		if noun == strings.ToLower(alias) {
			return true
		}
	}
	for _, word := range strings.Fields(strings.ToLower(i.Name)) {
		if noun == word {
			return true
		}
	}
	return false
}

// MonsterState classifies a monster's disposition.
type MonsterState string

// Monster states.
const (
	MonsterDormant  MonsterState = "dormant"
	MonsterHostile  MonsterState = "hostile"
	MonsterDefeated MonsterState = "defeated"
)

// Monster defines an authored monster. Monsters participate in scene
// description assembly only; there is no combat simulation.
type Monster struct {
	// ID uniquely identifies this monster.
	ID string
	// Name is the display name.
	Name string
	// Description is the text shown when the monster is present or examined.
	Description string
	// Scene is the scene the monster is associated with.
	Scene string
	// State is the monster's initial disposition.
	State MonsterState
}

// Matches reports whether the given noun addresses this monster, matching
// case-insensitively against the monster's ID, name, or any word of the name.
func (m *Monster) Matches(noun string) bool {
	noun = strings.ToLower(strings.TrimSpace(noun))
	if noun == "" {
		return false
	}
	if noun == strings.ToLower(m.ID) || noun == strings.ToLower(m.Name) {
		return true
	}
	for _, word := range strings.Fields(strings.ToLower(m.Name)) {
		if noun == word {
			return true
		}
	}
	return false
}

// Region groups scenes, items, and monsters into an authored world area.
type Region struct {
	// ID uniquely identifies this region.
	ID string
	// Name is the display name of the region.
	Name string
	// StartScene is the ID of the default entry scene.
	StartScene string
	// TrophyScene is the scene where treasure deposits score. Empty = no deposits.
	TrophyScene string
	// Scenes contains all scenes in this region, keyed by scene ID.
	Scenes map[string]*Scene
	// Items contains all items defined by this region, keyed by item ID.
	Items map[string]*Item
	// Monsters contains all monsters defined by this region, keyed by monster ID.
	Monsters map[string]*Monster
	// sceneOrder preserves authored scene ordering for deterministic listings.
	sceneOrder []string
	// itemOrder preserves authored item ordering for deterministic listings.
	itemOrder []string
}

// Validate checks region invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (r *Region) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("region ID must not be empty")
	}
	if r.Name == "" {
		return fmt.Errorf("region %q: name must not be empty", r.ID)
	}
	if r.StartScene == "" {
		return fmt.Errorf("region %q: start_scene must not be empty", r.ID)
	}
	if len(r.Scenes) == 0 {
		return fmt.Errorf("region %q: must contain at least one scene", r.ID)
	}
	if _, ok := r.Scenes[r.StartScene]; !ok {
		return fmt.Errorf("region %q: start_scene %q not found in scenes", r.ID, r.StartScene)
	}
	if r.TrophyScene != "" {
		if _, ok := r.Scenes[r.TrophyScene]; !ok {
			return fmt.Errorf("region %q: trophy_scene %q not found in scenes", r.ID, r.TrophyScene)
		}
	}
	for id, scene := range r.Scenes {
		if scene.ID != id {
			return fmt.Errorf("region %q: scene key %q does not match scene ID %q", r.ID, id, scene.ID)
		}
		if scene.Title == "" {
			return fmt.Errorf("region %q: scene %q: title must not be empty", r.ID, id)
		}
		if scene.Description == "" {
			return fmt.Errorf("region %q: scene %q: description must not be empty", r.ID, id)
		}
		if scene.FirstVisitPoints < 0 {
			return fmt.Errorf("region %q: scene %q: first_visit_points must be >= 0", r.ID, id)
		}
		seen := make(map[Direction]bool, len(scene.Exits))
		for _, exit := range scene.Exits {
			if exit.TargetScene == "" {
				return fmt.Errorf("region %q: scene %q: exit %q has empty target", r.ID, id, exit.Direction)
			}
			if seen[exit.Direction] {
				return fmt.Errorf("region %q: scene %q: duplicate exit direction %q", r.ID, id, exit.Direction)
			}
			seen[exit.Direction] = true
		}
		for _, itemID := range scene.Items {
			if _, ok := r.Items[itemID]; !ok {
				return fmt.Errorf("region %q: scene %q: references unknown item %q", r.ID, id, itemID)
			}
		}
		for _, monsterID := range scene.Monsters {
			if _, ok := r.Monsters[monsterID]; !ok {
				return fmt.Errorf("region %q: scene %q: references unknown monster %q", r.ID, id, monsterID)
			}
		}
	}
	for id, item := range r.Items {
		if item.ID != id {
			return fmt.Errorf("region %q: item key %q does not match item ID %q", r.ID, id, item.ID)
		}
		if item.Name == "" {
			return fmt.Errorf("region %q: item %q: name must not be empty", r.ID, id)
		}
		if !validItemTypes[item.Type] {
			return fmt.Errorf("region %q: item %q: unknown type %q", r.ID, id, item.Type)
		}
		if item.TakePoints < 0 || item.DepositPoints < 0 {
			return fmt.Errorf("region %q: item %q: score values must be >= 0", r.ID, id)
		}
		if item.StartScene != "" {
			if _, ok := r.Scenes[item.StartScene]; !ok {
				return fmt.Errorf("region %q: item %q: start scene %q not found", r.ID, id, item.StartScene)
			}
		}
	}
	for id, monster := range r.Monsters {
		if monster.ID != id {
			return fmt.Errorf("region %q: monster key %q does not match monster ID %q", r.ID, id, monster.ID)
		}
		if monster.Name == "" {
			return fmt.Errorf("region %q: monster %q: name must not be empty", r.ID, id)
		}
		switch monster.State {
		case MonsterDormant, MonsterHostile, MonsterDefeated:
		default:
			return fmt.Errorf("region %q: monster %q: unknown state %q", r.ID, id, monster.State)
		}
		if _, ok := r.Scenes[monster.Scene]; !ok {
			return fmt.Errorf("region %q: monster %q: scene %q not found", r.ID, id, monster.Scene)
		}
	}
	return nil
}
