package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestDirection_IsStandard(t *testing.T) {
	for _, d := range StandardDirections {
		assert.True(t, d.IsStandard(), "expected %q to be standard", d)
	}
	assert.False(t, Direction("launch").IsStandard())
	assert.False(t, Direction("portal").IsStandard())
}

func TestScene_ExitForDirection(t *testing.T) {
	scene := &Scene{
		ID: "test",
		Exits: []Exit{
			{Direction: North, TargetScene: "north_scene"},
			{Direction: "launch", TargetScene: "water"},
		},
	}

	exit, ok := scene.ExitForDirection(North)
	assert.True(t, ok)
	assert.Equal(t, "north_scene", exit.TargetScene)

	exit, ok = scene.ExitForDirection("launch")
	assert.True(t, ok)
	assert.Equal(t, "water", exit.TargetScene)

	_, ok = scene.ExitForDirection(West)
	assert.False(t, ok)
}

func TestScene_OpenExits(t *testing.T) {
	scene := &Scene{
		ID: "test",
		Exits: []Exit{
			{Direction: North, TargetScene: "a"},
			{Direction: South, TargetScene: "b", Blocked: true},
			{Direction: East, TargetScene: "c"},
		},
	}

	open := scene.OpenExits()
	assert.Len(t, open, 2)
	for _, e := range open {
		assert.False(t, e.Blocked)
	}
}

func TestItem_Matches(t *testing.T) {
	item := &Item{
		ID:      "lantern",
		Name:    "brass lantern",
		Aliases: []string{"lamp", "light"},
	}

	assert.True(t, item.Matches("lantern"))
	assert.True(t, item.Matches("brass lantern"))
	assert.True(t, item.Matches("LAMP"))
	assert.True(t, item.Matches("brass"))
	assert.True(t, item.Matches(" light "))
	assert.False(t, item.Matches("sword"))
	assert.False(t, item.Matches(""))
}

func TestMonster_Matches(t *testing.T) {
	monster := &Monster{ID: "troll", Name: "nasty troll"}

	assert.True(t, monster.Matches("troll"))
	assert.True(t, monster.Matches("nasty troll"))
	assert.True(t, monster.Matches("Nasty"))
	assert.False(t, monster.Matches("ogre"))
}

func TestRegion_Validate_DuplicateExitDirection(t *testing.T) {
	region := &Region{
		ID:         "r",
		Name:       "R",
		StartScene: "a",
		Scenes: map[string]*Scene{
			"a": {
				ID: "a", Title: "A", Description: "Scene A.",
				Exits: []Exit{
					{Direction: North, TargetScene: "a"},
					{Direction: North, TargetScene: "a"},
				},
			},
		},
	}
	err := region.Validate()
	assert.ErrorContains(t, err, "duplicate exit direction")
}

func TestRegion_Validate_BadMonsterState(t *testing.T) {
	region := &Region{
		ID:         "r",
		Name:       "R",
		StartScene: "a",
		Scenes: map[string]*Scene{
			"a": {ID: "a", Title: "A", Description: "Scene A."},
		},
		Monsters: map[string]*Monster{
			"m": {ID: "m", Name: "M", Scene: "a", State: "sleepy"},
		},
	}
	err := region.Validate()
	assert.ErrorContains(t, err, "unknown state")
}

func TestPropertyMatchesIsCaseInsensitive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.StringMatching(`[a-z]{2,12}`).Draw(t, "name")
		item := &Item{ID: name, Name: name}
		upper := ""
		for _, c := range name {
			upper += string(c - 32)
		}
		if !item.Matches(upper) {
			t.Fatalf("item %q did not match uppercased noun %q", name, upper)
		}
	})
}
