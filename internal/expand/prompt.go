package expand

import (
	"fmt"
	"strings"

	"github.com/lantern-engine/lantern/internal/world"
)

const promptPreamble = "You are the narrator of a text adventure. " +
	"Rewrite the following description in a %s narrative style. " +
	"Stay faithful to every stated fact, add sensory detail, and keep it " +
	"under 80 words. Reply with the description only."

func scenePrompt(scene *world.Scene, style string) string {
	var b strings.Builder
	fmt.Fprintf(&b, promptPreamble, style)
	fmt.Fprintf(&b, "\n\nLocation: %s\n%s\n", scene.Title, scene.Description)
	if len(scene.Atmosphere) > 0 {
		fmt.Fprintf(&b, "Atmosphere: %s\n", strings.Join(scene.Atmosphere, " "))
	}
	if open := scene.OpenExits(); len(open) > 0 {
		directions := make([]string, len(open))
		for i, exit := range open {
			directions[i] = string(exit.Direction)
		}
		fmt.Fprintf(&b, "Ways out: %s\n", strings.Join(directions, ", "))
	}
	return b.String()
}

func itemPrompt(item *world.Item, style string) string {
	var b strings.Builder
	fmt.Fprintf(&b, promptPreamble, style)
	fmt.Fprintf(&b, "\n\nObject: %s (%s)\n%s\n", item.Name, item.Type, item.ExamineText)
	return b.String()
}

func monsterPrompt(monster *world.Monster, style string) string {
	var b strings.Builder
	fmt.Fprintf(&b, promptPreamble, style)
	fmt.Fprintf(&b, "\n\nCreature: %s\n%s\n", monster.Name, monster.Description)
	return b.String()
}
