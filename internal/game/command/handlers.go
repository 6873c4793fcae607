package command

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lantern-engine/lantern/internal/expand"
	"github.com/lantern-engine/lantern/internal/game/state"
	"github.com/lantern-engine/lantern/internal/world"
)

const darkMessage = "It is pitch black. You are likely to be eaten by a grue."

// Welcome describes the starting scene and awards its first-visit bonus.
// Call once at session start, before processing any input.
func (i *Interpreter) Welcome() Result {
	sceneID := i.state.CurrentScene()
	var delta int
	if i.state.MarkVisited(sceneID) {
		delta = i.scoring.FirstVisit(i.state, sceneID)
	}
	if i.expander != nil {
		i.expander.PreloadAdjacentScenes(sceneID)
	}
	return Result{
		Success:     true,
		Message:     i.describeScene(sceneID),
		ScoreChange: delta,
	}
}

func (i *Interpreter) handleMove(direction string) Result {
	// Movement attempts always count, successful or not.
	i.state.IncrementMoves()

	scene, ok := i.graph.Scene(i.state.CurrentScene())
	if !ok {
		return Result{
			Success:      false,
			Message:      fmt.Sprintf("You can't go %s from here.", direction),
			CountsAsMove: true,
		}
	}

	exit, found := scene.ExitForDirection(world.Direction(direction))
	if !found {
		return Result{
			Success:      false,
			Message:      fmt.Sprintf("You can't go %s from here.", direction),
			CountsAsMove: true,
		}
	}
	if exit.Blocked {
		msg := exit.BlockedMessage
		if msg == "" {
			msg = fmt.Sprintf("You can't go %s from here.", direction)
		}
		return Result{Success: false, Message: msg, CountsAsMove: true}
	}

	if err := i.state.SetCurrentScene(exit.TargetScene); err != nil {
		i.logger.Error("moving to scene", zap.String("scene", exit.TargetScene), zap.Error(err))
		return Result{
			Success:      false,
			Message:      fmt.Sprintf("You can't go %s from here.", direction),
			CountsAsMove: true,
		}
	}

	var delta int
	if i.state.MarkVisited(exit.TargetScene) {
		delta = i.scoring.FirstVisit(i.state, exit.TargetScene)
	}
	if i.expander != nil {
		i.expander.PreloadAdjacentScenes(exit.TargetScene)
	}

	return Result{
		Success:      true,
		Message:      i.describeScene(exit.TargetScene),
		CountsAsMove: true,
		ScoreChange:  delta,
	}
}

func (i *Interpreter) handleGo(parsed ParseResult) Result {
	if parsed.Target() == "" {
		return Result{Success: false, Message: "Where do you want to go?"}
	}
	return i.handleMove(parsed.Target())
}

func (i *Interpreter) handleLook(parsed ParseResult) Result {
	args := parsed.Args
	// "look at <target>" and "look in <target>" read as examine.
	if len(args) > 0 && (args[0] == "at" || args[0] == "in") {
		return i.handleExamine(ParseResult{Command: "examine", Args: args[1:]})
	}
	if len(args) > 0 && args[0] != "around" {
		return i.handleExamine(ParseResult{Command: "examine", Args: args})
	}
	return Result{Success: true, Message: i.describeScene(i.state.CurrentScene())}
}

func (i *Interpreter) handleExamine(parsed ParseResult) Result {
	noun := parsed.Target()
	if noun == "" {
		return Result{Success: false, Message: "What do you want to examine?"}
	}

	target := resolveTarget(i.graph, i.state, noun)
	switch target.Kind {
	case TargetInventoryItem, TargetSceneItem:
		item, _ := i.graph.Item(target.ID)
		text := item.ExamineText
		if expanded, ok := i.cachedText(target.ID, expand.EntityItem); ok {
			text = expanded
		}
		return Result{Success: true, Message: text}

	case TargetMonster:
		monster, _ := i.graph.Monster(target.ID)
		text := monster.Description
		if expanded, ok := i.cachedText(target.ID, expand.EntityMonster); ok {
			text = expanded
		}
		return Result{Success: true, Message: text + " " + monsterStateLine(monster.Name, i.state.MonsterState(target.ID))}

	case TargetDirection:
		scene, _ := i.graph.Scene(i.state.CurrentScene())
		exit, found := scene.ExitForDirection(world.Direction(target.ID))
		if !found {
			return Result{Success: false, Message: fmt.Sprintf("There is no way %s from here.", target.ID)}
		}
		if exit.Blocked {
			msg := exit.BlockedMessage
			if msg == "" {
				msg = fmt.Sprintf("The way %s is blocked.", target.ID)
			}
			return Result{Success: true, Message: msg}
		}
		return Result{Success: true, Message: fmt.Sprintf("An exit leads %s.", target.ID)}

	case TargetScene:
		// Deliberately narrower than look: no title, no exits.
		scene, _ := i.graph.Scene(target.ID)
		lines := []string{"You take a closer look around."}
		lines = append(lines, scene.Atmosphere...)
		return Result{Success: true, Message: strings.Join(lines, "\n")}

	default:
		return Result{Success: false, Message: fmt.Sprintf("You don't see any %s here.", noun)}
	}
}

func (i *Interpreter) handleInventory() Result {
	inventory := i.state.Inventory()
	if len(inventory) == 0 {
		return Result{Success: true, Message: "You are empty-handed."}
	}

	lines := []string{"You are carrying:"}
	for _, itemID := range inventory {
		if item, ok := i.graph.Item(itemID); ok {
			lines = append(lines, "  "+item.Name)
		}
	}
	return Result{Success: true, Message: strings.Join(lines, "\n")}
}

func (i *Interpreter) handleTake(parsed ParseResult) Result {
	noun := parsed.Target()
	if noun == "" {
		return Result{Success: false, Message: "What do you want to take?"}
	}

	target := resolveTarget(i.graph, i.state, noun)
	switch target.Kind {
	case TargetInventoryItem:
		item, _ := i.graph.Item(target.ID)
		return Result{Success: false, Message: fmt.Sprintf("You're already carrying the %s.", item.Name)}

	case TargetSceneItem:
		item, _ := i.graph.Item(target.ID)
		if !item.Portable {
			return Result{Success: false, Message: fmt.Sprintf("You can't take the %s.", item.Name)}
		}
		sceneID := i.state.CurrentScene()
		if err := i.state.MoveItem(target.ID, sceneID, state.LocationInventory); err != nil {
			i.logger.Error("taking item", zap.String("item", target.ID), zap.Error(err))
			return Result{Success: false, Message: fmt.Sprintf("You can't take the %s.", item.Name)}
		}
		i.state.MarkItemsMoved(sceneID)
		i.state.IncrementMoves()
		delta := i.scoring.ItemTaken(i.state, target.ID)
		if i.expander != nil {
			i.expander.ExpandInventoryItems(i.state.Inventory())
		}
		return Result{Success: true, Message: "Taken.", CountsAsMove: true, ScoreChange: delta}

	case TargetMonster:
		monster, _ := i.graph.Monster(target.ID)
		return Result{Success: false, Message: fmt.Sprintf("The %s does not seem willing.", monster.Name)}

	case TargetDirection, TargetScene:
		return Result{Success: false, Message: "You can't take that."}

	default:
		return Result{Success: false, Message: fmt.Sprintf("You don't see any %s here.", noun)}
	}
}

func (i *Interpreter) handleDrop(parsed ParseResult) Result {
	noun := parsed.Target()
	if noun == "" {
		return Result{Success: false, Message: "What do you want to drop?"}
	}

	target := resolveTarget(i.graph, i.state, noun)
	if target.Kind != TargetInventoryItem {
		if target.Kind == TargetSceneItem {
			item, _ := i.graph.Item(target.ID)
			return Result{Success: false, Message: fmt.Sprintf("You don't have the %s.", item.Name)}
		}
		return Result{Success: false, Message: "You aren't carrying any such thing."}
	}

	sceneID := i.state.CurrentScene()
	if err := i.state.MoveItem(target.ID, state.LocationInventory, sceneID); err != nil {
		i.logger.Error("dropping item", zap.String("item", target.ID), zap.Error(err))
		item, _ := i.graph.Item(target.ID)
		return Result{Success: false, Message: fmt.Sprintf("You don't have the %s.", item.Name)}
	}
	i.state.MarkItemsMoved(sceneID)
	i.state.IncrementMoves()
	delta := i.scoring.TreasureDeposited(i.state, target.ID, sceneID)

	msg := "Dropped."
	if delta > 0 {
		item, _ := i.graph.Item(target.ID)
		msg = fmt.Sprintf("You place the %s among your trophies.", item.Name)
	}
	return Result{Success: true, Message: msg, CountsAsMove: true, ScoreChange: delta}
}

func (i *Interpreter) handleInteraction(cmd *Command, parsed ParseResult) Result {
	noun := parsed.Target()
	if noun == "" {
		return Result{Success: false, Message: fmt.Sprintf("What do you want to %s?", cmd.Name)}
	}

	target := resolveTarget(i.graph, i.state, noun)
	switch target.Kind {
	case TargetInventoryItem, TargetSceneItem:
	case TargetNone:
		return Result{Success: false, Message: fmt.Sprintf("You don't see any %s here.", noun)}
	default:
		return Result{Success: false, Message: fmt.Sprintf("You can't %s that.", cmd.Name)}
	}

	if i.scripts != nil {
		handled, success, message, err := i.scripts.Interact(target.ID, cmd.Name, i.state)
		if err != nil {
			i.logger.Warn("interaction script failed",
				zap.String("item", target.ID),
				zap.String("verb", cmd.Name),
				zap.Error(err))
			return Result{Success: false, Message: "Nothing happens."}
		}
		if handled {
			// A scripted refusal mirrors the built-in one: no move consumed.
			if !success {
				return Result{Success: false, Message: message}
			}
			i.state.IncrementMoves()
			return Result{Success: true, Message: message, CountsAsMove: true}
		}
	}

	return i.builtinInteraction(cmd.Name, target.ID)
}

// builtinInteraction covers open/close/light/extinguish when no script
// claims the item.
func (i *Interpreter) builtinInteraction(verb, itemID string) Result {
	item, ok := i.graph.Item(itemID)
	if !ok {
		return Result{Success: false, Message: "Nothing happens."}
	}

	succeed := func(message string) Result {
		i.state.IncrementMoves()
		return Result{Success: true, Message: message, CountsAsMove: true}
	}
	fail := func(message string) Result {
		return Result{Success: false, Message: message}
	}

	switch verb {
	case "light":
		if item.Type != world.TypeLight {
			return fail(fmt.Sprintf("You can't light the %s.", item.Name))
		}
		if i.state.ItemFlag(itemID, "lit") {
			return fail(fmt.Sprintf("The %s is already lit.", item.Name))
		}
		if err := i.state.SetItemFlag(itemID, "lit", true); err != nil {
			return fail("Nothing happens.")
		}
		return succeed(fmt.Sprintf("The %s is now lit.", item.Name))

	case "extinguish":
		if item.Type != world.TypeLight || !i.state.ItemFlag(itemID, "lit") {
			return fail(fmt.Sprintf("The %s isn't lit.", item.Name))
		}
		if err := i.state.SetItemFlag(itemID, "lit", false); err != nil {
			return fail("Nothing happens.")
		}
		return succeed(fmt.Sprintf("The %s is now out.", item.Name))

	case "open":
		if item.Type != world.TypeContainer {
			return fail(fmt.Sprintf("You can't open the %s.", item.Name))
		}
		if i.state.ItemFlag(itemID, "open") {
			return fail(fmt.Sprintf("The %s is already open.", item.Name))
		}
		if err := i.state.SetItemFlag(itemID, "open", true); err != nil {
			return fail("Nothing happens.")
		}
		return succeed("Opened.")

	case "close":
		if item.Type != world.TypeContainer || !i.state.ItemFlag(itemID, "open") {
			return fail(fmt.Sprintf("The %s is already closed.", item.Name))
		}
		if err := i.state.SetItemFlag(itemID, "open", false); err != nil {
			return fail("Nothing happens.")
		}
		return succeed("Closed.")

	default:
		return fail("Nothing happens.")
	}
}

func (i *Interpreter) handleScore() Result {
	return Result{
		Success: true,
		Message: fmt.Sprintf("You have scored %d of a possible %d points, in %d moves.",
			i.state.Score(), i.state.MaxScore(), i.state.Moves()),
	}
}

func (i *Interpreter) handleSave(ctx context.Context) Result {
	if i.store == nil {
		return Result{Success: false, Message: "There is nowhere to save your progress."}
	}
	snapshot, err := i.state.Snapshot()
	if err != nil {
		i.logger.Error("creating snapshot", zap.Error(err))
		return Result{Success: false, Message: "Saving failed."}
	}
	if err := i.store.SaveSnapshot(ctx, snapshot); err != nil {
		i.logger.Error("saving snapshot", zap.Error(err))
		return Result{Success: false, Message: "Saving failed."}
	}
	return Result{Success: true, Message: "Saved."}
}

func (i *Interpreter) handleRestore(ctx context.Context) Result {
	if i.store == nil {
		return Result{Success: false, Message: "There is no saved session to restore."}
	}
	snapshot, err := i.store.LoadSnapshot(ctx)
	if err != nil {
		i.logger.Error("loading snapshot", zap.Error(err))
		return Result{Success: false, Message: "Restoring failed."}
	}
	restored, err := state.Restore(i.graph, snapshot)
	if err != nil {
		i.logger.Error("restoring snapshot", zap.Error(err))
		return Result{Success: false, Message: "Restoring failed."}
	}
	i.state = restored
	return Result{
		Success: true,
		Message: "Restored.\n\n" + i.describeScene(i.state.CurrentScene()),
	}
}

func (i *Interpreter) handleHelp() Result {
	categories := i.registry.CommandsByCategory()
	var lines []string
	for _, category := range []string{CategoryMovement, CategoryWorld, CategorySystem} {
		cmds := categories[category]
		if len(cmds) == 0 {
			continue
		}
		lines = append(lines, strings.ToUpper(category[:1])+category[1:]+":")
		for _, cmd := range cmds {
			name := cmd.Name
			if len(cmd.Aliases) > 0 {
				name = fmt.Sprintf("%s (%s)", cmd.Name, strings.Join(cmd.Aliases, ", "))
			}
			lines = append(lines, fmt.Sprintf("  %-24s %s", name, cmd.Help))
		}
	}
	return Result{Success: true, Message: strings.Join(lines, "\n")}
}

// describeScene renders the full scene view: title, description (expanded
// when cached), an atmosphere line, creatures, items, and open exits.
func (i *Interpreter) describeScene(sceneID string) string {
	scene, ok := i.graph.Scene(sceneID)
	if !ok {
		return "You are nowhere at all."
	}
	if scene.IsDark() && !i.state.CarryingLitLight() {
		return darkMessage
	}

	lines := []string{scene.Title}

	description := scene.Description
	if expanded, ok := i.cachedText(sceneID, expand.EntityScene); ok {
		description = expanded
	}
	lines = append(lines, description)

	if len(scene.Atmosphere) > 0 {
		lines = append(lines, scene.Atmosphere[i.state.Moves()%len(scene.Atmosphere)])
	}

	for _, monsterID := range scene.Monsters {
		monster, ok := i.graph.Monster(monsterID)
		if !ok {
			continue
		}
		lines = append(lines, monsterPresenceLine(monster.Name, i.state.MonsterState(monsterID)))
	}

	for _, itemID := range i.state.SceneItems(sceneID) {
		item, ok := i.graph.Item(itemID)
		if !ok || !item.Visible {
			continue
		}
		if item.Type == world.TypeScenery {
			continue
		}
		lines = append(lines, fmt.Sprintf("There is a %s here.", item.Name))
	}

	var directions []string
	for _, exit := range scene.OpenExits() {
		directions = append(directions, string(exit.Direction))
	}
	if len(directions) == 0 {
		lines = append(lines, "exits: none")
	} else {
		lines = append(lines, "exits: "+strings.Join(directions, ", "))
	}

	return strings.Join(lines, "\n")
}

func monsterPresenceLine(name string, st world.MonsterState) string {
	switch st {
	case world.MonsterHostile:
		return fmt.Sprintf("A %s blocks your way, hostile and alert.", name)
	case world.MonsterDefeated:
		return fmt.Sprintf("The remains of a %s lie here.", name)
	default:
		return fmt.Sprintf("A %s lurks here, paying you no attention.", name)
	}
}

func (i *Interpreter) cachedText(entityID string, entityType expand.EntityType) (string, bool) {
	if i.expander == nil {
		return "", false
	}
	return i.expander.Cached(entityID, entityType)
}

func monsterStateLine(name string, st world.MonsterState) string {
	switch st {
	case world.MonsterHostile:
		return fmt.Sprintf("The %s eyes you menacingly.", name)
	case world.MonsterDefeated:
		return fmt.Sprintf("The %s will trouble no one again.", name)
	default:
		return fmt.Sprintf("The %s pays you no attention.", name)
	}
}
