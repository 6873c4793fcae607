// Package command provides the command registry, parser, and the interpreter
// that turns player input into world mutations and results.
package command

// Categories for organizing commands in help output.
const (
	CategoryMovement = "movement"
	CategoryWorld    = "world"
	CategorySystem   = "system"
)

// Handler identifiers mapping commands to interpreter handlers.
const (
	HandlerMove       = "move"
	HandlerGo         = "go"
	HandlerLook       = "look"
	HandlerExamine    = "examine"
	HandlerInventory  = "inventory"
	HandlerTake       = "take"
	HandlerDrop       = "drop"
	HandlerOpen       = "open"
	HandlerClose      = "close"
	HandlerLight      = "light"
	HandlerExtinguish = "extinguish"
	HandlerScore      = "score"
	HandlerSave       = "save"
	HandlerRestore    = "restore"
	HandlerHelp       = "help"
	HandlerQuit       = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command (movement, world, system).
	Category string
	// Handler selects the interpreter handler for this command.
	Handler string
}

// BuiltinCommands returns all built-in commands for the engine.
func BuiltinCommands() []Command {
	return []Command{
		// Movement commands
		{Name: "north", Aliases: []string{"n"}, Help: "Move north", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "south", Aliases: []string{"s"}, Help: "Move south", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "east", Aliases: []string{"e"}, Help: "Move east", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "west", Aliases: []string{"w"}, Help: "Move west", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "northeast", Aliases: []string{"ne"}, Help: "Move northeast", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "northwest", Aliases: []string{"nw"}, Help: "Move northwest", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "southeast", Aliases: []string{"se"}, Help: "Move southeast", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "southwest", Aliases: []string{"sw"}, Help: "Move southwest", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "up", Aliases: []string{"u"}, Help: "Move up", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "down", Aliases: []string{"d"}, Help: "Move down", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "go", Aliases: []string{"walk"}, Help: "Move through an exit (go <direction>)", Category: CategoryMovement, Handler: HandlerGo},

		// World commands
		{Name: "look", Aliases: []string{"l"}, Help: "Look around the current scene", Category: CategoryWorld, Handler: HandlerLook},
		{Name: "examine", Aliases: []string{"x", "ex"}, Help: "Examine an item or creature", Category: CategoryWorld, Handler: HandlerExamine},
		{Name: "inventory", Aliases: []string{"inv", "i"}, Help: "Show what you are carrying", Category: CategoryWorld, Handler: HandlerInventory},
		{Name: "take", Aliases: []string{"get", "grab"}, Help: "Pick up an item", Category: CategoryWorld, Handler: HandlerTake},
		{Name: "drop", Aliases: nil, Help: "Drop a carried item", Category: CategoryWorld, Handler: HandlerDrop},
		{Name: "open", Aliases: nil, Help: "Open a container", Category: CategoryWorld, Handler: HandlerOpen},
		{Name: "close", Aliases: []string{"shut"}, Help: "Close a container", Category: CategoryWorld, Handler: HandlerClose},
		{Name: "light", Aliases: nil, Help: "Light a lamp or lantern", Category: CategoryWorld, Handler: HandlerLight},
		{Name: "extinguish", Aliases: []string{"douse"}, Help: "Put out a light source", Category: CategoryWorld, Handler: HandlerExtinguish},

		// System commands
		{Name: "score", Aliases: nil, Help: "Show your score and move count", Category: CategorySystem, Handler: HandlerScore},
		{Name: "save", Aliases: nil, Help: "Save the current session", Category: CategorySystem, Handler: HandlerSave},
		{Name: "restore", Aliases: []string{"load"}, Help: "Restore the last saved session", Category: CategorySystem, Handler: HandlerRestore},
		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit"}, Help: "Leave the game", Category: CategorySystem, Handler: HandlerQuit},
	}
}

// IsDirectionCommand reports whether the command name is a movement direction.
func IsDirectionCommand(name string) bool {
	switch name {
	case "north", "south", "east", "west",
		"northeast", "northwest", "southeast", "southwest",
		"up", "down":
		return true
	default:
		return false
	}
}
