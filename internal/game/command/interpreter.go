package command

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lantern-engine/lantern/internal/expand"
	"github.com/lantern-engine/lantern/internal/game/score"
	"github.com/lantern-engine/lantern/internal/game/state"
	"github.com/lantern-engine/lantern/internal/world"
)

// Result is the outcome of a processed command, consumed by any
// presentation layer.
type Result struct {
	// Success indicates whether the command achieved its effect.
	Success bool
	// Message is always a non-empty, human-readable line or block.
	Message string
	// CountsAsMove indicates the command incremented the move counter.
	// Movement attempts always count, including blocked ones; inspection
	// commands (look, examine, inventory) never do.
	CountsAsMove bool
	// ScoreChange is the number of points this command awarded, zero when
	// nothing was scored.
	ScoreChange int
	// Quit signals the presentation layer to end the session.
	Quit bool
}

// Expander supplies AI-expanded entity text when available and accepts
// background preload hints. The interpreter never blocks on it: a miss
// falls back to authored text.
type Expander interface {
	// Cached returns completed expansion text for an entity, if present.
	Cached(entityID string, entityType expand.EntityType) (string, bool)
	// PreloadAdjacentScenes schedules expansion of every scene one
	// unblocked exit hop away. It must not block.
	PreloadAdjacentScenes(sceneID string)
	// ExpandInventoryItems schedules expansion of all carried items.
	// It must not block.
	ExpandInventoryItems(itemIDs []string)
}

// Interactor runs scripted item interaction rules for verbs like open,
// close, and light.
type Interactor interface {
	// Interact returns handled=false when no rule covers the item/verb
	// pair, letting the built-in behavior run instead. A handled refusal
	// (the verb applies but has no effect right now) reports success=false.
	Interact(itemID, verb string, s *state.State) (handled, success bool, message string, err error)
}

// SnapshotStore persists session snapshots for the save and restore
// commands.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot []byte) error
	LoadSnapshot(ctx context.Context) ([]byte, error)
}

// Interpreter processes raw player input against the world and game state.
// It is not safe for concurrent use; the command path is single-threaded
// and only the expander runs work in the background.
type Interpreter struct {
	graph    *world.Graph
	state    *state.State
	scoring  *score.Engine
	registry *Registry
	logger   *zap.Logger

	// Optional collaborators; nil disables the corresponding feature.
	expander Expander
	scripts  Interactor
	store    SnapshotStore
}

// Option configures optional Interpreter collaborators.
type Option func(*Interpreter)

// WithExpander wires an expansion cache into the interpreter.
func WithExpander(e Expander) Option {
	return func(i *Interpreter) { i.expander = e }
}

// WithInteractor wires scripted item interaction rules.
func WithInteractor(s Interactor) Option {
	return func(i *Interpreter) { i.scripts = s }
}

// WithSnapshotStore wires session persistence for save/restore.
func WithSnapshotStore(s SnapshotStore) Option {
	return func(i *Interpreter) { i.store = s }
}

// NewInterpreter creates an interpreter over the given world and state.
//
// Precondition: graph, st, scoring, and logger are non-nil.
func NewInterpreter(graph *world.Graph, st *state.State, scoring *score.Engine, logger *zap.Logger, opts ...Option) (*Interpreter, error) {
	if graph == nil {
		return nil, fmt.Errorf("graph is required")
	}
	if st == nil {
		return nil, fmt.Errorf("state is required")
	}
	if scoring == nil {
		return nil, fmt.Errorf("scoring engine is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	i := &Interpreter{
		graph:    graph,
		state:    st,
		scoring:  scoring,
		registry: DefaultRegistry(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// State returns the interpreter's current game state. After a successful
// restore command the returned state is a new object.
func (i *Interpreter) State() *state.State {
	return i.state
}

// Process parses, resolves, and dispatches one line of player input.
//
// Postcondition: Always returns a Result with a non-empty Message; no
// input is fatal.
func (i *Interpreter) Process(ctx context.Context, raw string) Result {
	parsed := Parse(raw)
	if parsed.Command == "" {
		return Result{Success: false, Message: "I beg your pardon?"}
	}

	cmd, ok := i.registry.Resolve(parsed.Command)
	if !ok {
		// Named exits ("launch", "stairs") are not registered commands;
		// a bare exit name is a movement attempt.
		if scene, found := i.graph.Scene(i.state.CurrentScene()); found {
			if _, exists := scene.ExitForDirection(world.Direction(parsed.Command)); exists {
				return i.handleMove(parsed.Command)
			}
		}
		return Result{
			Success: false,
			Message: fmt.Sprintf("I don't know the word %q.", parsed.Command),
		}
	}

	result := i.dispatch(ctx, cmd, parsed)

	i.logger.Debug("command processed",
		zap.String("command", cmd.Name),
		zap.String("target", parsed.Target()),
		zap.Bool("success", result.Success),
		zap.Bool("counts_as_move", result.CountsAsMove),
		zap.Int("score_change", result.ScoreChange))

	return result
}

func (i *Interpreter) dispatch(ctx context.Context, cmd *Command, parsed ParseResult) Result {
	switch cmd.Handler {
	case HandlerMove:
		return i.handleMove(cmd.Name)
	case HandlerGo:
		return i.handleGo(parsed)
	case HandlerLook:
		return i.handleLook(parsed)
	case HandlerExamine:
		return i.handleExamine(parsed)
	case HandlerInventory:
		return i.handleInventory()
	case HandlerTake:
		return i.handleTake(parsed)
	case HandlerDrop:
		return i.handleDrop(parsed)
	case HandlerOpen, HandlerClose, HandlerLight, HandlerExtinguish:
		return i.handleInteraction(cmd, parsed)
	case HandlerScore:
		return i.handleScore()
	case HandlerSave:
		return i.handleSave(ctx)
	case HandlerRestore:
		return i.handleRestore(ctx)
	case HandlerHelp:
		return i.handleHelp()
	case HandlerQuit:
		return Result{Success: true, Message: "Goodbye.", Quit: true}
	default:
		return Result{
			Success: false,
			Message: fmt.Sprintf("The %s command is not available.", cmd.Name),
		}
	}
}
