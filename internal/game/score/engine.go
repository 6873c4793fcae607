// Package score awards points for progress through the world and keeps the
// running total monotone and bounded.
package score

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lantern-engine/lantern/internal/game/state"
	"github.com/lantern-engine/lantern/internal/world"
)

// Engine applies scoring events against a game state. Every event is awarded
// at most once per session, keyed by the event kind and the entity that
// triggered it.
type Engine struct {
	graph  *world.Graph
	logger *zap.Logger
}

// NewEngine creates a scoring engine for the given world.
// Precondition: graph and logger are non-nil.
func NewEngine(graph *world.Graph, logger *zap.Logger) (*Engine, error) {
	if graph == nil {
		return nil, fmt.Errorf("graph is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Engine{graph: graph, logger: logger}, nil
}

// FirstVisit awards a scene's first-visit points. Returns the applied delta,
// zero when the scene has no points or the award was already granted.
// Postcondition: the award key for sceneID is marked, so later calls return 0.
func (e *Engine) FirstVisit(s *state.State, sceneID string) int {
	scene, ok := e.graph.Scene(sceneID)
	if !ok || scene.FirstVisitPoints <= 0 {
		return 0
	}
	return e.award(s, "first_visit:"+sceneID, scene.FirstVisitPoints)
}

// ItemTaken awards an item's take points the first time it enters the
// player's inventory.
func (e *Engine) ItemTaken(s *state.State, itemID string) int {
	item, ok := e.graph.Item(itemID)
	if !ok || item.TakePoints <= 0 {
		return 0
	}
	return e.award(s, "take:"+itemID, item.TakePoints)
}

// TreasureDeposited awards an item's deposit points when it is dropped in
// its region's trophy scene. Non-treasure items never score here.
func (e *Engine) TreasureDeposited(s *state.State, itemID, sceneID string) int {
	item, ok := e.graph.Item(itemID)
	if !ok || item.Type != world.TypeTreasure || item.DepositPoints <= 0 {
		return 0
	}
	if e.graph.TrophyScene(sceneID) != sceneID {
		return 0
	}
	return e.award(s, "deposit:"+itemID, item.DepositPoints)
}

func (e *Engine) award(s *state.State, key string, points int) int {
	if !s.MarkAwarded(key) {
		return 0
	}
	applied, err := s.ApplyScore(points)
	if err != nil {
		e.logger.Warn("score award rejected",
			zap.String("key", key),
			zap.Int("points", points),
			zap.Error(err))
		return 0
	}
	e.logger.Debug("score awarded",
		zap.String("key", key),
		zap.Int("points", applied),
		zap.Int("total", s.Score()))
	return applied
}
