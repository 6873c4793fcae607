// Package expand caches AI-generated enrichment of world entities. Requests
// for the same entity, type, and style are coalesced so at most one
// generation call is ever in flight per key, and completed results are
// cached for the rest of the session.
package expand

import (
	"context"
	"errors"
	"time"
)

// EntityType identifies which kind of world entity is being expanded.
type EntityType string

// The three expandable entity types.
const (
	EntityScene   EntityType = "scene"
	EntityItem    EntityType = "item"
	EntityMonster EntityType = "monster"
)

// ErrGenerationFailed wraps any content generator failure. Callers match it
// with errors.Is; the failing expansion is never cached.
var ErrGenerationFailed = errors.New("content generation failed")

// PromptRequest carries everything a Generator needs to produce text for
// one entity.
type PromptRequest struct {
	EntityID   string
	EntityType EntityType
	// Style selects the narrative voice (e.g. "classic", "noir").
	Style string
	// Prompt is the fully rendered instruction text.
	Prompt string
}

// Generator produces enrichment text from a prompt. Implementations must
// honor ctx cancellation.
type Generator interface {
	Generate(ctx context.Context, req PromptRequest) (string, error)
}

// ExpandedContent is a completed expansion.
type ExpandedContent struct {
	EntityID   string
	EntityType EntityType
	Style      string
	Text       string
	ExpandedAt time.Time
}

// SceneContext bundles a scene's expansion with those of everything
// visible in it.
type SceneContext struct {
	Scene    ExpandedContent
	Items    []ExpandedContent
	Monsters []ExpandedContent
}
