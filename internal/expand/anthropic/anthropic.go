// Package anthropic implements the expansion generator on the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/lantern-engine/lantern/internal/expand"
)

const systemPrompt = "You narrate entities in an interactive fiction world. " +
	"Follow the instruction in the user message exactly."

// Provider generates expansion text through the Anthropic Messages API.
type Provider struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	logger    *zap.Logger
}

// NewProvider creates a provider for the given model.
//
// Precondition: apiKey and model are non-empty; logger is non-nil.
func NewProvider(apiKey, model string, maxTokens int64, logger *zap.Logger) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if maxTokens <= 0 {
		return nil, fmt.Errorf("max tokens must be positive, got %d", maxTokens)
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Provider{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
		logger:    logger,
	}, nil
}

// Generate sends one prompt and returns the model's text reply.
func (p *Provider) Generate(ctx context.Context, req expand.PromptRequest) (string, error) {
	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic message request: %w", err)
	}

	var b strings.Builder
	for _, block := range message.Content {
		b.WriteString(block.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("anthropic reply contained no text")
	}

	p.logger.Debug("generated expansion",
		zap.String("entity_id", req.EntityID),
		zap.String("entity_type", string(req.EntityType)),
		zap.Int("length", len(text)))

	return text, nil
}
