// ABOUTME: Anthropic Messages API provider adapter built on the official SDK.
// ABOUTME: Concatenates text blocks from the reply and maps SDK errors onto the package taxonomy.
package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic implements Provider using the Anthropic Messages API.
type Anthropic struct {
	client       anthropic.Client
	defaultModel anthropic.Model
}

// NewAnthropic creates an Anthropic adapter. An empty defaultModel falls back
// to the SDK's current Sonnet model.
func NewAnthropic(apiKey, defaultModel string) *Anthropic {
	model := anthropic.Model(defaultModel)
	if model == "" {
		model = anthropic.ModelClaudeSonnet4_20250514
	}
	return &Anthropic{
		client:       anthropic.NewClient(option.WithAPIKey(apiKey)),
		defaultModel: model,
	}
}

// Name returns the provider's registry name.
func (p *Anthropic) Name() string { return "anthropic" }

// Complete sends a Messages API request and concatenates the text blocks of
// the reply.
func (p *Anthropic) Complete(ctx context.Context, req Request) (*Response, error) {
	model := anthropic.Model(req.Model)
	if model == "" {
		model = p.defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	params := anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, p.classify(err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(tb.Text)
		}
	}

	return &Response{
		Text:     text.String(),
		Model:    string(resp.Model),
		Provider: p.Name(),
		Usage: Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}, nil
}

func (p *Anthropic) classify(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(p.Name(), apiErr.StatusCode, apiErr.Error(), err)
	}
	return &ServerError{ProviderError: ProviderError{
		ClientError: ClientError{Message: "anthropic: request failed", Cause: err},
		Provider:    p.Name(),
		Retryable:   true,
	}}
}
