// ABOUTME: OpenAI Chat Completions provider adapter with base URL support for compatible services.
// ABOUTME: Serves OpenAI itself plus OpenRouter, Groq, Together, and other compatible endpoints.
package llm

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAICompat implements Provider using the OpenAI Chat Completions API.
// A custom base URL points it at any OpenAI-compatible service; the standard
// /v1/chat/completions endpoint is what OpenRouter, Groq, and Together all speak.
type OpenAICompat struct {
	name         string
	client       openai.Client
	defaultModel string
}

// NewOpenAICompat creates an adapter for the named provider. baseURL may be
// empty for the real OpenAI API.
func NewOpenAICompat(name, apiKey, baseURL, defaultModel string) *OpenAICompat {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAICompat{
		name:         name,
		client:       openai.NewClient(opts...),
		defaultModel: defaultModel,
	}
}

// Name returns the provider's registry name.
func (p *OpenAICompat) Name() string { return p.name }

// Complete sends a chat completion request and returns the first choice.
func (p *OpenAICompat) Complete(ctx context.Context, req Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(int64(maxTokens)),
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, p.classify(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{
			ClientError: ClientError{Message: p.name + ": response contained no choices"},
			Provider:    p.name,
		}
	}

	return &Response{
		Text:     resp.Choices[0].Message.Content,
		Model:    resp.Model,
		Provider: p.name,
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
	}, nil
}

// classify maps SDK errors onto the package error taxonomy so the retry
// policy can distinguish rate limits and server errors from caller mistakes.
func (p *OpenAICompat) classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(p.name, apiErr.StatusCode, apiErr.Message, err)
	}
	// Network-level failures are worth retrying.
	return &ServerError{ProviderError: ProviderError{
		ClientError: ClientError{Message: p.name + ": request failed", Cause: err},
		Provider:    p.name,
		Retryable:   true,
	}}
}
