// ABOUTME: Client with provider routing, middleware chain, and environment-driven construction.
// ABOUTME: FromEnv detects provider API keys and honors DEFAULT_LLM_PROVIDER for routing.
package llm

import (
	"context"
	"fmt"
	"os"
)

// Middleware wraps a completion call, enabling caching, transcript logging,
// and other cross-cutting concerns. Middleware executes in registration order
// for requests and reverse order for responses.
type Middleware func(ctx context.Context, req Request, next NextFunc) (*Response, error)

// NextFunc continues the middleware chain.
type NextFunc func(ctx context.Context, req Request) (*Response, error)

// Client routes completion requests to registered providers through its
// middleware chain.
type Client struct {
	providers       map[string]Provider
	defaultProvider string
	middleware      []Middleware
	retry           RetryPolicy
}

// ClientOption is a functional option for configuring a Client.
type ClientOption func(*Client)

// WithProvider registers a provider. The first registered provider becomes
// the default unless one was set explicitly.
func WithProvider(p Provider) ClientOption {
	return func(c *Client) {
		c.providers[p.Name()] = p
		if c.defaultProvider == "" {
			c.defaultProvider = p.Name()
		}
	}
}

// WithDefaultProvider sets the provider used when a Request names none.
func WithDefaultProvider(name string) ClientOption {
	return func(c *Client) {
		c.defaultProvider = name
	}
}

// WithMiddleware appends middleware to the chain. The first registered
// middleware is the outermost layer.
func WithMiddleware(mw ...Middleware) ClientOption {
	return func(c *Client) {
		c.middleware = append(c.middleware, mw...)
	}
}

// WithRetryPolicy sets the transport retry policy applied around each
// provider call, inside the middleware chain (so cache hits never sleep).
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *Client) {
		c.retry = p
	}
}

// NewClient creates a Client with the given options applied.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		providers: make(map[string]Provider),
		retry:     DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envProvider describes a provider constructible from environment variables.
type envProvider struct {
	name   string
	envKey string
	build  func(apiKey string) Provider
}

// envProviders lists the providers FromEnv can detect. OpenRouter, Groq, and
// Together expose OpenAI-compatible chat completion endpoints.
var envProviders = []envProvider{
	{name: "openrouter", envKey: "OPENROUTER_API_KEY", build: func(k string) Provider {
		return NewOpenAICompat("openrouter", k, "https://openrouter.ai/api/v1", envModel("OPENROUTER_MODEL", "mistralai/mistral-7b-instruct:free"))
	}},
	{name: "groq", envKey: "GROQ_API_KEY", build: func(k string) Provider {
		return NewOpenAICompat("groq", k, "https://api.groq.com/openai/v1", envModel("GROQ_MODEL", "llama-3.3-70b-versatile"))
	}},
	{name: "togetherai", envKey: "TOGETHERAI_API_KEY", build: func(k string) Provider {
		return NewOpenAICompat("togetherai", k, "https://api.together.xyz/v1", envModel("TOGETHERAI_MODEL", "meta-llama/Llama-3.3-70B-Instruct-Turbo-Free"))
	}},
	{name: "openai", envKey: "OPENAI_API_KEY", build: func(k string) Provider {
		return NewOpenAICompat("openai", k, "", envModel("OPENAI_MODEL", "gpt-4o"))
	}},
	{name: "anthropic", envKey: "ANTHROPIC_API_KEY", build: func(k string) Provider {
		return NewAnthropic(k, envModel("ANTHROPIC_MODEL", ""))
	}},
}

func envModel(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// FromEnv builds a Client from API keys found in the environment. The
// DEFAULT_LLM_PROVIDER variable selects the default provider; otherwise the
// first detected provider (in envProviders order) is used. Returns a
// ConfigurationError when no keys are present or the named default has no key.
func FromEnv(opts ...ClientOption) (*Client, error) {
	var detected []ClientOption
	found := map[string]bool{}
	for _, p := range envProviders {
		key := os.Getenv(p.envKey)
		if key == "" {
			continue
		}
		detected = append(detected, WithProvider(p.build(key)))
		found[p.name] = true
	}

	if len(detected) == 0 {
		return nil, &ConfigurationError{ClientError{
			Message: "no LLM API keys found in environment (checked OPENROUTER_API_KEY, GROQ_API_KEY, TOGETHERAI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY)",
		}}
	}

	if want := os.Getenv("DEFAULT_LLM_PROVIDER"); want != "" {
		if !found[want] {
			return nil, &ConfigurationError{ClientError{
				Message: fmt.Sprintf("DEFAULT_LLM_PROVIDER is %q but no API key for it was found", want),
			}}
		}
		detected = append(detected, WithDefaultProvider(want))
	}

	return NewClient(append(detected, opts...)...), nil
}

// resolveProvider picks the adapter for a request.
func (c *Client) resolveProvider(req Request) (Provider, error) {
	name := req.Provider
	if name == "" {
		name = c.defaultProvider
	}
	if name == "" {
		return nil, &ConfigurationError{ClientError{
			Message: "no provider specified and no default provider configured",
		}}
	}
	p, ok := c.providers[name]
	if !ok {
		return nil, &ConfigurationError{ClientError{
			Message: fmt.Sprintf("provider %q not registered", name),
		}}
	}
	return p, nil
}

// DefaultProvider returns the name of the client's default provider.
func (c *Client) DefaultProvider() string { return c.defaultProvider }

// Complete sends the request through the middleware chain, then to the
// resolved provider under the transport retry policy.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	handler := func(ctx context.Context, req Request) (*Response, error) {
		p, err := c.resolveProvider(req)
		if err != nil {
			return nil, err
		}
		var resp *Response
		callErr := Retry(ctx, c.retry, func() error {
			var err error
			resp, err = p.Complete(ctx, req)
			return err
		})
		if callErr != nil {
			return nil, callErr
		}
		return resp, nil
	}

	// Wrap in reverse order so the first registered middleware runs first.
	chain := handler
	for i := len(c.middleware) - 1; i >= 0; i-- {
		mw := c.middleware[i]
		next := chain
		chain = func(ctx context.Context, req Request) (*Response, error) {
			return mw(ctx, req, next)
		}
	}

	return chain(ctx, req)
}
