package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/invopop/jsonschema"
)

// Provider constants for LLM provider selection.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrProviderUnavailable is returned by every call when no credential is configured.
var ErrProviderUnavailable = errors.New("llm provider unavailable: no API key configured")

// Client is the one capability the rest of relay needs from a model:
// send role-tagged messages under an optional system instruction, get text back.
type Client interface {
	Chat(ctx context.Context, messages []Message, systemPrompt string, opts ...ChatOption) (string, error)
	Model() string
}

// Message represents a conversation message.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// UserMessage is shorthand for a single user turn.
func UserMessage(content string) []Message {
	return []Message{{Role: RoleUser, Content: content}}
}

// Config holds LLM client configuration.
type Config struct {
	Provider    string
	APIKey      string
	BaseURL     string // Optional: custom API endpoint
	Model       string
	MaxTokens   int
	Timeout     time.Duration // per attempt; zero disables
	MaxAttempts int           // retries apply to retryable provider errors only
}

type chatOptions struct {
	maxTokens   int
	temperature *float64
	schemaName  string
	schema      any
}

type ChatOption func(*chatOptions)

func WithMaxTokens(n int) ChatOption {
	return func(o *chatOptions) { o.maxTokens = n }
}

func WithTemperature(t float64) ChatOption {
	return func(o *chatOptions) { o.temperature = &t }
}

// WithJSONSchema asks providers that support structured output to constrain the
// reply. Callers still validate the reply themselves.
func WithJSONSchema(name string, schema any) ChatOption {
	return func(o *chatOptions) {
		o.schemaName = name
		o.schema = schema
	}
}

func applyOptions(defaultMaxTokens int, opts []ChatOption) chatOptions {
	o := chatOptions{maxTokens: defaultMaxTokens}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxTokens <= 0 {
		o.maxTokens = 1024
	}
	return o
}

// New selects the provider implementation once, at construction. A missing
// API key yields a client whose every call fails with ErrProviderUnavailable.
func New(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return unavailableClient{}, nil
	}

	provider := cfg.Provider
	if provider == "" {
		provider = ProviderAnthropic
	}

	var (
		base Client
		err  error
	)
	switch provider {
	case ProviderAnthropic:
		base, err = newAnthropicClient(cfg)
	case ProviderOpenAI:
		base, err = newOpenAIClient(cfg)
	case ProviderGemini:
		base, err = newGeminiClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
	if err != nil {
		return nil, err
	}

	return WithResilience(base, cfg.Timeout, cfg.MaxAttempts), nil
}

type unavailableClient struct{}

func (unavailableClient) Chat(context.Context, []Message, string, ...ChatOption) (string, error) {
	return "", ErrProviderUnavailable
}

func (unavailableClient) Model() string { return "" }

// ProviderError wraps transport, auth and status failures from a provider SDK.
type ProviderError struct {
	Provider   string
	StatusCode int // 0 when no HTTP response was received
	Retryable  bool
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func newProviderError(provider string, status int, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s chat: %w", provider, err)
	}
	retryable := status == 0 || status == http.StatusTooManyRequests || status >= 500
	return &ProviderError{Provider: provider, StatusCode: status, Retryable: retryable, Err: err}
}

// GenerateSchema reflects a JSON schema from T for WithJSONSchema.
func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

func IsRetryable(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrProviderUnavailable) {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		slog.DebugContext(ctx, "llm error not retryable: context cancelled or deadline exceeded")
		return false
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		switch {
		case provErr.StatusCode == http.StatusTooManyRequests:
			slog.WarnContext(ctx, "llm rate limited, will retry",
				"provider", provErr.Provider,
				"status_code", provErr.StatusCode)
		case provErr.StatusCode >= 500:
			slog.WarnContext(ctx, "llm server error, will retry",
				"provider", provErr.Provider,
				"status_code", provErr.StatusCode)
		case provErr.StatusCode == 0:
			slog.WarnContext(ctx, "llm network error, will retry",
				"provider", provErr.Provider,
				"error", provErr.Err)
		default:
			slog.ErrorContext(ctx, "llm client error, not retryable",
				"provider", provErr.Provider,
				"status_code", provErr.StatusCode)
		}
		return provErr.Retryable
	}

	slog.WarnContext(ctx, "llm network error, will retry", "error", err)
	return true
}
