package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"recipebox/internal/config"
	"recipebox/internal/metrics"
	"recipebox/internal/transport"
)

// Provider represents a logical LLM provider.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
)

const (
	// DefaultModel is the Anthropic model every request is sent to.
	DefaultModel = "claude-sonnet-4-5-20250929"
	// MaxTokens is the output token budget for every request.
	MaxTokens      = 4096
	DefaultTimeout = 60 * time.Second

	defaultOpenAIModel = "gpt-4o"
	defaultGoogleModel = "gemini-2.0-flash"
)

// ErrNoTextInResponse is returned when a provider answers without any text.
var ErrNoTextInResponse = errors.New("no text in llm response")

// PartType discriminates message parts.
type PartType string

const (
	PartText  PartType = "text"
	PartImage PartType = "image"
)

// Part is one element of the single user message sent to the model: a
// text block or an inline image.
type Part struct {
	Type      PartType
	Text      string
	Data      []byte
	MediaType string
}

func TextPart(text string) Part {
	return Part{Type: PartText, Text: text}
}

func ImagePart(data []byte, mediaType string) Part {
	return Part{Type: PartImage, Data: data, MediaType: mediaType}
}

// Client sends one user message made of parts and returns the model's
// first text segment.
type Client interface {
	Complete(ctx context.Context, apiKey string, parts []Part) (string, error)
}

// NewClientFromConfig constructs the configured provider's Client.
func NewClientFromConfig(cfg *config.Config, logger *slog.Logger) (Client, Provider, string, error) {
	timeout := DefaultTimeout
	if cfg.LLM.TimeoutMs > 0 {
		timeout = time.Duration(cfg.LLM.TimeoutMs) * time.Millisecond
	}

	prov := Provider(cfg.LLM.Provider)
	switch prov {
	case ProviderAnthropic, "":
		c := NewAnthropicClient(cfg.LLM.Anthropic.BaseURL, timeout, logger)
		return c, ProviderAnthropic, c.model, nil
	case ProviderOpenAI:
		c := NewOpenAIClient(cfg.LLM.OpenAI.BaseURL, cfg.LLM.OpenAI.Model, timeout, logger)
		return c, prov, c.model, nil
	case ProviderGoogle:
		c := NewGoogleClient(cfg.LLM.Google.BaseURL, cfg.LLM.Google.Model, timeout, logger)
		return c, prov, c.model, nil
	default:
		return nil, prov, "", fmt.Errorf("unsupported llm provider: %s", cfg.LLM.Provider)
	}
}

// doJSON executes req and returns the response body, mapping failures
// onto the transport error taxonomy.
func doJSON(ctx context.Context, client *http.Client, req *http.Request) ([]byte, error) {
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, transport.Classify(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, transport.Classify(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &transport.HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func record(logger *slog.Logger, provider Provider, model string, err error) {
	metrics.RecordLLMRequest(string(provider), model, err == nil)
	if err != nil && logger != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("llm_request_failed", "provider", provider, "model", model, "error", err)
	}
}
