package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"recipebox/internal/transport"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
)

// AnthropicClient implements Client using Anthropic's Messages API.
type AnthropicClient struct {
	baseURL string
	model   string
	http    *http.Client
	logger  *slog.Logger
}

func NewAnthropicClient(baseURL string, timeout time.Duration, logger *slog.Logger) *AnthropicClient {
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &AnthropicClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   DefaultModel,
		http:    transport.NewClient(timeout, false),
		logger:  logger,
	}
}

type anthropicMessagesRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

// anthropicContent is a content block; Type selects which payload is sent.
type anthropicContent struct {
	Type   string
	Text   string
	Source *anthropicImageSource
}

type anthropicImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

func (c anthropicContent) MarshalJSON() ([]byte, error) {
	switch c.Type {
	case "text":
		return json.Marshal(struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{c.Type, c.Text})
	case "image":
		return json.Marshal(struct {
			Type   string                `json:"type"`
			Source *anthropicImageSource `json:"source"`
		}{c.Type, c.Source})
	default:
		return nil, fmt.Errorf("unknown content type %q", c.Type)
	}
}

type anthropicMessagesResponse struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Role       string `json:"role"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Content    []struct {
		Type string  `json:"type"`
		Text *string `json:"text"`
	} `json:"content"`
}

func toAnthropicContent(parts []Part) []anthropicContent {
	out := make([]anthropicContent, 0, len(parts))
	for _, p := range parts {
		switch p.Type {
		case PartImage:
			out = append(out, anthropicContent{
				Type: "image",
				Source: &anthropicImageSource{
					Type:      "base64",
					MediaType: p.MediaType,
					Data:      base64.StdEncoding.EncodeToString(p.Data),
				},
			})
		default:
			out = append(out, anthropicContent{Type: "text", Text: p.Text})
		}
	}
	return out
}

// Complete sends parts as one user message and returns the first text block.
func (c *AnthropicClient) Complete(ctx context.Context, apiKey string, parts []Part) (text string, err error) {
	defer func() { record(c.logger, ProviderAnthropic, c.model, err) }()

	body := anthropicMessagesRequest{
		Model:     c.model,
		MaxTokens: MaxTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: toAnthropicContent(parts)},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("x-api-key", apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	respBody, err := doJSON(ctx, c.http, httpReq)
	if err != nil {
		return "", err
	}

	var parsed anthropicMessagesResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode anthropic response: %w", err)
	}

	for _, block := range parsed.Content {
		if block.Type == "text" && block.Text != nil {
			return *block.Text, nil
		}
	}
	return "", ErrNoTextInResponse
}
