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

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIClient implements Client using OpenAI-compatible Chat Completions.
type OpenAIClient struct {
	baseURL string
	model   string
	http    *http.Client
	logger  *slog.Logger
}

func NewOpenAIClient(baseURL, model string, timeout time.Duration, logger *slog.Logger) *OpenAIClient {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OpenAIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    transport.NewClient(timeout, false),
		logger:  logger,
	}
}

type openAIChatRequest struct {
	Model     string              `json:"model"`
	MaxTokens int                 `json:"max_tokens"`
	Messages  []openAIChatMessage `json:"messages"`
}

type openAIChatMessage struct {
	Role    string              `json:"role"`
	Content []openAIContentPart `json:"content"`
}

type openAIContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
}

type openAIImageURL struct {
	URL string `json:"url"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) Complete(ctx context.Context, apiKey string, parts []Part) (text string, err error) {
	defer func() { record(c.logger, ProviderOpenAI, c.model, err) }()

	content := make([]openAIContentPart, 0, len(parts))
	for _, p := range parts {
		if p.Type == PartImage {
			dataURL := "data:" + p.MediaType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
			content = append(content, openAIContentPart{Type: "image_url", ImageURL: &openAIImageURL{URL: dataURL}})
			continue
		}
		content = append(content, openAIContentPart{Type: "text", Text: p.Text})
	}

	payload, err := json.Marshal(openAIChatRequest{
		Model:     c.model,
		MaxTokens: MaxTokens,
		Messages:  []openAIChatMessage{{Role: "user", Content: content}},
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	respBody, err := doJSON(ctx, c.http, httpReq)
	if err != nil {
		return "", err
	}

	var parsed openAIChatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == nil {
		return "", ErrNoTextInResponse
	}
	return *parsed.Choices[0].Message.Content, nil
}
