package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"recipebox/internal/transport"
)

const defaultGoogleBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GoogleClient implements Client using Gemini's generateContent API.
type GoogleClient struct {
	baseURL string
	model   string
	http    *http.Client
	logger  *slog.Logger
}

func NewGoogleClient(baseURL, model string, timeout time.Duration, logger *slog.Logger) *GoogleClient {
	if baseURL == "" {
		baseURL = defaultGoogleBaseURL
	}
	if model == "" {
		model = defaultGoogleModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GoogleClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    transport.NewClient(timeout, false),
		logger:  logger,
	}
}

type googleGenerateContentRequest struct {
	Contents         []googleContent        `json:"contents"`
	GenerationConfig googleGenerationConfig `json:"generationConfig"`
}

type googleGenerationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens"`
}

type googleContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []googlePart `json:"parts"`
}

type googlePart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *googleInlineData `json:"inline_data,omitempty"`
}

type googleInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type googleGenerateContentResponse struct {
	Candidates []struct {
		Content googleContent `json:"content"`
	} `json:"candidates"`
}

func (c *GoogleClient) Complete(ctx context.Context, apiKey string, parts []Part) (text string, err error) {
	defer func() { record(c.logger, ProviderGoogle, c.model, err) }()

	gparts := make([]googlePart, 0, len(parts))
	for _, p := range parts {
		if p.Type == PartImage {
			gparts = append(gparts, googlePart{InlineData: &googleInlineData{
				MimeType: p.MediaType,
				Data:     base64.StdEncoding.EncodeToString(p.Data),
			}})
			continue
		}
		gparts = append(gparts, googlePart{Text: p.Text})
	}

	payload, err := json.Marshal(googleGenerateContentRequest{
		Contents:         []googleContent{{Role: "user", Parts: gparts}},
		GenerationConfig: googleGenerationConfig{MaxOutputTokens: MaxTokens},
	})
	if err != nil {
		return "", err
	}

	// The API key goes in a header, never in the URL.
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("x-goog-api-key", apiKey)

	respBody, err := doJSON(ctx, c.http, httpReq)
	if err != nil {
		return "", err
	}

	var parsed googleGenerateContentResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode google response: %w", err)
	}
	for _, cand := range parsed.Candidates {
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				return part.Text, nil
			}
		}
	}
	return "", ErrNoTextInResponse
}
