package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"recipebox/internal/formats"
	"recipebox/internal/llm"
	"recipebox/internal/metrics"
	"recipebox/internal/model"
	"recipebox/internal/scraper"
	"recipebox/internal/transport"
)

var (
	// ErrExtractionFailed matches every *ExtractionFailedError.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrMissingAPIKey is returned before any network call when no key is given.
	ErrMissingAPIKey = errors.New("llm api key is missing")
	ErrEmptyInput    = errors.New("empty input")
)

// ExtractionFailedError reports that no JSON object could be read from the
// model's answer.
type ExtractionFailedError struct {
	Cause error
}

func (e *ExtractionFailedError) Error() string {
	return fmt.Sprintf("extraction failed: %v", e.Cause)
}

func (e *ExtractionFailedError) Unwrap() error { return e.Cause }

func (e *ExtractionFailedError) Is(target error) bool { return target == ErrExtractionFailed }

const (
	ModeImage     = "image"
	ModeText      = "text"
	ModeURL       = "url"
	ModeTranslate = "translate"
)

// Service runs the extraction pipeline: prompt assembly, one LLM call,
// JSON recovery and normalization. It holds no per-call state and is safe
// for concurrent use.
type Service struct {
	llm        llm.Client
	normalizer Normalizer
	logger     *slog.Logger
}

func NewService(client llm.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{llm: client, logger: logger}
}

// WithNormalizer returns a copy of s using n for ids and timestamps.
func (s *Service) WithNormalizer(n Normalizer) *Service {
	cp := *s
	cp.normalizer = n
	return &cp
}

// ExtractFromImage sends the photo followed by the extraction prompt.
func (s *Service) ExtractFromImage(ctx context.Context, data []byte, mimeType, apiKey string) (model.Recipe, error) {
	if err := checkKey(apiKey); err != nil {
		return s.fail(ModeImage, err)
	}
	if len(data) == 0 {
		return s.fail(ModeImage, ErrEmptyInput)
	}
	mediaType, err := formats.ImageMediaType(mimeType, data)
	if err != nil {
		return s.fail(ModeImage, err)
	}

	s.logger.Info("extract_started", "mode", ModeImage, "image_bytes", len(data), "media_type", mediaType)
	return s.extract(ctx, ModeImage, apiKey, []llm.Part{
		llm.ImagePart(data, mediaType),
		llm.TextPart(ExtractionPrompt),
	})
}

// ExtractFromImageReader reads the photo from r first; read failures are
// returned like any other pipeline error.
func (s *Service) ExtractFromImageReader(ctx context.Context, r io.Reader, mimeType, apiKey string) (model.Recipe, error) {
	if err := checkKey(apiKey); err != nil {
		return s.fail(ModeImage, err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return s.fail(ModeImage, fmt.Errorf("read image: %w", err))
	}
	return s.ExtractFromImage(ctx, data, mimeType, apiKey)
}

// ExtractFromText appends the caller's recipe text to the extraction prompt.
func (s *Service) ExtractFromText(ctx context.Context, text, apiKey string) (model.Recipe, error) {
	if err := checkKey(apiKey); err != nil {
		return s.fail(ModeText, err)
	}
	if strings.TrimSpace(text) == "" {
		return s.fail(ModeText, ErrEmptyInput)
	}

	s.logger.Info("extract_started", "mode", ModeText, "text_chars", len(text))
	return s.extract(ctx, ModeText, apiKey, []llm.Part{llm.TextPart(textPrompt(text))})
}

// ExtractFromURL builds the prompt from an already fetched page. Fetching
// is the caller's job.
func (s *Service) ExtractFromURL(ctx context.Context, url, htmlContent, apiKey string) (model.Recipe, error) {
	if err := checkKey(apiKey); err != nil {
		return s.fail(ModeURL, err)
	}
	if strings.TrimSpace(htmlContent) == "" {
		return s.fail(ModeURL, ErrEmptyInput)
	}

	s.logger.Info("extract_started", "mode", ModeURL, "url", url, "page_chars", len(htmlContent))
	return s.extract(ctx, ModeURL, apiKey, []llm.Part{llm.TextPart(urlPrompt(url, htmlContent))})
}

// TranslateRecipe asks for fresh Swedish and Romanian content and merges
// whatever comes back into recipe.
func (s *Service) TranslateRecipe(ctx context.Context, recipe model.Recipe, apiKey string) (model.Recipe, error) {
	if err := checkKey(apiKey); err != nil {
		return s.fail(ModeTranslate, err)
	}

	recipeJSON, err := json.Marshal(recipe)
	if err != nil {
		return s.fail(ModeTranslate, fmt.Errorf("encode recipe: %w", err))
	}

	start := time.Now()
	s.logger.Info("extract_started", "mode", ModeTranslate, "recipe_id", recipe.ID)

	raw, err := s.llm.Complete(ctx, apiKey, []llm.Part{llm.TextPart(translatePrompt(string(recipeJSON)))})
	if err != nil {
		return s.fail(ModeTranslate, err)
	}
	s.logRaw(ModeTranslate, raw)

	t, err := ParseTranslation(ExtractJSONObject(raw))
	if err != nil {
		return s.fail(ModeTranslate, &ExtractionFailedError{Cause: err})
	}

	out := s.normalizer.ApplyTranslation(recipe, t)
	s.succeed(ModeTranslate, out, start)
	return out, nil
}

func (s *Service) extract(ctx context.Context, mode, apiKey string, parts []llm.Part) (model.Recipe, error) {
	start := time.Now()

	raw, err := s.llm.Complete(ctx, apiKey, parts)
	if err != nil {
		return s.fail(mode, err)
	}
	s.logRaw(mode, raw)

	parsed, err := ParseIntermediate(ExtractJSONObject(raw))
	if err != nil {
		return s.fail(mode, &ExtractionFailedError{Cause: err})
	}

	recipe := s.normalizer.ToRecipe(parsed)
	s.succeed(mode, recipe, start)
	return recipe, nil
}

func checkKey(apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func (s *Service) logRaw(mode, raw string) {
	preview := raw
	if r := []rune(preview); len(r) > 500 {
		preview = string(r[:500])
	}
	s.logger.Debug("extract_llm_response", "mode", mode, "chars", len(raw), "preview", preview)
}

func (s *Service) succeed(mode string, r model.Recipe, start time.Time) {
	metrics.RecordExtraction(mode, "success")
	s.logger.Info("extract_succeeded",
		"mode", mode,
		"recipe_id", r.ID,
		"title", r.TitleEnglish,
		"ingredients", len(r.IngredientsEnglish),
		"instructions", len(r.InstructionsEnglish),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (s *Service) fail(mode string, err error) (model.Recipe, error) {
	outcome := Outcome(err)
	metrics.RecordExtraction(mode, outcome)
	level := slog.LevelWarn
	if outcome == "canceled" {
		level = slog.LevelInfo
	}
	s.logger.Log(context.Background(), level, "extract_failed", "mode", mode, "outcome", outcome, "error", err)
	return model.Recipe{}, err
}

// Outcome names an error's place in the pipeline error taxonomy, for
// metrics and logs.
func Outcome(err error) string {
	var httpErr *transport.HTTPError
	var netErr *transport.NetworkError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrExtractionFailed):
		return "extraction_failed"
	case errors.Is(err, llm.ErrNoTextInResponse):
		return "no_text"
	case errors.Is(err, ErrMissingAPIKey):
		return "missing_api_key"
	case errors.Is(err, ErrEmptyInput), errors.Is(err, formats.ErrUnsupportedMediaType), errors.Is(err, scraper.ErrInvalidURL):
		return "invalid_input"
	case errors.Is(err, scraper.ErrTooManyRedirects):
		return "too_many_redirects"
	case errors.Is(err, scraper.ErrMissingLocationHeader):
		return "missing_location"
	case errors.Is(err, scraper.ErrDisallowedByRobots):
		return "robots_disallowed"
	case errors.Is(err, transport.ErrTimeout):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &httpErr):
		return "http_error"
	case errors.As(err, &netErr):
		return "network_error"
	default:
		return "error"
	}
}
