package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"recipebox/internal/extract"
	"recipebox/internal/formats"
	"recipebox/internal/model"
	"recipebox/internal/scraper"
	"recipebox/internal/store"
)

// PhotoArchive keeps the source photo of an image extraction.
type PhotoArchive interface {
	Upload(ctx context.Context, recipeID string, data []byte, mediaType string) (string, error)
}

// ExtractionLog records one row per pipeline run.
type ExtractionLog interface {
	RecordExtraction(ctx context.Context, rec store.ExtractionRecord) error
}

// DraftStore holds extracted recipes until the user saves them.
type DraftStore interface {
	Put(ctx context.Context, r model.Recipe) error
}

// FetchError marks a failure to retrieve the page, as opposed to a failure
// of the model call that follows it.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return "fetch " + e.URL + ": " + e.Err.Error() }

func (e *FetchError) Unwrap() error { return e.Err }

// ImporterOptions configures an Importer. Only Extractor and Fetcher are
// required.
type ImporterOptions struct {
	Extractor *extract.Service
	Fetcher   scraper.Fetcher
	// Browser renders pages with JS when a request asks for it.
	Browser      scraper.Fetcher
	Photos       PhotoArchive
	Log          ExtractionLog
	Drafts       DraftStore
	PageFormat   formats.PageFormat
	MaxPageChars int
	Logger       *slog.Logger
}

// Importer turns user input into a recipe draft: it fetches pages, runs the
// extraction pipeline, attaches provenance and records the outcome.
type Importer struct {
	opts ImporterOptions
}

func NewImporter(opts ImporterOptions) *Importer {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.PageFormat == "" {
		opts.PageFormat = formats.PageHTML
	}
	return &Importer{opts: opts}
}

// BrowserEnabled reports whether JS rendering is available.
func (i *Importer) BrowserEnabled() bool {
	return i.opts.Browser != nil
}

func (i *Importer) ImportText(ctx context.Context, text, apiKey string) (model.Recipe, error) {
	start := time.Now()
	r, err := i.opts.Extractor.ExtractFromText(ctx, text, apiKey)
	if err == nil {
		r.Source = &model.Source{Type: model.SourceText}
	}
	return i.finish(ctx, extract.ModeText, "text", r, err, start)
}

// ImportURL fetches the page and extracts a recipe from it. The API key is
// checked before any network traffic.
func (i *Importer) ImportURL(ctx context.Context, rawURL string, useBrowser bool, apiKey string) (model.Recipe, error) {
	start := time.Now()
	if strings.TrimSpace(apiKey) == "" {
		return i.finish(ctx, extract.ModeURL, rawURL, model.Recipe{}, extract.ErrMissingAPIKey, start)
	}

	u, err := scraper.NormalizeURL(rawURL)
	if err != nil {
		return i.finish(ctx, extract.ModeURL, rawURL, model.Recipe{}, err, start)
	}
	target := u.String()

	fetcher := i.opts.Fetcher
	if useBrowser && i.opts.Browser != nil {
		fetcher = i.opts.Browser
	}
	html, err := fetcher.Fetch(ctx, target)
	if err != nil {
		return i.finish(ctx, extract.ModeURL, target, model.Recipe{}, &FetchError{URL: target, Err: err}, start)
	}

	content := html
	if i.opts.PageFormat == formats.PageMarkdown {
		content = scraper.ParsePage(html, target).PromptContent(i.opts.MaxPageChars)
	}

	r, err := i.opts.Extractor.ExtractFromURL(ctx, target, content, apiKey)
	if err == nil {
		r.Source = &model.Source{Type: model.SourceURL, URL: target}
	}
	return i.finish(ctx, extract.ModeURL, target, r, err, start)
}

// ImportImage extracts a recipe from a photo and archives the photo when an
// archive is configured. Archive failures are logged only.
func (i *Importer) ImportImage(ctx context.Context, data []byte, mimeType, apiKey string) (model.Recipe, error) {
	start := time.Now()
	r, err := i.opts.Extractor.ExtractFromImage(ctx, data, mimeType, apiKey)
	if err == nil {
		r.Source = &model.Source{Type: model.SourceImage}
		if i.opts.Photos != nil {
			mediaType, _ := formats.ImageMediaType(mimeType, data)
			key, upErr := i.opts.Photos.Upload(ctx, r.ID, data, mediaType)
			if upErr != nil {
				i.opts.Logger.Warn("photo_upload_failed", "recipe_id", r.ID, "error", upErr)
			} else {
				r.Source.PhotoKey = key
			}
		}
	}
	return i.finish(ctx, extract.ModeImage, "image", r, err, start)
}

// Translate refreshes the Swedish and Romanian content of a recipe.
func (i *Importer) Translate(ctx context.Context, recipe model.Recipe, apiKey string) (model.Recipe, error) {
	start := time.Now()
	r, err := i.opts.Extractor.TranslateRecipe(ctx, recipe, apiKey)
	if err != nil {
		i.record(ctx, extract.ModeTranslate, recipe.ID, model.Recipe{}, err, start)
		return model.Recipe{}, err
	}
	i.record(ctx, extract.ModeTranslate, recipe.ID, r, nil, start)
	return r, nil
}

func (i *Importer) finish(ctx context.Context, mode, source string, r model.Recipe, err error, start time.Time) (model.Recipe, error) {
	i.record(ctx, mode, source, r, err, start)
	if err != nil {
		return model.Recipe{}, err
	}
	if i.opts.Drafts != nil {
		if dErr := i.opts.Drafts.Put(ctx, r); dErr != nil {
			i.opts.Logger.Warn("draft_save_failed", "recipe_id", r.ID, "error", dErr)
		}
	}
	return r, nil
}

func (i *Importer) record(ctx context.Context, mode, source string, r model.Recipe, err error, start time.Time) {
	if i.opts.Log == nil {
		return
	}
	rec := store.ExtractionRecord{
		Mode:       mode,
		Source:     source,
		Outcome:    extract.Outcome(err),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		rec.Error = err.Error()
	} else {
		rec.RecipeID = r.ID
		rec.Output = &r
	}
	// The request context may already be canceled; the log row is still wanted.
	if lErr := i.opts.Log.RecordExtraction(context.WithoutCancel(ctx), rec); lErr != nil {
		i.opts.Logger.Warn("extraction_log_failed", "mode", mode, "error", lErr)
	}
}
