package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"recipebox/internal/metrics"
	"recipebox/internal/transport"
)

var (
	ErrTooManyRedirects      = errors.New("too many redirects")
	ErrMissingLocationHeader = errors.New("redirect response without Location header")
	ErrDisallowedByRobots    = errors.New("url disallowed by robots.txt")
	ErrInvalidURL            = errors.New("invalid url")
)

// Fetcher retrieves the HTML text of a page.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// HTTPFetcher fetches pages over net/http and follows redirects itself so
// the hop bound and relative Location resolution stay under its control.
type HTTPFetcher struct {
	client *http.Client
	// robotsClient follows redirects, unlike client.
	robotsClient *http.Client
	opts         Options
}

func NewHTTPFetcher(opts Options) *HTTPFetcher {
	opts = opts.withDefaults()
	return &HTTPFetcher{
		client:       transport.NewClient(opts.Timeout, true),
		robotsClient: transport.NewClient(opts.Timeout, false),
		opts:         opts,
	}
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// NormalizeURL parses rawURL, defaulting to https when no scheme is given.
func NormalizeURL(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("%w: empty url", ErrInvalidURL)
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidURL, rawURL)
	}
	return u, nil
}

// Fetch GETs rawURL and returns the final body decoded as UTF-8. Up to
// MaxRedirects redirect hops are followed; one more fails with
// ErrTooManyRedirects.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	current, err := NormalizeURL(rawURL)
	if err != nil {
		return "", err
	}

	robots := robotsCache{}
	for hop := 0; ; hop++ {
		// Every hop is checked, not just the URL the caller asked for.
		if f.opts.RespectRobots && !f.allowedByRobots(ctx, current, robots) {
			metrics.RecordFetch("http", "robots_disallowed")
			return "", ErrDisallowedByRobots
		}

		resp, err := f.get(ctx, current)
		if err != nil {
			err = transport.Classify(ctx, err)
			metrics.RecordFetch("http", outcomeFor(err))
			return "", err
		}

		if isRedirect(resp.StatusCode) {
			location := resp.Header.Get("Location")
			drain(resp)
			if location == "" {
				metrics.RecordFetch("http", "missing_location")
				return "", ErrMissingLocationHeader
			}
			if hop >= f.opts.MaxRedirects {
				metrics.RecordFetch("http", "too_many_redirects")
				return "", ErrTooManyRedirects
			}
			next, err := current.Parse(location)
			if err != nil {
				metrics.RecordFetch("http", "error")
				return "", fmt.Errorf("invalid redirect location %q: %w", location, err)
			}
			f.log().Debug("fetch_redirect",
				"from", current.String(),
				"to", next.String(),
				"status", resp.StatusCode,
				"hop", hop+1,
			)
			metrics.RecordFetchRedirect()
			current = next
			continue
		}

		body, err := f.readBody(resp)
		resp.Body.Close()
		if err != nil {
			err = transport.Classify(ctx, err)
			metrics.RecordFetch("http", outcomeFor(err))
			return "", err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			metrics.RecordFetch("http", "http_error")
			return "", &transport.HTTPError{StatusCode: resp.StatusCode, Body: body}
		}

		metrics.RecordFetch("http", "success")
		return body, nil
	}
}

func (f *HTTPFetcher) get(ctx context.Context, u *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	for k, v := range f.opts.headers() {
		req.Header.Set(k, v)
	}
	return f.client.Do(req)
}

func (f *HTTPFetcher) readBody(resp *http.Response) (string, error) {
	var r io.Reader = resp.Body
	if f.opts.MaxBodyBytes > 0 {
		r = io.LimitReader(resp.Body, f.opts.MaxBodyBytes)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(b), "�"), nil
}

func (f *HTTPFetcher) log() *slog.Logger {
	if f.opts.Logger != nil {
		return f.opts.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, transport.ErrTimeout):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "network_error"
	}
}
