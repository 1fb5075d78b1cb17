package scraper

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"recipebox/internal/metrics"
	"recipebox/internal/transport"
)

// BrowserFetcher renders pages in a real browser (via rod) before reading
// their HTML. It is used for recipe sites that build content with JS.
type BrowserFetcher struct {
	BrowserURL string
	Timeout    time.Duration
	UserAgent  string
}

func NewBrowserFetcher(browserURL string, timeout time.Duration, userAgent string) *BrowserFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &BrowserFetcher{BrowserURL: browserURL, Timeout: timeout, UserAgent: userAgent}
}

func (b *BrowserFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := NormalizeURL(rawURL)
	if err != nil {
		return "", err
	}

	browser := rod.New().Context(ctx).Timeout(b.Timeout)
	if b.BrowserURL != "" {
		browser = browser.ControlURL(b.BrowserURL)
	}

	if err := browser.Connect(); err != nil {
		metrics.RecordFetch("browser", "network_error")
		return "", &transport.NetworkError{Err: err}
	}
	defer func() { _ = browser.Close() }()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", b.fail(ctx, err)
	}
	// Close runs on the page context, which may already be expired here.
	defer func() { _ = page.Close() }()

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.UserAgent}); err != nil {
		return "", b.fail(ctx, err)
	}
	if err := page.Navigate(u.String()); err != nil {
		return "", b.fail(ctx, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", b.fail(ctx, err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", b.fail(ctx, err)
	}

	metrics.RecordFetch("browser", "success")
	return html, nil
}

func (b *BrowserFetcher) fail(ctx context.Context, err error) error {
	err = transport.Classify(ctx, err)
	metrics.RecordFetch("browser", outcomeFor(err))
	return err
}
