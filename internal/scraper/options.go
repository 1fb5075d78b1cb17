package scraper

import (
	"log/slog"
	"time"
)

const (
	DefaultUserAgent      = "Mozilla/5.0 (Linux; Android 13) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	DefaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	DefaultAcceptLanguage = "en-US,en;q=0.9"
	DefaultTimeout        = 15 * time.Second
	DefaultMaxRedirects   = 5
)

// Options controls how pages are fetched. Zero values fall back to the
// defaults above.
type Options struct {
	UserAgent      string
	AcceptLanguage string
	Timeout        time.Duration
	MaxRedirects   int
	// MaxBodyBytes caps how much of a response body is read; 0 means no cap.
	MaxBodyBytes  int64
	RespectRobots bool
	Logger        *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.AcceptLanguage == "" {
		o.AcceptLanguage = DefaultAcceptLanguage
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxRedirects <= 0 {
		o.MaxRedirects = DefaultMaxRedirects
	}
	return o
}

// headers returns the browser-like request headers sent with every fetch.
func (o Options) headers() map[string]string {
	return map[string]string{
		"User-Agent":                o.UserAgent,
		"Accept":                    DefaultAccept,
		"Accept-Language":           o.AcceptLanguage,
		"Upgrade-Insecure-Requests": "1",
	}
}
