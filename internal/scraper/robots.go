package scraper

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	robotstxt "github.com/temoto/robotstxt"
)

// robotsCache holds the parsed robots.txt per scheme and host for one
// fetch. A nil entry means the host has no usable robots.txt.
type robotsCache map[string]*robotstxt.RobotsData

// allowedByRobots reports whether the site's robots.txt permits fetching u.
// A missing or unreadable robots.txt allows everything.
func (f *HTTPFetcher) allowedByRobots(ctx context.Context, u *url.URL, cache robotsCache) bool {
	key := u.Scheme + "://" + u.Host
	data, ok := cache[key]
	if !ok {
		data, _ = fetchRobots(ctx, f.robotsClient, u, f.opts.UserAgent)
		cache[key] = data
	}
	if data == nil {
		return true
	}
	return data.TestAgent(u.RequestURI(), f.opts.UserAgent)
}

func fetchRobots(ctx context.Context, client *http.Client, base *url.URL, userAgent string) (*robotstxt.RobotsData, error) {
	robotsURL := &url.URL{
		Scheme: base.Scheme,
		Host:   base.Host,
		Path:   "/robots.txt",
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return nil, err
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("non-200 robots.txt")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512<<10))
	if err != nil {
		return nil, err
	}

	return robotstxt.FromStatusAndBytes(resp.StatusCode, body)
}
