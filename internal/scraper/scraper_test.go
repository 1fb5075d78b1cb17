package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebox/internal/transport"
)

// chainServer redirects /hop/<n> to /hop/<n-1> until n reaches zero.
func chainServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/hop/"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if n > 0 {
			w.Header().Set("Location", fmt.Sprintf("/hop/%d", n-1))
			w.WriteHeader(http.StatusFound)
			return
		}
		fmt.Fprint(w, "<html>final</html>")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchFollowsFiveRedirects(t *testing.T) {
	srv := chainServer(t)
	f := NewHTTPFetcher(Options{})

	body, err := f.Fetch(context.Background(), srv.URL+"/hop/5")
	require.NoError(t, err)
	assert.Equal(t, "<html>final</html>", body)
}

func TestFetchFailsOnSixthRedirect(t *testing.T) {
	srv := chainServer(t)
	f := NewHTTPFetcher(Options{})

	_, err := f.Fetch(context.Background(), srv.URL+"/hop/6")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManyRedirects)
}

func TestFetchResolvesRelativeLocation(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Host+r.URL.Path)
		switch r.URL.Path {
		case "/old/recipe":
			w.Header().Set("Location", "/new-path")
			w.WriteHeader(http.StatusMovedPermanently)
		case "/new-path":
			fmt.Fprint(w, "<html>...</html>")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	body, err := NewHTTPFetcher(Options{}).Fetch(context.Background(), srv.URL+"/old/recipe")
	require.NoError(t, err)
	assert.Equal(t, "<html>...</html>", body)
	require.Len(t, seen, 2)
	assert.Equal(t, strings.TrimPrefix(srv.URL, "http://")+"/new-path", seen[1])
}

func TestFetchRedirectStatuses(t *testing.T) {
	for _, status := range []int{301, 302, 303, 307, 308} {
		t.Run(strconv.Itoa(status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/start" {
					w.Header().Set("Location", "done")
					w.WriteHeader(status)
					return
				}
				fmt.Fprint(w, "ok")
			}))
			defer srv.Close()

			body, err := NewHTTPFetcher(Options{}).Fetch(context.Background(), srv.URL+"/start")
			require.NoError(t, err)
			assert.Equal(t, "ok", body)
		})
	}
}

func TestFetchMissingLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(Options{}).Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrMissingLocationHeader)
}

func TestFetchHTTPErrorCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "blocked")
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(Options{}).Fetch(context.Background(), srv.URL)
	var httpErr *transport.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
	assert.Equal(t, "blocked", httpErr.Body)
}

func TestFetchSendsBrowserHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(Options{}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, got.Get("User-Agent"))
	assert.Equal(t, DefaultAccept, got.Get("Accept"))
	assert.Equal(t, DefaultAcceptLanguage, got.Get("Accept-Language"))
	assert.Equal(t, "1", got.Get("Upgrade-Insecure-Requests"))
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewHTTPFetcher(Options{Timeout: 50 * time.Millisecond}).Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, transport.ErrTimeout)
}

func TestFetchCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := NewHTTPFetcher(Options{}).Fetch(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewHTTPFetcher(Options{}).Fetch(context.Background(), addr)
	var netErr *transport.NetworkError
	assert.True(t, errors.As(err, &netErr), "expected NetworkError, got %v", err)
}

func TestFetchDecodesInvalidUTF8(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte{'c', 'a', 'f', 0xe9})
	}))
	defer srv.Close()

	body, err := NewHTTPFetcher(Options{}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "caf�", body)
}

func TestFetchRespectsRobots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	f := NewHTTPFetcher(Options{RespectRobots: true})

	_, err := f.Fetch(context.Background(), srv.URL+"/private/recipe")
	assert.ErrorIs(t, err, ErrDisallowedByRobots)

	body, err := f.Fetch(context.Background(), srv.URL+"/public/recipe")
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
}

func TestFetchReadsRedirectedRobots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			http.Redirect(w, r, "/canonical/robots.txt", http.StatusMovedPermanently)
		case "/canonical/robots.txt":
			fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
		default:
			fmt.Fprint(w, "ok")
		}
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(Options{RespectRobots: true}).Fetch(context.Background(), srv.URL+"/private/recipe")
	assert.ErrorIs(t, err, ErrDisallowedByRobots)
}

func TestFetchChecksRobotsOnRedirectTarget(t *testing.T) {
	var robotsHits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			robotsHits++
			fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
		case "/go":
			http.Redirect(w, r, "/private/recipe", http.StatusFound)
		default:
			fmt.Fprint(w, "secret")
		}
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(Options{RespectRobots: true}).Fetch(context.Background(), srv.URL+"/go")
	assert.ErrorIs(t, err, ErrDisallowedByRobots)
	assert.Equal(t, 1, robotsHits, "robots.txt should be fetched once per host")
}

func TestNormalizeURL(t *testing.T) {
	u, err := NormalizeURL("example.com/pancakes")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/pancakes", u.String())

	_, err = NormalizeURL("ftp://example.com/file")
	assert.ErrorIs(t, err, ErrInvalidURL)

	_, err = NormalizeURL("   ")
	assert.ErrorIs(t, err, ErrInvalidURL)
}
