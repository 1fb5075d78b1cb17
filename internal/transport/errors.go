package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// ErrTimeout is returned when a connect or read deadline expires.
var ErrTimeout = errors.New("request timed out")

// HTTPError is a non-2xx response from a remote endpoint.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error %d", e.StatusCode)
}

// NetworkError wraps DNS, connect and other transport failures.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Classify maps an error returned by http.Client.Do (or a body read) onto
// the shared taxonomy. Caller cancellation is returned unchanged.
func Classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || (ctx != nil && errors.Is(ctx.Err(), context.Canceled)) {
		return context.Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return &NetworkError{Err: err}
}

// NewClient returns an http.Client that never follows redirects on its own
// when manualRedirects is set.
func NewClient(timeout time.Duration, manualRedirects bool) *http.Client {
	c := &http.Client{Timeout: timeout}
	if manualRedirects {
		c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return c
}
