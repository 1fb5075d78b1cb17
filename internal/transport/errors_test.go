package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	ctx := context.Background()

	if Classify(ctx, nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
	if got := Classify(ctx, fmt.Errorf("wrapped: %w", context.DeadlineExceeded)); !errors.Is(got, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", got)
	}
	if got := Classify(ctx, timeoutErr{}); !errors.Is(got, ErrTimeout) {
		t.Fatalf("expected ErrTimeout for net timeout, got %v", got)
	}

	var netErr *NetworkError
	if got := Classify(ctx, errors.New("connection refused")); !errors.As(got, &netErr) {
		t.Fatalf("expected NetworkError, got %T", got)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if got := Classify(cancelled, errors.New("whatever")); !errors.Is(got, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", got)
	}
}

func TestNewClientManualRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer srv.Close()

	resp, err := NewClient(time.Second, true).Get(srv.URL)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect response to be returned, got %d", resp.StatusCode)
	}
}

func TestHTTPErrorMessage(t *testing.T) {
	err := &HTTPError{StatusCode: 503, Body: "down"}
	if err.Error() != "http error 503" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
