package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"recipebox/internal/config"
)

type fakePruner struct {
	cutoff  time.Time
	calls   int
	deleted int64
	err     error
}

func (f *fakePruner) DeleteExpiredExtractions(_ context.Context, cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	return f.deleted, f.err
}

func TestCleanupExpiredData_UsesConfiguredDays(t *testing.T) {
	cfg := &config.Config{}
	cfg.Retention.ExtractionDays = 7
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	p := &fakePruner{deleted: 3}

	stats, err := CleanupExpiredData(context.Background(), cfg, p, now)
	if err != nil {
		t.Fatalf("CleanupExpiredData error: %v", err)
	}
	if stats.ExtractionsDeleted != 3 {
		t.Fatalf("expected 3 deleted, got %d", stats.ExtractionsDeleted)
	}
	want := time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC)
	if !p.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %v, got %v", want, p.cutoff)
	}
}

func TestCleanupExpiredData_DisabledWhenZeroDays(t *testing.T) {
	cfg := &config.Config{}
	p := &fakePruner{}

	if _, err := CleanupExpiredData(context.Background(), cfg, p, time.Now()); err != nil {
		t.Fatalf("CleanupExpiredData error: %v", err)
	}
	if p.calls != 0 {
		t.Fatalf("expected no store calls when retention is disabled, got %d", p.calls)
	}
}

func TestRunnerRunOnce_SwallowsStoreErrors(t *testing.T) {
	cfg := &config.Config{}
	cfg.Retention.ExtractionDays = 1
	p := &fakePruner{err: errors.New("db down")}

	r := NewRunner(cfg, p, nil)
	stats := r.RunOnce(context.Background())
	if stats.ExtractionsDeleted != 0 {
		t.Fatalf("expected no deletions on error, got %d", stats.ExtractionsDeleted)
	}
	if p.calls != 1 {
		t.Fatalf("expected one store call, got %d", p.calls)
	}
}

func TestRunnerStart_StopsOnCancel(t *testing.T) {
	cfg := &config.Config{}
	cfg.Retention.ExtractionDays = 1
	cfg.Retention.IntervalMinutes = 60
	p := &fakePruner{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		NewRunner(cfg, p, nil).Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not stop after cancel")
	}
	if p.calls != 1 {
		t.Fatalf("expected the initial cleanup pass, got %d calls", p.calls)
	}
}
