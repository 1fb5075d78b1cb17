package jobs

import (
	"context"
	"log/slog"
	"time"

	"recipebox/internal/config"
)

// Runner periodically applies retention to the extraction log.
type Runner struct {
	cfg    *config.Config
	store  ExtractionPruner
	logger *slog.Logger
	now    func() time.Time
}

func NewRunner(cfg *config.Config, st ExtractionPruner, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{cfg: cfg, store: st, logger: logger, now: time.Now}
}

// Start runs cleanup once immediately and then on every interval until ctx
// is done. Callers typically run this in its own goroutine.
func (r *Runner) Start(ctx context.Context) {
	if r.cfg.Retention.ExtractionDays <= 0 {
		return
	}

	interval := time.Duration(r.cfg.Retention.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		r.RunOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single cleanup pass and logs the result.
func (r *Runner) RunOnce(ctx context.Context) RetentionStats {
	stats, err := CleanupExpiredData(ctx, r.cfg, r.store, r.now())
	if err != nil {
		r.logger.Warn("retention_failed", "error", err)
		return stats
	}
	if stats.ExtractionsDeleted > 0 {
		r.logger.Info("retention_cleanup", "extractions_deleted", stats.ExtractionsDeleted)
	}
	return stats
}
