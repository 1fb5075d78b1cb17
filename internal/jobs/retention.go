package jobs

import (
	"context"
	"time"

	"recipebox/internal/config"
	"recipebox/internal/metrics"
)

// ExtractionPruner deletes extraction log rows older than a cutoff.
// *store.Store satisfies it.
type ExtractionPruner interface {
	DeleteExpiredExtractions(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionStats captures the number of records deleted by TTL cleanup.
type RetentionStats struct {
	ExtractionsDeleted int64 `json:"extractionsDeleted"`
}

// CleanupExpiredData deletes extraction log rows past the configured
// retention so that the table does not grow without bound.
func CleanupExpiredData(ctx context.Context, cfg *config.Config, st ExtractionPruner, now time.Time) (RetentionStats, error) {
	var stats RetentionStats
	if cfg.Retention.ExtractionDays <= 0 {
		return stats, nil
	}

	cutoff := now.UTC().AddDate(0, 0, -cfg.Retention.ExtractionDays)
	n, err := st.DeleteExpiredExtractions(ctx, cutoff)
	if err != nil {
		return stats, err
	}
	if n > 0 {
		stats.ExtractionsDeleted = n
		metrics.RecordRetentionExtractions(n)
	}
	return stats, nil
}
