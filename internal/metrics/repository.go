package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/saturnino-fabrica-de-software/metamind/internal/repository"
)

// Summary aggregates persisted analyses over a time window
type Summary struct {
	Since         time.Time        `json:"since"`
	Total         int64            `json:"total"`
	AvgConfidence float64          `json:"avg_confidence"`
	AvgLatencyMs  float64          `json:"avg_latency_ms"`
	ByEmotion     map[string]int64 `json:"by_dominant_emotion"`
	ByProvider    map[string]int64 `json:"by_provider"`
}

// Repository computes history statistics straight from the analyses table
type Repository struct {
	pool repository.PgxPool
}

func NewRepository(pool repository.PgxPool) *Repository {
	return &Repository{pool: pool}
}

// Summary returns counts and averages for analyses created at or after since
func (r *Repository) Summary(ctx context.Context, since time.Time) (*Summary, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(AVG(confidence_score), 0),
		       COALESCE(AVG(latency_ms), 0)
		FROM analyses
		WHERE created_at >= $1
	`

	summary := &Summary{
		Since:      since.UTC(),
		ByEmotion:  map[string]int64{},
		ByProvider: map[string]int64{},
	}

	err := r.pool.QueryRow(ctx, query, since).Scan(
		&summary.Total,
		&summary.AvgConfidence,
		&summary.AvgLatencyMs,
	)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}

	if summary.Total == 0 {
		return summary, nil
	}

	if err := r.countBy(ctx, "dominant_emotion", since, summary.ByEmotion); err != nil {
		return nil, err
	}
	if err := r.countBy(ctx, "provider", since, summary.ByProvider); err != nil {
		return nil, err
	}

	return summary, nil
}

// countBy groups on a fixed column name, never on caller input
func (r *Repository) countBy(ctx context.Context, column string, since time.Time, into map[string]int64) error {
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*)
		FROM analyses
		WHERE created_at >= $1
		GROUP BY %s
	`, column, column)

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return fmt.Errorf("count by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("scan %s count: %w", column, err)
		}
		into[key] = count
	}

	return rows.Err()
}

// DeleteOlderThan removes analyses older than the given age
func (r *Repository) DeleteOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
		DELETE FROM analyses
		WHERE created_at < $1
	`

	cutoff := time.Now().Add(-olderThan)
	result, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}
