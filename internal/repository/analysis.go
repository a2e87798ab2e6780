package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
)

const (
	// DefaultListLimit applies when callers pass a non-positive limit
	DefaultListLimit = 20
	// MaxListLimit caps list and similarity queries
	MaxListLimit = 100
)

const analysisColumns = `id, provider, image_hash, confidence_score, details, emotions, latency_ms, created_at`

type AnalysisRepository struct {
	pool PgxPool
}

func NewAnalysisRepository(pool PgxPool) *AnalysisRepository {
	return &AnalysisRepository{pool: pool}
}

var _ AnalysisRepositoryInterface = (*AnalysisRepository)(nil)

func (r *AnalysisRepository) Create(ctx context.Context, analysis *domain.Analysis) error {
	query := `
		INSERT INTO analyses (id, provider, image_hash, confidence_score, dominant_emotion, details, emotions, emotion_vector, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING created_at
	`

	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}

	details, err := json.Marshal(analysis.Details)
	if err != nil {
		return fmt.Errorf("encode details: %w", err)
	}
	emotions, err := json.Marshal(analysis.Emotions)
	if err != nil {
		return fmt.Errorf("encode emotions: %w", err)
	}

	err = r.pool.QueryRow(ctx, query,
		analysis.ID,
		analysis.Provider,
		analysis.ImageHash,
		analysis.ConfidenceScore,
		string(analysis.Details.DominantEmotion),
		details,
		emotions,
		pgvector.NewVector(analysis.Emotions.Vector()),
		analysis.LatencyMs,
	).Scan(&analysis.CreatedAt)
	if err != nil {
		return fmt.Errorf("create analysis: %w", err)
	}

	return nil
}

func (r *AnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE id = $1`

	analysis, err := scanAnalysis(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAnalysisNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}

	return analysis, nil
}

// ListRecent returns the newest analyses first
func (r *AnalysisRepository) ListRecent(ctx context.Context, limit int) ([]domain.Analysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	analyses := make([]domain.Analysis, 0)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		analyses = append(analyses, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}

	return analyses, nil
}

// Similar ranks other analyses by euclidean distance between emotion distributions
func (r *AnalysisRepository) Similar(ctx context.Context, id uuid.UUID, limit int) ([]domain.SimilarAnalysis, error) {
	ref, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + analysisColumns + `, emotion_vector <-> $1 AS distance
		FROM analyses
		WHERE id <> $2
		ORDER BY distance
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, pgvector.NewVector(ref.Emotions.Vector()), id, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("similar analyses: %w", err)
	}
	defer rows.Close()

	results := make([]domain.SimilarAnalysis, 0)
	for rows.Next() {
		var (
			a                 domain.Analysis
			details, emotions []byte
			distance          float64
		)
		if err := rows.Scan(&a.ID, &a.Provider, &a.ImageHash, &a.ConfidenceScore, &details, &emotions, &a.LatencyMs, &a.CreatedAt, &distance); err != nil {
			return nil, fmt.Errorf("scan similar analysis: %w", err)
		}
		if err := decodeJSONColumns(&a, details, emotions); err != nil {
			return nil, err
		}
		results = append(results, domain.SimilarAnalysis{Analysis: a, Distance: distance})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("similar analyses: %w", err)
	}

	return results, nil
}

func scanAnalysis(row pgx.Row) (*domain.Analysis, error) {
	var (
		a                 domain.Analysis
		details, emotions []byte
	)

	if err := row.Scan(&a.ID, &a.Provider, &a.ImageHash, &a.ConfidenceScore, &details, &emotions, &a.LatencyMs, &a.CreatedAt); err != nil {
		return nil, err
	}
	if err := decodeJSONColumns(&a, details, emotions); err != nil {
		return nil, err
	}

	return &a, nil
}

func decodeJSONColumns(a *domain.Analysis, details, emotions []byte) error {
	if err := json.Unmarshal(details, &a.Details); err != nil {
		return fmt.Errorf("decode details: %w", err)
	}
	if err := json.Unmarshal(emotions, &a.Emotions); err != nil {
		return fmt.Errorf("decode emotions: %w", err)
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
