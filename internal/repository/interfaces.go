package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
)

// PgxPool is the subset of *pgxpool.Pool used by repositories (and by pgxmock)
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// AnalysisRepositoryInterface defines operations for analysis history
type AnalysisRepositoryInterface interface {
	Create(ctx context.Context, analysis *domain.Analysis) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Analysis, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Analysis, error)
	Similar(ctx context.Context, id uuid.UUID, limit int) ([]domain.SimilarAnalysis, error)
}
