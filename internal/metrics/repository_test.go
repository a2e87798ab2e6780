package metrics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_Summary(t *testing.T) {
	since := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("aggregates counts and averages", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\),.*FROM analyses\s+WHERE created_at >= \$1`).
			WithArgs(since).
			WillReturnRows(pgxmock.NewRows([]string{"count", "avg_confidence", "avg_latency"}).
				AddRow(int64(3), 71.5, 120.0))
		mock.ExpectQuery(`SELECT dominant_emotion, COUNT\(\*\)`).
			WithArgs(since).
			WillReturnRows(pgxmock.NewRows([]string{"dominant_emotion", "count"}).
				AddRow("happy", int64(2)).
				AddRow("sad", int64(1)))
		mock.ExpectQuery(`SELECT provider, COUNT\(\*\)`).
			WithArgs(since).
			WillReturnRows(pgxmock.NewRows([]string{"provider", "count"}).
				AddRow("deepface", int64(3)))

		got, err := NewRepository(mock).Summary(context.Background(), since)
		require.NoError(t, err)

		assert.Equal(t, since, got.Since)
		assert.Equal(t, int64(3), got.Total)
		assert.InDelta(t, 71.5, got.AvgConfidence, 1e-9)
		assert.InDelta(t, 120.0, got.AvgLatencyMs, 1e-9)
		assert.Equal(t, map[string]int64{"happy": 2, "sad": 1}, got.ByEmotion)
		assert.Equal(t, map[string]int64{"deepface": 3}, got.ByProvider)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty window skips grouping", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\)`).
			WithArgs(since).
			WillReturnRows(pgxmock.NewRows([]string{"count", "avg_confidence", "avg_latency"}).
				AddRow(int64(0), 0.0, 0.0))

		got, err := NewRepository(mock).Summary(context.Background(), since)
		require.NoError(t, err)

		assert.Zero(t, got.Total)
		assert.Empty(t, got.ByEmotion)
		assert.NotNil(t, got.ByProvider)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\)`).
			WithArgs(since).
			WillReturnError(errors.New("connection reset"))

		_, err = NewRepository(mock).Summary(context.Background(), since)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query summary")
	})

	t.Run("group error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\)`).
			WithArgs(since).
			WillReturnRows(pgxmock.NewRows([]string{"count", "avg_confidence", "avg_latency"}).
				AddRow(int64(1), 50.0, 10.0))
		mock.ExpectQuery(`SELECT dominant_emotion, COUNT\(\*\)`).
			WithArgs(since).
			WillReturnError(errors.New("boom"))

		_, err = NewRepository(mock).Summary(context.Background(), since)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "count by dominant_emotion")
	})
}

func TestRepository_DeleteOlderThan(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM analyses\s+WHERE created_at < \$1`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	deleted, err := NewRepository(mock).DeleteOlderThan(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPruner_RunsImmediatelyAndStops(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM analyses`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pruner := NewPruner(NewRepository(mock), logger, time.Hour, time.Hour)

	done := make(chan struct{})
	go func() {
		pruner.Start(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool {
		return mock.ExpectationsWereMet() == nil
	}, time.Second, 10*time.Millisecond)

	pruner.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pruner did not stop")
	}
}

func TestPruner_ErrorIsLogged(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM analyses`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(errors.New("read only"))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pruner := NewPruner(NewRepository(mock), logger, time.Hour, 0)
	assert.Equal(t, time.Hour, pruner.interval)

	pruner.prune(context.Background())
	assert.NoError(t, mock.ExpectationsWereMet())
}
