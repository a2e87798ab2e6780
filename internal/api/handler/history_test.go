package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/metamind/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
)

type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) Get(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Analysis), args.Error(1)
}

func (m *MockHistoryService) List(ctx context.Context, limit int) ([]domain.Analysis, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Analysis), args.Error(1)
}

func (m *MockHistoryService) Similar(ctx context.Context, id uuid.UUID, limit int) ([]domain.SimilarAnalysis, error) {
	args := m.Called(ctx, id, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SimilarAnalysis), args.Error(1)
}

func newHistoryApp(svc HistoryService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(testLogger())})
	h := NewHistoryHandler(svc)
	app.Get("/v1/analyses", h.List)
	app.Get("/v1/analyses/:id", h.Get)
	app.Get("/v1/analyses/:id/similar", h.Similar)
	return app
}

func getJSON(t *testing.T, app *fiber.App, path string) (int, map[string]interface{}) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)

	raw, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))

	return resp.StatusCode, out
}

func TestHistoryHandler_Get(t *testing.T) {
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		svc := new(MockHistoryService)
		svc.On("Get", mock.Anything, id).Return(&domain.Analysis{ID: id, ConfidenceScore: 64.2}, nil)

		status, body := getJSON(t, newHistoryApp(svc), "/v1/analyses/"+id.String())
		assert.Equal(t, 200, status)
		assert.Equal(t, 64.2, body["confidence_score"])
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockHistoryService)
		svc.On("Get", mock.Anything, id).Return(nil, domain.ErrAnalysisNotFound)

		status, body := getJSON(t, newHistoryApp(svc), "/v1/analyses/"+id.String())
		assert.Equal(t, 404, status)
		assert.Equal(t, "ANALYSIS_NOT_FOUND", errorCode(body))
	})

	t.Run("bad id", func(t *testing.T) {
		svc := new(MockHistoryService)

		status, body := getJSON(t, newHistoryApp(svc), "/v1/analyses/not-a-uuid")
		assert.Equal(t, 400, status)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
	})
}

func TestHistoryHandler_List(t *testing.T) {
	t.Run("default limit", func(t *testing.T) {
		svc := new(MockHistoryService)
		svc.On("List", mock.Anything, 20).Return([]domain.Analysis{{ID: uuid.New()}, {ID: uuid.New()}}, nil)

		status, body := getJSON(t, newHistoryApp(svc), "/v1/analyses")
		assert.Equal(t, 200, status)
		assert.Equal(t, 2.0, body["count"])
		svc.AssertExpectations(t)
	})

	t.Run("explicit limit", func(t *testing.T) {
		svc := new(MockHistoryService)
		svc.On("List", mock.Anything, 5).Return([]domain.Analysis{}, nil)

		status, _ := getJSON(t, newHistoryApp(svc), "/v1/analyses?limit=5")
		assert.Equal(t, 200, status)
		svc.AssertExpectations(t)
	})

	t.Run("limit too large", func(t *testing.T) {
		svc := new(MockHistoryService)

		status, body := getJSON(t, newHistoryApp(svc), "/v1/analyses?limit=1000")
		assert.Equal(t, 400, status)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
	})
}

func TestHistoryHandler_Similar(t *testing.T) {
	id := uuid.New()
	svc := new(MockHistoryService)
	svc.On("Similar", mock.Anything, id, 3).Return([]domain.SimilarAnalysis{
		{Analysis: domain.Analysis{ID: uuid.New()}, Distance: 4.2},
	}, nil)

	status, body := getJSON(t, newHistoryApp(svc), "/v1/analyses/"+id.String()+"/similar?limit=3")
	assert.Equal(t, 200, status)
	assert.Equal(t, 1.0, body["count"])

	items := body["items"].([]interface{})
	first := items[0].(map[string]interface{})
	assert.Equal(t, 4.2, first["distance"])
	svc.AssertExpectations(t)
}
