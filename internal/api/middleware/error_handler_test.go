package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantLogged bool
	}{
		{"app error", domain.ErrNoFaceDetected, 422, "NO_FACE_DETECTED", false},
		{"wrapped app error", fmt.Errorf("analyze: %w", domain.ErrInvalidImage.WithError(errors.New("bad"))), 422, "INVALID_IMAGE", false},
		{"provider unavailable is logged", domain.ErrProviderUnavailable.WithError(errors.New("dial tcp")), 502, "PROVIDER_UNAVAILABLE", true},
		{"fiber error", fiber.ErrMethodNotAllowed, 405, "HTTP_ERROR", false},
		{"app error wrapping fiber error", domain.ErrValidationFailed.WithError(fiber.NewError(fiber.StatusBadRequest, "unknown emotion filter")), 400, "VALIDATION_FAILED", false},
		{"bad request wrapping body parser error", domain.ErrBadRequest.WithError(fiber.ErrUnprocessableEntity), 400, "BAD_REQUEST", false},
		{"unknown error", errors.New("secret details"), 500, "INTERNAL_ERROR", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&logs, nil))

			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger)})
			app.Get("/test", func(c *fiber.Ctx) error {
				return tt.err
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			raw, _ := io.ReadAll(resp.Body)
			var body errorBody
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.NotContains(t, string(raw), "secret details")

			assert.Equal(t, tt.wantLogged, logs.Len() > 0)
		})
	}
}

func TestRecover(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(slog.New(slog.NewJSONHandler(io.Discard, nil)))})
	app.Use(Recover(logger))
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/panic", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"code":"INTERNAL_ERROR"`)
	assert.NotContains(t, string(body), "boom")

	assert.Contains(t, logs.String(), "panic recovered")
	assert.Contains(t, logs.String(), `"stack"`)
}

func TestLogger(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(slog.New(slog.NewJSONHandler(io.Discard, nil)))})
	app.Use(Logger(logger))
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/fail", func(c *fiber.Ctx) error {
		return domain.ErrNoImage
	})

	_, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	assert.Contains(t, logs.String(), `"level":"INFO"`)
	assert.Contains(t, logs.String(), `"status":200`)

	logs.Reset()
	_, err = app.Test(httptest.NewRequest("GET", "/fail", nil))
	require.NoError(t, err)
	assert.Contains(t, logs.String(), `"level":"WARN"`)
	assert.Contains(t, logs.String(), `"status":400`)
}
