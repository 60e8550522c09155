package router

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"teams-meeting-bridge/internal/config"
	"teams-meeting-bridge/internal/delivery/http/handler"
)

func newTestRouter() *Router {
	return newTestRouterWithConfig(&config.Config{App: config.AppConfig{Name: "teams-meeting-bridge", Env: "production"}})
}

func newTestRouterWithConfig(cfg *config.Config) *Router {
	return NewRouter(
		cfg,
		handler.NewHealthHandler(),
		handler.NewAuthHandler(nil, zap.NewNop()),
		handler.NewMeetingHandler(nil, zap.NewNop()),
		handler.NewLogHandler(nil, zap.NewNop()),
		zap.NewNop(),
	)
}

func TestSetup_Health(t *testing.T) {
	app := newTestRouter().Setup()

	req := httptest.NewRequest(fiber.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example.com")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestSetup_ValidationNeverReachesUsecase(t *testing.T) {
	// handlers are wired with nil usecases, so reaching one would panic into a 500
	app := newTestRouter().Setup()

	tests := []struct {
		path string
		body string
		want string
	}{
		{path: "/api/auth/init", body: `{}`, want: `{"error":"User ID is required"}`},
		{path: "/api/meetings", body: `{"userId":"u1"}`, want: `{"error":"Missing required fields"}`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodPost, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.JSONEq(t, tt.want, string(body))
		})
	}
}

func TestErrorHandler_NotFound(t *testing.T) {
	app := newTestRouter().Setup()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/unknown", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Cannot GET /api/unknown"}`, string(body))
}

func TestErrorHandler_HidesPanicDetail(t *testing.T) {
	app := newTestRouter().Setup()
	app.Get("/explode", func(c *fiber.Ctx) error {
		panic("pq: password authentication failed for user bridge")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/explode", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Internal server error"}`, string(body))
	assert.NotContains(t, string(body), "password")
}

func TestSetup_LogsRouteDisabledByDefault(t *testing.T) {
	app := newTestRouter().Setup()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/logs?userId=u1", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSetup_LogsRouteWhenEnabled(t *testing.T) {
	cfg := &config.Config{
		App:   config.AppConfig{Name: "teams-meeting-bridge", Env: "production"},
		Graph: config.GraphConfig{ExposeLogs: true},
	}
	app := newTestRouterWithConfig(cfg).Setup()

	// without a user the handler refuses before touching the repository
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/logs", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
