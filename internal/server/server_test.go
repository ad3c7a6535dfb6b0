package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/pricing"
	"storefront/internal/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Env: "development", FrontendURL: "http://localhost:5173/"},
		JWT:     config.JWTConfig{Secret: "secret", TTL: time.Hour},
		Auth:    config.AuthConfig{RateLimit: 100, RateBurst: 100},
		Pricing: pricing.DefaultPolicy(),
	}
}

func TestHealth(t *testing.T) {
	cfg := testConfig()
	svc := server.NewServices(cfg, server.NewMemoryRepositories(), nil, zap.NewNop())
	app := server.New(cfg, svc, server.Options{EventsEnabled: true, DisableAccessLog: true}, zap.NewNop())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["events"])
}

func TestCORSAllowsFrontendWithCredentials(t *testing.T) {
	cfg := testConfig()
	svc := server.NewServices(cfg, server.NewMemoryRepositories(), nil, zap.NewNop())
	app := server.New(cfg, svc, server.Options{DisableAccessLog: true}, zap.NewNop())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/shop/cart", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestMemoryRepositoriesServeShop(t *testing.T) {
	cfg := testConfig()
	svc := server.NewServices(cfg, server.NewMemoryRepositories(), nil, zap.NewNop())
	app := server.New(cfg, svc, server.Options{DisableAccessLog: true}, zap.NewNop())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/shop/products", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
