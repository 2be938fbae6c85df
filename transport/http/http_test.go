package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"inncore/config"
	"inncore/infras/jwt"
	"inncore/infras/metrics"
	otelMocks "inncore/infras/otel/mocks"
	"inncore/permissions"
	transport "inncore/transport/http"
	"inncore/transport/http/middleware"
	"inncore/transport/http/router"
)

func newServer() *transport.HTTP {
	cfg := &config.Config{}
	cfg.App.MetricsPath = "/metrics"

	otel := otelMocks.NewOtel()
	m := metrics.New()

	r := router.New(
		router.DomainHandlers{},
		middleware.NewAppMiddleware(otel, cfg, nil, m),
		middleware.NewAuthRoleMiddleware(jwt.New(cfg), otel, permissions.Get(), cfg),
		m,
		cfg,
	)

	return transport.New(cfg, r)
}

func TestHTTP_Health(t *testing.T) {
	server := newServer()
	handler := server.Handler()

	assert.Equal(t, transport.ServerStateReady, server.State())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTP_Metrics(t *testing.T) {
	handler := newServer().Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTP_HotelRoutesRequireAuth(t *testing.T) {
	handler := newServer().Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/hotels/h1/occupancy", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
