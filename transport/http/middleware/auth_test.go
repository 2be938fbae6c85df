package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inncore/config"
	"inncore/infras/jwt"
	otelMocks "inncore/infras/otel/mocks"
	"inncore/permissions"
	"inncore/shared/constant"
	"inncore/transport/http/middleware"
)

const apiKey = "internal-key"

func newRouter(t *testing.T) (http.Handler, jwt.JWT) {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.AccessSecret = "secret"
	cfg.App.APIKey = apiKey

	tokens := jwt.New(cfg)
	auth := middleware.NewAuthRoleMiddleware(tokens, otelMocks.NewOtel(), permissions.Get(), cfg)

	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

	router := chi.NewRouter()
	router.Route("/v1", func(v1 chi.Router) {
		v1.Route("/hotels/{hotelID}", func(hotel chi.Router) {
			hotel.Use(auth.APIKey, auth.Auth, auth.RBAC, auth.HotelScope)

			hotel.Get("/occupancy", ok)
			hotel.Get("/availability", ok)
			hotel.Post("/bookings/{id}/payment", ok)
		})
	})

	return router, tokens
}

func token(t *testing.T, tokens jwt.JWT, role string, hotels ...string) string {
	t.Helper()

	signed, err := tokens.Sign(jwt.Claims{
		UserID:   "user-1",
		Role:     role,
		HotelIDs: hotels,
		RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	require.NoError(t, err)

	return "Bearer " + signed
}

func call(router http.Handler, method, target string, headers map[string]string) int {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec.Code
}

func TestAuthRole(t *testing.T) {
	router, tokens := newRouter(t)

	expired, err := tokens.Sign(jwt.Claims{
		UserID: "user-1",
		Role:   constant.RoleAdmin,
		RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		method  string
		target  string
		headers map[string]string
		want    int
	}{
		{"missing token", http.MethodGet, "/v1/hotels/h1/occupancy", nil, http.StatusUnauthorized},
		{"malformed header", http.MethodGet, "/v1/hotels/h1/occupancy", map[string]string{"Authorization": "Token abc"}, http.StatusUnauthorized},
		{"expired token", http.MethodGet, "/v1/hotels/h1/occupancy", map[string]string{"Authorization": "Bearer " + expired}, http.StatusUnauthorized},
		{"guest cannot project occupancy", http.MethodGet, "/v1/hotels/h1/occupancy", map[string]string{"Authorization": token(t, tokens, constant.RoleGuest)}, http.StatusForbidden},
		{"guest searches any hotel", http.MethodGet, "/v1/hotels/h1/availability", map[string]string{"Authorization": token(t, tokens, constant.RoleGuest)}, http.StatusOK},
		{"staff of the hotel", http.MethodGet, "/v1/hotels/h1/occupancy", map[string]string{"Authorization": token(t, tokens, constant.RoleStaff, "h1")}, http.StatusOK},
		{"staff of another hotel", http.MethodGet, "/v1/hotels/h2/occupancy", map[string]string{"Authorization": token(t, tokens, constant.RoleStaff, "h1")}, http.StatusForbidden},
		{"admin is not scoped", http.MethodGet, "/v1/hotels/h2/occupancy", map[string]string{"Authorization": token(t, tokens, constant.RoleAdmin)}, http.StatusOK},
		{"internal caller with api key", http.MethodPost, "/v1/hotels/h1/bookings/b1/payment", map[string]string{constant.RequestHeaderAPIKey: apiKey}, http.StatusOK},
		{"wrong api key", http.MethodPost, "/v1/hotels/h1/bookings/b1/payment", map[string]string{constant.RequestHeaderAPIKey: "nope"}, http.StatusForbidden},
		{"guest cannot report payments", http.MethodPost, "/v1/hotels/h1/bookings/b1/payment", map[string]string{"Authorization": token(t, tokens, constant.RoleGuest)}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, call(router, tt.method, tt.target, tt.headers))
		})
	}
}
