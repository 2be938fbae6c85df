package metrics_test

import (
	"inncore/infras/metrics"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Handler(t *testing.T) {
	m := metrics.New()

	m.BookingCreated("hotel-1", "pending")
	m.BookingConflict("hotel-1")
	m.IdempotentReplay("hotel-1")
	m.HoldsExpired(2)
	m.HoldsPurged(1)
	m.PaymentApplied("paid", "confirmed")
	m.ObserveRequest(http.MethodPost, "/v1/hotels/{hotelID}/bookings", "201", 15*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	for _, name := range []string{
		`inncore_bookings_created_total{hotel_id="hotel-1",status="pending"} 1`,
		`inncore_booking_conflicts_total{hotel_id="hotel-1"} 1`,
		`inncore_idempotent_replays_total{hotel_id="hotel-1"} 1`,
		`inncore_holds_expired_total 2`,
		`inncore_holds_purged_total 1`,
		`inncore_payment_outcomes_total{outcome="paid",result="confirmed"} 1`,
		`inncore_http_request_duration_seconds_count`,
	} {
		assert.True(t, strings.Contains(body, name), "missing %s", name)
	}
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.New()
		metrics.New()
	})
}
