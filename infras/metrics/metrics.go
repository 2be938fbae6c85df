package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "inncore"

// Metrics holds the reservation engine collectors. Each instance owns its registry so tests can
// build throwaway instances without clashing on global registration.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration   *prometheus.HistogramVec
	bookingsCreated   *prometheus.CounterVec
	bookingConflicts  *prometheus.CounterVec
	idempotentReplays *prometheus.CounterVec
	holdsExpired      prometheus.Counter
	holdsPurged       prometheus.Counter
	paymentOutcomes   *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		bookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Bookings committed to the ledger.",
		}, []string{"hotel_id", "status"}),
		bookingConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Booking attempts rejected because a room was already blocked.",
		}, []string{"hotel_id"}),
		idempotentReplays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idempotent_replays_total",
			Help:      "Create requests answered with an existing booking for the same idempotency key.",
		}, []string{"hotel_id"}),
		holdsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "holds_expired_total",
			Help:      "Pending holds cancelled by the sweeper after expiry.",
		}),
		holdsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "holds_purged_total",
			Help:      "Expired holds archived and removed from the ledger.",
		}),
		paymentOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_outcomes_total",
			Help:      "Payment signals applied to bookings.",
		}, []string{"outcome", "result"}),
	}

	registry.MustRegister(
		m.requestDuration,
		m.bookingsCreated,
		m.bookingConflicts,
		m.idempotentReplays,
		m.holdsExpired,
		m.holdsPurged,
		m.paymentOutcomes,
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(method, route, status string, elapsed time.Duration) {
	m.requestDuration.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
}

func (m *Metrics) BookingCreated(hotelID, status string) {
	m.bookingsCreated.WithLabelValues(hotelID, status).Inc()
}

func (m *Metrics) BookingConflict(hotelID string) {
	m.bookingConflicts.WithLabelValues(hotelID).Inc()
}

func (m *Metrics) IdempotentReplay(hotelID string) {
	m.idempotentReplays.WithLabelValues(hotelID).Inc()
}

func (m *Metrics) HoldsExpired(n int) {
	m.holdsExpired.Add(float64(n))
}

func (m *Metrics) HoldsPurged(n int) {
	m.holdsPurged.Add(float64(n))
}

func (m *Metrics) PaymentApplied(outcome, result string) {
	m.paymentOutcomes.WithLabelValues(outcome, result).Inc()
}
