package di

import (
	"inncore/infras/kafka"
	"inncore/internal/domains/booking/hold"
	"inncore/internal/handlers/payment"
	"inncore/transport/http"
)

// Service is everything the application process runs.
type Service struct {
	HTTP     *http.HTTP
	Sweeper  *hold.Sweeper
	Payments *payment.Consumer
	Kafka    kafka.Client
}
