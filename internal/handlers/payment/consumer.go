// Package payment consumes payment outcomes published by the payment collaborator and applies
// them to bookings.
package payment

import (
	"context"
	"fmt"
	"inncore/config"
	"inncore/infras/kafka"
	"inncore/infras/otel"
	"inncore/internal/domains/booking/model"
	"inncore/internal/domains/booking/model/dto"
	"inncore/internal/domains/booking/service"
	"inncore/shared/constant"
	"inncore/shared/failure"
	"inncore/shared/validator"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

const consumerUser = "payment-service"

type Consumer struct {
	service service.Booking
	client  kafka.Client
	cfg     *config.Config
	otel    otel.Otel
}

func New(service service.Booking, client kafka.Client, cfg *config.Config, otel otel.Otel) *Consumer {
	return &Consumer{
		service: service,
		client:  client,
		cfg:     cfg,
		otel:    otel,
	}
}

// Run blocks until ctx is done.
func (c *Consumer) Run(ctx context.Context) {
	log.Info().Str("topic", c.cfg.Kafka.Topic.PaymentOutcomes).Msg("Payment outcome consumer started")

	c.client.Consume(ctx, c.cfg.Kafka.ConsumerGroup, c.cfg.Kafka.Topic.PaymentOutcomes, c.Handle)
}

// Handle applies one payment outcome. Messages that can never apply (malformed, unknown booking,
// illegal transition, lost hold) are logged and acknowledged; other errors leave the message
// uncommitted.
func (c *Consumer) Handle(ctx context.Context, message kafkaGo.Message) (err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelKafkaScopeName, constant.OtelKafkaScopeName+".payment.Handle")
	defer scope.End()
	defer scope.TraceIfError(err)

	outcome, err := kafka.Decode[dto.PaymentOutcomeMessage](message)
	if err != nil {
		log.Warn().Err(err).Int64("offset", message.Offset).Msg("dropping malformed payment outcome")

		return nil
	}

	if err = validator.ValidateStruct(&outcome); err != nil {
		log.Warn().Err(err).Str("booking_id", outcome.BookingID).Msg("dropping invalid payment outcome")

		return nil
	}

	scope.SetAttributes(map[string]any{
		"booking.id":      outcome.BookingID,
		"payment.outcome": outcome.Outcome,
	})

	ctx = context.WithValue(ctx, constant.ContextKeyUserID, consumerUser)

	booking, err := c.service.ApplyPayment(ctx, outcome.HotelID, outcome.BookingID, model.PaymentStatus(outcome.Outcome))

	switch {
	case err == nil:
		log.Info().Str("booking_id", booking.ID).Str("status", booking.Status).Str("payment_status", booking.PaymentStatus).Msg("Applied payment outcome")

		return nil
	case failure.IsAvailabilityConflict(err):
		log.Warn().Err(err).Str("booking_id", outcome.BookingID).Msg("payment arrived for a lost hold, refund required")

		return nil
	case failure.IsNotFound(err), failure.IsStateTransition(err), failure.IsValidation(err):
		log.Warn().Err(err).Str("booking_id", outcome.BookingID).Str("outcome", outcome.Outcome).Msg("payment outcome rejected")

		return nil
	default:
		log.Error().Err(err).Str("booking_id", outcome.BookingID).Msg("failed to apply payment outcome")

		return fmt.Errorf("failed to apply payment outcome: %w", err)
	}
}
