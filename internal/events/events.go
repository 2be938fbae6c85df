// Package events publishes booking lifecycle changes for the loyalty, notification and
// digital-key collaborators.
package events

//go:generate go run go.uber.org/mock/mockgen -source=./events.go -destination=./mocks/events_mock.go -package=mocks

import (
	"context"
	"fmt"
	"inncore/config"
	"inncore/infras/kafka"
	"inncore/infras/otel"
	"inncore/internal/domains/booking/model"
	"inncore/shared/constant"
	"time"

	"github.com/rs/zerolog/log"
)

type Type string

const (
	BookingCreated     Type = "booking.created"
	BookingConfirmed   Type = "booking.confirmed"
	BookingCancelled   Type = "booking.cancelled"
	BookingCheckedIn   Type = "booking.checked_in"
	BookingCheckedOut  Type = "booking.checked_out"
	BookingNoShow      Type = "booking.no_show"
	BookingHoldExpired Type = "booking.hold_expired"
	BookingHoldLost    Type = "booking.hold_lost"
	PaymentFailed      Type = "booking.payment_failed"
)

const headerEventType = "event-type"

// BookingEvent is the payload written to the booking events topic, keyed by booking id.
type BookingEvent struct {
	Type          Type                `json:"type"`
	BookingID     string              `json:"booking_id"`
	BookingNumber string              `json:"booking_number"`
	HotelID       string              `json:"hotel_id"`
	UserID        string              `json:"user_id"`
	Status        model.Status        `json:"status"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
	RoomIDs       []string            `json:"room_ids"`
	CheckIn       string              `json:"check_in"`
	CheckOut      string              `json:"check_out"`
	TotalAmount   float64             `json:"total_amount"`
	Reason        string              `json:"reason,omitempty"`
	OccurredAt    time.Time           `json:"occurred_at"`
}

func NewBookingEvent(eventType Type, booking model.Booking, occurredAt time.Time) BookingEvent {
	return BookingEvent{
		Type:          eventType,
		BookingID:     booking.ID,
		BookingNumber: booking.BookingNumber,
		HotelID:       booking.HotelID,
		UserID:        booking.UserID,
		Status:        booking.Status,
		PaymentStatus: booking.PaymentStatus,
		RoomIDs:       booking.RoomIDs(),
		CheckIn:       booking.CheckIn.Format(constant.DayFormat),
		CheckOut:      booking.CheckOut.Format(constant.DayFormat),
		TotalAmount:   booking.TotalAmount,
		Reason:        booking.CancellationReason,
		OccurredAt:    occurredAt,
	}
}

// TypeFor maps a booking status reached by a transition to its event type.
func TypeFor(status model.Status) (Type, bool) {
	switch status {
	case model.StatusConfirmed:
		return BookingConfirmed, true
	case model.StatusCancelled:
		return BookingCancelled, true
	case model.StatusCheckedIn:
		return BookingCheckedIn, true
	case model.StatusCheckedOut:
		return BookingCheckedOut, true
	case model.StatusNoShow:
		return BookingNoShow, true
	default:
		return "", false
	}
}

type Publisher interface {
	Publish(ctx context.Context, events ...BookingEvent) error
}

type kafkaPublisher struct {
	client kafka.Client
	topic  string
	otel   otel.Otel
}

func NewKafkaPublisher(client kafka.Client, cfg *config.Config, otel otel.Otel) Publisher {
	return &kafkaPublisher{
		client: client,
		topic:  cfg.Kafka.Topic.BookingEvents,
		otel:   otel,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, events ...BookingEvent) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Publish")
	defer scope.End()
	defer scope.TraceIfError(err)

	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, len(events))
	for i, event := range events {
		messages[i] = kafka.Message{
			Key:     event.BookingID,
			Value:   event,
			Headers: map[string]string{headerEventType: string(event.Type)},
		}
	}

	scope.SetAttributes(map[string]any{
		"event.topic": p.topic,
		"event.count": len(events),
		"event.type":  string(events[0].Type),
	})

	if err = p.client.SendMessages(ctx, p.topic, messages...); err != nil {
		log.Error().Err(err).Str("topic", p.topic).Msg("failed to publish booking events")

		return fmt.Errorf("failed to publish booking events: %w", err)
	}

	return nil
}
