package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"inncore/config"
	"inncore/infras/kafka"
	kafkaMocks "inncore/infras/kafka/mocks"
	otelMocks "inncore/infras/otel/mocks"
	"inncore/internal/domains/booking/model"
	"inncore/internal/events"
)

func confirmedBooking() model.Booking {
	return model.Booking{
		ID:            "booking-1",
		BookingNumber: "BK-240310-7QJ2MX",
		HotelID:       "hotel-1",
		Status:        model.StatusConfirmed,
		PaymentStatus: model.PaymentPaid,
		CheckIn:       time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:      time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		TotalAmount:   400,
		Rooms:         []model.BookingRoom{{RoomID: "room-101"}, {RoomID: "room-102"}},
	}
}

func TestNewBookingEvent(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	event := events.NewBookingEvent(events.BookingConfirmed, confirmedBooking(), at)

	assert.Equal(t, events.BookingConfirmed, event.Type)
	assert.Equal(t, "2024-03-10", event.CheckIn)
	assert.Equal(t, "2024-03-14", event.CheckOut)
	assert.Equal(t, []string{"room-101", "room-102"}, event.RoomIDs)
	assert.Equal(t, model.PaymentPaid, event.PaymentStatus)
	assert.Equal(t, at, event.OccurredAt)
}

func TestTypeFor(t *testing.T) {
	eventType, ok := events.TypeFor(model.StatusNoShow)
	assert.True(t, ok)
	assert.Equal(t, events.BookingNoShow, eventType)

	_, ok = events.TypeFor(model.StatusPending)
	assert.False(t, ok)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	cfg := &config.Config{}
	cfg.Kafka.Topic.BookingEvents = "booking.events"

	t.Run("keys messages by booking", func(t *testing.T) {
		client := kafkaMocks.NewMockClient(gomock.NewController(t))
		publisher := events.NewKafkaPublisher(client, cfg, otelMocks.NewOtel())

		client.EXPECT().SendMessages(gomock.Any(), "booking.events", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, messages ...kafka.Message) error {
				require.Len(t, messages, 1)
				assert.Equal(t, "booking-1", messages[0].Key)
				assert.Equal(t, "booking.cancelled", messages[0].Headers["event-type"])

				return nil
			})

		err := publisher.Publish(context.Background(), events.NewBookingEvent(events.BookingCancelled, confirmedBooking(), time.Now()))

		require.NoError(t, err)
	})

	t.Run("nothing to publish", func(t *testing.T) {
		client := kafkaMocks.NewMockClient(gomock.NewController(t))
		publisher := events.NewKafkaPublisher(client, cfg, otelMocks.NewOtel())

		require.NoError(t, publisher.Publish(context.Background()))
	})

	t.Run("broker failure", func(t *testing.T) {
		client := kafkaMocks.NewMockClient(gomock.NewController(t))
		publisher := events.NewKafkaPublisher(client, cfg, otelMocks.NewOtel())

		client.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

		err := publisher.Publish(context.Background(), events.NewBookingEvent(events.BookingCreated, confirmedBooking(), time.Now()))

		require.Error(t, err)
	})
}
