package payment_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	kafkaGo "github.com/segmentio/kafka-go"

	"inncore/config"
	kafkaMocks "inncore/infras/kafka/mocks"
	otelMocks "inncore/infras/otel/mocks"
	bookingMocks "inncore/internal/domains/booking/mocks"
	"inncore/internal/domains/booking/model"
	"inncore/internal/domains/booking/model/dto"
	"inncore/internal/handlers/payment"
	"inncore/shared/constant"
	"inncore/shared/failure"
)

func newConsumer(t *testing.T) (*payment.Consumer, *bookingMocks.MockBookingService, *kafkaMocks.MockClient, *config.Config) {
	t.Helper()

	ctrl := gomock.NewController(t)
	svc := bookingMocks.NewMockBookingService(ctrl)
	client := kafkaMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Kafka.ConsumerGroup = "inncore"
	cfg.Kafka.Topic.PaymentOutcomes = "payment.outcomes"

	return payment.New(svc, client, cfg, otelMocks.NewOtel()), svc, client, cfg
}

func message(t *testing.T, value any) kafkaGo.Message {
	t.Helper()

	raw, err := json.Marshal(value)
	require.NoError(t, err)

	return kafkaGo.Message{Key: []byte("booking-1"), Value: raw}
}

func TestConsumer_Handle(t *testing.T) {
	paid := dto.PaymentOutcomeMessage{BookingID: "booking-1", HotelID: "hotel-1", Outcome: "paid"}

	tests := []struct {
		name    string
		value   any
		setup   func(svc *bookingMocks.MockBookingService)
		wantErr bool
	}{
		{
			name:  "applies paid outcome",
			value: paid,
			setup: func(svc *bookingMocks.MockBookingService) {
				svc.EXPECT().ApplyPayment(gomock.Any(), "hotel-1", "booking-1", model.PaymentPaid).DoAndReturn(
					func(ctx context.Context, _, _ string, _ model.PaymentStatus) (dto.BookingResponse, error) {
						assert.Equal(t, "payment-service", ctx.Value(constant.ContextKeyUserID))

						return dto.BookingResponse{ID: "booking-1", Status: "confirmed", PaymentStatus: "paid"}, nil
					})
			},
		},
		{
			name:  "malformed payload is acknowledged",
			value: "not an object",
			setup: func(*bookingMocks.MockBookingService) {},
		},
		{
			name:  "unknown outcome is acknowledged",
			value: dto.PaymentOutcomeMessage{BookingID: "booking-1", HotelID: "hotel-1", Outcome: "refunded"},
			setup: func(*bookingMocks.MockBookingService) {},
		},
		{
			name:  "lost hold is acknowledged",
			value: paid,
			setup: func(svc *bookingMocks.MockBookingService) {
				svc.EXPECT().ApplyPayment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(dto.BookingResponse{}, failure.AvailabilityConflict("hold lost"))
			},
		},
		{
			name:  "unknown booking is acknowledged",
			value: paid,
			setup: func(svc *bookingMocks.MockBookingService) {
				svc.EXPECT().ApplyPayment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(dto.BookingResponse{}, failure.NotFound("booking not found"))
			},
		},
		{
			name:  "storage failure is retried",
			value: paid,
			setup: func(svc *bookingMocks.MockBookingService) {
				svc.EXPECT().ApplyPayment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(dto.BookingResponse{}, errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			consumer, svc, _, _ := newConsumer(t)
			tt.setup(svc)

			err := consumer.Handle(context.Background(), message(t, tt.value))

			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestConsumer_Run(t *testing.T) {
	consumer, _, client, cfg := newConsumer(t)

	client.EXPECT().Consume(gomock.Any(), cfg.Kafka.ConsumerGroup, cfg.Kafka.Topic.PaymentOutcomes, gomock.Any())

	consumer.Run(context.Background())
}
