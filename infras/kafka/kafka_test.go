package kafka_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kafkaGo "github.com/segmentio/kafka-go"

	"inncore/infras/kafka"
)

type outcome struct {
	BookingID string `json:"booking_id"`
	Outcome   string `json:"outcome"`
}

func TestMessage_ToKafkaMessage(t *testing.T) {
	msg := kafka.Message{
		Key:     "booking-1",
		Value:   outcome{BookingID: "booking-1", Outcome: "paid"},
		Headers: map[string]string{"event-type": "booking.confirmed"},
	}

	res, err := msg.ToKafkaMessage()

	require.NoError(t, err)
	assert.Equal(t, []byte("booking-1"), res.Key)
	assert.JSONEq(t, `{"booking_id":"booking-1","outcome":"paid"}`, string(res.Value))
	require.Len(t, res.Headers, 1)
	assert.Equal(t, "event-type", res.Headers[0].Key)
	assert.Equal(t, []byte("booking.confirmed"), res.Headers[0].Value)
}

func TestMessage_ToKafkaMessageRejectsUnencodable(t *testing.T) {
	msg := kafka.Message{Key: "k", Value: make(chan int)}

	_, err := msg.ToKafkaMessage()

	require.Error(t, err)
}

func TestDecode(t *testing.T) {
	value, err := kafka.Decode[outcome](kafkaGo.Message{Value: []byte(`{"booking_id":"b","outcome":"failed"}`)})

	require.NoError(t, err)
	assert.Equal(t, outcome{BookingID: "b", Outcome: "failed"}, value)

	_, err = kafka.Decode[outcome](kafkaGo.Message{Value: []byte(`{`)})
	require.Error(t, err)
}
