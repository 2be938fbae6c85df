package model_test

import (
	"inncore/internal/domains/booking/model"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(value string) time.Time {
	d, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}

	return d
}

func TestNights(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		expected int
	}{
		{name: "three nights", checkIn: day("2024-01-01"), checkOut: day("2024-01-04"), expected: 3},
		{name: "single night", checkIn: day("2024-03-10"), checkOut: day("2024-03-11"), expected: 1},
		{name: "partial day rounds up", checkIn: day("2024-03-10"), checkOut: day("2024-03-11").Add(time.Hour), expected: 2},
		{name: "across leap day", checkIn: day("2024-02-28"), checkOut: day("2024-03-02"), expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, model.Nights(tt.checkIn, tt.checkOut))
		})
	}
}

func TestBooking_Reprice(t *testing.T) {
	booking := model.Booking{
		CheckIn:     day("2024-01-01"),
		CheckOut:    day("2024-01-04"),
		TotalAmount: 1,
		Rooms: []model.BookingRoom{
			{RoomID: "room-1", Rate: 100},
			{RoomID: "room-2", Rate: 80.5},
		},
		Extras: model.Extras{
			{Name: "breakfast", Price: 12.5, Quantity: 2},
			{Name: "parking", Price: 10, Quantity: 1},
		},
	}

	booking.Reprice()

	assert.Equal(t, 3, booking.Nights)
	assert.InDelta(t, 180.5*3+35, booking.TotalAmount, 0.0001)
}

func TestTotalAmount_Rounding(t *testing.T) {
	assert.InDelta(t, 100.01, model.TotalAmount([]float64{33.3367}, 3, nil), 0.0001)
}

func TestBooking_Overlaps(t *testing.T) {
	existing := model.Booking{CheckIn: day("2024-03-10"), CheckOut: day("2024-03-14")}

	assert.True(t, existing.Overlaps(day("2024-03-12"), day("2024-03-16")))
	assert.True(t, existing.Overlaps(day("2024-03-08"), day("2024-03-11")))
	assert.True(t, existing.Overlaps(day("2024-03-11"), day("2024-03-12")))
	assert.False(t, existing.Overlaps(day("2024-03-14"), day("2024-03-16")), "same-day turnover after")
	assert.False(t, existing.Overlaps(day("2024-03-05"), day("2024-03-10")), "same-day turnover before")
}

func TestStatus_CanTransitionTo(t *testing.T) {
	allowed := map[model.Status][]model.Status{
		model.StatusPending:   {model.StatusConfirmed, model.StatusCancelled},
		model.StatusConfirmed: {model.StatusCheckedIn, model.StatusCancelled, model.StatusNoShow},
		model.StatusCheckedIn: {model.StatusCheckedOut},
	}

	all := []model.Status{
		model.StatusPending, model.StatusConfirmed, model.StatusCheckedIn,
		model.StatusCheckedOut, model.StatusCancelled, model.StatusNoShow,
	}

	for _, from := range all {
		for _, to := range all {
			expected := false
			for _, candidate := range allowed[from] {
				if candidate == to {
					expected = true
				}
			}

			assert.Equal(t, expected, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}

	assert.True(t, model.StatusCheckedOut.Terminal())
	assert.True(t, model.StatusCancelled.Terminal())
	assert.True(t, model.StatusNoShow.Terminal())
	assert.False(t, model.StatusConfirmed.Terminal())
	assert.False(t, model.Status("unknown").Terminal())
}

func TestPaymentStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, model.PaymentPending.CanTransitionTo(model.PaymentPaid))
	assert.True(t, model.PaymentPending.CanTransitionTo(model.PaymentFailed))
	assert.True(t, model.PaymentFailed.CanTransitionTo(model.PaymentPaid))
	assert.True(t, model.PaymentPaid.CanTransitionTo(model.PaymentRefunded))
	assert.False(t, model.PaymentPaid.CanTransitionTo(model.PaymentPending))
	assert.False(t, model.PaymentRefunded.CanTransitionTo(model.PaymentPaid))
}

func TestExtras_ScanValue(t *testing.T) {
	extras := model.Extras{{Name: "spa", Price: 40, Quantity: 1}}

	raw, err := extras.Value()
	require.NoError(t, err)

	var scanned model.Extras
	require.NoError(t, scanned.Scan(raw))
	assert.Equal(t, extras, scanned)

	empty, err := model.Extras(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)

	assert.ErrorIs(t, scanned.Scan(42), model.ErrInvalidExtras)
}

func TestNewBookingNumber(t *testing.T) {
	number := model.NewBookingNumber(time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC))

	assert.Regexp(t, regexp.MustCompile(`^BK-240314-[A-Z2-9]{6}$`), number)
	assert.NotEqual(t, number, model.NewBookingNumber(time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)))
}
