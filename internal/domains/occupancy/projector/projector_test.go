package projector_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	bookingModel "inncore/internal/domains/booking/model"
	"inncore/internal/domains/occupancy/projector"
	roomModel "inncore/internal/domains/room/model"
)

// 2024-03-12 09:00 UTC; the tests run with the default UTC application timezone.
var now = time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)

func date(day int) time.Time {
	return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC)
}

func stay(status bookingModel.Status, checkIn, checkOut int, roomID string) bookingModel.Booking {
	return bookingModel.Booking{
		ID:       "booking",
		Status:   status,
		CheckIn:  date(checkIn),
		CheckOut: date(checkOut),
		Rooms:    []bookingModel.BookingRoom{{RoomID: roomID}},
	}
}

func TestProject(t *testing.T) {
	vacant := roomModel.Room{ID: "r1", Status: roomModel.StatusVacant, Active: true}
	dirty := roomModel.Room{ID: "r1", Status: roomModel.StatusDirty, Active: true}
	maintenance := roomModel.Room{ID: "r1", Status: roomModel.StatusMaintenance, Active: true}
	outOfOrder := roomModel.Room{ID: "r1", Status: roomModel.StatusOutOfOrder, Active: true}

	tests := []struct {
		name     string
		room     roomModel.Room
		bookings []bookingModel.Booking
		want     projector.ComputedStatus
	}{
		{"no bookings", vacant, nil, projector.StatusVacant},
		{"dirty without bookings", dirty, nil, projector.StatusDirty},
		{"maintenance beats confirmed stay covering today", maintenance,
			[]bookingModel.Booking{stay(bookingModel.StatusConfirmed, 10, 14, "r1")}, projector.StatusMaintenance},
		{"out of order beats checked-in guest", outOfOrder,
			[]bookingModel.Booking{stay(bookingModel.StatusCheckedIn, 10, 14, "r1")}, projector.StatusOutOfOrder},
		{"checked in covering today", vacant,
			[]bookingModel.Booking{stay(bookingModel.StatusCheckedIn, 10, 14, "r1")}, projector.StatusOccupied},
		{"checked in on a dirty room", dirty,
			[]bookingModel.Booking{stay(bookingModel.StatusCheckedIn, 12, 13, "r1")}, projector.StatusOccupied},
		{"confirmed arriving today", vacant,
			[]bookingModel.Booking{stay(bookingModel.StatusConfirmed, 12, 14, "r1")}, projector.StatusOccupied},
		{"confirmed arrived earlier", vacant,
			[]bookingModel.Booking{stay(bookingModel.StatusConfirmed, 11, 14, "r1")}, projector.StatusOccupied},
		{"confirmed arriving tomorrow", vacant,
			[]bookingModel.Booking{stay(bookingModel.StatusConfirmed, 13, 14, "r1")}, projector.StatusReserved},
		{"occupied wins over reserved", vacant, []bookingModel.Booking{
			stay(bookingModel.StatusConfirmed, 14, 16, "r1"),
			stay(bookingModel.StatusCheckedIn, 10, 14, "r1"),
		}, projector.StatusOccupied},
		{"checked-in guest on the check-out day follows the declared status", dirty,
			[]bookingModel.Booking{stay(bookingModel.StatusCheckedIn, 10, 12, "r1")}, projector.StatusDirty},
		{"pending hold is ignored", vacant,
			[]bookingModel.Booking{stay(bookingModel.StatusPending, 12, 14, "r1")}, projector.StatusVacant},
		{"other room", vacant,
			[]bookingModel.Booking{stay(bookingModel.StatusCheckedIn, 10, 14, "r2")}, projector.StatusVacant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := projector.Project(tt.room, tt.bookings, now)

			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestProjectAll(t *testing.T) {
	rooms := []roomModel.Room{
		{ID: "r1", Number: "101", Status: roomModel.StatusVacant},
		{ID: "r2", Number: "102", Status: roomModel.StatusVacant},
		{ID: "r3", Number: "103", Status: roomModel.StatusMaintenance},
	}

	multi := stay(bookingModel.StatusConfirmed, 13, 15, "r1")
	multi.Rooms = append(multi.Rooms, bookingModel.BookingRoom{RoomID: "r3"})

	res := projector.ProjectAll(rooms, []bookingModel.Booking{multi}, now)

	assert.Len(t, res, 3)
	assert.Equal(t, projector.StatusReserved, res[0].Status)
	assert.Equal(t, projector.StatusVacant, res[1].Status)
	assert.Equal(t, projector.StatusMaintenance, res[2].Status)
	assert.Equal(t, "103", res[2].Room.Number)
}
