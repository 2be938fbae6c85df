// Package projector derives the display occupancy of a room from its declared status and the
// bookings touching it. Nothing here is persisted.
package projector

import (
	bookingModel "inncore/internal/domains/booking/model"
	roomModel "inncore/internal/domains/room/model"
	"inncore/shared/timezone"
	"time"
)

type ComputedStatus string

const (
	StatusVacant      ComputedStatus = "vacant"
	StatusReserved    ComputedStatus = "reserved"
	StatusOccupied    ComputedStatus = "occupied"
	StatusDirty       ComputedStatus = "dirty"
	StatusMaintenance ComputedStatus = "maintenance"
	StatusOutOfOrder  ComputedStatus = "out_of_order"
)

func (s ComputedStatus) Valid() bool {
	switch s {
	case StatusVacant, StatusReserved, StatusOccupied, StatusDirty, StatusMaintenance, StatusOutOfOrder:
		return true
	}

	return false
}

// Project applies the first matching rule:
//  1. maintenance or out_of_order governs regardless of bookings;
//  2. a checked-in stay covering today makes the room occupied;
//  3. a confirmed stay starting today or earlier makes it occupied;
//  4. a later confirmed stay makes it reserved;
//  5. otherwise the declared status (vacant or dirty) stands.
//
// Bookings of other rooms are ignored. Dates compare as civil days in the application timezone.
func Project(room roomModel.Room, bookings []bookingModel.Booking, now time.Time) ComputedStatus {
	if room.Status.Blocked() {
		return ComputedStatus(room.Status)
	}

	today := timezone.StartOfDay(now)

	var occupied, arrived, upcoming bool

	for _, booking := range bookings {
		if !booking.HasRoom(room.ID) {
			continue
		}

		switch booking.Status {
		case bookingModel.StatusCheckedIn:
			if !booking.CheckIn.After(today) && booking.CheckOut.After(today) {
				occupied = true
			}
		case bookingModel.StatusConfirmed:
			if booking.CheckIn.After(today) {
				upcoming = true
			} else {
				arrived = true
			}
		}
	}

	switch {
	case occupied, arrived:
		return StatusOccupied
	case upcoming:
		return StatusReserved
	case room.Status == roomModel.StatusDirty:
		return StatusDirty
	default:
		return StatusVacant
	}
}

// Projection pairs a room with its computed status.
type Projection struct {
	Room   roomModel.Room
	Status ComputedStatus
}

// ProjectAll projects every room against the same booking set, keeping the room order.
func ProjectAll(rooms []roomModel.Room, bookings []bookingModel.Booking, now time.Time) []Projection {
	byRoom := make(map[string][]bookingModel.Booking, len(rooms))

	for _, booking := range bookings {
		for _, line := range booking.Rooms {
			byRoom[line.RoomID] = append(byRoom[line.RoomID], booking)
		}
	}

	res := make([]Projection, len(rooms))
	for i, room := range rooms {
		res[i] = Projection{Room: room, Status: Project(room, byRoom[room.ID], now)}
	}

	return res
}
