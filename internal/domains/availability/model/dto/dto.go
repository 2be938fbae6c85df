package dto

import (
	roomModel "inncore/internal/domains/room/model"
	"inncore/shared"
	"inncore/shared/constant"
	"time"
)

// AvailabilityRequest is a room search for one stay. Type narrows the search to one room type.
type AvailabilityRequest struct {
	CheckIn  string `json:"check_in"  validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02"`
	Type     string `json:"type"      validate:"omitempty,oneof=single double suite deluxe"`
}

type AvailableRoomResponse struct {
	ID          string  `json:"id"`
	Number      string  `json:"number"`
	Type        string  `json:"type"`
	Capacity    int     `json:"capacity"`
	NightlyRate float64 `json:"nightly_rate"`
	StayTotal   float64 `json:"stay_total"`
}

type AvailabilityResponse struct {
	CheckIn  string                  `json:"check_in"`
	CheckOut string                  `json:"check_out"`
	Nights   int                     `json:"nights"`
	Rooms    []AvailableRoomResponse `json:"rooms"`
}

// FromModels quotes every room for the stay. Rooms must already be in display order.
func (r *AvailabilityResponse) FromModels(rooms []roomModel.Room, checkIn, checkOut time.Time, nights int) {
	r.CheckIn = checkIn.Format(constant.DayFormat)
	r.CheckOut = checkOut.Format(constant.DayFormat)
	r.Nights = nights

	r.Rooms = make([]AvailableRoomResponse, len(rooms))
	for i, room := range rooms {
		rate := room.NightlyRate()

		r.Rooms[i] = AvailableRoomResponse{
			ID:          room.ID,
			Number:      room.Number,
			Type:        string(room.Type),
			Capacity:    room.Capacity,
			NightlyRate: rate,
			StayTotal:   shared.RoundMoney(rate * float64(nights)),
		}
	}
}
