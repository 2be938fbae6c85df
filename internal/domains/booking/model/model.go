package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"inncore/shared"
	"inncore/shared/constant"
	"inncore/shared/model"
	"math"
	"time"
)

const (
	TableName      = "bookings"
	RoomsTableName = "booking_rooms"
	EntityName     = "booking"
	RoomEntityName = "booking_room"

	FieldID                 = "id"
	FieldHotelID            = "hotel_id"
	FieldUserID             = "user_id"
	FieldBookingNumber      = "booking_number"
	FieldCheckIn            = "check_in"
	FieldCheckOut           = "check_out"
	FieldNights             = "nights"
	FieldStatus             = "status"
	FieldPaymentStatus      = "payment_status"
	FieldTotalAmount        = "total_amount"
	FieldIdempotencyKey     = "idempotency_key"
	FieldHoldExpiresAt      = "hold_expires_at"
	FieldCancellationReason = "cancellation_reason"
	FieldCancelledAt        = "cancelled_at"
	FieldSource             = "source"

	FieldBookingID = "booking_id"
	FieldRoomID    = "room_id"
	FieldRate      = "rate"
	FieldPosition  = "position"
)

const (
	ReasonHoldExpired = "hold_expired"
	ReasonHoldLost    = "hold_lost"
)

var ErrInvalidExtras = errors.New("invalid extras value")

// Booking is one reservation over one or more rooms for a single stay.
type Booking struct {
	ID                 string        `db:"id"`
	HotelID            string        `db:"hotel_id"`
	UserID             string        `db:"user_id"`
	BookingNumber      string        `db:"booking_number"`
	CheckIn            time.Time     `db:"check_in"`
	CheckOut           time.Time     `db:"check_out"`
	Nights             int           `db:"nights"`
	Status             Status        `db:"status"`
	PaymentStatus      PaymentStatus `db:"payment_status"`
	TotalAmount        float64       `db:"total_amount"`
	IdempotencyKey     *string       `db:"idempotency_key"`
	HoldExpiresAt      *time.Time    `db:"hold_expires_at"`
	Adults             int           `db:"adults"`
	Children           int           `db:"children"`
	GuestName          string        `db:"guest_name"`
	GuestEmail         string        `db:"guest_email"`
	GuestPhone         string        `db:"guest_phone"`
	SpecialRequests    string        `db:"special_requests"`
	Extras             Extras        `db:"extras"`
	Source             string        `db:"source"`
	CancellationReason string        `db:"cancellation_reason"`
	CancelledAt        *time.Time    `db:"cancelled_at"`
	model.Metadata

	Rooms []BookingRoom `db:"-"`
}

// BookingRoom is a room line of a booking. Stay dates and status are copied from the parent
// so the storage layer can enforce non-overlap per room.
type BookingRoom struct {
	BookingID string    `db:"booking_id"`
	RoomID    string    `db:"room_id"`
	HotelID   string    `db:"hotel_id"`
	Rate      float64   `db:"rate"`
	CheckIn   time.Time `db:"check_in"`
	CheckOut  time.Time `db:"check_out"`
	Status    Status    `db:"status"`
	Position  int       `db:"position"`
}

type Extra struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type Extras []Extra

// Value implements driver.Valuer.
func (e Extras) Value() (driver.Value, error) {
	if e == nil {
		return "[]", nil
	}

	raw, err := json.Marshal([]Extra(e))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extras: %w", err)
	}

	return string(raw), nil
}

// Scan implements sql.Scanner.
func (e *Extras) Scan(src any) error {
	var raw []byte

	switch v := src.(type) {
	case nil:
		*e = nil

		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("%w: %T", ErrInvalidExtras, src)
	}

	if err := json.Unmarshal(raw, (*[]Extra)(e)); err != nil {
		return fmt.Errorf("failed to unmarshal extras: %w", err)
	}

	return nil
}

func (e Extras) Total() float64 {
	total := 0.0
	for _, extra := range e {
		total += extra.Price * float64(extra.Quantity)
	}

	return total
}

// Nights counts the nights between two stay dates, rounding partial days up.
func Nights(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / constant.HoursInDay))
}

// TotalAmount prices a stay as the sum of nightly room rates times nights, plus extras.
func TotalAmount(rates []float64, nights int, extras Extras) float64 {
	sum := 0.0
	for _, rate := range rates {
		sum += rate
	}

	return shared.RoundMoney(sum*float64(nights) + extras.Total())
}

// Reprice derives nights and total from the current rooms and extras. Callers never persist a
// client-supplied total.
func (b *Booking) Reprice() {
	rates := make([]float64, len(b.Rooms))
	for i, room := range b.Rooms {
		rates[i] = room.Rate
	}

	b.Nights = Nights(b.CheckIn, b.CheckOut)
	b.TotalAmount = TotalAmount(rates, b.Nights, b.Extras)
}

func (b *Booking) RoomIDs() []string {
	ids := make([]string, len(b.Rooms))
	for i, room := range b.Rooms {
		ids[i] = room.RoomID
	}

	return ids
}

// Overlaps applies the half-open interval test: a checkout on day D does not collide with a
// check-in on day D.
func (b *Booking) Overlaps(checkIn, checkOut time.Time) bool {
	return b.CheckIn.Before(checkOut) && b.CheckOut.After(checkIn)
}

// HasRoom reports whether the booking includes roomID.
func (b *Booking) HasRoom(roomID string) bool {
	for _, room := range b.Rooms {
		if room.RoomID == roomID {
			return true
		}
	}

	return false
}

// OverlapQuery selects bookings that block any of RoomIDs during [CheckIn, CheckOut) at Now.
// An empty RoomIDs means every room of the hotel.
type OverlapQuery struct {
	HotelID          string
	RoomIDs          []string
	CheckIn          time.Time
	CheckOut         time.Time
	ExcludeBookingID string
	Now              time.Time
}

// Matches reports whether the booking touches the queried rooms and dates. Status is not considered.
func (q OverlapQuery) Matches(b Booking) bool {
	if q.ExcludeBookingID != "" && b.ID == q.ExcludeBookingID {
		return false
	}

	if q.HotelID != "" && b.HotelID != q.HotelID {
		return false
	}

	if !b.Overlaps(q.CheckIn, q.CheckOut) {
		return false
	}

	if len(q.RoomIDs) == 0 {
		return true
	}

	for _, id := range q.RoomIDs {
		if b.HasRoom(id) {
			return true
		}
	}

	return false
}
