package model

import (
	"cmp"
	"inncore/shared/model"
	"strconv"
	"strings"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID          = "id"
	FieldHotelID     = "hotel_id"
	FieldNumber      = "number"
	FieldType        = "type"
	FieldBaseRate    = "base_rate"
	FieldCurrentRate = "current_rate"
	FieldCapacity    = "capacity"
	FieldStatus      = "status"
	FieldActive      = "active"
)

type Type string

const (
	TypeSingle Type = "single"
	TypeDouble Type = "double"
	TypeSuite  Type = "suite"
	TypeDeluxe Type = "deluxe"
)

func (t Type) Valid() bool {
	switch t {
	case TypeSingle, TypeDouble, TypeSuite, TypeDeluxe:
		return true
	}

	return false
}

// Status is the declared housekeeping state of a room. Occupancy is derived elsewhere.
type Status string

const (
	StatusVacant      Status = "vacant"
	StatusDirty       Status = "dirty"
	StatusMaintenance Status = "maintenance"
	StatusOutOfOrder  Status = "out_of_order"
)

func (s Status) Valid() bool {
	switch s {
	case StatusVacant, StatusDirty, StatusMaintenance, StatusOutOfOrder:
		return true
	}

	return false
}

// Blocked reports whether the status takes the room out of service regardless of bookings.
func (s Status) Blocked() bool {
	return s == StatusMaintenance || s == StatusOutOfOrder
}

type Room struct {
	ID          string  `db:"id"`
	HotelID     string  `db:"hotel_id"`
	Number      string  `db:"number"`
	Type        Type    `db:"type"`
	BaseRate    float64 `db:"base_rate"`
	CurrentRate float64 `db:"current_rate"`
	Capacity    int     `db:"capacity"`
	Status      Status  `db:"status"`
	Active      bool    `db:"active"`
	model.Metadata
}

// NightlyRate is the rate quoted for a new booking.
func (r Room) NightlyRate() float64 {
	if r.CurrentRate > 0 {
		return r.CurrentRate
	}

	return r.BaseRate
}

// Bookable reports whether the room may be offered for new stays.
func (r Room) Bookable() bool {
	return r.Active && r.Status == StatusVacant
}

// CompareNumbers orders room numbers numerically when both are integers, so 9 sorts before 10,
// and lexically otherwise.
func CompareNumbers(a, b string) int {
	x, errA := strconv.Atoi(a)
	y, errB := strconv.Atoi(b)

	if errA == nil && errB == nil && x != y {
		return cmp.Compare(x, y)
	}

	return strings.Compare(a, b)
}

// ByNumber is a comparison function for slices.SortStableFunc.
func ByNumber(a, b Room) int {
	if c := CompareNumbers(a.Number, b.Number); c != 0 {
		return c
	}

	return strings.Compare(a.ID, b.ID)
}
