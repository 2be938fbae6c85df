package dto

import (
	"inncore/internal/domains/booking/model"
	"inncore/shared"
	"inncore/shared/constant"
	gDto "inncore/shared/dto"
	gModel "inncore/shared/model"
	"inncore/shared/timezone"
	"slices"
	"time"

	"github.com/google/uuid"
)

const (
	SourceWeb       = "web"
	SourceMobile    = "mobile"
	SourceFrontDesk = "front_desk"
	SourcePhone     = "phone"
	SourcePartner   = "partner"
)

type GuestRequest struct {
	Name  string `json:"name"  validate:"required,max=100"`
	Email string `json:"email" validate:"omitempty,email,max=100"`
	Phone string `json:"phone" validate:"omitempty,max=20"`
}

type ExtraRequest struct {
	Name     string  `json:"name"     validate:"required,max=100"`
	Price    float64 `json:"price"    validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"required,min=1,max=100"`
}

// CreateBookingRequest asks for a pending booking. Prices are always derived server side.
type CreateBookingRequest struct {
	RoomIDs         []string       `json:"room_ids"         validate:"required,min=1,max=10,dive,required"`
	CheckIn         string         `json:"check_in"         validate:"required,datetime=2006-01-02"`
	CheckOut        string         `json:"check_out"        validate:"required,datetime=2006-01-02"`
	Adults          int            `json:"adults"           validate:"required,min=1"`
	Children        int            `json:"children"         validate:"min=0"`
	Guest           GuestRequest   `json:"guest"            validate:"required"`
	SpecialRequests string         `json:"special_requests" validate:"omitempty,max=500"`
	Extras          []ExtraRequest `json:"extras"           validate:"omitempty,max=20,dive"`
	Source          string         `json:"source"           validate:"omitempty,oneof=web mobile front_desk phone partner"`
}

// Dates parses the stay dates as civil days.
func (c *CreateBookingRequest) Dates() (checkIn, checkOut time.Time, err error) {
	if checkIn, err = timezone.ParseDay(c.CheckIn); err != nil {
		return checkIn, checkOut, err //nolint:wrapcheck
	}

	if checkOut, err = timezone.ParseDay(c.CheckOut); err != nil {
		return checkIn, checkOut, err //nolint:wrapcheck
	}

	return checkIn, checkOut, nil
}

// ToModel builds a pending booking without rates; rates and totals are set once the rooms are locked.
func (c *CreateBookingRequest) ToModel(hotelID, user string, checkIn, checkOut, now time.Time) model.Booking {
	source := c.Source
	if source == "" {
		source = SourceWeb
	}

	rooms := make([]model.BookingRoom, len(c.RoomIDs))
	for i, id := range c.RoomIDs {
		rooms[i] = model.BookingRoom{RoomID: id}
	}

	extras := make(model.Extras, len(c.Extras))
	for i, extra := range c.Extras {
		extras[i] = model.Extra{Name: extra.Name, Price: shared.RoundMoney(extra.Price), Quantity: extra.Quantity}
	}

	return model.Booking{
		ID:              uuid.NewString(),
		HotelID:         hotelID,
		UserID:          user,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Nights:          model.Nights(checkIn, checkOut),
		Status:          model.StatusPending,
		PaymentStatus:   model.PaymentPending,
		Adults:          c.Adults,
		Children:        c.Children,
		GuestName:       c.Guest.Name,
		GuestEmail:      c.Guest.Email,
		GuestPhone:      c.Guest.Phone,
		SpecialRequests: c.SpecialRequests,
		Extras:          extras,
		Source:          source,
		Rooms:           rooms,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

// SamePayload reports whether booking was created from an equivalent request.
func (c *CreateBookingRequest) SamePayload(booking model.Booking) bool {
	checkIn, checkOut, err := c.Dates()
	if err != nil {
		return false
	}

	requested := slices.Clone(c.RoomIDs)
	stored := booking.RoomIDs()

	slices.Sort(requested)
	slices.Sort(stored)

	return slices.Equal(requested, stored) &&
		checkIn.Equal(booking.CheckIn) &&
		checkOut.Equal(booking.CheckOut) &&
		c.Adults == booking.Adults &&
		c.Children == booking.Children
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"required,max=255"`
	Force  bool   `json:"force"`
}

// PaymentRequest carries the payment collaborator's outcome for a booking.
type PaymentRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=paid failed"`
}

// PaymentOutcomeMessage is the payment outcome consumed from the message bus.
type PaymentOutcomeMessage struct {
	BookingID string `json:"booking_id" validate:"required"`
	HotelID   string `json:"hotel_id"   validate:"required"`
	Outcome   string `json:"outcome"    validate:"required,oneof=paid failed"`
}

type BookingFilter struct {
	Status        string `json:"status"         validate:"omitempty,oneof=pending confirmed checked_in checked_out cancelled no_show"`
	PaymentStatus string `json:"payment_status" validate:"omitempty,oneof=pending paid refunded failed"`
	UserID        string `json:"user_id"        validate:"omitempty"`
	From          string `json:"from"           validate:"omitempty,datetime=2006-01-02"`
	To            string `json:"to"             validate:"omitempty,datetime=2006-01-02"`
}

// ToFilterGroup selects bookings of a hotel, optionally those staying within [From, To).
func (f BookingFilter) ToFilterGroup(hotelID string) gDto.FilterGroup {
	group := gDto.And(gDto.Eq(model.TableName, model.FieldHotelID, hotelID))

	group.Add(model.TableName, model.FieldStatus, f.Status)
	group.Add(model.TableName, model.FieldPaymentStatus, f.PaymentStatus)
	group.Add(model.TableName, model.FieldUserID, f.UserID)

	if f.To != "" {
		group.Filters = append(group.Filters, gDto.Filter{
			Field: model.FieldCheckIn, Value: f.To, Operator: gDto.FilterOperatorLess, Table: model.TableName,
		})
	}

	if f.From != "" {
		group.Filters = append(group.Filters, gDto.Filter{
			Field: model.FieldCheckOut, Value: f.From, Operator: gDto.FilterOperatorGreater, Table: model.TableName,
		})
	}

	return group
}

type BookingRoomResponse struct {
	RoomID string  `json:"room_id"`
	Rate   float64 `json:"rate"`
}

type ExtraResponse struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type GuestResponse struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type BookingResponse struct {
	ID                 string                `json:"id"`
	BookingNumber      string                `json:"booking_number"`
	HotelID            string                `json:"hotel_id"`
	UserID             string                `json:"user_id"`
	Rooms              []BookingRoomResponse `json:"rooms"`
	CheckIn            string                `json:"check_in"`
	CheckOut           string                `json:"check_out"`
	Nights             int                   `json:"nights"`
	Status             string                `json:"status"`
	PaymentStatus      string                `json:"payment_status"`
	TotalAmount        float64               `json:"total_amount"`
	HoldExpiresAt      *string               `json:"hold_expires_at,omitempty"`
	Adults             int                   `json:"adults"`
	Children           int                   `json:"children"`
	Guest              GuestResponse         `json:"guest"`
	SpecialRequests    string                `json:"special_requests,omitempty"`
	Extras             []ExtraResponse       `json:"extras"`
	Source             string                `json:"source"`
	CancellationReason string                `json:"cancellation_reason,omitempty"`
	CancelledAt        *string               `json:"cancelled_at,omitempty"`
	gDto.Metadata

	// Replayed marks a response served from an earlier request with the same idempotency key.
	Replayed bool `json:"-"`
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.BookingNumber = model.BookingNumber
	r.HotelID = model.HotelID
	r.UserID = model.UserID
	r.CheckIn = model.CheckIn.Format(constant.DayFormat)
	r.CheckOut = model.CheckOut.Format(constant.DayFormat)
	r.Nights = model.Nights
	r.Status = string(model.Status)
	r.PaymentStatus = string(model.PaymentStatus)
	r.TotalAmount = model.TotalAmount
	r.HoldExpiresAt = formatTime(model.HoldExpiresAt)
	r.Adults = model.Adults
	r.Children = model.Children
	r.Guest = GuestResponse{Name: model.GuestName, Email: model.GuestEmail, Phone: model.GuestPhone}
	r.SpecialRequests = model.SpecialRequests
	r.Source = model.Source
	r.CancellationReason = model.CancellationReason
	r.CancelledAt = formatTime(model.CancelledAt)
	r.Metadata.FromModel(model.Metadata)

	r.Rooms = make([]BookingRoomResponse, len(model.Rooms))
	for i, room := range model.Rooms {
		r.Rooms[i] = BookingRoomResponse{RoomID: room.RoomID, Rate: room.Rate}
	}

	r.Extras = make([]ExtraResponse, len(model.Extras))
	for i, extra := range model.Extras {
		r.Extras[i] = ExtraResponse(extra)
	}
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}

	formatted := timezone.Format(*t, constant.DateFormat)

	return &formatted
}
