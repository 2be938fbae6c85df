package dto

import (
	"inncore/internal/domains/room/model"
	"inncore/shared"
	gDto "inncore/shared/dto"
	gModel "inncore/shared/model"
	"inncore/shared/timezone"

	"github.com/google/uuid"
)

type CreateRoomRequest struct {
	Number      string   `json:"number"       validate:"required,max=20"`
	Type        string   `json:"type"         validate:"required,oneof=single double suite deluxe"`
	BaseRate    float64  `json:"base_rate"    validate:"required,gt=0"`
	CurrentRate *float64 `json:"current_rate" validate:"omitempty,gte=0"`
	Capacity    int      `json:"capacity"     validate:"required,min=1,max=20"`
	Status      string   `json:"status"       validate:"omitempty,oneof=vacant dirty maintenance out_of_order"`
}

func (c *CreateRoomRequest) ToModel(hotelID, user string) model.Room {
	status := model.StatusVacant
	if c.Status != "" {
		status = model.Status(c.Status)
	}

	currentRate := c.BaseRate
	if c.CurrentRate != nil {
		currentRate = *c.CurrentRate
	}

	now := timezone.Now()

	return model.Room{
		ID:          uuid.NewString(),
		HotelID:     hotelID,
		Number:      c.Number,
		Type:        model.Type(c.Type),
		BaseRate:    shared.RoundMoney(c.BaseRate),
		CurrentRate: shared.RoundMoney(currentRate),
		Capacity:    c.Capacity,
		Status:      status,
		Active:      true,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

// UpdateRoomRequest changes descriptive fields and rates. Number and hotel are immutable.
type UpdateRoomRequest struct {
	Type        string   `db:"type"         json:"type"         validate:"omitempty,oneof=single double suite deluxe"`
	BaseRate    *float64 `db:"base_rate"    json:"base_rate"    validate:"omitempty,gt=0"`
	CurrentRate *float64 `db:"current_rate" json:"current_rate" validate:"omitempty,gte=0"`
	Capacity    *int     `db:"capacity"     json:"capacity"     validate:"omitempty,min=1,max=20"`
}

// UpdateRoomStatusRequest carries the housekeeping and maintenance signal.
type UpdateRoomStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=vacant dirty maintenance out_of_order"`
}

type RoomResponse struct {
	ID          string  `json:"id"`
	HotelID     string  `json:"hotel_id"`
	Number      string  `json:"number"`
	Type        string  `json:"type"`
	BaseRate    float64 `json:"base_rate"`
	CurrentRate float64 `json:"current_rate"`
	Capacity    int     `json:"capacity"`
	Status      string  `json:"status"`
	Active      bool    `json:"active"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.HotelID = model.HotelID
	r.Number = model.Number
	r.Type = string(model.Type)
	r.BaseRate = model.BaseRate
	r.CurrentRate = model.CurrentRate
	r.Capacity = model.Capacity
	r.Status = string(model.Status)
	r.Active = model.Active
	r.Metadata.FromModel(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}

// RoomFilter narrows registry listings.
type RoomFilter struct {
	Type   string `validate:"omitempty,oneof=single double suite deluxe"`
	Status string `validate:"omitempty,oneof=vacant dirty maintenance out_of_order"`
	Active *bool
}

func (f RoomFilter) ToFilterGroup(hotelID string) gDto.FilterGroup {
	group := gDto.And(gDto.Eq(model.TableName, model.FieldHotelID, hotelID))
	group.Add(model.TableName, model.FieldType, f.Type)
	group.Add(model.TableName, model.FieldStatus, f.Status)

	if f.Active != nil {
		group.Filters = append(group.Filters, gDto.Eq(model.TableName, model.FieldActive, *f.Active))
	}

	return group
}
