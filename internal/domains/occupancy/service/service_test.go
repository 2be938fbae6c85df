package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	otelMocks "inncore/infras/otel/mocks"
	bookingMocks "inncore/internal/domains/booking/mocks"
	bookingModel "inncore/internal/domains/booking/model"
	"inncore/internal/domains/occupancy/model/dto"
	"inncore/internal/domains/occupancy/service"
	roomMocks "inncore/internal/domains/room/mocks"
	roomModel "inncore/internal/domains/room/model"
)

const hotelID = "hotel-1"

var now = time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) (service.Occupancy, *roomMocks.MockRoom, *bookingMocks.MockBooking) {
	t.Helper()

	ctrl := gomock.NewController(t)
	rooms := roomMocks.NewMockRoom(ctrl)
	bookings := bookingMocks.NewMockBooking(ctrl)

	return service.NewWithClock(rooms, bookings, func() time.Time { return now }, otelMocks.NewOtel()), rooms, bookings
}

func TestOccupancy_ProjectRoomStatuses(t *testing.T) {
	registry := []roomModel.Room{
		{ID: "r-102", Number: "102", Type: roomModel.TypeDouble, Status: roomModel.StatusVacant, Active: true},
		{ID: "r-101", Number: "101", Type: roomModel.TypeDouble, Status: roomModel.StatusMaintenance, Active: true},
		{ID: "r-103", Number: "103", Type: roomModel.TypeDouble, Status: roomModel.StatusDirty, Active: true},
	}

	active := []bookingModel.Booking{
		{ID: "b1", Status: bookingModel.StatusConfirmed, CheckIn: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), CheckOut: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)},
		{ID: "b2", Status: bookingModel.StatusConfirmed, CheckIn: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), CheckOut: time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC)},
	}

	lines := map[string][]bookingModel.BookingRoom{
		"b1": {{BookingID: "b1", RoomID: "r-101"}},
		"b2": {{BookingID: "b2", RoomID: "r-102"}},
	}

	t.Run("projects every active room in number order", func(t *testing.T) {
		svc, rooms, bookings := newService(t)

		rooms.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(append([]roomModel.Room{}, registry...), nil)
		bookings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(append([]bookingModel.Booking{}, active...), nil)
		bookings.EXPECT().Rooms(gomock.Any(), "b1", "b2").Return(lines, nil)

		res, err := svc.ProjectRoomStatuses(context.Background(), hotelID, dto.OccupancyFilter{})

		require.NoError(t, err)
		require.Len(t, res.Rooms, 3)

		assert.Equal(t, "101", res.Rooms[0].Number)
		assert.Equal(t, "maintenance", res.Rooms[0].ComputedStatus)
		assert.Equal(t, "102", res.Rooms[1].Number)
		assert.Equal(t, "reserved", res.Rooms[1].ComputedStatus)
		assert.Equal(t, "103", res.Rooms[2].Number)
		assert.Equal(t, "dirty", res.Rooms[2].ComputedStatus)
		assert.Equal(t, map[string]int{"maintenance": 1, "reserved": 1, "dirty": 1}, res.Summary)
	})

	t.Run("filters by computed status", func(t *testing.T) {
		svc, rooms, bookings := newService(t)

		rooms.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(append([]roomModel.Room{}, registry...), nil)
		bookings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(append([]bookingModel.Booking{}, active...), nil)
		bookings.EXPECT().Rooms(gomock.Any(), gomock.Any(), gomock.Any()).Return(lines, nil)

		res, err := svc.ProjectRoomStatuses(context.Background(), hotelID, dto.OccupancyFilter{Status: "reserved"})

		require.NoError(t, err)
		require.Len(t, res.Rooms, 1)
		assert.Equal(t, "r-102", res.Rooms[0].ID)
		assert.Equal(t, 3, res.Summary["maintenance"]+res.Summary["reserved"]+res.Summary["dirty"])
	})

	t.Run("no active bookings skips the room lookup", func(t *testing.T) {
		svc, rooms, bookings := newService(t)

		rooms.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(append([]roomModel.Room{}, registry...), nil)
		bookings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

		res, err := svc.ProjectRoomStatuses(context.Background(), hotelID, dto.OccupancyFilter{})

		require.NoError(t, err)
		assert.Equal(t, "vacant", res.Rooms[1].ComputedStatus)
	})

	t.Run("load failure", func(t *testing.T) {
		svc, rooms, bookings := newService(t)

		rooms.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("database error"))
		bookings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

		_, err := svc.ProjectRoomStatuses(context.Background(), hotelID, dto.OccupancyFilter{})

		require.Error(t, err)
	})
}
