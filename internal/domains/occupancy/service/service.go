package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"inncore/infras/otel"
	bookingModel "inncore/internal/domains/booking/model"
	bookingRepository "inncore/internal/domains/booking/repository"
	"inncore/internal/domains/occupancy/model/dto"
	"inncore/internal/domains/occupancy/projector"
	roomModel "inncore/internal/domains/room/model"
	roomDto "inncore/internal/domains/room/model/dto"
	roomRepository "inncore/internal/domains/room/repository"
	"inncore/shared/constant"
	gDto "inncore/shared/dto"
	"inncore/shared/timezone"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Occupancy interface {
	ProjectRoomStatuses(ctx context.Context, hotelID string, filter dto.OccupancyFilter) (dto.OccupancyResponse, error)
}

type serviceImpl struct {
	rooms    roomRepository.Room
	bookings bookingRepository.Booking
	clock    func() time.Time
	otel     otel.Otel
}

func New(rooms roomRepository.Room, bookings bookingRepository.Booking, otel otel.Otel) Occupancy {
	return NewWithClock(rooms, bookings, timezone.Now, otel)
}

func NewWithClock(rooms roomRepository.Room, bookings bookingRepository.Booking, clock func() time.Time, otel otel.Otel) Occupancy {
	return &serviceImpl{
		rooms:    rooms,
		bookings: bookings,
		clock:    clock,
		otel:     otel,
	}
}

// ProjectRoomStatuses recomputes the status of every active room of the hotel from the current
// ledger. Room and booking reads are not taken in one snapshot; the result is advisory.
func (s *serviceImpl) ProjectRoomStatuses(ctx context.Context, hotelID string, filter dto.OccupancyFilter) (res dto.OccupancyResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".occupancy.ProjectRoomStatuses")
	defer scope.End()
	defer scope.TraceIfError(err)

	now := s.clock()
	today := timezone.StartOfDay(now)

	var (
		rooms    []roomModel.Room
		bookings []bookingModel.Booking
	)

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		active := true
		roomFilter := roomDto.RoomFilter{Type: filter.Type, Active: &active}

		found, err := s.rooms.GetAll(gctx, gDto.QueryParams{}, roomFilter.ToFilterGroup(hotelID))
		if err != nil {
			return fmt.Errorf("failed to get rooms: %w", err)
		}

		rooms = found

		return nil
	})

	group.Go(func() error {
		found, err := s.activeBookings(gctx, hotelID, today)
		if err != nil {
			return err
		}

		bookings = found

		return nil
	})

	if err = group.Wait(); err != nil {
		log.Error().Err(err).Str("hotel_id", hotelID).Msg("failed to load occupancy inputs")

		return res, fmt.Errorf("failed to load occupancy inputs: %w", err)
	}

	slices.SortStableFunc(rooms, roomModel.ByNumber)

	res.AsOf = timezone.Format(now, constant.DateFormat)
	res.FromProjections(projector.ProjectAll(rooms, bookings, now), filter.Status)

	scope.SetAttributes(map[string]any{
		"occupancy.rooms":    len(rooms),
		"occupancy.bookings": len(bookings),
	})

	return res, nil
}

// activeBookings loads the confirmed and checked-in bookings that have not checked out before
// today, with their rooms.
func (s *serviceImpl) activeBookings(ctx context.Context, hotelID string, today time.Time) ([]bookingModel.Booking, error) {
	group := gDto.And(
		gDto.Eq(bookingModel.TableName, bookingModel.FieldHotelID, hotelID),
		gDto.Filter{
			Field:    bookingModel.FieldStatus,
			Value:    []string{string(bookingModel.StatusConfirmed), string(bookingModel.StatusCheckedIn)},
			Operator: gDto.FilterOperatorIn,
			Table:    bookingModel.TableName,
		},
		gDto.Filter{
			Field:    bookingModel.FieldCheckOut,
			Value:    today,
			Operator: gDto.FilterOperatorGreater,
			Table:    bookingModel.TableName,
		},
	)

	bookings, err := s.bookings.GetAll(ctx, gDto.QueryParams{}, group)
	if err != nil {
		return nil, fmt.Errorf("failed to get active bookings: %w", err)
	}

	if len(bookings) == 0 {
		return bookings, nil
	}

	ids := make([]string, len(bookings))
	for i, booking := range bookings {
		ids[i] = booking.ID
	}

	lines, err := s.bookings.Rooms(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking rooms: %w", err)
	}

	for i := range bookings {
		bookings[i].Rooms = lines[bookings[i].ID]
	}

	return bookings, nil
}
