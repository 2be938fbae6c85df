// Package service resolves which rooms of a hotel can be booked for a stay.
package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"inncore/infras/otel"
	"inncore/internal/domains/availability/model/dto"
	"inncore/internal/domains/booking/hold"
	bookingModel "inncore/internal/domains/booking/model"
	"inncore/internal/domains/booking/overlap"
	roomModel "inncore/internal/domains/room/model"
	roomDto "inncore/internal/domains/room/model/dto"
	"inncore/internal/domains/room/repository"
	"inncore/shared/constant"
	gDto "inncore/shared/dto"
	"inncore/shared/failure"
	"inncore/shared/timezone"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
)

type Availability interface {
	FindAvailableRooms(ctx context.Context, hotelID string, req dto.AvailabilityRequest) (dto.AvailabilityResponse, error)
}

type serviceImpl struct {
	rooms    repository.Room
	detector overlap.Detector
	policy   hold.Policy
	otel     otel.Otel
}

func New(rooms repository.Room, detector overlap.Detector, policy hold.Policy, otel otel.Otel) Availability {
	return &serviceImpl{
		rooms:    rooms,
		detector: detector,
		policy:   policy,
		otel:     otel,
	}
}

// FindAvailableRooms lists the active vacant rooms with no blocking booking over the stay, ordered
// by room number. It reads only and holds nothing; a room it returns may still be taken before
// the guest books it.
func (s *serviceImpl) FindAvailableRooms(ctx context.Context, hotelID string, req dto.AvailabilityRequest) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.FindAvailableRooms")
	defer scope.End()
	defer scope.TraceIfError(err)

	now := s.policy.Now()

	checkIn, checkOut, err := stay(req, now)
	if err != nil {
		return res, err
	}

	active := true
	filter := roomDto.RoomFilter{Type: req.Type, Status: string(roomModel.StatusVacant), Active: &active}

	candidates, err := s.rooms.GetAll(ctx, gDto.QueryParams{}, filter.ToFilterGroup(hotelID))
	if err != nil {
		log.Error().Err(err).Str("hotel_id", hotelID).Msg("failed to get candidate rooms")

		return res, fmt.Errorf("failed to get candidate rooms: %w", err)
	}

	candidates = slices.DeleteFunc(candidates, func(room roomModel.Room) bool { return !room.Bookable() })
	nights := bookingModel.Nights(checkIn, checkOut)

	if len(candidates) == 0 {
		res.FromModels(nil, checkIn, checkOut, nights)

		return res, nil
	}

	ids := make([]string, len(candidates))
	for i, room := range candidates {
		ids[i] = room.ID
	}

	blocking, err := s.detector.FindBlockingBookings(ctx, bookingModel.OverlapQuery{
		HotelID:  hotelID,
		RoomIDs:  ids,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Now:      now,
	})
	if err != nil {
		log.Error().Err(err).Str("hotel_id", hotelID).Msg("failed to find blocking bookings")

		return res, fmt.Errorf("failed to find blocking bookings: %w", err)
	}

	blocked := overlap.BlockedRooms(blocking)
	available := slices.DeleteFunc(candidates, func(room roomModel.Room) bool {
		_, taken := blocked[room.ID]

		return taken
	})

	slices.SortStableFunc(available, roomModel.ByNumber)

	scope.SetAttributes(map[string]any{
		"availability.candidates": len(ids),
		"availability.available":  len(available),
	})

	res.FromModels(available, checkIn, checkOut, nights)

	return res, nil
}

func stay(req dto.AvailabilityRequest, now time.Time) (checkIn, checkOut time.Time, err error) {
	if checkIn, err = timezone.ParseDay(req.CheckIn); err != nil {
		return checkIn, checkOut, failure.BadRequestFromString("check_in must use the YYYY-MM-DD format") // nolint:wrapcheck
	}

	if checkOut, err = timezone.ParseDay(req.CheckOut); err != nil {
		return checkIn, checkOut, failure.BadRequestFromString("check_out must use the YYYY-MM-DD format") // nolint:wrapcheck
	}

	if !checkOut.After(checkIn) {
		return checkIn, checkOut, failure.BadRequestFromString("check-out must be after check-in") // nolint:wrapcheck
	}

	if checkIn.Before(timezone.StartOfDay(now)) {
		return checkIn, checkOut, failure.BadRequestFromString("check-in cannot be in the past") // nolint:wrapcheck
	}

	if req.Type != "" && !roomModel.Type(req.Type).Valid() {
		return checkIn, checkOut, failure.BadRequestFromString("unknown room type") // nolint:wrapcheck
	}

	return checkIn, checkOut, nil
}
