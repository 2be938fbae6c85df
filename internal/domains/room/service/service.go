package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Room=MockRoomService

import (
	"context"
	"errors"
	"fmt"

	"inncore/config"
	"inncore/infras/otel"
	"inncore/internal/domains/room/model"
	"inncore/internal/domains/room/model/dto"
	"inncore/internal/domains/room/repository"
	"inncore/shared"
	"inncore/shared/cache"
	"inncore/shared/constant"
	gDto "inncore/shared/dto"
	"inncore/shared/failure"
	"inncore/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetRoom    = "room:get"
	cacheGetAllRoom = "room:gets"
	cacheCountRoom  = "room:count"
)

var errRoomNotFound = failure.NotFound("room not found")

type Room interface {
	Create(ctx context.Context, hotelID string, req dto.CreateRoomRequest) (dto.RoomResponse, error)
	GetAll(ctx context.Context, hotelID string, req gDto.QueryParams, filter dto.RoomFilter) (dto.GetRoomsResponse, error)
	Get(ctx context.Context, hotelID, id string) (dto.RoomResponse, error)
	Update(ctx context.Context, hotelID, id string, req dto.UpdateRoomRequest) error
	UpdateStatus(ctx context.Context, hotelID, id string, status model.Status) error
	Deactivate(ctx context.Context, hotelID, id string) error
}

type serviceImpl struct {
	repo  repository.Room
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Room, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Room {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, hotelID string, req dto.CreateRoomRequest) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	room := req.ToModel(hotelID, user)

	if err = s.repo.Insert(ctx, room); err != nil {
		if errors.Is(err, repository.ErrDuplicateNumber) {
			return res, failure.Conflict(fmt.Sprintf("room %s already exists", room.Number)) // nolint:wrapcheck
		}

		log.Error().Err(err).Str("hotel_id", hotelID).Msg("failed to create room")

		return res, fmt.Errorf("failed to create room: %w", err)
	}

	s.invalidate(ctx, hotelID, constant.Empty)
	res.FromModel(room)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, hotelID string, req gDto.QueryParams, filter dto.RoomFilter) (res dto.GetRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	group := filter.ToFilterGroup(hotelID)
	cacheKey := shared.BuildCacheKeyWithQuery(shared.BuildCacheKey(cacheGetAllRoom, hotelID), req, group)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for rooms")

		return res, nil
	}

	total, err := s.count(ctx, hotelID, group)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to get rooms")

		return res, fmt.Errorf("failed to get rooms: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save rooms to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) count(ctx context.Context, hotelID string, group gDto.FilterGroup) (res int, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(shared.BuildCacheKey(cacheCountRoom, hotelID), gDto.QueryParams{}, group)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to count rooms")

		return res, fmt.Errorf("failed to count rooms: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, hotelID, id string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetRoom, hotelID, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for room")

		return res, nil
	}

	room, err := s.find(ctx, hotelID, id)
	if err != nil {
		return res, err
	}

	res.FromModel(room)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, hotelID, id string, req dto.UpdateRoomRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	if _, err = s.find(ctx, hotelID, id); err != nil {
		return err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	fields := shared.TransformFields(req, user)

	for _, field := range []string{model.FieldBaseRate, model.FieldCurrentRate} {
		if rate, ok := fields[field].(float64); ok {
			fields[field] = shared.RoundMoney(rate)
		}
	}

	return s.update(ctx, hotelID, id, fields)
}

// UpdateStatus applies a housekeeping or maintenance signal. It never touches bookings.
func (s *serviceImpl) UpdateStatus(ctx context.Context, hotelID, id string, status model.Status) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.UpdateStatus")
	defer scope.End()
	defer scope.TraceIfError(err)

	if !status.Valid() {
		return failure.BadRequestFromString(fmt.Sprintf("invalid room status %q", status)) // nolint:wrapcheck
	}

	room, err := s.find(ctx, hotelID, id)
	if err != nil {
		return err
	}

	if room.Status == status {
		return nil
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	log.Info().
		Str("hotel_id", hotelID).
		Str("room", room.Number).
		Str("from", string(room.Status)).
		Str("to", string(status)).
		Msg("room status changed")

	return s.update(ctx, hotelID, id, map[string]any{
		model.FieldStatus:        status,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	})
}

// Deactivate soft-deletes a room. Existing bookings are kept; the room stops appearing in searches.
func (s *serviceImpl) Deactivate(ctx context.Context, hotelID, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Deactivate")
	defer scope.End()
	defer scope.TraceIfError(err)

	room, err := s.find(ctx, hotelID, id)
	if err != nil {
		return err
	}

	if !room.Active {
		return nil
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	return s.update(ctx, hotelID, id, map[string]any{
		model.FieldActive:        false,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	})
}

func (s *serviceImpl) find(ctx context.Context, hotelID, id string) (model.Room, error) {
	room, err := s.repo.Get(ctx, shared.FilterByIDInHotel(id, model.FieldID, hotelID, model.FieldHotelID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("room_id", id).Msg("failed to get room")

		return room, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return room, errRoomNotFound
	}

	return room, nil
}

func (s *serviceImpl) update(ctx context.Context, hotelID, id string, fields map[string]any) error {
	filter := shared.FilterByIDInHotel(id, model.FieldID, hotelID, model.FieldHotelID, model.TableName)

	if err := s.repo.Update(ctx, fields, filter); err != nil {
		log.Error().Err(err).Str("room_id", id).Msg("failed to update room")

		return fmt.Errorf("failed to update room: %w", err)
	}

	s.invalidate(ctx, hotelID, id)

	return nil
}

func (s *serviceImpl) invalidate(ctx context.Context, hotelID, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if id != constant.Empty {
			if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetRoom, hotelID, id)); err != nil {
				log.Error().Err(err).Msg("failed to delete room cache")
			}
		}

		shared.InvalidateCaches(c, s.cache, shared.BuildCacheKey(cacheGetAllRoom, hotelID))
		shared.InvalidateCaches(c, s.cache, shared.BuildCacheKey(cacheCountRoom, hotelID))
	}()
}
