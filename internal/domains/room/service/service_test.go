package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"inncore/config"
	"inncore/infras/otel/mocks"
	roomMocks "inncore/internal/domains/room/mocks"
	"inncore/internal/domains/room/model"
	"inncore/internal/domains/room/model/dto"
	"inncore/internal/domains/room/repository"
	"inncore/internal/domains/room/service"
	cacheMocks "inncore/shared/cache/mocks"
	"inncore/shared/constant"
	gDto "inncore/shared/dto"
	"inncore/shared/failure"
)

const hotelID = "hotel-1"

var errCacheMiss = errors.New("cache miss")

func newService(t *testing.T) (service.Room, *roomMocks.MockRoom) {
	t.Helper()

	ctrl := gomock.NewController(t)

	mockRepo := roomMocks.NewMockRoom(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errCacheMiss).AnyTimes()
	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	return service.New(mockRepo, cfg, mockCache, mocks.NewOtel()), mockRepo
}

func TestRoomService_Create(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(repo *roomMocks.MockRoom)
		wantCode  int
	}{
		{
			name: "successful creation",
			setupMock: func(repo *roomMocks.MockRoom) {
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, room model.Room) error {
					assert.Equal(t, hotelID, room.HotelID)
					assert.Equal(t, model.StatusVacant, room.Status)
					assert.True(t, room.Active)
					assert.InDelta(t, 99.99, room.CurrentRate, 0.0001)

					return nil
				})
			},
		},
		{
			name: "duplicate number",
			setupMock: func(repo *roomMocks.MockRoom) {
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(repository.ErrDuplicateNumber)
			},
			wantCode: 409,
		},
		{
			name: "repository error",
			setupMock: func(repo *roomMocks.MockRoom) {
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("database error"))
			},
			wantCode: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newService(t)
			tt.setupMock(repo)

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "staff-1")
			res, err := svc.Create(ctx, hotelID, dto.CreateRoomRequest{
				Number:   "101",
				Type:     "double",
				BaseRate: 99.994,
				Capacity: 2,
			})

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "101", res.Number)
			assert.Equal(t, "vacant", res.Status)
		})
	}
}

func TestRoomService_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{ID: "room-1", HotelID: hotelID, Number: "101"}, nil)

		res, err := svc.Get(context.Background(), hotelID, "room-1")

		require.NoError(t, err)
		assert.Equal(t, "room-1", res.ID)
	})

	t.Run("other hotel reads as not found", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, nil)

		_, err := svc.Get(context.Background(), "hotel-2", "room-1")

		require.Error(t, err)
		assert.True(t, failure.IsNotFound(err))
	})
}

func TestRoomService_GetAll(t *testing.T) {
	svc, repo := newService(t)

	repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(2, nil)
	repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Room{
		{ID: "room-1", Number: "101"},
		{ID: "room-2", Number: "102"},
	}, nil)

	res, err := svc.GetAll(context.Background(), hotelID, gDto.QueryParams{Page: 1, Limit: 10}, dto.RoomFilter{Type: "double"})

	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalData)
	assert.Equal(t, 1, res.TotalPage)
	assert.Len(t, res.Rooms, 2)
}

func TestRoomService_UpdateStatus(t *testing.T) {
	t.Run("housekeeping marks room vacant", func(t *testing.T) {
		svc, repo := newService(t)

		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{ID: "room-1", HotelID: hotelID, Status: model.StatusDirty}, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
			assert.Equal(t, model.StatusVacant, fields[model.FieldStatus])

			return nil
		})

		require.NoError(t, svc.UpdateStatus(context.Background(), hotelID, "room-1", model.StatusVacant))
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		svc, repo := newService(t)

		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{ID: "room-1", Status: model.StatusMaintenance}, nil)

		require.NoError(t, svc.UpdateStatus(context.Background(), hotelID, "room-1", model.StatusMaintenance))
	})

	t.Run("invalid status", func(t *testing.T) {
		svc, _ := newService(t)

		err := svc.UpdateStatus(context.Background(), hotelID, "room-1", model.Status("occupied"))

		require.Error(t, err)
		assert.True(t, failure.IsValidation(err))
	})
}

func TestRoomService_Deactivate(t *testing.T) {
	svc, repo := newService(t)

	repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{ID: "room-1", HotelID: hotelID, Active: true}, nil)
	repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
		assert.Equal(t, false, fields[model.FieldActive])

		return nil
	})

	require.NoError(t, svc.Deactivate(context.Background(), hotelID, "room-1"))
}

func TestRoomService_Update(t *testing.T) {
	svc, repo := newService(t)

	rate := 150.456
	repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{ID: "room-1", HotelID: hotelID}, nil)
	repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
		assert.InDelta(t, 150.46, fields[model.FieldCurrentRate], 0.0001)
		assert.NotContains(t, fields, model.FieldBaseRate)

		return nil
	})

	require.NoError(t, svc.Update(context.Background(), hotelID, "room-1", dto.UpdateRoomRequest{CurrentRate: &rate}))
}
