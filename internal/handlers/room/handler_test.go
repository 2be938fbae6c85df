package room_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	otelMocks "inncore/infras/otel/mocks"
	"inncore/internal/domains/room/mocks"
	"inncore/internal/domains/room/model"
	"inncore/internal/domains/room/model/dto"
	"inncore/internal/handlers/room"
	gDto "inncore/shared/dto"
	"inncore/shared/failure"
)

func newRouter(t *testing.T) (http.Handler, *mocks.MockRoomService) {
	t.Helper()

	svc := mocks.NewMockRoomService(gomock.NewController(t))
	handler := room.New(svc, otelMocks.NewOtel())

	router := chi.NewRouter()
	router.Route("/hotels/{hotelID}", handler.Router)

	return router, svc
}

func do(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))

	return rec
}

func TestHandler_CreateRoom(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().Create(gomock.Any(), "hotel-1", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, req dto.CreateRoomRequest) (dto.RoomResponse, error) {
			assert.Equal(t, "101", req.Number)

			return dto.RoomResponse{ID: "r1", Number: req.Number}, nil
		})

	rec := do(router, http.MethodPost, "/hotels/hotel-1/rooms",
		`{"number": "101", "type": "double", "base_rate": 120, "capacity": 2}`)

	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(router, http.MethodPost, "/hotels/hotel-1/rooms", `{"number": "102", "type": "castle", "base_rate": 120, "capacity": 2}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_GetRooms(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().GetAll(gomock.Any(), "hotel-1", gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, params gDto.QueryParams, filter dto.RoomFilter) (dto.GetRoomsResponse, error) {
			assert.Equal(t, "suite", filter.Type)
			assert.Equal(t, 2, params.Page)
			assert.NotNil(t, filter.Active)

			return dto.GetRoomsResponse{}, nil
		})

	rec := do(router, http.MethodGet, "/hotels/hotel-1/rooms?type=suite&active=true&page=2", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodGet, "/hotels/hotel-1/rooms?status=occupied", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "occupied is computed, never declared")
}

func TestHandler_UpdateRoomStatus(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().UpdateStatus(gomock.Any(), "hotel-1", "r1", model.StatusDirty).Return(nil)
	svc.EXPECT().UpdateStatus(gomock.Any(), "hotel-1", "missing", model.StatusVacant).Return(failure.NotFound("room not found"))

	assert.Equal(t, http.StatusOK, do(router, http.MethodPatch, "/hotels/hotel-1/rooms/r1/status", `{"status": "dirty"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodPatch, "/hotels/hotel-1/rooms/missing/status", `{"status": "vacant"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodPatch, "/hotels/hotel-1/rooms/r1/status", `{"status": "reserved"}`).Code)
}

func TestHandler_DeactivateRoom(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().Deactivate(gomock.Any(), "hotel-1", "r1").Return(errors.New("database error"))

	rec := do(router, http.MethodDelete, "/hotels/hotel-1/rooms/r1", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "database error")
}
