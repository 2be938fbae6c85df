package booking_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	otelMocks "inncore/infras/otel/mocks"
	"inncore/internal/domains/booking/mocks"
	"inncore/internal/domains/booking/model"
	"inncore/internal/domains/booking/model/dto"
	"inncore/internal/handlers/booking"
	"inncore/shared/constant"
	gDto "inncore/shared/dto"
	"inncore/shared/failure"
)

const createBody = `{
	"room_ids": ["room-101"],
	"check_in": "2024-03-10",
	"check_out": "2024-03-12",
	"adults": 2,
	"guest": {"name": "Ada Lovelace"}
}`

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
	Kind  string          `json:"kind"`
}

func newRouter(t *testing.T) (http.Handler, *mocks.MockBookingService) {
	t.Helper()

	svc := mocks.NewMockBookingService(gomock.NewController(t))
	handler := booking.New(svc, otelMocks.NewOtel())

	router := chi.NewRouter()
	router.Route("/hotels/{hotelID}", handler.Router)

	return router, svc
}

func serve(router http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &body)

	return rec, body
}

func asGuest(req *http.Request, user string) *http.Request {
	ctx := context.WithValue(req.Context(), constant.ContextKeyUserRole, constant.RoleGuest)
	ctx = context.WithValue(ctx, constant.ContextKeyUserID, user)

	return req.WithContext(ctx)
}

func TestHandler_CreateBooking(t *testing.T) {
	t.Run("new booking is created", func(t *testing.T) {
		router, svc := newRouter(t)

		svc.EXPECT().Create(gomock.Any(), "hotel-1", gomock.Any(), "key-1").DoAndReturn(
			func(_ context.Context, _ string, req dto.CreateBookingRequest, _ string) (dto.BookingResponse, error) {
				assert.Equal(t, []string{"room-101"}, req.RoomIDs)

				return dto.BookingResponse{ID: "b1", Status: string(model.StatusPending)}, nil
			})

		req := httptest.NewRequest(http.MethodPost, "/hotels/hotel-1/bookings", strings.NewReader(createBody))
		req.Header.Set(constant.RequestHeaderIdempotencyKey, "key-1")

		rec, body := serve(router, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, string(body.Data), `"id":"b1"`)
	})

	t.Run("replay answers with the original booking", func(t *testing.T) {
		router, svc := newRouter(t)

		svc.EXPECT().Create(gomock.Any(), "hotel-1", gomock.Any(), "key-1").
			Return(dto.BookingResponse{ID: "b1", Replayed: true}, nil)

		req := httptest.NewRequest(http.MethodPost, "/hotels/hotel-1/bookings", strings.NewReader(createBody))
		req.Header.Set(constant.RequestHeaderIdempotencyKey, "key-1")

		rec, body := serve(router, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(body.Data), `"id":"b1"`)
	})

	t.Run("taken rooms are reported as a conflict", func(t *testing.T) {
		router, svc := newRouter(t)

		svc.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), "").
			Return(dto.BookingResponse{}, failure.AvailabilityConflict("rooms no longer available"))

		rec, body := serve(router, httptest.NewRequest(http.MethodPost, "/hotels/hotel-1/bookings", strings.NewReader(createBody)))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, failure.KindAvailabilityConflict, body.Kind)
	})

	t.Run("invalid body never reaches the service", func(t *testing.T) {
		router, _ := newRouter(t)

		rec, body := serve(router, httptest.NewRequest(http.MethodPost, "/hotels/hotel-1/bookings", strings.NewReader(`{"room_ids": []}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, failure.KindValidation, body.Kind)
	})

	t.Run("oversized idempotency key", func(t *testing.T) {
		router, _ := newRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/hotels/hotel-1/bookings", strings.NewReader(createBody))
		req.Header.Set(constant.RequestHeaderIdempotencyKey, strings.Repeat("k", 200))

		rec, _ := serve(router, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_GetBookings_GuestSeesOwnBookings(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().GetAll(gomock.Any(), "hotel-1", gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, _ gDto.QueryParams, filter dto.BookingFilter) (dto.GetBookingsResponse, error) {
			assert.Equal(t, "guest-1", filter.UserID)

			return dto.GetBookingsResponse{}, nil
		})

	req := httptest.NewRequest(http.MethodGet, "/hotels/hotel-1/bookings?user_id=someone-else", nil)
	rec, _ := serve(router, asGuest(req, "guest-1"))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_GetBookingByID_HidesOtherGuestsBookings(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().Get(gomock.Any(), "hotel-1", "b1").Return(dto.BookingResponse{ID: "b1", UserID: "guest-2"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/hotels/hotel-1/bookings/b1", nil)
	rec, body := serve(router, asGuest(req, "guest-1"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, failure.KindNotFound, body.Kind)
}

func TestHandler_CancelBooking(t *testing.T) {
	t.Run("cancelled", func(t *testing.T) {
		router, svc := newRouter(t)

		svc.EXPECT().Cancel(gomock.Any(), "hotel-1", "b1", dto.CancelBookingRequest{Reason: "change of plans"}).
			Return(dto.BookingResponse{ID: "b1", Status: string(model.StatusCancelled)}, nil)

		rec, body := serve(router, httptest.NewRequest(http.MethodPost, "/hotels/hotel-1/bookings/b1/cancel",
			strings.NewReader(`{"reason": "change of plans"}`)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(body.Data), `"status":"cancelled"`)
	})

	t.Run("past the cutoff", func(t *testing.T) {
		router, svc := newRouter(t)

		svc.EXPECT().Cancel(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(dto.BookingResponse{}, failure.StateTransition("booking can no longer be cancelled"))

		rec, body := serve(router, httptest.NewRequest(http.MethodPost, "/hotels/hotel-1/bookings/b1/cancel",
			strings.NewReader(`{"reason": "late"}`)))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, failure.KindStateTransition, body.Kind)
	})
}

func TestHandler_ApplyPayment(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().ApplyPayment(gomock.Any(), "hotel-1", "b1", model.PaymentPaid).
		Return(dto.BookingResponse{ID: "b1", Status: string(model.StatusConfirmed)}, nil)

	rec, _ := serve(router, httptest.NewRequest(http.MethodPost, "/hotels/hotel-1/bookings/b1/payment",
		strings.NewReader(`{"outcome": "paid"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = serve(router, httptest.NewRequest(http.MethodPost, "/hotels/hotel-1/bookings/b1/payment",
		strings.NewReader(`{"outcome": "maybe"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_StayTransitions(t *testing.T) {
	router, svc := newRouter(t)

	svc.EXPECT().CheckIn(gomock.Any(), "hotel-1", "b1").Return(dto.BookingResponse{ID: "b1"}, nil)
	svc.EXPECT().CheckOut(gomock.Any(), "hotel-1", "b1").Return(dto.BookingResponse{ID: "b1"}, nil)
	svc.EXPECT().NoShow(gomock.Any(), "hotel-1", "b2").Return(dto.BookingResponse{}, failure.StateTransition("too early"))

	rec, _ := serve(router, httptest.NewRequest(http.MethodPost, "/hotels/hotel-1/bookings/b1/check-in", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = serve(router, httptest.NewRequest(http.MethodPost, "/hotels/hotel-1/bookings/b1/check-out", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = serve(router, httptest.NewRequest(http.MethodPost, "/hotels/hotel-1/bookings/b2/no-show", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
