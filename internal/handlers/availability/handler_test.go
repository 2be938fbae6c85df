package availability_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	otelMocks "inncore/infras/otel/mocks"
	"inncore/internal/domains/availability/mocks"
	"inncore/internal/domains/availability/model/dto"
	"inncore/internal/handlers/availability"
	"inncore/shared/failure"
)

func newRouter(t *testing.T) (http.Handler, *mocks.MockAvailability) {
	t.Helper()

	svc := mocks.NewMockAvailability(gomock.NewController(t))
	handler := availability.New(svc, otelMocks.NewOtel())

	router := chi.NewRouter()
	router.Route("/hotels/{hotelID}", handler.Router)

	return router, svc
}

func TestHandler_FindAvailableRooms(t *testing.T) {
	t.Run("passes the search through", func(t *testing.T) {
		router, svc := newRouter(t)

		svc.EXPECT().FindAvailableRooms(gomock.Any(), "hotel-1", dto.AvailabilityRequest{
			CheckIn: "2024-03-10", CheckOut: "2024-03-12", Type: "double",
		}).DoAndReturn(func(_ context.Context, _ string, req dto.AvailabilityRequest) (dto.AvailabilityResponse, error) {
			return dto.AvailabilityResponse{CheckIn: req.CheckIn, CheckOut: req.CheckOut, Nights: 2}, nil
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hotels/hotel-1/availability?check_in=2024-03-10&check_out=2024-03-12&type=double", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"nights":2`)
	})

	t.Run("validation errors are client errors", func(t *testing.T) {
		router, svc := newRouter(t)

		svc.EXPECT().FindAvailableRooms(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(dto.AvailabilityResponse{}, failure.BadRequestFromString("check_out must be after check_in"))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hotels/hotel-1/availability?check_in=2024-03-12&check_out=2024-03-10", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), failure.KindValidation)
	})
}
