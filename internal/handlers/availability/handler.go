package availability

import (
	"inncore/infras/otel"
	"inncore/internal/domains/availability/model/dto"
	"inncore/internal/domains/availability/service"
	"inncore/shared/constant"
	"inncore/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Availability
	otel    otel.Otel
}

func New(service service.Availability, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/availability", handler.FindAvailableRooms)
}

// FindAvailableRooms searches the rooms free for a whole stay.
// @Summary Find available rooms
// @Description List bookable rooms with no blocking booking overlapping [check_in, check_out), ordered by room number.
// @Description The result is a snapshot; creating a booking re-checks availability.
// @Tags Availability
// @Produce json
// @Param hotelID path string true "Hotel ID"
// @Param check_in query string true "Arrival day (YYYY-MM-DD)"
// @Param check_out query string true "Departure day (YYYY-MM-DD), exclusive"
// @Param type query string false "Room type"
// @Success 200 {object} response.Data[dto.AvailabilityResponse] "Available rooms"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/hotels/{hotelID}/availability [get]
// @Security BearerAuth
func (handler *Handler) FindAvailableRooms(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".FindAvailableRooms")
	defer scope.End()

	query := r.URL.Query()
	req := dto.AvailabilityRequest{
		CheckIn:  query.Get("check_in"),
		CheckOut: query.Get("check_out"),
		Type:     query.Get("type"),
	}

	res, err := handler.service.FindAvailableRooms(ctx, chi.URLParam(r, constant.RequestParamHotelID), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("check_in", req.CheckIn).Str("check_out", req.CheckOut).Msg("failed to find available rooms")

		response.WithError(w, err)

		return
	}

	scope.SetAttributes(map[string]any{"availability.rooms": len(res.Rooms)})

	response.WithJSON(w, http.StatusOK, res)
}
