package occupancy

import (
	"inncore/infras/otel"
	"inncore/internal/domains/occupancy/model/dto"
	"inncore/internal/domains/occupancy/service"
	"inncore/shared/constant"
	"inncore/shared/validator"
	"inncore/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Occupancy
	otel    otel.Otel
}

func New(service service.Occupancy, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/occupancy", handler.ProjectRoomStatuses)
}

// ProjectRoomStatuses reports the computed status of every room for today.
// @Summary Project room statuses
// @Description Combine declared room status with today's bookings into vacant, reserved, occupied, dirty,
// @Description maintenance or out_of_order. The summary counts every room regardless of the status filter.
// @Tags Occupancy
// @Produce json
// @Param hotelID path string true "Hotel ID"
// @Param type query string false "Room type"
// @Param status query string false "Computed status"
// @Success 200 {object} response.Data[dto.OccupancyResponse] "Room statuses"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/hotels/{hotelID}/occupancy [get]
// @Security BearerAuth
func (handler *Handler) ProjectRoomStatuses(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ProjectRoomStatuses")
	defer scope.End()

	filter := dto.OccupancyFilter{
		Type:   r.URL.Query().Get("type"),
		Status: r.URL.Query().Get("status"),
	}

	if err := validator.ValidateStruct(&filter); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate occupancy filter")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.ProjectRoomStatuses(ctx, chi.URLParam(r, constant.RequestParamHotelID), filter)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to project room statuses")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}
