package room

import (
	"inncore/infras/otel"
	"inncore/internal/domains/room/model"
	"inncore/internal/domains/room/model/dto"
	"inncore/internal/domains/room/service"
	"inncore/shared"
	"inncore/shared/constant"
	gDto "inncore/shared/dto"
	"inncore/shared/validator"
	"inncore/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Room
	otel    otel.Otel
}

func New(service service.Room, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/rooms", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateRoom)
		routerGroup.Get("/", handler.GetRooms)
		routerGroup.Get("/{id}", handler.GetRoomByID)
		routerGroup.Patch("/{id}", handler.UpdateRoom)
		routerGroup.Patch("/{id}/status", handler.UpdateRoomStatus)
		routerGroup.Delete("/{id}", handler.DeactivateRoom)
	})
}

// CreateRoom registers a room in the hotel.
// @Summary Create a new room
// @Description Register a room with its type, rates and capacity. New rooms are vacant unless a status is given.
// @Tags Room
// @Accept json
// @Produce json
// @Param hotelID path string true "Hotel ID"
// @Param request body dto.CreateRoomRequest true "Create Room Request"
// @Success 201 {object} response.Data[dto.RoomResponse] "Room created"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/hotels/{hotelID}/rooms [post]
// @Security BearerAuth
func (handler *Handler) CreateRoom(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateRoom")
	defer scope.End()

	req := dto.CreateRoomRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	hotelID := chi.URLParam(request, constant.RequestParamHotelID)

	room, err := handler.service.Create(ctx, hotelID, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create room")

		response.WithError(writer, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Room created successfully by user " + user)

	response.WithJSON(writer, http.StatusCreated, room)
}

// GetRooms lists the rooms of a hotel.
// @Summary Get all rooms
// @Description Retrieve the rooms of a hotel with optional filtering and pagination.
// @Tags Room
// @Accept json
// @Produce json
// @Param hotelID path string true "Hotel ID"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param type query string false "Filter by room type"
// @Param status query string false "Filter by declared status"
// @Param active query boolean false "Filter by active flag"
// @Success 200 {object} response.Data[dto.GetRoomsResponse] "List of rooms"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/hotels/{hotelID}/rooms [get]
// @Security BearerAuth
func (handler *Handler) GetRooms(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRooms")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filter := dto.RoomFilter{
		Type:   r.URL.Query().Get(model.FieldType),
		Status: r.URL.Query().Get(model.FieldStatus),
		Active: shared.ConvertStringToBool(r.URL.Query().Get(model.FieldActive)),
	}

	if err := validator.ValidateStruct(&filter); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate room filter")

		response.WithError(w, err)

		return
	}

	rooms, err := handler.service.GetAll(ctx, chi.URLParam(r, constant.RequestParamHotelID), queryParams, filter)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get rooms")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Rooms retrieved successfully")

	response.WithJSON(w, http.StatusOK, rooms)
}

// GetRoomByID retrieves a room by its ID.
// @Summary Get a room by ID
// @Tags Room
// @Produce json
// @Param hotelID path string true "Hotel ID"
// @Param id path string true "Room ID"
// @Success 200 {object} response.Data[dto.RoomResponse] "Room details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/hotels/{hotelID}/rooms/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetRoomByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRoomByID")
	defer scope.End()

	hotelID := chi.URLParam(r, constant.RequestParamHotelID)
	id := chi.URLParam(r, constant.RequestParamID)

	room, err := handler.service.Get(ctx, hotelID, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("room_id", id).Msg("failed to get room by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, room)
}

// UpdateRoom changes the type, rates or capacity of a room.
// @Summary Update a room
// @Tags Room
// @Accept json
// @Produce json
// @Param hotelID path string true "Hotel ID"
// @Param id path string true "Room ID"
// @Param request body dto.UpdateRoomRequest true "Update Room Request"
// @Success 200 {object} response.Message "Room updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/hotels/{hotelID}/rooms/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateRoom")
	defer scope.End()

	req := dto.UpdateRoomRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	hotelID := chi.URLParam(r, constant.RequestParamHotelID)
	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Update(ctx, hotelID, id, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("room_id", id).Msg("failed to update room")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Room updated successfully")
}

// UpdateRoomStatus records a housekeeping or maintenance change of a room.
// @Summary Update the declared status of a room
// @Description Housekeeping marks rooms vacant or dirty; maintenance takes them out of service.
// @Tags Room
// @Accept json
// @Produce json
// @Param hotelID path string true "Hotel ID"
// @Param id path string true "Room ID"
// @Param request body dto.UpdateRoomStatusRequest true "Room Status Request"
// @Success 200 {object} response.Message "Room status updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/hotels/{hotelID}/rooms/{id}/status [patch]
// @Security BearerAuth
func (handler *Handler) UpdateRoomStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateRoomStatus")
	defer scope.End()

	req := dto.UpdateRoomStatusRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	hotelID := chi.URLParam(r, constant.RequestParamHotelID)
	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.UpdateStatus(ctx, hotelID, id, model.Status(req.Status)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("room_id", id).Msg("failed to update room status")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Room status changed to " + req.Status)

	response.WithMessage(w, http.StatusOK, "Room status updated successfully")
}

// DeactivateRoom takes a room out of the registry without deleting its booking history.
// @Summary Deactivate a room
// @Tags Room
// @Produce json
// @Param hotelID path string true "Hotel ID"
// @Param id path string true "Room ID"
// @Success 200 {object} response.Message "Room deactivated successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/hotels/{hotelID}/rooms/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeactivateRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeactivateRoom")
	defer scope.End()

	hotelID := chi.URLParam(r, constant.RequestParamHotelID)
	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Deactivate(ctx, hotelID, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("room_id", id).Msg("failed to deactivate room")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Room deactivated successfully")
}
