package booking

import (
	"context"
	"inncore/infras/otel"
	"inncore/internal/domains/booking/model"
	"inncore/internal/domains/booking/model/dto"
	"inncore/internal/domains/booking/service"
	"inncore/shared/constant"
	gDto "inncore/shared/dto"
	"inncore/shared/failure"
	"inncore/shared/validator"
	"inncore/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const maxIdempotencyKeyLength = 128

type Handler struct {
	service service.Booking
	otel    otel.Otel
}

func New(service service.Booking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateBooking)
		routerGroup.Get("/", handler.GetBookings)
		routerGroup.Get("/{id}", handler.GetBookingByID)
		routerGroup.Post("/{id}/cancel", handler.CancelBooking)
		routerGroup.Post("/{id}/payment", handler.ApplyPayment)
		routerGroup.Post("/{id}/check-in", handler.CheckIn)
		routerGroup.Post("/{id}/check-out", handler.CheckOut)
		routerGroup.Post("/{id}/no-show", handler.NoShow)
	})
}

// CreateBooking places a pending booking holding the requested rooms.
// @Summary Create a new booking
// @Description Hold the requested rooms for the stay. The booking stays pending until payment confirms it
// @Description or the hold expires. Repeating a request with the same Idempotency-Key returns the original booking.
// @Tags Booking
// @Accept json
// @Produce json
// @Param hotelID path string true "Hotel ID"
// @Param Idempotency-Key header string false "Client generated key that makes retries safe"
// @Param request body dto.CreateBookingRequest true "Create Booking Request"
// @Success 201 {object} response.Data[dto.BookingResponse] "Booking created"
// @Success 200 {object} response.Data[dto.BookingResponse] "Booking of an earlier request with the same key"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error "Rooms no longer available"
// @Failure 500 {object} response.Error
// @Router /v1/hotels/{hotelID}/bookings [post]
// @Security BearerAuth
func (handler *Handler) CreateBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	req := dto.CreateBookingRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	key := request.Header.Get(constant.RequestHeaderIdempotencyKey)
	if len(key) > maxIdempotencyKeyLength {
		response.WithError(writer, failure.BadRequestFromString("Idempotency-Key is too long"))

		return
	}

	hotelID := chi.URLParam(request, constant.RequestParamHotelID)

	booking, err := handler.service.Create(ctx, hotelID, req, key)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("hotel_id", hotelID).Msg("failed to create booking")

		response.WithError(writer, err)

		return
	}

	if booking.Replayed {
		scope.AddEvent("Booking replayed for idempotency key")
		response.WithJSON(writer, http.StatusOK, booking)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Booking created successfully by user " + user)

	response.WithJSON(writer, http.StatusCreated, booking)
}

// GetBookings lists bookings of a hotel. Guests only see their own bookings.
// @Summary Get all bookings
// @Tags Booking
// @Produce json
// @Param hotelID path string true "Hotel ID"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Filter by booking status"
// @Param payment_status query string false "Filter by payment status"
// @Param user_id query string false "Filter by user"
// @Param from query string false "Stays ending after this day (YYYY-MM-DD)"
// @Param to query string false "Stays starting before this day (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.GetBookingsResponse] "List of bookings"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/hotels/{hotelID}/bookings [get]
// @Security BearerAuth
func (handler *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	query := r.URL.Query()
	filter := dto.BookingFilter{
		Status:        query.Get(model.FieldStatus),
		PaymentStatus: query.Get(model.FieldPaymentStatus),
		UserID:        query.Get(model.FieldUserID),
		From:          query.Get("from"),
		To:            query.Get("to"),
	}

	if role, _ := ctx.Value(constant.ContextKeyUserRole).(string); role == constant.RoleGuest {
		filter.UserID, _ = ctx.Value(constant.ContextKeyUserID).(string)
	}

	if err := validator.ValidateStruct(&filter); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate booking filter")

		response.WithError(w, err)

		return
	}

	bookings, err := handler.service.GetAll(ctx, chi.URLParam(r, constant.RequestParamHotelID), queryParams, filter)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bookings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetBookingByID retrieves a booking by its ID.
// @Summary Get a booking by ID
// @Tags Booking
// @Produce json
// @Param hotelID path string true "Hotel ID"
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse] "Booking details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/hotels/{hotelID}/bookings/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	booking, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamHotelID), id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("booking_id", id).Msg("failed to get booking by ID")

		response.WithError(w, err)

		return
	}

	if role, _ := ctx.Value(constant.ContextKeyUserRole).(string); role == constant.RoleGuest {
		if user, _ := ctx.Value(constant.ContextKeyUserID).(string); user != booking.UserID {
			response.WithError(w, failure.NotFound("booking not found"))

			return
		}
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// CancelBooking cancels a booking within the cancellation policy.
// @Summary Cancel a booking
// @Description Pending bookings can always be cancelled. Confirmed bookings only before the cancellation cutoff,
// @Description unless staff force it.
// @Tags Booking
// @Accept json
// @Produce json
// @Param hotelID path string true "Hotel ID"
// @Param id path string true "Booking ID"
// @Param request body dto.CancelBookingRequest true "Cancel Booking Request"
// @Success 200 {object} response.Data[dto.BookingResponse] "Cancelled booking"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 422 {object} response.Error "Booking can no longer be cancelled"
// @Failure 500 {object} response.Error
// @Router /v1/hotels/{hotelID}/bookings/{id}/cancel [post]
// @Security BearerAuth
func (handler *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelBooking")
	defer scope.End()

	req := dto.CancelBookingRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	id := chi.URLParam(r, constant.RequestParamID)

	booking, err := handler.service.Cancel(ctx, chi.URLParam(r, constant.RequestParamHotelID), id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("booking_id", id).Msg("failed to cancel booking")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// ApplyPayment records the outcome reported by the payment collaborator.
// @Summary Apply a payment outcome
// @Description A paid outcome confirms a pending booking. If its hold lapsed and the rooms were taken
// @Description meanwhile, the booking is cancelled and 409 is returned.
// @Tags Booking
// @Accept json
// @Produce json
// @Param hotelID path string true "Hotel ID"
// @Param id path string true "Booking ID"
// @Param request body dto.PaymentRequest true "Payment Request"
// @Success 200 {object} response.Data[dto.BookingResponse] "Updated booking"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/hotels/{hotelID}/bookings/{id}/payment [post]
// @Security ApiKeyAuth
func (handler *Handler) ApplyPayment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ApplyPayment")
	defer scope.End()

	req := dto.PaymentRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	id := chi.URLParam(r, constant.RequestParamID)

	booking, err := handler.service.ApplyPayment(ctx, chi.URLParam(r, constant.RequestParamHotelID), id, model.PaymentStatus(req.Outcome))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("booking_id", id).Str("outcome", req.Outcome).Msg("failed to apply payment")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}

// CheckIn marks the guest of a confirmed booking as arrived.
// @Summary Check in a booking
// @Tags Booking
// @Produce json
// @Param hotelID path string true "Hotel ID"
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse] "Checked in booking"
// @Failure 404 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/hotels/{hotelID}/bookings/{id}/check-in [post]
// @Security BearerAuth
func (handler *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	handler.transition(w, r, "CheckIn", handler.service.CheckIn)
}

// CheckOut closes the stay of a checked in booking.
// @Summary Check out a booking
// @Tags Booking
// @Produce json
// @Param hotelID path string true "Hotel ID"
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse] "Checked out booking"
// @Failure 404 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/hotels/{hotelID}/bookings/{id}/check-out [post]
// @Security BearerAuth
func (handler *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	handler.transition(w, r, "CheckOut", handler.service.CheckOut)
}

// NoShow records that the guest of a confirmed booking never arrived.
// @Summary Mark a booking as no-show
// @Tags Booking
// @Produce json
// @Param hotelID path string true "Hotel ID"
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse] "No-show booking"
// @Failure 404 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/hotels/{hotelID}/bookings/{id}/no-show [post]
// @Security BearerAuth
func (handler *Handler) NoShow(w http.ResponseWriter, r *http.Request) {
	handler.transition(w, r, "NoShow", handler.service.NoShow)
}

type transitionFunc func(ctx context.Context, hotelID, id string) (dto.BookingResponse, error)

func (handler *Handler) transition(w http.ResponseWriter, r *http.Request, name string, apply transitionFunc) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+"."+name)
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	booking, err := apply(ctx, chi.URLParam(r, constant.RequestParamHotelID), id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("booking_id", id).Str("transition", name).Msg("failed to change booking status")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}
