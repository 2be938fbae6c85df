package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Booking=MockBookingService

import (
	"context"
	"errors"
	"fmt"
	"inncore/config"
	"inncore/infras/metrics"
	"inncore/infras/otel"
	"inncore/internal/domains/booking/hold"
	"inncore/internal/domains/booking/model"
	"inncore/internal/domains/booking/model/dto"
	"inncore/internal/domains/booking/repository"
	roomModel "inncore/internal/domains/room/model"
	roomService "inncore/internal/domains/room/service"
	"inncore/internal/events"
	"inncore/shared/constant"
	gDto "inncore/shared/dto"
	"inncore/shared/failure"
	"inncore/shared/timezone"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultCreateAttempts = 3

var (
	errBookingNotFound = failure.NotFound("booking not found")
	errRoomsTaken      = failure.AvailabilityConflict("requested rooms are no longer available for these dates, please search again")
	errHoldLost        = failure.AvailabilityConflict("hold expired and the rooms were booked by another guest")
)

var sortableColumns = []string{
	constant.FieldCreatedAt,
	model.FieldCheckIn,
	model.FieldCheckOut,
	model.FieldTotalAmount,
	model.FieldStatus,
}

type Booking interface {
	Create(ctx context.Context, hotelID string, req dto.CreateBookingRequest, idempotencyKey string) (dto.BookingResponse, error)
	Get(ctx context.Context, hotelID, id string) (dto.BookingResponse, error)
	GetAll(ctx context.Context, hotelID string, params gDto.QueryParams, filter dto.BookingFilter) (dto.GetBookingsResponse, error)
	Cancel(ctx context.Context, hotelID, id string, req dto.CancelBookingRequest) (dto.BookingResponse, error)
	ApplyPayment(ctx context.Context, hotelID, id string, outcome model.PaymentStatus) (dto.BookingResponse, error)
	CheckIn(ctx context.Context, hotelID, id string) (dto.BookingResponse, error)
	CheckOut(ctx context.Context, hotelID, id string) (dto.BookingResponse, error)
	NoShow(ctx context.Context, hotelID, id string) (dto.BookingResponse, error)
}

type serviceImpl struct {
	repo      repository.Booking
	rooms     roomService.Room
	publisher events.Publisher
	metrics   *metrics.Metrics
	policy    hold.Policy
	cfg       *config.Config
	otel      otel.Otel
}

func New(
	repo repository.Booking,
	rooms roomService.Room,
	publisher events.Publisher,
	metrics *metrics.Metrics,
	policy hold.Policy,
	cfg *config.Config,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:      repo,
		rooms:     rooms,
		publisher: publisher,
		metrics:   metrics,
		policy:    policy,
		cfg:       cfg,
		otel:      otel,
	}
}

// Create places a pending booking holding the requested rooms. A request carrying an idempotency
// key that was already used returns the booking created by the first request.
func (s *serviceImpl) Create(ctx context.Context, hotelID string, req dto.CreateBookingRequest, idempotencyKey string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	now := s.policy.Now()

	checkIn, checkOut, err := validateStay(req)
	if err != nil {
		return res, err
	}

	if idempotencyKey != constant.Empty {
		existing, err := s.repo.GetByIdempotencyKey(ctx, idempotencyKey)
		if err == nil {
			return s.replay(ctx, hotelID, req, existing)
		}

		if !errors.Is(err, repository.ErrBookingNotFound) {
			log.Error().Err(err).Str("idempotency_key", idempotencyKey).Msg("failed to look up idempotency key")

			return res, fmt.Errorf("failed to look up idempotency key: %w", err)
		}
	}

	if checkIn.Before(timezone.StartOfDay(now)) {
		return res, failure.BadRequestFromString("check-in cannot be in the past") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	booking := req.ToModel(hotelID, user, checkIn, checkOut, now)
	expiry := s.policy.ExpiryFor(now)
	booking.HoldExpiresAt = &expiry

	if idempotencyKey != constant.Empty {
		booking.IdempotencyKey = &idempotencyKey
	}

	err = s.insert(ctx, &booking, now)

	switch {
	case err == nil:
	case errors.Is(err, repository.ErrDuplicateIdempotencyKey):
		existing, err := s.repo.GetByIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			log.Error().Err(err).Str("idempotency_key", idempotencyKey).Msg("failed to fetch booking of concurrent request")

			return res, fmt.Errorf("failed to fetch booking of concurrent request: %w", err)
		}

		return s.replay(ctx, hotelID, req, existing)
	case errors.Is(err, repository.ErrBlockingOverlap):
		s.metrics.BookingConflict(hotelID)
		log.Info().Str("hotel_id", hotelID).Strs("room_ids", req.RoomIDs).Str("check_in", req.CheckIn).Str("check_out", req.CheckOut).Msg("booking rejected, rooms taken")

		return res, errRoomsTaken
	case errors.Is(err, repository.ErrRoomNotFound):
		return res, failure.BadRequestFromString(err.Error()) // nolint:wrapcheck
	case isFailure(err):
		return res, err
	default:
		log.Error().Err(err).Str("hotel_id", hotelID).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	s.metrics.BookingCreated(hotelID, string(booking.Status))
	s.publish(ctx, events.BookingCreated, booking, now)

	log.Info().Str("booking_id", booking.ID).Str("booking_number", booking.BookingNumber).Str("hotel_id", hotelID).Msg("booking created")

	res.FromModel(booking)

	return res, nil
}

// insert retries on booking number collisions only.
func (s *serviceImpl) insert(ctx context.Context, booking *model.Booking, now time.Time) (err error) {
	attempts := s.cfg.Reservation.MaxCreateAttempts
	if attempts <= 0 {
		attempts = defaultCreateAttempts
	}

	for attempt := 1; ; attempt++ {
		booking.BookingNumber = model.NewBookingNumber(now)

		err = s.repo.Create(ctx, booking, now, s.prepare(booking))
		if !errors.Is(err, repository.ErrDuplicateBookingNumber) || attempt >= attempts {
			return err //nolint:wrapcheck
		}

		log.Warn().Str("booking_number", booking.BookingNumber).Int("attempt", attempt).Msg("booking number collision, regenerating")
	}
}

// prepare validates the locked rooms and prices the booking from their current rates.
func (s *serviceImpl) prepare(booking *model.Booking) repository.Preparer {
	return func(rooms []roomModel.Room) error {
		rates := make(map[string]float64, len(rooms))
		capacity := 0

		for _, room := range rooms {
			if !room.Bookable() {
				return failure.BadRequestFromString(fmt.Sprintf("room %s cannot be booked (status %s)", room.Number, room.Status)) // nolint:wrapcheck
			}

			rates[room.ID] = room.NightlyRate()
			capacity += room.Capacity
		}

		if guests := booking.Adults + booking.Children; guests > capacity {
			return failure.BadRequestFromString(fmt.Sprintf("%d guests exceed the capacity %d of the requested rooms", guests, capacity)) // nolint:wrapcheck
		}

		for i := range booking.Rooms {
			booking.Rooms[i].Rate = rates[booking.Rooms[i].RoomID]
		}

		booking.Reprice()

		return nil
	}
}

func (s *serviceImpl) replay(ctx context.Context, hotelID string, req dto.CreateBookingRequest, existing model.Booking) (res dto.BookingResponse, err error) {
	if existing.HotelID != hotelID {
		return res, failure.BadRequestFromString("idempotency key was already used for another hotel") // nolint:wrapcheck
	}

	if !req.SamePayload(existing) {
		log.Warn().Str("booking_id", existing.ID).Msg("idempotency key reused with a different payload, returning original booking")
	}

	s.metrics.IdempotentReplay(hotelID)
	log.Info().Str("booking_id", existing.ID).Msg("idempotent replay of booking creation")

	res.FromModel(existing)
	res.Replayed = true

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, hotelID, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.repo.Find(ctx, hotelID, id)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return res, errBookingNotFound
	}

	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, hotelID string, params gDto.QueryParams, filter dto.BookingFilter) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	params.RestrictSort(constant.DefaultValueSortBy, constant.DefaultValueSortDir, sortableColumns...)
	group := filter.ToFilterGroup(hotelID)

	total, err := s.repo.Count(ctx, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	bookings, err := s.repo.GetAll(ctx, params, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	ids := make([]string, len(bookings))
	for i, booking := range bookings {
		ids[i] = booking.ID
	}

	lines, err := s.repo.Rooms(ctx, ids...)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking rooms")

		return res, fmt.Errorf("failed to get booking rooms: %w", err)
	}

	for i := range bookings {
		bookings[i].Rooms = lines[bookings[i].ID]
	}

	res.FromModels(bookings, total, params.Limit)

	return res, nil
}

// Cancel releases a booking. Confirmed stays are cancellable only before the cutoff ahead of
// check-in unless staff force it. Guests may only cancel their own bookings.
func (s *serviceImpl) Cancel(ctx context.Context, hotelID, id string, req dto.CancelBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Cancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	now := s.policy.Now()
	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	override := req.Force && privileged(ctx)

	booking, err := s.transition(ctx, hotelID, id, now, func(b *model.Booking, _ func() ([]model.Booking, error)) error {
		if !owns(ctx, *b) {
			return errBookingNotFound
		}

		if !b.Status.CanTransitionTo(model.StatusCancelled) {
			return failure.StateTransition(fmt.Sprintf("booking in status %s cannot be cancelled", b.Status)) // nolint:wrapcheck
		}

		if b.Status == model.StatusConfirmed && !override && !s.cancellable(*b, now) {
			return failure.StateTransition(fmt.Sprintf("cancellation closes %d hours before check-in", s.cfg.Reservation.CancelCutoffHours)) // nolint:wrapcheck
		}

		b.Status = model.StatusCancelled
		b.CancellationReason = req.Reason
		b.CancelledAt = &now
		b.HoldExpiresAt = nil
		stamp(b, user, now)

		return nil
	})
	if err != nil {
		return res, err
	}

	log.Info().Str("booking_id", id).Bool("forced", override).Str("reason", req.Reason).Msg("booking cancelled")
	s.publish(ctx, events.BookingCancelled, booking, now)
	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) cancellable(b model.Booking, now time.Time) bool {
	cutoff := time.Duration(s.cfg.Reservation.CancelCutoffHours) * time.Hour
	checkInAt := time.Date(b.CheckIn.Year(), b.CheckIn.Month(), b.CheckIn.Day(), 0, 0, 0, 0, timezone.GetLocation())

	return now.Before(checkInAt.Add(-cutoff))
}

// ApplyPayment consumes the payment collaborator's outcome. A payment for a booking whose hold
// lapsed, whether or not the sweeper already cancelled it as hold_expired, confirms it only if its
// rooms are still free; otherwise the booking is cancelled as hold_lost and an availability
// conflict is returned along with it.
func (s *serviceImpl) ApplyPayment(ctx context.Context, hotelID, id string, outcome model.PaymentStatus) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.ApplyPayment")
	defer scope.End()
	defer scope.TraceIfError(err)

	if outcome != model.PaymentPaid && outcome != model.PaymentFailed {
		return res, failure.BadRequestFromString(fmt.Sprintf("unsupported payment outcome %q", outcome)) // nolint:wrapcheck
	}

	now := s.policy.Now()
	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	var duplicate, lost bool

	booking, err := s.transition(ctx, hotelID, id, now, func(b *model.Booking, recheck func() ([]model.Booking, error)) error {
		duplicate = b.PaymentStatus == outcome && (outcome == model.PaymentFailed || b.Status == model.StatusConfirmed)
		if duplicate {
			return nil
		}

		swept := lapsed(*b)

		if (b.Status != model.StatusPending && !swept) || !b.PaymentStatus.CanTransitionTo(outcome) {
			return failure.StateTransition(fmt.Sprintf("cannot apply %s payment to booking in status %s with payment %s", outcome, b.Status, b.PaymentStatus)) // nolint:wrapcheck
		}

		b.PaymentStatus = outcome
		stamp(b, user, now)

		if outcome == model.PaymentFailed {
			return nil
		}

		if swept || hold.IsExpired(*b, now) {
			blocking, err := recheck()
			if err != nil {
				return err
			}

			if len(blocking) > 0 {
				lost = true
				b.Status = model.StatusCancelled
				b.CancellationReason = model.ReasonHoldLost
				b.CancelledAt = &now
				b.HoldExpiresAt = nil

				return nil
			}
		}

		b.Status = model.StatusConfirmed
		b.CancellationReason = constant.Empty
		b.CancelledAt = nil
		b.HoldExpiresAt = nil

		return nil
	})
	if err != nil {
		s.metrics.PaymentApplied(string(outcome), "rejected")

		return res, err
	}

	res.FromModel(booking)

	switch {
	case duplicate:
		s.metrics.PaymentApplied(string(outcome), "duplicate")
	case lost:
		s.metrics.PaymentApplied(string(outcome), model.ReasonHoldLost)
		s.metrics.BookingConflict(hotelID)
		s.publish(ctx, events.BookingHoldLost, booking, now)
		log.Warn().Str("booking_id", id).Msg("payment arrived after hold expiry and the rooms were taken")

		return res, errHoldLost
	case outcome == model.PaymentFailed:
		s.metrics.PaymentApplied(string(outcome), "applied")
		s.publish(ctx, events.PaymentFailed, booking, now)
	default:
		s.metrics.PaymentApplied(string(outcome), "applied")
		s.publish(ctx, events.BookingConfirmed, booking, now)
	}

	return res, nil
}

// CheckIn is allowed on any day of the stay.
func (s *serviceImpl) CheckIn(ctx context.Context, hotelID, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.CheckIn")
	defer scope.End()
	defer scope.TraceIfError(err)

	return s.advance(ctx, hotelID, id, model.StatusCheckedIn, func(b model.Booking, today time.Time) error {
		if today.Before(b.CheckIn) || !today.Before(b.CheckOut) {
			return failure.StateTransition("check-in is only possible between the check-in and check-out dates") // nolint:wrapcheck
		}

		return nil
	})
}

// CheckOut completes the stay and hands the rooms to housekeeping.
func (s *serviceImpl) CheckOut(ctx context.Context, hotelID, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.CheckOut")
	defer scope.End()
	defer scope.TraceIfError(err)

	res, err = s.advance(ctx, hotelID, id, model.StatusCheckedOut, nil)
	if err != nil || !s.cfg.Reservation.CheckoutMarksDirty {
		return res, err
	}

	for _, room := range res.Rooms {
		if err := s.rooms.UpdateStatus(ctx, hotelID, room.RoomID, roomModel.StatusDirty); err != nil {
			log.Error().Err(err).Str("room_id", room.RoomID).Str("booking_id", id).Msg("failed to mark room dirty after check-out")
		}
	}

	return res, nil
}

func (s *serviceImpl) NoShow(ctx context.Context, hotelID, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.NoShow")
	defer scope.End()
	defer scope.TraceIfError(err)

	return s.advance(ctx, hotelID, id, model.StatusNoShow, func(b model.Booking, today time.Time) error {
		if today.Before(b.CheckIn) {
			return failure.StateTransition("a booking can only be marked no-show from its check-in date") // nolint:wrapcheck
		}

		return nil
	})
}

// advance moves a booking to next after the state machine and the optional guard agree.
func (s *serviceImpl) advance(ctx context.Context, hotelID, id string, next model.Status, guard func(b model.Booking, today time.Time) error) (res dto.BookingResponse, err error) {
	now := s.policy.Now()
	today := timezone.StartOfDay(now)
	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	booking, err := s.transition(ctx, hotelID, id, now, func(b *model.Booking, _ func() ([]model.Booking, error)) error {
		if !b.Status.CanTransitionTo(next) {
			return failure.StateTransition(fmt.Sprintf("booking in status %s cannot move to %s", b.Status, next)) // nolint:wrapcheck
		}

		if guard != nil {
			if err := guard(*b, today); err != nil {
				return err
			}
		}

		b.Status = next
		stamp(b, user, now)

		return nil
	})
	if err != nil {
		return res, err
	}

	if eventType, ok := events.TypeFor(next); ok {
		s.publish(ctx, eventType, booking, now)
	}

	log.Info().Str("booking_id", id).Str("status", string(next)).Msg("booking status changed")
	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) transition(ctx context.Context, hotelID, id string, now time.Time, decide repository.Decider) (model.Booking, error) {
	booking, err := s.repo.Transition(ctx, hotelID, id, now, decide)

	switch {
	case err == nil:
		return booking, nil
	case errors.Is(err, repository.ErrBookingNotFound):
		return booking, errBookingNotFound
	case errors.Is(err, repository.ErrBlockingOverlap):
		s.metrics.BookingConflict(hotelID)

		return booking, errRoomsTaken
	case isFailure(err):
		return booking, err
	default:
		log.Error().Err(err).Str("booking_id", id).Msg("failed to update booking")

		return booking, fmt.Errorf("failed to update booking: %w", err)
	}
}

// publish never fails the request; collaborators reconcile from the ledger.
func (s *serviceImpl) publish(ctx context.Context, eventType events.Type, booking model.Booking, now time.Time) {
	if err := s.publisher.Publish(ctx, events.NewBookingEvent(eventType, booking, now)); err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Str("event", string(eventType)).Msg("failed to publish booking event")
	}
}

// validateStay checks the shape of the request. The past check-in rule is applied after the
// idempotency lookup so a late retry still replays.
func validateStay(req dto.CreateBookingRequest) (checkIn, checkOut time.Time, err error) {
	checkIn, checkOut, err = req.Dates()
	if err != nil {
		return checkIn, checkOut, failure.BadRequestFromString("dates must use the YYYY-MM-DD format") // nolint:wrapcheck
	}

	if !checkOut.After(checkIn) {
		return checkIn, checkOut, failure.BadRequestFromString("check-out must be after check-in") // nolint:wrapcheck
	}

	if len(req.RoomIDs) == 0 {
		return checkIn, checkOut, failure.BadRequestFromString("at least one room is required") // nolint:wrapcheck
	}

	sorted := slices.Clone(req.RoomIDs)
	slices.Sort(sorted)

	if len(slices.Compact(sorted)) != len(req.RoomIDs) {
		return checkIn, checkOut, failure.BadRequestFromString("rooms must not repeat") // nolint:wrapcheck
	}

	return checkIn, checkOut, nil
}

// lapsed reports a booking the sweeper cancelled because its hold ran out. A payment for it is
// handled as if the sweep had not happened yet.
func lapsed(b model.Booking) bool {
	return b.Status == model.StatusCancelled && b.CancellationReason == model.ReasonHoldExpired
}

func stamp(b *model.Booking, user string, now time.Time) {
	b.ModifiedAt = now
	b.ModifiedBy = user
}

func privileged(ctx context.Context) bool {
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	return role == constant.RoleAdmin || role == constant.RoleStaff
}

// owns reports whether the caller may act on b. Guests see only the bookings they made.
func owns(ctx context.Context, b model.Booking) bool {
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	if role != constant.RoleGuest {
		return true
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	return user != constant.Empty && b.UserID == user
}

func isFailure(err error) bool {
	var fail *failure.Failure

	return errors.As(err, &fail)
}
