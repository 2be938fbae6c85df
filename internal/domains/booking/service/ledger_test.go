package service_test

import (
	"context"
	"inncore/internal/domains/booking/hold"
	"inncore/internal/domains/booking/model"
	"inncore/internal/domains/booking/overlap"
	"inncore/internal/domains/booking/repository"
	roomModel "inncore/internal/domains/room/model"
	roomService "inncore/internal/domains/room/service"
	"inncore/internal/events"
	gDto "inncore/shared/dto"
	"slices"
	"sort"
	"sync"
	"time"
)

// ledger is an in-memory repository.Booking. One mutex stands in for the room row locks, so every
// Create and Transition is serialized the way the database serializes them.
type ledger struct {
	mu       sync.Mutex
	rooms    map[string]roomModel.Room
	bookings map[string]model.Booking
	order    []string

	takenNumbers map[string]bool
}

func newLedger(rooms ...roomModel.Room) *ledger {
	l := &ledger{
		rooms:        map[string]roomModel.Room{},
		bookings:     map[string]model.Booking{},
		takenNumbers: map[string]bool{},
	}

	for _, room := range rooms {
		l.rooms[room.ID] = room
	}

	return l
}

func (l *ledger) all() []model.Booking {
	l.mu.Lock()
	defer l.mu.Unlock()

	res := make([]model.Booking, 0, len(l.order))
	for _, id := range l.order {
		res = append(res, clone(l.bookings[id]))
	}

	return res
}

func (l *ledger) put(b model.Booking) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.bookings[b.ID]; !ok {
		l.order = append(l.order, b.ID)
	}

	l.bookings[b.ID] = clone(b)
}

func (l *ledger) GetAll(_ context.Context, _ gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
	res := l.all()
	for i := range res {
		res[i].Rooms = nil
	}

	return res, nil
}

func (l *ledger) Count(_ context.Context, _ gDto.FilterGroup) (int, error) {
	return len(l.all()), nil
}

func (l *ledger) Find(_ context.Context, hotelID, id string) (model.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.bookings[id]
	if !ok || b.HotelID != hotelID {
		return model.Booking{}, repository.ErrBookingNotFound
	}

	return clone(b), nil
}

func (l *ledger) GetByIdempotencyKey(_ context.Context, key string) (model.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, b := range l.bookings {
		if b.IdempotencyKey != nil && *b.IdempotencyKey == key {
			return clone(b), nil
		}
	}

	return model.Booking{}, repository.ErrBookingNotFound
}

func (l *ledger) Rooms(_ context.Context, bookingIDs ...string) (map[string][]model.BookingRoom, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	res := map[string][]model.BookingRoom{}
	for _, id := range bookingIDs {
		res[id] = slices.Clone(l.bookings[id].Rooms)
	}

	return res, nil
}

func (l *ledger) FindBlocking(_ context.Context, q model.OverlapQuery) ([]model.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.blocking(q), nil
}

func (l *ledger) blocking(q model.OverlapQuery) []model.Booking {
	res := []model.Booking{}

	for _, id := range l.order {
		if b := l.bookings[id]; overlap.Collides(b, q) {
			res = append(res, clone(b))
		}
	}

	return res
}

func (l *ledger) Create(_ context.Context, booking *model.Booking, now time.Time, prepare repository.Preparer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := slices.Clone(booking.RoomIDs())
	sort.Strings(ids)

	rooms := []roomModel.Room{}

	for _, id := range slices.Compact(ids) {
		room, ok := l.rooms[id]
		if !ok || room.HotelID != booking.HotelID {
			return repository.ErrRoomNotFound
		}

		rooms = append(rooms, room)
	}

	if booking.IdempotencyKey != nil {
		for _, b := range l.bookings {
			if b.IdempotencyKey != nil && *b.IdempotencyKey == *booking.IdempotencyKey {
				return repository.ErrDuplicateIdempotencyKey
			}
		}
	}

	if err := prepare(rooms); err != nil {
		return err
	}

	q := model.OverlapQuery{HotelID: booking.HotelID, RoomIDs: ids, CheckIn: booking.CheckIn, CheckOut: booking.CheckOut, Now: now}
	if len(l.blocking(q)) > 0 {
		return repository.ErrBlockingOverlap
	}

	if l.takenNumbers[booking.BookingNumber] {
		return repository.ErrDuplicateBookingNumber
	}

	for i := range booking.Rooms {
		booking.Rooms[i].BookingID = booking.ID
		booking.Rooms[i].HotelID = booking.HotelID
		booking.Rooms[i].CheckIn = booking.CheckIn
		booking.Rooms[i].CheckOut = booking.CheckOut
		booking.Rooms[i].Status = booking.Status
		booking.Rooms[i].Position = i
	}

	l.takenNumbers[booking.BookingNumber] = true
	l.bookings[booking.ID] = clone(*booking)
	l.order = append(l.order, booking.ID)

	return nil
}

func (l *ledger) Transition(_ context.Context, hotelID, id string, now time.Time, decide repository.Decider) (model.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stored, ok := l.bookings[id]
	if !ok || stored.HotelID != hotelID {
		return model.Booking{}, repository.ErrBookingNotFound
	}

	b := clone(stored)

	recheck := func() ([]model.Booking, error) {
		return l.blocking(model.OverlapQuery{
			HotelID:          b.HotelID,
			RoomIDs:          b.RoomIDs(),
			CheckIn:          b.CheckIn,
			CheckOut:         b.CheckOut,
			ExcludeBookingID: b.ID,
			Now:              now,
		}), nil
	}

	if err := decide(&b, recheck); err != nil {
		return model.Booking{}, err
	}

	for i := range b.Rooms {
		b.Rooms[i].Status = b.Status
	}

	l.bookings[id] = clone(b)

	return b, nil
}

func (l *ledger) ExpireHolds(_ context.Context, now time.Time, limit uint64) ([]model.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	res := []model.Booking{}

	for _, id := range l.order {
		b := l.bookings[id]
		if !hold.IsExpired(b, now) || uint64(len(res)) >= limit {
			continue
		}

		b.Status = model.StatusCancelled
		b.CancellationReason = model.ReasonHoldExpired
		b.CancelledAt = &now
		l.bookings[id] = b

		res = append(res, clone(b))
	}

	return res, nil
}

func (l *ledger) ListPurgeable(_ context.Context, before time.Time, limit uint64) ([]model.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	res := []model.Booking{}

	for _, id := range l.order {
		b := l.bookings[id]
		if b.CancellationReason == model.ReasonHoldExpired && b.CancelledAt.Before(before) && uint64(len(res)) < limit {
			res = append(res, clone(b))
		}
	}

	return res, nil
}

func (l *ledger) Purge(_ context.Context, ids ...string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var n int64

	for _, id := range ids {
		if _, ok := l.bookings[id]; ok {
			delete(l.bookings, id)
			l.order = slices.DeleteFunc(l.order, func(v string) bool { return v == id })
			n++
		}
	}

	return n, nil
}

func clone(b model.Booking) model.Booking {
	b.Rooms = slices.Clone(b.Rooms)
	b.Extras = slices.Clone(b.Extras)

	return b
}

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []events.BookingEvent
}

func (r *recorder) Publish(_ context.Context, published ...events.BookingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, published...)

	return nil
}

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make([]events.Type, len(r.events))
	for i, event := range r.events {
		res[i] = event.Type
	}

	return res
}

// housekeeping records room status changes requested by the booking service.
type housekeeping struct {
	roomService.Room

	mu      sync.Mutex
	changes map[string]roomModel.Status
}

func (h *housekeeping) UpdateStatus(_ context.Context, _, id string, status roomModel.Status) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.changes == nil {
		h.changes = map[string]roomModel.Status{}
	}

	h.changes[id] = status

	return nil
}

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

var _ repository.Booking = (*ledger)(nil)
