package overlap

//go:generate go run go.uber.org/mock/mockgen -source=./overlap.go -destination=./mocks/overlap_mock.go -package=mocks

import (
	"context"
	"fmt"
	"inncore/infras/otel"
	"inncore/internal/domains/booking/hold"
	"inncore/internal/domains/booking/model"
	"inncore/shared/constant"
	"time"

	"github.com/rs/zerolog/log"
)

// Blocks reports whether b counts against availability at now: committed stays always do,
// pending ones only while their hold is live.
func Blocks(b model.Booking, now time.Time) bool {
	switch {
	case b.Status.Committed():
		return true
	case b.Status == model.StatusPending:
		return !hold.IsExpired(b, now)
	default:
		return false
	}
}

// Collides reports whether b blocks the rooms and dates of q.
func Collides(b model.Booking, q model.OverlapQuery) bool {
	return Blocks(b, q.Now) && q.Matches(b)
}

// BlockedRooms returns the ids of rooms held by any of bookings.
func BlockedRooms(bookings []model.Booking) map[string]struct{} {
	blocked := make(map[string]struct{})

	for _, booking := range bookings {
		for _, room := range booking.Rooms {
			blocked[room.RoomID] = struct{}{}
		}
	}

	return blocked
}

// Finder reads candidate bookings from the ledger. Implementations may over-select; the
// detector re-applies Collides to every row.
type Finder interface {
	FindBlocking(ctx context.Context, q model.OverlapQuery) ([]model.Booking, error)
}

type Detector interface {
	FindBlockingBookings(ctx context.Context, q model.OverlapQuery) ([]model.Booking, error)
	HasBlockingOverlap(ctx context.Context, q model.OverlapQuery) (bool, error)
}

type detectorImpl struct {
	finder Finder
	policy hold.Policy
	otel   otel.Otel
}

func New(finder Finder, policy hold.Policy, otel otel.Otel) Detector {
	return &detectorImpl{
		finder: finder,
		policy: policy,
		otel:   otel,
	}
}

// FindBlockingBookings returns the bookings blocking q. A zero q.Now is read from the hold policy.
func (d *detectorImpl) FindBlockingBookings(ctx context.Context, q model.OverlapQuery) (res []model.Booking, err error) {
	ctx, scope := d.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".overlap.FindBlockingBookings")
	defer scope.End()
	defer scope.TraceIfError(err)

	if !q.CheckOut.After(q.CheckIn) {
		return nil, fmt.Errorf("invalid overlap range %s..%s", q.CheckIn.Format(constant.DayFormat), q.CheckOut.Format(constant.DayFormat))
	}

	if q.Now.IsZero() {
		q.Now = d.policy.Now()
	}

	candidates, err := d.finder.FindBlocking(ctx, q)
	if err != nil {
		log.Error().Err(err).Str("hotel_id", q.HotelID).Msg("failed to find blocking bookings")

		return nil, fmt.Errorf("failed to find blocking bookings: %w", err)
	}

	res = make([]model.Booking, 0, len(candidates))
	for _, candidate := range candidates {
		if Collides(candidate, q) {
			res = append(res, candidate)
		}
	}

	scope.SetAttributes(map[string]any{
		"overlap.candidates": len(candidates),
		"overlap.blocking":   len(res),
	})

	return res, nil
}

func (d *detectorImpl) HasBlockingOverlap(ctx context.Context, q model.OverlapQuery) (bool, error) {
	blocking, err := d.FindBlockingBookings(ctx, q)
	if err != nil {
		return false, err
	}

	return len(blocking) > 0, nil
}
