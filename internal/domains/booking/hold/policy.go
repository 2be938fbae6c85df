// Package hold governs the temporary exclusivity window of pending bookings and its release.
//
// Expiry is a derived predicate: IsExpired is evaluated wherever blocking matters, so a hold the
// sweeper has not reached yet never blocks a new booking. The sweeper only cleans up.
package hold

import (
	"inncore/config"
	"inncore/internal/domains/booking/model"
	"inncore/shared/timezone"
	"time"
)

const DefaultDuration = 15 * time.Minute

type Policy struct {
	Duration time.Duration
	clock    func() time.Time
}

func NewPolicy(cfg *config.Config) Policy {
	duration := time.Duration(cfg.Reservation.HoldMinutes) * time.Minute
	if duration <= 0 {
		duration = DefaultDuration
	}

	return Policy{Duration: duration, clock: timezone.Now}
}

// WithClock returns a copy of the policy reading time from clock.
func (p Policy) WithClock(clock func() time.Time) Policy {
	p.clock = clock

	return p
}

func (p Policy) Now() time.Time {
	if p.clock == nil {
		return timezone.Now()
	}

	return p.clock()
}

// ExpiryFor returns the hold expiry of a booking created at createdAt.
func (p Policy) ExpiryFor(createdAt time.Time) time.Time {
	return createdAt.Add(p.Duration)
}

// IsExpired reports whether a pending booking's hold has lapsed at now. Bookings in any other
// status have no hold and are never expired. A pending booking without an expiry does not block.
func IsExpired(b model.Booking, now time.Time) bool {
	if b.Status != model.StatusPending {
		return false
	}

	if b.HoldExpiresAt == nil {
		return true
	}

	return !now.Before(*b.HoldExpiresAt)
}
