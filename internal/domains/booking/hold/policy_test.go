package hold_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"inncore/config"
	"inncore/internal/domains/booking/hold"
	"inncore/internal/domains/booking/model"
)

func TestNewPolicy(t *testing.T) {
	cfg := &config.Config{}
	assert.Equal(t, hold.DefaultDuration, hold.NewPolicy(cfg).Duration)

	cfg.Reservation.HoldMinutes = 30
	assert.Equal(t, 30*time.Minute, hold.NewPolicy(cfg).Duration)
}

func TestPolicy_Clock(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	policy := hold.Policy{Duration: hold.DefaultDuration}.WithClock(func() time.Time { return fixed })

	assert.Equal(t, fixed, policy.Now())
	assert.Equal(t, fixed.Add(15*time.Minute), policy.ExpiryFor(fixed))
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Minute)

	tests := []struct {
		name    string
		booking model.Booking
		want    bool
	}{
		{"pending with live hold", model.Booking{Status: model.StatusPending, HoldExpiresAt: &future}, false},
		{"pending past expiry", model.Booking{Status: model.StatusPending, HoldExpiresAt: &past}, true},
		{"pending at the expiry instant", model.Booking{Status: model.StatusPending, HoldExpiresAt: &now}, true},
		{"pending without expiry", model.Booking{Status: model.StatusPending}, true},
		{"confirmed ignores stale expiry", model.Booking{Status: model.StatusConfirmed, HoldExpiresAt: &past}, false},
		{"cancelled", model.Booking{Status: model.StatusCancelled, HoldExpiresAt: &past}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hold.IsExpired(tt.booking, now))
		})
	}
}
