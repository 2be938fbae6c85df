package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	unknownUnique := &pq.Error{Code: "23505", Constraint: "uq_rooms_hotel_number"}
	plain := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "not a postgres error", err: plain, want: plain},
		{name: "idempotency key race", err: &pq.Error{Code: "23505", Constraint: constraintIdempotencyKey}, want: ErrDuplicateIdempotencyKey},
		{name: "booking number collision", err: &pq.Error{Code: "23505", Constraint: constraintBookingNumber}, want: ErrDuplicateBookingNumber},
		{name: "unique violation on another constraint", err: unknownUnique, want: unknownUnique},
		{name: "exclusion violation", err: &pq.Error{Code: "23P01", Constraint: "ex_booking_rooms_overlap"}, want: ErrBlockingOverlap},
		{name: "serialization failure", err: &pq.Error{Code: "40001"}, want: ErrBlockingOverlap},
		{name: "deadlock", err: &pq.Error{Code: "40P01"}, want: ErrBlockingOverlap},
		{name: "wrapped exclusion violation", err: fmt.Errorf("insert booking rooms: %w", &pq.Error{Code: "23P01"}), want: ErrBlockingOverlap},
		{name: "wrapped idempotency key race", err: fmt.Errorf("insert booking: %w", &pq.Error{Code: "23505", Constraint: constraintIdempotencyKey}), want: ErrDuplicateIdempotencyKey},
		{name: "other postgres error", err: &pq.Error{Code: "42P01"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)

			switch {
			case tt.err == nil:
				assert.NoError(t, got)
			case tt.want == nil:
				assert.Same(t, tt.err, got)
			default:
				assert.ErrorIs(t, got, tt.want)
			}
		})
	}
}

func TestMapError_UnknownUniqueIsNotASentinel(t *testing.T) {
	got := mapError(&pq.Error{Code: "23505", Constraint: "uq_rooms_hotel_number"})

	assert.NotErrorIs(t, got, ErrDuplicateIdempotencyKey)
	assert.NotErrorIs(t, got, ErrDuplicateBookingNumber)
	assert.NotErrorIs(t, got, ErrBlockingOverlap)
}
