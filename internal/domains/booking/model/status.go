package model

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCheckedIn, StatusCancelled, StatusNoShow},
	StatusCheckedIn: {StatusCheckedOut},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled, StatusNoShow:
		return true
	}

	return false
}

// CanTransitionTo is the single source of truth for the booking lifecycle.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// Committed reports whether the status always blocks its rooms, independent of any hold.
func (s Status) Committed() bool {
	return s == StatusConfirmed || s == StatusCheckedIn
}

// BlockingStatuses are the statuses that may block availability. Pending ones only block while
// their hold is live.
func BlockingStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusCheckedIn}
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentFailed   PaymentStatus = "failed"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid, PaymentFailed},
	PaymentFailed:  {PaymentPaid},
	PaymentPaid:    {PaymentRefunded},
}

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentRefunded, PaymentFailed:
		return true
	}

	return false
}

func (p PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[p] {
		if allowed == next {
			return true
		}
	}

	return false
}

const (
	bookingNumberPrefix   = "BK"
	bookingNumberLayout   = "060102"
	bookingNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	bookingNumberSuffix   = 6
)

// NewBookingNumber returns a reference like BK-240314-7QJ2MX. Uniqueness is enforced by storage;
// callers regenerate on collision.
func NewBookingNumber(now time.Time) string {
	buf := make([]byte, bookingNumberSuffix)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}

	var suffix strings.Builder
	for _, b := range buf {
		suffix.WriteByte(bookingNumberAlphabet[int(b)%len(bookingNumberAlphabet)])
	}

	return fmt.Sprintf("%s-%s-%s", bookingNumberPrefix, now.Format(bookingNumberLayout), suffix.String())
}
