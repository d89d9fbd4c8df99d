package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// FieldErrors maps an input field name to a human-readable rejection reason.
// Validation failures are always reported per-field, never as one opaque
// failure.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e[field]))
	}
	return strings.Join(parts, "; ")
}

// Not-found conditions are distinct from validation failures so routes can
// answer 404 instead of 400.
var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrPaymentNotFound  = errors.New("payment not found")
)

// Lifecycle violations.
var (
	ErrBookingCompleted    = errors.New("cannot cancel a completed booking")
	ErrBookingNotPending   = errors.New("booking is not awaiting payment")
	ErrAlreadyPaid         = errors.New("booking has already been paid")
	ErrAlreadyCheckedIn    = errors.New("client has already checked in")
	ErrNotCheckedIn        = errors.New("client has not checked in yet")
	ErrAlreadyCheckedOut   = errors.New("client has already checked out")
	ErrBookingNotConfirmed = errors.New("booking must be confirmed before check-in")
	ErrBookingCancelled    = errors.New("booking is cancelled")
)

// IsFieldErrors unwraps err into FieldErrors when it is one.
func IsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
