package enums

import "fmt"

// BookingStatus tracks the payment lifecycle of a booking.
type BookingStatus string

const (
	BookingStatusPending       BookingStatus = "pending"
	BookingStatusConfirmed     BookingStatus = "confirmed"
	BookingStatusPaymentFailed BookingStatus = "payment_failed"
	BookingStatusCancelled     BookingStatus = "cancelled"
	BookingStatusRefunded      BookingStatus = "refunded"
	BookingStatusDisputed      BookingStatus = "disputed"
)

var validBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusPaymentFailed,
	BookingStatusCancelled,
	BookingStatusRefunded,
	BookingStatusDisputed,
}

// bookingTransitions encodes the allowed moves out of each status. A dispute
// can land on any status, so it is absent here and checked separately.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending: {
		BookingStatusConfirmed,
		BookingStatusPaymentFailed,
		BookingStatusCancelled,
	},
	BookingStatusConfirmed: {
		BookingStatusRefunded,
		BookingStatusDisputed,
	},
}

// String implements fmt.Stringer.
func (b BookingStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BookingStatus.
func (b BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether moving to next is an allowed transition.
// Disputes are always allowed; a chargeback must surface no matter what
// state the booking reached first.
func (b BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if next == BookingStatusDisputed {
		return true
	}
	for _, candidate := range bookingTransitions[b] {
		if candidate == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status accepts no further payment events
// besides disputes.
func (b BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[b]) == 0
}

// ParseBookingStatus converts raw input into a BookingStatus.
func ParseBookingStatus(value string) (BookingStatus, error) {
	for _, candidate := range validBookingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking status %q", value)
}
