package calendar

import "errors"

var (
	ErrUnknownSlotStatus  = errors.New("unknown slot status")
	ErrUnknownBookingType = errors.New("unknown booking type")
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
	ErrNoVenue            = errors.New("no venue set on session")
)

// ValidationError is a blocking, user-facing message. It describes an
// expected input state, so callers render Message instead of failing.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

var (
	ErrNonContiguous   = newValidationError("slots", "Please select consecutive time slots")
	ErrSlotUnavailable = newValidationError("slots", "This time slot is not available")
	ErrSlotOutOfRange  = newValidationError("slots", "Unknown time slot")
	ErrUnknownSlot     = newValidationError("slots", "One or more selected time slots no longer exist")
	ErrNoDate          = newValidationError("date", "Please select a date")
	ErrNoSlots         = newValidationError("slots", "Please select at least one time slot")
	ErrDateUnavailable = newValidationError("date", "The selected date is not available")
	ErrDateOutOfWindow = newValidationError("date", "Please choose a date within the booking window")
	ErrNoUser          = newValidationError("user_id", "Please sign in to continue")
	ErrNoGuests        = newValidationError("guest_count", "Please enter the number of guests")
	ErrRequestsTooLong = newValidationError("special_requests", "Special requests must be 1000 characters or fewer")
)

// AsValidation extracts the user-facing message carried by err, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
