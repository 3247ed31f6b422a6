package calendar

import (
	"fmt"
	"strings"
)

// SlotStatus is the server-side state of a single bookable slot.
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotPending   SlotStatus = "pending"
	SlotBooked    SlotStatus = "booked"
)

func ParseSlotStatus(s string) (SlotStatus, error) {
	switch st := SlotStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case SlotAvailable, SlotPending, SlotBooked:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSlotStatus, s)
	}
}

// DateStatus is the aggregate of every slot sharing one calendar date.
type DateStatus string

const (
	DateAvailable DateStatus = "available"
	DatePartial   DateStatus = "partial"
	DateBooked    DateStatus = "booked"
	DatePending   DateStatus = "pending"
)

// Selectable reports whether a date picker should let the user pick the date.
func (d DateStatus) Selectable() bool {
	switch d {
	case DateAvailable, DatePartial:
		return true
	case DateBooked, DatePending:
		return false
	default:
		return false
	}
}

type BookingType string

const (
	BookingHourly BookingType = "hourly"
	BookingDaily  BookingType = "daily"
	BookingBoth   BookingType = "both"
)

func ParseBookingType(s string) (BookingType, error) {
	switch bt := BookingType(strings.ToLower(strings.TrimSpace(s))); bt {
	case BookingHourly, BookingDaily, BookingBoth:
		return bt, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBookingType, s)
	}
}

// NeedsSlots is true when a booking is assembled from individual time slots.
func (bt BookingType) NeedsSlots() bool {
	return bt == BookingHourly || bt == BookingBoth
}
