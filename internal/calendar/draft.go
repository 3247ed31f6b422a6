package calendar

import (
	"context"
	"time"
)

const (
	// PaymentRoute is where a successful handoff sends the user.
	PaymentRoute = "/payment"

	draftKeyPrefix = "pending_booking:"

	maxSpecialRequests = 1000
)

// BookingDraft is the selection a user assembles before paying. It is
// persisted under DraftKey and consumed by the payment step.
type BookingDraft struct {
	VenueID         string      `json:"venue_id" bson:"venue_id" validate:"required"`
	UserID          string      `json:"user_id" bson:"user_id" validate:"required"`
	EventDate       string      `json:"event_date" bson:"event_date" validate:"required,datetime=2006-01-02"`
	StartTime       string      `json:"start_time,omitempty" bson:"start_time,omitempty"`
	EndTime         string      `json:"end_time,omitempty" bson:"end_time,omitempty"`
	GuestCount      int         `json:"guest_count" bson:"guest_count" validate:"min=1"`
	SpecialRequests string      `json:"special_requests,omitempty" bson:"special_requests,omitempty" validate:"max=1000"`
	VenueAmount     float64     `json:"venue_amount" bson:"venue_amount" validate:"gte=0"`
	PlatformFee     float64     `json:"platform_fee" bson:"platform_fee" validate:"gte=0"`
	TotalAmount     float64     `json:"total_amount" bson:"total_amount" validate:"gte=0"`
	BookingType     BookingType `json:"booking_type" bson:"booking_type" validate:"required,oneof=hourly daily both"`
	SlotIDs         []string    `json:"slot_ids" bson:"slot_ids"`
	CreatedAt       time.Time   `json:"created_at" bson:"created_at"`
}

// DraftInput carries the fields the user types in next to the calendar.
type DraftInput struct {
	UserID          string
	GuestCount      int
	SpecialRequests string
}

// Handoff is what the payment step receives.
type Handoff struct {
	Key   string        `json:"draft_key"`
	Route string        `json:"route"`
	Draft *BookingDraft `json:"draft"`
}

func DraftKey(userID string) string {
	return draftKeyPrefix + userID
}

// SlotSource answers the slot range query for one venue.
type SlotSource interface {
	ListSlots(ctx context.Context, venueID, from, to string) ([]Slot, error)
}

// DraftStore is a named, overwritable slot for the serialized draft.
type DraftStore interface {
	Save(ctx context.Context, key string, draft *BookingDraft) error
	Load(ctx context.Context, key string) (*BookingDraft, error)
}

type draftDeleter interface {
	Delete(ctx context.Context, key string) error
}

// Navigator moves the user on to route once the draft is stored.
type Navigator interface {
	Navigate(ctx context.Context, route string, h *Handoff) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, route string, h *Handoff) error

func (f NavigatorFunc) Navigate(ctx context.Context, route string, h *Handoff) error {
	return f(ctx, route, h)
}
