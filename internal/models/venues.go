package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/bashbay-calendar/internal/calendar"
)

type VenueStatus string

const (
	StatusPending  VenueStatus = "pending"
	StatusActive   VenueStatus = "active"
	StatusInactive VenueStatus = "inactive"
)

// Venue is the slice of the venue record the booking calendar reads.
type Venue struct {
	Id       uuid.UUID `db:"id" json:"id,omitempty"`
	HostId   uuid.UUID `db:"host_id" json:"host_id,omitempty"`
	Name     string    `db:"name" json:"name,omitempty"`
	Slug     string    `db:"slug" json:"slug,omitempty"`
	Location string    `db:"location" json:"location,omitempty"`

	// CAPACITY
	Capacity int `db:"capacity" json:"capacity,omitempty"`

	// PRICING & BOOKING
	BookingType  string  `db:"booking_type" json:"booking_type,omitempty"` // "hourly", "daily", "both"
	PricePerHour float64 `db:"price_per_hour" json:"price_per_hour,omitempty"`
	PricePerDay  float64 `db:"price_per_day" json:"price_per_day,omitempty"`

	Status    VenueStatus `db:"status" json:"status,omitempty"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// UnmarshalJSON accepts hourly_rate and daily_rate as aliases of
// price_per_hour and price_per_day. Older listings were written with them.
func (v *Venue) UnmarshalJSON(data []byte) error {
	type plain Venue
	var aux struct {
		plain
		HourlyRate *float64 `json:"hourly_rate"`
		DailyRate  *float64 `json:"daily_rate"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*v = Venue(aux.plain)
	if v.PricePerHour == 0 && aux.HourlyRate != nil {
		v.PricePerHour = *aux.HourlyRate
	}
	if v.PricePerDay == 0 && aux.DailyRate != nil {
		v.PricePerDay = *aux.DailyRate
	}
	return nil
}

// CalendarBookingType parses the venue's booking type. Listings created
// before the column existed are hourly.
func (v *Venue) CalendarBookingType() (calendar.BookingType, error) {
	if strings.TrimSpace(v.BookingType) == "" {
		return calendar.BookingHourly, nil
	}
	return calendar.ParseBookingType(v.BookingType)
}

func (v *Venue) Rates() calendar.Rates {
	return calendar.Rates{
		HourlyRate: v.PricePerHour,
		DailyRate:  v.PricePerDay,
		Capacity:   v.Capacity,
	}
}
