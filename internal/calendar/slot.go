package calendar

import (
	"sort"
	"time"
)

// Slot is one bookable time unit on one date for one venue.
type Slot struct {
	ID           string     `json:"id"`
	VenueID      string     `json:"venue_id,omitempty"`
	Date         string     `json:"date"`
	StartTime    string     `json:"start_time"`
	Status       SlotStatus `json:"status"`
	Price        float64    `json:"price"`
	PendingUntil *time.Time `json:"pending_until,omitempty"`
}

// SlotView is a Slot with the locally owned selection flag.
type SlotView struct {
	Slot
	Selected bool `json:"selected"`
}

// SortSlots orders slots by date, then start time, then id.
func SortSlots(slots []Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})
}
