package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/joshua-takyi/bashbay-calendar/internal/calendar"
)

// SlotRow is a venue_slots row as PostgREST returns it.
type SlotRow struct {
	ID           string     `json:"id"`
	VenueID      string     `json:"venue_id"`
	Date         string     `json:"date"`       // YYYY-MM-DD
	StartTime    string     `json:"start_time"` // HH:MM or HH:MM:SS
	Status       string     `json:"status"`
	Price        float64    `json:"price"`
	PendingUntil *time.Time `json:"pending_until"`
}

// ToSlot normalizes a row into the engine's Slot. Unknown statuses are kept
// verbatim so that aggregation never counts them as available.
func (r SlotRow) ToSlot() (calendar.Slot, error) {
	date := r.Date
	if len(date) > len(calendar.DateLayout) {
		date = date[:len(calendar.DateLayout)]
	}
	if _, err := time.Parse(calendar.DateLayout, date); err != nil {
		return calendar.Slot{}, fmt.Errorf("slot %s has invalid date %q", r.ID, r.Date)
	}

	start, err := normalizeClock(r.StartTime)
	if err != nil {
		return calendar.Slot{}, fmt.Errorf("slot %s: %w", r.ID, err)
	}

	status, err := calendar.ParseSlotStatus(r.Status)
	if err != nil {
		status = calendar.SlotStatus(strings.ToLower(strings.TrimSpace(r.Status)))
	}

	return calendar.Slot{
		ID:           r.ID,
		VenueID:      r.VenueID,
		Date:         date,
		StartTime:    start,
		Status:       status,
		Price:        r.Price,
		PendingUntil: r.PendingUntil,
	}, nil
}

func normalizeClock(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(calendar.TimeLayout), nil
		}
	}
	return "", fmt.Errorf("invalid start time %q", s)
}

// DatesBetween lists every calendar date in the closed interval [from, to].
func DatesBetween(from, to string) ([]string, error) {
	start, err := time.Parse(calendar.DateLayout, from)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", calendar.ErrInvalidDate, from)
	}
	end, err := time.Parse(calendar.DateLayout, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", calendar.ErrInvalidDate, to)
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(calendar.DateLayout))
	}
	return dates, nil
}
