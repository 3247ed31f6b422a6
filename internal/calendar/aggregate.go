package calendar

import (
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	// LookaheadDays is how far past today the date picker reaches.
	LookaheadDays = 30
)

// StatusMap maps a local calendar date (YYYY-MM-DD) to its aggregate status.
// A date missing from the map has no slots and must be rendered disabled.
type StatusMap map[string]DateStatus

func (m StatusMap) Lookup(date string) (DateStatus, bool) {
	st, ok := m[date]
	return st, ok
}

func (m StatusMap) Selectable(date string) bool {
	st, ok := m[date]
	return ok && st.Selectable()
}

func (m StatusMap) Disabled(date string) bool {
	return !m.Selectable(date)
}

// DayCounts tallies the slots of one date.
type DayCounts struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Booked    int `json:"booked"`
	Pending   int `json:"pending"`
}

// Other counts slots whose status is none of the known ones.
func (c DayCounts) Other() int {
	return c.Total - c.Available - c.Booked - c.Pending
}

func (c *DayCounts) add(st SlotStatus) {
	c.Total++
	switch st {
	case SlotAvailable:
		c.Available++
	case SlotBooked:
		c.Booked++
	case SlotPending:
		c.Pending++
	}
}

// ClassifyDate folds the counts of one date into a DateStatus. Daily
// bookings take the whole day as one unit, so any pending slot holds the
// day. Hourly bookings report partial availability instead. Slots with a
// status outside the known set never make a date available.
func ClassifyDate(c DayCounts, bt BookingType) (DateStatus, error) {
	switch bt {
	case BookingDaily:
		switch {
		case c.Booked == c.Total:
			return DateBooked, nil
		case c.Pending > 0:
			return DatePending, nil
		case c.Other() == 0 && c.Available > 0:
			return DateAvailable, nil
		default:
			return DateBooked, nil
		}
	case BookingHourly, BookingBoth:
		switch {
		case c.Booked == c.Total:
			return DateBooked, nil
		case c.Available == c.Total:
			return DateAvailable, nil
		case c.Available == 0 && c.Pending > 0:
			return DatePending, nil
		case c.Available == 0:
			return DateBooked, nil
		default:
			return DatePartial, nil
		}
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBookingType, bt)
	}
}

// CountByDate groups slot rows by date.
func CountByDate(slots []Slot) map[string]DayCounts {
	counts := make(map[string]DayCounts)
	for _, s := range slots {
		c := counts[s.Date]
		c.add(s.Status)
		counts[s.Date] = c
	}
	return counts
}

// AggregateDateStatuses classifies every date that has at least one slot.
func AggregateDateStatuses(slots []Slot, bt BookingType) (StatusMap, error) {
	if _, err := ClassifyDate(DayCounts{}, bt); err != nil {
		return StatusMap{}, err
	}

	out := make(StatusMap)
	for date, c := range CountByDate(slots) {
		st, err := ClassifyDate(c, bt)
		if err != nil {
			return StatusMap{}, err
		}
		out[date] = st
	}
	return out, nil
}

// LocalDate formats t as a calendar date in t's own location.
func LocalDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Window returns the closed interval [today, today+days] as local dates.
func Window(now time.Time, days int) (from, to string) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return LocalDate(start), LocalDate(start.AddDate(0, 0, days))
}

// ParseDate validates a YYYY-MM-DD string in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}
