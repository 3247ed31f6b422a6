package calendar

// DefaultPlatformFee is the flat fee added to every booking.
const DefaultPlatformFee = 10.0

// Rates is the pricing and capacity projection of a venue record.
type Rates struct {
	HourlyRate float64 `json:"hourly_rate"`
	DailyRate  float64 `json:"daily_rate"`
	Capacity   int     `json:"capacity"`
}

type Quote struct {
	StartTime   string  `json:"start_time,omitempty"`
	EndTime     string  `json:"end_time,omitempty"`
	SlotCount   int     `json:"slot_count"`
	VenuePrice  float64 `json:"venue_price"`
	PlatformFee float64 `json:"platform_fee"`
	Total       float64 `json:"total"`
}

// ComputeQuote derives times and prices from the current selection. Daily
// bookings cost the flat daily rate however many slots are picked.
func ComputeQuote(bt BookingType, rates Rates, sel *Selection, platformFee float64) Quote {
	q := Quote{PlatformFee: platformFee}
	if sel != nil {
		q.StartTime, q.EndTime = sel.Times()
		q.SlotCount = sel.Count()
	}

	switch bt {
	case BookingDaily:
		q.VenuePrice = rates.DailyRate
	case BookingHourly, BookingBoth:
		q.VenuePrice = float64(q.SlotCount) * rates.HourlyRate
	}

	q.Total = q.VenuePrice + q.PlatformFee
	return q
}
