package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

type Options struct {
	Logger        *slog.Logger
	Location      *time.Location
	Now           func() time.Time
	LookaheadDays int
	PlatformFee   float64
}

// Session is the booking calendar for one venue.
//
// Fetches run outside the lock. Each fetch captures the key it was started
// for plus a generation number, and its result is dropped unless both are
// still current when it completes.
type Session struct {
	source SlotSource
	drafts DraftStore
	nav    Navigator
	logger *slog.Logger
	loc    *time.Location
	now    func() time.Time
	days   int
	fee    float64

	mu          sync.Mutex
	venueID     string
	bookingType BookingType
	rates       Rates

	statusGen uint64
	statuses  StatusMap

	date      string
	slotGen   uint64
	selection *Selection
}

func NewSession(source SlotSource, drafts DraftStore, nav Navigator, opts Options) *Session {
	s := &Session{
		source:    source,
		drafts:    drafts,
		nav:       nav,
		logger:    opts.Logger,
		loc:       opts.Location,
		now:       opts.Now,
		days:      opts.LookaheadDays,
		fee:       opts.PlatformFee,
		statuses:  StatusMap{},
		selection: NewSelection(nil),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.days <= 0 {
		s.days = LookaheadDays
	}
	return s
}

// SetVenue switches the session to another venue or booking type. Any
// fetch still in flight for the previous key is invalidated.
func (s *Session) SetVenue(venueID string, bt BookingType, rates Rates) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if venueID != s.venueID || bt != s.bookingType {
		s.statusGen++
		s.slotGen++
		s.statuses = StatusMap{}
		s.date = ""
		s.selection = NewSelection(nil)
	}
	s.venueID = venueID
	s.bookingType = bt
	s.rates = rates
}

func (s *Session) today() time.Time {
	return s.now().In(s.loc)
}

// Window is the closed date interval the calendar covers today.
func (s *Session) Window() (from, to string) {
	return Window(s.today(), s.days)
}

// RefreshStatuses fetches the lookahead window and rebuilds the status map.
// A failed fetch yields an empty map, so no date is shown as available.
func (s *Session) RefreshStatuses(ctx context.Context) StatusMap {
	s.mu.Lock()
	venueID, bt := s.venueID, s.bookingType
	s.statusGen++
	gen := s.statusGen
	s.mu.Unlock()

	if venueID == "" {
		return StatusMap{}
	}

	from, to := s.Window()
	statuses := StatusMap{}
	slots, err := s.source.ListSlots(ctx, venueID, from, to)
	if err != nil {
		s.logger.Warn("Slot range fetch failed, showing no availability",
			"venue_id", venueID,
			"from", from,
			"to", to,
			"error", err,
		)
	} else if agg, err := AggregateDateStatuses(slots, bt); err != nil {
		s.logger.Warn("Could not classify slot dates",
			"venue_id", venueID,
			"booking_type", bt,
			"error", err,
		)
	} else {
		statuses = agg
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.statusGen || venueID != s.venueID || bt != s.bookingType {
		s.logger.Debug("Discarding stale status fetch", "venue_id", venueID, "booking_type", bt)
		return s.statuses.clone()
	}
	s.statuses = statuses
	return statuses.clone()
}

func (s *Session) Statuses() StatusMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statuses.clone()
}

// SelectDate picks a date. The previous selection is cleared before the
// date's slots are fetched. Daily bookings do not fetch slots.
func (s *Session) SelectDate(ctx context.Context, date string) ([]SlotView, error) {
	if _, err := ParseDate(date, s.loc); err != nil {
		return nil, err
	}
	from, to := s.Window()
	if date < from || date > to {
		return nil, ErrDateOutOfWindow
	}

	s.mu.Lock()
	if s.venueID == "" {
		s.mu.Unlock()
		return nil, ErrNoVenue
	}
	s.date = date
	s.slotGen++
	gen := s.slotGen
	s.selection = NewSelection(nil)
	venueID, bt := s.venueID, s.bookingType
	s.mu.Unlock()

	if !bt.NeedsSlots() {
		return []SlotView{}, nil
	}

	slots, err := s.source.ListSlots(ctx, venueID, date, date)
	if err != nil {
		s.logger.Warn("Slot fetch for date failed, showing no slots",
			"venue_id", venueID,
			"date", date,
			"error", err,
		)
		slots = nil
	}

	onDate := make([]Slot, 0, len(slots))
	for _, slot := range slots {
		if slot.Date == date {
			onDate = append(onDate, slot)
		}
	}
	SortSlots(onDate)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.slotGen || venueID != s.venueID || date != s.date {
		s.logger.Debug("Discarding stale slot fetch", "venue_id", venueID, "date", date)
		return s.selection.Views(), nil
	}
	s.selection = NewSelection(onDate)
	return s.selection.Views(), nil
}

func (s *Session) Date() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.date
}

func (s *Session) Slots() []SlotView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Views()
}

func (s *Session) Toggle(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.date == "" {
		return ErrNoDate
	}
	return s.selection.Toggle(i)
}

// RestoreSelection reapplies a selection held by the client.
func (s *Session) RestoreSelection(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.date == "" {
		if len(ids) == 0 {
			return nil
		}
		return ErrNoDate
	}
	return s.selection.Restore(ids)
}

func (s *Session) SelectedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.SelectedIDs()
}

func (s *Session) Quote() Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeQuote(s.bookingType, s.rates, s.selection, s.fee)
}

// ProceedToPayment validates the draft, stores it and hands off to the
// payment route. Missing input comes back as a *ValidationError.
func (s *Session) ProceedToPayment(ctx context.Context, in DraftInput) (*Handoff, error) {
	s.mu.Lock()
	venueID, bt, rates := s.venueID, s.bookingType, s.rates
	date := s.date
	statuses := s.statuses
	sel := NewSelection(nil)
	if s.selection != nil {
		sel = &Selection{slots: s.selection.slots, selected: append([]bool(nil), s.selection.selected...)}
	}
	s.mu.Unlock()

	if venueID == "" {
		return nil, ErrNoVenue
	}
	if date == "" {
		return nil, ErrNoDate
	}
	if bt.NeedsSlots() && sel.Count() == 0 {
		return nil, ErrNoSlots
	}
	if !statuses.Selectable(date) {
		return nil, ErrDateUnavailable
	}
	if strings.TrimSpace(in.UserID) == "" {
		return nil, ErrNoUser
	}
	if in.GuestCount < 1 {
		return nil, ErrNoGuests
	}
	if rates.Capacity > 0 && in.GuestCount > rates.Capacity {
		return nil, newValidationError("guest_count",
			fmt.Sprintf("Guest count exceeds venue capacity of %d", rates.Capacity))
	}
	requests := strings.TrimSpace(in.SpecialRequests)
	if len([]rune(requests)) > maxSpecialRequests {
		return nil, ErrRequestsTooLong
	}

	quote := ComputeQuote(bt, rates, sel, s.fee)
	draft := &BookingDraft{
		VenueID:         venueID,
		UserID:          in.UserID,
		EventDate:       date,
		StartTime:       quote.StartTime,
		EndTime:         quote.EndTime,
		GuestCount:      in.GuestCount,
		SpecialRequests: requests,
		VenueAmount:     quote.VenuePrice,
		PlatformFee:     quote.PlatformFee,
		TotalAmount:     quote.Total,
		BookingType:     bt,
		SlotIDs:         sel.SelectedIDs(),
		CreatedAt:       s.now().UTC(),
	}

	key := DraftKey(in.UserID)
	if err := s.drafts.Save(ctx, key, draft); err != nil {
		return nil, fmt.Errorf("failed to save booking draft: %w", err)
	}

	h := &Handoff{Key: key, Route: PaymentRoute, Draft: draft}
	if err := s.nav.Navigate(ctx, PaymentRoute, h); err != nil {
		s.discardDraft(ctx, key)
		return nil, fmt.Errorf("failed to hand off to payment: %w", err)
	}

	s.logger.Info("Booking draft handed off",
		"venue_id", venueID,
		"user_id", in.UserID,
		"date", date,
		"slots", len(draft.SlotIDs),
		"total", draft.TotalAmount,
	)
	return h, nil
}

// discardDraft removes a draft the payment step was never told about.
// Stores without Delete keep it until the next Save for the same user
// overwrites it.
func (s *Session) discardDraft(ctx context.Context, key string) {
	d, ok := s.drafts.(draftDeleter)
	if !ok {
		return
	}
	if err := d.Delete(ctx, key); err != nil {
		s.logger.Warn("Could not discard undelivered booking draft", "draft_key", key, "error", err)
	}
}

func (m StatusMap) clone() StatusMap {
	out := make(StatusMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
