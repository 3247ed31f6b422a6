package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/joshua-takyi/bashbay-calendar/internal/calendar"
	"github.com/joshua-takyi/bashbay-calendar/internal/models"
)

var ErrVenueNotBookable = errors.New("venue is not accepting bookings")

// CalendarService serves the booking calendar over a stateless API: every
// call opens a fresh calendar.Session and replays the client's state onto
// it.
type CalendarService struct {
	venuesRepo models.VenuesRepo
	slots      calendar.SlotSource
	drafts     calendar.DraftStore
	nav        calendar.Navigator
	opts       calendar.Options
}

func NewCalendarService(venuesRepo models.VenuesRepo, slots calendar.SlotSource, drafts calendar.DraftStore, nav calendar.Navigator, opts calendar.Options) *CalendarService {
	return &CalendarService{
		venuesRepo: venuesRepo,
		slots:      slots,
		drafts:     drafts,
		nav:        nav,
		opts:       opts,
	}
}

type CalendarView struct {
	VenueID     string               `json:"venue_id"`
	BookingType calendar.BookingType `json:"booking_type"`
	From        string               `json:"from"`
	To          string               `json:"to"`
	Dates       calendar.StatusMap   `json:"dates"`
}

type SlotsView struct {
	Date        string               `json:"date"`
	BookingType calendar.BookingType `json:"booking_type"`
	Slots       []calendar.SlotView  `json:"slots"`
}

type SelectionRequest struct {
	Date        string   `json:"date" validate:"required"`
	SelectedIDs []string `json:"selected_ids"`
	Index       int      `json:"index" validate:"gte=0"`
}

type SelectionView struct {
	Date        string              `json:"date"`
	Slots       []calendar.SlotView `json:"slots"`
	SelectedIDs []string            `json:"selected_ids"`
	Quote       calendar.Quote      `json:"quote"`
}

type CheckoutRequest struct {
	Date            string   `json:"date" validate:"required"`
	SelectedIDs     []string `json:"selected_ids"`
	GuestCount      int      `json:"guest_count"`
	SpecialRequests string   `json:"special_requests"`
}

// OpenSession loads the venue and returns a session bound to it.
func (cs *CalendarService) OpenSession(ctx context.Context, venueID uuid.UUID) (*calendar.Session, *models.Venue, error) {
	venue, err := cs.venuesRepo.GetVenueByID(ctx, venueID)
	if err != nil {
		return nil, nil, err
	}
	if venue.Status == models.StatusInactive || venue.Status == models.StatusPending {
		return nil, nil, ErrVenueNotBookable
	}

	bt, err := venue.CalendarBookingType()
	if err != nil {
		return nil, nil, fmt.Errorf("venue %s: %w", venueID, err)
	}

	session := calendar.NewSession(cs.slots, cs.drafts, cs.nav, cs.opts)
	session.SetVenue(venueID.String(), bt, venue.Rates())
	return session, venue, nil
}

func (cs *CalendarService) DateStatuses(ctx context.Context, venueID uuid.UUID) (*CalendarView, error) {
	session, venue, err := cs.OpenSession(ctx, venueID)
	if err != nil {
		return nil, err
	}

	statuses := session.RefreshStatuses(ctx)
	from, to := session.Window()
	bt, _ := venue.CalendarBookingType()

	return &CalendarView{
		VenueID:     venueID.String(),
		BookingType: bt,
		From:        from,
		To:          to,
		Dates:       statuses,
	}, nil
}

func (cs *CalendarService) SlotsForDate(ctx context.Context, venueID uuid.UUID, date string) (*SlotsView, error) {
	session, venue, err := cs.OpenSession(ctx, venueID)
	if err != nil {
		return nil, err
	}

	slots, err := session.SelectDate(ctx, date)
	if err != nil {
		return nil, err
	}
	bt, _ := venue.CalendarBookingType()

	return &SlotsView{Date: date, BookingType: bt, Slots: slots}, nil
}

// ToggleSlot replays the client's current selection and toggles one slot.
// A rejected toggle leaves the replayed selection as it was.
func (cs *CalendarService) ToggleSlot(ctx context.Context, venueID uuid.UUID, req SelectionRequest) (*SelectionView, error) {
	if strings.TrimSpace(req.Date) == "" {
		return nil, calendar.ErrNoDate
	}
	session, _, err := cs.OpenSession(ctx, venueID)
	if err != nil {
		return nil, err
	}

	if _, err := session.SelectDate(ctx, req.Date); err != nil {
		return nil, err
	}
	if err := session.RestoreSelection(req.SelectedIDs); err != nil {
		return nil, err
	}
	if err := session.Toggle(req.Index); err != nil {
		return nil, err
	}

	return &SelectionView{
		Date:        session.Date(),
		Slots:       session.Slots(),
		SelectedIDs: session.SelectedIDs(),
		Quote:       session.Quote(),
	}, nil
}

// Checkout validates the selection against fresh availability, stores the
// draft and hands off to payment.
func (cs *CalendarService) Checkout(ctx context.Context, venueID uuid.UUID, userID string, req CheckoutRequest) (*calendar.Handoff, error) {
	if strings.TrimSpace(req.Date) == "" {
		return nil, calendar.ErrNoDate
	}
	session, _, err := cs.OpenSession(ctx, venueID)
	if err != nil {
		return nil, err
	}

	session.RefreshStatuses(ctx)
	if _, err := session.SelectDate(ctx, req.Date); err != nil {
		return nil, err
	}
	if err := session.RestoreSelection(req.SelectedIDs); err != nil {
		return nil, err
	}

	return session.ProceedToPayment(ctx, calendar.DraftInput{
		UserID:          userID,
		GuestCount:      req.GuestCount,
		SpecialRequests: req.SpecialRequests,
	})
}
