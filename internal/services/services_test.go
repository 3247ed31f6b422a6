package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/bashbay-calendar/internal/calendar"
	"github.com/joshua-takyi/bashbay-calendar/internal/models"
)

var (
	fixedNow   = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	testVenue  = uuid.MustParse("7b0f3c2e-5d1a-4f3b-9a8e-1c2d3e4f5a6b")
	quietLog   = slog.New(slog.NewTextHandler(io.Discard, nil))
	testUserID = "4a9d1c55-2b7e-4e1f-8c3d-6f5a4b3c2d1e"
)

type fakeVenues struct {
	venues map[uuid.UUID]*models.Venue
}

func (f *fakeVenues) GetVenueByID(_ context.Context, id uuid.UUID) (*models.Venue, error) {
	v, ok := f.venues[id]
	if !ok {
		return nil, models.ErrVenueNotFound
	}
	cp := *v
	return &cp, nil
}

type fakeSlots struct {
	slots []calendar.Slot
	err   error
}

func (f *fakeSlots) ListSlots(_ context.Context, venueID, from, to string) ([]calendar.Slot, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []calendar.Slot
	for _, s := range f.slots {
		if s.VenueID == venueID && s.Date >= from && s.Date <= to {
			out = append(out, s)
		}
	}
	return out, nil
}

type memDrafts struct {
	mu     sync.Mutex
	drafts map[string]*calendar.BookingDraft
	err    error
}

func newMemDrafts() *memDrafts {
	return &memDrafts{drafts: map[string]*calendar.BookingDraft{}}
}

func (m *memDrafts) Save(_ context.Context, key string, d *calendar.BookingDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *d
	m.drafts[key] = &cp
	return nil
}

func (m *memDrafts) Load(_ context.Context, key string) (*calendar.BookingDraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[key]
	if !ok {
		return nil, models.ErrDraftNotFound
	}
	return d, nil
}

func (m *memDrafts) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drafts[key]; !ok {
		return models.ErrDraftNotFound
	}
	delete(m.drafts, key)
	return nil
}

type recordingNav struct {
	handoffs []*calendar.Handoff
	err      error
}

func (r *recordingNav) Navigate(_ context.Context, _ string, h *calendar.Handoff) error {
	if r.err != nil {
		return r.err
	}
	r.handoffs = append(r.handoffs, h)
	return nil
}

func slot(id, date, start string, st calendar.SlotStatus) calendar.Slot {
	return calendar.Slot{ID: id, VenueID: testVenue.String(), Date: date, StartTime: start, Status: st, Price: 50}
}

type fixture struct {
	venues *fakeVenues
	slots  *fakeSlots
	drafts *memDrafts
	nav    *recordingNav
	svc    *CalendarService
}

func newFixture(bookingType string) *fixture {
	f := &fixture{
		venues: &fakeVenues{venues: map[uuid.UUID]*models.Venue{
			testVenue: {
				Id:           testVenue,
				Name:         "Harbour Hall",
				Capacity:     100,
				BookingType:  bookingType,
				PricePerHour: 50,
				PricePerDay:  400,
				Status:       models.StatusActive,
			},
		}},
		slots: &fakeSlots{slots: []calendar.Slot{
			slot("s1", "2026-10-20", "09:00", calendar.SlotAvailable),
			slot("s2", "2026-10-20", "10:00", calendar.SlotAvailable),
			slot("s3", "2026-10-20", "11:00", calendar.SlotBooked),
			slot("s4", "2026-10-20", "12:00", calendar.SlotAvailable),
			slot("b1", "2026-10-21", "09:00", calendar.SlotBooked),
			slot("b2", "2026-10-21", "10:00", calendar.SlotBooked),
			slot("old", "2026-10-01", "09:00", calendar.SlotAvailable),
		}},
		drafts: newMemDrafts(),
		nav:    &recordingNav{},
	}
	f.svc = NewCalendarService(f.venues, f.slots, f.drafts, f.nav, calendar.Options{
		Logger:      quietLog,
		Location:    time.UTC,
		Now:         func() time.Time { return fixedNow },
		PlatformFee: calendar.DefaultPlatformFee,
	})
	return f
}

var errBoom = errors.New("boom")
