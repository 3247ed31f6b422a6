package calendar

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rangeCall struct {
	venueID, from, to string
}

// fakeSource answers from a fixed slot list per venue. When gate is set,
// calls block until a value arrives on it.
type fakeSource struct {
	mu    sync.Mutex
	slots map[string][]Slot
	err   error
	calls []rangeCall
	gate  chan struct{}
}

func (f *fakeSource) ListSlots(ctx context.Context, venueID, from, to string) ([]Slot, error) {
	f.mu.Lock()
	f.calls = append(f.calls, rangeCall{venueID, from, to})
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []Slot
	for _, s := range f.slots[venueID] {
		if s.Date >= from && s.Date <= to {
			out = append(out, s)
		}
	}
	return out, nil
}

type memDrafts struct {
	saved map[string]*BookingDraft
	err   error
}

func (m *memDrafts) Save(ctx context.Context, key string, d *BookingDraft) error {
	if m.err != nil {
		return m.err
	}
	if m.saved == nil {
		m.saved = map[string]*BookingDraft{}
	}
	m.saved[key] = d
	return nil
}

func (m *memDrafts) Load(ctx context.Context, key string) (*BookingDraft, error) {
	return m.saved[key], nil
}

func (m *memDrafts) Delete(ctx context.Context, key string) error {
	delete(m.saved, key)
	return nil
}

var fixedNow = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSession(src SlotSource, drafts DraftStore, nav Navigator) *Session {
	return NewSession(src, drafts, nav, Options{
		Logger:      quietLogger(),
		Location:    time.UTC,
		Now:         func() time.Time { return fixedNow },
		PlatformFee: DefaultPlatformFee,
	})
}

func venueSlots() map[string][]Slot {
	return map[string][]Slot{
		"v1": {
			{ID: "a", Date: "2026-10-18", StartTime: "11:00", Status: SlotAvailable},
			{ID: "b", Date: "2026-10-18", StartTime: "10:00", Status: SlotAvailable},
			{ID: "c", Date: "2026-10-18", StartTime: "12:00", Status: SlotBooked},
			{ID: "d", Date: "2026-10-19", StartTime: "10:00", Status: SlotBooked},
		},
		"v2": {
			{ID: "x", Date: "2026-10-20", StartTime: "10:00", Status: SlotPending},
		},
	}
}

func TestSession_RefreshStatuses(t *testing.T) {
	src := &fakeSource{slots: venueSlots()}
	s := newTestSession(src, &memDrafts{}, nil)
	s.SetVenue("v1", BookingHourly, Rates{HourlyRate: 100})

	got := s.RefreshStatuses(context.Background())

	assert.Equal(t, StatusMap{"2026-10-18": DatePartial, "2026-10-19": DateBooked}, got)
	require.Len(t, src.calls, 1)
	assert.Equal(t, rangeCall{"v1", "2026-10-17", "2026-11-16"}, src.calls[0])
}

func TestSession_RefreshStatuses_FetchErrorFailsClosed(t *testing.T) {
	src := &fakeSource{slots: venueSlots()}
	s := newTestSession(src, &memDrafts{}, nil)
	s.SetVenue("v1", BookingHourly, Rates{})
	require.NotEmpty(t, s.RefreshStatuses(context.Background()))

	src.err = errors.New("connection reset")
	assert.Empty(t, s.RefreshStatuses(context.Background()))
	assert.Empty(t, s.Statuses())
}

func TestSession_StaleStatusFetchIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{slots: venueSlots(), gate: gate}
	s := newTestSession(src, &memDrafts{}, nil)
	s.SetVenue("v1", BookingHourly, Rates{})

	done := make(chan StatusMap)
	go func() { done <- s.RefreshStatuses(context.Background()) }()

	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return len(src.calls) == 1
	}, time.Second, time.Millisecond)

	// The venue changes while the first fetch is still in flight.
	s.SetVenue("v2", BookingHourly, Rates{})
	src.mu.Lock()
	src.gate = nil
	src.mu.Unlock()
	fresh := s.RefreshStatuses(context.Background())
	assert.Equal(t, StatusMap{"2026-10-20": DatePending}, fresh)

	close(gate)
	<-done

	assert.Equal(t, StatusMap{"2026-10-20": DatePending}, s.Statuses(), "late v1 result must not overwrite v2")
}

func TestSession_SelectDateResetsSelection(t *testing.T) {
	src := &fakeSource{slots: venueSlots()}
	s := newTestSession(src, &memDrafts{}, nil)
	s.SetVenue("v1", BookingHourly, Rates{HourlyRate: 100})

	views, err := s.SelectDate(context.Background(), "2026-10-18")
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "10:00", views[0].StartTime, "slots are ordered by start time")

	require.NoError(t, s.Toggle(0))
	require.NoError(t, s.Toggle(1))
	assert.Equal(t, []string{"b", "a"}, s.SelectedIDs())

	// Same date again: a refetch still starts from an empty selection.
	views, err = s.SelectDate(context.Background(), "2026-10-18")
	require.NoError(t, err)
	for _, v := range views {
		assert.False(t, v.Selected)
	}
	assert.Empty(t, s.SelectedIDs())

	_, err = s.SelectDate(context.Background(), "2026-10-19")
	require.NoError(t, err)
	assert.Empty(t, s.SelectedIDs())
}

func TestSession_SelectDateClearsBeforeFetchCompletes(t *testing.T) {
	src := &fakeSource{slots: venueSlots()}
	s := newTestSession(src, &memDrafts{}, nil)
	s.SetVenue("v1", BookingHourly, Rates{})

	_, err := s.SelectDate(context.Background(), "2026-10-18")
	require.NoError(t, err)
	require.NoError(t, s.Toggle(0))

	src.mu.Lock()
	src.gate = make(chan struct{})
	gate := src.gate
	src.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_, _ = s.SelectDate(context.Background(), "2026-10-19")
		close(done)
	}()

	require.Eventually(t, func() bool { return s.Date() == "2026-10-19" }, time.Second, time.Millisecond)
	assert.Empty(t, s.SelectedIDs())
	assert.Empty(t, s.Slots())

	close(gate)
	<-done
}

func TestSession_StaleSlotFetchIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{slots: venueSlots(), gate: gate}
	s := newTestSession(src, &memDrafts{}, nil)
	s.SetVenue("v1", BookingHourly, Rates{})

	done := make(chan []SlotView)
	go func() {
		views, _ := s.SelectDate(context.Background(), "2026-10-18")
		done <- views
	}()

	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return len(src.calls) == 1
	}, time.Second, time.Millisecond)

	// A newer date is picked and answered while the first fetch hangs.
	src.mu.Lock()
	src.gate = nil
	src.mu.Unlock()
	fresh, err := s.SelectDate(context.Background(), "2026-10-19")
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "d", fresh[0].ID)

	close(gate)
	late := <-done
	require.Len(t, late, 1, "the late call reports current state, not its own rows")
	assert.Equal(t, "d", late[0].ID)

	assert.Equal(t, "2026-10-19", s.Date())
	slots := s.Slots()
	require.Len(t, slots, 1)
	assert.Equal(t, "d", slots[0].ID)
}

func TestSession_SelectDateValidation(t *testing.T) {
	s := newTestSession(&fakeSource{}, &memDrafts{}, nil)

	_, err := s.SelectDate(context.Background(), "2026-10-18")
	assert.ErrorIs(t, err, ErrNoVenue)

	s.SetVenue("v1", BookingHourly, Rates{})
	_, err = s.SelectDate(context.Background(), "18/10/2026")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = s.SelectDate(context.Background(), "2026-10-16")
	assert.ErrorIs(t, err, ErrDateOutOfWindow)

	_, err = s.SelectDate(context.Background(), "2026-12-01")
	assert.ErrorIs(t, err, ErrDateOutOfWindow)
}

func TestSession_DailySkipsSlotFetch(t *testing.T) {
	src := &fakeSource{slots: venueSlots()}
	s := newTestSession(src, &memDrafts{}, nil)
	s.SetVenue("v1", BookingDaily, Rates{DailyRate: 800})

	views, err := s.SelectDate(context.Background(), "2026-10-18")
	require.NoError(t, err)
	assert.Empty(t, views)
	assert.Empty(t, src.calls)
	assert.Equal(t, 800.0, s.Quote().VenuePrice)
}

func TestSession_ProceedToPayment(t *testing.T) {
	src := &fakeSource{slots: venueSlots()}
	drafts := &memDrafts{}
	var navigated []string
	nav := NavigatorFunc(func(ctx context.Context, route string, h *Handoff) error {
		navigated = append(navigated, route+"|"+h.Key)
		return nil
	})
	s := newTestSession(src, drafts, nav)
	s.SetVenue("v1", BookingHourly, Rates{HourlyRate: 120, Capacity: 50})
	s.RefreshStatuses(context.Background())

	_, err := s.SelectDate(context.Background(), "2026-10-18")
	require.NoError(t, err)
	require.NoError(t, s.Toggle(0))
	require.NoError(t, s.Toggle(1))

	h, err := s.ProceedToPayment(context.Background(), DraftInput{
		UserID:          "u1",
		GuestCount:      20,
		SpecialRequests: "  vegetarian menu  ",
	})
	require.NoError(t, err)

	assert.Equal(t, "pending_booking:u1", h.Key)
	assert.Equal(t, PaymentRoute, h.Route)
	assert.Equal(t, []string{"/payment|pending_booking:u1"}, navigated)

	d := drafts.saved["pending_booking:u1"]
	require.NotNil(t, d)
	assert.Equal(t, "v1", d.VenueID)
	assert.Equal(t, "2026-10-18", d.EventDate)
	assert.Equal(t, "10:00", d.StartTime)
	assert.Equal(t, "11:00", d.EndTime)
	assert.Equal(t, []string{"b", "a"}, d.SlotIDs)
	assert.Equal(t, 240.0, d.VenueAmount)
	assert.Equal(t, DefaultPlatformFee, d.PlatformFee)
	assert.Equal(t, 250.0, d.TotalAmount)
	assert.Equal(t, "vegetarian menu", d.SpecialRequests)
	assert.Equal(t, BookingHourly, d.BookingType)
}

func TestSession_ProceedToPaymentValidation(t *testing.T) {
	src := &fakeSource{slots: venueSlots()}
	drafts := &memDrafts{}
	nav := NavigatorFunc(func(context.Context, string, *Handoff) error { return nil })
	s := newTestSession(src, drafts, nav)
	s.SetVenue("v1", BookingHourly, Rates{HourlyRate: 120, Capacity: 10})
	s.RefreshStatuses(context.Background())
	ctx := context.Background()
	in := DraftInput{UserID: "u1", GuestCount: 5}

	_, err := s.ProceedToPayment(ctx, in)
	assert.ErrorIs(t, err, ErrNoDate)

	_, err = s.SelectDate(ctx, "2026-10-18")
	require.NoError(t, err)
	_, err = s.ProceedToPayment(ctx, in)
	assert.ErrorIs(t, err, ErrNoSlots)

	require.NoError(t, s.Toggle(0))

	_, err = s.ProceedToPayment(ctx, DraftInput{GuestCount: 5})
	assert.ErrorIs(t, err, ErrNoUser)

	_, err = s.ProceedToPayment(ctx, DraftInput{UserID: "u1"})
	assert.ErrorIs(t, err, ErrNoGuests)

	_, err = s.ProceedToPayment(ctx, DraftInput{UserID: "u1", GuestCount: 11})
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "Guest count exceeds venue capacity of 10", ve.Message)

	assert.Empty(t, drafts.saved, "nothing is persisted while validation fails")
}

func TestSession_ProceedToPaymentBookedDate(t *testing.T) {
	src := &fakeSource{slots: venueSlots()}
	nav := NavigatorFunc(func(context.Context, string, *Handoff) error { return nil })
	s := newTestSession(src, &memDrafts{}, nav)
	s.SetVenue("v1", BookingDaily, Rates{DailyRate: 500})
	s.RefreshStatuses(context.Background())

	_, err := s.SelectDate(context.Background(), "2026-10-19")
	require.NoError(t, err)

	_, err = s.ProceedToPayment(context.Background(), DraftInput{UserID: "u1", GuestCount: 2})
	assert.ErrorIs(t, err, ErrDateUnavailable)
}

func TestSession_ProceedToPaymentStoreFailure(t *testing.T) {
	src := &fakeSource{slots: venueSlots()}
	nav := NavigatorFunc(func(context.Context, string, *Handoff) error {
		t.Fatal("navigation must not happen when the draft was not stored")
		return nil
	})
	s := newTestSession(src, &memDrafts{err: errors.New("store down")}, nav)
	s.SetVenue("v1", BookingDaily, Rates{DailyRate: 500})
	s.RefreshStatuses(context.Background())
	_, err := s.SelectDate(context.Background(), "2026-10-18")
	require.NoError(t, err)

	_, err = s.ProceedToPayment(context.Background(), DraftInput{UserID: "u1", GuestCount: 2})
	require.Error(t, err)
	_, isValidation := AsValidation(err)
	assert.False(t, isValidation)
}

func TestSession_ProceedToPaymentNavigationFailureDiscardsDraft(t *testing.T) {
	src := &fakeSource{slots: venueSlots()}
	drafts := &memDrafts{}
	nav := NavigatorFunc(func(context.Context, string, *Handoff) error {
		return errors.New("broker down")
	})
	s := newTestSession(src, drafts, nav)
	s.SetVenue("v1", BookingDaily, Rates{DailyRate: 500})
	s.RefreshStatuses(context.Background())
	_, err := s.SelectDate(context.Background(), "2026-10-18")
	require.NoError(t, err)

	_, err = s.ProceedToPayment(context.Background(), DraftInput{UserID: "u1", GuestCount: 2})
	assert.ErrorContains(t, err, "broker down")
	assert.NotContains(t, drafts.saved, DraftKey("u1"))
}
