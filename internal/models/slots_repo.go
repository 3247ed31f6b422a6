package models

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/joshua-takyi/bashbay-calendar/internal/calendar"
)

type SlotsRepo interface {
	ListSlots(ctx context.Context, venueID, from, to string) ([]calendar.Slot, error)
	ReleaseExpiredPending(ctx context.Context, now time.Time) (int64, error)
}

const slotColumns = "id,venue_id,date,start_time,status,price,pending_until"

// ListSlots returns every slot of the venue dated within [from, to].
func (su *SupabaseRepo) ListSlots(ctx context.Context, venueID, from, to string) ([]calendar.Slot, error) {
	if venueID == "" {
		return nil, fmt.Errorf("venue ID is required")
	}

	dates, err := DatesBetween(from, to)
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return []calendar.Slot{}, nil
	}

	query := su.supabaseClient.From(SlotsTable).
		Select(slotColumns, "", false).
		Eq("venue_id", venueID)
	if len(dates) == 1 {
		query = query.Eq("date", dates[0])
	} else {
		query = query.In("date", dates)
	}

	raw, _, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get venue slots: %w", err)
	}

	var rows []SlotRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal slot rows: %w", err)
	}

	slots := make([]calendar.Slot, 0, len(rows))
	for _, row := range rows {
		slot, err := row.ToSlot()
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	calendar.SortSlots(slots)
	return slots, nil
}

// ReleaseExpiredPending returns held slots whose hold has lapsed to the
// available pool.
func (su *SupabaseRepo) ReleaseExpiredPending(ctx context.Context, now time.Time) (int64, error) {
	update := map[string]interface{}{
		"status":        string(calendar.SlotAvailable),
		"pending_until": nil,
	}

	_, count, err := su.supabaseClient.From(SlotsTable).
		Update(update, "minimal", "exact").
		Eq("status", string(calendar.SlotPending)).
		Lt("pending_until", now.UTC().Format(time.RFC3339)).
		Execute()
	if err != nil {
		return 0, fmt.Errorf("failed to release expired pending slots: %w", err)
	}
	return count, nil
}
