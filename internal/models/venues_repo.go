package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const (
	VenuesTable = "venues"
	SlotsTable  = "venue_slots"
)

var ErrVenueNotFound = errors.New("venue not found")

type VenuesRepo interface {
	GetVenueByID(ctx context.Context, id uuid.UUID) (*Venue, error)
}

func (su *SupabaseRepo) GetVenueByID(ctx context.Context, id uuid.UUID) (*Venue, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid UUID")
	}

	raw, status, err := su.supabaseClient.From(VenuesTable).
		Select("*", "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		if status != 0 {
			return nil, fmt.Errorf("postgrest error: status=%d body=%s err=%w", status, string(raw), err)
		}
		return nil, fmt.Errorf("failed to get venue by ID: %w", err)
	}

	// Supabase returns an array even for single results
	var venues []Venue
	if err := json.Unmarshal(raw, &venues); err != nil {
		return nil, fmt.Errorf("failed to unmarshal venue rows: %w", err)
	}

	if len(venues) == 0 {
		return nil, ErrVenueNotFound
	}

	return &venues[0], nil
}
