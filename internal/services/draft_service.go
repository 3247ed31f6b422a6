package services

import (
	"context"
	"strings"

	"github.com/joshua-takyi/bashbay-calendar/internal/calendar"
	"github.com/joshua-takyi/bashbay-calendar/internal/models"
)

type DraftService struct {
	draftRepo models.DraftRepo
}

func NewDraftService(draftRepo models.DraftRepo) *DraftService {
	return &DraftService{draftRepo: draftRepo}
}

// GetDraft returns the user's pending booking, as the payment step reads it.
func (ds *DraftService) GetDraft(ctx context.Context, userID string) (*calendar.BookingDraft, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, calendar.ErrNoUser
	}
	return ds.draftRepo.Load(ctx, calendar.DraftKey(userID))
}

func (ds *DraftService) DiscardDraft(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return calendar.ErrNoUser
	}
	return ds.draftRepo.Delete(ctx, calendar.DraftKey(userID))
}
