package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joshua-takyi/bashbay-calendar/internal/calendar"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultMongoDBName = "bashbay"
	DraftsColName      = "booking_drafts"

	DefaultDraftTTL = 24 * time.Hour
)

var ErrDraftNotFound = errors.New("booking draft not found")

// DraftRepo is the persistence slot the payment step reads drafts from.
type DraftRepo interface {
	calendar.DraftStore
	Delete(ctx context.Context, key string) error
}

type draftDocument struct {
	Key       string                 `bson:"_id"`
	Draft     *calendar.BookingDraft `bson:"draft"`
	UpdatedAt time.Time              `bson:"updated_at"`
	ExpiresAt time.Time              `bson:"expires_at"` // TTL index field
}

// MongoDraftStore keeps one document per draft key.
type MongoDraftStore struct {
	repo *MongodbRepo
	ttl  time.Duration
}

func NewMongoDraftStore(repo *MongodbRepo, ttl time.Duration) *MongoDraftStore {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &MongoDraftStore{repo: repo, ttl: ttl}
}

// EnsureIndexes creates the TTL index that expires abandoned drafts.
func (s *MongoDraftStore) EnsureIndexes(ctx context.Context) error {
	col, err := s.repo.GetCollection(ctx, DraftsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}

	_, err = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().
			SetExpireAfterSeconds(0). // Expire at the time specified in expires_at
			SetName("expires_at_ttl"),
	})
	if err != nil {
		return fmt.Errorf("error creating indexes: %w", err)
	}
	return nil
}

func (s *MongoDraftStore) Save(ctx context.Context, key string, draft *calendar.BookingDraft) error {
	if err := Validate.Struct(draft); err != nil {
		return fmt.Errorf("invalid booking draft: %w", err)
	}

	col, err := s.repo.GetCollection(ctx, DraftsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}

	now := time.Now()
	doc := draftDocument{
		Key:       key,
		Draft:     draft,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	_, err = col.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("error upserting booking draft: %w", err)
	}
	return nil
}

func (s *MongoDraftStore) Load(ctx context.Context, key string) (*calendar.BookingDraft, error) {
	col, err := s.repo.GetCollection(ctx, DraftsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	var doc draftDocument
	err = col.FindOne(ctx, bson.M{
		"_id":        key,
		"expires_at": bson.M{"$gt": time.Now()},
	}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error finding booking draft: %w", err)
	}
	return doc.Draft, nil
}

func (s *MongoDraftStore) Delete(ctx context.Context, key string) error {
	col, err := s.repo.GetCollection(ctx, DraftsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return deleteResult(0, fmt.Errorf("error deleting booking draft: %w", err))
	}
	return deleteResult(res.DeletedCount, nil)
}

// deleteResult reports ErrDraftNotFound when nothing was removed.
func deleteResult(deleted int64, err error) error {
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrDraftNotFound
	}
	return nil
}
