package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"
	"github.com/joshua-takyi/bashbay-calendar/internal/calendar"
	"github.com/joshua-takyi/bashbay-calendar/internal/config"
	"github.com/joshua-takyi/bashbay-calendar/internal/middleware"
	"github.com/joshua-takyi/bashbay-calendar/internal/models"
	"github.com/joshua-takyi/bashbay-calendar/internal/services"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Logger *slog.Logger
	Config *config.Config
	// Database clients
	SupabaseClient *supabase.Client
	MongoDBClient  *mongo.Client
	RedisClient    *redis.Client

	TokenValidator  middleware.TokenValidator
	Navigator       calendar.Navigator
	CalendarService *services.CalendarService
	DraftService    *services.DraftService
	ExpiryService   *services.ExpiryService
}

// NewContainer creates a new dependency injection container. redisClient
// is only required when drafts are kept in Redis.
func NewContainer(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	supabaseClient *supabase.Client,
	mongoDBClient *mongo.Client,
	redisClient *redis.Client,
	validator middleware.TokenValidator,
	nav calendar.Navigator,
) (*Container, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	// Initialize repositories
	supa := models.SupabaseNewRepo(supabaseClient)

	var drafts models.DraftRepo
	switch cfg.DraftStore {
	case config.DraftStoreRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("draft store %q needs a Redis client", cfg.DraftStore)
		}
		drafts = models.NewRedisDraftStore(redisClient, cfg.DraftTTL)
	default:
		store := models.NewMongoDraftStore(models.MongodbNewRepo(mongoDBClient, cfg.MongoDBDatabase), cfg.DraftTTL)
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		drafts = store
	}

	calendarService := services.NewCalendarService(supa, supa, drafts, nav, calendar.Options{
		Logger:        logger,
		Location:      loc,
		LookaheadDays: cfg.LookaheadDays,
		PlatformFee:   cfg.PlatformFee,
	})

	return &Container{
		Logger:          logger,
		Config:          cfg,
		SupabaseClient:  supabaseClient,
		MongoDBClient:   mongoDBClient,
		RedisClient:     redisClient,
		TokenValidator:  validator,
		Navigator:       nav,
		CalendarService: calendarService,
		DraftService:    services.NewDraftService(drafts),
		ExpiryService:   services.NewExpiryService(supa, cfg.ExpiryCron, loc, logger),
	}, nil
}
