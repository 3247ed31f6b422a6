package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/joshua-takyi/bashbay-calendar/internal/calendar"
	"github.com/joshua-takyi/bashbay-calendar/internal/config"
	"github.com/joshua-takyi/bashbay-calendar/internal/connect"
	"github.com/joshua-takyi/bashbay-calendar/internal/container"
	"github.com/joshua-takyi/bashbay-calendar/internal/handoff"
	"github.com/joshua-takyi/bashbay-calendar/internal/helpers"
	"github.com/joshua-takyi/bashbay-calendar/internal/routes"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("Starting Bashbay calendar server", "environment", cfg.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	supaClient, err := connect.InitSupabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to Supabase", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to Supabase successfully")

	validator, err := helpers.NewTokenValidator(ctx, cfg.SupabaseURL)
	if err != nil {
		logger.Error("Failed to load signing keys", "error", err)
		os.Exit(1)
	}
	defer validator.Close()

	var mongoClient *mongo.Client
	var redisClient *redis.Client
	switch cfg.DraftStore {
	case config.DraftStoreMongo:
		mongoClient, err = connect.MongoDBConnect(ctx, cfg)
		if err != nil {
			logger.Error("Failed to connect to MongoDB", "error", err)
			os.Exit(1)
		}
		logger.Info("Connected to MongoDB successfully")
	case config.DraftStoreRedis:
		redisClient, err = connect.RedisConnect(ctx, cfg)
		if err != nil {
			logger.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		logger.Info("Connected to Redis successfully")
	}

	var nav calendar.Navigator = handoff.LogNavigator{Logger: logger}
	var kafkaNav *handoff.KafkaNavigator
	if cfg.KafkaEnabled() {
		kafkaNav = handoff.NewKafkaNavigator(cfg.KafkaBrokers, cfg.KafkaPaymentTopic, logger)
		nav = kafkaNav
		logger.Info("Payment handoff via Kafka", "topic", cfg.KafkaPaymentTopic)
	}

	appContainer, err := container.NewContainer(ctx, cfg, logger, supaClient, mongoClient, redisClient, validator, nav)
	if err != nil {
		logger.Error("Failed to build application container", "error", err)
		os.Exit(1)
	}

	if err := appContainer.ExpiryService.Start(); err != nil {
		logger.Error("Failed to start pending slot sweeper", "error", err)
		os.Exit(1)
	}

	router := routes.SetupRoutes(appContainer)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	appContainer.ExpiryService.Stop(shutdownCtx)

	if kafkaNav != nil {
		if err := kafkaNav.Close(); err != nil {
			logger.Error("Error closing Kafka writer", "error", err)
		}
	}
	connect.Disconnect()
	if err := connect.MongoDBDisconnect(); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}
	if err := connect.RedisDisconnect(); err != nil {
		logger.Error("Error disconnecting from Redis", "error", err)
	}

	logger.Info("Server exited")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.LogLevel),
		AddSource: cfg.IsDevelopment(),
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		// JSON logging for production
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
