// Package handoff publishes stored booking drafts to the payment service.
package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joshua-takyi/bashbay-calendar/internal/calendar"
	"github.com/segmentio/kafka-go"
)

var ErrNavigatorClosed = errors.New("payment navigator is closed")

// PaymentEvent is the message the payment service consumes. It carries the
// draft key rather than the draft; payment reads the stored draft itself.
type PaymentEvent struct {
	Route       string               `json:"route"`
	DraftKey    string               `json:"draft_key"`
	VenueID     string               `json:"venue_id"`
	UserID      string               `json:"user_id"`
	EventDate   string               `json:"event_date"`
	BookingType calendar.BookingType `json:"booking_type"`
	TotalAmount float64              `json:"total_amount"`
	CreatedAt   time.Time            `json:"created_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNavigator implements calendar.Navigator by publishing a PaymentEvent
// keyed by user id, so one user's handoffs stay ordered.
type KafkaNavigator struct {
	writer messageWriter
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

func NewKafkaNavigator(brokers []string, topic string, logger *slog.Logger) *KafkaNavigator {
	if logger == nil {
		logger = slog.Default()
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			logger.Error("Kafka writer error", "detail", fmt.Sprintf(msg, args...))
		}),
	}
	return newKafkaNavigator(w, logger)
}

func newKafkaNavigator(w messageWriter, logger *slog.Logger) *KafkaNavigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaNavigator{writer: w, logger: logger}
}

func (n *KafkaNavigator) Navigate(ctx context.Context, route string, h *calendar.Handoff) error {
	n.mu.RLock()
	closed := n.closed
	n.mu.RUnlock()
	if closed {
		return ErrNavigatorClosed
	}
	if h == nil || h.Draft == nil {
		return errors.New("handoff has no draft")
	}

	event := PaymentEvent{
		Route:       route,
		DraftKey:    h.Key,
		VenueID:     h.Draft.VenueID,
		UserID:      h.Draft.UserID,
		EventDate:   h.Draft.EventDate,
		BookingType: h.Draft.BookingType,
		TotalAmount: h.Draft.TotalAmount,
		CreatedAt:   h.Draft.CreatedAt,
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode payment event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.UserID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "route", Value: []byte(route)},
		},
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish payment event: %w", err)
	}

	n.logger.Debug("Payment event published", "draft_key", h.Key, "venue_id", event.VenueID)
	return nil
}

func (n *KafkaNavigator) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	n.closed = true
	return n.writer.Close()
}

// LogNavigator is used when no brokers are configured. The client follows
// the route returned in the checkout response.
type LogNavigator struct {
	Logger *slog.Logger
}

func (n LogNavigator) Navigate(_ context.Context, route string, h *calendar.Handoff) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Payment handoff", "route", route, "draft_key", h.Key)
	return nil
}
