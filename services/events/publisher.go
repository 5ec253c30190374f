package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"hobbyist/models"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventTypeBookingConfirmed is carried in the "event-type" header of every message.
const EventTypeBookingConfirmed = "booking.confirmed"

var ErrPublisherClosed = errors.New("event publisher is closed")

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes booking events to a Kafka topic keyed by booking id, so all
// events of one booking land on the same partition.
type KafkaPublisher struct {
	writer messageWriter
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		BatchTimeout: 50 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			logger.Error(fmt.Sprintf(msg, args...))
		}),
	}
	return &KafkaPublisher{writer: writer, logger: logger}, nil
}

func (p *KafkaPublisher) PublishBookingConfirmed(ctx context.Context, evt models.BookingConfirmedEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	if evt.BookingID == "" {
		return errors.New("booking event without booking id")
	}

	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal booking event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(evt.BookingID),
		Value: value,
		Time:  evt.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(EventTypeBookingConfirmed)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish booking event: %w", err)
	}
	p.logger.Debug("booking event published", zap.String("bookingID", evt.BookingID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}

// LogPublisher only logs events. It stands in for Kafka when no brokers are configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishBookingConfirmed(_ context.Context, evt models.BookingConfirmedEvent) error {
	p.logger.Info("booking confirmed",
		zap.String("bookingID", evt.BookingID),
		zap.String("confirmationCode", evt.ConfirmationCode),
		zap.String("classID", evt.ClassID),
		zap.Float64("totalAmount", evt.TotalAmount),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
