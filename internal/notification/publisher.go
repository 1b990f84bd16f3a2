package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/yohan-cs/yohan-event-planner-sub011/internal/logger"
)

// Domain event types carried in Message.Type.
const (
	EventCreated   = "event.created"
	EventUpdated   = "event.updated"
	EventDeleted   = "event.deleted"
	EventConfirmed = "event.confirmed"

	RecurringEventCreated     = "recurring_event.created"
	RecurringEventUpdated     = "recurring_event.updated"
	RecurringEventDeleted     = "recurring_event.deleted"
	RecurringEventConfirmed   = "recurring_event.confirmed"
	RecurringEventSkipChanged = "recurring_event.skip_days_changed"

	ConflictRejected = "conflict.rejected"
)

// Message is the envelope written to the topic.
type Message struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	AggregateID string          `json:"aggregate_id"`
	UserID      string          `json:"user_id"`
	Timestamp   time.Time       `json:"timestamp"`
	Payload     json.RawMessage `json:"payload"`
}

// NewMessage wraps payload for the aggregate owned by userID.
func NewMessage(eventType string, aggregateID, userID uuid.UUID, payload interface{}) (*Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	agg := ""
	if aggregateID != uuid.Nil {
		agg = aggregateID.String()
	}
	return &Message{
		ID:          uuid.New().String(),
		Type:        eventType,
		AggregateID: agg,
		UserID:      userID.String(),
		Timestamp:   time.Now().UTC(),
		Payload:     raw,
	}, nil
}

// Publisher emits domain events after a write commits.
type Publisher interface {
	Publish(ctx context.Context, msg *Message) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes messages keyed by user so one user's events stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, msg *Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", msg.Type, err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.UserID),
		Value: value,
		Time:  msg.Timestamp,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(msg.Type)},
			{Key: "aggregateId", Value: []byte(msg.AggregateID)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", msg.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops everything. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *Message) error { return nil }
func (NoopPublisher) Close() error                            { return nil }

// Notifier builds and publishes messages on behalf of services. Publish failures
// never fail the request that triggered them; they are logged.
type Notifier struct {
	pub Publisher
	log logger.Logger
}

func NewNotifier(pub Publisher, log logger.Logger) *Notifier {
	if pub == nil {
		pub = NoopPublisher{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Notifier{pub: pub, log: log}
}

func (n *Notifier) Notify(ctx context.Context, eventType string, aggregateID, userID uuid.UUID, payload interface{}) {
	msg, err := NewMessage(eventType, aggregateID, userID, payload)
	if err == nil {
		err = n.pub.Publish(ctx, msg)
	}
	if err != nil {
		n.log.WithContext(ctx).Warn("domain event not published", "type", eventType, "aggregate_id", aggregateID, "error", err)
	}
}
