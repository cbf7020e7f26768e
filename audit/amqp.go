package audit

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPPublisher publishes events to a topic exchange with routing key
// audit.<entityType>.<action>, both lower-cased.
type AMQPPublisher struct {
	mu       sync.Mutex
	ch       Channel
	exchange string
}

func NewAMQPPublisher(ch Channel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, exchange: exchange}
}

type message struct {
	ID         string    `json:"id"`
	ActorID    uuid.UUID `json:"actorId"`
	Action     Action    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   uuid.UUID `json:"entityId"`
	Before     any       `json:"before"`
	After      any       `json:"after"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	UserAgent  string    `json:"userAgent,omitempty"`
	OccurredAt string    `json:"occurredAt"`
}

func RoutingKey(ev Event) string {
	return "audit." + strings.ToLower(ev.EntityType) + "." + strings.ToLower(string(ev.Action))
}

func (p *AMQPPublisher) Record(ctx context.Context, ev Event) error {
	id := uuid.New().String()
	body, err := json.Marshal(message{
		ID:         id,
		ActorID:    ev.ActorID,
		Action:     ev.Action,
		EntityType: ev.EntityType,
		EntityID:   ev.EntityID,
		Before:     ev.Before,
		After:      ev.After,
		IPAddress:  ev.IPAddress,
		UserAgent:  ev.UserAgent,
		OccurredAt: ev.OccurredAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(ctx, p.exchange, RoutingKey(ev), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    id,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	})
}
