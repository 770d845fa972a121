// Package events publishes domain events (lockouts, employee and payroll
// changes) to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Exchange is the topic exchange all payroll events are published to.
const Exchange = "payroll.events"

// Routing keys.
const (
	AccountLocked   = "account.locked"
	EmployeeCreated = "employee.created"
	EmployeeDeleted = "employee.deleted"
	PayrollSaved    = "payroll.saved"
)

// Publisher sends an event body under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body any) error
	Close()
}

// Event is the envelope every message is wrapped in.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// RabbitPublisher publishes JSON events to a durable topic exchange.
type RabbitPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewRabbitPublisher dials url and declares the events exchange.
func NewRabbitPublisher(url string) (*RabbitPublisher, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &RabbitPublisher{conn: conn, channel: ch}, nil
}

// Publish sends body wrapped in an Event.
func (p *RabbitPublisher) Publish(ctx context.Context, routingKey string, body any) error {
	if p.channel == nil {
		return errors.New("rabbitmq channel not initialized")
	}

	payload, err := Encode(routingKey, body, time.Now().UTC())
	if err != nil {
		return err
	}

	return p.channel.PublishWithContext(ctx, Exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         payload,
	})
}

// Close closes the channel and the connection.
func (p *RabbitPublisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// Encode builds the JSON message for an event.
func Encode(routingKey string, body any, at time.Time) ([]byte, error) {
	payload, err := json.Marshal(Event{Type: routingKey, OccurredAt: at, Data: body})
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return payload, nil
}

// LogPublisher is used when no broker is configured; it only logs events.
type LogPublisher struct {
	Log *zap.Logger
}

// Publish logs the event at debug level.
func (p *LogPublisher) Publish(_ context.Context, routingKey string, body any) error {
	p.Log.Debug("event not published, broker disabled",
		zap.String("routing_key", routingKey),
		zap.Any("body", body),
	)
	return nil
}

// Close is a no-op.
func (p *LogPublisher) Close() {}
