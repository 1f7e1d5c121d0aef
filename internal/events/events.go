// Package events publishes domain events to RabbitMQ. Publishing is best
// effort: failures are logged and returned, and callers ignore them so the
// request that produced the event is never rolled back.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

// Queue names.
const (
	QueuePaymentRecorded   = "payment.recorded"
	QueuePaymentsGenerated = "payments.generated"
	QueueOccupancyChanged  = "room.occupancy_changed"
)

// PaymentRecorded is emitted when a student settles a monthly payment.
type PaymentRecorded struct {
	PaymentID  string          `json:"payment_id"`
	StudentID  string          `json:"student_id"`
	RoomNumber string          `json:"room_number"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Month      int             `json:"month"`
	Year       int             `json:"year"`
	PaidAt     time.Time       `json:"paid_at"`
}

// PaymentsGenerated is emitted after pending records were created for a period.
type PaymentsGenerated struct {
	Month   int `json:"month"`
	Year    int `json:"year"`
	Created int `json:"created"`
}

// OccupancyChanged is emitted when a user joins or leaves a room.
type OccupancyChanged struct {
	RoomID    string `json:"room_id"`
	UserID    string `json:"user_id"`
	Joined    bool   `json:"joined"`
	Occupants int    `json:"occupants"`
	IsFull    bool   `json:"is_full"`
}

// Publisher sends an event body to a named queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, event interface{}) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// AMQPPublisher dials the broker for every message. Event volume is low
// (one message per payment or admin action) so no connection is held open.
type AMQPPublisher struct {
	url         string
	dialTimeout time.Duration
}

// DefaultDialTimeout bounds how long a publish waits for the broker.
const DefaultDialTimeout = 2 * time.Second

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{url: url, dialTimeout: DefaultDialTimeout}
}

// dial connects within the dial timeout or the context deadline, whichever
// comes first.
func (p *AMQPPublisher) dial(ctx context.Context) (*amqp.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := p.dialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	return amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// Publish declares the durable queue and publishes event as persistent JSON.
func (p *AMQPPublisher) Publish(ctx context.Context, queue string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	conn, err := p.dial(ctx)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	if err := ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}); err != nil {
		log.Printf("rabbitmq: publish to %s failed: %v", queue, err)
		return err
	}
	return nil
}

// New returns an AMQP publisher for url, or a NopPublisher when url is empty.
func New(url string) Publisher {
	if url == "" {
		return NopPublisher{}
	}
	return NewAMQPPublisher(url)
}
