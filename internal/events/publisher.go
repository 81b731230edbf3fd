package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is implemented by the AMQP publisher and by test doubles. Ledgers
// hold a nil-able Publisher and skip emission when none is configured.
type Publisher interface {
	PublishRequestCreated(ctx context.Context, ev RequestCreated) error
	PublishBidAccepted(ctx context.Context, ev BidAccepted) error
}

// AMQP publishes events over a RabbitMQ connection established per publish.
// The connection churn is acceptable at marketplace event rates and keeps the
// publisher stateless across broker restarts.
type AMQP struct {
	url string
}

func NewAMQP(url string) *AMQP {
	return &AMQP{url: url}
}

func (p *AMQP) PublishRequestCreated(ctx context.Context, ev RequestCreated) error {
	return p.publish(ctx, QueueRequestCreated, ev)
}

func (p *AMQP) PublishBidAccepted(ctx context.Context, ev BidAccepted) error {
	return p.publish(ctx, QueueBidAccepted, ev)
}

func (p *AMQP) publish(ctx context.Context, queue string, payload any) error {
	conn, err := amqp.Dial(p.url)
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

	// Idempotent declare; durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
