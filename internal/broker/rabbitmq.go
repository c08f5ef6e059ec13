package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/josh-kwaku/neobank-ledger/internal/domain"
)

type RabbitMQ struct {
	Connection *amqp.Connection
	Channel    *amqp.Channel
	URL        string
}

func NewRabbitMQ(url string) *RabbitMQ {
	return &RabbitMQ{URL: url}
}

// Connect dials the broker and declares exchange as a durable topic
// exchange.
func (r *RabbitMQ) Connect(exchange string) error {
	conn, err := amqp.Dial(r.URL)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("rabbitmq declare exchange %s: %w", exchange, err)
	}

	r.Connection = conn
	r.Channel = ch
	return nil
}

func (r *RabbitMQ) Close() {
	if r.Channel != nil {
		r.Channel.Close()
	}
	if r.Connection != nil {
		r.Connection.Close()
	}
}

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQPublisher struct {
	channel    amqpChannel
	exchange   string
	routingKey string
}

func NewRabbitMQPublisher(ch amqpChannel, exchange, routingKey string) *RabbitMQPublisher {
	return &RabbitMQPublisher{
		channel:    ch,
		exchange:   exchange,
		routingKey: routingKey,
	}
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, event *domain.TransferCompleted) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("Publish: encode %s: %w", event.CorrelationID, err)
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		p.routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			Body:          body,
			DeliveryMode:  amqp.Persistent,
			MessageId:     uuid.NewString(),
			CorrelationId: event.CorrelationID,
			Type:          domain.EventTransferCompleted,
			Timestamp:     time.Now().UTC(),
			Headers: amqp.Table{
				"event_type": domain.EventTransferCompleted,
				"channel":    string(event.Channel),
			},
		},
	)
	if err != nil {
		return fmt.Errorf("Publish: %s: %w", event.CorrelationID, err)
	}
	return nil
}
