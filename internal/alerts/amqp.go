package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	applog "stockroom/internal/log"
)

const (
	exchangeName = "stockroom.alerts"
	exchangeKind = "topic"

	dialAttempts = 5
	dialBackoff  = 2 * time.Second
)

// Publisher fans alerts out over a RabbitMQ topic exchange. Consumers bind
// queues against stock.low.* to pick the stock codes they care about.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Connect dials the broker and declares the alert exchange. Inside compose
// the broker often comes up after the app, so the dial retries briefly.
func Connect(url string) (*Publisher, error) {
	var conn *amqp.Connection
	var err error
	for i := 0; i < dialAttempts; i++ {
		if conn, err = amqp.Dial(url); err == nil {
			break
		}
		applog.Info(nil, "alerts.dial.retry", map[string]any{"attempt": i + 1, "err": err.Error()})
		time.Sleep(dialBackoff)
	}
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchangeName, // name
		exchangeKind, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchangeName, err)
	}
	return &Publisher{conn: conn, ch: ch}, nil
}

func (p *Publisher) Close() {
	_ = p.ch.Close()
	_ = p.conn.Close()
}

// LowStock publishes the alert as JSON under stock.low.<code>.
func (p *Publisher) LowStock(ctx context.Context, a Alert) error {
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}
	return p.ch.PublishWithContext(ctx,
		exchangeName,      // exchange
		RoutingKey(a.SKU), // routing key
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// RoutingKey maps a stock code onto the stock.low.<sku> topic. Characters
// AMQP words can't carry are folded to dashes.
func RoutingKey(sku string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(sku) {
		switch {
		case 'a' <= r && r <= 'z', '0' <= r && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return "stock.low." + b.String()
}
