package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

type ConsumerConfig struct {
	URL      string
	Exchange string
	Queue    string
	Keys     []string
	Prefetch int
}

type Consumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	fail := func(step string, err error) (*Consumer, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", step, err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fail("declare exchange", err)
	}
	q, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil)
	if err != nil {
		return fail("declare queue", err)
	}
	for _, rk := range cfg.Keys {
		if err := ch.QueueBind(q.Name, rk, cfg.Exchange, false, nil); err != nil {
			return fail("bind "+rk, err)
		}
	}
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 8
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fail("set qos", err)
	}
	return &Consumer{conn: conn, ch: ch, queue: q.Name}, nil
}

func (c *Consumer) Deliveries(ctx context.Context) (<-chan amqp.Delivery, error) {
	return c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
}

func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
