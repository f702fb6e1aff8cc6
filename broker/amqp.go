package broker

import (
	"context"

	"github.com/pkg/errors"
	"github.com/streadway/amqp"
)

type AMQP struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// DialAMQP connects to url and declares every queue in queues as durable.
// The first queue is the one Consume reads from.
func DialAMQP(url string, queues ...string) (*AMQP, error) {
	if len(queues) == 0 {
		return nil, errors.New("no queue to consume from")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "dial amqp")
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "open amqp channel")
	}
	for _, q := range queues {
		_, err = ch.QueueDeclare(
			q,     // queue name
			true,  // durable
			false, // auto delete
			false, // exclusive
			false, // no wait
			nil,   // arguments
		)
		if err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "declare queue %s", q)
		}
	}

	return &AMQP{
		conn:    conn,
		channel: ch,
		queue:   queues[0],
	}, nil
}

func (b *AMQP) Consume(ctx context.Context) (<-chan Delivery, error) {
	msgs, err := b.channel.Consume(
		b.queue,
		"",    // consumer
		false, // auto ack
		false, // exclusive
		false, // no local
		false, // no wait
		nil)
	if err != nil {
		return nil, errors.Wrapf(err, "consume %s", b.queue)
	}

	out := make(chan Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					return
				}
				delivery := Delivery{
					Message: Message{
						Body:          d.Body,
						CorrelationID: d.CorrelationId,
						ReplyTo:       d.ReplyTo,
					},
					Ack: func() error {
						return d.Ack(false)
					},
				}
				select {
				case out <- delivery:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (b *AMQP) Publish(ctx context.Context, queue string, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.channel.Publish(
		"",
		queue,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: msg.CorrelationID,
			ReplyTo:       msg.ReplyTo,
			Body:          msg.Body,
		},
	)
	return errors.Wrapf(err, "publish to %s", queue)
}

func (b *AMQP) Close() error {
	b.channel.Close()
	return b.conn.Close()
}
