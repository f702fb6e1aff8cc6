// Package broker moves command and reply messages between clients and the
// list server over a message queue.
package broker

import (
	"context"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"listq/config"
)

// Message is a queued payload. ReplyTo names the queue (or queue URL) a
// response should be published to, if any.
type Message struct {
	Body          []byte
	CorrelationID string
	ReplyTo       string
}

// Delivery is a consumed Message. Ack must be called once the message has
// been handled, otherwise the transport may redeliver it.
type Delivery struct {
	Message
	Ack func() error
}

type Broker interface {
	// Consume streams deliveries from the broker's own queue until ctx is
	// done or the transport fails, then closes the channel.
	Consume(ctx context.Context) (<-chan Delivery, error)
	Publish(ctx context.Context, queue string, msg Message) error
	Close() error
}

// Open connects the transport selected by conf.
func Open(conf *config.Config, logger log15.Logger) (Broker, error) {
	switch conf.Transport {
	case config.TransportAMQP:
		queues := []string{conf.Queue}
		if conf.ReplyQueue != "" {
			queues = append(queues, conf.ReplyQueue)
		}
		b, err := DialAMQP(conf.AmqpUrl, queues...)
		if err != nil {
			return nil, err
		}
		return b, nil
	case config.TransportSQS:
		b, err := NewSQS(conf.SQS, conf.ServerWaitTimeSeconds, logger)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, errors.Errorf("unknown transport %q", conf.Transport)
	}
}
