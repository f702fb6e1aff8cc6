package broker

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"listq/config"
)

const (
	attrCorrelationID = "CorrelationId"
	attrReplyTo       = "ReplyTo"
)

// SQS is a Broker on top of Amazon SQS. Queues are addressed by URL.
type SQS struct {
	client      sqsiface.SQSAPI
	queueUrl    string
	waitSeconds int64
	retryDelay  time.Duration
	logger      log15.Logger
}

func NewSQS(conf config.SQSConfig, waitSeconds int64, logger log15.Logger) (*SQS, error) {
	awsConf := aws.NewConfig()
	if conf.Region != "" {
		awsConf = awsConf.WithRegion(conf.Region)
	}
	if conf.Endpoint != "" {
		awsConf = awsConf.WithEndpoint(conf.Endpoint)
	}
	sess, err := session.NewSession(awsConf)
	if err != nil {
		return nil, errors.Wrap(err, "create aws session")
	}
	return newSQS(sqs.New(sess), conf.QueueUrl, waitSeconds, logger), nil
}

func newSQS(client sqsiface.SQSAPI, queueUrl string, waitSeconds int64, logger log15.Logger) *SQS {
	return &SQS{
		client:      client,
		queueUrl:    queueUrl,
		waitSeconds: waitSeconds,
		retryDelay:  time.Second,
		logger:      logger.New("queue", queueUrl),
	}
}

func (b *SQS) Consume(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)
	go func() {
		defer close(out)
		for ctx.Err() == nil {
			resp, err := b.client.ReceiveMessageWithContext(ctx, &sqs.ReceiveMessageInput{
				QueueUrl:              aws.String(b.queueUrl),
				MaxNumberOfMessages:   aws.Int64(10),
				WaitTimeSeconds:       aws.Int64(b.waitSeconds),
				MessageAttributeNames: aws.StringSlice([]string{"All"}),
			})
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				b.logger.Error("Error while receiving messages", "error", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(b.retryDelay):
				}
				continue
			}

			for _, m := range resp.Messages {
				select {
				case out <- b.delivery(ctx, m):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (b *SQS) delivery(ctx context.Context, m *sqs.Message) Delivery {
	receipt := m.ReceiptHandle
	return Delivery{
		Message: Message{
			Body:          []byte(aws.StringValue(m.Body)),
			CorrelationID: attribute(m, attrCorrelationID),
			ReplyTo:       attribute(m, attrReplyTo),
		},
		Ack: func() error {
			_, err := b.client.DeleteMessageWithContext(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(b.queueUrl),
				ReceiptHandle: receipt,
			})
			return errors.Wrap(err, "delete message")
		},
	}
}

func attribute(m *sqs.Message, name string) string {
	if v, ok := m.MessageAttributes[name]; ok && v != nil {
		return aws.StringValue(v.StringValue)
	}
	return ""
}

func (b *SQS) Publish(ctx context.Context, queueUrl string, msg Message) error {
	// SQS rejects empty attribute values.
	attrs := map[string]*sqs.MessageAttributeValue{}
	if msg.CorrelationID != "" {
		attrs[attrCorrelationID] = &sqs.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(msg.CorrelationID),
		}
	}
	if msg.ReplyTo != "" {
		attrs[attrReplyTo] = &sqs.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(msg.ReplyTo),
		}
	}
	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueUrl),
		MessageBody: aws.String(string(msg.Body)),
	}
	if len(attrs) > 0 {
		input.MessageAttributes = attrs
	}
	_, err := b.client.SendMessageWithContext(ctx, input)
	return errors.Wrapf(err, "send message to %s", queueUrl)
}

func (b *SQS) Close() error {
	return nil
}
