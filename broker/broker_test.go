package broker

import (
	"testing"

	"listq/config"
)

func TestOpen(t *testing.T) {
	conf := config.Default()
	conf.Transport = config.TransportSQS
	conf.SQS = config.SQSConfig{
		Region:   "us-east-1",
		Endpoint: "http://localhost:4566",
		QueueUrl: "http://localhost:4566/000000000000/listq-commands",
	}
	b, err := Open(conf, discardLogger())
	if err != nil {
		t.Fatalf("Open(sqs) err = %v", err)
	}
	if _, ok := b.(*SQS); !ok {
		t.Errorf("Open(sqs) = %T; want *SQS", b)
	}

	conf.Transport = "carrier-pigeon"
	if b, err := Open(conf, discardLogger()); err == nil || b != nil {
		t.Errorf("Open(carrier-pigeon) = (%v, %v); want (nil, error)", b, err)
	}
}
