package broker

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewMemory("commands", 4)
	deliveries, err := b.Consume(ctx)
	if err != nil {
		t.Fatalf("Consume() err = %v", err)
	}
	if err := b.Publish(ctx, "commands", Message{Body: []byte("hi"), CorrelationID: "1", ReplyTo: "replies"}); err != nil {
		t.Fatalf("Publish() err = %v", err)
	}

	select {
	case d := <-deliveries:
		if string(d.Body) != "hi" || d.CorrelationID != "1" || d.ReplyTo != "replies" {
			t.Errorf("delivery = %+v; want body hi, id 1, reply-to replies", d.Message)
		}
		if err := d.Ack(); err != nil {
			t.Errorf("Ack() err = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("no delivery")
	}

	cancel()
	for range deliveries {
	}
}

func TestMemoryPublishHonoursContext(t *testing.T) {
	b := NewMemory("commands", 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Publish(ctx, "nobody-reads", Message{}); err != context.Canceled {
		t.Errorf("Publish() err = %v; want %v", err, context.Canceled)
	}
}
