package broker

import (
	"context"
	"sync"
)

// Memory is an in-process Broker backed by buffered channels, one per queue.
type Memory struct {
	mux    sync.Mutex
	queues map[string]chan Message
	queue  string
	size   int
}

// NewMemory returns a Memory broker consuming from queue. Each queue
// buffers up to size messages before Publish blocks.
func NewMemory(queue string, size int) *Memory {
	return &Memory{
		queues: make(map[string]chan Message),
		queue:  queue,
		size:   size,
	}
}

// Queue returns the channel behind name, creating it if needed.
func (m *Memory) Queue(name string) chan Message {
	m.mux.Lock()
	defer m.mux.Unlock()
	q, ok := m.queues[name]
	if !ok {
		q = make(chan Message, m.size)
		m.queues[name] = q
	}
	return q
}

func (m *Memory) Consume(ctx context.Context) (<-chan Delivery, error) {
	in := m.Queue(m.queue)
	out := make(chan Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-in:
				d := Delivery{Message: msg, Ack: func() error { return nil }}
				select {
				case out <- d:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (m *Memory) Publish(ctx context.Context, queue string, msg Message) error {
	select {
	case m.Queue(queue) <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Memory) Close() error {
	return nil
}
