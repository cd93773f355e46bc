// Package queue provides the in-process continuation queue that carries the
// batch workflow forward between chunk invocations.
package queue

import (
	"context"

	"github.com/shelfcheck/item-audit/internal/domain"
)

// Queue is a bounded FIFO of raw continuation payloads. Messages are opaque
// JSON at this layer; parsing (and the malformed-drop decision) belongs to
// the consumer, mirroring a platform queue trigger handing over raw bytes.
type Queue struct {
	ch chan []byte
}

func New(capacity int) *Queue {
	return &Queue{ch: make(chan []byte, capacity)}
}

// Enqueue places a message on the queue without blocking.
// Returns ErrQueueFull immediately if the queue is at capacity.
func (q *Queue) Enqueue(msg []byte) error {
	select {
	case q.ch <- msg:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Dequeue blocks until a message is available or ctx is cancelled.
// Returns (nil, false) when ctx is cancelled (graceful shutdown signal).
func (q *Queue) Dequeue(ctx context.Context) ([]byte, bool) {
	select {
	case msg := <-q.ch:
		return msg, true
	case <-ctx.Done():
		return nil, false
	}
}

// Depth returns the number of messages currently waiting.
// Used by the operational metrics snapshot.
func (q *Queue) Depth() int {
	return len(q.ch)
}
