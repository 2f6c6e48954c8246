// Package queue buffers prediction records between the request path and the
// history writers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/bankpredict/internal/domain/model"
	"github.com/okian/bankpredict/pkg/metrics"
)

// Default queue configuration constants.
const defaultQueueCapacity = 10000

// Record is the payload type flowing through the queue.
type Record = model.PredictionRecord

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a record to the queue.
	// Returns false if the queue is full or closed and the record was dropped.
	Enqueue(ctx context.Context, r Record) bool

	// Dequeue returns a channel that receives records as they become available.
	// The channel is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Record

	// Len returns the current number of queued records.
	Len(ctx context.Context) int

	// Cap returns the maximum number of queued records.
	Cap() int

	// Close stops accepting records. Queued records can still be dequeued.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	records  chan Record
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.records = make(chan Record, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a record without blocking. A dropped record is counted.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r Record) bool { //nolint:gocritic // hugeParam: Record is passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed || ctx.Err() != nil {
		metrics.RecordHistoryDropped()
		return false
	}

	select {
	case q.records <- r:
		metrics.UpdateQueueSize(len(q.records))
		return true
	default:
		metrics.RecordHistoryDropped()
		return false
	}
}

// Dequeue returns the receive side of the buffer. Every caller shares it, so
// each record is delivered to exactly one consumer.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Record {
	return q.records
}

// Len returns the current number of queued records.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.records)
	metrics.UpdateQueueSize(size)
	return size
}

// Cap returns the configured capacity.
func (q *InMemoryQueue) Cap() int { return q.capacity }

// Close stops accepting records. Safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.records)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
