package catalog

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"rubkoff/assistant/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// HouseQueue is an in-memory queue of house batches feeding the
// catalog ingestion pipeline.
type HouseQueue struct {
	items    chan []*models.House
	done     chan struct{}
	maxSize  int
	closed   bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func([]*models.House) error
}

// NewHouseQueue creates a queue buffering up to bufferSize batches.
func NewHouseQueue(bufferSize int, logger *logrus.Logger) *HouseQueue {
	if logger == nil {
		logger = logrus.New()
	}
	return &HouseQueue{
		items:   make(chan []*models.House, bufferSize),
		done:    make(chan struct{}),
		maxSize: bufferSize,
		logger:  logger,
	}
}

// Push adds a batch of houses to the queue. The send is non-blocking:
// a full queue returns ErrQueueFull instead of stalling the producer.
func (q *HouseQueue) Push(houses []*models.House) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	select {
	case q.items <- houses:
		q.logger.WithField("batch_size", len(houses)).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler called for each batch.
func (q *HouseQueue) Subscribe(handler func([]*models.House) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins processing items in the queue.
func (q *HouseQueue) Start() {
	go q.process()
}

func (q *HouseQueue) process() {
	for {
		select {
		case <-q.done:
			return
		case batch, ok := <-q.items:
			if !ok {
				return
			}
			q.processBatch(batch)
		}
	}
}

func (q *HouseQueue) processBatch(batch []*models.House) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("Handler failed to process batch")
		}
	}
}

// Close stops the queue and prevents new items from being added.
func (q *HouseQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.done)
	close(q.items)
	return nil
}

// Len returns the current number of batches in the queue.
func (q *HouseQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed.
func (q *HouseQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
