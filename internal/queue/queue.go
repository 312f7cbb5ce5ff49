package queue

import (
	"errors"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"homeval/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// Handler processes one batch of jobs
type Handler func([]*models.EvaluationJob) error

// JobQueue is an in-memory queue of evaluation job batches
type JobQueue struct {
	items    chan []*models.EvaluationJob
	maxSize  int
	closed   bool
	mu       sync.RWMutex
	workers  sync.WaitGroup
	logger   *logrus.Logger
	handlers []Handler
}

// NewJobQueue creates a queue holding at most bufferSize batches
func NewJobQueue(bufferSize int, logger *logrus.Logger) *JobQueue {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &JobQueue{
		items:    make(chan []*models.EvaluationJob, bufferSize),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]Handler, 0),
	}
}

// Push adds a batch of jobs to the queue without blocking
func (q *JobQueue) Push(jobs []*models.EvaluationJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- jobs:
		q.logger.WithField("batch_size", len(jobs)).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler that is called for each batch
func (q *JobQueue) Subscribe(handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start launches workers that consume batches concurrently. Each batch is
// taken by exactly one worker.
func (q *JobQueue) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		q.workers.Add(1)
		go q.process()
	}
}

func (q *JobQueue) process() {
	defer q.workers.Done()
	for batch := range q.items {
		q.processBatch(batch)
	}
}

// processBatch sends the batch to all subscribed handlers
func (q *JobQueue) processBatch(batch []*models.EvaluationJob) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("Handler failed to process batch")
		}
	}
}

// Close stops accepting batches and waits until the workers have drained
// the ones already queued
func (q *JobQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.items)
	q.mu.Unlock()

	q.workers.Wait()
	return nil
}

// Len returns the current number of batches in the queue
func (q *JobQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *JobQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
