package queue

import (
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"homeval/server/internal/models"
)

func job(id string) *models.EvaluationJob {
	return &models.EvaluationJob{ID: id, Request: models.EvaluationRequest{SessionID: "s", Intent: models.IntentRent}}
}

func TestNewJobQueue(t *testing.T) {
	q := NewJobQueue(10, logrus.New())
	assert.NotNil(t, q)
	assert.Equal(t, 10, q.maxSize)
	assert.False(t, q.IsClosed())
}

func TestJobQueue_Push(t *testing.T) {
	q := NewJobQueue(2, nil)

	// Successful push
	jobs := []*models.EvaluationJob{job("a")}
	assert.NoError(t, q.Push(jobs))
	assert.Equal(t, 1, q.Len())

	// Queue full
	assert.NoError(t, q.Push([]*models.EvaluationJob{job("b")}))
	assert.ErrorIs(t, q.Push(jobs), ErrQueueFull)

	// Closed queue
	assert.NoError(t, q.Close())
	assert.ErrorIs(t, q.Push(jobs), ErrQueueClosed)
}

func TestJobQueue_Subscribe(t *testing.T) {
	q := NewJobQueue(10, nil)

	var processed []*models.EvaluationJob
	var mu sync.Mutex
	q.Subscribe(func(jobs []*models.EvaluationJob) error {
		mu.Lock()
		processed = append(processed, jobs...)
		mu.Unlock()
		return nil
	})
	q.Start(1)

	assert.NoError(t, q.Push([]*models.EvaluationJob{job("a"), job("b")}))

	// Close drains queued batches before returning
	assert.NoError(t, q.Close())

	mu.Lock()
	defer mu.Unlock()
	if assert.Len(t, processed, 2) {
		assert.Equal(t, "a", processed[0].ID)
		assert.Equal(t, "b", processed[1].ID)
	}
}

func TestJobQueue_EachBatchHandledOnce(t *testing.T) {
	q := NewJobQueue(50, nil)

	seen := map[string]int{}
	var mu sync.Mutex
	q.Subscribe(func(jobs []*models.EvaluationJob) error {
		mu.Lock()
		defer mu.Unlock()
		for _, j := range jobs {
			seen[j.ID]++
		}
		return nil
	})
	q.Start(4)

	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		assert.NoError(t, q.Push([]*models.EvaluationJob{job(id)}))
	}
	assert.NoError(t, q.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, 8)
	for id, n := range seen {
		assert.Equal(t, 1, n, "job %s handled more than once", id)
	}
}

func TestJobQueue_Close(t *testing.T) {
	q := NewJobQueue(10, nil)

	assert.NoError(t, q.Close())
	assert.True(t, q.IsClosed())

	// Second close is a no-op
	assert.NoError(t, q.Close())
}

func TestJobQueue_HandlerErrorsDoNotStopProcessing(t *testing.T) {
	q := NewJobQueue(10, nil)

	var calls int
	var mu sync.Mutex
	for i := 0; i < 3; i++ {
		q.Subscribe(func(jobs []*models.EvaluationJob) error {
			mu.Lock()
			calls++
			mu.Unlock()
			return assert.AnError
		})
	}
	q.Start(2)

	assert.NoError(t, q.Push([]*models.EvaluationJob{job("a")}))
	assert.NoError(t, q.Push([]*models.EvaluationJob{job("b")}))
	assert.NoError(t, q.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 6, calls)
}
