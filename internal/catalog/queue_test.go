package catalog

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"rubkoff/assistant/internal/models"
)

func TestNewHouseQueue(t *testing.T) {
	logger := logrus.New()
	q := NewHouseQueue(10, logger)
	assert.NotNil(t, q)
	assert.Equal(t, 10, q.maxSize)
	assert.False(t, q.IsClosed())
}

func TestHouseQueue_Push(t *testing.T) {
	logger := logrus.New()
	q := NewHouseQueue(2, logger)

	// Test successful push
	houses := []*models.House{{URL: "https://rubkoff.ru/houses/test1"}}
	err := q.Push(houses)
	assert.NoError(t, err)
	assert.Equal(t, 1, q.Len())

	// Test queue full
	for i := 0; i < 2; i++ {
		_ = q.Push([]*models.House{{URL: "https://rubkoff.ru/houses/test"}})
	}
	err = q.Push(houses)
	assert.Equal(t, ErrQueueFull, err)

	// Test closed queue
	q.Close()
	err = q.Push(houses)
	assert.Equal(t, ErrQueueClosed, err)
}

func TestHouseQueue_Subscribe(t *testing.T) {
	logger := logrus.New()
	q := NewHouseQueue(10, logger)

	var processed []*models.House
	var mu sync.Mutex

	q.Subscribe(func(houses []*models.House) error {
		mu.Lock()
		processed = append(processed, houses...)
		mu.Unlock()
		return nil
	})

	q.Start()

	batch := []*models.House{
		{URL: "https://rubkoff.ru/houses/test1"},
		{URL: "https://rubkoff.ru/houses/test2"},
	}
	err := q.Push(batch)
	assert.NoError(t, err)

	// Wait for processing
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	assert.Len(t, processed, 2)
	assert.Equal(t, "https://rubkoff.ru/houses/test1", processed[0].URL)
	mu.Unlock()
}

func TestHouseQueue_Close(t *testing.T) {
	logger := logrus.New()
	q := NewHouseQueue(10, logger)

	assert.NoError(t, q.Close())
	assert.True(t, q.IsClosed())

	// Closing twice is a no-op.
	assert.NoError(t, q.Close())
}
