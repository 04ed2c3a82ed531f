package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rubkoff/assistant/config"
	"rubkoff/assistant/internal/models"
)

// TxRunner is the slice of *gorm.DB the processor needs; it keeps the
// processor testable without a real database.
type TxRunner interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// BatchProcessor drains the house queue into the database, upserting
// each batch in a transaction with bounded retries.
type BatchProcessor struct {
	db        TxRunner
	logger    *logrus.Logger
	config    *config.Config
	queue     *HouseQueue
	waitGroup sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewBatchProcessor(db TxRunner, queue *HouseQueue, cfg *config.Config, logger *logrus.Logger) *BatchProcessor {
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		db:     db,
		queue:  queue,
		config: cfg,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start subscribes the processor to the queue.
func (p *BatchProcessor) Start() {
	p.queue.Subscribe(func(batch []*models.House) error {
		p.waitGroup.Add(1)
		defer p.waitGroup.Done()
		return p.processBatch(batch)
	})
}

// Stop gracefully shuts down the processor.
func (p *BatchProcessor) Stop() {
	p.cancel()
	p.waitGroup.Wait()
}

// processBatch handles a single batch of houses with transaction and retry logic.
func (p *BatchProcessor) processBatch(batch []*models.House) error {
	var err error
	for attempt := 0; attempt <= p.config.Catalog.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying batch processing, attempt %d of %d", attempt, p.config.Catalog.MaxRetries)
			select {
			case <-p.ctx.Done():
				return p.ctx.Err()
			case <-time.After(time.Duration(p.config.Catalog.RetryDelay) * time.Second):
			}
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			if err := UpsertHouses(tx, batch); err != nil {
				return fmt.Errorf("failed to upsert house batch: %w", err)
			}
			return nil
		})

		if err == nil {
			p.logger.Infof("Successfully processed batch of %d houses", len(batch))
			return nil
		}

		p.logger.Errorf("Batch processing failed: %v", err)
	}

	return fmt.Errorf("failed to process batch after %d attempts: %w", p.config.Catalog.MaxRetries, err)
}

// UpsertHouses inserts the batch, updating existing rows keyed on the
// canonical listing URL.
func UpsertHouses(tx *gorm.DB, houses []*models.House) error {
	if len(houses) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, h := range houses {
		h.UpdatedAt = now
		if h.CreatedAt.IsZero() {
			h.CreatedAt = now
		}
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "url"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "price", "area", "bedrooms", "bathrooms", "floors",
			"description", "image_url", "material", "style", "garage",
			"house_size", "badges", "updated_at",
		}),
	}).Create(houses).Error
}
