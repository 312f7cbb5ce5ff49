package processor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"homeval/server/config"
	"homeval/server/internal/database"
	"homeval/server/internal/models"
	"homeval/server/internal/queue"
)

// Transactor runs fc inside a database transaction. *gorm.DB satisfies it.
type Transactor interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// Runner evaluates a single request into a record ready to persist
type Runner interface {
	Run(ctx context.Context, id string, req models.EvaluationRequest) (*models.EvaluationRecord, error)
}

// BatchProcessor evaluates queued jobs and stores the results
type BatchProcessor struct {
	db     Transactor
	runner Runner
	logger *logrus.Logger
	config *config.Config
	queue  *queue.JobQueue
	ctx    context.Context
	cancel context.CancelFunc
	sleep  func(ctx context.Context, d time.Duration)
}

// NewBatchProcessor creates a new batch processor instance
func NewBatchProcessor(db Transactor, runner Runner, queue *queue.JobQueue, config *config.Config, logger *logrus.Logger) *BatchProcessor {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		db:     db,
		runner: runner,
		queue:  queue,
		config: config,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		sleep:  sleepContext,
	}
}

// Start subscribes to the queue and launches the configured number of workers
func (p *BatchProcessor) Start() {
	p.queue.Subscribe(p.processBatch)
	p.queue.Start(p.config.BatchProcessing.ProcessorCount)
}

// Stop closes the queue, waits for queued batches to finish and releases
// the processor context
func (p *BatchProcessor) Stop() {
	if err := p.queue.Close(); err != nil {
		p.logger.WithError(err).Error("Failed to close job queue")
	}
	p.cancel()
}

// processBatch evaluates every job in the batch and stores the successful
// ones in a single transaction, retrying the write on failure
func (p *BatchProcessor) processBatch(batch []*models.EvaluationJob) error {
	records := make([]*models.EvaluationRecord, 0, len(batch))
	for _, job := range batch {
		rec, err := p.runner.Run(p.ctx, job.ID, job.Request)
		if err != nil {
			p.logger.WithError(err).WithField("job_id", job.ID).Error("Evaluation job failed")
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil
	}

	attempts := p.config.BatchProcessing.MaxRetries + 1
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying batch write, attempt %d of %d", attempt+1, attempts)
			p.sleep(p.ctx, p.config.RetryDelay())
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			if err := database.InsertEvaluations(tx, records); err != nil {
				return fmt.Errorf("failed to insert evaluation batch: %w", err)
			}
			return nil
		})
		if err == nil {
			p.logger.Infof("Successfully stored batch of %d evaluations", len(records))
			return nil
		}

		p.logger.Errorf("Batch write failed: %v", err)
		if errors.Is(err, database.ErrDuplicate) {
			return err
		}
	}

	return fmt.Errorf("failed to store batch after %d attempts: %w", attempts, err)
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
