package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"docuchat/internal/index"
	"docuchat/internal/model"
)

// IndexWorker consumes document index jobs from RabbitMQ and runs the
// indexer. Jobs are idempotent, so a redelivered or re-enqueued job for an
// already-indexed document just replaces its chunks.
type IndexWorker struct {
	conn      *amqp.Connection
	indexer   *index.Indexer
	queueName string
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewIndexWorker(conn *amqp.Connection, indexer *index.Indexer, queueName string, logger *zap.Logger) *IndexWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IndexWorker{
		conn:      conn,
		indexer:   indexer,
		queueName: queueName,
		logger:    logger,
	}
}

func (w *IndexWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume index queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.handle(workerCtx, d)
			}
		}
	}()

	return nil
}

func (w *IndexWorker) handle(ctx context.Context, d amqp.Delivery) {
	var job model.IndexJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		w.logger.Error("decode index job failed", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	if err := w.indexer.Index(ctx, job.DocumentID); err != nil {
		// Redeliver once; the indexer already marked the document failed
		// for non-infrastructure errors.
		w.logger.Error("index job failed",
			zap.String("document_id", job.DocumentID),
			zap.Bool("redelivered", d.Redelivered),
			zap.Error(err),
		)
		_ = d.Nack(false, !d.Redelivered)
		return
	}

	_ = d.Ack(false)
}

func (w *IndexWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
