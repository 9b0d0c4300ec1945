package worker

import (
	"context"

	"inventory-service/internal/broker"
	"inventory-service/internal/models"
	"inventory-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// StockHandler applies the stock movement of a processed order
type StockHandler interface {
	HandleOrderProcessed(ctx context.Context, event *models.OrderProcessedEvent) error
}

// ItemEventObserver is notified of item lifecycle events
type ItemEventObserver func(ctx context.Context, event *models.ItemEvent) error

// StockWorker consumes inventory events and keeps stock levels in step with
// processed orders
type StockWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewStockWorker creates a new stock worker
func NewStockWorker(consumer *broker.Consumer, stock StockHandler) *StockWorker {
	logger := util.GetLogger()

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderProcessed(stock.HandleOrderProcessed)
	eventHandler.OnItemEvent(logItemEvent(logger))

	return &StockWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		logger:       logger,
	}
}

// HandleMessage processes a single Kafka message
func (w *StockWorker) HandleMessage(ctx context.Context, msg kafka.Message) error {
	return w.eventHandler.HandleMessage(ctx, msg)
}

// Start starts the worker
func (w *StockWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting stock worker")
	return w.consumer.StartConsuming(ctx, w.HandleMessage)
}

// Stop stops the worker
func (w *StockWorker) Stop() error {
	w.logger.Info("Stopping stock worker")
	return w.consumer.Close()
}

func logItemEvent(logger *zap.Logger) ItemEventObserver {
	return func(ctx context.Context, event *models.ItemEvent) error {
		logger.Debug("Item event observed",
			zap.String("type", event.EventType),
			zap.String("item_code", event.ItemCode))
		return nil
	}
}
