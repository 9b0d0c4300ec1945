package service

import (
	"context"

	"inventory-service/internal/docstore"
	"inventory-service/internal/models"
	"inventory-service/internal/store"
	"inventory-service/internal/util"

	"go.uber.org/zap"
)

// OrderService handles order business logic
type OrderService struct {
	store          *store.Store
	eventPublisher EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service. eventPublisher may be nil.
func NewOrderService(store *store.Store, eventPublisher EventPublisher) *OrderService {
	return &OrderService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// ProcessOrder stores order under its orderId, overwriting any previous
// order with the same id, and announces it to the stock worker.
func (s *OrderService) ProcessOrder(ctx context.Context, order models.Order) error {
	ctx, span := util.StartSpan(ctx, "OrderService.ProcessOrder")
	defer span.End()

	if !s.store.StoreDocument(ctx, order, models.CollectionOrders, order.OrderID) {
		util.OrdersFailedTotal.WithLabelValues("store_error").Inc()
		return ErrStoreUnavailable
	}

	util.OrdersProcessedTotal.Inc()
	s.logger.Info("Order processed",
		zap.String("order_id", order.OrderID),
		zap.String("item_code", order.ItemCode),
		zap.Int("quantity", order.Quantity))

	if s.eventPublisher == nil {
		return nil
	}

	event := &models.OrderProcessedEvent{
		BaseEvent: newBaseEvent(models.EventTypeOrderProcessed),
		OrderID:   order.OrderID,
		ItemCode:  order.ItemCode,
		Quantity:  order.Quantity,
		Amount:    order.TotalAmount,
	}
	if err := s.eventPublisher.PublishOrderProcessed(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderProcessed event",
			zap.String("order_id", order.OrderID), zap.Error(err))
	}
	return nil
}

// ListOrders returns every stored order
func (s *OrderService) ListOrders(ctx context.Context) ([]docstore.Document, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	docs := s.store.ListAllDocuments(ctx, models.CollectionOrders)
	if docs == nil {
		return nil, ErrStoreUnavailable
	}
	return docs, nil
}
