package service

import (
	"context"
	"fmt"
	"time"

	"inventory-service/internal/docstore"
	"inventory-service/internal/models"
	"inventory-service/internal/store"
	"inventory-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher publishes domain events. A nil EventPublisher disables
// publication.
type EventPublisher interface {
	PublishItemEvent(ctx context.Context, event *models.ItemEvent) error
	PublishOrderProcessed(ctx context.Context, event *models.OrderProcessedEvent) error
}

// InventoryCache caches the full inventory list per generation. A list is
// only stored for the generation observed before it was loaded, and every
// write moves to a new generation.
type InventoryCache interface {
	GetInventory(ctx context.Context) (docs []docstore.Document, generation int64, ok bool, err error)
	SetInventory(ctx context.Context, generation int64, docs []docstore.Document) error
	InvalidateInventory(ctx context.Context) error
}

const maxStockAttempts = 5

// InventoryService handles inventory business logic
type InventoryService struct {
	store          *store.Store
	cache          InventoryCache
	eventPublisher EventPublisher
	logger         *zap.Logger
}

// NewInventoryService creates a new inventory service. cache and
// eventPublisher may be nil.
func NewInventoryService(store *store.Store, cache InventoryCache, eventPublisher EventPublisher) *InventoryService {
	return &InventoryService{
		store:          store,
		cache:          cache,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// ListInventory returns every stocked item, from the cache when possible
func (s *InventoryService) ListInventory(ctx context.Context) ([]docstore.Document, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.ListInventory")
	defer span.End()

	var (
		generation int64
		cacheable  bool
	)
	if s.cache != nil {
		docs, gen, ok, err := s.cache.GetInventory(ctx)
		if err != nil {
			s.logger.Warn("Inventory cache read failed", zap.Error(err))
		}
		if ok {
			util.InventoryCacheHitsTotal.Inc()
			return docs, nil
		}
		util.InventoryCacheMissesTotal.Inc()
		generation, cacheable = gen, err == nil
	}

	docs := s.store.ListAllDocuments(ctx, models.CollectionInventory)
	if docs == nil {
		return nil, ErrStoreUnavailable
	}

	if cacheable {
		if err := s.cache.SetInventory(ctx, generation, docs); err != nil {
			s.logger.Warn("Inventory cache write failed", zap.Error(err))
		}
	}
	return docs, nil
}

// AddItem creates item, or overwrites it when update is set. Creation fails
// with ErrItemExists when the itemCode is taken.
func (s *InventoryService) AddItem(ctx context.Context, item models.InventoryItem, update bool) error {
	ctx, span := util.StartSpan(ctx, "InventoryService.AddItem")
	defer span.End()

	eventType := models.EventTypeItemUpdated
	if update {
		if !s.store.StoreDocument(ctx, item, models.CollectionInventory, item.ItemCode) {
			return ErrStoreUnavailable
		}
		util.ItemsUpdatedTotal.Inc()
	} else {
		created, err := s.store.CreateDocument(ctx, item, models.CollectionInventory, item.ItemCode)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if !created {
			util.ItemConflictsTotal.Inc()
			return ErrItemExists
		}
		util.ItemsAddedTotal.Inc()
		eventType = models.EventTypeItemAdded
	}

	s.logger.Info("Inventory item stored",
		zap.String("item_code", item.ItemCode),
		zap.Bool("update", update))

	s.publish(ctx, &models.ItemEvent{
		BaseEvent: newBaseEvent(eventType),
		ItemCode:  item.ItemCode,
		Item:      &item,
	})
	return s.invalidateCache(ctx)
}

// DeleteItem removes the item stored under itemCode. It reports false when
// nothing was deleted or the cached list could not be retired.
func (s *InventoryService) DeleteItem(ctx context.Context, itemCode string) bool {
	ctx, span := util.StartSpan(ctx, "InventoryService.DeleteItem")
	defer span.End()

	if !s.store.DeleteDocument(ctx, models.CollectionInventory, itemCode) {
		return false
	}

	util.ItemsDeletedTotal.Inc()
	s.publish(ctx, &models.ItemEvent{
		BaseEvent: newBaseEvent(models.EventTypeItemDeleted),
		ItemCode:  itemCode,
	})
	return s.invalidateCache(ctx) == nil
}

// HandleOrderProcessed applies the stock movement of an order at most once
// per event id: availableStock drops and totalSold grows by the quantity.
func (s *InventoryService) HandleOrderProcessed(ctx context.Context, event *models.OrderProcessedEvent) error {
	ctx, span := util.StartSpan(ctx, "InventoryService.HandleOrderProcessed")
	defer span.End()

	marker := models.ProcessedEvent{
		EventID:     event.EventID,
		EventType:   event.EventType,
		ProcessedAt: time.Now().UTC().Format(time.RFC3339),
	}
	first, err := s.store.CreateDocument(ctx, marker, models.CollectionProcessedEvents, event.EventID)
	if err != nil {
		util.StockMovementsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to record event %s: %w", event.EventID, err)
	}
	if !first {
		util.StockMovementsTotal.WithLabelValues("duplicate").Inc()
		s.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		// A redelivery after a failed invalidation retires the list here.
		return s.invalidateCache(ctx)
	}

	if err := s.applyStockMovement(ctx, event.ItemCode, event.Quantity); err != nil {
		// Drop the marker so a redelivery can retry.
		s.store.DeleteDocument(ctx, models.CollectionProcessedEvents, event.EventID)
		util.StockMovementsTotal.WithLabelValues("error").Inc()
		return err
	}
	return s.invalidateCache(ctx)
}

// applyStockMovement swaps in the moved item only while the stored item is
// unchanged, so a concurrent update is reread instead of overwritten.
func (s *InventoryService) applyStockMovement(ctx context.Context, itemCode string, quantity int) error {
	for attempt := 1; attempt <= maxStockAttempts; attempt++ {
		doc := s.store.GetDocument(ctx, models.CollectionInventory, itemCode)
		if doc == nil {
			util.StockMovementsTotal.WithLabelValues("unknown_item").Inc()
			s.logger.Warn("Order references unknown item", zap.String("item_code", itemCode))
			return nil
		}

		var item models.InventoryItem
		if err := doc.Decode(&item); err != nil {
			return fmt.Errorf("failed to decode item %s: %w", itemCode, err)
		}

		item.AvailableStock -= quantity
		if item.AvailableStock < 0 {
			s.logger.Warn("Stock oversold, clamping to zero",
				zap.String("item_code", itemCode),
				zap.Int("shortfall", -item.AvailableStock))
			item.AvailableStock = 0
		}
		item.TotalSold += quantity

		swapped, err := s.store.SwapDocument(ctx, doc, item, models.CollectionInventory, itemCode)
		if err != nil {
			return fmt.Errorf("failed to store stock movement for %s: %w", itemCode, ErrStoreUnavailable)
		}
		if !swapped {
			util.StockMovementsTotal.WithLabelValues("conflict").Inc()
			s.logger.Info("Item changed during stock movement, retrying",
				zap.String("item_code", itemCode), zap.Int("attempt", attempt))
			continue
		}

		util.StockMovementsTotal.WithLabelValues("applied").Inc()
		s.logger.Info("Stock movement applied",
			zap.String("item_code", itemCode),
			zap.Int("quantity", quantity),
			zap.Int("available_stock", item.AvailableStock))
		return nil
	}
	return fmt.Errorf("stock movement for %s kept conflicting: %w", itemCode, ErrStoreUnavailable)
}

func (s *InventoryService) invalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.InvalidateInventory(ctx); err != nil {
		s.logger.Error("Failed to invalidate inventory cache", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrCacheInvalidation, err)
	}
	return nil
}

func (s *InventoryService) publish(ctx context.Context, event *models.ItemEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.PublishItemEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish item event",
			zap.String("type", event.EventType), zap.Error(err))
	}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
