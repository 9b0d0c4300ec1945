package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"inventory-service/internal/models"
	"inventory-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishItemEvent publishes ITEM_ADDED, ITEM_UPDATED and ITEM_DELETED events
func (ep *EventPublisher) PublishItemEvent(ctx context.Context, event *models.ItemEvent) error {
	key := fmt.Sprintf("item-%s", event.ItemCode)
	return ep.publish(ctx, key, event.EventType, event)
}

// PublishOrderProcessed publishes OrderProcessed event
func (ep *EventPublisher) PublishOrderProcessed(ctx context.Context, event *models.OrderProcessedEvent) error {
	key := fmt.Sprintf("item-%s", event.ItemCode)
	return ep.publish(ctx, key, event.EventType, event)
}

func (ep *EventPublisher) publish(ctx context.Context, key, eventType string, event interface{}) error {
	if err := ep.producer.PublishEvent(ctx, key, event); err != nil {
		util.EventsPublishedTotal.WithLabelValues(eventType, "error").Inc()
		return err
	}
	util.EventsPublishedTotal.WithLabelValues(eventType, "ok").Inc()
	return nil
}

// EventHandler handles incoming events
type EventHandler struct {
	onOrderProcessed func(context.Context, *models.OrderProcessedEvent) error
	onItemEvent      func(context.Context, *models.ItemEvent) error
	logger           *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnOrderProcessed registers a handler for OrderProcessed events
func (eh *EventHandler) OnOrderProcessed(handler func(context.Context, *models.OrderProcessedEvent) error) {
	eh.onOrderProcessed = handler
}

// OnItemEvent registers a handler for item lifecycle events
func (eh *EventHandler) OnItemEvent(handler func(context.Context, *models.ItemEvent) error) {
	eh.onItemEvent = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("event_id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeOrderProcessed:
		if eh.onOrderProcessed != nil {
			var event models.OrderProcessedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderProcessed event: %w", err)
			}
			return eh.onOrderProcessed(ctx, &event)
		}

	case models.EventTypeItemAdded, models.EventTypeItemUpdated, models.EventTypeItemDeleted:
		if eh.onItemEvent != nil {
			var event models.ItemEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal item event: %w", err)
			}
			return eh.onItemEvent(ctx, &event)
		}

	default:
		eh.logger.Warn("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
