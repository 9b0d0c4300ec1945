package models

import "time"

// Event types
const (
	EventTypeItemAdded      = "ITEM_ADDED"
	EventTypeItemUpdated    = "ITEM_UPDATED"
	EventTypeItemDeleted    = "ITEM_DELETED"
	EventTypeOrderProcessed = "ORDER_PROCESSED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ItemEvent published when an inventory item is added, updated or deleted.
// Item is nil for deletions.
type ItemEvent struct {
	BaseEvent
	ItemCode string         `json:"item_code"`
	Item     *InventoryItem `json:"item,omitempty"`
}

// OrderProcessedEvent published when an order is stored
type OrderProcessedEvent struct {
	BaseEvent
	OrderID  string  `json:"order_id"`
	ItemCode string  `json:"item_code"`
	Quantity int     `json:"quantity"`
	Amount   float64 `json:"amount"`
}
