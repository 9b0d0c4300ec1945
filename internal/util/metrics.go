package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ItemsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_items_added_total",
		Help: "Total number of inventory items created",
	})

	ItemsUpdatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_items_updated_total",
		Help: "Total number of inventory items overwritten in update mode",
	})

	ItemsDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_items_deleted_total",
		Help: "Total number of inventory items deleted",
	})

	ItemConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_item_conflicts_total",
		Help: "Total number of add-item requests rejected for a duplicate itemCode",
	})

	OrdersProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_processed_total",
		Help: "Total number of orders stored",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of orders that could not be stored",
	}, []string{"reason"})

	StockMovementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_total",
		Help: "Stock movements applied by the stock worker",
	}, []string{"result"})

	AuthAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_attempts_total",
		Help: "Login and registration attempts by outcome",
	}, []string{"operation", "result"})

	InventoryCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_cache_hits_total",
		Help: "Inventory list reads served from Redis",
	})

	InventoryCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_cache_misses_total",
		Help: "Inventory list reads that went to the document store",
	})

	DocStoreOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docstore_operation_duration_seconds",
		Help:    "Latency of document store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "collection"})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_published_total",
		Help: "Domain events published to Kafka",
	}, []string{"type", "result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
