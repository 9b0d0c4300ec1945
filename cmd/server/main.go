package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory-service/config"
	"inventory-service/internal/api"
	"inventory-service/internal/broker"
	"inventory-service/internal/docstore"
	"inventory-service/internal/identity"
	"inventory-service/internal/objectstore"
	"inventory-service/internal/redisclient"
	"inventory-service/internal/service"
	"inventory-service/internal/store"
	"inventory-service/internal/util"
	"inventory-service/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting inventory service")

	tp, err := util.InitTracer(util.ServiceName, cfg.Observ.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("Error shutting down tracer", zap.Error(err))
		}
	}()

	docs, err := newDocStore(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to document store", zap.String("driver", cfg.DocStore.Driver), zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := docs.Close(ctx); err != nil {
			logger.Error("Error closing document store", zap.Error(err))
		}
	}()
	logger.Info("Document store connected", zap.String("driver", cfg.DocStore.Driver))

	readiness := []api.ReadinessCheck{{Name: "docstore", Check: docs.Ping}}

	var cache service.InventoryCache
	if cfg.Redis.Enabled {
		redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			time.Duration(cfg.Redis.CacheTTLSeconds)*time.Second)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		cache = redisClient
		readiness = append(readiness, api.ReadinessCheck{Name: "redis", Check: redisClient.Ping})
		logger.Info("Redis connected")
	}

	var bucket objectstore.Bucket
	if cfg.Storage.Bucket != "" {
		s3Bucket, err := objectstore.NewS3Bucket(context.Background(), objectstore.Options{
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Endpoint:  cfg.Storage.Endpoint,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err != nil {
			logger.Fatal("Failed to initialize object store", zap.Error(err))
		}
		bucket = s3Bucket
		logger.Info("Object store initialized", zap.String("bucket", cfg.Storage.Bucket))
	}

	var eventPublisher service.EventPublisher
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Error("Error closing Kafka producer", zap.Error(err))
			}
		}()
		eventPublisher = broker.NewEventPublisher(producer)
		logger.Info("Kafka producer initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	httpClient := util.NewTracedHTTPClient(time.Duration(cfg.Identity.RequestTimeoutSeconds) * time.Second)
	identityClient := identity.NewClient(cfg.Identity.BaseURL, cfg.Identity.APIKey, httpClient)

	dataStore := store.NewStore(docs, bucket, httpClient)
	inventoryService := service.NewInventoryService(dataStore, cache, eventPublisher)
	orderService := service.NewOrderService(dataStore, eventPublisher)
	authService := service.NewAuthService(identityClient)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var stockWorker *worker.StockWorker
	if cfg.Kafka.Enabled {
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
		stockWorker = worker.NewStockWorker(consumer, inventoryService)
		go func() {
			if err := stockWorker.Start(workerCtx); err != nil && err != context.Canceled {
				logger.Error("Stock worker error", zap.Error(err))
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(inventoryService, orderService, authService, readiness...)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		logger.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if stockWorker != nil {
		if err := stockWorker.Stop(); err != nil {
			logger.Error("Error stopping stock worker", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}

func newDocStore(cfg *config.Config) (docstore.Store, error) {
	switch cfg.DocStore.Driver {
	case "mongo":
		return docstore.NewMongoStore(cfg.Mongo.URI, cfg.Mongo.Database)
	case "postgres":
		return docstore.NewPostgresStore(cfg.Postgres.URL)
	case "memory":
		return docstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown DOCSTORE_DRIVER %q", cfg.DocStore.Driver)
	}
}
