// Package store composes the document, object and HTTP clients into the named
// data access operations used by the services. Failures are logged and
// reported as false, nil or zero values; callers never see store errors
// except where noted.
package store

import (
	"context"
	"errors"
	"net/http"
	"time"

	"inventory-service/internal/docstore"
	"inventory-service/internal/objectstore"
	"inventory-service/internal/util"

	"go.uber.org/zap"
)

type Store struct {
	docs       docstore.Store
	bucket     objectstore.Bucket
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// NewStore creates a new data access layer. bucket may be nil when no object
// store is configured; image uploads then fail.
func NewStore(docs docstore.Store, bucket objectstore.Bucket, httpClient *http.Client) *Store {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Store{
		docs:       docs,
		bucket:     bucket,
		httpClient: httpClient,
		logger:     util.GetLogger(),
		now:        time.Now,
	}
}

// StoreDocument overwrites the document at (collection, id)
func (s *Store) StoreDocument(ctx context.Context, data interface{}, collection, id string) bool {
	defer observe("put", collection, time.Now())

	doc, err := docstore.FromValue(data)
	if err != nil {
		s.logger.Error("Failed to encode document",
			zap.String("collection", collection), zap.String("id", id), zap.Error(err))
		return false
	}

	if err := s.docs.Put(ctx, collection, id, doc); err != nil {
		s.logger.Error("Failed to store document",
			zap.String("collection", collection), zap.String("id", id), zap.Error(err))
		return false
	}
	return true
}

// CreateDocument stores data only when (collection, id) is free. It returns
// false with a nil error when the id is already taken.
func (s *Store) CreateDocument(ctx context.Context, data interface{}, collection, id string) (bool, error) {
	defer observe("create", collection, time.Now())

	doc, err := docstore.FromValue(data)
	if err != nil {
		return false, err
	}

	err = s.docs.Create(ctx, collection, id, doc)
	if errors.Is(err, docstore.ErrAlreadyExists) {
		return false, nil
	}
	if err != nil {
		s.logger.Error("Failed to create document",
			zap.String("collection", collection), zap.String("id", id), zap.Error(err))
		return false, err
	}
	return true, nil
}

// SwapDocument replaces prev with data at (collection, id). It returns false
// with a nil error when the stored document no longer equals prev.
func (s *Store) SwapDocument(ctx context.Context, prev docstore.Document, data interface{}, collection, id string) (bool, error) {
	defer observe("swap", collection, time.Now())

	doc, err := docstore.FromValue(data)
	if err != nil {
		return false, err
	}

	err = s.docs.Swap(ctx, collection, id, prev, doc)
	if errors.Is(err, docstore.ErrConflict) {
		return false, nil
	}
	if err != nil {
		s.logger.Error("Failed to swap document",
			zap.String("collection", collection), zap.String("id", id), zap.Error(err))
		return false, err
	}
	return true, nil
}

// GetDocument returns the document at (collection, id), or nil when it is
// absent or the read failed.
func (s *Store) GetDocument(ctx context.Context, collection, id string) docstore.Document {
	defer observe("get", collection, time.Now())

	doc, err := s.docs.Get(ctx, collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Error("Failed to get document",
			zap.String("collection", collection), zap.String("id", id), zap.Error(err))
		return nil
	}
	return doc
}

// QueryDocuments returns the documents matching every filter, or nil when
// none match or the query failed.
func (s *Store) QueryDocuments(ctx context.Context, collection string, filters ...docstore.Filter) []docstore.Document {
	defer observe("query", collection, time.Now())

	docs, err := s.docs.Query(ctx, collection, filters...)
	if err != nil {
		s.logger.Error("Failed to query documents",
			zap.String("collection", collection), zap.Error(err))
		return nil
	}
	if len(docs) == 0 {
		return nil
	}
	return docs
}

// FetchDocument reads by id when filters is nil and by filters otherwise, in
// which case id is ignored. The single-document result is wrapped in a
// one-element slice.
func (s *Store) FetchDocument(ctx context.Context, collection, id string, filters []docstore.Filter) []docstore.Document {
	if filters == nil {
		doc := s.GetDocument(ctx, collection, id)
		if doc == nil {
			return nil
		}
		return []docstore.Document{doc}
	}
	return s.QueryDocuments(ctx, collection, filters...)
}

// ListAllDocuments returns every document of collection in store order. It
// returns nil on failure and an empty slice for an empty collection.
func (s *Store) ListAllDocuments(ctx context.Context, collection string) []docstore.Document {
	defer observe("list", collection, time.Now())

	docs, err := s.docs.List(ctx, collection)
	if err != nil {
		s.logger.Error("Failed to list documents",
			zap.String("collection", collection), zap.Error(err))
		return nil
	}
	if docs == nil {
		docs = []docstore.Document{}
	}
	return docs
}

// CountDocuments returns 0 on failure
func (s *Store) CountDocuments(ctx context.Context, collection string) int64 {
	defer observe("count", collection, time.Now())

	n, err := s.docs.Count(ctx, collection)
	if err != nil {
		s.logger.Error("Failed to count documents",
			zap.String("collection", collection), zap.Error(err))
		return 0
	}
	return n
}

// DeleteDocument reports false when nothing was stored under id
func (s *Store) DeleteDocument(ctx context.Context, collection, id string) bool {
	defer observe("delete", collection, time.Now())

	err := s.docs.Delete(ctx, collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		s.logger.Warn("Document to delete not found",
			zap.String("collection", collection), zap.String("id", id))
		return false
	}
	if err != nil {
		s.logger.Error("Failed to delete document",
			zap.String("collection", collection), zap.String("id", id), zap.Error(err))
		return false
	}
	s.logger.Info("Document deleted", zap.String("collection", collection), zap.String("id", id))
	return true
}

func observe(op, collection string, start time.Time) {
	util.DocStoreOperationDuration.WithLabelValues(op, collection).Observe(time.Since(start).Seconds())
}
