package store

import (
	"context"
	"errors"
	"testing"

	"inventory-service/internal/docstore"
	"inventory-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenStore fails every call
type brokenStore struct{}

var errBroken = errors.New("connection reset")

func (brokenStore) Put(context.Context, string, string, docstore.Document) error    { return errBroken }
func (brokenStore) Create(context.Context, string, string, docstore.Document) error { return errBroken }
func (brokenStore) Get(context.Context, string, string) (docstore.Document, error) {
	return nil, errBroken
}
func (brokenStore) Swap(context.Context, string, string, docstore.Document, docstore.Document) error {
	return errBroken
}
func (brokenStore) Query(context.Context, string, ...docstore.Filter) ([]docstore.Document, error) {
	return nil, errBroken
}
func (brokenStore) List(context.Context, string) ([]docstore.Document, error) { return nil, errBroken }
func (brokenStore) Count(context.Context, string) (int64, error)              { return 0, errBroken }
func (brokenStore) Delete(context.Context, string, string) error              { return errBroken }
func (brokenStore) Ping(context.Context) error                                { return errBroken }
func (brokenStore) Close(context.Context) error                               { return nil }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(docstore.NewMemoryStore(), nil, nil)
}

func TestStoreAndGetDocument(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	item := models.InventoryItem{ItemCode: "A-1", ItemName: "Bolt", Category: "parts", Price: 0.5, AvailableStock: 10}
	require.True(t, s.StoreDocument(ctx, item, models.CollectionInventory, item.ItemCode))

	doc := s.GetDocument(ctx, models.CollectionInventory, "A-1")
	require.NotNil(t, doc)

	var got models.InventoryItem
	require.NoError(t, doc.Decode(&got))
	assert.Equal(t, item, got)

	assert.Nil(t, s.GetDocument(ctx, models.CollectionInventory, "missing"))
}

func TestStoreDocumentRejectsNonObjects(t *testing.T) {
	s := newTestStore(t)
	assert.False(t, s.StoreDocument(context.Background(), []int{1, 2}, "c", "x"))
}

func TestCreateDocument(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.CreateDocument(ctx, docstore.Document{"itemName": "Bolt"}, models.CollectionInventory, "A-1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.CreateDocument(ctx, docstore.Document{"itemName": "Nut"}, models.CollectionInventory, "A-1")
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, "Bolt", s.GetDocument(ctx, models.CollectionInventory, "A-1").String("itemName"))
}

func TestSwapDocument(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.True(t, s.StoreDocument(ctx, docstore.Document{"stock": 5}, models.CollectionInventory, "A-1"))

	prev := s.GetDocument(ctx, models.CollectionInventory, "A-1")
	swapped, err := s.SwapDocument(ctx, prev, docstore.Document{"stock": 4}, models.CollectionInventory, "A-1")
	require.NoError(t, err)
	assert.True(t, swapped)

	swapped, err = s.SwapDocument(ctx, prev, docstore.Document{"stock": 3}, models.CollectionInventory, "A-1")
	require.NoError(t, err)
	assert.False(t, swapped)
	assert.Equal(t, float64(4), s.GetDocument(ctx, models.CollectionInventory, "A-1")["stock"])

	_, err = NewStore(brokenStore{}, nil, nil).SwapDocument(ctx, prev, prev, models.CollectionInventory, "A-1")
	assert.ErrorIs(t, err, errBroken)
}

func TestFetchDocumentBranches(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.True(t, s.StoreDocument(ctx, docstore.Document{"category": "tools"}, "inventory", "A-1"))
	require.True(t, s.StoreDocument(ctx, docstore.Document{"category": "parts"}, "inventory", "B-2"))

	byID := s.FetchDocument(ctx, "inventory", "A-1", nil)
	require.Len(t, byID, 1)
	assert.Equal(t, "tools", byID[0].String("category"))

	assert.Nil(t, s.FetchDocument(ctx, "inventory", "missing", nil))

	// id is ignored once filters are present
	byFilter := s.FetchDocument(ctx, "inventory", "A-1", []docstore.Filter{
		docstore.Where("category", docstore.OpEqual, "parts"),
	})
	require.Len(t, byFilter, 1)
	assert.Equal(t, "parts", byFilter[0].String("category"))

	assert.Nil(t, s.FetchDocument(ctx, "inventory", "", []docstore.Filter{
		docstore.Where("category", docstore.OpEqual, "food"),
	}))

	assert.Len(t, s.FetchDocument(ctx, "inventory", "", []docstore.Filter{}), 2)
}

func TestListCountDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	empty := s.ListAllDocuments(ctx, models.CollectionOrders)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
	assert.Equal(t, int64(0), s.CountDocuments(ctx, models.CollectionOrders))

	require.True(t, s.StoreDocument(ctx, models.Order{OrderID: "o-1", Quantity: 1}, models.CollectionOrders, "o-1"))
	require.True(t, s.StoreDocument(ctx, models.Order{OrderID: "o-2", Quantity: 2}, models.CollectionOrders, "o-2"))

	assert.Len(t, s.ListAllDocuments(ctx, models.CollectionOrders), 2)
	assert.Equal(t, int64(2), s.CountDocuments(ctx, models.CollectionOrders))

	assert.True(t, s.DeleteDocument(ctx, models.CollectionOrders, "o-1"))
	assert.False(t, s.DeleteDocument(ctx, models.CollectionOrders, "o-1"))
	assert.Equal(t, int64(1), s.CountDocuments(ctx, models.CollectionOrders))
}

func TestFailuresBecomeSentinels(t *testing.T) {
	ctx := context.Background()
	s := NewStore(brokenStore{}, nil, nil)

	assert.False(t, s.StoreDocument(ctx, docstore.Document{"a": 1}, "c", "x"))
	assert.Nil(t, s.GetDocument(ctx, "c", "x"))
	assert.Nil(t, s.QueryDocuments(ctx, "c", docstore.Where("a", docstore.OpEqual, 1)))
	assert.Nil(t, s.ListAllDocuments(ctx, "c"))
	assert.Equal(t, int64(0), s.CountDocuments(ctx, "c"))
	assert.False(t, s.DeleteDocument(ctx, "c", "x"))

	created, err := s.CreateDocument(ctx, docstore.Document{"a": 1}, "c", "x")
	assert.False(t, created)
	assert.ErrorIs(t, err, errBroken)

	_, err = s.FindOrCreateChat(ctx, "u1", "u2")
	assert.Error(t, err)
}
