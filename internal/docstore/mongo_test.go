package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoFilterEmpty(t *testing.T) {
	f, err := mongoFilter(nil)
	require.NoError(t, err)
	assert.Equal(t, bson.D{}, f)
}

func TestMongoFilterTranslation(t *testing.T) {
	f, err := mongoFilter([]Filter{
		Where("participants", OpArrayContains, "u1"),
		Where("participants", OpArrayContainsAny, []string{"u2", "u3"}),
		Where("price", OpGreaterEqual, 5),
	})
	require.NoError(t, err)

	want := bson.D{{Key: "$and", Value: bson.A{
		bson.D{{Key: "participants", Value: bson.D{{Key: "$elemMatch", Value: bson.D{{Key: "$eq", Value: "u1"}}}}}},
		bson.D{{Key: "participants", Value: bson.D{{Key: "$elemMatch", Value: bson.D{{Key: "$in", Value: bson.A{"u2", "u3"}}}}}}},
		bson.D{{Key: "price", Value: bson.D{{Key: "$gte", Value: 5}}}},
	}}}
	assert.Equal(t, want, f)
}

func TestMongoFilterRejectsBadOperator(t *testing.T) {
	_, err := mongoFilter([]Filter{Where("a", Operator("regex"), ".*")})
	assert.Error(t, err)
}

func TestFromBSONNormalizesDriverTypes(t *testing.T) {
	doc, err := fromBSON(bson.M{
		"_id":          "c1",
		"id":           "c1",
		"participants": primitive.A{"u1", "u2"},
		"count":        int32(3),
		"meta":         primitive.M{"k": "v"},
	})
	require.NoError(t, err)

	_, hasID := doc["_id"]
	assert.False(t, hasID)
	assert.Equal(t, []string{"u1", "u2"}, doc.Strings("participants"))
	assert.Equal(t, float64(3), doc["count"])
	assert.Equal(t, map[string]interface{}{"k": "v"}, doc["meta"])
}

func TestWithID(t *testing.T) {
	m := withID(Document{"a": 1}, "x")
	assert.Equal(t, bson.M{"a": 1, "_id": "x"}, m)
}

func TestSwapFilterUsesDottedPaths(t *testing.T) {
	f := swapFilter("A-1", Document{
		"stock": float64(5),
		"meta":  map[string]interface{}{"b": "y", "a": "x"},
		"tags":  []interface{}{"t1"},
	})

	want := bson.D{
		{Key: "_id", Value: "A-1"},
		{Key: "meta.a", Value: bson.D{{Key: "$eq", Value: "x"}}},
		{Key: "meta.b", Value: bson.D{{Key: "$eq", Value: "y"}}},
		{Key: "stock", Value: bson.D{{Key: "$eq", Value: float64(5)}}},
		{Key: "tags", Value: bson.D{{Key: "$eq", Value: []interface{}{"t1"}}}},
	}
	assert.Equal(t, want, f)
}
