package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore maps every logical collection onto a MongoDB collection and the
// document id onto _id.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore connects to uri and verifies the connection
func NewMongoStore(uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(25)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect failed: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	return &MongoStore{client: client, db: client.Database(database)}, nil
}

func (s *MongoStore) Put(ctx context.Context, collection, id string, doc Document) error {
	_, err := s.db.Collection(collection).ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		withID(doc, id),
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Create(ctx context.Context, collection, id string, doc Document) error {
	_, err := s.db.Collection(collection).InsertOne(ctx, withID(doc, id))
	if mongo.IsDuplicateKeyError(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return fromBSON(raw)
}

func (s *MongoStore) Swap(ctx context.Context, collection, id string, prev, doc Document) error {
	res, err := s.db.Collection(collection).ReplaceOne(ctx, swapFilter(id, prev), withID(doc, id))
	if err != nil {
		return fmt.Errorf("failed to swap %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}

func (s *MongoStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	filter, err := mongoFilter(filters)
	if err != nil {
		return nil, err
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	out := make([]Document, 0)
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode %s document: %w", collection, err)
		}
		doc, err := fromBSON(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error on %s: %w", collection, err)
	}
	return out, nil
}

func (s *MongoStore) List(ctx context.Context, collection string) ([]Document, error) {
	return s.Query(ctx, collection)
}

func (s *MongoStore) Count(ctx context.Context, collection string) (int64, error) {
	n, err := s.db.Collection(collection).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return n, nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func withID(doc Document, id string) bson.M {
	out := make(bson.M, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out["_id"] = id
	return out
}

// fromBSON strips _id and converts driver types (primitive.A, primitive.M,
// int32/int64) into plain JSON values.
func fromBSON(raw bson.M) (Document, error) {
	delete(raw, "_id")
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mongo document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode mongo document: %w", err)
	}
	return doc, nil
}

// swapFilter matches the document at id whose fields still hold the values in
// prev. Nested objects are compared through dotted paths since embedded
// document equality in MongoDB depends on key order.
func swapFilter(id string, prev Document) bson.D {
	filter := bson.D{{Key: "_id", Value: id}}
	var add func(prefix string, fields map[string]interface{})
	add = func(prefix string, fields map[string]interface{}) {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			path := prefix + k
			if nested, ok := fields[k].(map[string]interface{}); ok && len(nested) > 0 {
				add(path+".", nested)
				continue
			}
			filter = append(filter, bson.E{Key: path, Value: bson.D{{Key: "$eq", Value: fields[k]}}})
		}
	}
	add("", prev)
	return filter
}

// mongoFilter translates filters into a single $and query document.
func mongoFilter(filters []Filter) (bson.D, error) {
	if err := validateFilters(filters); err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return bson.D{}, nil
	}

	clauses := make(bson.A, 0, len(filters))
	for _, f := range filters {
		var cond interface{}
		switch f.Op {
		case OpEqual:
			cond = bson.D{{Key: "$eq", Value: f.Value}}
		case OpNotEqual:
			cond = bson.D{{Key: "$exists", Value: true}, {Key: "$ne", Value: f.Value}}
		case OpLess:
			cond = bson.D{{Key: "$lt", Value: f.Value}}
		case OpLessEqual:
			cond = bson.D{{Key: "$lte", Value: f.Value}}
		case OpGreater:
			cond = bson.D{{Key: "$gt", Value: f.Value}}
		case OpGreaterEqual:
			cond = bson.D{{Key: "$gte", Value: f.Value}}
		case OpIn:
			list, _ := toList(f.Value)
			cond = bson.D{{Key: "$in", Value: bson.A(list)}}
		case OpNotIn:
			list, _ := toList(f.Value)
			cond = bson.D{{Key: "$exists", Value: true}, {Key: "$nin", Value: bson.A(list)}}
		case OpArrayContains:
			cond = bson.D{{Key: "$elemMatch", Value: bson.D{{Key: "$eq", Value: f.Value}}}}
		case OpArrayContainsAny:
			list, _ := toList(f.Value)
			cond = bson.D{{Key: "$elemMatch", Value: bson.D{{Key: "$in", Value: bson.A(list)}}}}
		}
		clauses = append(clauses, bson.D{{Key: f.Field, Value: cond}})
	}
	return bson.D{{Key: "$and", Value: clauses}}, nil
}
