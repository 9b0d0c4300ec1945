// Package docstore is the document database client. Documents are schemaless
// JSON objects addressed by collection name and document id.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no document is stored under the requested id.
	ErrNotFound = errors.New("document not found")

	// ErrAlreadyExists is returned by Create when the id is already taken.
	ErrAlreadyExists = errors.New("document already exists")

	// ErrConflict is returned by Swap when the stored document changed.
	ErrConflict = errors.New("document changed concurrently")
)

// Document is a single stored record. Values are normalised to JSON types:
// float64 numbers, []interface{} arrays and map[string]interface{} objects.
type Document map[string]interface{}

// Store is implemented by every document store backend.
type Store interface {
	// Put overwrites the document at (collection, id). Fields are not merged.
	Put(ctx context.Context, collection, id string, doc Document) error

	// Create stores doc only if nothing exists at (collection, id).
	Create(ctx context.Context, collection, id string, doc Document) error

	Get(ctx context.Context, collection, id string) (Document, error)

	// Swap replaces the document at (collection, id) with doc only while it
	// still equals prev. It returns ErrConflict otherwise, including when the
	// document is gone.
	Swap(ctx context.Context, collection, id string, prev, doc Document) error

	// Query returns the documents matching every filter, ordered by id.
	Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error)

	List(ctx context.Context, collection string) ([]Document, error)
	Count(ctx context.Context, collection string) (int64, error)
	Delete(ctx context.Context, collection, id string) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// FromValue converts a struct (or any JSON-encodable value) into a Document.
func FromValue(v interface{}) (Document, error) {
	if doc, ok := v.(Document); ok {
		return normalize(doc)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("value is not a JSON object: %w", err)
	}
	return doc, nil
}

// Decode fills out from the document fields.
func (d Document) Decode(out interface{}) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}

// String returns the field as a string, or "" when absent or of another type.
func (d Document) String(field string) string {
	s, _ := d[field].(string)
	return s
}

// Strings returns the string elements of an array field.
func (d Document) Strings(field string) []string {
	arr, ok := d[field].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// normalize round-trips doc through JSON so that every backend hands out the
// same value types.
func normalize(doc Document) (Document, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var out Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return out, nil
}
