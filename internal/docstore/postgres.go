package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const documentsSchema = `
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT        NOT NULL,
		id         TEXT        NOT NULL,
		data       JSONB       NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (collection, id)
	)`

// PostgresStore keeps every collection in a single JSONB table.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore connects to databaseURL and ensures the documents table exists
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &PostgresStore{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStoreFromDB wraps an existing connection.
func NewPostgresStoreFromDB(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the documents table
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, documentsSchema); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Put(ctx context.Context, collection, id string, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		collection, id, data)
	if err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, collection, id string, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO NOTHING`,
		collection, id, data)
	if err != nil {
		return fmt.Errorf("failed to create %s/%s: %w", collection, id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var data []byte
	err := s.db.GetContext(ctx, &data,
		"SELECT data FROM documents WHERE collection = $1 AND id = $2", collection, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return decodeJSON(data)
}

func (s *PostgresStore) Swap(ctx context.Context, collection, id string, prev, doc Document) error {
	want, err := json.Marshal(prev)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET data = $3, updated_at = NOW()
		WHERE collection = $1 AND id = $2 AND data = $4::jsonb`,
		collection, id, data, string(want))
	if err != nil {
		return fmt.Errorf("failed to swap %s/%s: %w", collection, id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	where, args, err := postgresWhere(filters, 2)
	if err != nil {
		return nil, err
	}

	query := "SELECT data FROM documents WHERE collection = $1" + where + " ORDER BY id"
	var rows [][]byte
	if err := s.db.SelectContext(ctx, &rows, query, append([]interface{}{collection}, args...)...); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}

	out := make([]Document, 0, len(rows))
	for _, data := range rows {
		doc, err := decodeJSON(data)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (s *PostgresStore) List(ctx context.Context, collection string) ([]Document, error) {
	return s.Query(ctx, collection)
}

func (s *PostgresStore) Count(ctx context.Context, collection string) (int64, error) {
	var n int64
	err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM documents WHERE collection = $1", collection)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return n, nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = $1 AND id = $2", collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close(ctx context.Context) error {
	return s.db.Close()
}

func decodeJSON(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

// postgresWhere renders filters as JSONB predicates. Placeholders start at
// $next; the field name is always bound as a text parameter.
func postgresWhere(filters []Filter, next int) (string, []interface{}, error) {
	if err := validateFilters(filters); err != nil {
		return "", nil, err
	}

	var (
		b    strings.Builder
		args []interface{}
	)
	bind := func(v interface{}) string {
		args = append(args, v)
		p := fmt.Sprintf("$%d", next)
		next++
		return p
	}
	jsonArg := func(v interface{}) (string, error) {
		raw, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to encode filter value: %w", err)
		}
		return bind(string(raw)) + "::jsonb", nil
	}

	for _, f := range filters {
		field := bind(f.Field) + "::text"
		var clause string

		switch f.Op {
		case OpEqual, OpNotEqual:
			val, err := jsonArg(f.Value)
			if err != nil {
				return "", nil, err
			}
			op := "="
			if f.Op == OpNotEqual {
				op = "<>"
			}
			clause = fmt.Sprintf("data -> %s %s %s", field, op, val)

		case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
			if s, ok := f.Value.(string); ok {
				clause = fmt.Sprintf("data ->> %s %s %s", field, f.Op, bind(s))
			} else {
				val, err := jsonArg(f.Value)
				if err != nil {
					return "", nil, err
				}
				clause = fmt.Sprintf("jsonb_typeof(data -> %s) = 'number' AND data -> %s %s %s",
					field, field, f.Op, val)
			}

		case OpIn, OpNotIn:
			list, _ := toList(f.Value)
			val, err := jsonArg(list)
			if err != nil {
				return "", nil, err
			}
			clause = fmt.Sprintf("%s @> jsonb_build_array(data -> %s)", val, field)
			if f.Op == OpNotIn {
				clause = fmt.Sprintf("data ? %s AND NOT (%s)", field, clause)
			}

		case OpArrayContains:
			val, err := jsonArg([]interface{}{f.Value})
			if err != nil {
				return "", nil, err
			}
			clause = fmt.Sprintf("jsonb_typeof(data -> %s) = 'array' AND data -> %s @> %s", field, field, val)

		case OpArrayContainsAny:
			list, _ := toList(f.Value)
			val, err := jsonArg(list)
			if err != nil {
				return "", nil, err
			}
			// CASE keeps jsonb_array_elements away from scalar values.
			clause = fmt.Sprintf(
				"CASE WHEN jsonb_typeof(data -> %s) = 'array' THEN EXISTS (SELECT 1 FROM jsonb_array_elements(data -> %s) e WHERE %s @> jsonb_build_array(e)) ELSE false END",
				field, field, val)
		}

		b.WriteString(" AND (")
		b.WriteString(clause)
		b.WriteString(")")
	}
	return b.String(), args, nil
}
