package docstore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewPostgresStoreFromDB(sqlx.NewDb(db, "postgres")), mock
}

func TestPostgresMigrate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS documents").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPut(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO documents .* ON CONFLICT \\(collection, id\\) DO UPDATE").
		WithArgs("inventory", "A-1", []byte(`{"itemName":"Bolt"}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Put(context.Background(), "inventory", "A-1", Document{"itemName": "Bolt"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateConflict(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("ON CONFLICT \\(collection, id\\) DO NOTHING").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Create(context.Background(), "inventory", "A-1", Document{"itemName": "Bolt"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateInserted(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("ON CONFLICT \\(collection, id\\) DO NOTHING").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Create(context.Background(), "inventory", "A-1", Document{"itemName": "Bolt"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSwap(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("WHERE collection = \\$1 AND id = \\$2 AND data = \\$4::jsonb").
		WithArgs("inventory", "A-1", []byte(`{"stock":4}`), `{"stock":5}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE documents").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	require.NoError(t, s.Swap(ctx, "inventory", "A-1", Document{"stock": 5}, Document{"stock": 4}))
	assert.ErrorIs(t, s.Swap(ctx, "inventory", "A-1", Document{"stock": 5}, Document{"stock": 4}), ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGet(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT data FROM documents WHERE collection = \\$1 AND id = \\$2").
		WithArgs("inventory", "A-1").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte(`{"itemName":"Bolt","price":2}`)))

	doc, err := s.Get(context.Background(), "inventory", "A-1")
	require.NoError(t, err)
	assert.Equal(t, Document{"itemName": "Bolt", "price": float64(2)}, doc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT data FROM documents").WillReturnError(sql.ErrNoRows)

	_, err := s.Get(context.Background(), "inventory", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresQueryBindsFilters(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT data FROM documents WHERE collection = \\$1 AND \\(jsonb_typeof\\(data -> \\$2::text\\) = 'array'.* ORDER BY id").
		WithArgs("chats", "participants", `["u1"]`).
		WillReturnRows(sqlmock.NewRows([]string{"data"}).
			AddRow([]byte(`{"id":"c1","participants":["u1","u2"]}`)))

	docs, err := s.Query(context.Background(), "chats", Where("participants", OpArrayContains, "u1"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "c1", docs[0].String("id"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCountAndDelete(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM documents").
		WithArgs("orders").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectExec("DELETE FROM documents").
		WithArgs("orders", "o-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := s.Count(context.Background(), "orders")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	err = s.Delete(context.Background(), "orders", "o-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresWhere(t *testing.T) {
	where, args, err := postgresWhere([]Filter{
		Where("itemCode", OpEqual, "A-1"),
		Where("price", OpLess, 10),
		Where("category", OpIn, []string{"tools", "parts"}),
	}, 2)
	require.NoError(t, err)

	assert.Contains(t, where, "(data -> $2::text = $3::jsonb)")
	assert.Contains(t, where, "jsonb_typeof(data -> $4::text) = 'number' AND data -> $4::text < $5::jsonb")
	assert.Contains(t, where, "$7::jsonb @> jsonb_build_array(data -> $6::text)")
	assert.Equal(t, []interface{}{
		"itemCode", `"A-1"`,
		"price", "10",
		"category", `["tools","parts"]`,
	}, args)

	_, _, err = postgresWhere([]Filter{Where("x", OpIn, 3)}, 2)
	assert.Error(t, err)
}
