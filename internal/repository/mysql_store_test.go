package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*MySQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewMySQLStore(db), mock
}

const (
	selectKV = "SELECT v FROM kv_store WHERE k = ? LIMIT 1"
	upsertKV = "INSERT INTO kv_store (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)"
)

func TestMySQLStore_GetMissing(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectKV)).
		WithArgs("travellerData").
		WillReturnError(sql.ErrNoRows)

	val, found, err := store.Get(context.Background(), "travellerData")
	require.NoError(t, err)
	require.False(t, found)
	require.Empty(t, val)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStore_GetFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectKV)).
		WithArgs("travellerData").
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow(`[]`))

	val, found, err := store.Get(context.Background(), "travellerData")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `[]`, val)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStore_GetError(t *testing.T) {
	store, mock := newMockStore(t)
	boom := errors.New("connection lost")
	mock.ExpectQuery(regexp.QuoteMeta(selectKV)).WithArgs("travellerData").WillReturnError(boom)

	_, _, err := store.Get(context.Background(), "travellerData")
	require.ErrorIs(t, err, boom)
}

func TestMySQLStore_Set(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta(upsertKV)).
		WithArgs("travellerData", `[{"id":"1"}]`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Set(context.Background(), "travellerData", `[{"id":"1"}]`))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStore_EnsureSchema(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS kv_store")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
