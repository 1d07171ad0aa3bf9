package sqlitekv_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rack "github.com/raxodb/rack"
	"github.com/raxodb/rack/kv/sqlitekv"
)

func TestPutGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rack.db")
	e, err := sqlitekv.Open(path)
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Put("book_0", []byte(`{"title":"Dune"}`)))
	v, ok, err := e.Get("book_0")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"title":"Dune"}`, string(v))
}

func TestOverwritePreservesInsertionOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rack.db")
	e, err := sqlitekv.Open(path)
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Put("book_0", []byte("a")))
	require.NoError(t, e.Put("book_1", []byte("b")))
	require.NoError(t, e.Put("book_0", []byte("a2")))

	keys, err := e.IterKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{"book_0", "book_1"}, keys)
}

func TestDeleteThenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rack.db")
	e, err := sqlitekv.Open(path)
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Put("book_0", []byte("a")))
	require.NoError(t, e.Delete("book_0"))
	_, ok, err := e.Get("book_0")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rack.db")
	e, err := sqlitekv.Open(path)
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Put("book_1", []byte("b")))
	require.NoError(t, e.Put("book_0", []byte("a")))
	require.NoError(t, e.Reorder([]string{"book_0", "book_1"}))

	keys, err := e.IterKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{"book_0", "book_1"}, keys)
}

func TestGetFailureWrapsIOError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT value FROM rack_kv").
		WithArgs("book_0").
		WillReturnError(errors.New("disk I/O error"))

	e, err := sqlitekv.OpenDB(db)
	require.NoError(t, err)

	_, _, err = e.Get("book_0")
	require.Error(t, err)
	assert.True(t, rack.IsIOError(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPutFailureWrapsIOError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO rack_kv").
		WithArgs("book_0", []byte("a")).
		WillReturnError(errors.New("disk full"))

	e, err := sqlitekv.OpenDB(db)
	require.NoError(t, err)

	err = e.Put("book_0", []byte("a"))
	require.Error(t, err)
	assert.True(t, rack.IsIOError(err))
	require.NoError(t, mock.ExpectationsWereMet())
}
