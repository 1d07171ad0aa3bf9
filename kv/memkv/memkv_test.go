package memkv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raxodb/rack/kv/memkv"
)

func TestPutGet(t *testing.T) {
	e := memkv.New()
	require.NoError(t, e.Put("book_0", []byte("a")))
	v, ok, err := e.Get("book_0")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("a"), v)
}

func TestGetMissing(t *testing.T) {
	e := memkv.New()
	_, ok, err := e.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOverwritePreservesPosition(t *testing.T) {
	e := memkv.New()
	require.NoError(t, e.Put("book_0", []byte("a")))
	require.NoError(t, e.Put("book_1", []byte("b")))
	require.NoError(t, e.Put("book_0", []byte("a2")))

	keys, err := e.IterKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{"book_0", "book_1"}, keys)

	v, _, _ := e.Get("book_0")
	assert.Equal(t, []byte("a2"), v)
}

func TestDeleteRemovesFromOrder(t *testing.T) {
	e := memkv.New()
	require.NoError(t, e.Put("book_0", []byte("a")))
	require.NoError(t, e.Put("book_1", []byte("b")))
	require.NoError(t, e.Delete("book_0"))

	keys, _ := e.IterKeys()
	assert.Equal(t, []string{"book_1"}, keys)

	_, ok, _ := e.Get("book_0")
	assert.False(t, ok)
}

func TestReorder(t *testing.T) {
	e := memkv.New()
	require.NoError(t, e.Put("book_1", []byte("b")))
	require.NoError(t, e.Put("book_0", []byte("a")))
	e.Reorder([]string{"book_0", "book_1"})

	keys, _ := e.IterKeys()
	assert.Equal(t, []string{"book_0", "book_1"}, keys)
}

func TestPreservesOrder(t *testing.T) {
	e := memkv.New()
	assert.True(t, e.PreservesOrder())
}

func TestClose(t *testing.T) {
	e := memkv.New()
	assert.NoError(t, e.Close())
}
