package boltdriver

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/patrickfrey/strus-sub002/bytekv"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.db")
	store, err := Open(bytekv.Config{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestWriteImmAndReadValue(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.WriteImm([]byte("a"), []byte("1")))
	value, found, err := store.ReadValue([]byte("a"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("1"), value)
}

func TestTransactionCommit(t *testing.T) {
	store := openTestStore(t)

	w, err := store.Transaction()
	require.NoError(t, err)
	require.NoError(t, w.Write([]byte("k"), []byte("v")))
	require.NoError(t, w.Commit())

	value, found, err := store.ReadValue([]byte("k"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("v"), value)
}

func TestTransactionRollback(t *testing.T) {
	store := openTestStore(t)

	w, err := store.Transaction()
	require.NoError(t, err)
	require.NoError(t, w.Write([]byte("k"), []byte("v")))
	require.NoError(t, w.Rollback())

	_, found, err := store.ReadValue([]byte("k"))
	require.NoError(t, err)
	require.False(t, found)
}

func TestRemoveSubtree(t *testing.T) {
	store := openTestStore(t)

	w, err := store.Transaction()
	require.NoError(t, err)
	require.NoError(t, w.Write([]byte("p:1"), []byte("a")))
	require.NoError(t, w.Write([]byte("p:2"), []byte("b")))
	require.NoError(t, w.Write([]byte("q:1"), []byte("c")))
	require.NoError(t, w.Commit())

	w, err = store.Transaction()
	require.NoError(t, err)
	require.NoError(t, w.RemoveSubtree([]byte("p:")))
	require.NoError(t, w.Commit())

	_, found, err := store.ReadValue([]byte("p:1"))
	require.NoError(t, err)
	require.False(t, found)
	_, found, err = store.ReadValue([]byte("q:1"))
	require.NoError(t, err)
	require.True(t, found)
}

func TestCursorSeekFirstAndNext(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.WriteImm([]byte("a"), []byte("1")))
	require.NoError(t, store.WriteImm([]byte("b"), []byte("2")))

	cur, err := store.NewCursor()
	require.NoError(t, err)
	defer cur.Close()

	ok, err := cur.SeekFirst([]byte{})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("a"), cur.Key())

	ok, err = cur.SeekNext()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("b"), cur.Key())

	ok, err = cur.SeekNext()
	require.NoError(t, err)
	require.False(t, ok)
}
