package memdriver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/patrickfrey/strus-sub002/bytekv"
)

func TestWriteImmAndReadValue(t *testing.T) {
	store, err := Open(bytekv.Config{})
	require.NoError(t, err)

	require.NoError(t, store.WriteImm([]byte("a"), []byte("1")))
	value, found, err := store.ReadValue([]byte("a"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("1"), value)

	_, found, err = store.ReadValue([]byte("missing"))
	require.NoError(t, err)
	require.False(t, found)
}

func TestTransactionCommitIsAtomic(t *testing.T) {
	store, err := Open(bytekv.Config{})
	require.NoError(t, err)

	w, err := store.Transaction()
	require.NoError(t, err)
	require.NoError(t, w.Write([]byte("x"), []byte("1")))
	require.NoError(t, w.Write([]byte("y"), []byte("2")))

	_, found, err := store.ReadValue([]byte("x"))
	require.NoError(t, err)
	require.False(t, found, "writes must not be visible before commit")

	require.NoError(t, w.Commit())

	value, found, err := store.ReadValue([]byte("x"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("1"), value)
}

func TestTransactionRollbackDiscardsWrites(t *testing.T) {
	store, err := Open(bytekv.Config{})
	require.NoError(t, err)

	w, err := store.Transaction()
	require.NoError(t, err)
	require.NoError(t, w.Write([]byte("x"), []byte("1")))
	require.NoError(t, w.Rollback())

	_, found, err := store.ReadValue([]byte("x"))
	require.NoError(t, err)
	require.False(t, found)
}

func TestTransactionRemoveSubtree(t *testing.T) {
	store, err := Open(bytekv.Config{})
	require.NoError(t, err)

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

func TestCursorIsSnapshotIsolated(t *testing.T) {
	store, err := Open(bytekv.Config{})
	require.NoError(t, err)
	require.NoError(t, store.WriteImm([]byte("a"), []byte("1")))

	cur, err := store.NewCursor()
	require.NoError(t, err)
	defer cur.Close()

	require.NoError(t, store.WriteImm([]byte("b"), []byte("2")))

	ok, err := cur.SeekFirst([]byte{})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("a"), cur.Key())

	ok, err = cur.SeekNext()
	require.NoError(t, err)
	require.False(t, ok, "cursor snapshot must not see writes made after it was opened")
}

func TestCursorSeekUpperBound(t *testing.T) {
	store, err := Open(bytekv.Config{})
	require.NoError(t, err)
	require.NoError(t, store.WriteImm([]byte("k10"), []byte("a")))
	require.NoError(t, store.WriteImm([]byte("k30"), []byte("b")))

	cur, err := store.NewCursor()
	require.NoError(t, err)
	defer cur.Close()

	ok, err := cur.SeekUpperBound([]byte("k20"), 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("k30"), cur.Key())
}
