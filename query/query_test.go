package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/patrickfrey/strus-sub002/bytekv"
	"github.com/patrickfrey/strus-sub002/bytekv/memdriver"
	"github.com/patrickfrey/strus-sub002/storage"
	"github.com/patrickfrey/strus-sub002/txn"
)

func seededStorage(t *testing.T) (bytekv.Driver, *txn.Transaction) {
	t.Helper()
	drv, err := memdriver.Open(bytekv.Config{})
	require.NoError(t, err)
	schema := storage.MetadataSchema{}
	cfg := txn.Config{Driver: drv, Schema: schema}
	tx := txn.New(cfg)

	require.NoError(t, tx.AddTermOccurrence("word", "hello", 1, []uint32{1}))
	require.NoError(t, tx.AddTermOccurrence("word", "hello", 3, []uint32{1}))
	require.NoError(t, tx.AddTermOccurrence("word", "hello", 5, []uint32{1}))
	require.NoError(t, tx.AddTermOccurrence("word", "world", 3, []uint32{2}))
	require.NoError(t, tx.AddTermOccurrence("word", "world", 5, []uint32{9}))
	require.NoError(t, tx.AddTermOccurrence("word", "world", 7, []uint32{1}))
	require.NoError(t, tx.GrantUser(1, "alice"))
	require.NoError(t, tx.GrantUser(3, "alice"))
	require.NoError(t, tx.Commit())
	return drv, tx
}

func termIterator(t *testing.T, drv bytekv.Driver, tx *txn.Transaction, term string) *TermIterator {
	t.Helper()
	typeno, found, err := tx.TypeDict().Lookup("word")
	require.NoError(t, err)
	require.True(t, found)
	termno, found, err := tx.TermDict().Lookup(term)
	require.NoError(t, err)
	require.True(t, found)
	it, err := NewTermIterator(drv, "word", term, typeno, termno)
	require.NoError(t, err)
	return it
}

func collect(t *testing.T, it Iterator) []uint32 {
	t.Helper()
	var docs []uint32
	doc, err := it.FirstDoc()
	require.NoError(t, err)
	for doc != 0 {
		docs = append(docs, doc)
		doc, err = it.SkipDoc(doc + 1)
		require.NoError(t, err)
	}
	return docs
}

func TestTermIteratorWalksChain(t *testing.T) {
	drv, tx := seededStorage(t)
	it := termIterator(t, drv, tx, "hello")
	require.Equal(t, []uint32{1, 3, 5}, collect(t, it))
}

func TestUnionIterator(t *testing.T) {
	drv, tx := seededStorage(t)
	hello := termIterator(t, drv, tx, "hello")
	world := termIterator(t, drv, tx, "world")
	require.Equal(t, []uint32{1, 3, 5, 7}, collect(t, NewUnion(hello, world)))
}

func TestIntersectIterator(t *testing.T) {
	drv, tx := seededStorage(t)
	hello := termIterator(t, drv, tx, "hello")
	world := termIterator(t, drv, tx, "world")
	require.Equal(t, []uint32{3, 5}, collect(t, NewIntersect(hello, world)))
}

func TestDifferenceIterator(t *testing.T) {
	drv, tx := seededStorage(t)
	hello := termIterator(t, drv, tx, "hello")
	world := termIterator(t, drv, tx, "world")
	require.Equal(t, []uint32{1}, collect(t, NewDifference(hello, world)))
}

func TestSequenceIteratorMatchesAdjacentPositions(t *testing.T) {
	drv, tx := seededStorage(t)
	hello := termIterator(t, drv, tx, "hello")
	world := termIterator(t, drv, tx, "world")
	// doc 3: hello@1, world@2 (adjacent) matches Sequence(0); doc 5:
	// hello@1, world@9 does not.
	require.Equal(t, []uint32{3}, collect(t, NewSequence(0, hello, world)))
}

func TestWithinIteratorUsesWindow(t *testing.T) {
	drv, tx := seededStorage(t)
	hello := termIterator(t, drv, tx, "hello")
	world := termIterator(t, drv, tx, "world")
	require.Equal(t, []uint32{3}, collect(t, NewWithin(2, hello, world)))
}

func TestInvertedACLIterator(t *testing.T) {
	drv, tx := seededStorage(t)
	userno, found, err := tx.UserDict().Lookup("alice")
	require.NoError(t, err)
	require.True(t, found)
	it, err := NewInvertedACLIterator(drv, "alice", userno)
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 3}, collect(t, it))
}

func TestInvertedACLIteratorUnknownUserIsEmpty(t *testing.T) {
	drv, _ := seededStorage(t)
	it, err := NewInvertedACLIterator(drv, "bob", 0)
	require.NoError(t, err)
	doc, err := it.FirstDoc()
	require.NoError(t, err)
	require.Equal(t, uint32(0), doc)
}

func TestNullIterator(t *testing.T) {
	it := NewNullIterator("word", "missing")
	doc, err := it.FirstDoc()
	require.NoError(t, err)
	require.Equal(t, uint32(0), doc)
	require.Equal(t, "word:missing", it.FeatureID())
}
