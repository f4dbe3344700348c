package txn

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/patrickfrey/strus-sub002/bytekv"
	"github.com/patrickfrey/strus-sub002/bytekv/memdriver"
	"github.com/patrickfrey/strus-sub002/storage"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	drv, err := memdriver.Open(bytekv.Config{})
	require.NoError(t, err)
	schema := storage.MetadataSchema{Columns: []bytekv.MetadataColumn{{Name: "rank", Type: "f32"}}}
	return Config{Driver: drv, Schema: schema}
}

func TestCommitWritesPostings(t *testing.T) {
	cfg := testConfig(t)
	tx := New(cfg)

	require.NoError(t, tx.AddTermOccurrence("word", "hello", 1, []uint32{0, 5}))
	require.NoError(t, tx.AddTermOccurrence("word", "hello", 2, []uint32{1}))
	require.NoError(t, tx.Commit())

	typeno, found, err := tx.typeDict.Lookup("word")
	require.NoError(t, err)
	require.True(t, found)
	termno, found, err := tx.termDict.Lookup("hello")
	require.NoError(t, err)
	require.True(t, found)

	it, err := storage.NewChainIterator(cfg.Driver, typeno, termno)
	require.NoError(t, err)
	hasNext, err := it.Next()
	require.NoError(t, err)
	require.True(t, hasNext)
	require.Equal(t, uint32(1), it.DocID())
	require.Equal(t, []uint32{0, 5}, it.Positions())
}

func TestCommitWritesMetadata(t *testing.T) {
	cfg := testConfig(t)
	tx := New(cfg)
	tx.SetMetadata(3, "rank", 0.5)
	require.NoError(t, tx.Commit())

	store := storage.NewMetadataBlockStore(cfg.Driver, cfg.Schema)
	blk, err := store.Load(3)
	require.NoError(t, err)
	v, err := blk.Get(3, "rank")
	require.NoError(t, err)
	require.Equal(t, 0.5, v)
}

func TestCommitWritesAttributes(t *testing.T) {
	cfg := testConfig(t)
	tx := New(cfg)
	tx.SetAttribute(7, "title", "hello world")
	require.NoError(t, tx.Commit())

	attribno, found, err := tx.attribDict.Lookup("title")
	require.NoError(t, err)
	require.True(t, found)

	value, found, err := cfg.Driver.ReadValue(storage.DocAttributeKey(7, attribno))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "hello world", string(value))
}

func TestCommitWritesAcl(t *testing.T) {
	cfg := testConfig(t)
	tx := New(cfg)
	require.NoError(t, tx.GrantUser(10, "alice"))
	require.NoError(t, tx.Commit())

	aclStore := storage.NewAclStore(cfg.Driver, 10)
	blk, ok, err := aclStore.Load(0)
	require.NoError(t, err)
	require.True(t, ok)

	userno, found, err := tx.userDict.Lookup("alice")
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, blk.Members.Contains(userno))
}

func TestCommitMergesAppendsAcrossCommitsIntoFullBlocks(t *testing.T) {
	cfg := testConfig(t)
	cfg.PostingBlockSize = 4

	var typeno, termno uint32
	for docno := uint32(1); docno <= 6; docno++ {
		tx := New(cfg)
		require.NoError(t, tx.AddTermOccurrence("word", "hello", docno, []uint32{0}))
		require.NoError(t, tx.Commit())
		var found bool
		typeno, found, _ = tx.typeDict.Lookup("word")
		require.True(t, found)
		termno, found, _ = tx.termDict.Lookup("hello")
		require.True(t, found)
	}

	store := storage.NewPostingBlockStore(cfg.Driver)
	first, ok, err := store.LoadFirst(typeno, termno)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(4), first.BlockID())
	require.Equal(t, 4, first.Len())

	last, ok, err := store.LoadLast(typeno, termno)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(6), last.BlockID())
	require.Equal(t, 2, last.Len())

	it, err := storage.NewChainIterator(cfg.Driver, typeno, termno)
	require.NoError(t, err)
	var docnos []uint32
	for {
		hasNext, err := it.Next()
		require.NoError(t, err)
		if !hasNext {
			break
		}
		docnos = append(docnos, it.DocID())
	}
	require.Equal(t, []uint32{1, 2, 3, 4, 5, 6}, docnos)
}

func TestDeleteDocumentRetractsPostingsAttributesAndForward(t *testing.T) {
	cfg := testConfig(t)

	tx := New(cfg)
	require.NoError(t, tx.AddTermOccurrence("word", "hello", 1, []uint32{0}))
	require.NoError(t, tx.AddTermOccurrence("word", "hello", 2, []uint32{0}))
	tx.SetAttribute(1, "title", "doc one")
	tx.SetMetadata(1, "rank", 0.5)
	require.NoError(t, tx.AddForwardTerm("word", 1, 0, "hello"))
	require.NoError(t, tx.Commit())

	typeno, found, err := tx.typeDict.Lookup("word")
	require.NoError(t, err)
	require.True(t, found)
	termno, found, err := tx.termDict.Lookup("hello")
	require.NoError(t, err)
	require.True(t, found)
	attribno, found, err := tx.attribDict.Lookup("title")
	require.NoError(t, err)
	require.True(t, found)

	summary, err := storage.SummarizeChain(cfg.Driver, typeno, termno)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Postings)

	tx2 := New(cfg)
	tx2.DeleteDocument(1)
	require.Equal(t, 1, tx2.NofDeleted())
	require.NoError(t, tx2.Commit())

	deltas := tx2.TermDeltas()
	require.Equal(t, []TermDelta{{TypeName: "word", Term: "hello", Docs: -1}}, deltas)

	summary, err = storage.SummarizeChain(cfg.Driver, typeno, termno)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Postings)

	it, err := storage.NewChainIterator(cfg.Driver, typeno, termno)
	require.NoError(t, err)
	hasNext, err := it.Next()
	require.NoError(t, err)
	require.True(t, hasNext)
	require.Equal(t, uint32(2), it.DocID())
	hasNext, err = it.Next()
	require.NoError(t, err)
	require.False(t, hasNext)

	_, found, err = cfg.Driver.ReadValue(storage.DocAttributeKey(1, attribno))
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = storage.NewInverseTermBlockStore(cfg.Driver).Load(1)
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = storage.NewForwardBlockStore(cfg.Driver).Load(typeno, 1, 0)
	require.NoError(t, err)
	require.False(t, found)

	store := storage.NewMetadataBlockStore(cfg.Driver, cfg.Schema)
	blk, err := store.Load(1)
	require.NoError(t, err)
	v, err := blk.Get(1, "rank")
	require.NoError(t, err)
	require.Equal(t, 0.0, v)
}

func TestCommitTwiceFails(t *testing.T) {
	cfg := testConfig(t)
	tx := New(cfg)
	tx.SetMetadata(1, "rank", 1.0)
	require.NoError(t, tx.Commit())
	require.Error(t, tx.Commit())
}
