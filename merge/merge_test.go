package merge

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/patrickfrey/strus-sub002/bytekv"
	"github.com/patrickfrey/strus-sub002/bytekv/memdriver"
	"github.com/patrickfrey/strus-sub002/storage"
)

func openDriver(t *testing.T) bytekv.Driver {
	t.Helper()
	drv, err := memdriver.Open(bytekv.Config{})
	require.NoError(t, err)
	return drv
}

func writePosting(t *testing.T, drv bytekv.Driver, chain *PostingChain, params Params, elems []Element[[]uint32]) {
	t.Helper()
	w, err := drv.Transaction()
	require.NoError(t, err)
	require.NoError(t, Write[[]uint32](w, chain, params, elems))
	require.NoError(t, w.Commit())
}

func TestPostingChainPacksIntoBlocksOfMaxSize(t *testing.T) {
	drv := openDriver(t)
	store := storage.NewPostingBlockStore(drv)
	chain := NewPostingChain(store, 1, 1)
	params := DefaultParams(4)

	elems := make([]Element[[]uint32], 10)
	for i := range elems {
		elems[i] = Element[[]uint32]{Key: uint32(i + 1), Payload: []uint32{uint32(i)}}
	}
	writePosting(t, drv, chain, params, elems)

	blk, found, err := store.Load(1, 1, 4)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint32(4), blk.BlockID())
	require.Equal(t, 4, blk.Len())

	blk2, found, err := store.Load(1, 1, 8)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint32(8), blk2.BlockID())

	blk3, found, err := store.Load(1, 1, 10)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint32(10), blk3.BlockID())
	require.Equal(t, 2, blk3.Len())
}

func TestPostingChainFoldsSeparateAppendsIntoFullBlocks(t *testing.T) {
	drv := openDriver(t)
	store := storage.NewPostingBlockStore(drv)
	chain := NewPostingChain(store, 1, 1)
	params := DefaultParams(4)

	for docno := uint32(1); docno <= 6; docno++ {
		writePosting(t, drv, chain, params, []Element[[]uint32]{{Key: docno, Payload: []uint32{0}}})
	}

	first, found, err := store.LoadFirst(1, 1)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint32(4), first.BlockID())
	require.Equal(t, 4, first.Len())

	last, found, err := store.LoadLast(1, 1)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint32(6), last.BlockID())
	require.Equal(t, 2, last.Len())
}

func TestPostingChainTombstoneDeletesWithinBlock(t *testing.T) {
	drv := openDriver(t)
	store := storage.NewPostingBlockStore(drv)
	chain := NewPostingChain(store, 1, 1)
	params := DefaultParams(4)

	elems := make([]Element[[]uint32], 4)
	for i := range elems {
		elems[i] = Element[[]uint32]{Key: uint32(i + 1), Payload: []uint32{uint32(i)}}
	}
	writePosting(t, drv, chain, params, elems)

	writePosting(t, drv, chain, params, []Element[[]uint32]{{Key: 2, Tombstone: true}})

	blk, found, err := store.Load(1, 1, 4)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 3, blk.Len())
	require.Nil(t, blk.PositionsOf(2))
	require.NotNil(t, blk.PositionsOf(1))
	require.NotNil(t, blk.PositionsOf(3))
	require.NotNil(t, blk.PositionsOf(4))
}

func TestBooleanChainAddAndDelete(t *testing.T) {
	drv := openDriver(t)
	store := storage.NewDocListStore(drv, 1, 1)
	chain := NewBooleanChain(store)
	params := DefaultParams(100)

	w, err := drv.Transaction()
	require.NoError(t, err)
	require.NoError(t, Write[struct{}](w, chain, params, []Element[struct{}]{{Key: 3}, {Key: 7}, {Key: 9}}))
	require.NoError(t, w.Commit())

	blk, found, err := store.Load(0)
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, blk.Members.Contains(3))
	require.True(t, blk.Members.Contains(7))
	require.True(t, blk.Members.Contains(9))

	w2, err := drv.Transaction()
	require.NoError(t, err)
	require.NoError(t, Write[struct{}](w2, chain, params, []Element[struct{}]{{Key: 7, Tombstone: true}}))
	require.NoError(t, w2.Commit())

	blk2, found, err := store.Load(0)
	require.NoError(t, err)
	require.True(t, found)
	require.False(t, blk2.Members.Contains(7))
	require.True(t, blk2.Members.Contains(3))
	require.True(t, blk2.Members.Contains(9))
}

func TestForwardChainAppendsPositions(t *testing.T) {
	drv := openDriver(t)
	store := storage.NewForwardBlockStore(drv)
	chain := NewForwardChain(store, 1, 42)
	params := DefaultParams(100)

	w, err := drv.Transaction()
	require.NoError(t, err)
	elems := []Element[string]{
		{Key: 0, Payload: "the"},
		{Key: 1, Payload: "quick"},
		{Key: 2, Payload: "fox"},
	}
	require.NoError(t, Write[string](w, chain, params, elems))
	require.NoError(t, w.Commit())

	blk, found, err := store.Load(1, 42, 0)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "quick", blk.TermAt(1))
	require.Equal(t, "fox", blk.TermAt(2))
}
