// Package metacache provides a bounded, read-through cache of
// storage.MetadataBlock values keyed by block number (spec §4.4 C4). It
// exists to make metadata field reads (the common case in ranking: a weight
// function reading one field per scored document) avoid a KV round trip for
// hot blocks, while staying correct under concurrent writers: every commit
// invalidates the blocks it touched so a reader can never observe metadata
// older than the commit it is supposed to see.
package metacache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/patrickfrey/strus-sub002/bytekv"
	"github.com/patrickfrey/strus-sub002/storage"
)

// Cache is a bounded LRU of docno-block-number -> *storage.MetadataBlock.
// Last-installer-wins: if two goroutines race to load the same block after
// a miss, whichever Add call lands second is the one subsequent readers see
// — acceptable because both loaders read the same committed state and
// produce byte-identical blocks.
type Cache struct {
	inner  *lru.Cache[uint32, *storage.MetadataBlock]
	store  *storage.MetadataBlockStore
}

// New creates a Cache of the given capacity (number of blocks) backed by a
// MetadataBlockStore for misses.
func New(capacity int, store *storage.MetadataBlockStore) (*Cache, error) {
	inner, err := lru.New[uint32, *storage.MetadataBlock](capacity)
	if err != nil {
		return nil, bytekv.Wrap(bytekv.ErrProtocol, "creating metadata cache: %v", err)
	}
	return &Cache{inner: inner, store: store}, nil
}

// Get returns the metadata block covering docno, loading it from the store
// on a miss.
func (c *Cache) Get(docno uint32) (*storage.MetadataBlock, error) {
	blockno := storage.BlockNumber(docno)
	if blk, ok := c.inner.Get(blockno); ok {
		return blk, nil
	}
	blk, err := c.store.Load(docno)
	if err != nil {
		return nil, err
	}
	c.inner.Add(blockno, blk)
	return blk, nil
}

// Invalidate evicts the cached block covering docno, called by the commit
// pipeline (package txn) immediately after a transaction that wrote
// metadata for docno commits, so the next reader reloads the fresh block
// rather than serving a stale cached copy (spec §4.4: "commit
// invalidation").
func (c *Cache) Invalidate(docno uint32) {
	c.inner.Remove(storage.BlockNumber(docno))
}

// InvalidateBlock evicts a cached block by its raw block number, used when
// the committing code already has the block number at hand (e.g. a merge
// rewriting a whole block) and doesn't need to derive it from a docno.
func (c *Cache) InvalidateBlock(blockno uint32) {
	c.inner.Remove(blockno)
}

// Len reports the number of blocks currently cached (for diagnostics/tests).
func (c *Cache) Len() int {
	return c.inner.Len()
}
