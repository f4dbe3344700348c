package merge

import (
	"github.com/patrickfrey/strus-sub002/bytekv"
	"github.com/patrickfrey/strus-sub002/storage"
)

// PostingChain adapts storage.PostingBlockStore to Chain, keyed by docno
// with a per-docno position-list payload.
type PostingChain struct {
	store          *storage.PostingBlockStore
	typeno, termno uint32
}

// NewPostingChain wraps a posting chain for one (typeno,termno) term.
func NewPostingChain(store *storage.PostingBlockStore, typeno, termno uint32) *PostingChain {
	return &PostingChain{store: store, typeno: typeno, termno: termno}
}

func (c *PostingChain) LoadUpperBound(at uint32) ([]Element[[]uint32], uint32, bool, error) {
	blk, found, err := c.store.Load(c.typeno, c.termno, at)
	if err != nil || !found {
		return nil, 0, found, err
	}
	entries := blk.Entries()
	out := make([]Element[[]uint32], len(entries))
	for i, e := range entries {
		out[i] = Element[[]uint32]{Key: e.Docno, Payload: e.Positions}
	}
	return out, blk.BlockID(), true, nil
}

func (c *PostingChain) LoadLast() ([]Element[[]uint32], uint32, bool, error) {
	blk, found, err := c.store.LoadLast(c.typeno, c.termno)
	if err != nil || !found {
		return nil, 0, found, err
	}
	entries := blk.Entries()
	out := make([]Element[[]uint32], len(entries))
	for i, e := range entries {
		out[i] = Element[[]uint32]{Key: e.Docno, Payload: e.Positions}
	}
	return out, blk.BlockID(), true, nil
}

func (c *PostingChain) HasNext(after uint32) (bool, error) {
	_, _, found, err := c.LoadUpperBound(after + 1)
	return found, err
}

func (c *PostingChain) Store(w bytekv.Writer, entries []Element[[]uint32]) error {
	if len(entries) == 0 {
		return nil
	}
	pairs := make([]storage.PostingEntry, len(entries))
	for i, e := range entries {
		pairs[i] = storage.PostingEntry{Docno: e.Key, Positions: e.Payload}
	}
	return c.store.Store(w, c.typeno, c.termno, storage.NewPostingBlockFromEntries(pairs))
}

func (c *PostingChain) Remove(w bytekv.Writer, blockID uint32) error {
	return c.store.Remove(w, c.typeno, c.termno, blockID)
}

// BooleanChain adapts storage.BooleanBlockStore to Chain. Members carry no
// payload beyond presence, so the element type is struct{}.
type BooleanChain struct {
	store *storage.BooleanBlockStore
}

// NewBooleanChain wraps a doclist/user-ACL/ACL chain.
func NewBooleanChain(store *storage.BooleanBlockStore) *BooleanChain {
	return &BooleanChain{store: store}
}

func (c *BooleanChain) LoadUpperBound(at uint32) ([]Element[struct{}], uint32, bool, error) {
	blk, found, err := c.store.Load(at)
	if err != nil || !found {
		return nil, 0, found, err
	}
	it := blk.Members.Iterator()
	var out []Element[struct{}]
	for it.Next() {
		out = append(out, Element[struct{}]{Key: it.Value()})
	}
	return out, blk.BlockID(), true, nil
}

func (c *BooleanChain) LoadLast() ([]Element[struct{}], uint32, bool, error) {
	blk, found, err := c.store.LoadLast()
	if err != nil || !found {
		return nil, 0, found, err
	}
	it := blk.Members.Iterator()
	var out []Element[struct{}]
	for it.Next() {
		out = append(out, Element[struct{}]{Key: it.Value()})
	}
	return out, blk.BlockID(), true, nil
}

func (c *BooleanChain) HasNext(after uint32) (bool, error) {
	_, _, found, err := c.LoadUpperBound(after + 1)
	return found, err
}

func (c *BooleanChain) Store(w bytekv.Writer, entries []Element[struct{}]) error {
	if len(entries) == 0 {
		return nil
	}
	blk := storage.NewBooleanBlock()
	for _, e := range entries {
		blk.Add(e.Key)
	}
	return c.store.Store(w, blk)
}

func (c *BooleanChain) Remove(w bytekv.Writer, blockID uint32) error {
	return c.store.Remove(w, blockID)
}

// ForwardChain adapts storage.ForwardBlockStore to Chain, keyed by position
// with a per-position term payload.
type ForwardChain struct {
	store         *storage.ForwardBlockStore
	typeno, docno uint32
}

// NewForwardChain wraps a document's forward-index chain for one type.
func NewForwardChain(store *storage.ForwardBlockStore, typeno, docno uint32) *ForwardChain {
	return &ForwardChain{store: store, typeno: typeno, docno: docno}
}

func (c *ForwardChain) LoadUpperBound(at uint32) ([]Element[string], uint32, bool, error) {
	blk, found, err := c.store.Load(c.typeno, c.docno, at)
	if err != nil || !found {
		return nil, 0, found, err
	}
	entries := blk.Entries()
	out := make([]Element[string], len(entries))
	for i, e := range entries {
		out[i] = Element[string]{Key: e.Position, Payload: e.Term}
	}
	return out, blk.BlockID(), true, nil
}

func (c *ForwardChain) LoadLast() ([]Element[string], uint32, bool, error) {
	blk, found, err := c.store.LoadLast(c.typeno, c.docno)
	if err != nil || !found {
		return nil, 0, found, err
	}
	entries := blk.Entries()
	out := make([]Element[string], len(entries))
	for i, e := range entries {
		out[i] = Element[string]{Key: e.Position, Payload: e.Term}
	}
	return out, blk.BlockID(), true, nil
}

func (c *ForwardChain) HasNext(after uint32) (bool, error) {
	_, _, found, err := c.LoadUpperBound(after + 1)
	return found, err
}

func (c *ForwardChain) Store(w bytekv.Writer, entries []Element[string]) error {
	if len(entries) == 0 {
		return nil
	}
	pairs := make([]storage.ForwardEntry, len(entries))
	for i, e := range entries {
		pairs[i] = storage.ForwardEntry{Position: e.Key, Term: e.Payload}
	}
	return c.store.Store(w, c.typeno, c.docno, storage.NewForwardBlockFromEntries(pairs))
}

func (c *ForwardChain) Remove(w bytekv.Writer, blockID uint32) error {
	return c.store.Remove(w, c.typeno, c.docno, blockID)
}
