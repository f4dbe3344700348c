package storage

import (
	"github.com/patrickfrey/strus-sub002/bytekv"
)

// PostingIterator walks a term's occurrences across the whole posting
// chain, in ascending docno order, crossing block boundaries transparently.
// query package builds its boolean/proximity algebra (spec §4.8) on top of
// this, the same way the teacher's query engine built a heap over
// PostingListIterator instances.
type PostingIterator interface {
	// Next advances to the next docno in the chain.
	Next() (bool, error)
	// SkipDoc advances to the first docno >= target, for structure-bounded
	// and AND-style joins that can skip large gaps cheaply.
	SkipDoc(target uint32) (bool, error)
	// DocID returns the current docno. Valid only after Next/SkipDoc
	// returned true.
	DocID() uint32
	// Frequency returns the number of positions recorded for the current
	// document.
	Frequency() int
	// Positions returns the current document's within-document positions.
	Positions() []uint32
}

// ChainIterator implements PostingIterator over a PostingBlockStore chain.
type ChainIterator struct {
	store          *PostingBlockStore
	typeno, termno uint32
	block          *PostingBlock
	blockIt        DocIDIterator
	docID          uint32
	valid          bool
}

// NewChainIterator creates an iterator positioned before the first posting
// of (typeno, termno).
func NewChainIterator(drv bytekv.Driver, typeno, termno uint32) (PostingIterator, error) {
	store := NewPostingBlockStore(drv)
	blk, ok, err := store.LoadFirst(typeno, termno)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &EmptyIterator{}, nil
	}
	return &ChainIterator{
		store:  store,
		typeno: typeno,
		termno: termno,
		block:  blk,
		blockIt: blk.Docnos.Iterator(),
	}, nil
}

func (it *ChainIterator) loadBlockAfter(id uint32) (bool, error) {
	blk, ok, err := it.store.Load(it.typeno, it.termno, id+1)
	if err != nil || !ok {
		return false, err
	}
	it.block = blk
	it.blockIt = blk.Docnos.Iterator()
	return true, nil
}

func (it *ChainIterator) Next() (bool, error) {
	for {
		if it.blockIt.Next() {
			it.docID = it.blockIt.Value()
			it.valid = true
			return true, nil
		}
		ok, err := it.loadBlockAfter(it.block.BlockID())
		if err != nil {
			return false, err
		}
		if !ok {
			it.valid = false
			return false, nil
		}
	}
}

func (it *ChainIterator) SkipDoc(target uint32) (bool, error) {
	for {
		if it.valid && it.docID >= target {
			return true, nil
		}
		if it.block.BlockID() < target {
			ok, err := it.loadBlockAfter(target - 1)
			if err != nil {
				return false, err
			}
			if !ok {
				it.valid = false
				return false, nil
			}
		}
		it.blockIt.AdvanceIfNeeded(target)
		if !it.blockIt.Next() {
			ok, err := it.loadBlockAfter(it.block.BlockID())
			if err != nil {
				return false, err
			}
			if !ok {
				it.valid = false
				return false, nil
			}
			continue
		}
		it.docID = it.blockIt.Value()
		it.valid = true
		if it.docID >= target {
			return true, nil
		}
	}
}

func (it *ChainIterator) DocID() uint32 { return it.docID }

func (it *ChainIterator) Frequency() int {
	if !it.valid {
		return 0
	}
	return it.block.FrequencyOf(it.docID)
}

func (it *ChainIterator) Positions() []uint32 {
	if !it.valid {
		return nil
	}
	return it.block.PositionsOf(it.docID)
}

// EmptyIterator is a PostingIterator with no postings, returned for terms
// with no chain at all.
type EmptyIterator struct{}

func (it *EmptyIterator) Next() (bool, error)          { return false, nil }
func (it *EmptyIterator) SkipDoc(uint32) (bool, error) { return false, nil }
func (it *EmptyIterator) DocID() uint32                { return 0 }
func (it *EmptyIterator) Frequency() int               { return 0 }
func (it *EmptyIterator) Positions() []uint32          { return nil }
