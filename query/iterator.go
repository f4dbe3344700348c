package query

import (
	"github.com/patrickfrey/strus-sub002/bytekv"
	"github.com/patrickfrey/strus-sub002/storage"
)

// Iterator is the contract every term and join iterator implements (spec
// §4.8). Iterators are single-threaded and move forward only: SkipDoc with
// a target at or below the current docno does not rewind, so calling
// SkipDoc(1) again does not restart an iterator.
type Iterator interface {
	// SkipDoc advances to the first docno >= target, or returns 0 if
	// none remains.
	SkipDoc(target uint32) (uint32, error)
	// SkipPos advances, within the current document, to the first
	// position >= target, or returns 0 if none remains.
	SkipPos(target uint32) (uint32, error)
	// FirstDoc is SkipDoc(1).
	FirstDoc() (uint32, error)
	// DocumentFrequency returns the iterator's term/expression frequency
	// estimate, used by weighting functions such as BM25.
	DocumentFrequency() (int, error)
	// FeatureID names the iterator for debugging and query explain output.
	FeatureID() string
}

// TermIterator walks one type/term's posting chain (spec §4.8's term
// iterator), delegating cross-block skip_doc to storage.PostingIterator and
// tracking an in-block position cursor for skip_pos.
type TermIterator struct {
	typeName, term string
	postings       storage.PostingIterator
	df             int
	positions      []uint32
	posIdx         int
}

// NewTermIterator opens a term iterator over (typeno,termno)'s posting
// chain. df is the chain's total document count, used for weighting.
func NewTermIterator(drv bytekv.Driver, typeName, term string, typeno, termno uint32) (*TermIterator, error) {
	postings, err := storage.NewChainIterator(drv, typeno, termno)
	if err != nil {
		return nil, err
	}
	summary, err := storage.SummarizeChain(drv, typeno, termno)
	if err != nil {
		return nil, err
	}
	return &TermIterator{typeName: typeName, term: term, postings: postings, df: summary.Postings}, nil
}

func (t *TermIterator) SkipDoc(target uint32) (uint32, error) {
	if target == 0 {
		target = 1
	}
	ok, err := t.postings.SkipDoc(target)
	if err != nil || !ok {
		return 0, err
	}
	t.positions = t.postings.Positions()
	t.posIdx = 0
	return t.postings.DocID(), nil
}

func (t *TermIterator) SkipPos(target uint32) (uint32, error) {
	for t.posIdx < len(t.positions) {
		if t.positions[t.posIdx] >= target {
			return t.positions[t.posIdx], nil
		}
		t.posIdx++
	}
	return 0, nil
}

func (t *TermIterator) FirstDoc() (uint32, error) { return t.SkipDoc(1) }

func (t *TermIterator) DocumentFrequency() (int, error) { return t.df, nil }

func (t *TermIterator) FeatureID() string { return t.typeName + ":" + t.term }

// NullIterator is returned for a term with no id or no postings (spec
// §4.8): skip_doc always fails, but the type/term strings are preserved so
// callers can still explain why a query matched nothing.
type NullIterator struct {
	typeName, term string
}

// NewNullIterator builds a null iterator preserving typeName/term for
// debugging.
func NewNullIterator(typeName, term string) *NullIterator {
	return &NullIterator{typeName: typeName, term: term}
}

func (n *NullIterator) SkipDoc(uint32) (uint32, error)      { return 0, nil }
func (n *NullIterator) SkipPos(uint32) (uint32, error)      { return 0, nil }
func (n *NullIterator) FirstDoc() (uint32, error)           { return 0, nil }
func (n *NullIterator) DocumentFrequency() (int, error)     { return 0, nil }
func (n *NullIterator) FeatureID() string                   { return n.typeName + ":" + n.term }
