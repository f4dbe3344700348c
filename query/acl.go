package query

import (
	"github.com/patrickfrey/strus-sub002/bytekv"
	"github.com/patrickfrey/strus-sub002/storage"
)

// InvertedACLIterator walks a user's UserAcl boolean chain (spec §4.8),
// yielding the docnos readable by that user in ascending order. Empty if
// storage has no ACL configured or the user is unknown, mirroring
// TermIterator's handling of an absent chain.
type InvertedACLIterator struct {
	store    *storage.BooleanBlockStore
	userName string
	found    bool
	block    *storage.BooleanBlock
	it       storage.DocIDIterator
	current  uint32
	df       int
}

// NewInvertedACLIterator opens an inverted-ACL iterator for userno. userno
// == 0 (unknown user) yields an always-empty iterator.
func NewInvertedACLIterator(drv bytekv.Driver, userName string, userno uint32) (*InvertedACLIterator, error) {
	if userno == 0 {
		return &InvertedACLIterator{userName: userName}, nil
	}
	store := storage.NewUserAclStore(drv, userno)
	df, err := countMembers(store)
	if err != nil {
		return nil, err
	}
	blk, ok, err := store.Load(0)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &InvertedACLIterator{userName: userName, df: df}, nil
	}
	return &InvertedACLIterator{
		store:    store,
		userName: userName,
		found:    true,
		block:    blk,
		it:       blk.Members.Iterator(),
		df:       df,
	}, nil
}

func countMembers(store *storage.BooleanBlockStore) (int, error) {
	total := 0
	next := uint32(0)
	for {
		blk, ok, err := store.Load(next)
		if err != nil {
			return 0, err
		}
		if !ok {
			return total, nil
		}
		total += blk.Len()
		next = blk.BlockID() + 1
	}
}

func (a *InvertedACLIterator) loadBlockAfter(id uint32) (bool, error) {
	blk, ok, err := a.store.Load(id + 1)
	if err != nil || !ok {
		return false, err
	}
	a.block = blk
	a.it = blk.Members.Iterator()
	return true, nil
}

func (a *InvertedACLIterator) SkipDoc(target uint32) (uint32, error) {
	if !a.found {
		return 0, nil
	}
	if target == 0 {
		target = 1
	}
	for {
		a.it.AdvanceIfNeeded(target)
		if a.it.Next() {
			a.current = a.it.Value()
			return a.current, nil
		}
		ok, err := a.loadBlockAfter(a.block.BlockID())
		if err != nil {
			return 0, err
		}
		if !ok {
			a.found = false
			return 0, nil
		}
	}
}

// SkipPos always reports a membership-only iterator's position as the
// requested target itself: boolean blocks carry no position data, so any
// position a caller asks about trivially "matches" within the current
// document.
func (a *InvertedACLIterator) SkipPos(target uint32) (uint32, error) { return target, nil }

func (a *InvertedACLIterator) FirstDoc() (uint32, error) { return a.SkipDoc(1) }

func (a *InvertedACLIterator) DocumentFrequency() (int, error) { return a.df, nil }

func (a *InvertedACLIterator) FeatureID() string { return "acl:" + a.userName }
