// Package merge implements the block merge/split/join writer shared by every
// chain-structured block family (posting, boolean, forward). Rather than
// have each family reimplement the same fill-ratio bookkeeping, it is
// written once against a small Chain capability interface and the families
// each provide a thin adapter (see adapters.go).
package merge

import "github.com/patrickfrey/strus-sub002/bytekv"

// Params tunes the merge/split/join algorithm for one chain.
type Params struct {
	MaxBlockSize int
	MinFillRatio float64
	MaxFillRatio float64
}

// DefaultParams joins blocks under half full and splits blocks once they
// exceed MaxBlockSize, matching the fill-ratio bounds every block family
// uses unless a caller has a specific reason to tune them.
func DefaultParams(maxBlockSize int) Params {
	return Params{MaxBlockSize: maxBlockSize, MinFillRatio: 0.5, MaxFillRatio: 1.0}
}

// Element is one item to merge into a chain, ordered ascending by Key.
// Tombstone marks a deletion: the merge drops any existing record at Key
// instead of keeping or replacing it.
type Element[T any] struct {
	Key       uint32
	Payload   T
	Tombstone bool
}

// Chain adapts one concrete block family to the merge algorithm.
type Chain[T any] interface {
	// LoadUpperBound returns the entries of the block whose chain key is
	// the smallest key >= at, and that key, or found=false if no such
	// block exists.
	LoadUpperBound(at uint32) (entries []Element[T], blockID uint32, found bool, err error)
	// LoadLast returns the entries of the chain's trailing (highest-keyed)
	// block, or found=false if the chain is empty.
	LoadLast() (entries []Element[T], blockID uint32, found bool, err error)
	// HasNext reports whether a block with key > after exists.
	HasNext(after uint32) (bool, error)
	// Store persists entries (ascending by Key, no tombstones) as one
	// new block keyed by the entries' own last key.
	Store(w bytekv.Writer, entries []Element[T]) error
	// Remove deletes the block keyed by blockID.
	Remove(w bytekv.Writer, blockID uint32) error
}

// Write merges newElements (ascending by Key) into chain following the
// merge/split/join algorithm: phase 1 folds new elements into every
// existing block they overlap, joining under-full trailing blocks instead
// of writing them back as-is; phase 2 packs whatever is left, plus any
// still-open block carried out of phase 1, into fresh blocks of up to
// MaxBlockSize elements.
func Write[T any](w bytekv.Writer, chain Chain[T], params Params, newElements []Element[T]) error {
	i, n := 0, len(newElements)
	var pending []Element[T]
	var toRemove []uint32

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		for _, id := range toRemove {
			if err := chain.Remove(w, id); err != nil {
				return err
			}
		}
		if err := storeSplit(w, chain, params, pending); err != nil {
			return err
		}
		pending, toRemove = nil, nil
		return nil
	}

	// Pure append past the end of the chain: LoadUpperBound never matches a
	// key beyond every existing block, so without this step each append
	// would land in its own fresh block forever. Fold the trailing block's
	// contents into pending first when it still has room, mirroring the
	// original's loadLast+initcopy step ahead of packing.
	if n > 0 {
		lastEntries, lastID, found, err := chain.LoadLast()
		if err != nil {
			return err
		}
		if found && newElements[0].Key > lastID && len(lastEntries) < params.MaxBlockSize {
			pending = lastEntries
			toRemove = append(toRemove, lastID)
		}
	}

	for i < n {
		entries, blockID, found, err := chain.LoadUpperBound(newElements[i].Key)
		if err != nil {
			return err
		}
		if !found {
			break
		}
		j := i
		for j < n && newElements[j].Key <= blockID {
			j++
		}
		pending = merge2(pending, merge2(entries, newElements[i:j]))
		toRemove = append(toRemove, blockID)
		i = j

		hasNext, err := chain.HasNext(blockID)
		if err != nil {
			return err
		}
		full := len(pending) >= params.MaxBlockSize
		fillRatio := float64(len(pending)) / float64(params.MaxBlockSize)
		if hasNext || full || fillRatio >= params.MinFillRatio {
			if err := flush(); err != nil {
				return err
			}
			continue
		}
		// Below minimum fill with nothing following in the chain: keep
		// pending open and fold the next insertion point into it
		// instead of writing an under-full block (anti-fragmentation).
	}

	for i < n || len(pending) > 0 {
		for i < n && len(pending) < params.MaxBlockSize {
			if !newElements[i].Tombstone {
				pending = append(pending, newElements[i])
			}
			i++
		}
		if len(pending) == 0 {
			break
		}
		lastKey := pending[len(pending)-1].Key
		_, oldID, found, err := chain.LoadUpperBound(lastKey)
		if err != nil {
			return err
		}
		if found && oldID >= lastKey {
			toRemove = append(toRemove, oldID)
		}
		if err := flush(); err != nil {
			return err
		}
	}
	return nil
}

// storeSplit halves pending by element count when it exceeds
// MaxBlockSize*MaxFillRatio, so both halves satisfy the fill bounds; each
// half's chain key becomes its own last element's key.
func storeSplit[T any](w bytekv.Writer, chain Chain[T], params Params, pending []Element[T]) error {
	limit := int(float64(params.MaxBlockSize) * params.MaxFillRatio)
	if limit <= 0 || len(pending) <= limit {
		return chain.Store(w, pending)
	}
	mid := len(pending) / 2
	if err := chain.Store(w, pending[:mid]); err != nil {
		return err
	}
	return chain.Store(w, pending[mid:])
}

// merge2 merges two ascending-by-Key element slices. On a duplicate key b
// wins, since b is always the newer of the two inputs; a Tombstone entry
// from b drops the key from the result entirely.
func merge2[T any](a, b []Element[T]) []Element[T] {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]Element[T], 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Key < b[j].Key:
			out = append(out, a[i])
			i++
		case a[i].Key > b[j].Key:
			if !b[j].Tombstone {
				out = append(out, b[j])
			}
			j++
		default:
			if !b[j].Tombstone {
				out = append(out, b[j])
			}
			i++
			j++
		}
	}
	for ; i < len(a); i++ {
		out = append(out, a[i])
	}
	for ; j < len(b); j++ {
		if !b[j].Tombstone {
			out = append(out, b[j])
		}
	}
	return out
}
