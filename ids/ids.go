// Package ids implements the two identifier-allocation strategies the core
// uses for numbering terms, types, users and documents (spec §4.5):
//
//   - ImmediateAllocator persists every allocated id right away, outside of
//     any enclosing transaction. An id it hands out is never reused, even if
//     the caller's transaction later rolls back — appropriate for
//     identifiers a rolled-back transaction may have already leaked into
//     other structures (e.g. a docno referenced by a forward block written
//     before the abort).
//   - DeferredAllocator buffers allocation in memory for the lifetime of one
//     transaction and only persists the final counter when the caller
//     explicitly flushes it as part of that transaction's commit. If the
//     transaction rolls back, the in-memory counter is simply discarded and
//     the ids it handed out become available again — appropriate for
//     identifiers that are purely internal to the transaction doing the
//     allocating (e.g. newly introduced term numbers).
package ids

import (
	"sync"

	"github.com/patrickfrey/strus-sub002/bytekv"
	"github.com/patrickfrey/strus-sub002/storage"
)

// ImmediateAllocator hands out ids that are durable the instant Next
// returns, via bytekv.Driver.WriteImm.
type ImmediateAllocator struct {
	drv bytekv.Driver
	key []byte
	mu  sync.Mutex
}

// NewImmediateAllocator creates an allocator whose counter is stored under
// the given variable name (spec §3.2's variable family).
func NewImmediateAllocator(drv bytekv.Driver, variableName string) *ImmediateAllocator {
	return &ImmediateAllocator{drv: drv, key: storage.VariableKey(variableName)}
}

func (a *ImmediateAllocator) current() (uint32, error) {
	value, found, err := a.drv.ReadValue(a.key)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	if len(value) != 4 {
		return 0, bytekv.Wrap(bytekv.ErrCorruptData, "variable %x has unexpected width %d", a.key, len(value))
	}
	return storage.DecodeUint32(value), nil
}

// Next allocates and durably persists the next id.
func (a *ImmediateAllocator) Next() (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	cur, err := a.current()
	if err != nil {
		return 0, err
	}
	next := cur + 1
	if err := a.drv.WriteImm(a.key, storage.EncodeUint32(next)); err != nil {
		return 0, err
	}
	return next, nil
}

// Current returns the last allocated id without allocating a new one.
func (a *ImmediateAllocator) Current() (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current()
}

// DeferredAllocator hands out ids backed by an in-memory counter seeded
// from storage at creation time. Nothing is written until Flush is called
// within the transaction that owns the allocated ids; on rollback, the
// caller simply discards the DeferredAllocator.
type DeferredAllocator struct {
	drv     bytekv.Driver
	key     []byte
	base    uint32
	counter uint32
}

// NewDeferredAllocator creates an allocator seeded from the current value
// of the given variable.
func NewDeferredAllocator(drv bytekv.Driver, variableName string) (*DeferredAllocator, error) {
	key := storage.VariableKey(variableName)
	value, found, err := drv.ReadValue(key)
	if err != nil {
		return nil, err
	}
	var base uint32
	if found {
		if len(value) != 4 {
			return nil, bytekv.Wrap(bytekv.ErrCorruptData, "variable %x has unexpected width %d", key, len(value))
		}
		base = storage.DecodeUint32(value)
	}
	return &DeferredAllocator{drv: drv, key: key, base: base, counter: base}, nil
}

// Next allocates the next id purely in memory.
func (a *DeferredAllocator) Next() uint32 {
	a.counter++
	return a.counter
}

// Allocated reports how many ids have been handed out by this allocator
// instance so far.
func (a *DeferredAllocator) Allocated() uint32 {
	return a.counter - a.base
}

// Flush persists the final counter value within the given transaction. Call
// this once, immediately before the transaction's Commit.
func (a *DeferredAllocator) Flush(w bytekv.Writer) error {
	if a.counter == a.base {
		return nil
	}
	return w.Write(a.key, storage.EncodeUint32(a.counter))
}
