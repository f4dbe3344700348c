package txn

import (
	"github.com/patrickfrey/strus-sub002/bytekv"
	"github.com/patrickfrey/strus-sub002/ids"
	"github.com/patrickfrey/strus-sub002/storage"
)

// Dictionary resolves a name (a term type, a term value, or a user name) to
// a stable, globally unique number, assigning a fresh one on first sight.
// Numbers are allocated immediately (ids.ImmediateAllocator): once handed
// out they are never reused, even if the transaction that requested them
// rolls back, because other concurrently-committing transactions may have
// already observed and relied on the assignment.
type Dictionary struct {
	drv    bytekv.Driver
	family storage.Family
	alloc  *ids.ImmediateAllocator
}

// NewDictionary opens a name dictionary for the given family, backed by a
// counter variable of the given name.
func NewDictionary(drv bytekv.Driver, family storage.Family, counterVariable string) *Dictionary {
	return &Dictionary{drv: drv, family: family, alloc: ids.NewImmediateAllocator(drv, counterVariable)}
}

// Family returns the block family this dictionary's names are keyed under,
// used by callers (e.g. package client) that need to scan every assigned
// name directly.
func (d *Dictionary) Family() storage.Family { return d.family }

// Driver exposes the underlying bytekv.Driver.
func (d *Dictionary) Driver() bytekv.Driver { return d.drv }

// Lookup returns the number assigned to name, if any.
func (d *Dictionary) Lookup(name string) (uint32, bool, error) {
	value, found, err := d.drv.ReadValue(storage.NameKey(d.family, name))
	if err != nil || !found {
		return 0, false, err
	}
	return storage.DecodeUint32(value), true, nil
}

// NameOf reverse-resolves id to the name it was assigned, scanning the
// dictionary's name family since no reverse index is kept. Used only by
// rare id-to-name paths (retracting a term occurrence found by number
// during document deletion); everyday lookups go through Lookup.
func (d *Dictionary) NameOf(id uint32) (string, bool, error) {
	cur, err := d.drv.NewCursor()
	if err != nil {
		return "", false, err
	}
	defer cur.Close()
	prefix := []byte{byte(d.family)}
	for ok, err := cur.SeekFirst(prefix); ; ok, err = cur.SeekNext() {
		if err != nil {
			return "", false, err
		}
		if !ok {
			return "", false, nil
		}
		if storage.DecodeUint32(cur.Value()) == id {
			return string(cur.Key()[1:]), true, nil
		}
	}
}

// LookupOrCreate returns the number assigned to name, allocating and
// durably persisting a new one if name has never been seen before.
func (d *Dictionary) LookupOrCreate(name string) (uint32, error) {
	if id, found, err := d.Lookup(name); err != nil {
		return 0, err
	} else if found {
		return id, nil
	}
	id, err := d.alloc.Next()
	if err != nil {
		return 0, err
	}
	if err := d.drv.WriteImm(storage.NameKey(d.family, name), storage.EncodeUint32(id)); err != nil {
		return 0, err
	}
	return id, nil
}
