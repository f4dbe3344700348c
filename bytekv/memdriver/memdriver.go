// Package memdriver is an in-process, snapshot-isolated reference
// implementation of bytekv.Driver. It backs the document checker and the
// unit tests for every layer above bytekv; it is not meant for production
// persistence (see bytekv/boltdriver for that).
package memdriver

import (
	"bytes"
	"sort"
	"sync"

	"github.com/patrickfrey/strus-sub002/bytekv"
)

// Store is an ordered byte-key/byte-value map kept as a sorted slice of
// entries, protected by a single mutex. Writers stage their mutations in a
// local overlay and apply them atomically to the slice on Commit.
type Store struct {
	mu      sync.RWMutex
	entries []entry
}

type entry struct {
	key, value []byte
}

// Open returns a fresh, empty in-memory store. cfg.Path is ignored: distinct
// in-memory stores never alias each other.
func Open(cfg bytekv.Config) (*Store, error) {
	return &Store{}, nil
}

func (s *Store) find(key []byte) (int, bool) {
	i := sort.Search(len(s.entries), func(i int) bool { return bytes.Compare(s.entries[i].key, key) >= 0 })
	if i < len(s.entries) && bytes.Equal(s.entries[i].key, key) {
		return i, true
	}
	return i, false
}

func (s *Store) putLocked(key, value []byte) {
	i, found := s.find(key)
	if found {
		s.entries[i].value = append([]byte(nil), value...)
		return
	}
	s.entries = append(s.entries, entry{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = entry{key: append([]byte(nil), key...), value: append([]byte(nil), value...)}
}

func (s *Store) removeLocked(key []byte) {
	i, found := s.find(key)
	if !found {
		return
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
}

// ReadValue implements bytekv.Driver.
func (s *Store) ReadValue(key []byte) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, found := s.find(key)
	if !found {
		return nil, false, nil
	}
	return append([]byte(nil), s.entries[i].value...), true, nil
}

// WriteImm implements bytekv.Driver: a synchronous write bypassing any
// transaction, used by the immediate id allocator (spec §4.5).
func (s *Store) WriteImm(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(key, value)
	return nil
}

// RemoveImm implements bytekv.Driver.
func (s *Store) RemoveImm(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(key)
	return nil
}

// Close implements bytekv.Driver.
func (s *Store) Close() error { return nil }

// Transaction implements bytekv.Driver.
func (s *Store) Transaction() (bytekv.Writer, error) {
	return &writer{store: s}, nil
}

type op struct {
	remove       bool
	removeSub    bool
	key          []byte
	value        []byte
}

type writer struct {
	store *Store
	ops   []op
	done  bool
}

func (w *writer) Write(key, value []byte) error {
	if w.done {
		return bytekv.Wrap(bytekv.ErrProtocol, "write on a committed or rolled-back transaction")
	}
	w.ops = append(w.ops, op{key: append([]byte(nil), key...), value: append([]byte(nil), value...)})
	return nil
}

func (w *writer) Remove(key []byte) error {
	if w.done {
		return bytekv.Wrap(bytekv.ErrProtocol, "remove on a committed or rolled-back transaction")
	}
	w.ops = append(w.ops, op{remove: true, key: append([]byte(nil), key...)})
	return nil
}

func (w *writer) RemoveSubtree(prefix []byte) error {
	if w.done {
		return bytekv.Wrap(bytekv.ErrProtocol, "removeSubtree on a committed or rolled-back transaction")
	}
	w.ops = append(w.ops, op{removeSub: true, key: append([]byte(nil), prefix...)})
	return nil
}

func (w *writer) Commit() error {
	if w.done {
		return bytekv.Wrap(bytekv.ErrProtocol, "commit on a committed or rolled-back transaction")
	}
	w.done = true
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	for _, o := range w.ops {
		switch {
		case o.removeSub:
			var kept []entry
			for _, e := range w.store.entries {
				if !bytes.HasPrefix(e.key, o.key) {
					kept = append(kept, e)
				}
			}
			w.store.entries = kept
		case o.remove:
			w.store.removeLocked(o.key)
		default:
			w.store.putLocked(o.key, o.value)
		}
	}
	return nil
}

func (w *writer) Rollback() error {
	w.done = true
	w.ops = nil
	return nil
}

// cursor is a snapshot over the entries slice taken at creation time: later
// writes to the store are invisible to an already-open cursor, matching
// "Cursor contract: snapshot-isolated" (spec §4.1).
type cursor struct {
	snapshot []entry
	domain   []byte
	domainSz int
	pos      int // -1 = before first, len(snapshot) = past last
}

func (s *Store) NewCursor() (bytekv.Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make([]entry, len(s.entries))
	copy(snap, s.entries)
	return &cursor{snapshot: snap, pos: -1}, nil
}

func inDomain(key, domain []byte, domainSz int) bool {
	if domainSz <= 0 {
		return true
	}
	if len(key) < domainSz || len(domain) < domainSz {
		return false
	}
	return bytes.Equal(key[:domainSz], domain[:domainSz])
}

func (c *cursor) SeekUpperBound(key []byte, domainKeySize int) (bool, error) {
	c.domain, c.domainSz = key, domainKeySize
	i := sort.Search(len(c.snapshot), func(i int) bool { return bytes.Compare(c.snapshot[i].key, key) >= 0 })
	if i >= len(c.snapshot) || !inDomain(c.snapshot[i].key, c.domain, c.domainSz) {
		c.pos = len(c.snapshot)
		return false, nil
	}
	c.pos = i
	return true, nil
}

func (c *cursor) SeekFirst(domainPrefix []byte) (bool, error) {
	c.domain, c.domainSz = domainPrefix, len(domainPrefix)
	i := sort.Search(len(c.snapshot), func(i int) bool { return bytes.Compare(c.snapshot[i].key, domainPrefix) >= 0 })
	if i >= len(c.snapshot) || !inDomain(c.snapshot[i].key, c.domain, c.domainSz) {
		c.pos = len(c.snapshot)
		return false, nil
	}
	c.pos = i
	return true, nil
}

func (c *cursor) SeekLast(domainPrefix []byte) (bool, error) {
	c.domain, c.domainSz = domainPrefix, len(domainPrefix)
	last := -1
	for j := 0; j < len(c.snapshot); j++ {
		if inDomain(c.snapshot[j].key, c.domain, c.domainSz) {
			last = j
		} else if last >= 0 {
			break
		}
	}
	if last < 0 {
		c.pos = len(c.snapshot)
		return false, nil
	}
	c.pos = last
	return true, nil
}

func (c *cursor) SeekNext() (bool, error) {
	if c.pos < 0 || c.pos >= len(c.snapshot) {
		return false, nil
	}
	c.pos++
	if c.pos >= len(c.snapshot) || !inDomain(c.snapshot[c.pos].key, c.domain, c.domainSz) {
		return false, nil
	}
	return true, nil
}

func (c *cursor) SeekPrev() (bool, error) {
	if c.pos <= 0 {
		c.pos = -1
		return false, nil
	}
	c.pos--
	if !inDomain(c.snapshot[c.pos].key, c.domain, c.domainSz) {
		return false, nil
	}
	return true, nil
}

func (c *cursor) Key() []byte {
	if c.pos < 0 || c.pos >= len(c.snapshot) {
		return nil
	}
	return c.snapshot[c.pos].key
}

func (c *cursor) Value() []byte {
	if c.pos < 0 || c.pos >= len(c.snapshot) {
		return nil
	}
	return c.snapshot[c.pos].value
}

func (c *cursor) Close() error { return nil }
