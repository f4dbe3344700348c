// Package boltdriver implements bytekv.Driver on top of go.etcd.io/bbolt, a
// single-file ordered byte-key/byte-value store whose Cursor/Bucket/Tx API
// maps directly onto the core's cursor/writer contract (spec §4.1). This is
// the reference "real" persistence driver; memdriver is the in-process one
// used by tests and the document checker.
package boltdriver

import (
	"go.etcd.io/bbolt"

	"github.com/patrickfrey/strus-sub002/bytekv"
)

var rootBucket = []byte("strus")

// Store wraps a *bbolt.DB. All keys live in a single top-level bucket; the
// core's own key layout (family-prefix ‖ ...) provides the effective
// namespacing, matching "entirely inside the KV store. No direct filesystem
// assumptions beyond what the KV driver requires" (spec §6.2).
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if necessary) a bbolt-backed store at cfg.Path.
func Open(cfg bytekv.Config) (*Store, error) {
	db, err := bbolt.Open(cfg.Path, 0600, nil)
	if err != nil {
		return nil, bytekv.Wrap(bytekv.ErrIo, "opening bbolt store at %q: %v", cfg.Path, err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rootBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, bytekv.Wrap(bytekv.ErrIo, "initializing root bucket: %v", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) ReadValue(key []byte) ([]byte, bool, error) {
	var out []byte
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(rootBucket)
		v := b.Get(key)
		if v != nil {
			out = append([]byte(nil), v...)
			found = true
		}
		return nil
	})
	if err != nil {
		return nil, false, bytekv.Wrap(bytekv.ErrIo, "read %x: %v", key, err)
	}
	return out, found, nil
}

func (s *Store) WriteImm(key, value []byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(rootBucket).Put(key, value)
	})
	if err != nil {
		return bytekv.Wrap(bytekv.ErrIo, "writeImm %x: %v", key, err)
	}
	return nil
}

func (s *Store) RemoveImm(key []byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(rootBucket).Delete(key)
	})
	if err != nil {
		return bytekv.Wrap(bytekv.ErrIo, "removeImm %x: %v", key, err)
	}
	return nil
}

func (s *Store) Transaction() (bytekv.Writer, error) {
	tx, err := s.db.Begin(true)
	if err != nil {
		return nil, bytekv.Wrap(bytekv.ErrIo, "begin transaction: %v", err)
	}
	return &writer{tx: tx, bucket: tx.Bucket(rootBucket)}, nil
}

type writer struct {
	tx     *bbolt.Tx
	bucket *bbolt.Bucket
	done   bool
}

func (w *writer) Write(key, value []byte) error {
	if w.done {
		return bytekv.Wrap(bytekv.ErrProtocol, "write on a committed or rolled-back transaction")
	}
	if err := w.bucket.Put(key, value); err != nil {
		return bytekv.Wrap(bytekv.ErrIo, "write %x: %v", key, err)
	}
	return nil
}

func (w *writer) Remove(key []byte) error {
	if w.done {
		return bytekv.Wrap(bytekv.ErrProtocol, "remove on a committed or rolled-back transaction")
	}
	if err := w.bucket.Delete(key); err != nil {
		return bytekv.Wrap(bytekv.ErrIo, "remove %x: %v", key, err)
	}
	return nil
}

func (w *writer) RemoveSubtree(prefix []byte) error {
	if w.done {
		return bytekv.Wrap(bytekv.ErrProtocol, "removeSubtree on a committed or rolled-back transaction")
	}
	c := w.bucket.Cursor()
	var toDelete [][]byte
	for k, _ := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, _ = c.Next() {
		toDelete = append(toDelete, append([]byte(nil), k...))
	}
	for _, k := range toDelete {
		if err := w.bucket.Delete(k); err != nil {
			return bytekv.Wrap(bytekv.ErrIo, "removeSubtree %x: %v", k, err)
		}
	}
	return nil
}

func (w *writer) Commit() error {
	if w.done {
		return bytekv.Wrap(bytekv.ErrProtocol, "commit on a committed or rolled-back transaction")
	}
	w.done = true
	if err := w.tx.Commit(); err != nil {
		return bytekv.Wrap(bytekv.ErrIo, "commit: %v", err)
	}
	return nil
}

func (w *writer) Rollback() error {
	if w.done {
		return nil
	}
	w.done = true
	return w.tx.Rollback()
}

func hasPrefix(k, prefix []byte) bool {
	if len(k) < len(prefix) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

// cursor adapts a bbolt read-only transaction's *bbolt.Cursor to
// bytekv.Cursor. Each NewCursor call opens its own bbolt read transaction,
// giving the snapshot isolation the spec requires ("each call allocates a
// fresh cursor").
type cursor struct {
	tx     *bbolt.Tx
	bc     *bbolt.Cursor
	domain []byte
	domSz  int
	k, v   []byte
	valid  bool
}

func (s *Store) NewCursor() (bytekv.Cursor, error) {
	tx, err := s.db.Begin(false)
	if err != nil {
		return nil, bytekv.Wrap(bytekv.ErrIo, "begin read transaction: %v", err)
	}
	return &cursor{tx: tx, bc: tx.Bucket(rootBucket).Cursor()}, nil
}

func (c *cursor) inDomain(k []byte) bool {
	return c.domSz <= 0 || (len(k) >= c.domSz && hasPrefix(k, c.domain[:c.domSz]))
}

func (c *cursor) SeekUpperBound(key []byte, domainKeySize int) (bool, error) {
	c.domain, c.domSz = key, domainKeySize
	k, v := c.bc.Seek(key)
	return c.settle(k, v)
}

func (c *cursor) SeekFirst(domainPrefix []byte) (bool, error) {
	c.domain, c.domSz = domainPrefix, len(domainPrefix)
	k, v := c.bc.Seek(domainPrefix)
	return c.settle(k, v)
}

func (c *cursor) SeekLast(domainPrefix []byte) (bool, error) {
	c.domain, c.domSz = domainPrefix, len(domainPrefix)
	// bbolt has no "seek upper bound then step back" primitive cheaper
	// than a linear scan across the domain, so walk forward from the
	// first matching key and remember the last one seen.
	k, v := c.bc.Seek(domainPrefix)
	var lastK, lastV []byte
	for k != nil && c.inDomain(k) {
		lastK, lastV = k, v
		k, v = c.bc.Next()
	}
	if lastK == nil {
		c.valid = false
		return false, nil
	}
	// Reposition the bbolt cursor on the last key so SeekNext/SeekPrev
	// step from it rather than from the first key past the domain.
	c.bc.Seek(lastK)
	c.k, c.v, c.valid = lastK, lastV, true
	return true, nil
}

func (c *cursor) SeekNext() (bool, error) {
	if !c.valid {
		return false, nil
	}
	k, v := c.bc.Next()
	return c.settle(k, v)
}

func (c *cursor) SeekPrev() (bool, error) {
	if !c.valid {
		return false, nil
	}
	k, v := c.bc.Prev()
	return c.settle(k, v)
}

func (c *cursor) settle(k, v []byte) (bool, error) {
	if k == nil || !c.inDomain(k) {
		c.valid = false
		return false, nil
	}
	c.k, c.v, c.valid = k, v, true
	return true, nil
}

func (c *cursor) Key() []byte {
	if !c.valid {
		return nil
	}
	return c.k
}

func (c *cursor) Value() []byte {
	if !c.valid {
		return nil
	}
	return c.v
}

func (c *cursor) Close() error { return c.tx.Rollback() }
