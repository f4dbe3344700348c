package bytekv

// Writer is the contract for a single, serialized sequence of mutations
// against a KV driver (spec §4.1). A Writer dropped without Commit performs
// an implicit Rollback. Commit is atomic across every write issued on it.
type Writer interface {
	Write(key, value []byte) error
	Remove(key []byte) error
	// RemoveSubtree deletes every key sharing the given prefix.
	RemoveSubtree(prefix []byte) error
	Commit() error
	Rollback() error
}

// Cursor is a snapshot-isolated ordered iterator over a KV driver (spec §4.1).
// Once positioned, Key/Value reference the current entry; advancing with
// SeekNext/SeekPrev moves the position. All seeks with a domainKeySize > 0
// restrict iteration so that only keys whose first domainKeySize bytes equal
// the supplied prefix are visited.
type Cursor interface {
	// SeekUpperBound positions the cursor at the first key >= key whose
	// first domainKeySize bytes equal key's first domainKeySize bytes, or
	// reports ok=false if none exists.
	SeekUpperBound(key []byte, domainKeySize int) (ok bool, err error)
	SeekFirst(domainPrefix []byte) (ok bool, err error)
	SeekLast(domainPrefix []byte) (ok bool, err error)
	SeekNext() (ok bool, err error)
	SeekPrev() (ok bool, err error)
	Key() []byte
	Value() []byte
	Close() error
}

// Driver is the minimal capability set the core needs from a concrete KV
// engine (spec §4.1). Concrete KV engines are out of scope for the core;
// this interface is the seam. memdriver and boltdriver are the two
// reference implementations shipped alongside the core.
type Driver interface {
	// Transaction begins a new Writer. Creating a transaction is
	// non-blocking; Commit takes the store-wide commit lock (enforced one
	// layer up, in client, not here).
	Transaction() (Writer, error)
	// NewCursor returns a fresh snapshot cursor. Multiple concurrent
	// readers each get their own cursor (value semantics; no shared
	// mutable cursor state).
	NewCursor() (Cursor, error)
	ReadValue(key []byte) (value []byte, found bool, err error)
	WriteImm(key, value []byte) error
	RemoveImm(key []byte) error
	Close() error
}

// Open opens an existing store under the given driver-specific config.
// Callers are responsible for choosing a concrete driver (memdriver.Open,
// boltdriver.Open, ...); this function signature exists only to document
// the shared contract from spec §4.1 (`open(config)` / `create(config)` /
// `destroy(config)`).
type OpenFunc func(cfg Config) (Driver, error)
type CreateFunc func(cfg Config) (Driver, error)
type DestroyFunc func(cfg Config) error
