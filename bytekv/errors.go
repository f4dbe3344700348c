// Package bytekv defines the ordered byte-key/byte-value store contract that
// the rest of the core is built on (transactional writer, snapshot cursor,
// point read/write) together with the typed error vocabulary every layer
// above it classifies failures with.
package bytekv

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies a failure the way the core's callers need to branch on:
// expected-absence vs. corruption vs. caller-contract violation vs. I/O.
type Kind int

const (
	// KindNotFound marks a requested name/id/block that does not exist.
	KindNotFound Kind = iota
	// KindOutOfMemory marks an allocation failure, fatal to the in-flight operation only.
	KindOutOfMemory
	// KindCorruptData marks a block that failed structural validation.
	KindCorruptData
	// KindConflict marks an attempt to reuse an id or redefine an invariant.
	KindConflict
	// KindProtocol marks a caller-contract violation.
	KindProtocol
	// KindIo marks a KV driver I/O failure.
	KindIo
	// KindVersion marks an incompatible storage Version variable.
	KindVersion
	// KindEndianness marks a ByteOrderMark mismatch at open time.
	KindEndianness
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindOutOfMemory:
		return "OutOfMemory"
	case KindCorruptData:
		return "CorruptData"
	case KindConflict:
		return "Conflict"
	case KindProtocol:
		return "Protocol"
	case KindIo:
		return "Io"
	case KindVersion:
		return "Version"
	case KindEndianness:
		return "Endianness"
	default:
		return "Unknown"
	}
}

// Error is the sentinel-carrying error type returned across the façade.
// Every error surfaced to a caller can be classified with errors.Is against
// one of the Err* sentinels below, and unwrapped for its cause chain with
// github.com/pkg/errors.Cause.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Is implements errors.Is support against the Err* sentinels: two *Error
// values (or an *Error and a sentinel) match when their Kind matches.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

var (
	ErrNotFound    = &Error{Kind: KindNotFound, msg: "not found"}
	ErrOutOfMemory = &Error{Kind: KindOutOfMemory, msg: "out of memory"}
	ErrCorruptData = &Error{Kind: KindCorruptData, msg: "corrupt data"}
	ErrConflict    = &Error{Kind: KindConflict, msg: "conflict"}
	ErrProtocol    = &Error{Kind: KindProtocol, msg: "protocol violation"}
	ErrIo          = &Error{Kind: KindIo, msg: "storage io error"}
	ErrVersion     = &Error{Kind: KindVersion, msg: "incompatible version"}
	ErrEndianness  = &Error{Kind: KindEndianness, msg: "incompatible byte order"}
)

// Wrap attaches call-site context to a sentinel, keeping it classifiable
// with errors.Is(err, sentinel) while preserving a stack trace via pkg/errors.
func Wrap(sentinel *Error, format string, args ...interface{}) error {
	wrapped := &Error{Kind: sentinel.Kind, msg: pkgerrors.Wrapf(sentinel, format, args...).Error()}
	return pkgerrors.WithStack(wrapped)
}

// Is reports whether err classifies as the given sentinel kind.
func Is(err error, sentinel *Error) bool {
	return errors.Is(err, sentinel)
}
