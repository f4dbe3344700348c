package stats

import (
	"bytes"
	"encoding/gob"

	"github.com/google/uuid"
)

// MessageKind distinguishes the two message shapes a storage can emit
// (spec §4.10).
type MessageKind int

const (
	// KindSnapshot is the on-demand initial-state message: one record per
	// (type,term) currently tracked, signed so registering a peer adds
	// the full table and deregistering subtracts it back out.
	KindSnapshot MessageKind = iota
	// KindDelta is the per-commit incremental message.
	KindDelta
)

func (k MessageKind) String() string {
	if k == KindSnapshot {
		return "snapshot"
	}
	return "delta"
}

// TypeTerm identifies one (term-type, term-value) pair in the document
// frequency table.
type TypeTerm struct {
	Type string
	Term string
}

// DocFrequencyChange is one (type,term) df delta carried by a message.
type DocFrequencyChange struct {
	Type  string
	Term  string
	Delta int64
}

// Message is the unit a storage's Builder produces and a peer Storage
// consumes (spec §4.10). Timestamp is a per-storage monotonic sequence
// number, not a wall-clock time, so idempotency checks never depend on
// clock skew between peers.
type Message struct {
	PeerID       uuid.UUID
	Kind         MessageKind
	Timestamp    int64
	NofDocsDelta int64
	Changes      []DocFrequencyChange
}

// Encode serializes the message with encoding/gob, the compact blob format
// the spec leaves unspecified (codec details are explicitly out of scope)
// but a core still has to pick something concrete to exercise the
// put_message/storage_timestamp contract end to end.
func (m Message) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeMessage reverses Encode.
func DecodeMessage(blob []byte) (Message, error) {
	var m Message
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&m); err != nil {
		return Message{}, err
	}
	return m, nil
}
