package storage

import (
	"bytes"
	"io"

	"github.com/patrickfrey/strus-sub002/bytekv"
	"github.com/patrickfrey/strus-sub002/encoders"
)

// InverseTermEntry is one (type,term) occurrence recorded against a document
// (spec §4.2.6): it lets the transaction's delete pipeline answer "what
// terms was this document indexed with" without scanning every term's
// posting chain.
type InverseTermEntry struct {
	Typeno   uint32
	Termno   uint32
	Ff       uint32 // feature frequency: occurrence count within the document
	Firstpos uint32
}

// InverseTermBlock is the single per-document record of every term the
// document was indexed under.
type InverseTermBlock struct {
	Entries []InverseTermEntry
}

// NewInverseTermBlock creates an empty block.
func NewInverseTermBlock() *InverseTermBlock { return &InverseTermBlock{} }

// Append adds one entry.
func (b *InverseTermBlock) Append(e InverseTermEntry) {
	b.Entries = append(b.Entries, e)
}

// Serialize writes a tagged-varint count followed by each entry's four
// tagged-varint fields, matching the teacher's flat field-by-field
// Block.Serialize style.
func (b *InverseTermBlock) Serialize(w io.Writer) error {
	if err := encoders.WriteTaggedVarint(w, uint32(len(b.Entries))); err != nil {
		return err
	}
	for _, e := range b.Entries {
		for _, v := range [4]uint32{e.Typeno, e.Termno, e.Ff, e.Firstpos} {
			if err := encoders.WriteTaggedVarint(w, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Deserialize reads a block written by Serialize.
func (b *InverseTermBlock) Deserialize(r io.Reader) error {
	n, err := encoders.ReadTaggedVarint(r)
	if err != nil {
		return err
	}
	entries := make([]InverseTermEntry, n)
	for i := range entries {
		var vals [4]uint32
		for j := range vals {
			v, err := encoders.ReadTaggedVarint(r)
			if err != nil {
				return err
			}
			vals[j] = v
		}
		entries[i] = InverseTermEntry{Typeno: vals[0], Termno: vals[1], Ff: vals[2], Firstpos: vals[3]}
	}
	b.Entries = entries
	return nil
}

// InverseTermBlockStore adapts bytekv to the docno-keyed inverse-term family.
type InverseTermBlockStore struct {
	drv bytekv.Driver
}

// NewInverseTermBlockStore wraps a bytekv.Driver.
func NewInverseTermBlockStore(drv bytekv.Driver) *InverseTermBlockStore {
	return &InverseTermBlockStore{drv: drv}
}

// Load reads the (single) block for docno.
func (s *InverseTermBlockStore) Load(docno uint32) (*InverseTermBlock, bool, error) {
	value, found, err := s.drv.ReadValue(InverseTermKey(docno))
	if err != nil || !found {
		return nil, found, err
	}
	blk := NewInverseTermBlock()
	if err := blk.Deserialize(bytes.NewReader(value)); err != nil {
		return nil, false, bytekv.Wrap(bytekv.ErrCorruptData, "decoding inverse term block: %v", err)
	}
	return blk, true, nil
}

// Store writes blk for docno within a transaction.
func (s *InverseTermBlockStore) Store(w bytekv.Writer, docno uint32, blk *InverseTermBlock) error {
	var buf bytes.Buffer
	if err := blk.Serialize(&buf); err != nil {
		return err
	}
	return w.Write(InverseTermKey(docno), buf.Bytes())
}

// Remove deletes the block for docno (spec §4.6 delete pipeline).
func (s *InverseTermBlockStore) Remove(w bytekv.Writer, docno uint32) error {
	return w.Remove(InverseTermKey(docno))
}
