package storage

import (
	"bytes"
	"io"

	"github.com/patrickfrey/strus-sub002/bytekv"
	"github.com/patrickfrey/strus-sub002/encoders"
)

// ForwardBlock is a chain link of one document's original term sequence for
// one type (spec §4.2.4): the terms the document was indexed with, in the
// order they appeared, each tagged with its position so a summarizer can
// reconstruct a window of running text without re-tokenizing the source.
type ForwardBlock struct {
	Positions []uint32
	Terms     []string
}

// NewForwardBlock creates an empty forward block.
func NewForwardBlock() *ForwardBlock { return &ForwardBlock{} }

// Append adds one (position, term) pair. position must be larger than every
// position already appended.
func (b *ForwardBlock) Append(position uint32, term string) {
	b.Positions = append(b.Positions, position)
	b.Terms = append(b.Terms, term)
}

// BlockID is the chain key: the highest position held in the block.
func (b *ForwardBlock) BlockID() uint32 {
	if len(b.Positions) == 0 {
		return 0
	}
	return b.Positions[len(b.Positions)-1]
}

// TermAt returns the term stored at the given position, or "" if absent.
func (b *ForwardBlock) TermAt(position uint32) string {
	for i, p := range b.Positions {
		if p == position {
			return b.Terms[i]
		}
	}
	return ""
}

// Len returns the number of (position,term) entries in the block.
func (b *ForwardBlock) Len() int {
	return len(b.Positions)
}

// ForwardEntry is one (position,term) pair.
type ForwardEntry struct {
	Position uint32
	Term     string
}

// Entries returns the block's contents as an ascending-position slice.
func (b *ForwardBlock) Entries() []ForwardEntry {
	entries := make([]ForwardEntry, len(b.Positions))
	for i, p := range b.Positions {
		entries[i] = ForwardEntry{Position: p, Term: b.Terms[i]}
	}
	return entries
}

// NewForwardBlockFromEntries builds a block from entries already in
// ascending position order.
func NewForwardBlockFromEntries(entries []ForwardEntry) *ForwardBlock {
	blk := NewForwardBlock()
	for _, e := range entries {
		blk.Append(e.Position, e.Term)
	}
	return blk
}

// Serialize writes the block as a tagged-varint count, delta-coded
// positions, then length-prefixed term strings — the same length-prefixed
// string convention the teacher's Block.Serialize uses for document paths.
func (b *ForwardBlock) Serialize(w io.Writer) error {
	if err := encoders.WriteTaggedVarint(w, uint32(len(b.Positions))); err != nil {
		return err
	}
	enc := encoders.NewUint32DeltaEncoder()
	if err := enc.Encode(b.Positions, w); err != nil {
		return err
	}
	for _, term := range b.Terms {
		if err := encoders.WriteTaggedVarint(w, uint32(len(term))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, term); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize reads a block written by Serialize.
func (b *ForwardBlock) Deserialize(r io.Reader) error {
	n, err := encoders.ReadTaggedVarint(r)
	if err != nil {
		return err
	}
	dec := encoders.NewUint32DeltaEncoder()
	positions, err := dec.Decode(r, int(n))
	if err != nil {
		return err
	}
	terms := make([]string, n)
	for i := range terms {
		l, err := encoders.ReadTaggedVarint(r)
		if err != nil {
			return err
		}
		buf := make([]byte, l)
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		terms[i] = string(buf)
	}
	b.Positions, b.Terms = positions, terms
	return nil
}

// ForwardBlockStore adapts bytekv to a (typeno,docno) keyed chain of forward
// blocks.
type ForwardBlockStore struct {
	drv bytekv.Driver
}

// NewForwardBlockStore wraps a bytekv.Driver.
func NewForwardBlockStore(drv bytekv.Driver) *ForwardBlockStore {
	return &ForwardBlockStore{drv: drv}
}

// Load reads the block whose chain key is the smallest last_pos >= position.
func (s *ForwardBlockStore) Load(typeno, docno, position uint32) (*ForwardBlock, bool, error) {
	cur, err := s.drv.NewCursor()
	if err != nil {
		return nil, false, err
	}
	defer cur.Close()
	domainSz := len(ForwardIndexDomain(typeno, docno))
	ok, err := cur.SeekUpperBound(ForwardIndexKey(typeno, docno, position), domainSz)
	if err != nil || !ok {
		return nil, false, err
	}
	blk := NewForwardBlock()
	if err := blk.Deserialize(bytes.NewReader(cur.Value())); err != nil {
		return nil, false, bytekv.Wrap(bytekv.ErrCorruptData, "decoding forward block: %v", err)
	}
	return blk, true, nil
}

// LoadLast reads the highest-keyed (trailing) block in the chain for
// (typeno,docno), used by the merge writer to fold a fresh append into the
// chain's current tail block instead of leaving it under-full.
func (s *ForwardBlockStore) LoadLast(typeno, docno uint32) (*ForwardBlock, bool, error) {
	cur, err := s.drv.NewCursor()
	if err != nil {
		return nil, false, err
	}
	defer cur.Close()
	ok, err := cur.SeekLast(ForwardIndexDomain(typeno, docno))
	if err != nil || !ok {
		return nil, false, err
	}
	blk := NewForwardBlock()
	if err := blk.Deserialize(bytes.NewReader(cur.Value())); err != nil {
		return nil, false, bytekv.Wrap(bytekv.ErrCorruptData, "decoding forward block: %v", err)
	}
	return blk, true, nil
}

// Store writes blk keyed by its own BlockID.
func (s *ForwardBlockStore) Store(w bytekv.Writer, typeno, docno uint32, blk *ForwardBlock) error {
	var buf bytes.Buffer
	if err := blk.Serialize(&buf); err != nil {
		return err
	}
	return w.Write(ForwardIndexKey(typeno, docno, blk.BlockID()), buf.Bytes())
}

// Remove deletes the block keyed by oldBlockID.
func (s *ForwardBlockStore) Remove(w bytekv.Writer, typeno, docno, oldBlockID uint32) error {
	return w.Remove(ForwardIndexKey(typeno, docno, oldBlockID))
}

// RemoveAll deletes every forward block for (typeno,docno), used when a
// document is deleted (spec §4.6 delete pipeline).
func (s *ForwardBlockStore) RemoveAll(w bytekv.Writer, typeno, docno uint32) error {
	return w.RemoveSubtree(ForwardIndexDomain(typeno, docno))
}
