package storage

import (
	"bytes"
	"io"

	"github.com/patrickfrey/strus-sub002/bytekv"
	"github.com/patrickfrey/strus-sub002/encoders"
)

// PostingBlock is a chain link of a term's position index (spec §4.2.2): the
// docnos containing the term, compressed as a DocIDSet, paired with a
// position list per docno. Position lists are concatenated in docno order
// and delta-coded; a docno's slice into that stream is found via
// DocIDSet.Rank, the same trick the teacher's RoaringBitmap.Rank supported.
type PostingBlock struct {
	Docnos    *DocIDSet
	positions [][]uint32 // positions[i] belongs to the i-th docno in ascending order
}

// NewPostingBlock creates an empty posting block.
func NewPostingBlock() *PostingBlock {
	return &PostingBlock{Docnos: NewDocIDSet()}
}

// Append adds a docno and its (strictly increasing) within-document
// positions to the block. docno must be larger than every docno already in
// the block; this is the same append-only contract the teacher's
// Block.AddDocument relies on.
func (b *PostingBlock) Append(docno uint32, positions []uint32) {
	b.Docnos.Add(docno)
	b.positions = append(b.positions, positions)
}

// BlockID is the chain key for this block: the highest docno it covers.
func (b *PostingBlock) BlockID() uint32 {
	return b.Docnos.Maximum()
}

// PositionsOf returns the stored positions for docno, or nil if docno is not
// a member of the block.
func (b *PostingBlock) PositionsOf(docno uint32) []uint32 {
	if !b.Docnos.Contains(docno) {
		return nil
	}
	rank, _ := b.Docnos.Rank(docno)
	return b.positions[rank-1]
}

// FrequencyOf returns len(PositionsOf(docno)).
func (b *PostingBlock) FrequencyOf(docno uint32) int {
	return len(b.PositionsOf(docno))
}

// Len returns the number of docnos in the block.
func (b *PostingBlock) Len() int {
	return b.Docnos.Cardinality()
}

// PostingEntry is one docno and its within-document positions.
type PostingEntry struct {
	Docno     uint32
	Positions []uint32
}

// Entries returns the block's contents as an ascending-docno slice, used by
// the merge writer to rebuild a block from a merged element stream.
func (b *PostingBlock) Entries() []PostingEntry {
	entries := make([]PostingEntry, 0, b.Docnos.Cardinality())
	it := b.Docnos.Iterator()
	i := 0
	for it.Next() {
		entries = append(entries, PostingEntry{Docno: it.Value(), Positions: b.positions[i]})
		i++
	}
	return entries
}

// NewPostingBlockFromEntries builds a block from entries already in
// ascending docno order.
func NewPostingBlockFromEntries(entries []PostingEntry) *PostingBlock {
	blk := NewPostingBlock()
	for _, e := range entries {
		blk.Append(e.Docno, e.Positions)
	}
	return blk
}

// Serialize writes the block as: docid-set length (tagged varint) + docid-set
// bytes, then for each docno in ascending order its position count (tagged
// varint) followed by delta-coded positions. This mirrors the teacher's
// Block.Serialize shape (length-prefixed sections written in field order)
// while the payload is the core's own posting structure.
func (b *PostingBlock) Serialize(w io.Writer) error {
	var setBuf bytes.Buffer
	if err := b.Docnos.Serialize(&setBuf); err != nil {
		return err
	}
	if err := encoders.WriteTaggedVarint(w, uint32(setBuf.Len())); err != nil {
		return err
	}
	if _, err := w.Write(setBuf.Bytes()); err != nil {
		return err
	}
	enc := encoders.NewUint32DeltaEncoder()
	for _, pos := range b.positions {
		if err := encoders.WriteTaggedVarint(w, uint32(len(pos))); err != nil {
			return err
		}
		if err := enc.Encode(pos, w); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize reads a block written by Serialize.
func (b *PostingBlock) Deserialize(r io.Reader) error {
	setLen, err := encoders.ReadTaggedVarint(r)
	if err != nil {
		return err
	}
	setBytes := make([]byte, setLen)
	if _, err := io.ReadFull(r, setBytes); err != nil {
		return err
	}
	b.Docnos = NewDocIDSet()
	if err := b.Docnos.Deserialize(bytes.NewReader(setBytes)); err != nil {
		return err
	}
	n := b.Docnos.Cardinality()
	b.positions = make([][]uint32, n)
	dec := encoders.NewUint32DeltaEncoder()
	for i := 0; i < n; i++ {
		plen, err := encoders.ReadTaggedVarint(r)
		if err != nil {
			return err
		}
		pos, err := dec.Decode(r, int(plen))
		if err != nil {
			return err
		}
		b.positions[i] = pos
	}
	return nil
}

// PostingBlockStore adapts bytekv to a (typeno,termno) keyed chain of
// posting blocks (spec §3.2's posinfo family, §4.3's typed database
// adapter). Mirrors the teacher's segment-level ReadSegment/WriteSegment
// pair, but operating one chain link at a time against a generic KV driver
// instead of a flat file.
type PostingBlockStore struct {
	drv bytekv.Driver
}

// NewPostingBlockStore wraps a bytekv.Driver.
func NewPostingBlockStore(drv bytekv.Driver) *PostingBlockStore {
	return &PostingBlockStore{drv: drv}
}

// Load reads the block whose chain key is the smallest last_docno >= docno.
func (s *PostingBlockStore) Load(typeno, termno, docno uint32) (*PostingBlock, bool, error) {
	cur, err := s.drv.NewCursor()
	if err != nil {
		return nil, false, err
	}
	defer cur.Close()
	key := PosinfoKey(typeno, termno, docno)
	domainSz := len(PosinfoDomain(typeno, termno))
	ok, err := cur.SeekUpperBound(key, domainSz)
	if err != nil || !ok {
		return nil, false, err
	}
	blk := NewPostingBlock()
	if err := blk.Deserialize(bytes.NewReader(cur.Value())); err != nil {
		return nil, false, bytekv.Wrap(bytekv.ErrCorruptData, "decoding posting block: %v", err)
	}
	return blk, true, nil
}

// LoadFirst reads the lowest-keyed block in the chain for (typeno,termno).
func (s *PostingBlockStore) LoadFirst(typeno, termno uint32) (*PostingBlock, bool, error) {
	cur, err := s.drv.NewCursor()
	if err != nil {
		return nil, false, err
	}
	defer cur.Close()
	ok, err := cur.SeekFirst(PosinfoDomain(typeno, termno))
	if err != nil || !ok {
		return nil, false, err
	}
	blk := NewPostingBlock()
	if err := blk.Deserialize(bytes.NewReader(cur.Value())); err != nil {
		return nil, false, bytekv.Wrap(bytekv.ErrCorruptData, "decoding posting block: %v", err)
	}
	return blk, true, nil
}

// LoadLast reads the highest-keyed (trailing) block in the chain for
// (typeno,termno), used by the merge writer to fold a fresh append into the
// chain's current tail block instead of leaving it under-full.
func (s *PostingBlockStore) LoadLast(typeno, termno uint32) (*PostingBlock, bool, error) {
	cur, err := s.drv.NewCursor()
	if err != nil {
		return nil, false, err
	}
	defer cur.Close()
	ok, err := cur.SeekLast(PosinfoDomain(typeno, termno))
	if err != nil || !ok {
		return nil, false, err
	}
	blk := NewPostingBlock()
	if err := blk.Deserialize(bytes.NewReader(cur.Value())); err != nil {
		return nil, false, bytekv.Wrap(bytekv.ErrCorruptData, "decoding posting block: %v", err)
	}
	return blk, true, nil
}

// Store writes blk keyed by its own BlockID within a transaction.
func (s *PostingBlockStore) Store(w bytekv.Writer, typeno, termno uint32, blk *PostingBlock) error {
	var buf bytes.Buffer
	if err := blk.Serialize(&buf); err != nil {
		return err
	}
	return w.Write(PosinfoKey(typeno, termno, blk.BlockID()), buf.Bytes())
}

// Remove deletes the block keyed by oldBlockID, used when a merge replaces
// it with one or more differently-keyed blocks.
func (s *PostingBlockStore) Remove(w bytekv.Writer, typeno, termno, oldBlockID uint32) error {
	return w.Remove(PosinfoKey(typeno, termno, oldBlockID))
}
