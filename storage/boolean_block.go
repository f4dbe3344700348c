package storage

import (
	"bytes"
	"io"

	"github.com/patrickfrey/strus-sub002/bytekv"
)

// BooleanBlock is a chain link of a membership list with no payload beyond
// presence: the doclist family (is the term present in this document at
// all), the user-ACL family (which documents a user may see) and the ACL
// family (which users may access a document), per spec §4.2.3. Unlike PostingBlock
// it carries no per-member position data, so it is a thin DocIDSet wrapper.
type BooleanBlock struct {
	Members *DocIDSet
}

// NewBooleanBlock creates an empty boolean block.
func NewBooleanBlock() *BooleanBlock {
	return &BooleanBlock{Members: NewDocIDSet()}
}

// BlockID is the chain key: the highest member in the block.
func (b *BooleanBlock) BlockID() uint32 {
	return b.Members.Maximum()
}

// Add inserts a member (is_member=true range, spec §4.2.3).
func (b *BooleanBlock) Add(id uint32) { b.Members.Add(id) }

// Delete removes a member (is_member=false range: a tombstone).
func (b *BooleanBlock) Delete(id uint32) { b.Members.Remove(id) }

// Len returns the number of members in the block.
func (b *BooleanBlock) Len() int { return b.Members.Cardinality() }

// Serialize writes the block as a bare DocIDSet.
func (b *BooleanBlock) Serialize(w io.Writer) error {
	return b.Members.Serialize(w)
}

// Deserialize reads a block written by Serialize.
func (b *BooleanBlock) Deserialize(r io.Reader) error {
	b.Members = NewDocIDSet()
	return b.Members.Deserialize(r)
}

// booleanKeyFn composes the chain key for a given (domain, lastID) pair; the
// three boolean families differ only in how their key is composed (spec
// §3.2), so one generic store serves all three.
type booleanKeyFn func(lastID uint32) []byte

// BooleanBlockStore adapts bytekv to a chain of boolean blocks under one
// domain prefix (a single term's doclist chain, a single user's ACL chain,
// or a single document's ACL chain).
type BooleanBlockStore struct {
	drv    bytekv.Driver
	domain []byte
	key    booleanKeyFn
}

// NewDocListStore builds a BooleanBlockStore over the doclist chain for
// (typeno, termno).
func NewDocListStore(drv bytekv.Driver, typeno, termno uint32) *BooleanBlockStore {
	return &BooleanBlockStore{
		drv:    drv,
		domain: DocListDomain(typeno, termno),
		key:    func(lastID uint32) []byte { return DocListKey(typeno, termno, lastID) },
	}
}

// NewUserAclStore builds a BooleanBlockStore over the user-ACL chain for userno.
func NewUserAclStore(drv bytekv.Driver, userno uint32) *BooleanBlockStore {
	return &BooleanBlockStore{
		drv:    drv,
		domain: UserAclDomain(userno),
		key:    func(lastID uint32) []byte { return UserAclKey(userno, lastID) },
	}
}

// NewAclStore builds a BooleanBlockStore over the ACL chain for docno.
func NewAclStore(drv bytekv.Driver, docno uint32) *BooleanBlockStore {
	return &BooleanBlockStore{
		drv:    drv,
		domain: AclDomain(docno),
		key:    func(lastID uint32) []byte { return AclKey(docno, lastID) },
	}
}

// Load reads the block whose chain key is the smallest >= id.
func (s *BooleanBlockStore) Load(id uint32) (*BooleanBlock, bool, error) {
	cur, err := s.drv.NewCursor()
	if err != nil {
		return nil, false, err
	}
	defer cur.Close()
	ok, err := cur.SeekUpperBound(s.key(id), len(s.domain))
	if err != nil || !ok {
		return nil, false, err
	}
	blk := NewBooleanBlock()
	if err := blk.Deserialize(bytes.NewReader(cur.Value())); err != nil {
		return nil, false, bytekv.Wrap(bytekv.ErrCorruptData, "decoding boolean block: %v", err)
	}
	return blk, true, nil
}

// LoadLast reads the highest-keyed (trailing) block in the chain, used by
// the merge writer to fold a fresh append into the chain's current tail
// block instead of leaving it under-full.
func (s *BooleanBlockStore) LoadLast() (*BooleanBlock, bool, error) {
	cur, err := s.drv.NewCursor()
	if err != nil {
		return nil, false, err
	}
	defer cur.Close()
	ok, err := cur.SeekLast(s.domain)
	if err != nil || !ok {
		return nil, false, err
	}
	blk := NewBooleanBlock()
	if err := blk.Deserialize(bytes.NewReader(cur.Value())); err != nil {
		return nil, false, bytekv.Wrap(bytekv.ErrCorruptData, "decoding boolean block: %v", err)
	}
	return blk, true, nil
}

// Store writes blk keyed by its own BlockID.
func (s *BooleanBlockStore) Store(w bytekv.Writer, blk *BooleanBlock) error {
	var buf bytes.Buffer
	if err := blk.Serialize(&buf); err != nil {
		return err
	}
	return w.Write(s.key(blk.BlockID()), buf.Bytes())
}

// Remove deletes the block keyed by oldBlockID.
func (s *BooleanBlockStore) Remove(w bytekv.Writer, oldBlockID uint32) error {
	return w.Remove(s.key(oldBlockID))
}
