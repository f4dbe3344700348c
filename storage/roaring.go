// Package storage implements the block-structured, persistent inverted
// index described in the core's posting/boolean/forward/metadata family
// design. DocIDSet is the compressed integer-set primitive every block
// family builds on: it wraps github.com/RoaringBitmap/roaring/v2, which
// supersedes the project's original hand-rolled Array/BitmapContainer
// implementation with a maintained, SIMD-friendly roaring bitmap while
// keeping the same call surface (Add, Contains, Cardinality, Rank, Union,
// Intersection, Serialize/Deserialize) so the rest of the package barely
// notices the swap.
package storage

import (
	"fmt"
	"io"

	"github.com/RoaringBitmap/roaring/v2"
)

// DocIDSet is a compressed, ordered set of uint32 document (or user, or
// position) identifiers.
type DocIDSet struct {
	bitmap *roaring.Bitmap
}

// NewDocIDSet creates an empty DocIDSet.
func NewDocIDSet() *DocIDSet {
	return &DocIDSet{bitmap: roaring.NewBitmap()}
}

// Add inserts a value into the set.
func (d *DocIDSet) Add(value uint32) {
	d.bitmap.Add(value)
}

// Remove deletes a value from the set, used to apply boolean-block
// tombstones (spec §4.2.3: a merge range with is_member=false deletes).
func (d *DocIDSet) Remove(value uint32) {
	d.bitmap.Remove(value)
}

// Contains reports whether value is a member of the set.
func (d *DocIDSet) Contains(value uint32) bool {
	return d.bitmap.Contains(value)
}

// Cardinality returns the number of members.
func (d *DocIDSet) Cardinality() int {
	return int(d.bitmap.GetCardinality())
}

// Rank returns the number of members less than or equal to value (1-based
// position of value within the ordered set if present). Used to map a
// docno to its term-frequency slot in a posting block (spec §4.2.2).
func (d *DocIDSet) Rank(value uint32) (int, error) {
	return int(d.bitmap.Rank(value)), nil
}

// Union returns a new DocIDSet containing every member of either set.
func (d *DocIDSet) Union(other *DocIDSet) *DocIDSet {
	return &DocIDSet{bitmap: roaring.Or(d.bitmap, other.bitmap)}
}

// Intersection returns a new DocIDSet containing members present in both sets.
func (d *DocIDSet) Intersection(other *DocIDSet) *DocIDSet {
	return &DocIDSet{bitmap: roaring.And(d.bitmap, other.bitmap)}
}

// Difference returns a new DocIDSet containing members of d absent from other.
func (d *DocIDSet) Difference(other *DocIDSet) *DocIDSet {
	return &DocIDSet{bitmap: roaring.AndNot(d.bitmap, other.bitmap)}
}

// Minimum returns the smallest member, or 0 if the set is empty.
func (d *DocIDSet) Minimum() uint32 {
	if d.bitmap.IsEmpty() {
		return 0
	}
	return d.bitmap.Minimum()
}

// Maximum returns the largest member, or 0 if the set is empty.
func (d *DocIDSet) Maximum() uint32 {
	if d.bitmap.IsEmpty() {
		return 0
	}
	return d.bitmap.Maximum()
}

// ToArray materializes the set as a sorted slice. Prefer Iterator for large
// sets; this exists for small auxiliary sets (e.g. a single block's docnos).
func (d *DocIDSet) ToArray() []uint32 {
	return d.bitmap.ToArray()
}

// Serialize writes the set to w in roaring's portable container format.
func (d *DocIDSet) Serialize(w io.Writer) error {
	_, err := d.bitmap.WriteTo(w)
	if err != nil {
		return fmt.Errorf("failed to serialize docid set: %w", err)
	}
	return nil
}

// Deserialize reads a set previously written by Serialize.
func (d *DocIDSet) Deserialize(r io.Reader) error {
	if d.bitmap == nil {
		d.bitmap = roaring.NewBitmap()
	}
	_, err := d.bitmap.ReadFrom(r)
	if err != nil {
		return fmt.Errorf("failed to deserialize docid set: %w", err)
	}
	return nil
}

// Iterator returns a forward iterator positioned before the first member.
func (d *DocIDSet) Iterator() DocIDIterator {
	return DocIDIterator{it: d.bitmap.Iterator()}
}

// DocIDIterator walks the members of a DocIDSet in ascending order.
type DocIDIterator struct {
	it roaring.IntPeekable
}

// Next reports whether another member remains, returning false once
// exhausted. It does not move the iterator; Value does.
func (it *DocIDIterator) Next() bool {
	return it.it.HasNext()
}

// Value returns the next member and moves past it. Call it exactly once
// after each successful Next.
func (it *DocIDIterator) Value() uint32 {
	return it.it.Next()
}

// AdvanceIfNeeded moves the iterator forward to the first member >= target,
// used for skip_doc-style advancement (spec §4.8).
func (it *DocIDIterator) AdvanceIfNeeded(target uint32) {
	it.it.AdvanceIfNeeded(target)
}
