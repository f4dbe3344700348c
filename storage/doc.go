// Package storage implements the block-structured, persistent inverted
// index. An index is built from several independent block families, each
// keyed by a distinct prefix in the underlying ordered key-value store
// (bytekv):
//
//   - PostingBlock (posinfo family): a chain of blocks per (type,term)
//     holding the docnos containing the term, compressed as a DocIDSet, and
//     the term's within-document positions for each docno.
//   - BooleanBlock (doclist/useracl/acl families): thin membership chains
//     with no positional payload — term presence, per-user visibility, and
//     per-document access lists.
//   - ForwardBlock (forwardindex family): a document's original term
//     sequence for one type, used to reconstruct summaries without
//     re-tokenizing the source.
//   - MetadataBlock (docmetadata family): fixed-width numeric fields for a
//     range of documents, packed for fast field lookup.
//   - InverseTermBlock (inverseterm family): the single record of every
//     term a document was indexed under, used by the transaction commit to
//     retract a deleted document's postings.
//
// Every block family follows the same chain convention: a block's key
// embeds the largest identifier it covers (its BlockID), so locating the
// block that might contain a given identifier is a single upper-bound seek
// (bytekv.Cursor.SeekUpperBound) rather than a scan. Appending past a
// block's capacity creates a new block with a new, larger BlockID; merging
// blocks (package merge) rewrites a chain span in place.
//
// DocIDSet wraps github.com/RoaringBitmap/roaring/v2 and is the compressed
// integer-set primitive every block family that needs a membership set
// builds on (docnos and usernos). Term positions are not held in a
// DocIDSet: a posting block keeps them as delta-coded lists, one per docno.
package storage
