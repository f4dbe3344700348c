// Package query implements the posting iterator algebra the core evaluates
// Boolean and proximity queries against (spec §4.8): a term iterator over
// one posting chain, and join iterators (union, intersect, difference,
// sequence, within, and their structure-bounded variants) composed lazily
// from child iterators. Every iterator exposes the same small contract —
// skip_doc, skip_pos, first_doc, document_frequency, feature_id — so joins
// nest arbitrarily deep without the caller caring whether a child is a term
// or another join.
//
// This is the teacher's engine.MultiTermQuery heap-driven merge
// generalized: instead of one fixed AND-of-terms loop over a min-heap of
// blocks, each join type implements skip_doc itself (term iterators skip
// via storage.ChainIterator.SkipDoc, which already crosses block
// boundaries), and joins compose by calling their children's skip_doc.
package query
