// Package rank implements the accumulator/ranker/summarizer pipeline that
// turns a set of query.Iterators into a ranked, summarized result list
// (spec §4.9): an Accumulator drives a set of selector iterators in
// ascending docno order, scoring each candidate with a configurable set of
// weighting functions before handing it to a top-K Ranker; a Summarizer
// set then attaches per-document explain/preview data to the final ranks.
package rank
