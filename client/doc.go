// Package client implements the storage client façade (spec §4.11): it
// holds the KV driver handle, the metadata schema, the metadata cache, the
// document-number/id counters, the single-writer commit lock, and an
// optional statistics builder, and exposes the operations external query
// and indexing code actually calls — creating transactions and iterators,
// resolving document numbers, reporting document-frequency and storage
// statistics, and verifying a document's stored state against a rebuild.
package client
