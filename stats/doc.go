// Package stats implements distributed document-frequency propagation
// (spec §4.10): a per-storage Builder packages accumulated df changes into
// snapshot and delta messages under the caller's commit lock, and a
// peer-side Storage aggregates messages from multiple storages into a
// combined document frequency and document count view, rejecting stale
// (out-of-order or replayed) messages by per-peer timestamp.
package stats
