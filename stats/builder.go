package stats

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Builder accumulates one storage's document-frequency deltas across a
// commit and packages them into messages for the statistics processor
// (spec §4.10). The caller is responsible for calling the Record* methods
// and Build* methods under the storage's commit lock, matching the spec's
// guarantee that "messages are produced under the commit lock, are
// ordered, and carry a monotonic per-storage timestamp".
type Builder struct {
	peerID uuid.UUID
	logger *zap.Logger

	seq int64

	mu           sync.Mutex
	pending      map[TypeTerm]int64
	nofDocsDelta int64
}

// NewBuilder creates a Builder identifying its storage as peerID. A nil
// logger is replaced with a no-op logger.
func NewBuilder(peerID uuid.UUID, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		peerID:  peerID,
		logger:  logger,
		pending: make(map[TypeTerm]int64),
	}
}

// RecordDocFrequencyChange accumulates a (type,term) df delta produced by
// the in-progress commit's inverted-index map.
func (b *Builder) RecordDocFrequencyChange(typeName, term string, delta int64) {
	if delta == 0 {
		return
	}
	b.mu.Lock()
	b.pending[TypeTerm{Type: typeName, Term: term}] += delta
	b.mu.Unlock()
}

// RecordNofDocsChange accumulates the net document count change for the
// in-progress commit.
func (b *Builder) RecordNofDocsChange(delta int64) {
	atomic.AddInt64(&b.nofDocsDelta, delta)
}

func (b *Builder) nextTimestamp() int64 {
	return atomic.AddInt64(&b.seq, 1)
}

// BuildDelta packages everything accumulated since the last BuildDelta call
// into one KindDelta message and resets the accumulator (spec §4.10's
// per-commit delta message).
func (b *Builder) BuildDelta() Message {
	b.mu.Lock()
	changes := make([]DocFrequencyChange, 0, len(b.pending))
	for k, delta := range b.pending {
		if delta == 0 {
			continue
		}
		changes = append(changes, DocFrequencyChange{Type: k.Type, Term: k.Term, Delta: delta})
	}
	b.pending = make(map[TypeTerm]int64)
	b.mu.Unlock()

	nofDocsDelta := atomic.SwapInt64(&b.nofDocsDelta, 0)
	msg := Message{
		PeerID:       b.peerID,
		Kind:         KindDelta,
		Timestamp:    b.nextTimestamp(),
		NofDocsDelta: nofDocsDelta,
		Changes:      changes,
	}
	b.logger.Debug("built delta statistics message",
		zap.Int("changes", len(changes)),
		zap.Int64("nofDocsDelta", nofDocsDelta),
		zap.Int64("timestamp", msg.Timestamp))
	return msg
}

// BuildSnapshot packages the full current document-frequency table as one
// signed KindSnapshot message (spec §4.10): sign is +1 when registering a
// peer (adds the whole table) and -1 when deregistering (subtracts it back
// out).
func (b *Builder) BuildSnapshot(sign int, current map[TypeTerm]int64, nofDocs int64) Message {
	changes := make([]DocFrequencyChange, 0, len(current))
	for k, df := range current {
		changes = append(changes, DocFrequencyChange{Type: k.Type, Term: k.Term, Delta: int64(sign) * df})
	}
	msg := Message{
		PeerID:       b.peerID,
		Kind:         KindSnapshot,
		Timestamp:    b.nextTimestamp(),
		NofDocsDelta: int64(sign) * nofDocs,
		Changes:      changes,
	}
	b.logger.Info("built snapshot statistics message",
		zap.Int("sign", sign),
		zap.Int("changes", len(changes)),
		zap.Int64("timestamp", msg.Timestamp))
	return msg
}
