package stats

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Storage aggregates Messages from multiple peer storages into a combined
// document-frequency table and document count (spec §4.10's "statistics
// storage"). All operations take an internal mutex standing in for the
// spec's "under a transaction" requirement for put_message.
type Storage struct {
	logger *zap.Logger

	mu      sync.Mutex
	df      map[TypeTerm]int64
	nofDocs int64
	peers   map[uuid.UUID]int64
}

// NewStorage creates an empty aggregation storage. A nil logger is
// replaced with a no-op logger.
func NewStorage(logger *zap.Logger) *Storage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Storage{
		logger: logger,
		df:     make(map[TypeTerm]int64),
		peers:  make(map[uuid.UUID]int64),
	}
}

// PutMessage applies msg's changes if its timestamp is newer than the last
// applied timestamp for its peer, and rejects it (idempotently, without
// error) otherwise, per spec §4.10: "a message with timestamp <= the
// stored one is rejected". Returns whether the message was applied.
func (s *Storage) PutMessage(msg Message) (applied bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.peers[msg.PeerID]; ok && msg.Timestamp <= last {
		s.logger.Warn("rejecting stale statistics message",
			zap.String("peer", msg.PeerID.String()),
			zap.Int64("timestamp", msg.Timestamp),
			zap.Int64("lastApplied", last))
		return false, nil
	}

	for _, c := range msg.Changes {
		key := TypeTerm{Type: c.Type, Term: c.Term}
		next := s.df[key] + c.Delta
		if next <= 0 {
			delete(s.df, key)
		} else {
			s.df[key] = next
		}
	}
	s.nofDocs += msg.NofDocsDelta
	s.peers[msg.PeerID] = msg.Timestamp

	s.logger.Debug("applied statistics message",
		zap.String("peer", msg.PeerID.String()),
		zap.String("kind", msg.Kind.String()),
		zap.Int("changes", len(msg.Changes)))
	return true, nil
}

// DocumentFrequency returns the aggregated document frequency for
// (typeName, term), 0 if never reported.
func (s *Storage) DocumentFrequency(typeName, term string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.df[TypeTerm{Type: typeName, Term: term}]
}

// NofDocuments returns the aggregated document count across all peers.
func (s *Storage) NofDocuments() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nofDocs
}

// StorageTimestamp returns the last applied timestamp for peerID, 0 if the
// peer has never reported.
func (s *Storage) StorageTimestamp(peerID uuid.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peers[peerID]
}
