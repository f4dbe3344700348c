package client

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/patrickfrey/strus-sub002/bytekv"
	"github.com/patrickfrey/strus-sub002/ids"
	"github.com/patrickfrey/strus-sub002/metacache"
	"github.com/patrickfrey/strus-sub002/stats"
	"github.com/patrickfrey/strus-sub002/storage"
	"github.com/patrickfrey/strus-sub002/txn"
)

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// Storage is the storage client façade (spec §4.11). The zero value is not
// usable; build one with Open.
type Storage struct {
	drv    bytekv.Driver
	schema storage.MetadataSchema
	logger *zap.Logger

	metaCache *metacache.Cache

	typeDict, termDict, userDict, docIDDict, attribDict *txn.Dictionary
	docnoCounter                                        *ids.ImmediateAllocator

	commitMu sync.Mutex

	statsBuilder *stats.Builder
	metrics      *metrics
}

// Open builds a Storage over an already-opened driver and parsed metadata
// schema (typically produced from bytekv.ParseConfig +
// bytekv.ParseMetadataColumns against the configuration string of spec
// §6.1).
func Open(schema storage.MetadataSchema, cfg Config) (*Storage, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var metaCache *metacache.Cache
	if cfg.MetadataCacheCapacity > 0 {
		var err error
		metaCache, err = metacache.New(cfg.MetadataCacheCapacity, storage.NewMetadataBlockStore(cfg.Driver, schema))
		if err != nil {
			return nil, err
		}
	}
	var builder *stats.Builder
	if cfg.StatsPeerID != uuid.Nil {
		builder = stats.NewBuilder(cfg.StatsPeerID, logger)
	}
	return &Storage{
		drv:          cfg.Driver,
		schema:       schema,
		logger:       logger,
		metaCache:    metaCache,
		typeDict:     txn.NewDictionary(cfg.Driver, storage.FamilyTermType, "typeno_counter"),
		termDict:     txn.NewDictionary(cfg.Driver, storage.FamilyTermValue, "termno_counter"),
		userDict:     txn.NewDictionary(cfg.Driver, storage.FamilyUserName, "userno_counter"),
		docIDDict:    txn.NewDictionary(cfg.Driver, storage.FamilyDocID, "docno_counter"),
		attribDict:   txn.NewDictionary(cfg.Driver, storage.FamilyAttribKey, "attribno_counter"),
		docnoCounter: ids.NewImmediateAllocator(cfg.Driver, "docno_counter"),
		statsBuilder: builder,
		metrics:      newMetrics(),
	}, nil
}

// Driver exposes the underlying bytekv.Driver, for callers (e.g. package
// query) that build iterators directly against storage.
func (s *Storage) Driver() bytekv.Driver { return s.drv }

// RegisterMetrics registers the storage's prometheus collectors with reg.
func (s *Storage) RegisterMetrics(reg prometheus.Registerer) error {
	return s.metrics.Register(reg)
}

// Schema exposes the pinned metadata column layout.
func (s *Storage) Schema() storage.MetadataSchema { return s.schema }

// NewTransaction starts a transaction sharing this storage's dictionaries
// and metadata cache.
func (s *Storage) NewTransaction() *txn.Transaction {
	return txn.New(txn.Config{Driver: s.drv, Schema: s.schema, MetadataCache: s.metaCache})
}

// Commit takes the storage-wide commit lock, commits tx, and on success
// updates the document counters and emits a delta statistics message (spec
// §5: "commit() takes the lock for the whole commit pipeline").
func (s *Storage) Commit(tx *txn.Transaction) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	before, err := s.docnoCounter.Current()
	if err != nil {
		return err
	}

	timer := s.metrics.startCommit()
	if err := tx.Commit(); err != nil {
		timer.observeFailure()
		return err
	}
	timer.observeSuccess()

	// TermDeltas must be read after Commit: a staged DeleteDocument only
	// expands into posting tombstones during the commit itself, so reading
	// deltas any earlier would miss every term a deleted document retracts.
	deltas := tx.TermDeltas()
	deleted := tx.NofDeleted()

	after, err := s.docnoCounter.Current()
	if err != nil {
		return err
	}
	s.metrics.documentsIndexed.Add(float64(after - before))

	if s.statsBuilder != nil {
		for _, d := range deltas {
			s.statsBuilder.RecordDocFrequencyChange(d.TypeName, d.Term, int64(d.Docs))
		}
		s.statsBuilder.RecordNofDocsChange(int64(after-before) - int64(deleted))
	}
	return nil
}

// DocumentFrequency returns the number of documents indexed with (typeName,
// term), 0 if the term is unknown.
func (s *Storage) DocumentFrequency(typeName, term string) (int, error) {
	typeno, found, err := s.typeDict.Lookup(typeName)
	if err != nil || !found {
		return 0, err
	}
	termno, found, err := s.termDict.Lookup(term)
	if err != nil || !found {
		return 0, err
	}
	summary, err := storage.SummarizeChain(s.drv, typeno, termno)
	if err != nil {
		return 0, err
	}
	return summary.Postings, nil
}

// MaxDocumentNumber returns the highest docno ever assigned.
func (s *Storage) MaxDocumentNumber() (uint32, error) {
	return s.docnoCounter.Current()
}

// NofDocumentsInserted returns the number of documents ever assigned a
// docno. Docnos are never reused (spec §4.5), so this equals
// MaxDocumentNumber.
func (s *Storage) NofDocumentsInserted() (uint32, error) {
	return s.docnoCounter.Current()
}

// DocumentNumber resolves an external document id to its docno, or
// found=false if docID has never been indexed.
func (s *Storage) DocumentNumber(docID string) (docno uint32, found bool, err error) {
	return s.docIDDict.Lookup(docID)
}

// DocumentStatistics reads one stored field for docno: kind selects the
// block family ("attribute" or "metadata") and name selects the field
// within it.
func (s *Storage) DocumentStatistics(docno uint32, kind, name string) (string, error) {
	switch kind {
	case "attribute":
		attribno, found, err := s.attribDict.Lookup(name)
		if err != nil || !found {
			return "", err
		}
		value, found, err := s.drv.ReadValue(storage.DocAttributeKey(docno, attribno))
		if err != nil || !found {
			return "", err
		}
		return string(value), nil
	case "metadata":
		if s.metaCache != nil {
			blk, err := s.metaCache.Get(docno)
			if err != nil || blk == nil {
				return "", err
			}
			v, err := blk.Get(docno, name)
			if err != nil {
				return "", nil
			}
			return formatFloat(v), nil
		}
		store := storage.NewMetadataBlockStore(s.drv, s.schema)
		blk, err := store.Load(docno)
		if err != nil || blk == nil {
			return "", err
		}
		v, err := blk.Get(docno, name)
		if err != nil {
			return "", nil
		}
		return formatFloat(v), nil
	default:
		return "", nil
	}
}
