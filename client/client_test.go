package client

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/patrickfrey/strus-sub002/bytekv"
	"github.com/patrickfrey/strus-sub002/bytekv/memdriver"
	"github.com/patrickfrey/strus-sub002/storage"
)

func testSchema() storage.MetadataSchema {
	return storage.MetadataSchema{Columns: []bytekv.MetadataColumn{{Name: "rank", Type: "f32"}}}
}

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	drv, err := memdriver.Open(bytekv.Config{})
	require.NoError(t, err)
	s, err := Open(testSchema(), Config{Driver: drv})
	require.NoError(t, err)
	return s
}

func TestCommitIndexesDocumentAndUpdatesCounters(t *testing.T) {
	s := openTestStorage(t)

	tx := s.NewTransaction()
	docno, err := tx.NewDocument("doc-1")
	require.NoError(t, err)
	tx.SetAttribute(docno, "title", "hello world")
	tx.SetMetadata(docno, "rank", 0.75)
	require.NoError(t, tx.AddTermOccurrence("word", "hello", docno, []uint32{0}))
	require.NoError(t, s.Commit(tx))

	max, err := s.MaxDocumentNumber()
	require.NoError(t, err)
	require.Equal(t, docno, max)

	inserted, err := s.NofDocumentsInserted()
	require.NoError(t, err)
	require.Equal(t, docno, inserted)

	df, err := s.DocumentFrequency("word", "hello")
	require.NoError(t, err)
	require.Equal(t, 1, df)

	got, err := s.DocumentStatistics(docno, "attribute", "title")
	require.NoError(t, err)
	require.Equal(t, "hello world", got)

	gotRank, err := s.DocumentStatistics(docno, "metadata", "rank")
	require.NoError(t, err)
	require.Equal(t, formatFloat(0.75), gotRank)

	foundDocno, found, err := s.DocumentNumber("doc-1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, docno, foundDocno)
}

func TestCommitFeedsStatisticsBuilder(t *testing.T) {
	drv, err := memdriver.Open(bytekv.Config{})
	require.NoError(t, err)
	peerID := uuid.New()
	s, err := Open(testSchema(), Config{Driver: drv, StatsPeerID: peerID})
	require.NoError(t, err)

	tx := s.NewTransaction()
	docno, err := tx.NewDocument("doc-1")
	require.NoError(t, err)
	require.NoError(t, tx.AddTermOccurrence("word", "hello", docno, []uint32{0}))
	require.NoError(t, s.Commit(tx))

	msg := s.statsBuilder.BuildDelta()
	require.Equal(t, peerID, msg.PeerID)
	require.Equal(t, int64(1), msg.NofDocsDelta)
	require.Len(t, msg.Changes, 1)
	require.Equal(t, "word", msg.Changes[0].Type)
	require.Equal(t, "hello", msg.Changes[0].Term)
	require.Equal(t, int64(1), msg.Changes[0].Delta)
}

func TestDocumentFrequencyUnknownTermIsZero(t *testing.T) {
	s := openTestStorage(t)
	df, err := s.DocumentFrequency("word", "missing")
	require.NoError(t, err)
	require.Equal(t, 0, df)
}

func TestDocumentStatisticsUnknownFieldIsEmpty(t *testing.T) {
	s := openTestStorage(t)
	tx := s.NewTransaction()
	docno, err := tx.NewDocument("doc-1")
	require.NoError(t, err)
	require.NoError(t, s.Commit(tx))

	got, err := s.DocumentStatistics(docno, "attribute", "missing")
	require.NoError(t, err)
	require.Equal(t, "", got)
}

func TestNameIteratorsWalkAssignedNames(t *testing.T) {
	s := openTestStorage(t)
	tx := s.NewTransaction()
	docno, err := tx.NewDocument("doc-1")
	require.NoError(t, err)
	require.NoError(t, tx.AddTermOccurrence("word", "hello", docno, []uint32{0}))
	require.NoError(t, tx.AddTermOccurrence("word", "world", docno, []uint32{1}))
	require.NoError(t, s.Commit(tx))

	it, err := s.TermNameIterator()
	require.NoError(t, err)
	defer it.Close()

	seen := map[string]bool{}
	for {
		entry, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		seen[entry.Name] = true
	}
	require.True(t, seen["hello"])
	require.True(t, seen["world"])

	typeIt, err := s.TypeNameIterator()
	require.NoError(t, err)
	defer typeIt.Close()
	entry, ok, err := typeIt.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "word", entry.Name)
}

func TestTermIteratorUnknownReturnsNullIterator(t *testing.T) {
	s := openTestStorage(t)
	it, err := s.TermIterator("word", "missing")
	require.NoError(t, err)
	doc, err := it.FirstDoc()
	require.NoError(t, err)
	require.Equal(t, uint32(0), doc)
}

func TestCheckDocumentReportsMismatches(t *testing.T) {
	s := openTestStorage(t)
	tx := s.NewTransaction()
	docno, err := tx.NewDocument("doc-1")
	require.NoError(t, err)
	tx.SetAttribute(docno, "title", "hello world")
	tx.SetMetadata(docno, "rank", 0.5)
	require.NoError(t, s.Commit(tx))

	var lines []string
	log := NewPrintfLog(func(format string, args ...any) {
		lines = append(lines, format)
		_ = args
	})

	mismatches, err := s.CheckDocument(docno, DocumentBuilder{
		Attributes: map[string]string{"title": "hello world"},
		Metadata:   map[string]float64{"rank": 0.5},
	}, log)
	require.NoError(t, err)
	require.Equal(t, 0, mismatches)
	require.Empty(t, lines)

	mismatches, err = s.CheckDocument(docno, DocumentBuilder{
		Attributes: map[string]string{"title": "something else"},
	}, log)
	require.NoError(t, err)
	require.Equal(t, 1, mismatches)
	require.Len(t, lines, 1)
}

func TestDumpIteratorDecodesNameAndAttributeEntries(t *testing.T) {
	s := openTestStorage(t)
	tx := s.NewTransaction()
	docno, err := tx.NewDocument("doc-1")
	require.NoError(t, err)
	tx.SetAttribute(docno, "title", "hello world")
	require.NoError(t, tx.AddTermOccurrence("word", "hello", docno, []uint32{0}))
	require.NoError(t, s.Commit(tx))

	it, err := s.DumpIterator()
	require.NoError(t, err)
	defer it.Close()

	var entries []DumpEntry
	for {
		entry, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		entries = append(entries, entry)
	}
	require.NotEmpty(t, entries)

	var sawAttribute, sawTermName bool
	for _, e := range entries {
		if e.Value == "hello world" {
			sawAttribute = true
		}
		if e.Label == "V:hello" {
			sawTermName = true
		}
	}
	require.True(t, sawAttribute)
	require.True(t, sawTermName)
}

func TestDumpIteratorDecodesMetadataBlock(t *testing.T) {
	s := openTestStorage(t)
	tx := s.NewTransaction()
	docno, err := tx.NewDocument("doc-1")
	require.NoError(t, err)
	tx.SetMetadata(docno, "rank", 0.5)
	require.NoError(t, s.Commit(tx))

	it, err := s.DumpIterator()
	require.NoError(t, err)
	defer it.Close()

	var sawMetadata bool
	for {
		entry, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		if entry.Label == "m:blockno=0" {
			sawMetadata = true
			require.Contains(t, entry.Value, "rank=0.5")
		}
	}
	require.True(t, sawMetadata)
}
