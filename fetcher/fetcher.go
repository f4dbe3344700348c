// Package fetcher is the document ingestion front door: it fetches a JSON
// term-posting document from a URL or local file and stages it into a
// txn.Transaction, the same role the teacher's FetchJson/ParseJsonSegments
// pair played for the old flat-segment format, generalized to the new
// typed (typeName, term, positions) occurrence model.
package fetcher

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/patrickfrey/strus-sub002/txn"
)

// TermPosting is a single term occurrence record in the ingestion JSON.
// DocID is the external identifier for the document (resolved through
// txn.Transaction.NewDocument, same as any other caller-chosen docID); it
// stays numeric in the wire format because that is what the teacher's
// data generator already produces, but it is always converted to a string
// key before it touches the document-id dictionary.
type TermPosting struct {
	Term          string   `json:"term"`
	DocID         uint32   `json:"doc_id"`
	TermFrequency float32  `json:"term_frequency"`
	Positions     []uint32 `json:"positions,omitempty"`
}

// TermPostingRoot is the top-level shape of an ingestion document: one
// segment per batch of postings, mirroring the teacher's per-segment JSON
// layout.
type TermPostingRoot struct {
	Segments [][]TermPosting `json:"segments"`
}

// FetchJson fetches JSON data from either a URL or a local file path.
func FetchJson(path string) ([]byte, error) {
	// Check if the path is a URL (starts with "http" or "https")
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		response, err := http.Get(path)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch json: %w", err)
		}
		defer response.Body.Close()

		if response.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("non-ok HTTP response: %s", response.Status)
		}

		data, err := io.ReadAll(response.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		return data, nil
	}

	// Treat it as a local file path
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read local file: %w", err)
	}
	return data, nil
}

// ParseTermPostings parses the JSON data into a slice of segments, each a
// slice of term-posting records.
func ParseTermPostings(data []byte) ([][]TermPosting, error) {
	var root TermPostingRoot
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse json: %w", err)
	}
	return root.Segments, nil
}

// positionsFor derives the within-document positions a posting occupies: an
// explicit Positions list wins, otherwise one position per unit of
// TermFrequency (rounded, minimum one), matching the only signal the
// teacher's generator ever produced for a document/term pair.
func positionsFor(p TermPosting) []uint32 {
	if len(p.Positions) > 0 {
		return p.Positions
	}
	count := int(p.TermFrequency + 0.5)
	if count < 1 {
		count = 1
	}
	positions := make([]uint32, count)
	for i := range positions {
		positions[i] = uint32(i)
	}
	return positions
}

// IngestSegments stages every posting record in segments into tx under
// typeName, resolving each record's DocID to a docno via NewDocument. The
// caller commits tx once every segment file for a batch has been staged,
// matching the teacher's one-commit-per-batch ingestion loop.
func IngestSegments(tx *txn.Transaction, typeName string, segments [][]TermPosting) error {
	for _, segment := range segments {
		for _, posting := range segment {
			docno, err := tx.NewDocument(strconv.FormatUint(uint64(posting.DocID), 10))
			if err != nil {
				return err
			}
			if err := tx.AddTermOccurrence(typeName, posting.Term, docno, positionsFor(posting)); err != nil {
				return err
			}
		}
	}
	return nil
}
