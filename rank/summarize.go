package rank

import (
	"strconv"
	"strings"

	"github.com/patrickfrey/strus-sub002/bytekv"
	"github.com/patrickfrey/strus-sub002/storage"
)

// Summary is one named piece of per-document explain/preview data attached
// to a ranked result (spec §4.9's summarizer tuple): Name identifies the
// summarizer, Value its rendered text, Weight an optional relevance
// contribution and Index a position within a multi-valued summary (e.g.
// the Nth matching excerpt).
type Summary struct {
	Name   string
	Value  string
	Weight float64
	Index  int
}

// Summarizer produces summaries for one document. Implementations are
// stateless across documents: every call is independent (spec §4.9).
type Summarizer interface {
	Summarize(docno uint32) ([]Summary, error)
}

// Dispatch runs every summarizer over docno in order and concatenates
// their results.
func Dispatch(summarizers []Summarizer, docno uint32) ([]Summary, error) {
	var out []Summary
	for _, s := range summarizers {
		res, err := s.Summarize(docno)
		if err != nil {
			return nil, err
		}
		out = append(out, res...)
	}
	return out, nil
}

// AttributeSummarizer renders a stored document attribute (spec §4.2) as a
// single summary.
type AttributeSummarizer struct {
	Name     string
	Drv      bytekv.Driver
	Attribno uint32
}

func (s AttributeSummarizer) Summarize(docno uint32) ([]Summary, error) {
	value, found, err := s.Drv.ReadValue(storage.DocAttributeKey(docno, s.Attribno))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return []Summary{{Name: s.Name, Value: string(value)}}, nil
}

// MetadataSummarizer renders a numeric metadata column as a summary,
// formatting the float with the minimal number of digits.
type MetadataSummarizer struct {
	Name  string
	Field string
	Store *storage.MetadataBlockStore
}

func (s MetadataSummarizer) Summarize(docno uint32) ([]Summary, error) {
	blk, err := s.Store.Load(docno)
	if err != nil || blk == nil {
		return nil, err
	}
	v, err := blk.Get(docno, s.Field)
	if err != nil {
		return nil, nil
	}
	return []Summary{{Name: s.Name, Value: strconv.FormatFloat(v, 'g', -1, 64), Weight: v}}, nil
}

// ExcerptSummarizer renders the first Window terms of a document's forward
// index for one type as a single space-joined preview string (spec
// §4.2.4's forward index, read the way a title/snippet summary would).
type ExcerptSummarizer struct {
	Name   string
	Typeno uint32
	Store  *storage.ForwardBlockStore
	Window int
}

func (s ExcerptSummarizer) Summarize(docno uint32) ([]Summary, error) {
	terms := make([]string, 0, s.Window)
	position := uint32(1)
	for len(terms) < s.Window {
		blk, found, err := s.Store.Load(s.Typeno, docno, position)
		if err != nil {
			return nil, err
		}
		if !found {
			break
		}
		for _, e := range blk.Entries() {
			if e.Position < position {
				continue
			}
			terms = append(terms, e.Term)
			if len(terms) == s.Window {
				break
			}
		}
		position = blk.BlockID() + 1
	}
	if len(terms) == 0 {
		return nil, nil
	}
	return []Summary{{Name: s.Name, Value: strings.Join(terms, " ")}}, nil
}
