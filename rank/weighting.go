package rank

import (
	"math"

	"github.com/patrickfrey/strus-sub002/query"
	"github.com/patrickfrey/strus-sub002/storage"
)

// Weighting computes a document's score contribution for one selector
// iterator already positioned on docno (spec §4.9: the weighting function
// set). Implementations must not advance it past docno.
type Weighting interface {
	Weight(it query.Iterator, docno uint32) (float64, error)
}

// Frequency counts it's within-document occurrences at the iterator's
// current document by walking skip_pos from 1 to exhaustion. Term
// iterators could expose this more cheaply, but counting through the
// Iterator contract lets any join (not just a bare term) be weighted.
func Frequency(it query.Iterator) (int, error) {
	count := 0
	pos, err := it.SkipPos(1)
	if err != nil {
		return 0, err
	}
	for pos != 0 {
		count++
		pos, err = it.SkipPos(pos + 1)
		if err != nil {
			return 0, err
		}
	}
	return count, nil
}

// ConstantWeighting always contributes the same value, used for boolean
// must-match clauses that should not affect ranking.
type ConstantWeighting struct {
	Value float64
}

func (w ConstantWeighting) Weight(query.Iterator, uint32) (float64, error) { return w.Value, nil }

// FrequencyWeighting scores by raw within-document term frequency.
type FrequencyWeighting struct{}

func (FrequencyWeighting) Weight(it query.Iterator, docno uint32) (float64, error) {
	ff, err := Frequency(it)
	if err != nil {
		return 0, err
	}
	return float64(ff), nil
}

// BM25Weighting implements the classic BM25 scoring formula (spec §4.9):
//
//	idf * ff * (k1+1) / (ff + k1 * (1 - b + b*dl/avgdl))
//
// where idf = log((N - df + 0.5) / (df + 0.5)), N is the total corpus
// document count, df the selector's document frequency, ff the
// within-document term frequency, dl the document length and avgdl the
// corpus average document length. dl is read from a metadata column
// (LengthFieldName) via MetaStore; a missing column is treated as avgdl,
// neutralizing the length-normalization term.
type BM25Weighting struct {
	K1, B           float64
	Avgdl           float64
	TotalDocs       int
	MetaStore       *storage.MetadataBlockStore
	LengthFieldName string
}

func (w BM25Weighting) Weight(it query.Iterator, docno uint32) (float64, error) {
	df, err := it.DocumentFrequency()
	if err != nil {
		return 0, err
	}
	if df <= 0 {
		return 0, nil
	}
	ff, err := Frequency(it)
	if err != nil {
		return 0, err
	}
	if ff == 0 {
		return 0, nil
	}
	dl := w.Avgdl
	if w.MetaStore != nil && w.LengthFieldName != "" {
		blk, err := w.MetaStore.Load(docno)
		if err != nil {
			return 0, err
		}
		if blk != nil {
			v, err := blk.Get(docno, w.LengthFieldName)
			if err == nil && v > 0 {
				dl = v
			}
		}
	}
	idf := math.Log((float64(w.TotalDocs) - float64(df) + 0.5) / (float64(df) + 0.5))
	num := float64(ff) * (w.K1 + 1)
	denom := float64(ff) + w.K1*(1-w.B+w.B*dl/w.Avgdl)
	return idf * num / denom, nil
}

// MetadataFieldWeighting reads a numeric metadata column directly as the
// score contribution, used for e.g. a stored relevance or popularity rank.
type MetadataFieldWeighting struct {
	Field string
	Store *storage.MetadataBlockStore
}

func (w MetadataFieldWeighting) Weight(it query.Iterator, docno uint32) (float64, error) {
	blk, err := w.Store.Load(docno)
	if err != nil {
		return 0, err
	}
	if blk == nil {
		return 0, nil
	}
	return blk.Get(docno, w.Field)
}
