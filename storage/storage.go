package storage

import (
	"fmt"
	"strings"

	"github.com/patrickfrey/strus-sub002/bytekv"
)

// ChainSummary describes one term's posting chain for diagnostic reporting
// and document-frequency queries. It plays
// the same role the teacher's Segment.PrintInfo table did, just sourced from
// a live KV chain instead of an in-memory Segment.
type ChainSummary struct {
	Typeno, Termno uint32
	Blocks         int
	Postings       int
	MinDocID       uint32
	MaxDocID       uint32
}

// SummarizeChain walks a term's posting chain end to end and reports its
// shape. Its Postings count is the df that client.Storage.DocumentFrequency
// and query.NewTermIterator report; PrintChainReport renders a list of them.
func SummarizeChain(drv bytekv.Driver, typeno, termno uint32) (ChainSummary, error) {
	sum := ChainSummary{Typeno: typeno, Termno: termno}
	store := NewPostingBlockStore(drv)
	blk, ok, err := store.LoadFirst(typeno, termno)
	if err != nil {
		return sum, err
	}
	first := true
	for ok {
		sum.Blocks++
		sum.Postings += blk.Docnos.Cardinality()
		if first {
			sum.MinDocID = blk.Docnos.Minimum()
			first = false
		}
		sum.MaxDocID = blk.Docnos.Maximum()
		next := blk.BlockID()
		blk, ok, err = store.Load(typeno, termno, next+1)
		if err != nil {
			return sum, err
		}
	}
	return sum, nil
}

// PrintChainReport renders a table of chain summaries as a string, in the column
// layout the teacher's Segment.PrintInfo used for its block summary.
func PrintChainReport(summaries []ChainSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-8s | %-8s | %-8s | %-12s | %-10s | %-10s |\n",
		"Type", "Term", "Blocks", "Postings", "MinDocID", "MaxDocID")
	b.WriteString(strings.Repeat("-", 70))
	b.WriteString("\n")
	total := 0
	for _, s := range summaries {
		fmt.Fprintf(&b, "%-8d | %-8d | %-8d | %-12d | %-10d | %-10d |\n",
			s.Typeno, s.Termno, s.Blocks, s.Postings, s.MinDocID, s.MaxDocID)
		total += s.Postings
	}
	b.WriteString(strings.Repeat("-", 70))
	fmt.Fprintf(&b, "\nTotal postings: %d\n", total)
	return b.String()
}
