package rank

import "sort"

// RankedList is one peer's (or one shard's) ranking result, carrying the
// bookkeeping the fan-in merge needs (spec §4.9): the highest evaluation
// pass any contributing node reached, and the total number of documents
// ranked/visited across all contributors.
type RankedList struct {
	EvaluationPass int
	NofRanked      int
	NofVisited     int
	Ranks          []ScoredDoc
}

// betterForMerge reports whether a ranks strictly above b when fanning in
// per-shard results: higher weight wins, ties broken by the higher docno.
// This is the opposite tie direction from better() in ranker.go, which
// breaks ties by the lower docno for single-shard retention — fan-in merge
// uses the descending rule instead (spec §4.9's merge tie-break rule).
func betterForMerge(a, b ScoredDoc) bool {
	if d := a.Weight - b.Weight; d > weightEpsilon || d < -weightEpsilon {
		return a.Weight > b.Weight
	}
	return a.Docno > b.Docno
}

// MergeRankedLists combines per-shard ranked lists into a single top-K
// list (spec §4.9's distributed fan-in merge): evaluation_pass is the max
// across lists, nof_ranked/nof_visited are summed, and Ranks is the
// merge-sorted union truncated to k.
func MergeRankedLists(lists []RankedList, k int) RankedList {
	merged := RankedList{}
	var all []ScoredDoc
	for _, l := range lists {
		if l.EvaluationPass > merged.EvaluationPass {
			merged.EvaluationPass = l.EvaluationPass
		}
		merged.NofRanked += l.NofRanked
		merged.NofVisited += l.NofVisited
		all = append(all, l.Ranks...)
	}
	sort.Slice(all, func(i, j int) bool { return betterForMerge(all[i], all[j]) })
	if len(all) > k {
		all = all[:k]
	}
	merged.Ranks = all
	return merged
}
