package rank

import "container/heap"

// weightEpsilon is the absolute tolerance used to treat two weights as
// equal for tie-breaking purposes (spec §4.9: tie-break rule).
const weightEpsilon = 1e-9

// smallKThreshold is the K below which an insertion-sorted array
// outperforms a heap for the small, frequent Offer/evict traffic a ranker
// sees; above it the heap's O(log K) insert wins.
const smallKThreshold = 128

// ScoredDoc is one ranked document.
type ScoredDoc struct {
	Docno  uint32
	Weight float64
}

// better reports whether a ranks strictly above b: higher weight wins,
// ties broken by the strictly lower docno (spec §4.9's tie-break rule).
func better(a, b ScoredDoc) bool {
	if d := a.Weight - b.Weight; d > weightEpsilon || d < -weightEpsilon {
		return a.Weight > b.Weight
	}
	return a.Docno < b.Docno
}

// Ranker accumulates (docno, weight) offers and retains only the top K
// (spec §4.9). Implementations are not safe for concurrent use.
type Ranker interface {
	// Offer presents one scored document. The ranker may discard it
	// immediately if it cannot beat the current bottom of the top K.
	Offer(docno uint32, weight float64)
	// Result returns ranks [firstRank, K) in descending order. firstRank
	// beyond the number of retained documents returns an empty slice.
	Result(firstRank int) []ScoredDoc
	// Len returns the number of documents currently retained.
	Len() int
}

// NewTopKRanker returns the small-K array ranker for k <= 128 and the
// large-K heap ranker otherwise, sharing the Ranker contract (spec §4.9:
// "two representative implementations... sharing one external contract").
func NewTopKRanker(k int) Ranker {
	if k <= smallKThreshold {
		return newArrayRanker(k)
	}
	return newHeapRanker(k)
}

// arrayRanker keeps a descending-sorted slice of at most k documents,
// inserting new offers by binary search. Appropriate for small k where
// shifting a slice is cheaper than heap bookkeeping.
type arrayRanker struct {
	k     int
	items []ScoredDoc
}

func newArrayRanker(k int) *arrayRanker {
	return &arrayRanker{k: k, items: make([]ScoredDoc, 0, k)}
}

func (r *arrayRanker) Offer(docno uint32, weight float64) {
	doc := ScoredDoc{Docno: docno, Weight: weight}
	if len(r.items) == r.k && !better(doc, r.items[len(r.items)-1]) {
		return
	}
	lo, hi := 0, len(r.items)
	for lo < hi {
		mid := (lo + hi) / 2
		if better(doc, r.items[mid]) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	r.items = append(r.items, ScoredDoc{})
	copy(r.items[lo+1:], r.items[lo:])
	r.items[lo] = doc
	if len(r.items) > r.k {
		r.items = r.items[:r.k]
	}
}

func (r *arrayRanker) Result(firstRank int) []ScoredDoc {
	if firstRank >= len(r.items) {
		return nil
	}
	return r.items[firstRank:]
}

func (r *arrayRanker) Len() int { return len(r.items) }

// heapRanker keeps a min-heap (by rank order, so the root is the worst
// retained document) of at most k documents, evicting the root whenever a
// better offer arrives at capacity. Grounded on the container/heap
// min-block-heap pattern used for multi-term query evaluation.
type heapRanker struct {
	k    int
	heap worstFirstHeap
}

func newHeapRanker(k int) *heapRanker {
	return &heapRanker{k: k, heap: make(worstFirstHeap, 0, k)}
}

func (r *heapRanker) Offer(docno uint32, weight float64) {
	doc := ScoredDoc{Docno: docno, Weight: weight}
	if len(r.heap) < r.k {
		heap.Push(&r.heap, doc)
		return
	}
	if len(r.heap) == 0 || !better(doc, r.heap[0]) {
		return
	}
	r.heap[0] = doc
	heap.Fix(&r.heap, 0)
}

func (r *heapRanker) Result(firstRank int) []ScoredDoc {
	sorted := make([]ScoredDoc, len(r.heap))
	copy(sorted, r.heap)
	// insertion sort descending: k is bounded by the caller's top-K
	// request and this runs once, at result time.
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && better(sorted[j], sorted[j-1]); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if firstRank >= len(sorted) {
		return nil
	}
	return sorted[firstRank:]
}

func (r *heapRanker) Len() int { return len(r.heap) }

// worstFirstHeap is a container/heap.Interface whose root is always the
// worst-ranked element currently retained, so overflow eviction is O(log k).
type worstFirstHeap []ScoredDoc

func (h worstFirstHeap) Len() int { return len(h) }
func (h worstFirstHeap) Less(i, j int) bool {
	// h[i] belongs above the root when h[j] outranks h[i]: the root
	// bubbles toward whichever element is worst.
	return better(h[j], h[i])
}
func (h worstFirstHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *worstFirstHeap) Push(x any)   { *h = append(*h, x.(ScoredDoc)) }
func (h *worstFirstHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
