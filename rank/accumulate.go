package rank

import "github.com/patrickfrey/strus-sub002/query"

// WeightTerm pairs a selector iterator with the weighting function and
// scalar factor applied to it when the selector matches the current
// candidate (spec §4.9's weighting set entries).
type WeightTerm struct {
	Iterator  query.Iterator
	Weighting Weighting
	Factor    float64
}

// MetadataFilter decides whether a candidate document should reach the
// ranker at all (spec §4.9's metadata_filter predicate), independent of
// scoring.
type MetadataFilter func(docno uint32) (bool, error)

// Accumulator drives a set of selector iterators forward in lockstep,
// scoring each joint candidate against a weighting set and forwarding
// surviving candidates to a Ranker (spec §4.9):
//
//	repeat:
//	  d <- min over selectors of skip_doc(current+1)
//	  if d = 0: done
//	  w <- 0
//	  for each (it, weighting, factor) in weighting set:
//	    if it.skip_doc(d) = d: w += factor * weighting(it, d)
//	  if metadata_filter(d): emit (d, w) to ranker
//	  current <- d
type Accumulator struct {
	Selectors []query.Iterator
	Weights   []WeightTerm
	Filter    MetadataFilter
}

// Run drives the loop to exhaustion, offering every surviving candidate to
// ranker, and returns the number of candidates visited and the number
// actually ranked.
func (a *Accumulator) Run(ranker Ranker) (visited, ranked int, err error) {
	current := uint32(0)
	for {
		d, err := a.minSelector(current + 1)
		if err != nil {
			return visited, ranked, err
		}
		if d == 0 {
			return visited, ranked, nil
		}
		visited++
		weight := 0.0
		for _, wt := range a.Weights {
			matched, err := wt.Iterator.SkipDoc(d)
			if err != nil {
				return visited, ranked, err
			}
			if matched != d {
				continue
			}
			v, err := wt.Weighting.Weight(wt.Iterator, d)
			if err != nil {
				return visited, ranked, err
			}
			weight += wt.Factor * v
		}
		pass := true
		if a.Filter != nil {
			pass, err = a.Filter(d)
			if err != nil {
				return visited, ranked, err
			}
		}
		if pass {
			ranker.Offer(d, weight)
			ranked++
		}
		current = d
	}
}

func (a *Accumulator) minSelector(target uint32) (uint32, error) {
	min := uint32(0)
	for _, sel := range a.Selectors {
		d, err := sel.SkipDoc(target)
		if err != nil {
			return 0, err
		}
		if d == 0 {
			continue
		}
		if min == 0 || d < min {
			min = d
		}
	}
	return min, nil
}
