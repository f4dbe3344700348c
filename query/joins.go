package query

import "strings"

// skipDocAll advances every iterator in children to a common docno >=
// target, using the algorithm spec §4.8 describes for Intersect: the next
// candidate is the max over children's skip_doc on the current candidate,
// repeated until all children agree. Returns 0 once any child is
// exhausted.
func skipDocAll(children []Iterator, target uint32) (uint32, error) {
	candidate := target
	for {
		agreed := true
		for _, c := range children {
			d, err := c.SkipDoc(candidate)
			if err != nil {
				return 0, err
			}
			if d == 0 {
				return 0, nil
			}
			if d > candidate {
				candidate = d
				agreed = false
			}
		}
		if agreed {
			return candidate, nil
		}
	}
}

func featureIDs(children []Iterator) string {
	ids := make([]string, len(children))
	for i, c := range children {
		ids[i] = c.FeatureID()
	}
	return strings.Join(ids, ",")
}

// IntersectIterator matches docs present in every child (spec §4.8).
type IntersectIterator struct {
	children []Iterator
	current  uint32
}

// NewIntersect builds an AND join over children.
func NewIntersect(children ...Iterator) *IntersectIterator {
	return &IntersectIterator{children: children}
}

func (x *IntersectIterator) SkipDoc(target uint32) (uint32, error) {
	if target == 0 {
		target = 1
	}
	d, err := skipDocAll(x.children, target)
	if err != nil {
		return 0, err
	}
	x.current = d
	return d, nil
}

func (x *IntersectIterator) SkipPos(target uint32) (uint32, error) {
	min := uint32(0)
	for _, c := range x.children {
		p, err := c.SkipPos(target)
		if err != nil {
			return 0, err
		}
		if p != 0 && (min == 0 || p < min) {
			min = p
		}
	}
	return min, nil
}

func (x *IntersectIterator) FirstDoc() (uint32, error) { return x.SkipDoc(1) }

func (x *IntersectIterator) DocumentFrequency() (int, error) {
	min := -1
	for _, c := range x.children {
		df, err := c.DocumentFrequency()
		if err != nil {
			return 0, err
		}
		if min == -1 || df < min {
			min = df
		}
	}
	if min == -1 {
		min = 0
	}
	return min, nil
}

func (x *IntersectIterator) FeatureID() string { return "intersect(" + featureIDs(x.children) + ")" }

// UnionIterator matches docs present in any child (spec §4.8); the
// position stream is the union-merge of whichever children currently sit
// on the matched docno.
type UnionIterator struct {
	children []Iterator
	current  uint32
}

// NewUnion builds an OR join over children.
func NewUnion(children ...Iterator) *UnionIterator {
	return &UnionIterator{children: children}
}

func (u *UnionIterator) SkipDoc(target uint32) (uint32, error) {
	if target == 0 {
		target = 1
	}
	min := uint32(0)
	for _, c := range u.children {
		d, err := c.SkipDoc(target)
		if err != nil {
			return 0, err
		}
		if d != 0 && (min == 0 || d < min) {
			min = d
		}
	}
	u.current = min
	return min, nil
}

func (u *UnionIterator) SkipPos(target uint32) (uint32, error) {
	min := uint32(0)
	for _, c := range u.children {
		d, err := c.SkipDoc(u.current)
		if err != nil {
			return 0, err
		}
		if d != u.current {
			continue
		}
		p, err := c.SkipPos(target)
		if err != nil {
			return 0, err
		}
		if p != 0 && (min == 0 || p < min) {
			min = p
		}
	}
	return min, nil
}

func (u *UnionIterator) FirstDoc() (uint32, error) { return u.SkipDoc(1) }

func (u *UnionIterator) DocumentFrequency() (int, error) {
	total := 0
	for _, c := range u.children {
		df, err := c.DocumentFrequency()
		if err != nil {
			return 0, err
		}
		total += df
	}
	return total, nil
}

func (u *UnionIterator) FeatureID() string { return "union(" + featureIDs(u.children) + ")" }

// DifferenceIterator matches docs of A that are not in B (spec §4.8).
type DifferenceIterator struct {
	a, b    Iterator
	current uint32
}

// NewDifference builds a NOT join: matches of a minus matches of b.
func NewDifference(a, b Iterator) *DifferenceIterator {
	return &DifferenceIterator{a: a, b: b}
}

func (d *DifferenceIterator) SkipDoc(target uint32) (uint32, error) {
	if target == 0 {
		target = 1
	}
	for {
		da, err := d.a.SkipDoc(target)
		if err != nil || da == 0 {
			return 0, err
		}
		db, err := d.b.SkipDoc(da)
		if err != nil {
			return 0, err
		}
		if db != da {
			d.current = da
			return da, nil
		}
		target = da + 1
	}
}

func (d *DifferenceIterator) SkipPos(target uint32) (uint32, error) { return d.a.SkipPos(target) }

func (d *DifferenceIterator) FirstDoc() (uint32, error) { return d.SkipDoc(1) }

func (d *DifferenceIterator) DocumentFrequency() (int, error) { return d.a.DocumentFrequency() }

func (d *DifferenceIterator) FeatureID() string {
	return "diff(" + d.a.FeatureID() + "," + d.b.FeatureID() + ")"
}

// SequenceIterator matches docs where children's positions appear in
// child order within distance rng of each other (spec §4.8's Sequence(R)).
// rng == 0 requires adjacent positions (p[i+1] == p[i]+1).
type SequenceIterator struct {
	children []Iterator
	rng      uint32
	current  uint32
}

// NewSequence builds a Sequence(rng) join over children, in the order
// given.
func NewSequence(rng uint32, children ...Iterator) *SequenceIterator {
	return &SequenceIterator{children: children, rng: rng}
}

func (s *SequenceIterator) tryDoc(doc uint32) (bool, error) {
	for _, c := range s.children {
		d, err := c.SkipDoc(doc)
		if err != nil {
			return false, err
		}
		if d != doc {
			return false, nil
		}
	}
	pos, err := s.children[0].SkipPos(1)
	if err != nil {
		return false, err
	}
	for pos != 0 {
		last := pos
		ok := true
		for _, c := range s.children[1:] {
			p, err := c.SkipPos(last + 1)
			if err != nil {
				return false, err
			}
			if p == 0 {
				return false, nil
			}
			if s.rng == 0 {
				if p != last+1 {
					ok = false
					break
				}
			} else if p > last+s.rng {
				ok = false
				break
			}
			last = p
		}
		if ok {
			return true, nil
		}
		pos, err = s.children[0].SkipPos(pos + 1)
		if err != nil {
			return false, err
		}
	}
	return false, nil
}

func (s *SequenceIterator) SkipDoc(target uint32) (uint32, error) {
	if target == 0 {
		target = 1
	}
	for {
		doc, err := skipDocAll(s.children, target)
		if err != nil || doc == 0 {
			return 0, err
		}
		ok, err := s.tryDoc(doc)
		if err != nil {
			return 0, err
		}
		if ok {
			s.current = doc
			return doc, nil
		}
		target = doc + 1
	}
}

func (s *SequenceIterator) SkipPos(target uint32) (uint32, error) {
	return s.children[0].SkipPos(target)
}

func (s *SequenceIterator) FirstDoc() (uint32, error) { return s.SkipDoc(1) }

func (s *SequenceIterator) DocumentFrequency() (int, error) {
	return (&IntersectIterator{children: s.children}).DocumentFrequency()
}

func (s *SequenceIterator) FeatureID() string { return "sequence(" + featureIDs(s.children) + ")" }

// WithinIterator matches docs where all children's positions fit inside a
// window of size rng, in any order (spec §4.8's Within(R)). It uses the
// standard smallest-range-covering-one-element-per-list sliding window.
type WithinIterator struct {
	children []Iterator
	rng      uint32
	current  uint32
}

// NewWithin builds a Within(rng) join over children.
func NewWithin(rng uint32, children ...Iterator) *WithinIterator {
	return &WithinIterator{children: children, rng: rng}
}

func (win *WithinIterator) tryDoc(doc uint32) (bool, error) {
	cursors := make([]uint32, len(win.children))
	for i, c := range win.children {
		d, err := c.SkipDoc(doc)
		if err != nil {
			return false, err
		}
		if d != doc {
			return false, nil
		}
		p, err := c.SkipPos(1)
		if err != nil {
			return false, err
		}
		if p == 0 {
			return false, nil
		}
		cursors[i] = p
	}
	for {
		min, max, minIdx := cursors[0], cursors[0], 0
		for i, p := range cursors {
			if p < min {
				min, minIdx = p, i
			}
			if p > max {
				max = p
			}
		}
		if max-min <= win.rng {
			return true, nil
		}
		next, err := win.children[minIdx].SkipPos(min + 1)
		if err != nil {
			return false, err
		}
		if next == 0 {
			return false, nil
		}
		cursors[minIdx] = next
	}
}

func (win *WithinIterator) SkipDoc(target uint32) (uint32, error) {
	if target == 0 {
		target = 1
	}
	for {
		doc, err := skipDocAll(win.children, target)
		if err != nil || doc == 0 {
			return 0, err
		}
		ok, err := win.tryDoc(doc)
		if err != nil {
			return 0, err
		}
		if ok {
			win.current = doc
			return doc, nil
		}
		target = doc + 1
	}
}

func (win *WithinIterator) SkipPos(target uint32) (uint32, error) {
	return win.children[0].SkipPos(target)
}

func (win *WithinIterator) FirstDoc() (uint32, error) { return win.SkipDoc(1) }

func (win *WithinIterator) DocumentFrequency() (int, error) {
	return (&IntersectIterator{children: win.children}).DocumentFrequency()
}

func (win *WithinIterator) FeatureID() string { return "within(" + featureIDs(win.children) + ")" }
