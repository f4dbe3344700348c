package query

// CardinalityIterator matches docs where at least k of its children match
// (spec §4.8's "cardinality k ⇒ any k-of-N instead of all-of-N"), a
// generalization of Intersect (k == len(children)) and Union (k == 1).
type CardinalityIterator struct {
	children []Iterator
	k        int
	current  uint32
}

// NewCardinality builds a k-of-N join over children.
func NewCardinality(k int, children ...Iterator) *CardinalityIterator {
	return &CardinalityIterator{children: children, k: k}
}

func (c *CardinalityIterator) SkipDoc(target uint32) (uint32, error) {
	if target == 0 {
		target = 1
	}
	candidate := target
	for {
		docs := make([]uint32, len(c.children))
		min := uint32(0)
		for i, ch := range c.children {
			d, err := ch.SkipDoc(candidate)
			if err != nil {
				return 0, err
			}
			docs[i] = d
			if d != 0 && (min == 0 || d < min) {
				min = d
			}
		}
		if min == 0 {
			return 0, nil
		}
		count := 0
		for _, d := range docs {
			if d == min {
				count++
			}
		}
		if count >= c.k {
			c.current = min
			return min, nil
		}
		candidate = min + 1
	}
}

func (c *CardinalityIterator) SkipPos(target uint32) (uint32, error) {
	min := uint32(0)
	for _, ch := range c.children {
		d, err := ch.SkipDoc(c.current)
		if err != nil {
			return 0, err
		}
		if d != c.current {
			continue
		}
		p, err := ch.SkipPos(target)
		if err != nil {
			return 0, err
		}
		if p != 0 && (min == 0 || p < min) {
			min = p
		}
	}
	return min, nil
}

func (c *CardinalityIterator) FirstDoc() (uint32, error) { return c.SkipDoc(1) }

func (c *CardinalityIterator) DocumentFrequency() (int, error) {
	total := 0
	for _, ch := range c.children {
		df, err := ch.DocumentFrequency()
		if err != nil {
			return 0, err
		}
		total += df
	}
	return total, nil
}

func (c *CardinalityIterator) FeatureID() string {
	return "cardinality(" + featureIDs(c.children) + ")"
}
