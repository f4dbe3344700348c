package query

// StructureIndex resolves the (source,sink) position interval of the
// structure covering a document, used by structure-bounded joins (spec
// §4.8: "require all matches lie inside one (source,sink) structure
// interval, consumed from the struct block index"). The core doesn't
// persist a dedicated structure block family (see DESIGN.md); callers
// supply whatever interval source fits their document model (a sentence or
// paragraph boundary list derived from the forward index, for instance).
type StructureIndex interface {
	// Interval returns the bounds covering docno, or ok=false if docno
	// has no associated structure.
	Interval(docno uint32) (source, sink uint32, ok bool)
}

// StructureBoundedIterator wraps an inner join (Intersect, Sequence,
// Within, Cardinality) and additionally requires every child's matching
// position in the current document to fall inside the structure interval
// StructureIndex reports for that document.
type StructureBoundedIterator struct {
	inner    Iterator
	children []Iterator
	index    StructureIndex
	current  uint32
}

// NewStructureBounded wraps inner (already built over children) with a
// structure-interval constraint.
func NewStructureBounded(inner Iterator, index StructureIndex, children ...Iterator) *StructureBoundedIterator {
	return &StructureBoundedIterator{inner: inner, children: children, index: index}
}

func (s *StructureBoundedIterator) withinBounds(doc, source, sink uint32) (bool, error) {
	for _, c := range s.children {
		d, err := c.SkipDoc(doc)
		if err != nil {
			return false, err
		}
		if d != doc {
			return false, nil
		}
		p, err := c.SkipPos(source)
		if err != nil {
			return false, err
		}
		if p == 0 || p >= sink {
			return false, nil
		}
	}
	return true, nil
}

func (s *StructureBoundedIterator) SkipDoc(target uint32) (uint32, error) {
	if target == 0 {
		target = 1
	}
	for {
		doc, err := s.inner.SkipDoc(target)
		if err != nil || doc == 0 {
			return 0, err
		}
		source, sink, ok := s.index.Interval(doc)
		if !ok {
			target = doc + 1
			continue
		}
		boundOK, err := s.withinBounds(doc, source, sink)
		if err != nil {
			return 0, err
		}
		if boundOK {
			s.current = doc
			return doc, nil
		}
		target = doc + 1
	}
}

func (s *StructureBoundedIterator) SkipPos(target uint32) (uint32, error) {
	return s.inner.SkipPos(target)
}

func (s *StructureBoundedIterator) FirstDoc() (uint32, error) { return s.SkipDoc(1) }

func (s *StructureBoundedIterator) DocumentFrequency() (int, error) {
	return s.inner.DocumentFrequency()
}

func (s *StructureBoundedIterator) FeatureID() string { return "bounded(" + s.inner.FeatureID() + ")" }
