package client

import (
	"github.com/patrickfrey/strus-sub002/bytekv"
	"github.com/patrickfrey/strus-sub002/query"
	"github.com/patrickfrey/strus-sub002/storage"
	"github.com/patrickfrey/strus-sub002/txn"
)

// TermIterator resolves (typeName, term) to a query.Iterator, returning a
// query.NullIterator if either name is unknown (spec §4.8: a term with no
// id has no postings).
func (s *Storage) TermIterator(typeName, term string) (query.Iterator, error) {
	typeno, found, err := s.typeDict.Lookup(typeName)
	if err != nil {
		return nil, err
	}
	if !found {
		return query.NewNullIterator(typeName, term), nil
	}
	termno, found, err := s.termDict.Lookup(term)
	if err != nil {
		return nil, err
	}
	if !found {
		return query.NewNullIterator(typeName, term), nil
	}
	return query.NewTermIterator(s.drv, typeName, term, typeno, termno)
}

// InvertedACLIterator resolves userName to the docnos it may read (spec
// §4.8's inverted-ACL iterator), empty if the user is unknown.
func (s *Storage) InvertedACLIterator(userName string) (query.Iterator, error) {
	userno, _, err := s.userDict.Lookup(userName)
	if err != nil {
		return nil, err
	}
	return query.NewInvertedACLIterator(s.drv, userName, userno)
}

// NameEntry is one (name, id) pair out of a name dictionary.
type NameEntry struct {
	Name string
	ID   uint32
}

// NameIterator walks every (name, id) pair ever assigned in one of the
// core's name dictionaries (term type, term value, document id, user name,
// attribute key): spec §4.11's "value iterators for each name dictionary".
type NameIterator struct {
	cur     bytekv.Cursor
	started bool
	prefix  []byte
	done    bool
}

// Next advances to the next name, returning ok=false once exhausted. The
// iterator must not be reused after Close.
func (n *NameIterator) Next() (entry NameEntry, ok bool, err error) {
	if n.done {
		return NameEntry{}, false, nil
	}
	if !n.started {
		n.started = true
		ok, err = n.cur.SeekFirst(n.prefix)
	} else {
		ok, err = n.cur.SeekNext()
	}
	if err != nil || !ok {
		n.done = true
		return NameEntry{}, false, err
	}
	key := n.cur.Key()
	return NameEntry{Name: string(key[1:]), ID: storage.DecodeUint32(n.cur.Value())}, true, nil
}

// Close releases the iterator's cursor.
func (n *NameIterator) Close() error { return n.cur.Close() }

func (s *Storage) nameIterator(d *txn.Dictionary) (*NameIterator, error) {
	cur, err := d.Driver().NewCursor()
	if err != nil {
		return nil, err
	}
	return &NameIterator{cur: cur, prefix: []byte{byte(d.Family())}}, nil
}

// TypeNameIterator walks the term-type dictionary.
func (s *Storage) TypeNameIterator() (*NameIterator, error) { return s.nameIterator(s.typeDict) }

// TermNameIterator walks the term-value dictionary.
func (s *Storage) TermNameIterator() (*NameIterator, error) { return s.nameIterator(s.termDict) }

// UserNameIterator walks the user-name dictionary.
func (s *Storage) UserNameIterator() (*NameIterator, error) { return s.nameIterator(s.userDict) }

// DocIDNameIterator walks the external document-id dictionary.
func (s *Storage) DocIDNameIterator() (*NameIterator, error) { return s.nameIterator(s.docIDDict) }

// AttribNameIterator walks the attribute-key dictionary.
func (s *Storage) AttribNameIterator() (*NameIterator, error) { return s.nameIterator(s.attribDict) }
