// Package txn implements the core's write path (spec §4.6): callers stage
// attribute, metadata, inverted-index, forward-index and user/ACL changes
// in memory against a Transaction, then Commit flushes every staged map to
// the underlying bytekv.Driver inside one writer transaction, in a fixed
// order designed so that a reader can never observe a document's postings
// before its metadata, or its metadata before it is recorded as existing at
// all.
package txn

import (
	"sort"

	"github.com/patrickfrey/strus-sub002/bytekv"
	"github.com/patrickfrey/strus-sub002/merge"
	"github.com/patrickfrey/strus-sub002/metacache"
	"github.com/patrickfrey/strus-sub002/storage"
)

// defaultPostingBlockSize and defaultForwardBlockSize are the MaxBlockSize
// values the merge writer splits/joins chains around when a Config leaves
// them unset, matching the "~1024 postings" default order of magnitude.
const (
	defaultPostingBlockSize = 1024
	defaultForwardBlockSize = 256
)

// termPosting is one (docno, positions) pair staged for a (typeno,termno)
// posting chain. Tombstone marks a deletion: the entry carries no positions
// and, once merged, removes any existing record of docno from the chain.
type termPosting struct {
	docno     uint32
	positions []uint32
	tombstone bool
}

type termKey struct {
	typeno, termno uint32
}

// forwardKey identifies one document's forward-index entries for one type.
type forwardKey struct {
	typeno, docno uint32
}

// forwardEntry is one staged (position,term) pair for a document's forward
// index under one type.
type forwardEntry struct {
	position uint32
	term     string
}

// Transaction accumulates index mutations for later atomic commit. It is
// not safe for concurrent use by multiple goroutines; the core relies on
// the single-writer commit-lock discipline documented in package client for
// serializing transactions.
type Transaction struct {
	drv        bytekv.Driver
	schema     storage.MetadataSchema
	metaCache  *metacache.Cache
	typeDict   *Dictionary
	termDict   *Dictionary
	userDict   *Dictionary
	docIDDict  *Dictionary
	attribDict *Dictionary

	attributes map[uint32]map[string]string
	metadata   map[uint32]map[string]float64
	postings   map[termKey][]termPosting
	termNames  map[termKey]termName
	forward    map[forwardKey][]forwardEntry
	aclGrant   map[uint32][]uint32 // docno -> usernos granted access
	aclRevoke  map[uint32][]uint32 // docno -> usernos revoked access
	deletes    map[uint32]bool     // docno -> staged for full removal

	postingParams merge.Params
	forwardParams merge.Params

	committed bool
}

// termName remembers the type/term strings a termKey was resolved from, so
// callers that need to report df changes by name (package stats) don't have
// to reverse-resolve numeric ids.
type termName struct {
	typeName, term string
}

// Config names the storage a Transaction writes to. Each New call builds its
// own Dictionary handles over the driver's name families and counter
// variables, so transactions over the same driver share one numbering space
// through storage (callers typically build one Config per open storage and
// reuse it across many transactions).
type Config struct {
	Driver        bytekv.Driver
	Schema        storage.MetadataSchema
	MetadataCache *metacache.Cache

	// PostingBlockSize and ForwardBlockSize override the merge writer's
	// MaxBlockSize for the posting and forward chains respectively;
	// zero keeps the package default.
	PostingBlockSize int
	ForwardBlockSize int
}

// New starts a transaction against the given storage.
func New(cfg Config) *Transaction {
	drv := cfg.Driver
	postingSize := cfg.PostingBlockSize
	if postingSize <= 0 {
		postingSize = defaultPostingBlockSize
	}
	forwardSize := cfg.ForwardBlockSize
	if forwardSize <= 0 {
		forwardSize = defaultForwardBlockSize
	}
	return &Transaction{
		drv:           drv,
		schema:        cfg.Schema,
		metaCache:     cfg.MetadataCache,
		typeDict:      NewDictionary(drv, storage.FamilyTermType, "typeno_counter"),
		termDict:      NewDictionary(drv, storage.FamilyTermValue, "termno_counter"),
		userDict:      NewDictionary(drv, storage.FamilyUserName, "userno_counter"),
		docIDDict:     NewDictionary(drv, storage.FamilyDocID, "docno_counter"),
		attribDict:    NewDictionary(drv, storage.FamilyAttribKey, "attribno_counter"),
		attributes:    make(map[uint32]map[string]string),
		metadata:      make(map[uint32]map[string]float64),
		postings:      make(map[termKey][]termPosting),
		termNames:     make(map[termKey]termName),
		forward:       make(map[forwardKey][]forwardEntry),
		aclGrant:      make(map[uint32][]uint32),
		aclRevoke:     make(map[uint32][]uint32),
		deletes:       make(map[uint32]bool),
		postingParams: merge.DefaultParams(postingSize),
		forwardParams: merge.DefaultParams(forwardSize),
	}
}

// NewDocument assigns a fresh, durable docno for an external document
// identifier, or returns the existing one if docID was already indexed.
func (t *Transaction) NewDocument(docID string) (uint32, error) {
	return t.docIDDict.LookupOrCreate(docID)
}

// TypeDict exposes the term-type name dictionary, used by callers (e.g.
// package query) that need to resolve a type name to its numeric id
// outside of staging a mutation.
func (t *Transaction) TypeDict() *Dictionary { return t.typeDict }

// TermDict exposes the term-value name dictionary.
func (t *Transaction) TermDict() *Dictionary { return t.termDict }

// UserDict exposes the user name dictionary.
func (t *Transaction) UserDict() *Dictionary { return t.userDict }

// DocIDDict exposes the external document id dictionary.
func (t *Transaction) DocIDDict() *Dictionary { return t.docIDDict }

// AttribDict exposes the attribute name dictionary.
func (t *Transaction) AttribDict() *Dictionary { return t.attribDict }

// SetAttribute stages a document attribute (spec §4.2: small string-valued
// per-document fields, e.g. a title or source path).
func (t *Transaction) SetAttribute(docno uint32, name, value string) {
	m, ok := t.attributes[docno]
	if !ok {
		m = make(map[string]string)
		t.attributes[docno] = m
	}
	m[name] = value
}

// SetMetadata stages a numeric metadata field write.
func (t *Transaction) SetMetadata(docno uint32, field string, value float64) {
	m, ok := t.metadata[docno]
	if !ok {
		m = make(map[string]float64)
		t.metadata[docno] = m
	}
	m[field] = value
}

// AddTermOccurrence stages a term occurrence: docno contains typeName/term
// at the given (strictly increasing) positions. The term is registered in
// the term dictionary immediately if unseen.
func (t *Transaction) AddTermOccurrence(typeName, term string, docno uint32, positions []uint32) error {
	typeno, err := t.typeDict.LookupOrCreate(typeName)
	if err != nil {
		return err
	}
	termno, err := t.termDict.LookupOrCreate(term)
	if err != nil {
		return err
	}
	key := termKey{typeno, termno}
	t.postings[key] = append(t.postings[key], termPosting{docno: docno, positions: positions})
	t.termNames[key] = termName{typeName: typeName, term: term}
	return nil
}

// TermDelta is one (type,term) pair's net staged posting count, used by
// callers (package client) to propagate document-frequency deltas to the
// statistics subsystem after a successful Commit.
type TermDelta struct {
	TypeName string
	Term     string
	Docs     int
}

// TermDeltas returns the net staged posting count for every (type,term)
// pair this transaction's AddTermOccurrence and DeleteDocument calls
// touched: +1 per new occurrence, -1 per retracted one. Valid to call any
// time; the counts reflect staged, not necessarily committed, state.
func (t *Transaction) TermDeltas() []TermDelta {
	out := make([]TermDelta, 0, len(t.postings))
	for key, postings := range t.postings {
		net := 0
		for _, p := range postings {
			if p.tombstone {
				net--
			} else {
				net++
			}
		}
		if net == 0 {
			continue
		}
		name := t.termNames[key]
		out = append(out, TermDelta{TypeName: name.typeName, Term: name.term, Docs: net})
	}
	return out
}

// AddForwardTerm stages one position of a document's original term
// sequence for summarization.
func (t *Transaction) AddForwardTerm(typeName string, docno, position uint32, term string) error {
	typeno, err := t.typeDict.LookupOrCreate(typeName)
	if err != nil {
		return err
	}
	key := forwardKey{typeno, docno}
	t.forward[key] = append(t.forward[key], forwardEntry{position: position, term: term})
	return nil
}

// GrantUser stages a user-ACL and document-ACL entry making docno visible
// to userName.
func (t *Transaction) GrantUser(docno uint32, userName string) error {
	userno, err := t.userDict.LookupOrCreate(userName)
	if err != nil {
		return err
	}
	t.aclGrant[docno] = append(t.aclGrant[docno], userno)
	return nil
}

// RevokeUser stages removal of docno's visibility to userName.
func (t *Transaction) RevokeUser(docno uint32, userName string) error {
	userno, found, err := t.userDict.Lookup(userName)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	t.aclRevoke[docno] = append(t.aclRevoke[docno], userno)
	return nil
}

// DeleteDocument stages full removal of docno (spec §4.6.3's tombstone
// staging): on Commit its attributes, metadata and ACL grants are dropped,
// and every term occurrence recorded in its InverseTerm listing is retracted
// from the matching posting chain. Forward-index entries are dropped only for
// the types listed in that InverseTerm block; forward entries under a type
// the document has no postings for are left in place.
// The external document id mapping and the docno itself are never
// reclaimed, keeping id allocation monotonic across delete.
func (t *Transaction) DeleteDocument(docno uint32) {
	t.deletes[docno] = true
}

// NofDeleted returns the number of documents staged for deletion in this
// transaction, used by callers (package client) to net deletions out of
// the document-count delta reported to the statistics subsystem.
func (t *Transaction) NofDeleted() int {
	return len(t.deletes)
}

// Commit flushes every staged change to the driver inside one writer
// transaction, in this order: deletions (expanding each into the
// attribute/metadata/ACL/forward/posting retractions they imply), then
// attributes, metadata (invalidating the metadata cache for every touched
// block), inverted-index postings, the inverse-term listing, forward-index
// entries, and finally ACL/user-ACL entries. Rolling the writer back on any
// failure leaves storage exactly as it was before Commit was called.
func (t *Transaction) Commit() error {
	if t.committed {
		return bytekv.Wrap(bytekv.ErrProtocol, "transaction already committed")
	}
	t.committed = true

	w, err := t.drv.Transaction()
	if err != nil {
		return err
	}
	ok := false
	defer func() {
		if !ok {
			w.Rollback()
		}
	}()

	if err := t.commitDeletes(w); err != nil {
		return err
	}
	if err := t.commitAttributes(w); err != nil {
		return err
	}
	touchedBlocks, err := t.commitMetadata(w)
	if err != nil {
		return err
	}
	if err := t.commitPostings(w); err != nil {
		return err
	}
	if err := t.commitInverseTerms(w); err != nil {
		return err
	}
	if err := t.commitForward(w); err != nil {
		return err
	}
	if err := t.commitAcl(w); err != nil {
		return err
	}

	if err := w.Commit(); err != nil {
		return err
	}
	ok = true

	if t.metaCache != nil {
		for blockno := range touchedBlocks {
			t.metaCache.InvalidateBlock(blockno)
		}
	}
	return nil
}

// commitDeletes expands every docno staged via DeleteDocument into the
// concrete retractions it implies: its attribute subtree is dropped
// outright, its forward-index chains are dropped for each type its
// InverseTerm block lists, its metadata row is reset to the schema's
// zero value, its ACL grants are staged for revocation alongside any this
// same commit already staged, and every (typeno,termno) occurrence listed
// in its InverseTerm block is staged as a posting tombstone so commitPostings
// retracts it from the matching chain. The InverseTerm block itself is
// removed once its entries have been read.
func (t *Transaction) commitDeletes(w bytekv.Writer) error {
	if len(t.deletes) == 0 {
		return nil
	}
	docnos := make([]uint32, 0, len(t.deletes))
	for docno := range t.deletes {
		docnos = append(docnos, docno)
	}
	sort.Slice(docnos, func(i, j int) bool { return docnos[i] < docnos[j] })

	inverseStore := storage.NewInverseTermBlockStore(t.drv)
	forwardStore := storage.NewForwardBlockStore(t.drv)
	for _, docno := range docnos {
		if err := w.RemoveSubtree(storage.DocAttributePrefix(docno)); err != nil {
			return err
		}
		for _, col := range t.schema.Columns {
			t.SetMetadata(docno, col.Name, 0)
		}
		if err := t.stageAclRevokeAll(docno); err != nil {
			return err
		}

		blk, found, err := inverseStore.Load(docno)
		if err != nil {
			return err
		}
		if !found {
			continue
		}
		typenos := make(map[uint32]bool)
		for _, e := range blk.Entries {
			key := termKey{e.Typeno, e.Termno}
			t.postings[key] = append(t.postings[key], termPosting{docno: docno, tombstone: true})
			if _, named := t.termNames[key]; !named {
				typeName, okType, err := t.typeDict.NameOf(e.Typeno)
				if err != nil {
					return err
				}
				term, okTerm, err := t.termDict.NameOf(e.Termno)
				if err != nil {
					return err
				}
				if okType && okTerm {
					t.termNames[key] = termName{typeName: typeName, term: term}
				}
			}
			typenos[e.Typeno] = true
		}
		for typeno := range typenos {
			if err := forwardStore.RemoveAll(w, typeno, docno); err != nil {
				return err
			}
		}
		if err := inverseStore.Remove(w, docno); err != nil {
			return err
		}
	}
	return nil
}

// stageAclRevokeAll reads docno's current ACL membership and stages every
// granted user for revocation, so commitAcl retracts both sides of the ACL
// relation (docno's own Acl block and each user's UserAcl block) for a
// deleted document.
func (t *Transaction) stageAclRevokeAll(docno uint32) error {
	blk, found, err := storage.NewAclStore(t.drv, docno).Load(0)
	if err != nil || !found || blk == nil {
		return err
	}
	it := blk.Members.Iterator()
	for it.Next() {
		t.aclRevoke[docno] = append(t.aclRevoke[docno], it.Value())
	}
	return nil
}

func (t *Transaction) commitAttributes(w bytekv.Writer) error {
	for docno, fields := range t.attributes {
		for name, value := range fields {
			attribno, err := t.attribDict.LookupOrCreate(name)
			if err != nil {
				return err
			}
			if err := w.Write(storage.DocAttributeKey(docno, attribno), []byte(value)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Transaction) commitMetadata(w bytekv.Writer) (map[uint32]bool, error) {
	touched := make(map[uint32]bool)
	// Group by block so each block is loaded and stored once even if
	// several docnos in the same block were touched this commit.
	byBlock := make(map[uint32][]uint32)
	for docno := range t.metadata {
		blockno := storage.BlockNumber(docno)
		byBlock[blockno] = append(byBlock[blockno], docno)
	}
	blocks := make([]uint32, 0, len(byBlock))
	for b := range byBlock {
		blocks = append(blocks, b)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i] < blocks[j] })

	store := storage.NewMetadataBlockStore(t.drv, t.schema)
	for _, blockno := range blocks {
		docnos := byBlock[blockno]
		blk, err := store.Load(docnos[0])
		if err != nil {
			return nil, err
		}
		for _, docno := range docnos {
			for field, value := range t.metadata[docno] {
				if err := blk.Set(docno, field, value); err != nil {
					return nil, err
				}
			}
		}
		if err := store.Store(w, blockno, blk); err != nil {
			return nil, err
		}
		touched[blockno] = true
	}
	return touched, nil
}

// commitPostings merges this commit's staged occurrences and tombstones
// into each touched (typeno,termno) posting chain via the shared
// merge/split/join writer (spec §4.7), rather than overwriting the chain
// with a single fresh block: incremental commits fold into and split or
// join existing blocks instead of leaving one single-element block behind
// per commit, and a staged tombstone removes its docno from whichever
// block currently holds it.
func (t *Transaction) commitPostings(w bytekv.Writer) error {
	keys := make([]termKey, 0, len(t.postings))
	for k := range t.postings {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].typeno != keys[j].typeno {
			return keys[i].typeno < keys[j].typeno
		}
		return keys[i].termno < keys[j].termno
	})

	store := storage.NewPostingBlockStore(t.drv)
	for _, key := range keys {
		postings := t.postings[key]
		sort.Slice(postings, func(i, j int) bool { return postings[i].docno < postings[j].docno })
		elems := make([]merge.Element[[]uint32], len(postings))
		for i, p := range postings {
			elems[i] = merge.Element[[]uint32]{Key: p.docno, Payload: p.positions, Tombstone: p.tombstone}
		}
		chain := merge.NewPostingChain(store, key.typeno, key.termno)
		if err := merge.Write(w, chain, t.postingParams, elems); err != nil {
			return err
		}
	}
	return nil
}

// commitInverseTerms maintains the per-document InverseTerm listing (spec
// §4.2.6, property #5): for every docno touched by a non-tombstone posting
// this commit, it loads whatever listing already exists, appends the new
// (typeno,termno,ff,firstpos) entries and writes the block back, so a later
// DeleteDocument can find every term a document was indexed under without
// scanning every chain.
func (t *Transaction) commitInverseTerms(w bytekv.Writer) error {
	byDoc := make(map[uint32][]storage.InverseTermEntry)
	for key, postings := range t.postings {
		for _, p := range postings {
			if p.tombstone {
				continue
			}
			var firstpos uint32
			if len(p.positions) > 0 {
				firstpos = p.positions[0]
			}
			byDoc[p.docno] = append(byDoc[p.docno], storage.InverseTermEntry{
				Typeno:   key.typeno,
				Termno:   key.termno,
				Ff:       uint32(len(p.positions)),
				Firstpos: firstpos,
			})
		}
	}
	if len(byDoc) == 0 {
		return nil
	}
	docnos := make([]uint32, 0, len(byDoc))
	for docno := range byDoc {
		docnos = append(docnos, docno)
	}
	sort.Slice(docnos, func(i, j int) bool { return docnos[i] < docnos[j] })

	store := storage.NewInverseTermBlockStore(t.drv)
	for _, docno := range docnos {
		blk, found, err := store.Load(docno)
		if err != nil {
			return err
		}
		if !found {
			blk = storage.NewInverseTermBlock()
		}
		for _, e := range byDoc[docno] {
			blk.Append(e)
		}
		if err := store.Store(w, docno, blk); err != nil {
			return err
		}
	}
	return nil
}

// commitForward merges this commit's staged forward-index entries into
// each touched (typeno,docno) chain via the same merge/split/join writer
// commitPostings uses, instead of overwriting the chain with a single
// fresh block.
func (t *Transaction) commitForward(w bytekv.Writer) error {
	store := storage.NewForwardBlockStore(t.drv)
	keys := make([]forwardKey, 0, len(t.forward))
	for k := range t.forward {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].typeno != keys[j].typeno {
			return keys[i].typeno < keys[j].typeno
		}
		return keys[i].docno < keys[j].docno
	})
	for _, key := range keys {
		entries := t.forward[key]
		sort.Slice(entries, func(i, j int) bool { return entries[i].position < entries[j].position })
		elems := make([]merge.Element[string], len(entries))
		for i, e := range entries {
			elems[i] = merge.Element[string]{Key: e.position, Payload: e.term}
		}
		chain := merge.NewForwardChain(store, key.typeno, key.docno)
		if err := merge.Write(w, chain, t.forwardParams, elems); err != nil {
			return err
		}
	}
	return nil
}

// commitAcl writes both sides of the ACL relation: the per-document ACL
// block (which users may see this document) and the per-user UserAcl block
// (which documents this user may see). User-ACL blocks are loaded once and
// accumulated in memory across every grant/revoke touching that user in
// this commit, then stored once each — loading per docno-iteration instead
// would only see pre-commit state (the writer's own staged writes aren't
// visible through t.drv until Commit), silently dropping all but the last
// grant to a user touched by more than one document in the same commit.
func (t *Transaction) commitAcl(w bytekv.Writer) error {
	userBlocks := make(map[uint32]*storage.BooleanBlock)
	loadUserBlock := func(userno uint32) (*storage.BooleanBlock, error) {
		if blk, ok := userBlocks[userno]; ok {
			return blk, nil
		}
		blk, _, err := storage.NewUserAclStore(t.drv, userno).Load(0)
		if err != nil {
			return nil, err
		}
		if blk == nil {
			blk = storage.NewBooleanBlock()
		}
		userBlocks[userno] = blk
		return blk, nil
	}

	for docno, usernos := range t.aclGrant {
		store := storage.NewAclStore(t.drv, docno)
		blk, _, err := store.Load(0)
		if err != nil {
			return err
		}
		if blk == nil {
			blk = storage.NewBooleanBlock()
		}
		for _, userno := range usernos {
			blk.Add(userno)
		}
		if err := store.Store(w, blk); err != nil {
			return err
		}
		for _, userno := range usernos {
			ublk, err := loadUserBlock(userno)
			if err != nil {
				return err
			}
			ublk.Add(docno)
		}
	}
	for docno, usernos := range t.aclRevoke {
		store := storage.NewAclStore(t.drv, docno)
		blk, _, err := store.Load(0)
		if err != nil {
			return err
		}
		if blk == nil {
			continue
		}
		for _, userno := range usernos {
			blk.Delete(userno)
		}
		if err := store.Store(w, blk); err != nil {
			return err
		}
		for _, userno := range usernos {
			ublk, err := loadUserBlock(userno)
			if err != nil {
				return err
			}
			ublk.Delete(docno)
		}
	}
	for userno, blk := range userBlocks {
		if err := storage.NewUserAclStore(t.drv, userno).Store(w, blk); err != nil {
			return err
		}
	}
	return nil
}
