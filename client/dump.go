package client

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/patrickfrey/strus-sub002/bytekv"
	"github.com/patrickfrey/strus-sub002/storage"
)

// DumpEntry is one decoded (key-label, value) chunk of a whole-database
// dump (spec §6.4).
type DumpEntry struct {
	Label string
	Value string
}

// DumpIterator streams every key/value pair in the store, in key order,
// decoded per block family where the family has a simple, fixed-layout
// value (name dictionaries, document attributes, metadata blocks); every
// other family falls back to a hex dump of the raw bytes, since decoding a
// chain block fully requires the chain's own typeno/termno/docno context
// that a flat key/value stream does not carry on its own.
type DumpIterator struct {
	storage *Storage
	cur     bytekv.Cursor
	started bool
	done    bool
}

// DumpIterator opens a stream over the whole store.
func (s *Storage) DumpIterator() (*DumpIterator, error) {
	cur, err := s.drv.NewCursor()
	if err != nil {
		return nil, err
	}
	return &DumpIterator{storage: s, cur: cur}, nil
}

// Next advances to the next entry, returning ok=false once exhausted.
func (d *DumpIterator) Next() (entry DumpEntry, ok bool, err error) {
	if d.done {
		return DumpEntry{}, false, nil
	}
	if !d.started {
		d.started = true
		ok, err = d.cur.SeekFirst(nil)
	} else {
		ok, err = d.cur.SeekNext()
	}
	if err != nil || !ok {
		d.done = true
		return DumpEntry{}, false, err
	}
	return d.decode(d.cur.Key(), d.cur.Value()), true, nil
}

// Close releases the iterator's cursor.
func (d *DumpIterator) Close() error { return d.cur.Close() }

func (d *DumpIterator) decode(key, value []byte) DumpEntry {
	family := storage.Family(key[0])
	switch family {
	case storage.FamilyTermType, storage.FamilyTermValue, storage.FamilyDocID, storage.FamilyUserName, storage.FamilyAttribKey:
		return DumpEntry{
			Label: fmt.Sprintf("%c:%s", family, string(key[1:])),
			Value: fmt.Sprintf("id=%d", storage.DecodeUint32(value)),
		}
	case storage.FamilyDocAttribute:
		docno := storage.DecodeUint32(key[1:5])
		attribno := storage.DecodeUint32(key[5:9])
		return DumpEntry{Label: fmt.Sprintf("a:docno=%d,attribno=%d", docno, attribno), Value: string(value)}
	case storage.FamilyDocMetaData:
		blockno := storage.DecodeUint32(key[1:5])
		return DumpEntry{Label: fmt.Sprintf("m:blockno=%d", blockno), Value: d.decodeMetadata(blockno, value)}
	case storage.FamilyVariable:
		return DumpEntry{Label: fmt.Sprintf("G:%s", string(key[1:])), Value: hex.EncodeToString(value)}
	default:
		return DumpEntry{Label: fmt.Sprintf("%c:%s", family, hex.EncodeToString(key[1:])), Value: hex.EncodeToString(value)}
	}
}

func (d *DumpIterator) decodeMetadata(blockno uint32, value []byte) string {
	schema := d.storage.schema
	if len(schema.Columns) == 0 {
		return hex.EncodeToString(value)
	}
	blk, err := storage.NewMetadataBlock(schema)
	if err != nil {
		return hex.EncodeToString(value)
	}
	if err := blk.Deserialize(bytes.NewReader(value), schema); err != nil {
		return hex.EncodeToString(value)
	}
	out := ""
	for row := 0; row < storage.MetadataBlockSize; row++ {
		docno := blockno*storage.MetadataBlockSize + uint32(row)
		for _, col := range schema.Columns {
			v, _ := blk.Get(docno, col.Name)
			if v != 0 {
				out += fmt.Sprintf("docno=%d %s=%g ", docno, col.Name, v)
			}
		}
	}
	return out
}
