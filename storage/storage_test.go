package storage

import (
	"bytes"
	"testing"

	"github.com/patrickfrey/strus-sub002/bytekv"
	"github.com/patrickfrey/strus-sub002/bytekv/memdriver"
)

func TestPostingBlockSerialization(t *testing.T) {
	blk := NewPostingBlock()
	blk.Append(1, []uint32{3, 9, 12})
	blk.Append(5, []uint32{1})
	blk.Append(42, []uint32{2, 4})

	var buf bytes.Buffer
	if err := blk.Serialize(&buf); err != nil {
		t.Fatalf("serialize: %v", err)
	}

	decoded := NewPostingBlock()
	if err := decoded.Deserialize(&buf); err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	if decoded.BlockID() != 42 {
		t.Errorf("BlockID = %d, want 42", decoded.BlockID())
	}
	if got := decoded.PositionsOf(1); !equalUint32(got, []uint32{3, 9, 12}) {
		t.Errorf("positions of docno 1 = %v", got)
	}
	if got := decoded.PositionsOf(5); !equalUint32(got, []uint32{1}) {
		t.Errorf("positions of docno 5 = %v", got)
	}
	if decoded.FrequencyOf(42) != 2 {
		t.Errorf("frequency of docno 42 = %d, want 2", decoded.FrequencyOf(42))
	}
}

func equalUint32(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPostingBlockStore_LoadByUpperBound(t *testing.T) {
	drv, err := memdriver.Open(bytekv.Config{})
	if err != nil {
		t.Fatalf("open memdriver: %v", err)
	}
	store := NewPostingBlockStore(drv)

	blk1 := NewPostingBlock()
	blk1.Append(10, []uint32{1})
	blk1.Append(20, []uint32{2})

	blk2 := NewPostingBlock()
	blk2.Append(30, []uint32{3})
	blk2.Append(50, []uint32{4})

	w, err := drv.Transaction()
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if err := store.Store(w, 1, 7, blk1); err != nil {
		t.Fatalf("store blk1: %v", err)
	}
	if err := store.Store(w, 1, 7, blk2); err != nil {
		t.Fatalf("store blk2: %v", err)
	}
	if err := w.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, ok, err := store.Load(1, 7, 25)
	if err != nil || !ok {
		t.Fatalf("load(25): ok=%v err=%v", ok, err)
	}
	if got.BlockID() != 50 {
		t.Errorf("load(25) resolved to block %d, want 50", got.BlockID())
	}

	got, ok, err = store.Load(1, 7, 5)
	if err != nil || !ok {
		t.Fatalf("load(5): ok=%v err=%v", ok, err)
	}
	if got.BlockID() != 20 {
		t.Errorf("load(5) resolved to block %d, want 20", got.BlockID())
	}

	_, ok, err = store.Load(1, 7, 51)
	if err != nil {
		t.Fatalf("load(51): %v", err)
	}
	if ok {
		t.Errorf("load(51) should find no block beyond the chain's end")
	}
}

func TestBooleanBlockStore(t *testing.T) {
	drv, err := memdriver.Open(bytekv.Config{})
	if err != nil {
		t.Fatalf("open memdriver: %v", err)
	}
	store := NewDocListStore(drv, 1, 7)

	blk := NewBooleanBlock()
	blk.Add(4)
	blk.Add(8)
	blk.Delete(4)

	w, err := drv.Transaction()
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if err := store.Store(w, blk); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := w.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, ok, err := store.Load(0)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.Members.Contains(4) {
		t.Errorf("deleted member 4 still present")
	}
	if !got.Members.Contains(8) {
		t.Errorf("member 8 missing")
	}
}

func TestMetadataBlockRoundTrip(t *testing.T) {
	schema := MetadataSchema{Columns: []bytekv.MetadataColumn{
		{Name: "date", Type: "u32"},
		{Name: "rank", Type: "f32"},
	}}
	blk, err := NewMetadataBlock(schema)
	if err != nil {
		t.Fatalf("new block: %v", err)
	}
	if err := blk.Set(3, "date", 20240101); err != nil {
		t.Fatalf("set date: %v", err)
	}
	if err := blk.Set(3, "rank", 0.75); err != nil {
		t.Fatalf("set rank: %v", err)
	}

	var buf bytes.Buffer
	if err := blk.Serialize(&buf); err != nil {
		t.Fatalf("serialize: %v", err)
	}

	decoded := &MetadataBlock{}
	if err := decoded.Deserialize(&buf, schema); err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	date, err := decoded.Get(3, "date")
	if err != nil || date != 20240101 {
		t.Errorf("date = %v, err = %v", date, err)
	}
	rank, err := decoded.Get(3, "rank")
	if err != nil || rank < 0.74 || rank > 0.76 {
		t.Errorf("rank = %v, err = %v", rank, err)
	}
}

func TestInverseTermBlockRoundTrip(t *testing.T) {
	blk := NewInverseTermBlock()
	blk.Append(InverseTermEntry{Typeno: 1, Termno: 42, Ff: 3, Firstpos: 7})
	blk.Append(InverseTermEntry{Typeno: 2, Termno: 9, Ff: 1, Firstpos: 20})

	var buf bytes.Buffer
	if err := blk.Serialize(&buf); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	decoded := NewInverseTermBlock()
	if err := decoded.Deserialize(&buf); err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if len(decoded.Entries) != 2 || decoded.Entries[1].Termno != 9 {
		t.Errorf("unexpected entries: %+v", decoded.Entries)
	}
}
