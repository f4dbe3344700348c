package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/patrickfrey/strus-sub002/bytekv"
)

// MetadataBlockSize is the fixed number of document rows packed into one
// metadata block (spec §4.2.5). Rows are addressed by docno%MetadataBlockSize
// within the block identified by docno/MetadataBlockSize, so a single-field
// read only has to decode one block regardless of collection size.
const MetadataBlockSize = 1024

// columnWidth returns the serialized width in bytes of a metadata column
// type, matching the type vocabulary ParseMetadataColumns accepts.
func columnWidth(typ string) (int, error) {
	switch typ {
	case "i8", "u8":
		return 1, nil
	case "i16", "u16", "f16":
		return 2, nil
	case "i32", "u32", "f32":
		return 4, nil
	default:
		return 0, fmt.Errorf("unknown metadata column type %q", typ)
	}
}

// MetadataSchema is the ordered, fixed column layout every MetadataBlock in
// a storage instance shares (spec §4.2.5: schema changes require a rebuild,
// not an in-place migration).
type MetadataSchema struct {
	Columns []bytekv.MetadataColumn
}

// RowSize returns the byte width of one row under this schema.
func (s MetadataSchema) RowSize() (int, error) {
	total := 0
	for _, c := range s.Columns {
		w, err := columnWidth(c.Type)
		if err != nil {
			return 0, err
		}
		total += w
	}
	return total, nil
}

// IndexOf returns the column index for name, or -1 if absent.
func (s MetadataSchema) IndexOf(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// MetadataBlock is one fixed-size slab of document metadata rows, stored
// packed (row-major, no padding) per the schema in force when the block was
// written. Rows for docnos never written default to all-zero.
type MetadataBlock struct {
	schema MetadataSchema
	rowSz  int
	rows   [][]float64 // rows[i][c] is the value of column c for local row i
}

// NewMetadataBlock creates a block of MetadataBlockSize zeroed rows under schema.
func NewMetadataBlock(schema MetadataSchema) (*MetadataBlock, error) {
	rowSz, err := schema.RowSize()
	if err != nil {
		return nil, err
	}
	rows := make([][]float64, MetadataBlockSize)
	for i := range rows {
		rows[i] = make([]float64, len(schema.Columns))
	}
	return &MetadataBlock{schema: schema, rowSz: rowSz, rows: rows}, nil
}

// BlockNumber returns the block index a docno belongs to.
func BlockNumber(docno uint32) uint32 { return docno / MetadataBlockSize }

// RowIndex returns the local row index a docno maps to within its block.
func RowIndex(docno uint32) int { return int(docno % MetadataBlockSize) }

// Set stores value for docno's row in the named column.
func (b *MetadataBlock) Set(docno uint32, name string, value float64) error {
	idx := b.schema.IndexOf(name)
	if idx < 0 {
		return bytekv.Wrap(bytekv.ErrProtocol, "unknown metadata field %q", name)
	}
	b.rows[RowIndex(docno)][idx] = value
	return nil
}

// Get reads the value for docno's row in the named column.
func (b *MetadataBlock) Get(docno uint32, name string) (float64, error) {
	idx := b.schema.IndexOf(name)
	if idx < 0 {
		return 0, bytekv.Wrap(bytekv.ErrProtocol, "unknown metadata field %q", name)
	}
	return b.rows[RowIndex(docno)][idx], nil
}

// Serialize writes the block's rows packed row-major per the schema's
// column widths, in the fixed-width style the teacher's Block.Serialize
// uses for its binary header fields, but repeated per-row instead of once.
func (b *MetadataBlock) Serialize(w io.Writer) error {
	buf := make([]byte, b.rowSz)
	for _, row := range b.rows {
		off := 0
		for c, col := range b.schema.Columns {
			width, _ := columnWidth(col.Type)
			putColumnValue(buf[off:off+width], col.Type, row[c])
			off += width
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize reads a block written by Serialize. schema must match the one
// the block was written with.
func (b *MetadataBlock) Deserialize(r io.Reader, schema MetadataSchema) error {
	rowSz, err := schema.RowSize()
	if err != nil {
		return err
	}
	rows := make([][]float64, MetadataBlockSize)
	buf := make([]byte, rowSz)
	for i := range rows {
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		row := make([]float64, len(schema.Columns))
		off := 0
		for c, col := range schema.Columns {
			width, _ := columnWidth(col.Type)
			row[c] = getColumnValue(buf[off:off+width], col.Type)
			off += width
		}
		rows[i] = row
	}
	b.schema, b.rowSz, b.rows = schema, rowSz, rows
	return nil
}

func putColumnValue(dst []byte, typ string, v float64) {
	switch typ {
	case "i8":
		dst[0] = byte(int8(v))
	case "u8":
		dst[0] = byte(uint8(v))
	case "i16":
		binary.BigEndian.PutUint16(dst, uint16(int16(v)))
	case "u16":
		binary.BigEndian.PutUint16(dst, uint16(v))
	case "f16":
		binary.BigEndian.PutUint16(dst, math.Float32bits(float32(v))>>16)
	case "i32":
		binary.BigEndian.PutUint32(dst, uint32(int32(v)))
	case "u32":
		binary.BigEndian.PutUint32(dst, uint32(v))
	case "f32":
		binary.BigEndian.PutUint32(dst, math.Float32bits(float32(v)))
	}
}

func getColumnValue(src []byte, typ string) float64 {
	switch typ {
	case "i8":
		return float64(int8(src[0]))
	case "u8":
		return float64(src[0])
	case "i16":
		return float64(int16(binary.BigEndian.Uint16(src)))
	case "u16":
		return float64(binary.BigEndian.Uint16(src))
	case "f16":
		return float64(math.Float32frombits(uint32(binary.BigEndian.Uint16(src)) << 16))
	case "i32":
		return float64(int32(binary.BigEndian.Uint32(src)))
	case "u32":
		return float64(binary.BigEndian.Uint32(src))
	case "f32":
		return float64(math.Float32frombits(binary.BigEndian.Uint32(src)))
	}
	return 0
}

// MetadataBlockStore adapts bytekv to the blockno-keyed metadata family.
type MetadataBlockStore struct {
	drv    bytekv.Driver
	schema MetadataSchema
}

// NewMetadataBlockStore wraps a bytekv.Driver with a fixed schema.
func NewMetadataBlockStore(drv bytekv.Driver, schema MetadataSchema) *MetadataBlockStore {
	return &MetadataBlockStore{drv: drv, schema: schema}
}

// Load reads the block containing docno, creating an empty one in memory if
// it has never been written (rows default to zero, matching an
// uninitialized document's metadata).
func (s *MetadataBlockStore) Load(docno uint32) (*MetadataBlock, error) {
	value, found, err := s.drv.ReadValue(DocMetaDataKey(BlockNumber(docno)))
	if err != nil {
		return nil, err
	}
	if !found {
		return NewMetadataBlock(s.schema)
	}
	blk := &MetadataBlock{}
	if err := blk.Deserialize(bytes.NewReader(value), s.schema); err != nil {
		return nil, bytekv.Wrap(bytekv.ErrCorruptData, "decoding metadata block: %v", err)
	}
	return blk, nil
}

// Store writes blk for the given block number within a transaction.
func (s *MetadataBlockStore) Store(w bytekv.Writer, blockno uint32, blk *MetadataBlock) error {
	var buf bytes.Buffer
	if err := blk.Serialize(&buf); err != nil {
		return err
	}
	return w.Write(DocMetaDataKey(blockno), buf.Bytes())
}
