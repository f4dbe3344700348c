package encoders

// TODO: evaluate a length-tag cache for runs of same-width integers

import (
	"fmt"
	"io"
)

// WriteTaggedVarint writes v using the core's own wire format (spec §4.2.1):
// a single length-tag byte followed by that many value bytes, MSB-first.
// Zero encodes as a single zero byte. This is distinct from the standard
// library's LEB128 varint and from roaring's internal encoding; it exists
// purely to match the original format's round-trip contract for posting,
// forward and metadata block headers.
func WriteTaggedVarint(w io.Writer, v uint32) error {
	if v == 0 {
		_, err := w.Write([]byte{0})
		return err
	}
	var buf [4]byte
	n := 0
	for shift := 24; shift >= 0; shift -= 8 {
		b := byte(v >> uint(shift))
		if n == 0 && b == 0 {
			continue
		}
		buf[n] = b
		n++
	}
	if _, err := w.Write([]byte{byte(n)}); err != nil {
		return err
	}
	_, err := w.Write(buf[:n])
	return err
}

// ReadTaggedVarint reads a value written by WriteTaggedVarint.
func ReadTaggedVarint(r io.Reader) (uint32, error) {
	var tag [1]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return 0, err
	}
	n := int(tag[0])
	if n == 0 {
		return 0, nil
	}
	if n > 4 {
		return 0, fmt.Errorf("tagged varint length %d exceeds 4 bytes", n)
	}
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:n]); err != nil {
		return 0, err
	}
	var v uint32
	for i := 0; i < n; i++ {
		v = v<<8 | uint32(buf[i])
	}
	return v, nil
}

// Uint32DeltaEncoder compresses a strictly increasing []uint32 sequence
// (docno deltas, within-document positions) as a first absolute value
// followed by tagged-varint deltas.
type Uint32DeltaEncoder struct{}

// NewUint32DeltaEncoder returns a ready-to-use Uint32DeltaEncoder.
func NewUint32DeltaEncoder() Uint32DeltaEncoder { return Uint32DeltaEncoder{} }

// Encode writes values (assumed strictly increasing) to w.
func (Uint32DeltaEncoder) Encode(values []uint32, w io.Writer) error {
	if len(values) == 0 {
		return nil
	}
	if err := WriteTaggedVarint(w, values[0]); err != nil {
		return err
	}
	prev := values[0]
	for _, v := range values[1:] {
		if v <= prev {
			return fmt.Errorf("non-monotonic delta sequence: %d after %d", v, prev)
		}
		if err := WriteTaggedVarint(w, v-prev); err != nil {
			return err
		}
		prev = v
	}
	return nil
}

// Decode reads length values written by Encode.
func (Uint32DeltaEncoder) Decode(r io.Reader, length int) ([]uint32, error) {
	if length == 0 {
		return nil, nil
	}
	values := make([]uint32, length)
	first, err := ReadTaggedVarint(r)
	if err != nil {
		return nil, err
	}
	values[0] = first
	prev := first
	for i := 1; i < length; i++ {
		delta, err := ReadTaggedVarint(r)
		if err != nil {
			return nil, err
		}
		prev += delta
		values[i] = prev
	}
	return values, nil
}
