package placeindex

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/uber/h3-go/v4"
)

// Serialize writes idx as a length-prefixed, self-describing binary blob:
// the flat trie arrays followed by the record table. No third-party
// schema library (flatbuffers or similar) appears anywhere in the example
// pack this was grounded on, so the format is a small hand-rolled
// encoding/binary layout rather than an invented dependency.
func (idx *Index) Serialize(w io.Writer) error {
	writeRunes := func(rs []rune) error {
		if err := binary.Write(w, binary.LittleEndian, int32(len(rs))); err != nil {
			return err
		}
		for _, r := range rs {
			if err := binary.Write(w, binary.LittleEndian, int32(r)); err != nil {
				return err
			}
		}
		return nil
	}
	writeBools := func(bs []bool) error {
		if err := binary.Write(w, binary.LittleEndian, int32(len(bs))); err != nil {
			return err
		}
		for _, b := range bs {
			v := byte(0)
			if b {
				v = 1
			}
			if _, err := w.Write([]byte{v}); err != nil {
				return err
			}
		}
		return nil
	}
	writeInt32s := func(xs []int32) error {
		if err := binary.Write(w, binary.LittleEndian, int32(len(xs))); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, xs)
	}
	writeUint16s := func(xs []uint16) error {
		if err := binary.Write(w, binary.LittleEndian, int32(len(xs))); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, xs)
	}
	writeString := func(s string) error {
		b := []byte(s)
		if err := binary.Write(w, binary.LittleEndian, int32(len(b))); err != nil {
			return err
		}
		_, err := w.Write(b)
		return err
	}

	if err := writeRunes(idx.chars); err != nil {
		return fmt.Errorf("placeindex: write chars: %w", err)
	}
	if err := writeBools(idx.leaf); err != nil {
		return fmt.Errorf("placeindex: write leaf flags: %w", err)
	}
	if err := writeInt32s(idx.childOffsets); err != nil {
		return fmt.Errorf("placeindex: write child offsets: %w", err)
	}
	if err := writeInt32s(idx.children); err != nil {
		return fmt.Errorf("placeindex: write children: %w", err)
	}
	if err := writeInt32s(idx.itemOffsets); err != nil {
		return fmt.Errorf("placeindex: write item offsets: %w", err)
	}
	if err := writeInt32s(idx.items); err != nil {
		return fmt.Errorf("placeindex: write items: %w", err)
	}
	if err := writeInt32s(idx.lengthOffsets); err != nil {
		return fmt.Errorf("placeindex: write length offsets: %w", err)
	}
	if err := writeUint16s(idx.lengths); err != nil {
		return fmt.Errorf("placeindex: write lengths: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, int32(len(idx.records))); err != nil {
		return fmt.Errorf("placeindex: write record count: %w", err)
	}
	for _, r := range idx.records {
		if err := writeString(r.Key); err != nil {
			return fmt.Errorf("placeindex: write record key: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, r.Lat); err != nil {
			return fmt.Errorf("placeindex: write record lat: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, r.Lon); err != nil {
			return fmt.Errorf("placeindex: write record lon: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, r.AdditionalInfoIx); err != nil {
			return fmt.Errorf("placeindex: write record additional-info index: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, int64(r.H3Cell)); err != nil {
			return fmt.Errorf("placeindex: write record h3 cell: %w", err)
		}
	}
	return nil
}

// Deserialize reads back an Index written by Serialize. Round-tripping
// Serialize(Deserialize(x)) reproduces x exactly (spec §8 round-trip
// property).
func Deserialize(r io.Reader) (*Index, error) {
	readInt32s := func() ([]int32, error) {
		var n int32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		out := make([]int32, n)
		if n > 0 {
			if err := binary.Read(r, binary.LittleEndian, out); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	readUint16s := func() ([]uint16, error) {
		var n int32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		out := make([]uint16, n)
		if n > 0 {
			if err := binary.Read(r, binary.LittleEndian, out); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	readRunes := func() ([]rune, error) {
		var n int32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		out := make([]rune, n)
		for i := range out {
			var v int32
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, err
			}
			out[i] = rune(v)
		}
		return out, nil
	}
	readBools := func() ([]bool, error) {
		var n int32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		out := make([]bool, n)
		buf := make([]byte, 1)
		for i := range out {
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, err
			}
			out[i] = buf[0] != 0
		}
		return out, nil
	}
	readString := func() (string, error) {
		var n int32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return "", err
		}
		buf := make([]byte, n)
		if n > 0 {
			if _, err := io.ReadFull(r, buf); err != nil {
				return "", err
			}
		}
		return string(buf), nil
	}

	idx := &Index{}
	var err error

	if idx.chars, err = readRunes(); err != nil {
		return nil, fmt.Errorf("placeindex: read chars: %w", err)
	}
	if idx.leaf, err = readBools(); err != nil {
		return nil, fmt.Errorf("placeindex: read leaf flags: %w", err)
	}
	if idx.childOffsets, err = readInt32s(); err != nil {
		return nil, fmt.Errorf("placeindex: read child offsets: %w", err)
	}
	if idx.children, err = readInt32s(); err != nil {
		return nil, fmt.Errorf("placeindex: read children: %w", err)
	}
	if idx.itemOffsets, err = readInt32s(); err != nil {
		return nil, fmt.Errorf("placeindex: read item offsets: %w", err)
	}
	if idx.items, err = readInt32s(); err != nil {
		return nil, fmt.Errorf("placeindex: read items: %w", err)
	}
	if idx.lengthOffsets, err = readInt32s(); err != nil {
		return nil, fmt.Errorf("placeindex: read length offsets: %w", err)
	}
	if idx.lengths, err = readUint16s(); err != nil {
		return nil, fmt.Errorf("placeindex: read lengths: %w", err)
	}

	var recordCount int32
	if err := binary.Read(r, binary.LittleEndian, &recordCount); err != nil {
		return nil, fmt.Errorf("placeindex: read record count: %w", err)
	}
	idx.records = make([]Record, recordCount)
	for i := range idx.records {
		key, err := readString()
		if err != nil {
			return nil, fmt.Errorf("placeindex: read record key: %w", err)
		}
		var lat, lon float64
		if err := binary.Read(r, binary.LittleEndian, &lat); err != nil {
			return nil, fmt.Errorf("placeindex: read record lat: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &lon); err != nil {
			return nil, fmt.Errorf("placeindex: read record lon: %w", err)
		}
		var addInfo int32
		if err := binary.Read(r, binary.LittleEndian, &addInfo); err != nil {
			return nil, fmt.Errorf("placeindex: read record additional-info index: %w", err)
		}
		var cell int64
		if err := binary.Read(r, binary.LittleEndian, &cell); err != nil {
			return nil, fmt.Errorf("placeindex: read record h3 cell: %w", err)
		}
		idx.records[i] = Record{Key: key, Lat: lat, Lon: lon, AdditionalInfoIx: addInfo, H3Cell: h3.Cell(cell)}
	}

	return idx, nil
}

// SerializeBytes is a convenience wrapper returning the serialized blob.
func (idx *Index) SerializeBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := idx.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
