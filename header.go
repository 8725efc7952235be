// header.go -- on-disk table header: schema and row count, big-endian coded
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package densedb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Field declares one column of a table: its name and its width in bits.
// Names are unique within a table and NUL-terminated on disk; sizes are
// arbitrary (> 0) for Table.Get/Set, but must be <= 64 to be usable with
// Table.GetInt/SetInt.
type Field struct {
	Name string
	Size uint32 // bits
}

// Accessor identifies a field's bit range within any row of a schema.
// It is a plain value: copy it freely, and it remains valid for the
// life of the Table it was derived from.
type Accessor struct {
	Offset uint64 // bits from the start of the row
	Size   uint32 // bits
}

// Schema is the immutable, ordered list of fields that defines a table's
// row layout.
type Schema struct {
	Fields      []Field
	RowSizeBits uint64 // round_up(sum of field sizes, 8)
	HeaderSize  uint64 // bytes
}

func roundUp8(n uint64) uint64 {
	return (n + 7) &^ 7
}

func newSchema(fields []Field) (Schema, error) {
	if len(fields) == 0 {
		return Schema{}, invalidArgErr("newSchema", "schema must declare at least one field")
	}

	seen := make(map[string]struct{}, len(fields))
	headerSize := uint64(12)
	var rowBits uint64

	for _, f := range fields {
		if f.Name == "" {
			return Schema{}, invalidArgErr("newSchema", "field name must not be empty")
		}
		if f.Size == 0 {
			return Schema{}, invalidArgErr("newSchema", fmt.Sprintf("field %q: size must be > 0", f.Name))
		}
		for _, r := range f.Name {
			if r == 0 {
				return Schema{}, invalidArgErr("newSchema", fmt.Sprintf("field %q: name must not contain NUL", f.Name))
			}
		}
		if _, dup := seen[f.Name]; dup {
			return Schema{}, invalidArgErr("newSchema", fmt.Sprintf("duplicate field name %q", f.Name))
		}
		seen[f.Name] = struct{}{}

		headerSize += uint64(len(f.Name)) + 1 + 4
		rowBits += uint64(f.Size)
	}

	return Schema{
		Fields:      append([]Field(nil), fields...),
		RowSizeBits: roundUp8(rowBits),
		HeaderSize:  headerSize,
	}, nil
}

// accessor looks up a field by name and returns its bit offset and size.
func (s Schema) accessor(name string) (Accessor, bool) {
	var offset uint64
	for _, f := range s.Fields {
		if f.Name == name {
			return Accessor{Offset: offset, Size: f.Size}, true
		}
		offset += uint64(f.Size)
	}
	return Accessor{}, false
}

// encodeHeader lays out the header exactly as described in the on-disk
// format:
//
//	offset 0  : uint32 BE  header_size_bytes
//	offset 4  : uint32 BE  n_fields
//	offset 8  : uint32 BE  rows
//	offset 12 : (NUL-terminated name, uint32 BE size) per field
func encodeHeader(fields []Field, rows uint64) ([]byte, Schema, error) {
	schema, err := newSchema(fields)
	if err != nil {
		return nil, Schema{}, err
	}
	if len(fields) > math.MaxUint32 {
		return nil, Schema{}, invalidArgErr("encodeHeader", "too many fields")
	}
	if rows > math.MaxUint32 {
		return nil, Schema{}, invalidArgErr("encodeHeader", "too many rows for a uint32 row count")
	}

	buf := bytes.NewBuffer(make([]byte, 0, schema.HeaderSize))
	be := binary.BigEndian

	var u32 [4]byte
	be.PutUint32(u32[:], uint32(schema.HeaderSize))
	buf.Write(u32[:])

	be.PutUint32(u32[:], uint32(len(fields)))
	buf.Write(u32[:])

	be.PutUint32(u32[:], uint32(rows))
	buf.Write(u32[:])

	for _, f := range fields {
		buf.WriteString(f.Name)
		buf.WriteByte(0)
		be.PutUint32(u32[:], f.Size)
		buf.Write(u32[:])
	}

	return buf.Bytes(), schema, nil
}

// decodeHeader parses the header found at the start of data (typically a
// freshly mmap'd file) and returns the schema and row count it describes.
func decodeHeader(data []byte) (Schema, uint64, error) {
	const op = "decodeHeader"

	if len(data) < 12 {
		return Schema{}, 0, formatErr(op, "file too small to hold a header")
	}

	be := binary.BigEndian
	headerSize := uint64(be.Uint32(data[0:4]))
	nFields := be.Uint32(data[4:8])
	rows := uint64(be.Uint32(data[8:12]))

	if nFields == 0 {
		return Schema{}, 0, formatErr(op, "n_fields is zero")
	}
	if headerSize > uint64(len(data)) {
		return Schema{}, 0, formatErr(op, "header_size_bytes exceeds file size")
	}

	region := data[:headerSize]
	cursor := uint64(12)
	fields := make([]Field, 0, nFields)
	var rowBits uint64

	for i := uint32(0); i < nFields; i++ {
		nameEnd := cursor
		for nameEnd < uint64(len(region)) && region[nameEnd] != 0 {
			nameEnd++
		}
		if nameEnd >= uint64(len(region)) {
			return Schema{}, 0, formatErr(op, "field name is not NUL-terminated within the header")
		}

		name := string(region[cursor:nameEnd])
		cursor = nameEnd + 1

		if cursor+4 > uint64(len(region)) {
			return Schema{}, 0, formatErr(op, "truncated field size")
		}
		size := be.Uint32(region[cursor : cursor+4])
		cursor += 4

		if size == 0 {
			return Schema{}, 0, formatErr(op, fmt.Sprintf("field %q has size 0", name))
		}

		fields = append(fields, Field{Name: name, Size: size})
		rowBits += uint64(size)
	}

	if cursor != headerSize {
		return Schema{}, 0, formatErr(op, "decoded header does not land on header_size_bytes")
	}

	schema := Schema{
		Fields:      fields,
		RowSizeBits: roundUp8(rowBits),
		HeaderSize:  headerSize,
	}
	return schema, rows, nil
}
