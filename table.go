// table.go -- a single memory-mapped, bit-dense table file
//
// Grounded in original_source/dense_db.c's dense_db_table_* functions and
// the teacher's mmap-backed DBReader (dbreader.go): a Table owns a file
// descriptor, a memory-mapped region and a decoded schema, and translates
// (row, accessor) pairs into (byte offset, bit offset, bit size) triples
// for the bit cursor.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package densedb

import (
	"fmt"
	"os"
	"path/filepath"
)

// Table is a borrowed handle onto one open table file. It is obtained
// from a Database (via Create or Open) and must be released with Close
// when no longer needed; the underlying mapping is not released on
// Close -- it is retained by the Database's cache until eviction or
// Database.Close.
type Table struct {
	db     *Database
	name   string
	fd     *os.File
	data   []byte
	rows   uint64
	schema Schema

	refcount int
	closed   bool
}

func openTableFile(dir, name string) (*Table, error) {
	const op = "Table.open"

	path := filepath.Join(dir, name)
	fd, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFoundErr(op, name)
		}
		return nil, ioErr(op, err)
	}

	st, err := fd.Stat()
	if err != nil {
		fd.Close()
		return nil, ioErr(op, err)
	}

	data, err := mmapFile(fd, st.Size())
	if err != nil {
		fd.Close()
		return nil, err
	}

	schema, rows, err := decodeHeader(data)
	if err != nil {
		unmapAndClose(data, fd)
		return nil, err
	}

	return &Table{
		name:   name,
		fd:     fd,
		data:   data,
		rows:   rows,
		schema: schema,
	}, nil
}

func createTableFile(dir, name string, fields []Field, rows uint64) error {
	const op = "Table.create"

	header, schema, err := encodeHeader(fields, rows)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, name)
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0600)
	if err != nil {
		return ioErr(op, err)
	}

	total := roundUp8(schema.HeaderSize + rows*schema.RowSizeBits/8)
	if err := fd.Truncate(int64(total)); err != nil {
		fd.Close()
		return ioErr(op, err)
	}

	data, err := mmapFile(fd, int64(total))
	if err != nil {
		fd.Close()
		return err
	}

	copy(data, header)

	if err := msyncFile(data); err != nil {
		unmapAndClose(data, fd)
		return err
	}
	return unmapAndClose(data, fd)
}

func unmapAndClose(data []byte, fd *os.File) error {
	merr := munmapFile(data)
	cerr := fd.Close()
	if merr != nil {
		return merr
	}
	if cerr != nil {
		return ioErr("close", cerr)
	}
	return nil
}

func (t *Table) destroy() error {
	t.closed = true
	return unmapAndClose(t.data, t.fd)
}

// Accessor returns the (offset, size) pair for a declared field.
func (t *Table) Accessor(field string) (Accessor, error) {
	acc, ok := t.schema.accessor(field)
	if !ok {
		return Accessor{}, ErrFieldNotFound
	}
	return acc, nil
}

// Rows returns the number of rows the table was created or opened with.
func (t *Table) Rows() uint64 { return t.rows }

// Schema returns the table's field list, in declaration order.
func (t *Table) Schema() []Field {
	return append([]Field(nil), t.schema.Fields...)
}

func (t *Table) rowRegion(row uint64) ([]byte, error) {
	if t.closed {
		return nil, ErrClosed
	}
	if row >= t.rows {
		return nil, invalidArgErr("Table", fmt.Sprintf("row %d out of range [0, %d)", row, t.rows))
	}
	byteOff := t.schema.HeaderSize + row*t.schema.RowSizeBits/8
	return t.data[byteOff:], nil
}

// stride is the buffer size (in bytes) the bit cursor requires for a
// field of the given bit width: one 8-byte word per 64-bit pass.
func stride(bits uint32) uint64 {
	words := (uint64(bits) + 63) / 64
	return words * 8
}

// Get copies acc's bits of row into out, which must have a capacity of
// at least stride(acc.Size) bytes.
func (t *Table) Get(row uint64, acc Accessor, out []byte) error {
	region, err := t.rowRegion(row)
	if err != nil {
		return err
	}
	need := stride(acc.Size)
	if uint64(len(out)) < need {
		return invalidArgErr("Table.Get", fmt.Sprintf("out buffer too small: need %d bytes, got %d", need, len(out)))
	}
	readBits(region, uint64(acc.Size), acc.Offset, out)
	return nil
}

// Set writes acc's bits of row from in, which must hold at least
// stride(acc.Size) bytes; only the targeted bits are modified.
func (t *Table) Set(row uint64, acc Accessor, in []byte) error {
	region, err := t.rowRegion(row)
	if err != nil {
		return err
	}
	need := stride(acc.Size)
	if uint64(len(in)) < need {
		return invalidArgErr("Table.Set", fmt.Sprintf("in buffer too small: need %d bytes, got %d", need, len(in)))
	}
	writeBits(region, uint64(acc.Size), acc.Offset, in)
	return nil
}

// GetInt reads acc (which must be <= 64 bits wide) as a little-endian
// payload integer.
func (t *Table) GetInt(row uint64, acc Accessor) (uint64, error) {
	if acc.Size > 64 {
		return 0, invalidArgErr("Table.GetInt", "accessor size exceeds 64 bits")
	}
	var buf [8]byte
	if err := t.Get(row, acc, buf[:]); err != nil {
		return 0, err
	}
	v := uint64(buf[0]) | uint64(buf[1])<<8 | uint64(buf[2])<<16 | uint64(buf[3])<<24 |
		uint64(buf[4])<<32 | uint64(buf[5])<<40 | uint64(buf[6])<<48 | uint64(buf[7])<<56
	return v & mask(uint64(acc.Size)), nil
}

// SetInt writes the low acc.Size bits of v (acc.Size must be <= 64) as a
// little-endian payload integer.
func (t *Table) SetInt(row uint64, acc Accessor, v uint64) error {
	if acc.Size > 64 {
		return invalidArgErr("Table.SetInt", "accessor size exceeds 64 bits")
	}
	v &= mask(uint64(acc.Size))
	var buf [8]byte
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
	buf[4] = byte(v >> 32)
	buf[5] = byte(v >> 40)
	buf[6] = byte(v >> 48)
	buf[7] = byte(v >> 56)
	return t.Set(row, acc, buf[:])
}

// Sync flushes the whole mapping to the backing file synchronously.
func (t *Table) Sync() error {
	if t.closed {
		return ErrClosed
	}
	return msyncFile(t.data)
}

// Close releases this handle. The mapping stays resident in the owning
// Database's cache until evicted or the Database is closed.
func (t *Table) Close() {
	if t.db == nil || t.closed {
		return
	}
	t.db.release(t)
}
