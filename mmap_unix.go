// mmap_unix.go -- map, sync and unmap a table file
//
// Grounded in golang.org/x/sys/unix's Mmap/Munmap/Msync, the portable
// successor to the teacher's raw syscall.Mmap calls in dbreader.go, and
// in original_source/dense_db.c's mmap_table()/dense_table_sync().
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package densedb

import (
	"os"

	"golang.org/x/sys/unix"
)

// pageAlignedSize rounds n up to a multiple of the OS page size, after
// first padding n by one word. mmap always backs a mapping with whole
// pages regardless of the requested length, so mapping
// pageAlignedSize(n) bytes -- instead of the file's own logical size
// -- lets the bit cursor's word-granularity reads/writes touch the
// zero-filled tail of the final page without running past the end of
// the Go slice describing the mapping. The one-word pad covers the
// case where n already lands exactly on a page boundary, which would
// otherwise leave no slack at all for a word read that starts at the
// very last byte of the table.
func pageAlignedSize(n int64) int64 {
	n += 8
	ps := int64(unix.Getpagesize())
	return (n + ps - 1) &^ (ps - 1)
}

func mmapFile(fd *os.File, size int64) ([]byte, error) {
	data, err := unix.Mmap(int(fd.Fd()), 0, int(pageAlignedSize(size)), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, ioErr("mmap", err)
	}
	return data, nil
}

func munmapFile(data []byte) error {
	if err := unix.Munmap(data); err != nil {
		return ioErr("munmap", err)
	}
	return nil
}

// msyncFile flushes data to its backing file and invalidates any other
// mapping of the same pages, matching the source's
// "msync(data, size, MS_SYNC | MS_INVALIDATE)".
func msyncFile(data []byte) error {
	if err := unix.Msync(data, unix.MS_SYNC|unix.MS_INVALIDATE); err != nil {
		return ioErr("msync", err)
	}
	return nil
}
