// words.go -- byte-slice/word-slice reinterpretation for a mapped region
//
// Adapted from the teacher's mmap.go byte<->uint64-slice helpers
// (bsToUint64Slice/u64sToByteSlice), modernized to use unsafe.Slice
// instead of manual reflect.SliceHeader surgery.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package densedb

import "unsafe"

// wordsView reinterprets a byte region as a slice of host-order 64-bit
// words, without copying. Writes through the returned slice are visible
// in b (and, if b is backed by an mmap'd file, in the mapping).
func wordsView(b []byte) []uint64 {
	if len(b) == 0 {
		return nil
	}
	n := len(b) / 8
	return unsafe.Slice((*uint64)(unsafe.Pointer(&b[0])), n)
}

// wordPtr returns an unsafe.Pointer to the first byte of an [8]byte array,
// used to reinterpret a small stack buffer as a single uint64 in host
// byte order -- the moral equivalent of the C source's
// "memcpy(&val, ptr, n)" / "memcpy(ptr, &val, n)" pairs.
func wordPtr(buf *[8]byte) unsafe.Pointer {
	return unsafe.Pointer(buf)
}
