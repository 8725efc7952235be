// bitcursor_test.go -- round-trip and non-interference properties for the bit cursor
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package densedb

import (
	"math/rand"
	"testing"
)

// fill a byte slice of n words (8 bytes each) with a pseudo-random but
// reproducible pattern.
func fillPattern(words int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	buf := make([]byte, words*8)
	r.Read(buf)
	return buf
}

// lowBitsEqual compares the low n bits of a and b, treating both as
// little-endian bit-strings across bytes.
func lowBitsEqual(a, b []byte, n uint64) bool {
	full := n / 8
	for i := uint64(0); i < full; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	rem := n % 8
	if rem == 0 {
		return true
	}
	m := byte(1<<rem) - 1
	return a[full]&m == b[full]&m
}

func TestBitCursorRoundTrip(t *testing.T) {
	assert := newAsserter(t)

	sizes := []uint64{1, 3, 7, 8, 9, 17, 31, 32, 33, 63, 64, 65, 127, 128, 4096}
	offsets := []uint64{0, 1, 3, 7, 8, 31, 63, 64, 65, 127, 1000, 4000}

	for _, size := range sizes {
		for _, offset := range offsets {
			words := (offset+size+63)/64 + 1
			region := make([]byte, words*8)

			in := fillPattern(int((size+63)/64)+1, int64(size*10007+offset))
			needBytes := 8 * ((size + 63) / 64)
			if needBytes == 0 {
				needBytes = 8
			}

			writeBits(region, size, offset, in)

			out := make([]byte, needBytes)
			readBits(region, size, offset, out)

			assert(lowBitsEqual(in, out, size),
				"round trip failed for size=%d offset=%d", size, offset)
		}
	}
}

func TestBitCursorNonInterferenceDisjointWords(t *testing.T) {
	assert := newAsserter(t)

	region := make([]byte, 32) // 4 words
	// A occupies word 0 entirely, B occupies word 1 entirely.
	accA := Accessor{Offset: 0, Size: 64}
	accB := Accessor{Offset: 64, Size: 64}

	inB := []byte{0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA}
	writeBits(region, uint64(accB.Size), accB.Offset, inB)

	before := make([]byte, 8)
	readBits(region, uint64(accB.Size), accB.Offset, before)

	inA := []byte{0x55, 0x55, 0x55, 0x55, 0x55, 0x55, 0x55, 0x55}
	writeBits(region, uint64(accA.Size), accA.Offset, inA)

	after := make([]byte, 8)
	readBits(region, uint64(accB.Size), accB.Offset, after)

	assert(string(before) == string(after), "write to disjoint word A changed B's bits")
}

func TestBitCursorNonInterferenceSharedWord(t *testing.T) {
	assert := newAsserter(t)

	// Three 3-bit fields packed into the low 9 bits of a single word.
	region := make([]byte, 8)
	x := Accessor{Offset: 0, Size: 3}
	y := Accessor{Offset: 3, Size: 3}
	z := Accessor{Offset: 6, Size: 3}

	setInt3 := func(acc Accessor, v uint64) {
		var buf [8]byte
		buf[0] = byte(v)
		writeBits(region, uint64(acc.Size), acc.Offset, buf[:])
	}
	getInt3 := func(acc Accessor) uint64 {
		var buf [8]byte
		readBits(region, uint64(acc.Size), acc.Offset, buf[:])
		return uint64(buf[0]) & mask(uint64(acc.Size))
	}

	setInt3(x, 5)
	setInt3(y, 2)
	setInt3(z, 7)

	assert(getInt3(x) == 5, "x changed: got %d", getInt3(x))
	assert(getInt3(y) == 2, "y changed by writing z: got %d", getInt3(y))
	assert(getInt3(z) == 7, "z mismatch: got %d", getInt3(z))

	// Overwrite y only; x and z must be untouched.
	setInt3(y, 0)
	assert(getInt3(x) == 5, "x corrupted by write to y: got %d", getInt3(x))
	assert(getInt3(z) == 7, "z corrupted by write to y: got %d", getInt3(z))
}

func TestBitCursorWordStraddlingField(t *testing.T) {
	assert := newAsserter(t)

	// pad: 60 bits, big: 20 bits -- big straddles the word boundary.
	region := make([]byte, 16)
	pad := Accessor{Offset: 0, Size: 60}
	big := Accessor{Offset: 60, Size: 20}

	var padBuf [8]byte
	for i := range padBuf {
		padBuf[i] = 0xFF
	}
	writeBits(region, uint64(pad.Size), pad.Offset, padBuf[:])

	var bigBuf [8]byte
	bigBuf[0] = 0xDE
	bigBuf[1] = 0xBC
	bigBuf[2] = 0x0A // 0x0ABCDE masked to 20 bits below
	writeBits(region, uint64(big.Size), big.Offset, bigBuf[:])

	var out [8]byte
	readBits(region, uint64(big.Size), big.Offset, out[:])
	got := uint64(out[0]) | uint64(out[1])<<8 | uint64(out[2])<<16
	got &= mask(20)
	assert(got == 0xABCDE, "word-straddling field mismatch: got %#x", got)

	var padOut [8]byte
	readBits(region, uint64(pad.Size), pad.Offset, padOut[:])
	padVal := uint64(padOut[0]) | uint64(padOut[1])<<8 | uint64(padOut[2])<<16 |
		uint64(padOut[3])<<24 | uint64(padOut[4])<<32 | uint64(padOut[5])<<40 |
		uint64(padOut[6])<<48 | uint64(padOut[7])<<56
	padVal &= mask(60)
	assert(padVal == mask(60), "pad bits were disturbed by writing big: got %#x", padVal)
}
