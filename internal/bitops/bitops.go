package bitops

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// popcountTable holds the number of set bits for every byte value.
// Built once at init and never mutated; safe for concurrent readers.
var popcountTable [256]uint8

func init() {
	for i := range popcountTable {
		popcountTable[i] = uint8(bits.OnesCount8(uint8(i)))
	}
}

// Kernel function pointers - set once at init, zero runtime overhead.
// Portable table-driven implementations are the default; platform init
// functions override with word-at-a-time versions when hardware popcount
// is available (see capability_*.go).
var (
	kernelDot1x1      = dot1x1Table
	kernelBatchDot1x1 = batchDot1x1Table
)

// PackedLen returns the number of bytes a 1-bit packed code occupies for
// the given dimension.
func PackedLen(dimension int) int {
	return (dimension + 7) / 8
}

// Dot1x1 computes the bit dot product of two equally sized packed 1-bit
// codes: the number of dimensions set in both.
//
// SAFETY: Assumes len(a) == len(b). Caller MUST ensure lengths match.
func Dot1x1(a, b []byte) int {
	return kernelDot1x1(a, b)
}

// dot1x1Table is the portable kernel: per-byte AND + table popcount.
func dot1x1Table(a, b []byte) int {
	total := 0
	for i := range a {
		total += int(popcountTable[a[i]&b[i]])
	}
	return total
}

// dot1x1Words processes eight bytes per iteration with a hardware-friendly
// popcount, then finishes the ragged tail byte-wise. Results are identical
// to dot1x1Table for every input length.
func dot1x1Words(a, b []byte) int {
	total := 0
	i := 0
	for ; i+8 <= len(a); i += 8 {
		v1 := binary.LittleEndian.Uint64(a[i:])
		v2 := binary.LittleEndian.Uint64(b[i:])
		total += bits.OnesCount64(v1 & v2)
	}
	for ; i < len(a); i++ {
		total += int(popcountTable[a[i]&b[i]])
	}
	return total
}

// DotUnpacked computes the integer dot product of two unpacked level arrays
// (one byte per dimension). Used by the single-pair 4-bit query path, where
// q holds levels 0-15 and d holds levels 0-1.
//
// SAFETY: Assumes len(q) == len(d). Caller MUST ensure lengths match.
func DotUnpacked(q, d []byte) int {
	total := 0
	for i := range q {
		total += int(q[i]) * int(d[i])
	}
	return total
}

// Dot4x1 computes the bit dot product between a 4-bit query stored as four
// packed bit planes and a packed 1-bit code. Plane p contributes its
// popcount-with-d shifted by p, reflecting the binary place value of each
// query bit.
//
// planes must hold 4*len(d) bytes: plane p occupies planes[p*len(d):(p+1)*len(d)].
func Dot4x1(planes, d []byte) int {
	packedLen := len(d)
	total := 0
	for p := 0; p < 4; p++ {
		plane := planes[p*packedLen : (p+1)*packedLen]
		total += kernelDot1x1(plane, d) << p
	}
	return total
}

// BatchDot1x1 computes Dot1x1 between query and every target code in the
// concatenated buffer. Targets are packed back-to-back with stride
// packedLen bytes. out must have length count.
//
// Results are bit-for-bit identical to count independent Dot1x1 calls.
func BatchDot1x1(query, targets []byte, count, packedLen int, out []int32) {
	kernelBatchDot1x1(query, targets, count, packedLen, out)
}

func batchDot1x1Table(query, targets []byte, count, packedLen int, out []int32) {
	for i := 0; i < count; i++ {
		offset := i * packedLen
		out[i] = int32(dot1x1Table(query, targets[offset:offset+packedLen]))
	}
}

func batchDot1x1Words(query, targets []byte, count, packedLen int, out []int32) {
	for i := 0; i < count; i++ {
		offset := i * packedLen
		out[i] = int32(dot1x1Words(query, targets[offset:offset+packedLen]))
	}
}

// BatchDot4x1 computes Dot4x1 between a plane-packed query and every target
// code in the concatenated buffer. out must have length count.
func BatchDot4x1(planes, targets []byte, count, packedLen int, out []int32) {
	for p := 0; p < 4; p++ {
		plane := planes[p*packedLen : (p+1)*packedLen]
		for i := 0; i < count; i++ {
			offset := i * packedLen
			dot := kernelDot1x1(plane, targets[offset:offset+packedLen])
			if p == 0 {
				out[i] = int32(dot)
			} else {
				out[i] += int32(dot << p)
			}
		}
	}
}

// PackBits packs unpacked 0/1 levels into the LSB-first bit layout.
// dst must have PackedLen(len(levels)) bytes and is zeroed first.
func PackBits(levels []byte, dst []byte) error {
	if len(dst) < PackedLen(len(levels)) {
		return fmt.Errorf("packed destination too small: need %d bytes, got %d", PackedLen(len(levels)), len(dst))
	}
	for i := range dst {
		dst[i] = 0
	}
	for j, v := range levels {
		if v > 1 {
			return fmt.Errorf("1-bit level out of range at dimension %d: %d", j, v)
		}
		dst[j/8] |= (v & 1) << (j % 8)
	}
	return nil
}

// UnpackBits expands a packed 1-bit code into one 0/1 byte per dimension.
func UnpackBits(packed []byte, dimension int) []byte {
	levels := make([]byte, dimension)
	for j := 0; j < dimension; j++ {
		levels[j] = (packed[j/8] >> (j % 8)) & 1
	}
	return levels
}

// PackPlanes splits unpacked 4-bit levels into four packed 1-bit planes,
// concatenated into a single buffer of 4*PackedLen(len(levels)) bytes.
// Plane p holds bit p of every level.
func PackPlanes(levels []byte) ([]byte, error) {
	packedLen := PackedLen(len(levels))
	planes := make([]byte, 4*packedLen)
	for j, v := range levels {
		if v > 15 {
			return nil, fmt.Errorf("4-bit level out of range at dimension %d: %d", j, v)
		}
		for p := 0; p < 4; p++ {
			if (v>>p)&1 != 0 {
				planes[p*packedLen+j/8] |= 1 << (j % 8)
			}
		}
	}
	return planes, nil
}

// ConcatCodes copies the selected ordinals' packed codes into one contiguous
// buffer, in the given order. Pure data-layout transform; the batch kernels
// read it with stride packedLen.
func ConcatCodes(codes [][]byte, ordinals []int, packedLen int) ([]byte, error) {
	buf := make([]byte, len(ordinals)*packedLen)
	for i, ord := range ordinals {
		if ord < 0 || ord >= len(codes) {
			return nil, fmt.Errorf("ordinal out of range: %d (have %d codes)", ord, len(codes))
		}
		code := codes[ord]
		if len(code) != packedLen {
			return nil, fmt.Errorf("code length mismatch at ordinal %d: got %d bytes, want %d", ord, len(code), packedLen)
		}
		copy(buf[i*packedLen:], code)
	}
	return buf, nil
}
