package vectorstore

import (
	"fmt"
	"slices"

	"github.com/hupe1980/bitq/distance"
	"github.com/hupe1980/bitq/internal/bitops"
	"github.com/hupe1980/bitq/internal/cache"
	"github.com/hupe1980/bitq/quantization"
)

// Store is the ordinal-indexed quantized corpus.
type Store struct {
	dimension       int
	codes           [][]byte
	corrections     []quantization.CorrectionTerms
	centroid        []float32
	centroidSelfDot float32

	// unpacked memoizes byte-per-dimension 0/1 forms of stored codes for
	// the single-pair 4-bit scoring path. Read-only values, bounded size.
	unpacked *cache.LRU
}

// New creates a store with count empty entry slots for the given centroid.
// Entries are filled with SetEntry; slots may be written concurrently as
// long as each ordinal is written exactly once.
//
// cacheCapacity bounds the unpacked-code cache entry count; 0 disables it.
func New(centroid []float32, count, cacheCapacity int) (*Store, error) {
	if len(centroid) == 0 {
		return nil, fmt.Errorf("centroid must not be empty")
	}
	if count < 0 {
		return nil, fmt.Errorf("invalid entry count: %d", count)
	}
	return &Store{
		dimension:       len(centroid),
		codes:           make([][]byte, count),
		corrections:     make([]quantization.CorrectionTerms, count),
		centroid:        slices.Clone(centroid),
		centroidSelfDot: distance.Dot(centroid, centroid),
		unpacked:        cache.NewLRU(cacheCapacity),
	}, nil
}

// SetEntry stores the packed code and correction terms for ordinal ord.
func (s *Store) SetEntry(ord int, code []byte, terms quantization.CorrectionTerms) error {
	if ord < 0 || ord >= len(s.codes) {
		return fmt.Errorf("ordinal out of range: %d (store size %d)", ord, len(s.codes))
	}
	if want := bitops.PackedLen(s.dimension); len(code) != want {
		return fmt.Errorf("packed code length %d does not match dimension %d (want %d bytes)", len(code), s.dimension, want)
	}
	s.codes[ord] = code
	s.corrections[ord] = terms
	return nil
}

// Len returns the number of stored vectors.
func (s *Store) Len() int { return len(s.codes) }

// Dimension returns the vector dimension shared by all entries.
func (s *Store) Dimension() int { return s.dimension }

// PackedLen returns the byte length of each stored packed code.
func (s *Store) PackedLen() int { return bitops.PackedLen(s.dimension) }

// Code returns the packed 1-bit code for ordinal ord. Callers must not
// mutate the returned slice.
func (s *Store) Code(ord int) []byte { return s.codes[ord] }

// Codes exposes the full code table for batch buffer construction.
// Callers must not mutate it.
func (s *Store) Codes() [][]byte { return s.codes }

// Corrections returns the correction terms for ordinal ord.
func (s *Store) Corrections(ord int) quantization.CorrectionTerms {
	return s.corrections[ord]
}

// Centroid returns the shared centroid. Callers must not mutate it.
func (s *Store) Centroid() []float32 { return s.centroid }

// CentroidSelfDot returns the cached centroid self dot product used by
// 1-bit query scoring.
func (s *Store) CentroidSelfDot() float32 { return s.centroidSelfDot }

// UnpackedCode returns the byte-per-dimension 0/1 form of the code at ord,
// memoized in the bounded cache. The returned slice is read-only.
func (s *Store) UnpackedCode(ord int) []byte {
	if levels, ok := s.unpacked.Get(ord); ok {
		return levels
	}
	levels := bitops.UnpackBits(s.codes[ord], s.dimension)
	s.unpacked.Set(ord, levels)
	return levels
}

// CacheStats returns unpacked-code cache hit and miss counts.
func (s *Store) CacheStats() (hits, misses int64) {
	return s.unpacked.Stats()
}
