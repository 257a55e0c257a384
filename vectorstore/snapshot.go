package vectorstore

import (
	"fmt"

	"github.com/hupe1980/bitq/internal/bitops"
	"github.com/hupe1980/bitq/quantization"
)

// State is the serializable form of a Store. The centroid self dot product
// is recomputed on restore rather than persisted.
type State struct {
	Dimension   int
	Centroid    []float32
	Codes       [][]byte
	Corrections []quantization.CorrectionTerms
}

// State captures the store contents for snapshotting. The returned value
// shares backing slices with the store; it must be encoded before the
// caller mutates anything (stores are read-only after build, so in
// practice this is always safe).
func (s *Store) State() *State {
	return &State{
		Dimension:   s.dimension,
		Centroid:    s.centroid,
		Codes:       s.codes,
		Corrections: s.corrections,
	}
}

// FromState reconstructs a Store from a decoded snapshot state.
func FromState(st *State, cacheCapacity int) (*Store, error) {
	if st == nil {
		return nil, fmt.Errorf("nil snapshot state")
	}
	if st.Dimension <= 0 || len(st.Centroid) != st.Dimension {
		return nil, fmt.Errorf("corrupt snapshot: dimension %d, centroid length %d", st.Dimension, len(st.Centroid))
	}
	if len(st.Codes) != len(st.Corrections) {
		return nil, fmt.Errorf("corrupt snapshot: %d codes but %d correction entries", len(st.Codes), len(st.Corrections))
	}

	store, err := New(st.Centroid, len(st.Codes), cacheCapacity)
	if err != nil {
		return nil, err
	}

	packedLen := bitops.PackedLen(st.Dimension)
	for ord, code := range st.Codes {
		if len(code) != packedLen {
			return nil, fmt.Errorf("corrupt snapshot: code %d has %d bytes, want %d", ord, len(code), packedLen)
		}
		store.codes[ord] = code
		store.corrections[ord] = st.Corrections[ord]
	}

	return store, nil
}
