package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/bitq/internal/bitops"
	"github.com/hupe1980/bitq/quantization"
)

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, 1, 0)
	assert.Error(t, err)

	_, err = New([]float32{1, 2}, -1, 0)
	assert.Error(t, err)

	s, err := New([]float32{1, 2, 3}, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, s.Len())
	assert.Equal(t, 3, s.Dimension())
	assert.Equal(t, 1, s.PackedLen())
	assert.InDelta(t, 14.0, s.CentroidSelfDot(), 1e-6)
}

func TestSetEntry(t *testing.T) {
	s, err := New(make([]float32, 16), 2, 0)
	require.NoError(t, err)

	terms := quantization.CorrectionTerms{LowerInterval: -1, UpperInterval: 1, QuantizedComponentSum: 8}
	require.NoError(t, s.SetEntry(0, []byte{0xAA, 0x55}, terms))

	assert.Equal(t, []byte{0xAA, 0x55}, s.Code(0))
	assert.Equal(t, terms, s.Corrections(0))

	assert.Error(t, s.SetEntry(-1, []byte{0, 0}, terms))
	assert.Error(t, s.SetEntry(2, []byte{0, 0}, terms))
	assert.Error(t, s.SetEntry(1, []byte{0}, terms), "short code")
}

func TestUnpackedCode_Memoized(t *testing.T) {
	s, err := New(make([]float32, 8), 1, 8)
	require.NoError(t, err)
	require.NoError(t, s.SetEntry(0, []byte{0x05}, quantization.CorrectionTerms{}))

	want := bitops.UnpackBits([]byte{0x05}, 8)
	assert.Equal(t, want, s.UnpackedCode(0))
	assert.Equal(t, want, s.UnpackedCode(0))

	hits, misses := s.CacheStats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestStateRoundTrip(t *testing.T) {
	s, err := New([]float32{0.5, -0.5, 1, 0, 0, 0, 0, 0}, 2, 4)
	require.NoError(t, err)
	require.NoError(t, s.SetEntry(0, []byte{0x0F}, quantization.CorrectionTerms{QuantizedComponentSum: 4}))
	require.NoError(t, s.SetEntry(1, []byte{0xF0}, quantization.CorrectionTerms{QuantizedComponentSum: 4}))

	restored, err := FromState(s.State(), 4)
	require.NoError(t, err)

	assert.Equal(t, s.Len(), restored.Len())
	assert.Equal(t, s.Dimension(), restored.Dimension())
	assert.Equal(t, s.Centroid(), restored.Centroid())
	assert.InDelta(t, s.CentroidSelfDot(), restored.CentroidSelfDot(), 1e-6)
	for ord := 0; ord < s.Len(); ord++ {
		assert.Equal(t, s.Code(ord), restored.Code(ord))
		assert.Equal(t, s.Corrections(ord), restored.Corrections(ord))
	}
}

func TestFromState_Corrupt(t *testing.T) {
	_, err := FromState(nil, 0)
	assert.Error(t, err)

	_, err = FromState(&State{Dimension: 0}, 0)
	assert.Error(t, err)

	_, err = FromState(&State{
		Dimension:   8,
		Centroid:    make([]float32, 8),
		Codes:       [][]byte{{0x01}},
		Corrections: nil,
	}, 0)
	assert.Error(t, err, "codes and corrections out of sync")

	_, err = FromState(&State{
		Dimension:   8,
		Centroid:    make([]float32, 8),
		Codes:       [][]byte{{0x01, 0x02}},
		Corrections: make([]quantization.CorrectionTerms, 1),
	}, 0)
	assert.Error(t, err, "wrong code length")
}
