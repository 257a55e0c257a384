package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarityString(t *testing.T) {
	assert.Equal(t, "Euclidean", Euclidean.String())
	assert.Equal(t, "Cosine", Cosine.String())
	assert.Equal(t, "MaximumInnerProduct", MaximumInnerProduct.String())
	assert.Equal(t, "Unknown(99)", Similarity(99).String())
}

func TestSimilarityValid(t *testing.T) {
	assert.True(t, Euclidean.Valid())
	assert.True(t, Cosine.Valid())
	assert.True(t, MaximumInnerProduct.Valid())
	assert.False(t, Similarity(-1).Valid())
	assert.False(t, Similarity(3).Valid())
}

func TestDot(t *testing.T) {
	assert.InDelta(t, 32.0, Dot([]float32{1, 2, 3}, []float32{4, 5, 6}), 1e-6)
	assert.InDelta(t, 0.0, Dot(nil, nil), 1e-6)
}

func TestSquaredL2(t *testing.T) {
	assert.InDelta(t, 27.0, SquaredL2([]float32{1, 2, 3}, []float32{4, 5, 6}), 1e-6)
	assert.InDelta(t, 0.0, SquaredL2([]float32{1, 2}, []float32{1, 2}), 1e-6)
}

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 4}
	require.True(t, NormalizeL2InPlace(v))
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)
	assert.InDelta(t, 1.0, Magnitude(v), 1e-6)

	zero := []float32{0, 0}
	assert.False(t, NormalizeL2InPlace(zero))
}

func TestNormalizeL2Copy_LeavesSourceUntouched(t *testing.T) {
	src := []float32{3, 4}
	dst, ok := NormalizeL2Copy(src)
	require.True(t, ok)
	assert.Equal(t, float32(3), src[0])
	assert.InDelta(t, 0.6, dst[0], 1e-6)
}

func TestCentroid(t *testing.T) {
	got := Centroid([][]float32{{1, 2}, {3, 4}, {5, 6}})
	assert.InDelta(t, 3.0, got[0], 1e-6)
	assert.InDelta(t, 4.0, got[1], 1e-6)

	assert.Nil(t, Centroid(nil))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-6)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 0}), 1e-6)
}

func TestScaleMaxInnerProduct(t *testing.T) {
	assert.InDelta(t, 2.0, ScaleMaxInnerProduct(1), 1e-6)
	assert.InDelta(t, 1.0, ScaleMaxInnerProduct(0), 1e-6)
	assert.InDelta(t, 0.5, ScaleMaxInnerProduct(-1), 1e-6)

	// Monotonic across the seam at 0.
	prev := float32(math.Inf(-1))
	for _, s := range []float32{-10, -1, -0.001, 0, 0.001, 1, 10} {
		got := ScaleMaxInnerProduct(s)
		assert.Greater(t, got, prev, "not monotonic at %v", s)
		prev = got
	}
}

func TestExact(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}

	euclid, err := Exact(Euclidean, a, b)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, euclid, 1e-6)

	cos, err := Exact(Cosine, a, b)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, cos, 1e-6)

	mip, err := Exact(MaximumInnerProduct, a, a)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, mip, 1e-6)

	_, err = Exact(Similarity(42), a, b)
	assert.Error(t, err)
}
