package distance

import (
	"fmt"
	"math"
	"slices"
)

// Similarity represents the similarity function used for vector comparison.
type Similarity int

const (
	// Euclidean scores by inverted squared L2 distance: 1/(1+d^2), in (0,1].
	Euclidean Similarity = iota
	// Cosine scores by (1+cos)/2, in [0,1]. Vectors are L2-normalized first.
	Cosine
	// MaximumInnerProduct scores by a monotonic rescale of the raw dot
	// product that keeps all scores positive.
	MaximumInnerProduct
)

func (s Similarity) String() string {
	switch s {
	case Euclidean:
		return "Euclidean"
	case Cosine:
		return "Cosine"
	case MaximumInnerProduct:
		return "MaximumInnerProduct"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Valid reports whether s is one of the supported similarity functions.
func (s Similarity) Valid() bool {
	switch s {
	case Euclidean, Cosine, MaximumInnerProduct:
		return true
	default:
		return false
	}
}

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Magnitude returns the L2 norm of v.
func Magnitude(v []float32) float32 {
	return float32(math.Sqrt(float64(Dot(v, v))))
}

// NormalizeL2InPlace L2-normalizes v in place.
// Returns false if v has zero L2 norm.
func NormalizeL2InPlace(v []float32) bool {
	if len(v) == 0 {
		return false
	}
	norm2 := Dot(v, v)
	if norm2 == 0 {
		return false
	}
	inv := 1 / float32(math.Sqrt(float64(norm2)))
	for i := range v {
		v[i] *= inv
	}
	return true
}

// NormalizeL2Copy returns a normalized copy of src.
// Returns false if src has zero L2 norm; the copy is still returned.
func NormalizeL2Copy(src []float32) ([]float32, bool) {
	dst := slices.Clone(src)
	ok := NormalizeL2InPlace(dst)
	return dst, ok
}

// Centroid computes the componentwise mean of vectors.
// All vectors must share the same dimension (caller's responsibility).
func Centroid(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	centroid := make([]float32, dim)
	for _, v := range vectors {
		for i, val := range v {
			centroid[i] += val
		}
	}
	inv := 1 / float32(len(vectors))
	for i := range centroid {
		centroid[i] *= inv
	}
	return centroid
}

// EuclideanDistance returns the L2 distance between a and b.
func EuclideanDistance(a, b []float32) float32 {
	return float32(math.Sqrt(float64(SquaredL2(a, b))))
}

// EuclideanSimilarity converts squared L2 distance into a similarity score
// in (0,1], on the same scale the quantized reconstruction produces.
func EuclideanSimilarity(a, b []float32) float32 {
	return 1 / (1 + SquaredL2(a, b))
}

// CosineSimilarity returns the cosine of the angle between a and b, in [-1,1].
// Zero-norm inputs score 0.
func CosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / float32(math.Sqrt(float64(normA))*math.Sqrt(float64(normB)))
}

// ScaleMaxInnerProduct rescales a raw inner product so that larger values map
// to larger positive scores. Negative products land in (0,1), non-negative in
// [1,∞); the mapping is continuous at 0.
func ScaleMaxInnerProduct(score float32) float32 {
	if score < 0 {
		return 1 / (1 - score)
	}
	return score + 1
}

// Exact computes the exact similarity score between a and b for the given
// similarity function. Used for ground truth and reranking.
func Exact(sim Similarity, a, b []float32) (float32, error) {
	switch sim {
	case Euclidean:
		return EuclideanSimilarity(a, b), nil
	case Cosine:
		return CosineSimilarity(a, b), nil
	case MaximumInnerProduct:
		return Dot(a, b), nil
	default:
		return 0, fmt.Errorf("unsupported similarity: %v", sim)
	}
}
