package testutil

import (
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/hupe1980/bitq/distance"
)

// RNG encapsulates a seeded random number generator.
// It is thread-safe and reproducible from its seed.
type RNG struct {
	mu   sync.Mutex
	rand *rand.Rand
	seed int64
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 { return r.seed }

// Float32 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// Vector generates one random vector with components in [min, max).
func (r *RNG) Vector(dimension int, min, max float32) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := make([]float32, dimension)
	for i := range v {
		v[i] = r.rand.Float32()*(max-min) + min
	}
	return v
}

// Vectors generates num random vectors with components in [min, max).
func (r *RNG) Vectors(num, dimension int, min, max float32) [][]float32 {
	vectors := make([][]float32, num)
	for i := range vectors {
		vectors[i] = r.Vector(dimension, min, max)
	}
	return vectors
}

// GroundTruth returns the ordinals of the k corpus vectors with the highest
// exact similarity to query, in descending score order. Brute force; test
// use only.
func GroundTruth(sim distance.Similarity, query []float32, corpus [][]float32, k int) []int {
	type scored struct {
		ord   int
		score float32
	}
	scores := make([]scored, len(corpus))
	for i, v := range corpus {
		s, err := distance.Exact(sim, query, v)
		if err != nil {
			panic(err)
		}
		scores[i] = scored{ord: i, score: s}
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].ord < scores[j].ord
	})
	if k > len(scores) {
		k = len(scores)
	}
	out := make([]int, k)
	for i := 0; i < k; i++ {
		out[i] = scores[i].ord
	}
	return out
}

// Recall returns the fraction of truth ordinals present in got.
func Recall(got, truth []int) float64 {
	if len(truth) == 0 {
		return 1
	}
	set := make(map[int]struct{}, len(got))
	for _, ord := range got {
		set[ord] = struct{}{}
	}
	hits := 0
	for _, ord := range truth {
		if _, ok := set[ord]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(truth))
}

// PearsonCorrelation computes the sample Pearson correlation coefficient
// between two equal-length score arrays. Used for accuracy reporting of
// quantized scores against exact scores. Returns 0 when either array has
// zero variance.
func PearsonCorrelation(a, b []float32) float64 {
	n := len(a)
	if n == 0 || n != len(b) {
		return 0
	}

	var sumA, sumB float64
	for i := 0; i < n; i++ {
		sumA += float64(a[i])
		sumB += float64(b[i])
	}
	meanA := sumA / float64(n)
	meanB := sumB / float64(n)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da := float64(a[i]) - meanA
		db := float64(b[i]) - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}
