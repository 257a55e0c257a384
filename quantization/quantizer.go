package quantization

import (
	"fmt"
	"math"

	"github.com/hupe1980/bitq/distance"
)

const (
	// DefaultLambda is the default anisotropic regularization weight.
	DefaultLambda = 0.1
	// DefaultIters is the default optimization round budget.
	DefaultIters = 5

	// FourBitScale maps 4-bit levels (0-15) back onto the interval range.
	FourBitScale = 1.0 / 15.0

	minDeterminant = 1e-12
	epsilon        = 1e-8
)

// minimumMSEGrid holds the initial interval bounds, in standard deviations,
// that minimize MSE for a uniform source at each bit width (index = bits-1).
var minimumMSEGrid = [8][2]float32{
	{-0.798, 0.798},
	{-1.493, 1.493},
	{-2.051, 2.051},
	{-2.514, 2.514},
	{-2.916, 2.916},
	{-3.278, 3.278},
	{-3.611, 3.611},
	{-3.922, 3.922},
}

// CorrectionTerms are the per-vector scalars produced at quantize time and
// consumed by score reconstruction. They are never mutated afterwards.
type CorrectionTerms struct {
	// LowerInterval and UpperInterval define the affine map from float
	// component to integer level. LowerInterval <= UpperInterval.
	LowerInterval float32
	UpperInterval float32
	// QuantizedComponentSum is the sum of integer levels across dimensions,
	// in [0, D*(2^bits-1)].
	QuantizedComponentSum float32
	// AdditionalCorrection is the residual needed by the reconstruction
	// formula: the centered squared norm for Euclidean, the vector-centroid
	// dot product otherwise.
	AdditionalCorrection float32
}

// Quantizer fits quantization intervals and encodes vectors.
// Immutable after construction; safe for concurrent use.
type Quantizer struct {
	lambda     float32
	iters      int
	similarity distance.Similarity
}

// New creates a Quantizer for the given similarity function.
// lambda must be >= 0 and iters >= 1.
func New(similarity distance.Similarity, lambda float32, iters int) (*Quantizer, error) {
	if !similarity.Valid() {
		return nil, fmt.Errorf("unsupported similarity: %v", similarity)
	}
	if lambda < 0 || math.IsNaN(float64(lambda)) {
		return nil, fmt.Errorf("lambda must be >= 0, got %v", lambda)
	}
	if iters < 1 {
		return nil, fmt.Errorf("iters must be >= 1, got %d", iters)
	}
	return &Quantizer{
		lambda:     lambda,
		iters:      iters,
		similarity: similarity,
	}, nil
}

// Default creates a Quantizer with the default lambda and iteration budget.
func Default(similarity distance.Similarity) *Quantizer {
	q, err := New(similarity, DefaultLambda, DefaultIters)
	if err != nil {
		panic(err) // defaults are always valid
	}
	return q
}

// Similarity returns the similarity function this quantizer was built for.
func (q *Quantizer) Similarity() distance.Similarity { return q.similarity }

// SupportedBits reports whether bits is a supported code width.
func SupportedBits(bits int) bool { return bits == 1 || bits == 4 }

// Quantize encodes vector against centroid into unpacked integer levels,
// one byte per dimension, written to dst. It returns the correction terms
// the scorer needs to reconstruct similarity from the code.
//
// dst must have len(vector) bytes. bits must be 1 or 4.
func (q *Quantizer) Quantize(vector []float32, dst []byte, bits int, centroid []float32) (CorrectionTerms, error) {
	if !SupportedBits(bits) {
		return CorrectionTerms{}, fmt.Errorf("unsupported bits: %d (want 1 or 4)", bits)
	}
	if len(vector) != len(centroid) {
		return CorrectionTerms{}, fmt.Errorf("vector dimension %d does not match centroid dimension %d", len(vector), len(centroid))
	}
	if len(dst) < len(vector) {
		return CorrectionTerms{}, fmt.Errorf("destination length %d is smaller than dimension %d", len(dst), len(vector))
	}
	for i, v := range vector {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return CorrectionTerms{}, fmt.Errorf("non-finite component at dimension %d: %v", i, v)
		}
	}

	// Centroid dot is only needed by the non-Euclidean correction term.
	var centroidDot float32
	if q.similarity != distance.Euclidean {
		centroidDot = distance.Dot(vector, centroid)
	}

	// Center and gather the statistics the interval fit needs.
	centered := make([]float32, len(vector))
	minVal := float32(math.MaxFloat32)
	maxVal := float32(-math.MaxFloat32)
	var sum, sumSq float32
	for i, v := range vector {
		c := v - centroid[i]
		centered[i] = c
		if c < minVal {
			minVal = c
		}
		if c > maxVal {
			maxVal = c
		}
		sum += c
		sumSq += c * c
	}

	mean := sum / float32(len(vector))
	var varianceSum float32
	for _, c := range centered {
		d := c - mean
		varianceSum += d * d
	}
	std := float32(math.Sqrt(float64(varianceSum / float32(len(vector)))))
	norm2 := sumSq

	lower, upper := initialInterval(bits, std, mean, minVal, maxVal)
	points := 1 << bits
	lower, upper = q.optimizeIntervals(centered, lower, upper, norm2, points)

	// Encode levels and accumulate their sum.
	nSteps := float32(points - 1)
	var stepInv float32
	if step := (upper - lower) / nSteps; step > 0 {
		stepInv = 1 / step
	}

	var componentSum float32
	if bits == 1 {
		threshold := (lower + upper) / 2
		for i, c := range centered {
			clamped := clamp(c, lower, upper)
			var level byte
			if clamped >= threshold {
				level = 1
			}
			dst[i] = level
			componentSum += float32(level)
		}
	} else {
		for i, c := range centered {
			clamped := clamp(c, lower, upper)
			assignment := round32((clamped - lower) * stepInv)
			if assignment > nSteps {
				assignment = nSteps
			}
			dst[i] = byte(assignment)
			componentSum += assignment
		}
	}

	correction := norm2
	if q.similarity != distance.Euclidean {
		correction = centroidDot
	}

	return CorrectionTerms{
		LowerInterval:         lower,
		UpperInterval:         upper,
		QuantizedComponentSum: componentSum,
		AdditionalCorrection:  correction,
	}, nil
}

// initialInterval seeds the interval from the per-bit-width MSE grid,
// clamped into the observed component range.
func initialInterval(bits int, std, mean, minVal, maxVal float32) (float32, float32) {
	grid := minimumMSEGrid[bits-1]
	return clamp(grid[0]*std+mean, minVal, maxVal),
		clamp(grid[1]*std+mean, minVal, maxVal)
}

// optimizeIntervals refines (lower, upper) by coordinate descent on the
// anisotropic loss. The budget is fixed: at most q.iters rounds, stopping
// early on a singular system, a sub-epsilon move, or a loss increase.
func (q *Quantizer) optimizeIntervals(centered []float32, lower, upper, norm2 float32, points int) (float32, float32) {
	// Degenerate vectors (all zero after centering, or a collapsed
	// interval) keep their seed interval.
	scale := (1 - q.lambda) / norm2
	if norm2 == 0 || upper == lower || math.IsInf(float64(scale), 0) || math.IsNaN(float64(scale)) {
		return lower, upper
	}

	initialLoss := q.loss(centered, lower, upper, points, norm2)
	nSteps := float32(points - 1)

	for iter := 0; iter < q.iters; iter++ {
		stepInv := nSteps / (upper - lower)

		var daa, dab, dbb, dax, dbx float32
		for _, xi := range centered {
			clamped := clamp(xi, lower, upper)
			k := round32((clamped - lower) * stepInv)
			s := k / nSteps

			daa += (1 - s) * (1 - s)
			dab += (1 - s) * s
			dbb += s * s
			dax += xi * (1 - s)
			dbx += xi * s
		}

		m0 := scale*dax*dax + q.lambda*daa
		m1 := scale*dax*dbx + q.lambda*dab
		m2 := scale*dbx*dbx + q.lambda*dbb

		det := m0*m2 - m1*m1
		if math.Abs(float64(det)) < minDeterminant {
			return lower, upper
		}

		lowerOpt := (m2*dax - m1*dbx) / det
		upperOpt := (m0*dbx - m1*dax) / det

		if math.Abs(float64(lower-lowerOpt)) < epsilon && math.Abs(float64(upper-upperOpt)) < epsilon {
			return lower, upper
		}

		newLoss := q.loss(centered, lowerOpt, upperOpt, points, norm2)
		if newLoss > initialLoss {
			return lower, upper
		}

		lower, upper = lowerOpt, upperOpt
		initialLoss = newLoss
	}

	return lower, upper
}

// loss is the anisotropic objective: parallel reconstruction error weighted
// by (1-lambda), plus lambda times the total squared error.
func (q *Quantizer) loss(centered []float32, lower, upper float32, points int, norm2 float32) float32 {
	step := (upper - lower) / float32(points-1)
	stepInv := 1 / step

	var xe, e float32
	for _, xi := range centered {
		clamped := clamp(xi, lower, upper)
		k := round32((clamped - lower) * stepInv)
		xiq := lower + step*k

		diff := xi - xiq
		xe += xi * diff
		e += diff * diff
	}

	return (1-q.lambda)*xe*xe/norm2 + q.lambda*e
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func round32(x float32) float32 {
	return float32(math.Round(float64(x)))
}
