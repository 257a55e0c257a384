package scorer

import (
	"fmt"

	"github.com/hupe1980/bitq/distance"
	"github.com/hupe1980/bitq/internal/bitops"
	"github.com/hupe1980/bitq/quantization"
	"github.com/hupe1980/bitq/vectorstore"
)

// Result is the transient outcome of scoring one query/candidate pair.
type Result struct {
	Score            float32
	BitDotProduct    int32
	QueryCorrections quantization.CorrectionTerms
	IndexCorrections quantization.CorrectionTerms
}

// Options contains configuration options for a Scorer.
type Options struct {
	// OnFallback is invoked with the batch failure whenever the scorer
	// recovers through the single-pair path. Diagnostics only; the
	// returned scores do not depend on it.
	OnFallback func(err error)
}

// Scorer reconstructs similarity scores from bit dot products and
// correction terms. Immutable after construction; safe for concurrent use.
type Scorer struct {
	similarity distance.Similarity
	onFallback func(err error)
}

// New creates a Scorer for the given similarity function.
func New(similarity distance.Similarity, optFns ...func(o *Options)) (*Scorer, error) {
	if !similarity.Valid() {
		return nil, fmt.Errorf("unsupported similarity: %v", similarity)
	}

	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Scorer{
		similarity: similarity,
		onFallback: opts.OnFallback,
	}, nil
}

// Score combines a raw bit dot product with the query-side and index-side
// correction terms into a final similarity score.
//
// centroidDot is the centroid self dot product for 1-bit queries and the
// original-query/centroid dot product for 4-bit queries.
func (s *Scorer) Score(bitDot int32, queryCorr, indexCorr quantization.CorrectionTerms, queryBits, dimension int, centroidDot float32) (float32, error) {
	if !quantization.SupportedBits(queryBits) {
		return 0, fmt.Errorf("unsupported query bits: %d (want 1 or 4)", queryBits)
	}

	x1 := indexCorr.QuantizedComponentSum
	ax := indexCorr.LowerInterval
	lx := indexCorr.UpperInterval - ax
	ay := queryCorr.LowerInterval
	ly := queryCorr.UpperInterval - ay
	if queryBits == 4 {
		// 4-bit levels span 0-15; rescale the query interval range so the
		// reconstruction stays comparable with the 1-bit formula.
		ly *= quantization.FourBitScale
	}
	y1 := queryCorr.QuantizedComponentSum

	raw := ax*ay*float32(dimension) +
		ay*lx*x1 +
		ax*ly*y1 +
		lx*ly*float32(bitDot)

	switch s.similarity {
	case distance.Euclidean:
		e := queryCorr.AdditionalCorrection + indexCorr.AdditionalCorrection - 2*raw
		score := 1 / (1 + e)
		if score < 0 {
			score = 0
		}
		return score, nil
	case distance.Cosine:
		c := raw + queryCorr.AdditionalCorrection + indexCorr.AdditionalCorrection - centroidDot
		score := (1 + c) / 2
		if score < 0 {
			score = 0
		}
		return score, nil
	case distance.MaximumInnerProduct:
		c := raw + queryCorr.AdditionalCorrection + indexCorr.AdditionalCorrection - centroidDot
		return distance.ScaleMaxInnerProduct(c), nil
	default:
		return 0, fmt.Errorf("unsupported similarity: %v", s.similarity)
	}
}

// ScoreCandidate scores a single candidate ordinal through the single-pair
// kernel path. queryCode holds unpacked levels: 0/1 for 1-bit queries,
// 0-15 for 4-bit queries.
func (s *Scorer) ScoreCandidate(queryCode []byte, queryCorr quantization.CorrectionTerms, store *vectorstore.Store, ord, queryBits int, centroidDot float32) (Result, error) {
	if err := s.validateQuery(queryCode, store, queryBits); err != nil {
		return Result{}, err
	}
	if ord < 0 || ord >= store.Len() {
		return Result{}, fmt.Errorf("ordinal out of range: %d (store size %d)", ord, store.Len())
	}

	var bitDot int32
	switch queryBits {
	case 1:
		packed := make([]byte, store.PackedLen())
		if err := bitops.PackBits(queryCode, packed); err != nil {
			return Result{}, err
		}
		bitDot = int32(bitops.Dot1x1(packed, store.Code(ord)))
	case 4:
		bitDot = int32(bitops.DotUnpacked(queryCode, store.UnpackedCode(ord)))
	}

	return s.finalize(bitDot, queryCorr, store.Corrections(ord), queryBits, store.Dimension(), centroidDot)
}

// Batch scores all requested ordinals against the query. The query code is
// packed once, the target codes are concatenated into one contiguous
// buffer, and the matching batch kernel runs over it. If any step of the
// batch path fails, every candidate is recomputed through the single-pair
// path instead; the output is identical, only slower.
//
// originalQuery is required for 4-bit queries: the centroid dot product is
// recomputed against the float query because the quantized code has lost
// the precision to recover it.
func (s *Scorer) Batch(queryCode []byte, queryCorr quantization.CorrectionTerms, store *vectorstore.Store, ordinals []int, queryBits int, originalQuery []float32) ([]Result, error) {
	if err := s.validateQuery(queryCode, store, queryBits); err != nil {
		return nil, err
	}

	var centroidDot float32
	switch queryBits {
	case 1:
		centroidDot = store.CentroidSelfDot()
	case 4:
		if len(originalQuery) != store.Dimension() {
			return nil, fmt.Errorf("4-bit batch scoring requires the original query vector (got %d components, want %d)", len(originalQuery), store.Dimension())
		}
		centroidDot = distance.Dot(originalQuery, store.Centroid())
	}

	if len(ordinals) == 0 {
		return []Result{}, nil
	}

	results, batchErr := s.scoreBatch(queryCode, queryCorr, store, ordinals, queryBits, centroidDot)
	if batchErr == nil {
		return results, nil
	}

	if s.onFallback != nil {
		s.onFallback(batchErr)
	}

	results, err := s.scoreSequential(queryCode, queryCorr, store, ordinals, queryBits, centroidDot)
	if err != nil {
		return nil, &ComputationError{Op: "batch score", BatchCause: batchErr, cause: err}
	}
	return results, nil
}

// scoreBatch is the fast path: packed query, concatenated targets, batch
// kernel, shared finalization.
func (s *Scorer) scoreBatch(queryCode []byte, queryCorr quantization.CorrectionTerms, store *vectorstore.Store, ordinals []int, queryBits int, centroidDot float32) ([]Result, error) {
	packedLen := store.PackedLen()

	targets, err := bitops.ConcatCodes(store.Codes(), ordinals, packedLen)
	if err != nil {
		return nil, fmt.Errorf("build concatenated target buffer: %w", err)
	}

	bitDots := make([]int32, len(ordinals))
	switch queryBits {
	case 1:
		packedQuery := make([]byte, packedLen)
		if err := bitops.PackBits(queryCode, packedQuery); err != nil {
			return nil, fmt.Errorf("pack query code: %w", err)
		}
		bitops.BatchDot1x1(packedQuery, targets, len(ordinals), packedLen, bitDots)
	case 4:
		planes, err := bitops.PackPlanes(queryCode)
		if err != nil {
			return nil, fmt.Errorf("pack query bit planes: %w", err)
		}
		bitops.BatchDot4x1(planes, targets, len(ordinals), packedLen, bitDots)
	}

	results := make([]Result, len(ordinals))
	for i, ord := range ordinals {
		res, err := s.finalize(bitDots[i], queryCorr, store.Corrections(ord), queryBits, store.Dimension(), centroidDot)
		if err != nil {
			return nil, err
		}
		results[i] = res
	}
	return results, nil
}

// scoreSequential is the fallback path: one single-pair kernel call per
// candidate. Bit-for-bit identical scores to scoreBatch.
func (s *Scorer) scoreSequential(queryCode []byte, queryCorr quantization.CorrectionTerms, store *vectorstore.Store, ordinals []int, queryBits int, centroidDot float32) ([]Result, error) {
	var packedQuery []byte
	if queryBits == 1 {
		packedQuery = make([]byte, store.PackedLen())
		if err := bitops.PackBits(queryCode, packedQuery); err != nil {
			return nil, err
		}
	}

	results := make([]Result, len(ordinals))
	for i, ord := range ordinals {
		if ord < 0 || ord >= store.Len() {
			return nil, fmt.Errorf("ordinal out of range: %d (store size %d)", ord, store.Len())
		}

		var bitDot int32
		switch queryBits {
		case 1:
			bitDot = int32(bitops.Dot1x1(packedQuery, store.Code(ord)))
		case 4:
			bitDot = int32(bitops.DotUnpacked(queryCode, store.UnpackedCode(ord)))
		}

		res, err := s.finalize(bitDot, queryCorr, store.Corrections(ord), queryBits, store.Dimension(), centroidDot)
		if err != nil {
			return nil, err
		}
		results[i] = res
	}
	return results, nil
}

func (s *Scorer) finalize(bitDot int32, queryCorr, indexCorr quantization.CorrectionTerms, queryBits, dimension int, centroidDot float32) (Result, error) {
	score, err := s.Score(bitDot, queryCorr, indexCorr, queryBits, dimension, centroidDot)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Score:            score,
		BitDotProduct:    bitDot,
		QueryCorrections: queryCorr,
		IndexCorrections: indexCorr,
	}, nil
}

func (s *Scorer) validateQuery(queryCode []byte, store *vectorstore.Store, queryBits int) error {
	if !quantization.SupportedBits(queryBits) {
		return fmt.Errorf("unsupported query bits: %d (want 1 or 4)", queryBits)
	}
	if len(queryCode) != store.Dimension() {
		return fmt.Errorf("query code length %d does not match store dimension %d", len(queryCode), store.Dimension())
	}
	return nil
}
