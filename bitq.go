package bitq

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/bitq/distance"
	"github.com/hupe1980/bitq/internal/bitops"
	"github.com/hupe1980/bitq/quantization"
	"github.com/hupe1980/bitq/scorer"
	"github.com/hupe1980/bitq/vectorstore"
)

// SearchResult is one ranked neighbor. Index is the ordinal of the vector
// in the Build corpus.
type SearchResult struct {
	Index int
	Score float32
}

// Index is an asymmetric bit-quantized nearest neighbor index. Stored
// vectors are packed to one bit per dimension; queries are quantized at a
// configurable width (4 bits by default) against the same centroid.
//
// An Index is built once and then read-only: Build must complete before
// the first search, and concurrent searches are safe afterwards.
type Index struct {
	opts      options
	quantizer *quantization.Quantizer
	scorer    *scorer.Scorer
	store     *vectorstore.Store
}

// New creates an empty Index. Call Build before searching.
func New(optFns ...Option) (*Index, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	if !opts.similarity.Valid() {
		return nil, &ErrUnsupportedSimilarity{Similarity: opts.similarity}
	}
	if opts.indexBits != 1 {
		return nil, &ErrUnsupportedBits{Bits: opts.indexBits, Supported: []int{1}}
	}
	if !quantization.SupportedBits(opts.queryBits) {
		return nil, &ErrUnsupportedBits{Bits: opts.queryBits, Supported: []int{1, 4}}
	}

	q, err := quantization.New(opts.similarity, opts.lambda, opts.iters)
	if err != nil {
		return nil, err
	}

	idx := &Index{opts: opts, quantizer: q}

	sc, err := scorer.New(opts.similarity, func(o *scorer.Options) {
		o.OnFallback = func(err error) {
			idx.opts.logger.LogFallback(context.Background(), err)
			idx.opts.metrics.RecordBatchFallback()
		}
	})
	if err != nil {
		return nil, err
	}
	idx.scorer = sc

	return idx, nil
}

// Similarity returns the similarity function the index was built for.
func (idx *Index) Similarity() distance.Similarity { return idx.opts.similarity }

// QueryBits returns the query-side quantization width.
func (idx *Index) QueryBits() int { return idx.opts.queryBits }

// Len returns the number of indexed vectors, 0 before Build.
func (idx *Index) Len() int {
	if idx.store == nil {
		return 0
	}
	return idx.store.Len()
}

// Dimension returns the vector dimension, 0 before Build.
func (idx *Index) Dimension() int {
	if idx.store == nil {
		return 0
	}
	return idx.store.Dimension()
}

// Build quantizes the corpus and makes the index searchable. The input
// vectors are not retained; callers that want exact reranking keep their
// own copy. Build replaces any previously built state.
func (idx *Index) Build(ctx context.Context, vectors [][]float32) error {
	start := time.Now()
	err := idx.build(ctx, vectors)
	idx.opts.metrics.RecordBuild(len(vectors), time.Since(start), err)
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	idx.opts.logger.LogBuild(ctx, len(vectors), dim, time.Since(start), err)
	return err
}

func (idx *Index) build(ctx context.Context, vectors [][]float32) error {
	if len(vectors) == 0 {
		return ErrEmptyCorpus
	}

	dim := len(vectors[0])
	if dim == 0 {
		return &ErrDimensionMismatch{Expected: 1, Actual: 0, Vector: 0}
	}
	for ord, v := range vectors {
		if len(v) != dim {
			return &ErrDimensionMismatch{Expected: dim, Actual: len(v), Vector: ord}
		}
		for i, c := range v {
			if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
				return &ErrNonFiniteComponent{Vector: ord, Component: i, Value: c}
			}
		}
	}

	// Cosine operates on unit vectors. Normalize copies so the caller's
	// slices stay untouched.
	if idx.opts.similarity == distance.Cosine {
		normalized := make([][]float32, len(vectors))
		for ord, v := range vectors {
			normalized[ord], _ = distance.NormalizeL2Copy(v)
		}
		vectors = normalized
	}

	centroid := distance.Centroid(vectors)

	store, err := vectorstore.New(centroid, len(vectors), idx.opts.unpackedCacheSize)
	if err != nil {
		return err
	}

	// Each worker owns its scratch buffers and writes disjoint store slots.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.opts.parallelism)

	packedLen := bitops.PackedLen(dim)
	for ord, v := range vectors {
		ord, v := ord, v
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			levels := make([]byte, dim)
			terms, err := idx.quantizer.Quantize(v, levels, 1, centroid)
			if err != nil {
				return err
			}

			packed := make([]byte, packedLen)
			if err := bitops.PackBits(levels, packed); err != nil {
				return err
			}

			return store.SetEntry(ord, packed, terms)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	idx.store = store
	return nil
}

// quantizeQuery encodes the query against the store centroid at the
// configured query width. It returns the unpacked levels, the correction
// terms, and the (possibly normalized) float query needed by 4-bit
// centroid correction.
func (idx *Index) quantizeQuery(query []float32) ([]byte, quantization.CorrectionTerms, []float32, error) {
	if idx.store == nil {
		return nil, quantization.CorrectionTerms{}, nil, ErrNotBuilt
	}
	if len(query) != idx.store.Dimension() {
		return nil, quantization.CorrectionTerms{}, nil, &ErrDimensionMismatch{Expected: idx.store.Dimension(), Actual: len(query), Vector: -1}
	}
	for i, c := range query {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return nil, quantization.CorrectionTerms{}, nil, &ErrNonFiniteComponent{Vector: -1, Component: i, Value: c}
		}
	}

	if idx.opts.similarity == distance.Cosine {
		query, _ = distance.NormalizeL2Copy(query)
	}

	levels := make([]byte, len(query))
	terms, err := idx.quantizer.Quantize(query, levels, idx.opts.queryBits, idx.store.Centroid())
	if err != nil {
		return nil, quantization.CorrectionTerms{}, nil, err
	}
	return levels, terms, query, nil
}
