package bitq

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/bitq/distance"
	"github.com/hupe1980/bitq/internal/queue"
	"github.com/hupe1980/bitq/scorer"
)

// searchBatchSize is the number of candidates scored per batch kernel call.
const searchBatchSize = 1024

// Search returns the top k corpus vectors ranked by reconstructed
// similarity, best first. Ties on score break toward the lower ordinal.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]SearchResult, error) {
	start := time.Now()
	results, err := idx.search(ctx, query, k, nil)
	idx.opts.metrics.RecordSearch(k, time.Since(start), err)
	idx.opts.logger.LogSearch(ctx, k, len(results), err)
	return results, err
}

// SearchWithFilter is Search restricted to the ordinals present in filter.
// A nil filter matches everything.
func (idx *Index) SearchWithFilter(ctx context.Context, query []float32, k int, filter *roaring.Bitmap) ([]SearchResult, error) {
	start := time.Now()
	results, err := idx.search(ctx, query, k, filter)
	idx.opts.metrics.RecordSearch(k, time.Since(start), err)
	idx.opts.logger.LogSearch(ctx, k, len(results), err)
	return results, err
}

// SearchOversampled retrieves k*oversample quantized candidates and reranks
// them exactly against the original float vectors, returning the top k by
// exact similarity. originals must be the Build corpus in Build order.
//
// oversample values < 1 are treated as 1, which degenerates to reordering
// the plain quantized top k by exact score.
func (idx *Index) SearchOversampled(ctx context.Context, query []float32, k, oversample int, originals [][]float32) ([]SearchResult, error) {
	if idx.store == nil {
		return nil, ErrNotBuilt
	}
	if len(originals) != idx.store.Len() {
		return nil, fmt.Errorf("originals must cover the corpus: got %d vectors, want %d", len(originals), idx.store.Len())
	}
	if oversample < 1 {
		oversample = 1
	}

	candidates, err := idx.Search(ctx, query, k*oversample)
	if err != nil {
		return nil, err
	}

	for i, c := range candidates {
		exact, err := distance.Exact(idx.opts.similarity, query, originals[c.Index])
		if err != nil {
			return nil, err
		}
		candidates[i].Score = exact
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Index < candidates[j].Index
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

func (idx *Index) search(ctx context.Context, query []float32, k int, filter *roaring.Bitmap) ([]SearchResult, error) {
	if k < 0 {
		return nil, ErrInvalidK
	}

	queryCode, queryTerms, floatQuery, err := idx.quantizeQuery(query)
	if err != nil {
		return nil, err
	}

	if k == 0 {
		return []SearchResult{}, nil
	}

	ordinals := idx.candidateOrdinals(filter)
	if len(ordinals) == 0 {
		return []SearchResult{}, nil
	}

	// Score fixed-size batches in parallel, then merge single-threaded so
	// the heap never needs locking.
	numBatches := (len(ordinals) + searchBatchSize - 1) / searchBatchSize
	segments := make([][]scorer.Result, numBatches)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.opts.parallelism)

	for b := 0; b < numBatches; b++ {
		lo := b * searchBatchSize
		hi := min(lo+searchBatchSize, len(ordinals))
		b := b
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := idx.scorer.Batch(queryCode, queryTerms, idx.store, ordinals[lo:hi], idx.opts.queryBits, floatQuery)
			if err != nil {
				return err
			}
			segments[b] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	top := queue.NewTopK(k)
	for b, seg := range segments {
		base := b * searchBatchSize
		for i, res := range seg {
			top.Push(queue.ScoredOrdinal{Ordinal: ordinals[base+i], Score: res.Score})
		}
	}

	ranked := top.Drain()
	results := make([]SearchResult, len(ranked))
	for i, r := range ranked {
		results[i] = SearchResult{Index: r.Ordinal, Score: r.Score}
	}
	return results, nil
}

// candidateOrdinals materializes the scan order: every ordinal, or the
// filter's members clipped to the store size.
func (idx *Index) candidateOrdinals(filter *roaring.Bitmap) []int {
	n := idx.store.Len()
	if filter == nil {
		ordinals := make([]int, n)
		for i := range ordinals {
			ordinals[i] = i
		}
		return ordinals
	}

	ordinals := make([]int, 0, filter.GetCardinality())
	it := filter.Iterator()
	for it.HasNext() {
		ord := int(it.Next())
		if ord >= n {
			break
		}
		ordinals = append(ordinals, ord)
	}
	return ordinals
}
