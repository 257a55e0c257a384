// Package bitq provides asymmetric bit-quantized nearest neighbor search.
//
// Stored vectors are scalar-quantized to a single bit per dimension and
// packed 8 components per byte; queries are quantized at 4 bits (1 bit is
// also supported) against the same corpus centroid. Similarity between a
// query and a stored vector is reconstructed from an integer bit dot
// product plus a handful of per-vector correction scalars, so a full scan
// touches roughly 1/32 of the memory a float32 scan would.
//
// # Quick Start
//
//	ctx := context.Background()
//
//	idx, _ := bitq.New(bitq.WithSimilarity(distance.Cosine))
//	_ = idx.Build(ctx, vectors)
//
//	results, _ := idx.Search(ctx, query, 10)
//	for _, r := range results {
//	    fmt.Println(r.Index, r.Score)
//	}
//
// # Reranking
//
// Quantized scores are approximations. When the original float vectors are
// still at hand, retrieve a wider candidate set and rerank it exactly:
//
//	results, _ := idx.SearchOversampled(ctx, query, 10, 5, vectors)
//
// # Filtered Search
//
// Searches can be restricted to a subset of ordinals with a roaring bitmap:
//
//	allowed := roaring.BitmapOf(3, 17, 42)
//	results, _ := idx.SearchWithFilter(ctx, query, 10, allowed)
//
// # Persistence
//
// A built index can be written to and restored from a compressed snapshot:
//
//	var buf bytes.Buffer
//	_ = idx.SaveSnapshot(&buf)
//	idx2, _ := bitq.LoadSnapshot(&buf)
//
// # Key Features
//
//   - 1-bit packed storage, 4-bit asymmetric queries
//   - Euclidean, cosine, and maximum inner product similarity
//   - Anisotropic interval optimization per vector
//   - Batched popcount scoring with a bit-identical sequential fallback
//   - Parallel corpus build and search (errgroup workers)
//   - Compressed snapshots (zstd or lz4)
package bitq
