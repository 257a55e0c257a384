// Package scorer turns raw integer bit dot products into similarity scores.
//
// A score is reconstructed from the kernel result plus the query-side and
// index-side correction terms; the finalization differs per similarity
// function. The batch entry point prefers the packed batch kernels and
// falls back to the single-pair path when the batch path fails, producing
// identical results either way - the fallback degrades latency, never
// correctness.
package scorer
