// Package distance provides exact float32 similarity calculations and the
// closed set of similarity functions supported by bitq.
//
// Exact scores computed here serve two purposes: they are the ground truth
// that quantized scoring approximates, and they are used verbatim by the
// oversample-and-rerank search mode.
package distance
