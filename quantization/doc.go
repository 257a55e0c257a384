// Package quantization implements the asymmetric optimized scalar quantizer
// behind bitq's compressed vector codes.
//
// Vectors are centered on a shared centroid, an affine quantization interval
// is fitted per vector by a fixed-budget coordinate-descent that minimizes an
// anisotropic reconstruction loss, and each component is mapped to an integer
// level in [0, 2^bits-1]. Alongside the levels the quantizer emits four
// correction scalars (interval bounds, level sum, and a residual term) that
// let the scorer reconstruct an approximation of the true similarity from an
// integer bit dot product.
package quantization
