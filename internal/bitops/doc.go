// Package bitops implements the integer bit-dot-product kernels used by
// quantized scoring.
//
// All kernels operate on LSB-first packed bit codes: dimension j of a 1-bit
// code lives at bit (j mod 8) of byte j/8. A 4-bit query is either an
// unpacked byte-per-dimension array of levels 0-15, or four 1-bit planes
// where plane p holds bit p of every level.
//
// Kernel selection follows the pattern used across this codebase: package
// level function pointers default to a portable implementation and are
// overridden at init by a faster variant when the CPU supports it. Every
// variant returns bit-for-bit identical results; only throughput differs.
package bitops
