// Package vectorstore holds the quantized corpus: one packed 1-bit code and
// one set of correction terms per ordinal, plus the shared centroid and its
// cached self dot product.
//
// A Store is populated exactly once when a corpus is quantized and is
// read-only afterwards, so any number of concurrent searches may read it
// without synchronization. The only internal mutable state is a bounded LRU
// of unpacked code forms, which is safe for concurrent use.
package vectorstore
