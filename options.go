package bitq

import (
	"runtime"

	"github.com/hupe1980/bitq/codec"
	"github.com/hupe1980/bitq/distance"
	"github.com/hupe1980/bitq/quantization"
)

type options struct {
	similarity        distance.Similarity
	indexBits         int
	queryBits         int
	lambda            float32
	iters             int
	parallelism       int
	unpackedCacheSize int
	logger            *Logger
	metrics           MetricsCollector
	codec             codec.Codec
}

func defaultOptions() options {
	return options{
		similarity:        distance.Cosine,
		indexBits:         1,
		queryBits:         4,
		lambda:            quantization.DefaultLambda,
		iters:             quantization.DefaultIters,
		parallelism:       runtime.GOMAXPROCS(0),
		unpackedCacheSize: 4096,
		logger:            NoopLogger(),
		metrics:           NoopMetricsCollector{},
		codec:             codec.Default,
	}
}

// Option configures Index construction.
type Option func(*options)

// WithSimilarity sets the similarity function (default Cosine).
func WithSimilarity(sim distance.Similarity) Option {
	return func(o *options) {
		o.similarity = sim
	}
}

// WithQueryBits sets the query-side quantization width (default 4).
// Supported values are 1 and 4; stored vectors are always 1-bit packed.
func WithQueryBits(bits int) Option {
	return func(o *options) {
		o.queryBits = bits
	}
}

// WithIndexBits sets the index-side quantization width. Only 1 is
// supported in this design; the option exists so misconfiguration fails
// with a descriptive error rather than being silently ignored.
func WithIndexBits(bits int) Option {
	return func(o *options) {
		o.indexBits = bits
	}
}

// WithLambda sets the anisotropic regularization weight of the interval
// search (default 0.1). Must be >= 0.
func WithLambda(lambda float32) Option {
	return func(o *options) {
		o.lambda = lambda
	}
}

// WithIters sets the fixed budget of interval optimization rounds
// (default 5). Must be >= 1.
func WithIters(iters int) Option {
	return func(o *options) {
		o.iters = iters
	}
}

// WithParallelism bounds the number of worker goroutines used for corpus
// quantization and batched search scoring (default GOMAXPROCS).
// Values < 1 are treated as 1.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.parallelism = n
	}
}

// WithUnpackedCacheSize bounds the entry count of the per-store cache of
// unpacked code forms (default 4096). 0 disables the cache.
func WithUnpackedCacheSize(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.unpackedCacheSize = n
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector. If nil is passed,
// metrics collection is disabled.
func WithMetricsCollector(m MetricsCollector) Option {
	return func(o *options) {
		if m == nil {
			m = NoopMetricsCollector{}
		}
		o.metrics = m
	}
}

// WithCodec configures the codec used for snapshot compression.
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}
