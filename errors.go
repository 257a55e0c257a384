package bitq

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/bitq/distance"
)

var (
	// ErrInvalidK is returned when k is negative.
	ErrInvalidK = errors.New("k must not be negative")

	// ErrEmptyCorpus is returned when Build is called without vectors.
	ErrEmptyCorpus = errors.New("corpus must not be empty")

	// ErrNotBuilt is returned when a search runs before Build.
	ErrNotBuilt = errors.New("index not built")
)

// ErrDimensionMismatch indicates a vector/query dimensionality mismatch.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	// Vector is the offending corpus ordinal, or -1 for a query.
	Vector int
}

func (e *ErrDimensionMismatch) Error() string {
	if e.Vector >= 0 {
		return fmt.Sprintf("dimension mismatch at vector %d: expected %d, got %d", e.Vector, e.Expected, e.Actual)
	}
	return fmt.Sprintf("query dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrNonFiniteComponent indicates a NaN or infinite vector component.
type ErrNonFiniteComponent struct {
	// Vector is the offending corpus ordinal, or -1 for a query.
	Vector    int
	Component int
	Value     float32
}

func (e *ErrNonFiniteComponent) Error() string {
	if e.Vector >= 0 {
		return fmt.Sprintf("non-finite component in vector %d at dimension %d: %v", e.Vector, e.Component, e.Value)
	}
	return fmt.Sprintf("non-finite component in query at dimension %d: %v", e.Component, e.Value)
}

// ErrUnsupportedBits indicates an unsupported quantization bit width.
// Supported lists the widths valid for the side that rejected the value;
// query and index codes support different widths.
type ErrUnsupportedBits struct {
	Bits      int
	Supported []int
}

func (e *ErrUnsupportedBits) Error() string {
	if len(e.Supported) == 0 {
		return fmt.Sprintf("unsupported bits: %d", e.Bits)
	}
	supported := make([]string, len(e.Supported))
	for i, b := range e.Supported {
		supported[i] = strconv.Itoa(b)
	}
	return fmt.Sprintf("unsupported bits: %d (supported: %s)", e.Bits, strings.Join(supported, ", "))
}

// ErrUnsupportedSimilarity indicates an unknown similarity function.
type ErrUnsupportedSimilarity struct {
	Similarity distance.Similarity
}

func (e *ErrUnsupportedSimilarity) Error() string {
	return fmt.Sprintf("unsupported similarity: %v", e.Similarity)
}
