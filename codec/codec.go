// Package codec centralizes snapshot frame compression.
//
// Snapshots are self-describing: the frame header records the codec name,
// and readers select the codec by that name. Changing a codec's wire format
// is therefore a breaking-change boundary.
package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec wraps a snapshot payload stream in a compressed frame.
// Implementations must be safe for concurrent use.
type Codec interface {
	// Name is the stable identifier recorded in snapshot headers.
	Name() string

	// NewWriter returns a writer that compresses into w.
	// The returned writer must be closed to flush the frame.
	NewWriter(w io.Writer) (io.WriteCloser, error)

	// NewReader returns a reader that decompresses from r.
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// Default is the codec used for newly written snapshots.
var Default Codec = Zstd{}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "zstd":
		return Zstd{}, true
	case "lz4":
		return LZ4{}, true
	default:
		return nil, false
	}
}

// Zstd compresses snapshot frames with zstandard at the default level.
type Zstd struct{}

// Name returns "zstd".
func (Zstd) Name() string { return "zstd" }

// NewWriter returns a zstd stream writer.
func (Zstd) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w)
}

// NewReader returns a zstd stream reader.
func (Zstd) NewReader(r io.Reader) (io.ReadCloser, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return zr.IOReadCloser(), nil
}

// LZ4 compresses snapshot frames with lz4. Faster than zstd with a lower
// compression ratio; useful when snapshot IO is CPU-bound.
type LZ4 struct{}

// Name returns "lz4".
func (LZ4) Name() string { return "lz4" }

// NewWriter returns an lz4 stream writer.
func (LZ4) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(w), nil
}

// NewReader returns an lz4 stream reader.
func (LZ4) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}
