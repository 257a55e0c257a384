package bitq

import (
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/hupe1980/bitq/codec"
	"github.com/hupe1980/bitq/distance"
	"github.com/hupe1980/bitq/quantization"
	"github.com/hupe1980/bitq/vectorstore"
)

var snapshotMagic = [8]byte{'B', 'I', 'T', 'Q', 'S', 'N', 'A', 'P'}

const snapshotVersion = 1

// snapshotPayload is the gob body of a snapshot. The codec name travels
// uncompressed in the header so the reader can pick the decompressor.
type snapshotPayload struct {
	Similarity distance.Similarity
	QueryBits  int
	Lambda     float32
	Iters      int
	State      *vectorstore.State
}

// SaveSnapshot writes the built index to w: a plain header naming the
// compression codec, then the compressed gob-encoded corpus state.
func (idx *Index) SaveSnapshot(w io.Writer) error {
	if idx.store == nil {
		return ErrNotBuilt
	}

	if _, err := w.Write(snapshotMagic[:]); err != nil {
		return fmt.Errorf("write snapshot magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(snapshotVersion)); err != nil {
		return fmt.Errorf("write snapshot version: %w", err)
	}

	name := []byte(idx.opts.codec.Name())
	if err := binary.Write(w, binary.LittleEndian, uint8(len(name))); err != nil {
		return fmt.Errorf("write codec name length: %w", err)
	}
	if _, err := w.Write(name); err != nil {
		return fmt.Errorf("write codec name: %w", err)
	}

	cw, err := idx.opts.codec.NewWriter(w)
	if err != nil {
		return fmt.Errorf("open %s writer: %w", idx.opts.codec.Name(), err)
	}

	payload := snapshotPayload{
		Similarity: idx.opts.similarity,
		QueryBits:  idx.opts.queryBits,
		Lambda:     idx.opts.lambda,
		Iters:      idx.opts.iters,
		State:      idx.store.State(),
	}
	if err := gob.NewEncoder(cw).Encode(&payload); err != nil {
		cw.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("flush %s writer: %w", idx.opts.codec.Name(), err)
	}
	return nil
}

// LoadSnapshot reconstructs an index from a snapshot written by
// SaveSnapshot. The similarity function, query width, and quantizer
// parameters come from the snapshot; optFns may still tune runtime
// behavior such as parallelism, caching, logging, and metrics.
func LoadSnapshot(r io.Reader, optFns ...Option) (*Index, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("read snapshot magic: %w", err)
	}
	if magic != snapshotMagic {
		return nil, fmt.Errorf("not a snapshot: bad magic %q", magic[:])
	}

	var version uint8
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("read snapshot version: %w", err)
	}
	if version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version: %d", version)
	}

	var nameLen uint8
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return nil, fmt.Errorf("read codec name length: %w", err)
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, fmt.Errorf("read codec name: %w", err)
	}
	c, ok := codec.ByName(string(name))
	if !ok {
		return nil, fmt.Errorf("unknown snapshot codec: %q", name)
	}

	cr, err := c.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open %s reader: %w", c.Name(), err)
	}
	defer cr.Close()

	var payload snapshotPayload
	if err := gob.NewDecoder(cr).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	if !quantization.SupportedBits(payload.QueryBits) {
		return nil, &ErrUnsupportedBits{Bits: payload.QueryBits, Supported: []int{1, 4}}
	}

	// Caller options go first so the snapshot's quantization contract
	// always wins over runtime overrides.
	idx, err := New(append(optFns,
		WithSimilarity(payload.Similarity),
		WithQueryBits(payload.QueryBits),
		WithLambda(payload.Lambda),
		WithIters(payload.Iters),
		WithCodec(c),
	)...)
	if err != nil {
		return nil, err
	}

	store, err := vectorstore.FromState(payload.State, idx.opts.unpackedCacheSize)
	if err != nil {
		return nil, err
	}
	idx.store = store
	return idx, nil
}
