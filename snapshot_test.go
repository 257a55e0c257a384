package bitq

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/bitq/codec"
	"github.com/hupe1980/bitq/distance"
	"github.com/hupe1980/bitq/testutil"
)

func TestSaveSnapshot_NotBuilt(t *testing.T) {
	idx, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.ErrorIs(t, idx.SaveSnapshot(&buf), ErrNotBuilt)
}

func TestSnapshotRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(101)
	const dim, count = 24, 100
	vectors := rng.Vectors(count, dim, -1, 1)
	query := rng.Vector(dim, -1, 1)

	for _, c := range []codec.Codec{codec.Zstd{}, codec.LZ4{}} {
		t.Run(c.Name(), func(t *testing.T) {
			idx, err := New(WithSimilarity(distance.Euclidean), WithCodec(c))
			require.NoError(t, err)
			require.NoError(t, idx.Build(context.Background(), vectors))

			want, err := idx.Search(context.Background(), query, 10)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, idx.SaveSnapshot(&buf))

			restored, err := LoadSnapshot(&buf)
			require.NoError(t, err)
			assert.Equal(t, idx.Similarity(), restored.Similarity())
			assert.Equal(t, idx.QueryBits(), restored.QueryBits())
			assert.Equal(t, count, restored.Len())
			assert.Equal(t, dim, restored.Dimension())

			got, err := restored.Search(context.Background(), query, 10)
			require.NoError(t, err)
			assert.Equal(t, want, got, "restored index must score identically")
		})
	}
}

func TestSnapshotCarriesQuantizationContract(t *testing.T) {
	rng := testutil.NewRNG(103)
	vectors := rng.Vectors(20, 16, -1, 1)

	idx, err := New(WithSimilarity(distance.MaximumInnerProduct), WithQueryBits(1))
	require.NoError(t, err)
	require.NoError(t, idx.Build(context.Background(), vectors))

	var buf bytes.Buffer
	require.NoError(t, idx.SaveSnapshot(&buf))

	// Runtime options pass through; quantization settings come from the
	// snapshot even when the caller tries to override them.
	restored, err := LoadSnapshot(&buf, WithSimilarity(distance.Cosine), WithQueryBits(4), WithParallelism(2))
	require.NoError(t, err)
	assert.Equal(t, distance.MaximumInnerProduct, restored.Similarity())
	assert.Equal(t, 1, restored.QueryBits())
}

func TestLoadSnapshot_Corrupt(t *testing.T) {
	_, err := LoadSnapshot(bytes.NewReader(nil))
	assert.Error(t, err, "empty input")

	_, err = LoadSnapshot(bytes.NewReader([]byte("UNRELATEDBYTES")))
	assert.Error(t, err, "bad magic")

	// Valid magic, unknown version.
	bad := append([]byte{}, snapshotMagic[:]...)
	bad = append(bad, 99)
	_, err = LoadSnapshot(bytes.NewReader(bad))
	assert.Error(t, err, "unknown version")

	// Valid header, truncated body.
	idx := buildIndex(t, [][]float32{{1, 0}, {0, 1}})
	var buf bytes.Buffer
	require.NoError(t, idx.SaveSnapshot(&buf))
	truncated := buf.Bytes()[:buf.Len()/2]
	_, err = LoadSnapshot(bytes.NewReader(truncated))
	assert.Error(t, err, "truncated body")
}
