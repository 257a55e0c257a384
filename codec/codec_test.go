package codec

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	c, ok := ByName("zstd")
	require.True(t, ok)
	assert.Equal(t, "zstd", c.Name())

	c, ok = ByName("lz4")
	require.True(t, ok)
	assert.Equal(t, "lz4", c.Name())

	_, ok = ByName("gzip")
	assert.False(t, ok)
}

func TestRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("bitq snapshot payload "), 1000)

	for _, c := range []Codec{Zstd{}, LZ4{}} {
		t.Run(c.Name(), func(t *testing.T) {
			var buf bytes.Buffer

			w, err := c.NewWriter(&buf)
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			// Repetitive input must actually compress.
			assert.Less(t, buf.Len(), len(payload))

			r, err := c.NewReader(&buf)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())

			assert.Equal(t, payload, got)
		})
	}
}

func TestDefault(t *testing.T) {
	assert.Equal(t, "zstd", Default.Name())
}
