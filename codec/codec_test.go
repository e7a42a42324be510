package codec

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecs_Stream(t *testing.T) {
	payload := []byte(strings.Repeat("<http://example.org/a> <http://example.org/b>\n", 2000))

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, err := ByName(name)
			require.NoError(t, err)
			assert.Equal(t, name, c.Name())

			var buf bytes.Buffer
			w, err := c.NewWriter(&buf)
			require.NoError(t, err)

			// Write in uneven chunks.
			for off := 0; off < len(payload); off += 777 {
				end := min(off+777, len(payload))
				_, err := w.Write(payload[off:end])
				require.NoError(t, err)
			}
			require.NoError(t, w.Close())

			if name != "none" {
				assert.Less(t, buf.Len(), len(payload))
			}

			r, err := c.NewReader(&buf)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			assert.Equal(t, payload, got)
		})
	}
}

func TestByName(t *testing.T) {
	c, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, "none", c.Name())

	_, err = ByName("gzip")
	assert.Error(t, err)
}

func TestZSTD_ReadAfterClose(t *testing.T) {
	var buf bytes.Buffer
	w, err := ZSTD{Level: 3}.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write([]byte("0 1\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := ZSTD{}.NewReader(&buf)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	_, err = r.Read(make([]byte, 4))
	assert.ErrorIs(t, err, errClosed)
}
