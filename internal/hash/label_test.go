package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestELFHash(t *testing.T) {
	// h = ('a' << 4) + 'b' for short inputs that never reach the high nibble.
	assert.Equal(t, uint64(0), ELFHash(nil))
	assert.Equal(t, uint64('a'), ELFHash([]byte("a")))
	assert.Equal(t, uint64('a')<<4+uint64('b'), ELFHash([]byte("ab")))

	// Stops at NUL like a C string.
	assert.Equal(t, ELFHash([]byte("ab")), ELFHash([]byte("ab\x00cd")))

	long := []byte("<http://example.org/resource/a-very-long-label-name>")
	h := ELFHash(long)
	assert.LessOrEqual(t, h, uint64(0x7FFFFFFF))
	assert.Equal(t, h, ELFHash(long))
}

func TestByName(t *testing.T) {
	label := []byte("<http://example.org/a>")

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			fn, err := ByName(name)
			require.NoError(t, err)
			assert.Equal(t, fn(label), fn(label))
		})
	}

	fn, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, ELFHash(label), fn(label))

	_, err = ByName("sha1")
	assert.Error(t, err)

	assert.Equal(t, []string{"crc32c", "elf", "murmur3", "xxhash"}, Names())
}

func TestCRC32C(t *testing.T) {
	// Standard check value for "123456789".
	assert.Equal(t, uint32(0xE3069283), CRC32C([]byte("123456789")))

	h := NewCRC32C()
	_, _ = h.Write([]byte("12345"))
	_, _ = h.Write([]byte("6789"))
	assert.Equal(t, uint32(0xE3069283), h.Sum32())
}
