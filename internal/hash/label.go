package hash

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
)

// Func hashes a label to a 64-bit value. Implementations must be pure.
type Func func(label []byte) uint64

// Names of the built-in label hash functions.
const (
	ELF     = "elf"
	XXHash  = "xxhash"
	Murmur3 = "murmur3"
	CRC32   = "crc32c"
)

// Default is the hash used when none is configured.
const Default = ELF

var funcs = map[string]Func{
	ELF:     ELFHash,
	XXHash:  xxhash.Sum64,
	Murmur3: murmur3.Sum64,
	CRC32:   func(label []byte) uint64 { return uint64(CRC32C(label)) },
}

// ByName returns a built-in label hash function by its stable name.
func ByName(name string) (Func, error) {
	if name == "" {
		name = Default
	}
	fn, ok := funcs[name]
	if !ok {
		return nil, fmt.Errorf("unknown hash %q (available: %v)", name, Names())
	}
	return fn, nil
}

// Names lists the built-in hash names in sorted order.
func Names() []string {
	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ELFHash is the PJW/ELF string hash masked to 31 bits.
// Bytes are treated as signed chars and hashing stops at the first NUL byte,
// so results match C implementations that hash NUL-terminated strings.
func ELFHash(label []byte) uint64 {
	var h uint64
	for _, c := range label {
		if c == 0 {
			break
		}
		h = (h << 4) + uint64(int64(int8(c)))
		g := h & 0xF0000000
		if g != 0 {
			h ^= g >> 24
		}
		h &^= g
	}
	return h & 0x7FFFFFFF
}
