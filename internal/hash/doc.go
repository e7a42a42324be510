// Package hash provides the label hash functions used to route labels to
// dictionary partitions, and CRC32C for artifact integrity checks.
//
// # Label hashes
//
// A label hash only has to be deterministic within a run: collisions merely
// place two labels in the same partition. The available functions are:
//
//   - elf: PJW/ELF hash masked to 31 bits (default)
//   - xxhash: xxHash64
//   - murmur3: MurmurHash3 x64 (low 64 bits)
//   - crc32c: CRC32-Castagnoli
//
// Changing the hash changes the vertex ID assignment, never the graph shape.
//
// # CRC32-Castagnoli (CRC32C)
//
//	checksum := hash.CRC32C(data)
package hash
