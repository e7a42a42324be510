// Package recordio implements the binary framing of graphbuild's
// intermediate artifacts: label shards, dictionaries, staging buffers and
// bucket files. The format is private to a run and carries no header.
package recordio
