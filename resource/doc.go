// Package resource bounds what a build may use at once: reserved memory for
// in-memory dictionaries and neighbor lists, concurrently processed
// partitions, and artifact IO throughput.
package resource
