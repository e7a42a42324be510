package artifact

import "strconv"

// Names derives every artifact name of a run from its base name.
type Names struct {
	Base string
}

// Raw is the raw input dump.
func (n Names) Raw() string { return n.Base }

// Label is the occurrence shard of partition i.
func (n Names) Label(i int) string { return n.indexed("_label_", i) }

// Dict is the distinct-label dictionary of partition i, in ID order.
func (n Names) Dict(i int) string { return n.indexed("_dict_", i) }

// Tmp is staging buffer i (0 or 1).
func (n Names) Tmp(i int) string { return n.indexed("_tmp_", i) }

// Split is the edge file of vertex bucket b.
func (n Names) Split(b int) string { return n.indexed("_split_", b) }

// Part is the merged adjacency part of vertex bucket b.
func (n Names) Part(b int) string { return n.indexed("_part_", b) }

// Adj is the final adjacency list.
func (n Names) Adj() string { return n.Base + "_adj" }

// Labels is the optional vertex label map.
func (n Names) Labels() string { return n.Base + "_labels" }

func (n Names) indexed(suffix string, i int) string {
	return n.Base + suffix + strconv.Itoa(i)
}
