// Package adjlist reads, writes and verifies the adjacency-list text format
// produced by a build.
//
// The first line holds the vertex count N. Every following line is
//
//	vertexID degree neighbor_1 ... neighbor_degree
//
// for each vertex with at least one neighbor, in ascending vertex order,
// with neighbors strictly ascending. Vertices without neighbors are omitted.
package adjlist
