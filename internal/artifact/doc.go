// Package artifact names and opens the files a build reads and writes.
//
// Every artifact name derives from the run's base name by suffixing, see
// Names. Store layers the run's codec and IO limits over a blob store and
// hands out framed sinks and sources for the intermediate stages.
package artifact
