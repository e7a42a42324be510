// Package staging provides the alternating double buffer used by multi-pass
// rewrites of the edge stream.
package staging

import "fmt"

// Alternator routes pass i's output to pass i+1's input over two buffers.
// Pass 0 reads buffer 0; every pass writes the buffer it did not read.
type Alternator struct {
	passes  int
	buffers [2]string
}

// New returns an Alternator for the given number of passes over the two
// named buffers.
func New(passes int, buf0, buf1 string) (Alternator, error) {
	if passes < 1 {
		return Alternator{}, fmt.Errorf("staging: pass count must be positive, got %d", passes)
	}
	if buf0 == buf1 {
		return Alternator{}, fmt.Errorf("staging: buffers must differ, both are %q", buf0)
	}
	return Alternator{passes: passes, buffers: [2]string{buf0, buf1}}, nil
}

// Passes returns the number of passes.
func (a Alternator) Passes() int { return a.passes }

// Initial is the buffer read by pass 0.
func (a Alternator) Initial() string { return a.buffers[0] }

// Pass returns the input and output buffer of pass i.
func (a Alternator) Pass(i int) (in, out string) {
	if i < 0 || i >= a.passes {
		panic(fmt.Sprintf("staging: pass %d out of range [0,%d)", i, a.passes))
	}
	return a.buffers[i&1], a.buffers[(i+1)&1]
}

// Final is the buffer written by the last pass.
func (a Alternator) Final() string {
	return a.buffers[a.passes&1]
}

// Spare is the buffer that does not hold the final output.
func (a Alternator) Spare() string {
	return a.buffers[(a.passes+1)&1]
}
