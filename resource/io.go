package resource

import (
	"context"
	"io"
)

// RateLimitedWriter wraps an io.Writer with rate limiting.
type RateLimitedWriter struct {
	ctx context.Context
	w   io.Writer
	rc  *Controller
}

// NewRateLimitedWriter creates a new RateLimitedWriter.
// It returns w unchanged when rc imposes no IO limit.
func NewRateLimitedWriter(ctx context.Context, w io.Writer, rc *Controller) io.Writer {
	if rc.IOBurst() == 0 {
		return w
	}
	return &RateLimitedWriter{ctx: ctx, w: w, rc: rc}
}

func (w *RateLimitedWriter) Write(p []byte) (int, error) {
	burst := w.rc.IOBurst()
	total := 0
	for len(p) > 0 {
		chunk := min(len(p), burst)
		if err := w.rc.AcquireIO(w.ctx, chunk); err != nil {
			return total, err
		}
		n, err := w.w.Write(p[:chunk])
		total += n
		if err != nil {
			return total, err
		}
		p = p[chunk:]
	}
	return total, nil
}

// RateLimitedReader wraps an io.Reader with rate limiting.
type RateLimitedReader struct {
	ctx context.Context
	r   io.Reader
	rc  *Controller
}

// NewRateLimitedReader creates a new RateLimitedReader.
// It returns r unchanged when rc imposes no IO limit.
func NewRateLimitedReader(ctx context.Context, r io.Reader, rc *Controller) io.Reader {
	if rc.IOBurst() == 0 {
		return r
	}
	return &RateLimitedReader{ctx: ctx, r: r, rc: rc}
}

// Read waits for the size of the read before issuing it, capped at the burst.
func (r *RateLimitedReader) Read(p []byte) (int, error) {
	if len(p) > r.rc.IOBurst() {
		p = p[:r.rc.IOBurst()]
	}
	if err := r.rc.AcquireIO(r.ctx, len(p)); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
