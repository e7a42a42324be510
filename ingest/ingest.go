// Package ingest defines the boundary between raw input dumps and the
// graph build: an Ingester turns one input grammar into a stream of
// (subject, object) label pairs.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrMalformedRecord is matched by every *ParseError.
var ErrMalformedRecord = errors.New("malformed record")

// ParseError reports an input line that does not decompose into a valid
// record.
type ParseError struct {
	// Line is the 1-based line number.
	Line int64
	// Items is the number of items found before the terminator, or before
	// the place where parsing stopped.
	Items int
	// Reason describes the defect.
	Reason string
}

func (e *ParseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("malformed record at line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed record at line %d: wrong number of items (%d)", e.Line, e.Items)
}

func (e *ParseError) Unwrap() error { return ErrMalformedRecord }

// Pair is one edge of the raw input. Subject and Object are only valid for
// the duration of the emit callback.
type Pair struct {
	Line    int64
	Subject []byte
	Object  []byte
}

// EmitFunc receives pairs in input order. Returning an error stops ingestion
// and that error is returned from Ingest.
type EmitFunc func(Pair) error

// Ingester parses a raw dump.
type Ingester interface {
	// Ingest reads r to the end and emits one pair per valid record. The
	// first malformed record aborts with a *ParseError.
	Ingest(ctx context.Context, r io.Reader, emit EmitFunc) error
}

// IngesterFunc adapts a function to the Ingester interface.
type IngesterFunc func(ctx context.Context, r io.Reader, emit EmitFunc) error

// Ingest calls f.
func (f IngesterFunc) Ingest(ctx context.Context, r io.Reader, emit EmitFunc) error {
	return f(ctx, r, emit)
}
