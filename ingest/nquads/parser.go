// Package nquads ingests N-Triples and N-Quads dumps such as the Billion
// Triple Challenge crawl.
//
// Each node is normalized to a label:
//
//	<iri>           IRI with embedded whitespace removed
//	_:name          blank node
//	"text"          literal; whitespace becomes '_', \u and \U escapes are
//	                dropped, any other escape keeps the escaped character
//	"text"@lang     language-tagged literal
//	"text"^^<iri>   typed literal
//	*               any other bare token
//
// A record is subject, predicate, object and an optional graph label,
// followed by the '.' terminator. Blank lines and lines whose first
// non-space character is '#' are skipped.
package nquads

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/graphbuild/ingest"
)

// DefaultMaxLineSize bounds a single input line.
const DefaultMaxLineSize = 16 << 20

const checkEvery = 4096

// Parser implements ingest.Ingester for N-Quads.
type Parser struct {
	maxLineSize int
}

var _ ingest.Ingester = (*Parser)(nil)

// Option configures a Parser.
type Option func(*Parser)

// WithMaxLineSize sets the longest accepted input line in bytes.
func WithMaxLineSize(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxLineSize = n
		}
	}
}

// New returns an N-Quads parser.
func New(optFns ...Option) *Parser {
	p := &Parser{maxLineSize: DefaultMaxLineSize}
	for _, fn := range optFns {
		fn(p)
	}
	return p
}

// Ingest parses r line by line and emits (subject, object) for each record.
func (p *Parser) Ingest(ctx context.Context, r io.Reader, emit ingest.EmitFunc) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, min(64*1024, p.maxLineSize)), p.maxLineSize)

	var (
		lineNo int64
		lx     lexer
	)
	for sc.Scan() {
		lineNo++
		if lineNo%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		subject, object, ok, err := lx.record(sc.Bytes())
		if err != nil {
			err.Line = lineNo
			return err
		}
		if !ok {
			continue
		}
		if err := emit(ingest.Pair{Line: lineNo, Subject: subject, Object: object}); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return &ingest.ParseError{Line: lineNo + 1, Reason: fmt.Sprintf("line exceeds %d bytes", p.maxLineSize)}
		}
		return err
	}
	return nil
}

// ParseLine normalizes a single line. ok is false for blank and comment
// lines. The returned labels are freshly allocated.
func ParseLine(line []byte) (subject, object []byte, ok bool, err error) {
	var lx lexer
	s, o, ok, perr := lx.record(line)
	if perr != nil {
		return nil, nil, false, perr
	}
	if !ok {
		return nil, nil, false, nil
	}
	return append([]byte(nil), s...), append([]byte(nil), o...), true, nil
}
