package nquads

import (
	"github.com/hupe1980/graphbuild/ingest"
)

const (
	maxItems   = 4
	opaqueNode = "*"
)

// lexer tokenizes one line at a time. Labels are appended to a buffer that
// is reused across lines.
type lexer struct {
	line []byte
	pos  int
	buf  []byte
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.line) && isSpace(lx.line[lx.pos]) {
		lx.pos++
	}
}

func (lx *lexer) word() {
	for lx.pos < len(lx.line) && !isSpace(lx.line[lx.pos]) {
		lx.buf = append(lx.buf, lx.line[lx.pos])
		lx.pos++
	}
}

// record parses a whole line into its subject and object labels.
func (lx *lexer) record(line []byte) (subject, object []byte, ok bool, perr *ingest.ParseError) {
	lx.line, lx.pos, lx.buf = line, 0, lx.buf[:0]

	lx.skipSpace()
	if lx.pos == len(lx.line) || lx.line[lx.pos] == '#' {
		return nil, nil, false, nil
	}

	var spans [maxItems][2]int
	items := 0
	for {
		lx.skipSpace()
		if lx.pos == len(lx.line) {
			return nil, nil, false, &ingest.ParseError{Items: items, Reason: "missing terminator"}
		}
		if lx.line[lx.pos] == '.' {
			lx.pos++
			break
		}
		if items == maxItems {
			return nil, nil, false, &ingest.ParseError{Items: items + 1}
		}
		start := len(lx.buf)
		if reason := lx.node(); reason != "" {
			return nil, nil, false, &ingest.ParseError{Items: items, Reason: reason}
		}
		spans[items] = [2]int{start, len(lx.buf)}
		items++
	}
	if items < 3 {
		return nil, nil, false, &ingest.ParseError{Items: items}
	}

	subject = lx.buf[spans[0][0]:spans[0][1]]
	object = lx.buf[spans[2][0]:spans[2][1]]
	return subject, object, true, nil
}

// node appends the next label to buf. It returns a non-empty reason when
// the node is malformed.
func (lx *lexer) node() string {
	start := len(lx.buf)
	switch lx.line[lx.pos] {
	case '<':
		if !lx.iri() {
			return "unterminated IRI"
		}
	case '_':
		lx.pos += min(2, len(lx.line)-lx.pos)
		lx.buf = append(lx.buf, '_', ':')
		lx.word()
	case '"':
		if !lx.literal() {
			return "unterminated literal"
		}
	default:
		for lx.pos < len(lx.line) && !isSpace(lx.line[lx.pos]) {
			lx.pos++
		}
		lx.buf = append(lx.buf, opaqueNode...)
	}
	if len(lx.buf) == start {
		lx.buf = append(lx.buf, opaqueNode...)
	}
	return ""
}

// iri copies <...> dropping embedded whitespace.
func (lx *lexer) iri() bool {
	lx.pos++
	lx.buf = append(lx.buf, '<')
	for lx.pos < len(lx.line) {
		c := lx.line[lx.pos]
		lx.pos++
		if c == '>' {
			lx.buf = append(lx.buf, '>')
			return true
		}
		if !isSpace(c) {
			lx.buf = append(lx.buf, c)
		}
	}
	return false
}

func (lx *lexer) literal() bool {
	lx.pos++
	lx.buf = append(lx.buf, '"')
	closed := false
	for lx.pos < len(lx.line) {
		c := lx.line[lx.pos]
		lx.pos++
		if c == '"' {
			closed = true
			break
		}
		switch {
		case isSpace(c):
			lx.buf = append(lx.buf, '_')
		case c == '\\':
			if lx.pos == len(lx.line) {
				return false
			}
			esc := lx.line[lx.pos]
			lx.pos++
			switch esc {
			case 'u':
				lx.pos = min(lx.pos+4, len(lx.line))
			case 'U':
				lx.pos = min(lx.pos+8, len(lx.line))
			default:
				lx.buf = append(lx.buf, esc)
			}
		default:
			lx.buf = append(lx.buf, c)
		}
	}
	if !closed {
		return false
	}
	lx.buf = append(lx.buf, '"')

	if lx.pos < len(lx.line) {
		switch lx.line[lx.pos] {
		case '@':
			lx.word()
		case '^':
			for i := 0; i < 2 && lx.pos < len(lx.line) && lx.line[lx.pos] == '^'; i++ {
				lx.buf = append(lx.buf, '^')
				lx.pos++
			}
			if lx.pos < len(lx.line) && lx.line[lx.pos] == '<' {
				return lx.iri()
			}
		}
	}
	return true
}
