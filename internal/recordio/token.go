package recordio

import "strconv"

// Kind tags a token in an edge record.
type Kind byte

const (
	// KindLabel marks a token that still carries its raw label bytes.
	KindLabel Kind = 'L'
	// KindVertex marks a token already resolved to a vertex ID.
	KindVertex Kind = 'V'
)

// Token is one endpoint of an edge record: either an unresolved label or a
// resolved vertex ID. The kind is stored explicitly in the frame, so the
// content of a label never decides how it is interpreted.
type Token struct {
	Kind  Kind
	Label []byte
	ID    uint64
}

// LabelToken returns an unresolved token for label.
func LabelToken(label []byte) Token {
	return Token{Kind: KindLabel, Label: label}
}

// VertexToken returns a resolved token for id.
func VertexToken(id uint64) Token {
	return Token{Kind: KindVertex, ID: id}
}

// Resolved reports whether the token carries a vertex ID.
func (t Token) Resolved() bool { return t.Kind == KindVertex }

func (t Token) String() string {
	if t.Resolved() {
		return "#" + strconv.FormatUint(t.ID, 10)
	}
	return strconv.Quote(string(t.Label))
}
