package ingest

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseError(t *testing.T) {
	var err error = &ParseError{Line: 7, Items: 2}

	assert.ErrorIs(t, err, ErrMalformedRecord)
	assert.Contains(t, err.Error(), "line 7")

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Items)

	err = &ParseError{Line: 3, Reason: "unterminated IRI"}
	assert.Equal(t, "malformed record at line 3: unterminated IRI", err.Error())
}

func TestIngesterFunc(t *testing.T) {
	var ing Ingester = IngesterFunc(func(_ context.Context, r io.Reader, emit EmitFunc) error {
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		fields := strings.Fields(string(data))
		return emit(Pair{Line: 1, Subject: []byte(fields[0]), Object: []byte(fields[1])})
	})

	var got []Pair
	err := ing.Ingest(context.Background(), strings.NewReader("a b"), func(p Pair) error {
		got = append(got, p)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", string(got[0].Subject))
	assert.Equal(t, "b", string(got[0].Object))
}
