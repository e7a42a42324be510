package cmd

import (
	"errors"

	"github.com/hupe1980/graphbuild"
)

// Exit statuses reported by the binary.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUsage     = 2
	ExitMalformed = 3
)

// usageError marks wrong arity, unknown flags and unusable configuration.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func newUsageError(err error) error {
	if err == nil {
		return nil
	}
	return &usageError{err: err}
}

// ExitCode maps an error returned by the root command to a process exit
// status.
func ExitCode(err error) int {
	var ue *usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &ue), errors.Is(err, graphbuild.ErrInvalidConfig):
		return ExitUsage
	case errors.Is(err, graphbuild.ErrMalformedRecord):
		return ExitMalformed
	default:
		return ExitFailure
	}
}
