package graphbuild

import (
	"errors"
	"fmt"

	"github.com/hupe1980/graphbuild/ingest"
	"github.com/hupe1980/graphbuild/internal/resolve"
	"github.com/hupe1980/graphbuild/resource"
)

var (
	// ErrInvalidConfig is returned before any work when options are invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMemoryBudget is returned when a single partition dictionary or
	// bucket merge exceeds the memory limit. Raise the partition or bucket
	// count, or the limit.
	ErrMemoryBudget = errors.New("memory budget exceeded")

	// ErrMalformedRecord is matched by errors caused by invalid input lines.
	ErrMalformedRecord = ingest.ErrMalformedRecord

	// ErrUnresolvedLabel indicates a label that no dictionary covered.
	ErrUnresolvedLabel = resolve.ErrUnresolvedLabel
)

// ParseError reports the input line that aborted a build.
type ParseError = ingest.ParseError

// ErrStage wraps an error with the pipeline stage it occurred in.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrStage struct {
	Stage string
	cause error
}

func (e *ErrStage) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.cause)
}

func (e *ErrStage) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Memory budget unification.
	if errors.Is(err, resource.ErrOverBudget) && !errors.Is(err, ErrMemoryBudget) {
		return fmt.Errorf("%w: %w", ErrMemoryBudget, err)
	}

	return err
}
