package countcmp

import (
	"errors"
	"fmt"
)

// Sentinel errors for argument validation. Database failures are never
// wrapped in these; they are returned exactly as the driver reported them.
var (
	// ErrInvalidArgument is returned when a row-count threshold is not an
	// integer. Errors carrying it are *InvalidArgumentError values.
	ErrInvalidArgument = errors.New("countcmp: invalid argument")

	// ErrUnknownOp is returned by ParseOp for an unrecognized comparison name.
	ErrUnknownOp = errors.New("countcmp: unknown comparison")
)

// InvalidArgumentError reports a threshold that is not an integer.
// It is raised before any query is built or executed.
type InvalidArgumentError struct {
	// Param is the name of the offending parameter.
	Param string
	// Value is the value received, rendered with %#v in the message.
	Value any
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("`%s` must be an integer, got %#v", e.Param, e.Value)
}

// Is makes errors.Is(err, ErrInvalidArgument) match.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// IsInvalidArgumentErr returns true if err is or wraps ErrInvalidArgument.
func IsInvalidArgumentErr(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsUnknownOpErr returns true if err is or wraps ErrUnknownOp.
func IsUnknownOpErr(err error) bool {
	return errors.Is(err, ErrUnknownOp)
}
