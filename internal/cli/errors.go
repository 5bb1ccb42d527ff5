// Package cli provides shared configuration and utilities for the countcmp CLI.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/pthm/countcmp"
)

// Exit codes. Success is a plain nil error. ExitGeneral doubles as the
// "comparison is false" status of compare --exit-status.
const (
	ExitGeneral         = 1
	ExitConfig          = 2
	ExitInvalidArgument = 3
	ExitDBConnect       = 4
)

// ExitError wraps an error with an exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitWithError prints the error and exits with the appropriate code.
// An ExitError without a message exits silently.
func ExitWithError(err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Message != "" || exitErr.Err != nil {
			fmt.Fprintln(os.Stderr, "Error:", exitErr.Error())
		}
		os.Exit(exitErr.Code)
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(ExitGeneral)
}

// ConfigError creates an ExitError with ExitConfig code.
func ConfigError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitConfig, Message: msg, Err: err}
}

// InvalidArgumentError creates an ExitError with ExitInvalidArgument code.
func InvalidArgumentError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitInvalidArgument, Message: msg, Err: err}
}

// DBConnectError creates an ExitError with ExitDBConnect code.
func DBConnectError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitDBConnect, Message: msg, Err: err}
}

// GeneralError creates an ExitError with ExitGeneral code.
func GeneralError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitGeneral, Message: msg, Err: err}
}

// Classify maps a comparison failure to an ExitError: invalid thresholds and
// unknown operators exit ExitInvalidArgument, everything else (driver errors)
// ExitGeneral.
func Classify(msg string, err error) *ExitError {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	if countcmp.IsInvalidArgumentErr(err) || countcmp.IsUnknownOpErr(err) {
		return InvalidArgumentError(msg, err)
	}
	return GeneralError(msg, err)
}
