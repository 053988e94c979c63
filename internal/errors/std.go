package errors

import stderrors "errors"

// Is, As and Unwrap re-export the standard library helpers so callers that
// import this package under the name errors keep a single import.

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return stderrors.As(err, target) }

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error { return stderrors.Unwrap(err) }
