// Package correrrors defines the error taxonomy shared by the schema loader,
// formula parser, and tree evaluator.
//
// The pivotal type is [Error]. Construction-time failures (loading,
// validation, formula parsing) and evaluation-time failures (out-of-range
// lookups, arity mismatches) both implement it, distinguished by [Kind].
package correrrors

import (
	"fmt"
	"strings"
)

// Kind classifies an Error for programmatic dispatch, independent of its
// human-readable message.
type Kind int

const (
	// SchemaError means the JSON did not conform to the structural schema:
	// wrong type, missing field, or an unrecognized nodetype discriminator.
	SchemaError Kind = iota + 1

	// ReferenceError means a node names an input or formula index that does
	// not exist.
	ReferenceError

	// InvariantError means a structural invariant (monotonicity, length,
	// uniqueness, homogeneity) was violated.
	InvariantError

	// FormulaParseError means a TFormula expression was rejected by the
	// lexer or parser.
	FormulaParseError

	// WrongArity means an evaluate call supplied the wrong number of
	// arguments.
	WrongArity

	// WrongType means an evaluate call supplied an argument of the wrong
	// type.
	WrongType

	// OutOfRange means a binning lookup fell outside its edges with
	// flow "error", or a category lookup found no matching key and no
	// default.
	OutOfRange

	// FormulaEvalError means a compiled formula program referenced an
	// undefined parameter index at evaluation time.
	FormulaEvalError

	// ShapeMismatch means batch columns had incompatible lengths.
	ShapeMismatch
)

func (k Kind) String() string {
	switch k {
	case SchemaError:
		return "SCHEMA_ERROR"
	case ReferenceError:
		return "REFERENCE_ERROR"
	case InvariantError:
		return "INVARIANT_ERROR"
	case FormulaParseError:
		return "FORMULA_PARSE_ERROR"
	case WrongArity:
		return "WRONG_ARITY"
	case WrongType:
		return "WRONG_TYPE"
	case OutOfRange:
		return "OUT_OF_RANGE"
	case FormulaEvalError:
		return "FORMULA_EVAL_ERROR"
	case ShapeMismatch:
		return "SHAPE_MISMATCH"
	default:
		return "UNKNOWN_ERROR"
	}
}

// Error is the common interface implemented by every error this module
// produces. The path, when non-empty, pinpoints where in a loaded JSON
// document or argument list the failure occurred.
type Error interface {
	error

	// Kind reports the machine-readable error classification.
	Kind() Kind

	// Path returns the location of the error, expressed as a sequence of
	// JSON-like path segments (e.g. "corrections[3]", "data", "content[1]").
	// It may be empty if the error has no associated location.
	Path() []string

	Unwrap() error
}

type baseError struct {
	kind    Kind
	path    []string
	message string
	wrapped error
}

func (e *baseError) Kind() Kind       { return e.kind }
func (e *baseError) Path() []string   { return e.path }
func (e *baseError) Unwrap() error    { return e.wrapped }
func (e *baseError) Error() string {
	if len(e.path) == 0 {
		return fmt.Sprintf("%s: %s", e.kind, e.message)
	}
	return fmt.Sprintf("%s: $.%s: %s", e.kind, strings.Join(e.path, "."), e.message)
}

// New creates an Error of the given kind with no path information.
func New(kind Kind, format string, args ...interface{}) Error {
	return &baseError{kind: kind, message: fmt.Sprintf(format, args...)}
}

// Newf is an alias for New, kept for call sites that read more naturally
// with an explicit "f" suffix next to a format string.
func Newf(kind Kind, format string, args ...interface{}) Error {
	return New(kind, format, args...)
}

// WithPath returns a copy of err (if it is an *Error produced by this
// package) with path prepended to its existing path. Non-matching errors
// are wrapped as-is, tagged with kind.
func WithPath(err error, path string, kind Kind) Error {
	if be, ok := err.(*baseError); ok {
		np := make([]string, 0, len(be.path)+1)
		np = append(np, path)
		np = append(np, be.path...)
		return &baseError{kind: be.kind, path: np, message: be.message, wrapped: be.wrapped}
	}
	return &baseError{kind: kind, path: []string{path}, message: err.Error(), wrapped: err}
}

// Wrap attaches kind and a message to an arbitrary error without path
// information.
func Wrap(err error, kind Kind, format string, args ...interface{}) Error {
	return &baseError{kind: kind, message: fmt.Sprintf(format, args...), wrapped: err}
}

// As reports whether err is (or wraps) a correrrors.Error, and if so sets
// *target and returns true. It mirrors the standard library's errors.As
// without requiring callers to import both packages for this common case.
func As(err error, target *Error) bool {
	for err != nil {
		if e, ok := err.(Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
