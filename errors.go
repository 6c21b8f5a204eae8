package bamboo

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of error categories the engine can
// produce, per spec §7 (cross-checked against
// original_source/src/bamboo.h's bamboo_error_t enum, excluding its
// three negative sentinel values — those are internal reader signals,
// never surfaced as errors; see ErrEndOfInput and the unexported
// errParenEnd/errQuoteEnd in reader.go).
type ErrorKind uint8

const (
	ErrUnknown ErrorKind = iota
	ErrSyntax
	ErrUnboundSymbol
	ErrWrongArity
	ErrWrongType
	ErrNumericOverflow
	ErrNumericUnderflow
	ErrAllocationFailure
)

func (k ErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "syntax"
	case ErrUnboundSymbol:
		return "unbound-symbol"
	case ErrWrongArity:
		return "wrong-arity"
	case ErrWrongType:
		return "wrong-type"
	case ErrNumericOverflow:
		return "numeric-overflow"
	case ErrNumericUnderflow:
		return "numeric-underflow"
	case ErrAllocationFailure:
		return "allocation-failure"
	default:
		return "unknown"
	}
}

// Span locates an error in source text, when one is available. It is an
// additive diagnostic: spec §6's contract only requires the detail
// string error_detail() exposes, but the teacher's ParsingError carries
// a position too (base_parser.go), so Bamboo does the same.
type Span struct {
	Line, Column int
	Offset       int
}

// Error is the single error type the engine returns. It implements the
// standard error interface and supports errors.As for callers that want
// to branch on Kind.
type Error struct {
	Kind     ErrorKind
	Operator string
	Span     *Span
	cause    error
}

func (e *Error) Error() string {
	if e.Operator == "" {
		return fmt.Sprintf("bamboo: %s error", e.Kind)
	}
	return fmt.Sprintf("bamboo: %s error: %s", e.Kind, e.Operator)
}

func (e *Error) Unwrap() error { return e.cause }

// ErrEndOfInput is the sentinel (*Engine.Reader).ReadValue returns,
// never wrapped in an *Error, when there is nothing left to read: end of
// buffer, or a whitespace-only remainder (the reader has no comment
// syntax). Spec §6 treats this as a
// "special-condition code distinguishable from OK and from errors," not
// a member of the closed error-kind set, so it is modeled the way the
// standard library models io.EOF rather than as an ErrorKind.
var ErrEndOfInput = errors.New("bamboo: end of input")

func arityError(op string) error {
	return &Error{Kind: ErrWrongArity, Operator: op}
}

func typeError(op string) error {
	return &Error{Kind: ErrWrongType, Operator: op}
}

func unboundError(name string) error {
	return &Error{Kind: ErrUnboundSymbol, Operator: name}
}

func syntaxErrorAt(msg string, span Span) error {
	s := span
	return &Error{Kind: ErrSyntax, Operator: msg, Span: &s}
}

func overflowError(op string) error {
	return &Error{Kind: ErrNumericOverflow, Operator: op}
}

func underflowError(op string) error {
	return &Error{Kind: ErrNumericUnderflow, Operator: op}
}
