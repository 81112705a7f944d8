// Package errs names the error kinds of §7: ordinary input problems that
// handlers log and fall back from, and the narrow set of conditions that
// warrant a hard failure.
package errs

import "fmt"

// Kind discriminates the error taxonomy of §7. These are kinds, not a
// type hierarchy: callers compare an error against the values below with
// errs.Is.
type Kind int

const (
	// MalformedInput: unexpected token shape or attribute structure.
	// Handlers log a warning and fall back to the generic handler; no
	// output is lost.
	MalformedInput Kind = iota
	// InvariantViolation: an internal contract was broken (e.g. the
	// expander lost a hoisted meta's provenance). Callers treat this as a
	// bug; it is not recovered from inside ordinary handler code.
	InvariantViolation
	// ExpansionLimit: template expansion returned no value, or exceeded
	// the retry depth bound (§9 "Token-stream re-entry").
	ExpansionLimit
	// UnsupportedConstruct: a serializer handler encountered a shape it
	// cannot model.
	UnsupportedConstruct
	// ValidationError: a page bundle failed validation.
	ValidationError
)

func (k Kind) String() string {
	switch k {
	case MalformedInput:
		return "malformed-input"
	case InvariantViolation:
		return "invariant-violation"
	case ExpansionLimit:
		return "expansion-limit"
	case UnsupportedConstruct:
		return "unsupported-construct"
	case ValidationError:
		return "validation-error"
	default:
		return "unknown"
	}
}

// Error is a kinded error carrying a human-readable message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// New builds a kinded error.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Is reports whether err is an *Error of the given kind, e.g.
// errs.Is(err, errs.ValidationError). Wrapped errors are not unwrapped.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
