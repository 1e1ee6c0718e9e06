package sieve

import "fmt"

// SyntaxError reports a malformed filter expression: unbalanced parentheses,
// an empty atom, a dangling operator, or a bad comma split.
type SyntaxError struct {
	Message string
	Token   string // the offending token, if any
}

func (e SyntaxError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("syntax error at %q: %s", e.Token, e.Message)
	}
	return "syntax error: " + e.Message
}

// UnknownFieldError reports an atom referencing a field that is not in the
// registry. It is always a compile-time error; no partial predicate is
// returned.
type UnknownFieldError struct {
	Name string
}

func (e UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Name)
}

// ValueError reports a value that fails its field kind's grammar: a bad glob
// or regex, an unparseable number, a time delta with units out of order, or
// an unparseable date.
type ValueError struct {
	Field  string
	Value  string
	Reason string
	Cause  error
}

func (e ValueError) Error() string {
	msg := fmt.Sprintf("invalid value %q for field %q: %s", e.Value, e.Field, e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e ValueError) Unwrap() error { return e.Cause }

// RenderError reports a template atom whose render call failed during
// evaluation. By default the engine logs it and treats the atom as a
// non-match for that item; with strict templates enabled it aborts the pass.
type RenderError struct {
	Template string
	Cause    error
}

func (e RenderError) Error() string {
	return fmt.Sprintf("rendering template %q: %v", e.Template, e.Cause)
}

func (e RenderError) Unwrap() error { return e.Cause }
