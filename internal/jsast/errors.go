package jsast

import "fmt"

// ParseError reports source the parser rejected.
type ParseError struct {
	Path  string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// UnsupportedDependencyError reports a dependency declaration with a
// computed specifier, which cannot be resolved ahead of time.
type UnsupportedDependencyError struct {
	Path   string
	Callee string
	Expr   string
	Reason string
}

func (e *UnsupportedDependencyError) Error() string {
	return fmt.Sprintf("%s: unsupported %s call %s: %s", e.Path, e.Callee, e.Expr, e.Reason)
}
