package loader

import "fmt"

// LoaderError reports a transform failure. TransformIndex is the position in
// the combined, configured (left-to-right) transform sequence for Path.
type LoaderError struct {
	Path           string
	Rule           int
	TransformIndex int
	Transform      string
	Cause          error
}

func (e *LoaderError) Error() string {
	return fmt.Sprintf("loader %s (rule %d, transform %d) failed on %s: %v",
		e.Transform, e.Rule, e.TransformIndex, e.Path, e.Cause)
}

func (e *LoaderError) Unwrap() error { return e.Cause }
