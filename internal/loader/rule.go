// Package loader applies path-matched source transforms to module sources
// before dependencies are extracted.
package loader

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// TransformFunc is a pure source-to-source function.
type TransformFunc func(source string) (string, error)

// Transform is a named TransformFunc. The name identifies the transform in
// errors and in cache keys; anonymous transforms disable caching.
type Transform struct {
	Name string
	Fn   TransformFunc
}

// Func wraps a plain string->string function as an anonymous Transform.
func Func(fn func(string) string) Transform {
	return Transform{Fn: func(s string) (string, error) { return fn(s), nil }}
}

// Rule selects transforms for module paths.
type Rule struct {
	// Test is matched against the absolute module path.
	Test *regexp.Regexp
	// Include holds doublestar globs matched against the root-relative path
	// (no "./" prefix). At least one must match when set.
	Include []string
	// Use is applied last-to-first.
	Use []Transform
}

// Validate checks Include patterns and transform functions.
func (r Rule) Validate() error {
	for _, pattern := range r.Include {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid include pattern %q", pattern)
		}
	}
	for i, t := range r.Use {
		if t.Fn == nil {
			return fmt.Errorf("transform %d (%s) has no function", i, displayName(t, i))
		}
	}
	return nil
}

// Matches reports whether the rule applies. A rule without Test and Include
// matches every module.
func (r Rule) Matches(absPath, relPath string) bool {
	if r.Test != nil && !r.Test.MatchString(absPath) {
		return false
	}
	if len(r.Include) == 0 {
		return true
	}
	relPath = strings.TrimPrefix(relPath, "./")
	for _, pattern := range r.Include {
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true
		}
	}
	return false
}

func displayName(t Transform, idx int) string {
	if t.Name != "" {
		return t.Name
	}
	return fmt.Sprintf("#%d", idx)
}
