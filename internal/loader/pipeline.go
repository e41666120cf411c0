package loader

import (
	"fmt"
	"strings"

	"bale/internal/project"
)

// Step is one transform selected for a path, with its origin.
type Step struct {
	Rule      int
	Index     int // position in the combined sequence
	Transform Transform
}

// Pipeline holds the ordered rule table.
type Pipeline struct {
	root  string
	rules []Rule
}

// NewPipeline validates rules and binds them to the project root used for
// Include globs.
func NewPipeline(root string, rules []Rule) (*Pipeline, error) {
	for i, rule := range rules {
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("module rule %d: %w", i, err)
		}
	}
	return &Pipeline{root: root, rules: append([]Rule(nil), rules...)}, nil
}

// Steps concatenates the Use lists of every matching rule, in rule order.
func (p *Pipeline) Steps(path string) []Step {
	if p == nil {
		return nil
	}
	rel := project.ModuleID(p.root, path)
	var steps []Step
	for ri, rule := range p.rules {
		if !rule.Matches(path, rel) {
			continue
		}
		for _, t := range rule.Use {
			steps = append(steps, Step{Rule: ri, Index: len(steps), Transform: t})
		}
	}
	return steps
}

// Signature names the transform chain for path, or "" when any transform is
// anonymous. Equal signatures over equal sources give equal output.
func (p *Pipeline) Signature(path string) string {
	steps := p.Steps(path)
	names := make([]string, 0, len(steps))
	for _, s := range steps {
		if s.Transform.Name == "" {
			return ""
		}
		names = append(names, s.Transform.Name)
	}
	return strings.Join(names, "!")
}

// Apply runs the matching transforms right-to-left: the last configured
// transform sees the original source, the first one produces the result.
func (p *Pipeline) Apply(path, source string) (string, error) {
	steps := p.Steps(path)
	for i := len(steps) - 1; i >= 0; i-- {
		out, err := runStep(steps[i], source)
		if err != nil {
			return "", &LoaderError{
				Path:           path,
				Rule:           steps[i].Rule,
				TransformIndex: steps[i].Index,
				Transform:      displayName(steps[i].Transform, steps[i].Index),
				Cause:          err,
			}
		}
		source = out
	}
	return source, nil
}

func runStep(step Step, source string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return step.Transform.Fn(source)
}
