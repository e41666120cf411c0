package jsast

import (
	"strings"

	"github.com/tdewolff/parse/v2/js"
)

// DefaultCallee is the dependency-declaration identifier.
const DefaultCallee = "require"

// Dependency is one `require("...")` site.
type Dependency struct {
	Specifier string
	node      *js.LiteralExpr
}

// Rewrite replaces the string literal in the tree with id.
func (d *Dependency) Rewrite(id string) {
	d.node.Data = []byte(Quote(id))
}

// Extract parses source and returns every dependency declaration in the
// parser's depth-first traversal order, which is stable for a given source. A declaration whose argument is not a single
// string literal fails with UnsupportedDependencyError.
func Extract(path, source, callee string) (*Tree, []*Dependency, error) {
	if callee == "" {
		callee = DefaultCallee
	}
	tree, err := Parse(path, source)
	if err != nil {
		return nil, nil, err
	}

	var (
		deps     []*Dependency
		firstErr error
	)
	tree.Inspect(func(n js.INode) bool {
		if firstErr != nil {
			return false
		}
		call, ok := n.(*js.CallExpr)
		if !ok || !isIdent(call.X, callee) {
			return true
		}
		dep, err := dependencyOf(path, callee, call)
		if err != nil {
			firstErr = err
			return false
		}
		deps = append(deps, dep)
		return true
	})
	if firstErr != nil {
		return nil, nil, firstErr
	}
	return tree, deps, nil
}

func isIdent(expr js.IExpr, name string) bool {
	v, ok := expr.(*js.Var)
	return ok && string(v.Data) == name
}

func dependencyOf(path, callee string, call *js.CallExpr) (*Dependency, error) {
	if len(call.Args.List) != 1 || call.Args.List[0].Rest {
		return nil, &UnsupportedDependencyError{
			Path:   path,
			Callee: callee,
			Expr:   render(call),
			Reason: "expected exactly one argument",
		}
	}
	lit, ok := call.Args.List[0].Value.(*js.LiteralExpr)
	if !ok || lit.TokenType != js.StringToken {
		return nil, &UnsupportedDependencyError{
			Path:   path,
			Callee: callee,
			Expr:   render(call),
			Reason: "specifier is not a string literal",
		}
	}
	spec, err := Unquote(string(lit.Data))
	if err != nil {
		return nil, &UnsupportedDependencyError{
			Path:   path,
			Callee: callee,
			Expr:   render(call),
			Reason: err.Error(),
		}
	}
	return &Dependency{Specifier: spec, node: lit}, nil
}

func render(n js.INode) string {
	var sb strings.Builder
	n.JS(&sb)
	return sb.String()
}
