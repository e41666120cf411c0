// Package jsast wraps the JavaScript syntax-tree collaborator: parsing,
// node-kind traversal, in-place specifier rewriting and printing.
package jsast

import (
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

// Tree is a parsed module.
type Tree struct {
	ast *js.AST
}

// Parse builds a Tree from source. path is only used for error reporting.
func Parse(path, source string) (*Tree, error) {
	ast, err := js.Parse(parse.NewInputString(source), js.Options{})
	if err != nil {
		return nil, &ParseError{Path: path, Cause: err}
	}
	return &Tree{ast: ast}, nil
}

// Print serializes the tree, including rewritten specifiers, back to source.
func (t *Tree) Print() string {
	return t.ast.JSString()
}

// Inspect traverses the tree depth-first, calling fn for
// each node. Children are skipped when fn returns false.
func (t *Tree) Inspect(fn func(js.INode) bool) {
	js.Walk(inspector(fn), t.ast)
}

type inspector func(js.INode) bool

func (f inspector) Enter(n js.INode) js.IVisitor {
	if !f(n) {
		return nil
	}
	return f
}

func (f inspector) Exit(js.INode) {}
