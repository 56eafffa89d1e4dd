package sqltmpl

import (
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"go/types"
	"slices"
)

// ErrUnknownIdent is returned by Check for conditions or placeholders that
// refer to something other than a method parameter.
var ErrUnknownIdent = errors.New("sqltmpl: unknown identifier")

// normalizeCond parses a condition as a Go expression, with the literal
// null standing for nil, and returns it in canonical form.
func normalizeCond(cond string) (string, error) {
	expr, err := parseCond(cond)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := format.Node(&buf, token.NewFileSet(), expr); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func parseCond(cond string) (ast.Expr, error) {
	expr, err := parser.ParseExpr(cond)
	if err != nil {
		return nil, err
	}
	ast.Inspect(expr, func(n ast.Node) bool {
		if id, ok := n.(*ast.Ident); ok && id.Name == "null" {
			id.Name = "nil"
		}
		return true
	})
	return expr, nil
}

// Check verifies that every condition and placeholder of t refers only to
// the given parameter names or to predeclared identifiers.
func (t *Template) Check(params ...string) error {
	known := func(name string) bool {
		return slices.Contains(params, name) || types.Universe.Lookup(name) != nil
	}
	for _, b := range t.Blocks {
		if b.Conditional() {
			expr, err := parseCond(b.Cond)
			if err != nil {
				return err
			}
			for _, name := range roots(expr) {
				if !known(name) {
					return fmt.Errorf("%w %q in condition %q", ErrUnknownIdent, name, b.Cond)
				}
			}
		}
		for _, p := range b.Params {
			if !slices.Contains(params, p.Root()) {
				return fmt.Errorf("%w %q in placeholder %s", ErrUnknownIdent, p.Root(), Marker(p.Seq))
			}
		}
	}
	return nil
}

// roots returns the identifiers of expr that are not selected from another
// expression, in order of appearance.
func roots(expr ast.Expr) []string {
	var names []string
	var visit func(n ast.Node) bool
	visit = func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.SelectorExpr:
			ast.Inspect(n.X, visit)
			return false
		case *ast.KeyValueExpr:
			ast.Inspect(n.Value, visit)
			return false
		case *ast.Ident:
			if n.Name != "_" && !slices.Contains(names, n.Name) {
				names = append(names, n.Name)
			}
		}
		return true
	}
	ast.Inspect(expr, visit)
	return names
}
