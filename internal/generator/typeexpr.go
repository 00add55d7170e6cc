package generator

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"sort"
	"strings"

	"github.com/toyz/mediator/internal/models"
)

// renderType prints a type expression lifted from a handler's file with its
// package qualifiers rewritten to the names allocated in im. The source AST
// is never modified: the expression is printed and parsed again to get a
// private copy that can be renamed.
func renderType(ref models.TypeRef, im *importManager) (string, error) {
	if ref.Expr == nil {
		return "", fmt.Errorf("missing type expression")
	}
	if len(ref.Unresolved) > 0 {
		return "", fmt.Errorf("no import found for package qualifier %s", strings.Join(ref.Unresolved, ", "))
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, token.NewFileSet(), ref.Expr); err != nil {
		return "", fmt.Errorf("failed to print type expression: %w", err)
	}
	if len(ref.Imports) == 0 {
		return buf.String(), nil
	}

	expr, err := parser.ParseExpr(buf.String())
	if err != nil {
		return "", fmt.Errorf("failed to copy type expression %q: %w", buf.String(), err)
	}

	qualifiers := make([]string, 0, len(ref.Imports))
	for q := range ref.Imports {
		qualifiers = append(qualifiers, q)
	}
	sort.Strings(qualifiers)

	renames := make(map[string]string, len(qualifiers))
	for _, q := range qualifiers {
		renames[q] = im.add(q, ref.Imports[q])
	}

	ast.Inspect(expr, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if ident, ok := sel.X.(*ast.Ident); ok {
			if alias, ok := renames[ident.Name]; ok && alias != "" {
				ident.Name = alias
			}
		}
		return false
	})

	buf.Reset()
	if err := format.Node(&buf, token.NewFileSet(), expr); err != nil {
		return "", fmt.Errorf("failed to print type expression: %w", err)
	}
	return buf.String(), nil
}
