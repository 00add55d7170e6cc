package parser

import (
	"errors"
	"fmt"
	"go/ast"
	"strings"

	"github.com/toyz/mediator/internal/models"
)

// ErrMissingContracts is returned when none of the reference contracts is
// visible to the compilation
var ErrMissingContracts = errors.New("handler contract definitions could not be resolved")

// Classifier matches the interfaces a candidate asserts against the
// reference contracts
type Classifier struct {
	importPath string
	resolved   []models.ContractDefinition
	imports    map[*ast.File]fileImports
}

// NewClassifier resolves the reference contracts once for comp. A contract is
// visible when some file imports its package or comp is that package.
func NewClassifier(comp *models.Compilation, contracts []models.ContractDefinition) (*Classifier, error) {
	c := &Classifier{
		importPath: comp.ImportPath,
		imports:    make(map[*ast.File]fileImports, len(comp.Files)),
	}

	for _, f := range comp.Files {
		c.imports[f.AST] = newFileImports(f.AST)
	}

	for _, def := range contracts {
		if c.visible(def) {
			c.resolved = append(c.resolved, def)
		}
	}

	if len(c.resolved) == 0 {
		names := make([]string, 0, len(contracts))
		for _, def := range contracts {
			names = append(names, def.ImportPath+"."+def.Name)
		}
		return nil, fmt.Errorf("%w: %s", ErrMissingContracts, strings.Join(names, ", "))
	}

	return c, nil
}

// Resolved returns the contracts visible to the compilation
func (c *Classifier) Resolved() []models.ContractDefinition {
	return c.resolved
}

func (c *Classifier) visible(def models.ContractDefinition) bool {
	if def.ImportPath == c.importPath {
		return true
	}
	for _, fi := range c.imports {
		if fi.imports(def.ImportPath) {
			return true
		}
	}
	return false
}

// Classify returns the contract shapes cand implements directly, in
// assertion order. Abstract candidates never match.
func (c *Classifier) Classify(cand *models.CandidateType) []models.ContractShape {
	if cand == nil || cand.IsAbstract {
		return nil
	}

	var shapes []models.ContractShape
	for _, ref := range cand.Assertions {
		if shape, ok := c.match(ref); ok {
			shapes = append(shapes, shape)
		}
	}
	return shapes
}

func (c *Classifier) match(ref models.InterfaceRef) (models.ContractShape, bool) {
	base, args := genericParts(ref.Type)
	if base == nil {
		return models.ContractShape{}, false
	}

	fi, ok := c.imports[ref.File]
	if !ok && ref.File != nil {
		fi = newFileImports(ref.File)
	}

	for _, def := range c.resolved {
		if len(args) != def.Kind.Arity() || !c.sameDefinition(base, def, fi) {
			continue
		}

		shape := models.ContractShape{
			Definition: def,
			Request:    fi.typeRef(args[0]),
		}
		if def.Kind == models.RequestResponse {
			shape.Response = fi.typeRef(args[1])
		}
		return shape, true
	}

	return models.ContractShape{}, false
}

// sameDefinition compares the generic base of an asserted interface with a
// contract definition
func (c *Classifier) sameDefinition(base ast.Expr, def models.ContractDefinition, fi fileImports) bool {
	switch b := base.(type) {
	case *ast.SelectorExpr:
		qual, ok := b.X.(*ast.Ident)
		if !ok || b.Sel.Name != def.Name {
			return false
		}
		path, ok := fi.resolve(qual.Name)
		return ok && path == def.ImportPath
	case *ast.Ident:
		if b.Name != def.Name {
			return false
		}
		return def.ImportPath == c.importPath || fi.dot[def.ImportPath]
	}
	return false
}

// genericParts splits an instantiated generic type into its base and its
// type arguments
func genericParts(expr ast.Expr) (ast.Expr, []ast.Expr) {
	switch e := expr.(type) {
	case *ast.IndexExpr:
		return e.X, []ast.Expr{e.Index}
	case *ast.IndexListExpr:
		return e.X, e.Indices
	case *ast.ParenExpr:
		return genericParts(e.X)
	}
	return nil, nil
}
