package parser

import (
	"go/ast"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/toyz/mediator/internal/models"
)

// fileImports maps the names a file uses for its imports back to paths
type fileImports struct {
	byName  map[string]string // local name -> import path
	dot     map[string]bool   // dot imported paths
	unnamed []string          // paths imported without an explicit name
}

func newFileImports(file *ast.File) fileImports {
	fi := fileImports{
		byName: make(map[string]string),
		dot:    make(map[string]bool),
	}
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := AssumedPackageName(path)
		if spec.Name != nil {
			name = spec.Name.Name
		} else {
			fi.unnamed = append(fi.unnamed, path)
		}
		switch name {
		case "_":
		case ".":
			fi.dot[path] = true
		default:
			fi.byName[name] = path
		}
	}
	return fi
}

// imports reports whether the file imports path under any name
func (fi fileImports) imports(path string) bool {
	if fi.dot[path] {
		return true
	}
	for _, p := range fi.byName {
		if p == path {
			return true
		}
	}
	return false
}

// resolve returns the import path a package qualifier refers to. Unnamed
// imports whose package name differs from the assumed one are matched
// against the other names their last path element suggests; the match must
// be unique.
func (fi fileImports) resolve(name string) (string, bool) {
	if path, ok := fi.byName[name]; ok {
		return path, true
	}

	found := ""
	for _, path := range fi.unnamed {
		for _, candidate := range packageNameCandidates(path) {
			if candidate != name {
				continue
			}
			if found != "" && found != path {
				return "", false
			}
			found = path
		}
	}
	return found, found != ""
}

// qualifiers returns the imports referenced by package qualifiers in expr,
// and the qualifiers no import could be found for
func (fi fileImports) qualifiers(expr ast.Expr) (map[string]string, []string) {
	refs := make(map[string]string)
	var unresolved []string
	ast.Inspect(expr, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if ident, ok := sel.X.(*ast.Ident); ok {
			if path, ok := fi.resolve(ident.Name); ok {
				refs[ident.Name] = path
			} else if !slices.Contains(unresolved, ident.Name) {
				unresolved = append(unresolved, ident.Name)
			}
		}
		return false
	})
	return refs, unresolved
}

func (fi fileImports) typeRef(expr ast.Expr) models.TypeRef {
	imports, unresolved := fi.qualifiers(expr)
	return models.TypeRef{Expr: expr, Imports: imports, Unresolved: unresolved}
}

// AssumedPackageName returns the package name an import path is expected to
// declare: the last path element, skipping a major version suffix and
// trimming a "go-" prefix or anything after a dot or dash.
func AssumedPackageName(importPath string) string {
	elems := strings.Split(importPath, "/")
	name := elems[len(elems)-1]
	if len(elems) > 1 && isVersionElem(name) {
		name = elems[len(elems)-2]
	}
	name = strings.TrimPrefix(name, "go-")
	if i := strings.IndexAny(name, ".-"); i > 0 {
		name = name[:i]
	}
	return name
}

// packageNameCandidates lists the package names an import path commonly
// declares, the assumed name first
func packageNameCandidates(importPath string) []string {
	elems := strings.Split(importPath, "/")
	elem := elems[len(elems)-1]
	if len(elems) > 1 && isVersionElem(elem) {
		elem = elems[len(elems)-2]
	}

	squashed := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return unicode.ToLower(r)
		}
		return -1
	}, elem)

	return []string{
		AssumedPackageName(importPath),
		squashed,
		strings.TrimPrefix(squashed, "go"),
		strings.TrimSuffix(squashed, "go"),
	}
}

func isVersionElem(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
