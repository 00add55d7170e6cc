package parser

import (
	"go/ast"
	"go/token"
	"sort"

	"golang.org/x/tools/go/ast/inspector"

	"github.com/toyz/mediator/internal/annotations"
	"github.com/toyz/mediator/internal/models"
)

// assertion is a `var _ I = <value>` declaration naming a local type
type assertion struct {
	typeName string
	ref      models.InterfaceRef
}

// Collect returns the struct types declared at the top level of the
// compilation, in source order, with their interface assertions attached.
func Collect(comp *models.Compilation) []*models.CandidateType {
	if comp == nil || len(comp.Files) == 0 {
		return nil
	}

	files := fileASTs(comp)
	fileNames := make(map[*ast.File]string, len(comp.Files))
	for _, f := range comp.Files {
		fileNames[f.AST] = f.Name
	}

	var (
		candidates []*models.CandidateType
		byName     = make(map[string]*models.CandidateType)
		asserts    []assertion
		current    *ast.File
	)

	insp := inspector.New(files)
	insp.WithStack([]ast.Node{(*ast.File)(nil), (*ast.GenDecl)(nil)}, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return false
		}

		switch node := n.(type) {
		case *ast.File:
			current = node
			return true
		case *ast.GenDecl:
			// only package level declarations
			if len(stack) != 2 {
				return false
			}
			switch node.Tok {
			case token.TYPE:
				for _, cand := range collectTypes(comp, node, fileNames[current]) {
					if _, dup := byName[cand.Name]; dup {
						continue
					}
					byName[cand.Name] = cand
					candidates = append(candidates, cand)
				}
			case token.VAR:
				asserts = append(asserts, collectAssertions(comp, node, current)...)
			}
		}
		return false
	})

	for _, a := range asserts {
		cand, ok := byName[a.typeName]
		if !ok {
			continue
		}
		cand.Assertions = append(cand.Assertions, a.ref)
	}

	return candidates
}

func collectTypes(comp *models.Compilation, decl *ast.GenDecl, fileName string) []*models.CandidateType {
	var out []*models.CandidateType
	for _, spec := range decl.Specs {
		typeSpec, ok := spec.(*ast.TypeSpec)
		if !ok || typeSpec.Name == nil || typeSpec.Name.Name == "_" || typeSpec.Assign.IsValid() {
			continue
		}
		if _, ok := typeSpec.Type.(*ast.StructType); !ok {
			continue
		}

		doc := typeSpec.Doc
		if doc == nil && !decl.Lparen.IsValid() {
			doc = decl.Doc
		}

		out = append(out, &models.CandidateType{
			Name:          typeSpec.Name.Name,
			QualifiedName: qualify(comp, typeSpec.Name.Name),
			IsAbstract:    typeSpec.TypeParams != nil && typeSpec.TypeParams.NumFields() > 0,
			Markers:       lifetimeMarkers(doc),
			File:          fileName,
			Line:          comp.Position(typeSpec.Name.Pos()).Line,
		})
	}
	return out
}

func collectAssertions(comp *models.Compilation, decl *ast.GenDecl, file *ast.File) []assertion {
	var out []assertion
	for _, spec := range decl.Specs {
		valueSpec, ok := spec.(*ast.ValueSpec)
		if !ok || valueSpec.Type == nil {
			continue
		}
		for i, name := range valueSpec.Names {
			if name.Name != "_" || i >= len(valueSpec.Values) {
				continue
			}
			typeName := assertedTypeName(valueSpec.Values[i])
			if typeName == "" {
				continue
			}
			out = append(out, assertion{
				typeName: typeName,
				ref: models.InterfaceRef{
					Type: valueSpec.Type,
					File: file,
					Line: comp.Position(name.Pos()).Line,
				},
			})
		}
	}
	return out
}

// assertedTypeName extracts T from (*T)(nil), &T{}, T{} and new(T)
func assertedTypeName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.CallExpr:
		if len(e.Args) != 1 {
			return ""
		}
		if fn, ok := e.Fun.(*ast.Ident); ok && fn.Name == "new" {
			return localTypeName(e.Args[0])
		}
		if nilArg, ok := e.Args[0].(*ast.Ident); !ok || nilArg.Name != "nil" {
			return ""
		}
		paren, ok := e.Fun.(*ast.ParenExpr)
		if !ok {
			return ""
		}
		star, ok := paren.X.(*ast.StarExpr)
		if !ok {
			return ""
		}
		return localTypeName(star.X)
	case *ast.UnaryExpr:
		if e.Op != token.AND {
			return ""
		}
		return assertedTypeName(e.X)
	case *ast.CompositeLit:
		return localTypeName(e.Type)
	case *ast.ParenExpr:
		return assertedTypeName(e.X)
	}
	return ""
}

// localTypeName returns the name of a type declared in this package,
// looking through generic instantiations.
func localTypeName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		if e.Name == "_" {
			return ""
		}
		return e.Name
	case *ast.IndexExpr:
		return localTypeName(e.X)
	case *ast.IndexListExpr:
		return localTypeName(e.X)
	case *ast.ParenExpr:
		return localTypeName(e.X)
	}
	return ""
}

func lifetimeMarkers(doc *ast.CommentGroup) []string {
	if doc == nil {
		return nil
	}
	var markers []string
	for _, comment := range doc.List {
		if annotations.IsLifetimeMarker(comment.Text) {
			markers = append(markers, comment.Text)
		}
	}
	return markers
}

func qualify(comp *models.Compilation, name string) string {
	if comp.ImportPath != "" {
		return comp.ImportPath + "." + name
	}
	return comp.PackageName + "." + name
}

// PackageScope returns the identifiers declared at package level, sorted.
// Blank identifiers, methods and init functions are left out.
func PackageScope(comp *models.Compilation) []string {
	if comp == nil {
		return nil
	}

	seen := make(map[string]bool)
	add := func(ident *ast.Ident) {
		if ident != nil && ident.Name != "_" {
			seen[ident.Name] = true
		}
	}

	insp := inspector.New(fileASTs(comp))
	insp.Nodes([]ast.Node{(*ast.FuncDecl)(nil), (*ast.GenDecl)(nil)}, func(n ast.Node, push bool) bool {
		if !push {
			return false
		}
		switch decl := n.(type) {
		case *ast.FuncDecl:
			if decl.Recv == nil && decl.Name.Name != "init" {
				add(decl.Name)
			}
		case *ast.GenDecl:
			for _, spec := range decl.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					add(s.Name)
				case *ast.ValueSpec:
					for _, name := range s.Names {
						add(name)
					}
				}
			}
		}
		return false
	})

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
