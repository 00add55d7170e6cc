package models

import (
	"go/ast"
	"go/token"
)

// SourceFile is one parsed Go file of a compilation
type SourceFile struct {
	Name string    // path of the file on disk (or a synthetic name in tests)
	AST  *ast.File // parsed syntax tree, comments included
}

// Compilation is the package snapshot the generation pipeline runs over
type Compilation struct {
	PackageName string         // name from the package clause
	ImportPath  string         // import path of the package, empty when unknown
	Dir         string         // directory the files were loaded from
	FileSet     *token.FileSet // positions for every file in Files
	Files       []SourceFile   // files in a stable order (sorted by name)
}

// Position returns the source position of pos, or the zero Position when
// the compilation has no file set.
func (c *Compilation) Position(pos token.Pos) token.Position {
	if c == nil || c.FileSet == nil || !pos.IsValid() {
		return token.Position{}
	}
	return c.FileSet.Position(pos)
}
